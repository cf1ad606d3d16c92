package fileutil

import (
	"compress/gzip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/option"
	"github.com/viant/afs/option/content"
	_ "github.com/viant/afsc/s3"
)

var fileSystem = afs.New()

const partSize = 64 * 1024 * 1024

func ReadFileBytes(filename string) ([]byte, error) {
	file, err := fileSystem.OpenURL(context.Background(), filename)
	if err != nil {
		return nil, err
	}
	defer func(file io.Closer) {
		err = errors.Join(err, CloseFile(file))
	}(file)

	outBytes, readErr := io.ReadAll(file)
	if readErr != nil {
		return nil, readErr
	}
	return outBytes, err
}

func CloseFile(file io.Closer) error {
	return file.Close()
}

// GetPathType reports "S3" for s3 URLs, "URL" for any other scheme (http, https, mem, file)
// and "os" for plain filesystem paths.
func GetPathType(path string) string {
	switch {
	case strings.HasPrefix(path, "s3://"):
		return "S3"
	case strings.Contains(path, "://"):
		return "URL"
	default:
		return "os"
	}
}

func OpenFile(filename string) (io.ReadCloser, error) {
	return fileSystem.OpenURL(context.Background(), filename)
}

// PathJoinSafe wrapper around filepath.Join to ensure that paths are correctly constructed
// if the path is a normal OS path, just use filepath.Join
// if the path is a URL (s3, https...), trim any trailing slashes and construct it manually from the components
// so that double slashes (e.g. s3://) are preserved.
func PathJoinSafe(elem ...string) string {
	var path string

	switch GetPathType(elem[0]) {
	case "S3", "URL":
		basePath := strings.TrimSuffix(elem[0], "/")
		path = basePath + "/" + filepath.ToSlash(filepath.Join(elem[1:]...))
	default:
		path = filepath.Join(elem...)
	}
	return path
}

func CopyFile(ctx context.Context, from string, to string) error {
	return fileSystem.Copy(ctx, from, to, option.NewSource(option.NewStream(partSize, 0)), option.NewDest(option.NewSkipChecksum(true)))
}

// GunzipFile decompresses the gzip stream at from into a new file at to.
// A partially written destination is removed on failure.
func GunzipFile(from string, to string) (err error) {
	source, err := OpenFile(from)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, CloseFile(source))
	}()

	gzipReader, err := gzip.NewReader(source)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, gzipReader.Close())
	}()

	writer, err := NewFileWriter(to, "")
	if err != nil {
		return err
	}
	_, copyErr := io.Copy(writer, gzipReader)
	closeErr := writer.Close()
	if copyErr != nil || closeErr != nil {
		return errors.Join(copyErr, closeErr, DeleteFile(to))
	}
	return nil
}

func DeleteFile(filename string) error {
	return fileSystem.Delete(context.Background(), filename)
}

func CreateFile(fileName string, isDir bool) error {
	return fileSystem.Create(context.Background(), fileName, os.ModePerm, isDir)
}

// CreateDir creates the directory if it does not exist yet.
func CreateDir(dirName string) error {
	exists, err := FileExists(dirName)
	if err != nil || exists {
		return err
	}
	return CreateFile(dirName, true)
}

func FileExists(filename string) (bool, error) {
	return fileSystem.Exists(context.Background(), filename)
}

func NewFileWriter(filename string, contentType string) (io.WriteCloser, error) {
	exists, err := FileExists(filename)
	if err != nil {
		return nil, err
	}
	if exists {
		err = fileSystem.Delete(context.Background(), filename)
		if err != nil {
			return nil, err
		}
	}
	if contentType != "" {
		return fileSystem.NewWriter(context.Background(), filename, 0o644, content.NewMeta(content.Type, contentType), option.NewSkipChecksum(true))
	}
	return fileSystem.NewWriter(context.Background(), filename, 0o644, option.NewSkipChecksum(true))
}
