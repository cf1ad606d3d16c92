package fileutil

import (
	"bytes"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func check(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Test failed with error %s", err.Error())
	}
}

func TestPathJoinSafe(t *testing.T) {
	assert.Equal(t, filepath.Join("/tmp", "datatrain", "file"), PathJoinSafe("/tmp", "datatrain", "file"))
	assert.Equal(t, "s3://bucket/mnist/file.gz", PathJoinSafe("s3://bucket/mnist/", "file.gz"))
	assert.Equal(t, "https://example.com/mnist/file.gz", PathJoinSafe("https://example.com/mnist", "file.gz"))
}

func TestGetPathType(t *testing.T) {
	assert.Equal(t, "S3", GetPathType("s3://bucket"))
	assert.Equal(t, "URL", GetPathType("https://example.com"))
	assert.Equal(t, "os", GetPathType("/tmp/data"))
}

func TestGunzipFile(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "data.gz")
	target := filepath.Join(dir, "data")
	payload := bytes.Repeat([]byte("mnist"), 1000)

	buf := &bytes.Buffer{}
	gzipWriter := gzip.NewWriter(buf)
	_, err := gzipWriter.Write(payload)
	check(t, err)
	check(t, gzipWriter.Close())
	check(t, os.WriteFile(archive, buf.Bytes(), 0o644))

	check(t, GunzipFile(archive, target))
	result, err := ReadFileBytes(target)
	check(t, err)
	assert.Equal(t, payload, result)
}

func TestGunzipFileRejectsPlainData(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "data.gz")
	check(t, os.WriteFile(archive, []byte("not gzip"), 0o644))
	assert.Error(t, GunzipFile(archive, filepath.Join(dir, "data")))
}

func TestCreateDirAndDelete(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "scratch")
	check(t, CreateDir(dir))
	check(t, CreateDir(dir))
	exists, err := FileExists(dir)
	check(t, err)
	assert.True(t, exists)

	file := filepath.Join(dir, "file")
	writer, err := NewFileWriter(file, "")
	check(t, err)
	_, err = writer.Write([]byte("data"))
	check(t, err)
	check(t, writer.Close())

	check(t, CopyFile(context.Background(), file, file+".copy"))
	copied, err := ReadFileBytes(file + ".copy")
	check(t, err)
	assert.Equal(t, []byte("data"), copied)

	check(t, DeleteFile(file))
	exists, err = FileExists(file)
	check(t, err)
	assert.False(t, exists)
}
