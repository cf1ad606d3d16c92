// Package fixtures writes small synthetic MNIST sources in the IDX format for tests.
package fixtures

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"

	"github.com/knights-analytics/mnist/datasets"
	"github.com/knights-analytics/mnist/util/fileutil"
	"github.com/knights-analytics/mnist/util/safeconv"
)

const (
	ImagesMagic = 2051
	LabelsMagic = 2049
	Rows        = datasets.ImageRows
	Cols        = datasets.ImageCols
	ImageSize   = Rows * Cols
)

// Pixel is the value of pixel j of image i in the synthetic images.
func Pixel(i, j int) byte {
	return byte((i*7 + j) % 256)
}

// Label is the label of image i in the synthetic labels.
func Label(i int) byte {
	return byte(i % 10)
}

// Header encodes a big endian idx header.
func Header(magic uint32, dims ...uint32) []byte {
	buf := &bytes.Buffer{}
	_ = binary.Write(buf, binary.BigEndian, magic)
	for _, dim := range dims {
		_ = binary.Write(buf, binary.BigEndian, dim)
	}
	return buf.Bytes()
}

// Images encodes n synthetic images as an idx3 file.
func Images(n int) []byte {
	data := Header(ImagesMagic, safeconv.IntToUint32(n), Rows, Cols)
	for i := range n {
		for j := range ImageSize {
			data = append(data, Pixel(i, j))
		}
	}
	return data
}

// Labels encodes n synthetic labels as an idx1 file.
func Labels(n int) []byte {
	data := Header(LabelsMagic, safeconv.IntToUint32(n))
	for i := range n {
		data = append(data, Label(i))
	}
	return data
}

// WriteGzip writes data gzip-compressed to path.
func WriteGzip(path string, data []byte) error {
	writer, err := fileutil.NewFileWriter(path, "")
	if err != nil {
		return err
	}
	gzipWriter := gzip.NewWriter(writer)
	if _, err = gzipWriter.Write(data); err != nil {
		return err
	}
	if err = gzipWriter.Close(); err != nil {
		return err
	}
	return writer.Close()
}

// WriteSource writes gzipped images and labels files for split into dir, laid out like the download mirror.
func WriteSource(dir string, split datasets.Split, images []byte, labels []byte) error {
	imagesFile, labelsFile, err := datasets.MNISTFiles(split)
	if err != nil {
		return err
	}
	if err = fileutil.CreateDir(dir); err != nil {
		return err
	}
	if err = WriteGzip(fileutil.PathJoinSafe(dir, imagesFile+".gz"), images); err != nil {
		return err
	}
	return WriteGzip(fileutil.PathJoinSafe(dir, labelsFile+".gz"), labels)
}

// WriteSyntheticSource writes n synthetic samples for split into dir.
func WriteSyntheticSource(dir string, split datasets.Split, n int) error {
	return WriteSource(dir, split, Images(n), Labels(n))
}
