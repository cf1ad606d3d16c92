package datasets

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/knights-analytics/mnist/util/safeconv"
)

const (
	idxImagesMagic = 2051
	idxLabelsMagic = 2049
)

// MNIST images are 28x28 grayscale; a decoded sample is the flattened row-major image.
const (
	ImageRows = 28
	ImageCols = 28
	imageSize = ImageRows * ImageCols
)

// readImagesHeader consumes the 16 byte header of an idx3 image file and returns the image count.
func readImagesHeader(r io.Reader) (int, error) {
	var header [4]uint32
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return 0, truncated(err)
	}
	magic, count, rows, cols := header[0], header[1], header[2], header[3]
	if magic != idxImagesMagic {
		return 0, fmt.Errorf("%w: image file magic %d, expected %d", ErrInvalidHeader, magic, idxImagesMagic)
	}
	if rows != ImageRows || cols != ImageCols {
		return 0, fmt.Errorf("%w: images are %dx%d, expected %dx%d", ErrInvalidHeader, rows, cols, ImageRows, ImageCols)
	}
	return safeconv.Uint32ToInt(count), nil
}

// readLabelsHeader consumes the 8 byte header of an idx1 label file and returns the label count.
func readLabelsHeader(r io.Reader) (int, error) {
	var header [2]uint32
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return 0, truncated(err)
	}
	magic, count := header[0], header[1]
	if magic != idxLabelsMagic {
		return 0, fmt.Errorf("%w: label file magic %d, expected %d", ErrInvalidHeader, magic, idxLabelsMagic)
	}
	return safeconv.Uint32ToInt(count), nil
}

// truncated maps a short read at any position to io.ErrUnexpectedEOF.
func truncated(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
