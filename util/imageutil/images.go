package imageutil

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/knights-analytics/mnist/util/fileutil"
	"github.com/knights-analytics/mnist/util/safeconv"
)

func LoadImagesFromPaths(paths []string) ([]image.Image, error) {
	images := make([]image.Image, 0, len(paths))

	for _, path := range paths {
		b, err := fileutil.ReadFileBytes(path)
		if err != nil {
			return nil, err
		}
		img, _, err := image.Decode(bytes.NewReader(b))
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}

// GrayFromPixels builds a grayscale image from row-major pixel intensities in [0, 1].
func GrayFromPixels(pixels []float32, width, height int) (*image.Gray, error) {
	if width < 1 || height < 1 || len(pixels) != width*height {
		return nil, fmt.Errorf("cannot build a %dx%d image from %d pixels", width, height, len(pixels))
	}
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i, value := range pixels {
		img.Pix[i] = safeconv.UnitToByte(value)
	}
	return img, nil
}

// WritePNG encodes img as png at path.
func WritePNG(path string, img image.Image) (err error) {
	writer, err := fileutil.NewFileWriter(path, "image/png")
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, writer.Close())
	}()
	return png.Encode(writer, img)
}

type PreprocessStep interface {
	Apply(img image.Image) (image.Image, error)
}

type ResizePreprocessor struct {
	targetSize int
}

// ResizeStep scales images so that their shorter side is targetSize, keeping the aspect ratio.
func ResizeStep(targetSize int) *ResizePreprocessor {
	return &ResizePreprocessor{targetSize: targetSize}
}

func (s *ResizePreprocessor) Apply(img image.Image) (image.Image, error) {
	if s.targetSize < 1 {
		return nil, fmt.Errorf("resize target must be at least 1, got %d", s.targetSize)
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	var newW, newH int
	if w < h {
		newW = s.targetSize
		newH = int(float32(h) * float32(s.targetSize) / float32(w))
	} else {
		newH = s.targetSize
		newW = int(float32(w) * float32(s.targetSize) / float32(h))
	}
	return resizeImage(img, newW, newH), nil
}

// resizeImage resizes an image to the given width and height using nearest neighbor.
func resizeImage(img image.Image, newW, newH int) image.Image {
	dst := image.NewGray(image.Rect(0, 0, newW, newH))
	srcBounds := img.Bounds()
	for y := 0; y < newH; y++ {
		for x := 0; x < newW; x++ {
			srcX := srcBounds.Min.X + x*srcBounds.Dx()/newW
			srcY := srcBounds.Min.Y + y*srcBounds.Dy()/newH
			dst.Set(x, y, img.At(srcX, srcY))
		}
	}
	return dst
}
