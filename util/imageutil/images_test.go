package imageutil

import (
	"image"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGrayFromPixels(t *testing.T) {
	img, err := GrayFromPixels([]float32{0, 1, 0.5, 2}, 2, 2)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0, 255, 128, 255}, img.Pix)

	_, err = GrayFromPixels([]float32{0, 1, 0.5}, 2, 2)
	assert.Error(t, err)
}

func TestWriteAndLoadPNG(t *testing.T) {
	img, err := GrayFromPixels([]float32{0, 0.2, 0.4, 0.6, 0.8, 1}, 3, 2)
	assert.NoError(t, err)
	path := filepath.Join(t.TempDir(), "digit.png")
	assert.NoError(t, WritePNG(path, img))

	loaded, err := LoadImagesFromPaths([]string{path})
	assert.NoError(t, err)
	assert.Len(t, loaded, 1)
	gray, ok := loaded[0].(*image.Gray)
	assert.True(t, ok)
	assert.Equal(t, img.Pix, gray.Pix)
	assert.Equal(t, img.Bounds(), gray.Bounds())
}

func TestResizeStep(t *testing.T) {
	img, err := GrayFromPixels([]float32{0, 1, 1, 0}, 2, 2)
	assert.NoError(t, err)

	resized, err := ResizeStep(4).Apply(img)
	assert.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 4), resized.Bounds())
	gray := resized.(*image.Gray)
	assert.Equal(t, uint8(0), gray.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(255), gray.GrayAt(3, 0).Y)
	assert.Equal(t, uint8(255), gray.GrayAt(0, 3).Y)

	_, err = ResizeStep(0).Apply(img)
	assert.Error(t, err)
}
