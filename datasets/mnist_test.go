package datasets_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/knights-analytics/mnist/datasets"
	"github.com/knights-analytics/mnist/options"
	"github.com/knights-analytics/mnist/testcases/fixtures"
)

func newTestProvider(t *testing.T, source string) *datasets.MNISTProvider {
	t.Helper()
	provider, err := datasets.NewMNISTProvider(options.WithSourceURL(source))
	check(t, err)
	return provider
}

func TestMNISTProviderMaterialize(t *testing.T) {
	source := t.TempDir()
	scratch := t.TempDir()
	check(t, fixtures.WriteSyntheticSource(source, datasets.SplitTrain, 25))

	dataset, err := datasets.Materialize(newTestProvider(t, source), datasets.SplitTrain,
		options.WithScratchRoot(scratch), options.WithBatchSize(10))
	check(t, err)

	assert.Equal(t, 25, dataset.Len())
	assert.Equal(t, []int{25, fixtures.ImageSize}, dataset.FeatureShape())
	assert.Equal(t, len(dataset.Labels)*fixtures.ImageSize, len(dataset.Features))
	for _, i := range []int{0, 9, 10, 24} {
		features, label := dataset.Sample(i)
		assert.Equal(t, int32(fixtures.Label(i)), label)
		for _, j := range []int{0, 1, 400, fixtures.ImageSize - 1} {
			assert.Equal(t, float32(fixtures.Pixel(i, j))/255, features[j])
		}
	}
	for _, value := range dataset.Features {
		if value < 0 || value > 1 {
			t.Fatalf("pixel value %f outside [0, 1]", value)
		}
	}

	imagesFile, labelsFile, err := datasets.MNISTFiles(datasets.SplitTrain)
	check(t, err)
	scratchDir := datasets.SplitTrain.ScratchDir(scratch)
	assert.FileExists(t, filepath.Join(scratchDir, imagesFile))
	assert.FileExists(t, filepath.Join(scratchDir, labelsFile))
	assert.NoFileExists(t, filepath.Join(scratchDir, imagesFile+".gz"))
}

func TestMNISTProviderReusesScratch(t *testing.T) {
	source := t.TempDir()
	scratch := t.TempDir()
	check(t, fixtures.WriteSyntheticSource(source, datasets.SplitTest, 3))
	provider := newTestProvider(t, source)

	first, err := datasets.Materialize(provider, datasets.SplitTest, options.WithScratchRoot(scratch))
	check(t, err)

	check(t, os.RemoveAll(source))
	second, err := datasets.Materialize(provider, datasets.SplitTest, options.WithScratchRoot(scratch))
	check(t, err)

	assert.Equal(t, first.Features, second.Features)
	assert.Equal(t, first.Labels, second.Labels)
}

func TestMNISTProviderMissingSource(t *testing.T) {
	source := filepath.Join(t.TempDir(), "missing")
	_, err := datasets.Materialize(newTestProvider(t, source), datasets.SplitTrain, options.WithScratchRoot(t.TempDir()))
	assert.Error(t, err)
}

func TestMNISTProviderInvalidHeaders(t *testing.T) {
	tests := []struct {
		name   string
		images []byte
		labels []byte
	}{
		{"image magic", append(fixtures.Header(1234, 1, fixtures.Rows, fixtures.Cols), make([]byte, fixtures.ImageSize)...), fixtures.Labels(1)},
		{"label magic", fixtures.Images(1), append(fixtures.Header(fixtures.ImagesMagic, 1), 0)},
		{"image size", append(fixtures.Header(fixtures.ImagesMagic, 1, 32, 32), make([]byte, 32*32)...), fixtures.Labels(1)},
		{"count mismatch", fixtures.Images(2), fixtures.Labels(3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := t.TempDir()
			check(t, fixtures.WriteSource(source, datasets.SplitTrain, tt.images, tt.labels))
			_, err := datasets.Materialize(newTestProvider(t, source), datasets.SplitTrain, options.WithScratchRoot(t.TempDir()))
			assert.ErrorIs(t, err, datasets.ErrInvalidHeader)
		})
	}
}

func TestMNISTProviderTruncated(t *testing.T) {
	tests := []struct {
		name   string
		images []byte
		labels []byte
	}{
		{"images", fixtures.Images(4)[:16+3*fixtures.ImageSize+10], fixtures.Labels(4)},
		{"labels", fixtures.Images(4), fixtures.Labels(4)[:8+2]},
		{"header", fixtures.Images(4)[:10], fixtures.Labels(4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := t.TempDir()
			check(t, fixtures.WriteSource(source, datasets.SplitTrain, tt.images, tt.labels))
			_, err := datasets.Materialize(newTestProvider(t, source), datasets.SplitTrain,
				options.WithScratchRoot(t.TempDir()), options.WithBatchSize(2))
			assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
		})
	}
}

func TestMNISTProviderUnknownSplit(t *testing.T) {
	provider := newTestProvider(t, t.TempDir())
	_, err := provider.Open(datasets.Split("validation"), t.TempDir(), 10)
	assert.ErrorIs(t, err, datasets.ErrUnknownSplit)
	_, _, err = datasets.MNISTFiles(datasets.Split("validation"))
	assert.ErrorIs(t, err, datasets.ErrUnknownSplit)
}
