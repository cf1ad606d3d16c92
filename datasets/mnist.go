package datasets

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/knights-analytics/mnist/options"
	"github.com/knights-analytics/mnist/util/fileutil"
)

type mnistFiles struct {
	images string
	labels string
}

var mnistSplitFiles = map[Split]mnistFiles{
	SplitTrain: {images: "train-images-idx3-ubyte", labels: "train-labels-idx1-ubyte"},
	SplitTest:  {images: "t10k-images-idx3-ubyte", labels: "t10k-labels-idx1-ubyte"},
}

// MNISTFiles returns the raw IDX file names of split, without the .gz suffix.
func MNISTFiles(split Split) (images string, labels string, err error) {
	if err = split.Validate(); err != nil {
		return "", "", err
	}
	files := mnistSplitFiles[split]
	return files.images, files.labels, nil
}

// MNISTProvider serves MNIST from the raw IDX files. Missing files are downloaded from the
// configured source as gzip archives and decompressed into the split's scratch directory,
// which then acts as a cache for subsequent opens.
type MNISTProvider struct {
	sourceURL string
	verbose   bool
}

// NewMNISTProvider reads SourceURL and Verbose from opts.
func NewMNISTProvider(opts ...options.WithOption) (*MNISTProvider, error) {
	parsedOptions, err := options.Parse(opts...)
	if err != nil {
		return nil, err
	}
	return &MNISTProvider{
		sourceURL: parsedOptions.SourceURL,
		verbose:   parsedOptions.Verbose,
	}, nil
}

// Fetch stages the raw files of split into scratchDir and returns their paths.
func (p *MNISTProvider) Fetch(split Split, scratchDir string) (imagesPath string, labelsPath string, err error) {
	if err = split.Validate(); err != nil {
		return "", "", err
	}
	files := mnistSplitFiles[split]
	if imagesPath, err = p.stage(files.images, scratchDir); err != nil {
		return "", "", err
	}
	if labelsPath, err = p.stage(files.labels, scratchDir); err != nil {
		return "", "", err
	}
	return imagesPath, labelsPath, nil
}

func (p *MNISTProvider) stage(filename string, scratchDir string) (string, error) {
	target := fileutil.PathJoinSafe(scratchDir, filename)
	exists, err := fileutil.FileExists(target)
	if err != nil {
		return "", err
	}
	if exists {
		return target, nil
	}
	if err = fileutil.CreateDir(scratchDir); err != nil {
		return "", err
	}

	source := fileutil.PathJoinSafe(p.sourceURL, filename+".gz")
	archive := target + ".gz"
	if p.verbose {
		fmt.Printf("downloading %s to %s\n", source, archive)
	}
	if err = fileutil.CopyFile(context.Background(), source, archive); err != nil {
		return "", fmt.Errorf("failed to download %s: %w", source, err)
	}
	if err = fileutil.GunzipFile(archive, target); err != nil {
		return "", errors.Join(fmt.Errorf("failed to decompress %s: %w", archive, err), fileutil.DeleteFile(archive))
	}
	if err = fileutil.DeleteFile(archive); err != nil {
		return "", err
	}
	return target, nil
}

// Open stages the split if needed and returns an iterator decoding batchSize samples at a time.
// Pixels are scaled to [0, 1]; every sample has shape [784].
func (p *MNISTProvider) Open(split Split, scratchDir string, batchSize int) (BatchIterator, error) {
	if batchSize < 1 {
		return nil, fmt.Errorf("batch size must be at least 1, got %d", batchSize)
	}
	imagesPath, labelsPath, err := p.Fetch(split, scratchDir)
	if err != nil {
		return nil, err
	}
	iterator, err := openIDX(imagesPath, labelsPath, batchSize)
	if err != nil {
		return nil, err
	}
	return iterator, nil
}

type idxIterator struct {
	imagesPath  string
	labelsPath  string
	imagesFile  io.ReadCloser
	labelsFile  io.ReadCloser
	images      *bufio.Reader
	labels      *bufio.Reader
	remaining   int
	batchSize   int
	pixelBuffer []byte
}

func openIDX(imagesPath string, labelsPath string, batchSize int) (iterator *idxIterator, err error) {
	iterator = &idxIterator{
		imagesPath: imagesPath,
		labelsPath: labelsPath,
		batchSize:  batchSize,
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, iterator.Close())
			iterator = nil
		}
	}()

	if iterator.imagesFile, err = fileutil.OpenFile(imagesPath); err != nil {
		return iterator, err
	}
	if iterator.labelsFile, err = fileutil.OpenFile(labelsPath); err != nil {
		return iterator, err
	}
	iterator.images = bufio.NewReader(iterator.imagesFile)
	iterator.labels = bufio.NewReader(iterator.labelsFile)

	imageCount, err := readImagesHeader(iterator.images)
	if err != nil {
		return iterator, fmt.Errorf("%s: %w", imagesPath, err)
	}
	labelCount, err := readLabelsHeader(iterator.labels)
	if err != nil {
		return iterator, fmt.Errorf("%s: %w", labelsPath, err)
	}
	if imageCount != labelCount {
		return iterator, fmt.Errorf("%w: %s holds %d images but %s holds %d labels",
			ErrInvalidHeader, imagesPath, imageCount, labelsPath, labelCount)
	}
	iterator.remaining = imageCount
	return iterator, nil
}

func (i *idxIterator) Next() (Batch, bool, error) {
	if i.remaining == 0 {
		return Batch{}, false, nil
	}
	n := min(i.batchSize, i.remaining)

	if cap(i.pixelBuffer) < n*imageSize {
		i.pixelBuffer = make([]byte, n*imageSize)
	}
	pixels := i.pixelBuffer[:n*imageSize]
	if _, err := io.ReadFull(i.images, pixels); err != nil {
		return Batch{}, false, fmt.Errorf("%s: %w", i.imagesPath, truncated(err))
	}
	rawLabels := make([]byte, n)
	if _, err := io.ReadFull(i.labels, rawLabels); err != nil {
		return Batch{}, false, fmt.Errorf("%s: %w", i.labelsPath, truncated(err))
	}

	batch := Batch{
		Features:    make([]float32, n*imageSize),
		Labels:      make([]int32, n),
		SampleShape: []int{imageSize},
	}
	for j, pixel := range pixels {
		batch.Features[j] = float32(pixel) / 255
	}
	for j, label := range rawLabels {
		batch.Labels[j] = int32(label)
	}
	i.remaining -= n
	return batch, true, nil
}

func (i *idxIterator) Close() error {
	var err error
	if i.imagesFile != nil {
		err = errors.Join(err, fileutil.CloseFile(i.imagesFile))
		i.imagesFile = nil
	}
	if i.labelsFile != nil {
		err = errors.Join(err, fileutil.CloseFile(i.labelsFile))
		i.labelsFile = nil
	}
	return err
}
