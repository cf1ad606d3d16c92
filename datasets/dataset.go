package datasets

import (
	"errors"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/mat"
	"gorgonia.org/tensor"

	"github.com/knights-analytics/mnist/options"
)

// Dataset is a fully materialized split. Features are stored row-major with shape
// [Len(), SampleShape...] and Labels with shape [Len()].
type Dataset struct {
	Split       Split
	Features    []float32
	Labels      []int32
	SampleShape []int
}

func (d *Dataset) Len() int {
	return len(d.Labels)
}

// FeatureShape is the shape of the stacked feature array.
func (d *Dataset) FeatureShape() []int {
	return append([]int{d.Len()}, d.SampleShape...)
}

func (d *Dataset) SampleSize() int {
	return shapeSize(d.SampleShape)
}

// Sample returns the features and label of the i-th sample. The feature slice aliases the dataset.
func (d *Dataset) Sample(i int) ([]float32, int32) {
	size := d.SampleSize()
	return d.Features[i*size : (i+1)*size], d.Labels[i]
}

// LabelCounts counts samples per label.
func (d *Dataset) LabelCounts() map[int32]int {
	counts := make(map[int32]int)
	for _, label := range d.Labels {
		counts[label]++
	}
	return counts
}

// Tensors wraps the dataset in gorgonia dense tensors. The tensors share memory with the dataset.
func (d *Dataset) Tensors() (features *tensor.Dense, labels *tensor.Dense, err error) {
	if d.Len() == 0 {
		return nil, nil, fmt.Errorf("%w: split %s", ErrEmptyDataset, d.Split)
	}
	features = tensor.New(
		tensor.Of(tensor.Float32),
		tensor.WithShape(d.FeatureShape()...),
		tensor.WithBacking(d.Features),
	)
	labels = tensor.New(
		tensor.Of(tensor.Int32),
		tensor.WithShape(d.Len()),
		tensor.WithBacking(d.Labels),
	)
	return features, labels, nil
}

// Matrix copies the features into a gonum matrix with one row per sample.
func (d *Dataset) Matrix() (*mat.Dense, error) {
	if d.Len() == 0 {
		return nil, fmt.Errorf("%w: split %s", ErrEmptyDataset, d.Split)
	}
	data := make([]float64, len(d.Features))
	for i, value := range d.Features {
		data[i] = float64(value)
	}
	return mat.NewDense(d.Len(), d.SampleSize(), data), nil
}

// Materialize drains the provider's iterator for split and concatenates every batch, in arrival
// order, into a single Dataset. The split is validated before the provider is opened.
// An exhausted iterator ends the loop; any other provider error is returned as is.
func Materialize(provider Provider, split Split, opts ...options.WithOption) (*Dataset, error) {
	if provider == nil {
		return nil, fmt.Errorf("provider is required")
	}
	if err := split.Validate(); err != nil {
		return nil, err
	}
	parsedOptions, err := options.Parse(opts...)
	if err != nil {
		return nil, err
	}
	return materialize(provider, split, parsedOptions)
}

func materialize(provider Provider, split Split, o *options.Options) (dataset *Dataset, err error) {
	iterator, err := provider.Open(split, split.ScratchDir(o.ScratchRoot), o.BatchSize)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := iterator.Close(); closeErr != nil {
			dataset = nil
			err = errors.Join(err, closeErr)
		}
	}()

	var features [][]float32
	var labels [][]int32
	var sampleShape []int
	batchN := 0

	for {
		batch, ok, nextErr := iterator.Next()
		if nextErr != nil {
			return nil, nextErr
		}
		if !ok {
			break
		}
		if validateErr := batch.Validate(); validateErr != nil {
			return nil, fmt.Errorf("split %s, batch %d: %w", split, batchN, validateErr)
		}
		if batchN == 0 {
			sampleShape = slices.Clone(batch.SampleShape)
		} else if !slices.Equal(sampleShape, batch.SampleShape) {
			return nil, fmt.Errorf("%w: split %s, batch %d has sample shape %v, expected %v",
				ErrShapeMismatch, split, batchN, batch.SampleShape, sampleShape)
		}
		features = append(features, batch.Features)
		labels = append(labels, batch.Labels)
		batchN++
	}

	dataset = &Dataset{
		Split:       split,
		Features:    concat(features),
		Labels:      concat(labels),
		SampleShape: sampleShape,
	}
	if o.Verbose {
		fmt.Printf("materialized %s split: %d examples in %d batches of up to %d\n", split, dataset.Len(), batchN, o.BatchSize)
	}
	return dataset, nil
}
