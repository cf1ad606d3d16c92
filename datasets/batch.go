package datasets

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownSplit  = errors.New("unknown split")
	ErrShapeMismatch = errors.New("sample shape mismatch")
	ErrBatchLength   = errors.New("batch length mismatch")
	ErrInvalidHeader = errors.New("invalid idx header")
	ErrEmptyDataset  = errors.New("dataset is empty")
)

// Batch is a group of samples pulled together from a provider.
// Features are stored row-major with shape [Len(), SampleShape...], Labels have shape [Len()].
type Batch struct {
	Features    []float32
	Labels      []int32
	SampleShape []int
}

// SampleSize is the number of feature values per sample.
func (b Batch) SampleSize() int {
	return shapeSize(b.SampleShape)
}

func (b Batch) Len() int {
	return len(b.Labels)
}

// Validate checks that the feature buffer holds exactly one sample per label.
func (b Batch) Validate() error {
	for _, dim := range b.SampleShape {
		if dim < 1 {
			return fmt.Errorf("%w: invalid sample shape %v", ErrShapeMismatch, b.SampleShape)
		}
	}
	if want := len(b.Labels) * b.SampleSize(); len(b.Features) != want {
		return fmt.Errorf("%w: %d labels with sample shape %v need %d feature values, got %d",
			ErrBatchLength, len(b.Labels), b.SampleShape, want, len(b.Features))
	}
	return nil
}

// BatchIterator yields the batches of one split. Next returns ok == false, with a nil error,
// once the split is exhausted. Any non-nil error is fatal to the iteration.
type BatchIterator interface {
	Next() (batch Batch, ok bool, err error)
	Close() error
}

// Provider opens a single-pass batch iterator over a split. scratchDir is a per-split
// directory the provider may use as a transient cache.
type Provider interface {
	Open(split Split, scratchDir string, batchSize int) (BatchIterator, error)
}

func shapeSize(shape []int) int {
	size := 1
	for _, dim := range shape {
		size *= dim
	}
	return size
}
