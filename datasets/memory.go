package datasets

import (
	"fmt"
	"slices"
)

// InMemoryProvider serves splits from batches held in memory. Stored samples are re-batched to the
// batch size requested by Open, so the number of batches added does not have to match the number yielded.
// Populate it with Add before handing it out; Open itself does not mutate the provider.
type InMemoryProvider struct {
	sampleShape []int
	features    map[Split][]float32
	labels      map[Split][]int32
}

// NewInMemoryProvider creates an empty provider whose samples all have sampleShape.
func NewInMemoryProvider(sampleShape []int) *InMemoryProvider {
	return &InMemoryProvider{
		sampleShape: slices.Clone(sampleShape),
		features:    map[Split][]float32{},
		labels:      map[Split][]int32{},
	}
}

// Add appends the samples of batch to split.
func (p *InMemoryProvider) Add(split Split, batch Batch) error {
	if err := split.Validate(); err != nil {
		return err
	}
	if err := batch.Validate(); err != nil {
		return err
	}
	if !slices.Equal(batch.SampleShape, p.sampleShape) {
		return fmt.Errorf("%w: batch has sample shape %v, provider expects %v", ErrShapeMismatch, batch.SampleShape, p.sampleShape)
	}
	p.features[split] = append(p.features[split], batch.Features...)
	p.labels[split] = append(p.labels[split], batch.Labels...)
	return nil
}

// Open ignores scratchDir: nothing needs staging.
func (p *InMemoryProvider) Open(split Split, _ string, batchSize int) (BatchIterator, error) {
	if err := split.Validate(); err != nil {
		return nil, err
	}
	if batchSize < 1 {
		return nil, fmt.Errorf("batch size must be at least 1, got %d", batchSize)
	}
	return &inMemoryIterator{
		features:    p.features[split],
		labels:      p.labels[split],
		sampleShape: p.sampleShape,
		step:        batchSize,
	}, nil
}

type inMemoryIterator struct {
	features    []float32
	labels      []int32
	sampleShape []int
	index       int
	step        int
}

func (i *inMemoryIterator) Next() (Batch, bool, error) {
	if i.index >= len(i.labels) {
		return Batch{}, false, nil
	}
	end := min(i.index+i.step, len(i.labels))
	size := shapeSize(i.sampleShape)
	batch := Batch{
		Features:    i.features[i.index*size : end*size],
		Labels:      i.labels[i.index:end],
		SampleShape: i.sampleShape,
	}
	i.index = end
	return batch, true, nil
}

func (i *inMemoryIterator) Close() error {
	return nil
}
