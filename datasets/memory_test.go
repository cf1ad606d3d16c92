package datasets_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/knights-analytics/mnist/datasets"
)

func TestInMemoryProviderRebatches(t *testing.T) {
	provider := datasets.NewInMemoryProvider([]int{1})
	check(t, provider.Add(datasets.SplitTest, datasets.Batch{Features: []float32{1, 2, 3}, Labels: []int32{1, 2, 3}, SampleShape: []int{1}}))
	check(t, provider.Add(datasets.SplitTest, datasets.Batch{Features: []float32{4, 5}, Labels: []int32{4, 5}, SampleShape: []int{1}}))

	iterator, err := provider.Open(datasets.SplitTest, "", 2)
	check(t, err)
	defer func() {
		check(t, iterator.Close())
	}()

	var sizes []int
	var labels []int32
	for {
		batch, ok, nextErr := iterator.Next()
		check(t, nextErr)
		if !ok {
			break
		}
		sizes = append(sizes, batch.Len())
		labels = append(labels, batch.Labels...)
	}
	assert.Equal(t, []int{2, 2, 1}, sizes)
	assert.Equal(t, []int32{1, 2, 3, 4, 5}, labels)

	// exhausted iterators stay exhausted
	_, ok, err := iterator.Next()
	check(t, err)
	assert.False(t, ok)
}

func TestInMemoryProviderSplitsAreIndependent(t *testing.T) {
	provider := datasets.NewInMemoryProvider([]int{1})
	check(t, provider.Add(datasets.SplitTrain, datasets.Batch{Features: []float32{1}, Labels: []int32{1}, SampleShape: []int{1}}))

	dataset, err := datasets.Materialize(provider, datasets.SplitTest)
	check(t, err)
	assert.Equal(t, 0, dataset.Len())
}

func TestInMemoryProviderRejectsInvalidBatches(t *testing.T) {
	provider := datasets.NewInMemoryProvider([]int{2})

	err := provider.Add(datasets.SplitTrain, datasets.Batch{Features: []float32{1}, Labels: []int32{1}, SampleShape: []int{1}})
	assert.ErrorIs(t, err, datasets.ErrShapeMismatch)

	err = provider.Add(datasets.SplitTrain, datasets.Batch{Features: []float32{1}, Labels: []int32{1}, SampleShape: []int{2}})
	assert.ErrorIs(t, err, datasets.ErrBatchLength)

	err = provider.Add(datasets.Split("validation"), datasets.Batch{SampleShape: []int{2}})
	assert.ErrorIs(t, err, datasets.ErrUnknownSplit)

	_, err = provider.Open(datasets.SplitTrain, "", 0)
	assert.Error(t, err)
}
