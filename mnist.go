package mnist

import (
	"fmt"

	"github.com/knights-analytics/mnist/datasets"
	"github.com/knights-analytics/mnist/options"
)

// Loader materializes dataset splits from a provider. It holds no state between loads:
// each call opens and drains its own iterator.
type Loader struct {
	provider datasets.Provider
	options  *options.Options
}

// NewLoader creates a Loader that reads from provider. Options are validated here once.
func NewLoader(provider datasets.Provider, opts ...options.WithOption) (*Loader, error) {
	if provider == nil {
		return nil, fmt.Errorf("provider is required")
	}
	parsedOptions, err := options.Parse(opts...)
	if err != nil {
		return nil, err
	}
	return &Loader{
		provider: provider,
		options:  parsedOptions,
	}, nil
}

// Options returns a copy of the options the loader was created with.
func (l *Loader) Options() options.Options {
	return *l.options
}

// Load materializes split.
func (l *Loader) Load(split datasets.Split) (*datasets.Dataset, error) {
	return datasets.Materialize(l.provider, split, l.withOptions()...)
}

func (l *Loader) Train() (*datasets.Dataset, error) {
	return l.Load(datasets.SplitTrain)
}

func (l *Loader) Test() (*datasets.Dataset, error) {
	return l.Load(datasets.SplitTest)
}

func (l *Loader) withOptions() []options.WithOption {
	return []options.WithOption{
		options.WithScratchRoot(l.options.ScratchRoot),
		options.WithSourceURL(l.options.SourceURL),
		options.WithBatchSize(l.options.BatchSize),
		options.WithVerbose(l.options.Verbose),
	}
}

// NewMNISTLoader creates a Loader backed by the MNIST IDX provider.
func NewMNISTLoader(opts ...options.WithOption) (*Loader, error) {
	provider, err := datasets.NewMNISTProvider(opts...)
	if err != nil {
		return nil, err
	}
	return NewLoader(provider, opts...)
}

// Train returns the MNIST training split as features of shape [60000, 784] and labels of shape [60000].
func Train(opts ...options.WithOption) (*datasets.Dataset, error) {
	loader, err := NewMNISTLoader(opts...)
	if err != nil {
		return nil, err
	}
	return loader.Train()
}

// Test returns the MNIST test split as features of shape [10000, 784] and labels of shape [10000].
func Test(opts ...options.WithOption) (*datasets.Dataset, error) {
	loader, err := NewMNISTLoader(opts...)
	if err != nil {
		return nil, err
	}
	return loader.Test()
}
