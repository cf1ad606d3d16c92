package options

import (
	"fmt"
	"os"

	"github.com/knights-analytics/mnist/util/fileutil"
)

// DefaultSourceURL is the mirror the MNIST IDX archives are fetched from.
const DefaultSourceURL = "https://storage.googleapis.com/cvdf-datasets/mnist/"

// DefaultBatchSize is the number of samples requested from a provider per batch.
const DefaultBatchSize = 1000

type Options struct {
	// ScratchRoot is the directory under which each split gets its own scratch directory.
	ScratchRoot string
	// SourceURL is where missing raw files are downloaded from. Any afs URL is accepted.
	SourceURL   string
	BatchSize   int
	Verbose     bool
}

func Defaults() *Options {
	return &Options{
		ScratchRoot: os.TempDir(),
		SourceURL:   DefaultSourceURL,
		BatchSize:   DefaultBatchSize,
	}
}

// WithOption is the interface for all option functions.
type WithOption func(o *Options) error

// Parse applies opts on top of Defaults, in order.
func Parse(opts ...WithOption) (*Options, error) {
	parsedOptions := Defaults()
	for _, option := range opts {
		if option == nil {
			continue
		}
		if err := option(parsedOptions); err != nil {
			return nil, err
		}
	}
	return parsedOptions, nil
}

// WithScratchRoot sets the directory that holds the per-split scratch directories.
// Local paths and s3:// URLs are supported.
func WithScratchRoot(root string) WithOption {
	return func(o *Options) error {
		if root == "" {
			return fmt.Errorf("scratch root must not be empty")
		}
		if fileutil.GetPathType(root) == "URL" {
			return fmt.Errorf("scratch root %q must be a local path or an s3 URL", root)
		}
		o.ScratchRoot = root
		return nil
	}
}

// WithSourceURL sets the location raw dataset files are staged from.
func WithSourceURL(url string) WithOption {
	return func(o *Options) error {
		if url == "" {
			return fmt.Errorf("source url must not be empty")
		}
		o.SourceURL = url
		return nil
	}
}

// WithBatchSize sets the number of samples requested per batch. The last batch of a split may be shorter.
func WithBatchSize(batchSize int) WithOption {
	return func(o *Options) error {
		if batchSize < 1 {
			return fmt.Errorf("batch size must be at least 1, got %d", batchSize)
		}
		o.BatchSize = batchSize
		return nil
	}
}

func WithVerbose(verbose bool) WithOption {
	return func(o *Options) error {
		o.Verbose = verbose
		return nil
	}
}
