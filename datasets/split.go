package datasets

import (
	"fmt"

	"github.com/knights-analytics/mnist/util/fileutil"
)

// Split names a partition of a dataset.
type Split string

const (
	SplitTrain Split = "train"
	SplitTest  Split = "test"
)

// Splits lists every recognised split, in the order they are usually loaded.
var Splits = []Split{SplitTrain, SplitTest}

// ParseSplit converts a split name into a Split.
func ParseSplit(name string) (Split, error) {
	split := Split(name)
	if err := split.Validate(); err != nil {
		return "", err
	}
	return split, nil
}

func (s Split) Validate() error {
	switch s {
	case SplitTrain, SplitTest:
		return nil
	default:
		return fmt.Errorf("%w: %q (expected one of %v)", ErrUnknownSplit, string(s), Splits)
	}
}

func (s Split) String() string {
	return string(s)
}

// ScratchDir returns the per-split scratch directory under root, e.g. /tmp/datatrain.
func (s Split) ScratchDir(root string) string {
	return fileutil.PathJoinSafe(root, "data"+string(s))
}
