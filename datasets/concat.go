package datasets

import "golang.org/x/exp/constraints"

type element interface {
	constraints.Integer | constraints.Float
}

// concat joins row-major parts along their leading axis. Because every part is stored
// contiguously this covers both stacking feature batches and concatenating label vectors.
func concat[T element](parts [][]T) []T {
	total := 0
	for _, part := range parts {
		total += len(part)
	}
	joined := make([]T, 0, total)
	for _, part := range parts {
		joined = append(joined, part...)
	}
	return joined
}
