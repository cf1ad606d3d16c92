package safeconv

import "math"

// IntToUint32 converts int to uint32 with clamping into [0, MaxUint32].
func IntToUint32(v int) uint32 {
	if v < 0 {
		return 0
	}
	if uint64(v) > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(v) // #nosec G115 clamped above
}

// Uint32ToInt converts uint32 to int with clamping to MaxInt when necessary (32 bit platforms).
func Uint32ToInt(v uint32) int {
	if uint64(v) > math.MaxInt {
		return math.MaxInt
	}
	return int(v)
}

// UnitToByte maps a value in [0, 1] to [0, 255], rounding to the nearest integer and clamping values outside the range.
func UnitToByte(v float32) byte {
	if v <= 0 || math.IsNaN(float64(v)) {
		return 0
	}
	if v >= 1 {
		return math.MaxUint8
	}
	return byte(v*math.MaxUint8 + 0.5)
}
