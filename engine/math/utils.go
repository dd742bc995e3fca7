package math

import "golang.org/x/exp/constraints"

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// nonZero returns v, or 1 when v is 0. Used to keep divisions total.
func nonZero[T constraints.Float | constraints.Integer](v T) T {
	if v == 0 {
		return 1
	}
	return v
}
