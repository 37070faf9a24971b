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

// WrapIncrement advances an index over [0, n). A zero n yields zero.
func WrapIncrement[T constraints.Integer](i, n T) T {
	if n == 0 {
		return 0
	}
	return (i + 1) % n
}
