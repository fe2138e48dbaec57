package matrix

import "fmt"

// Dot computes the inner product of a and b: the sum of a[i]*b[i].
//
// The slices must have equal length; a mismatch returns
// ErrDimensionMismatch. Correct slicing in the multiply paths makes the
// check unreachable there, but the invariant is validated independently
// because Dot is also a public entry point. Pure and goroutine-safe.
func Dot[T Number](a, b []T) (T, error) {
	var sum T
	if len(a) != len(b) {
		return sum, fmt.Errorf("dot: %w: len(a)=%d len(b)=%d", ErrDimensionMismatch, len(a), len(b))
	}
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum, nil
}
