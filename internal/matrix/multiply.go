package matrix

import "fmt"

// Multiply computes a×b sequentially on the calling goroutine.
//
// It is the correctness oracle for the concurrent path: for every cell
// (i,j) it extracts row i of a and column j of b and reduces them with
// Dot. Returns ErrDimensionMismatch unless a.C == b.R.
func Multiply[T Number](a, b Matrix[T]) (Matrix[T], error) {
	if a.C != b.R {
		return Matrix[T]{}, fmt.Errorf("multiply: %w: a.cols=%d b.rows=%d", ErrDimensionMismatch, a.C, b.R)
	}
	data := make([]T, a.R*b.C)
	for i := 0; i < a.R; i++ {
		row := a.Row(i)
		for j := 0; j < b.C; j++ {
			v, err := Dot(row, b.Col(j))
			if err != nil {
				return Matrix[T]{}, fmt.Errorf("multiply cell (%d,%d): %w", i, j, err)
			}
			data[i*b.C+j] = v
		}
	}
	return New(data, a.R, b.C), nil
}
