package matrix

import (
	"fmt"
	"math/rand"
	"strings"
)

// Matrix is a dense row-major matrix of numeric elements.
//
// R and C are the number of rows and columns. Data holds the flattened
// values; the element at (i,j) lives at Data[i*C+j]. Construction does
// not validate len(Data) against R*C; a short slice surfaces as an
// out-of-range panic on first access, the same way a bad index does on
// Go slices. Operations treat matrices as immutable: multiply always
// allocates a fresh result.
type Matrix[T Number] struct {
	R, C int
	Data []T
}

// New builds a matrix from row-major data with the given shape.
func New[T Number](data []T, rows, cols int) Matrix[T] {
	return Matrix[T]{R: rows, C: cols, Data: data}
}

// Zero allocates a zero-initialised rows×cols matrix.
func Zero[T Number](rows, cols int) Matrix[T] {
	if rows < 0 || cols < 0 {
		panic("matrix: negative dimension")
	}
	return Matrix[T]{R: rows, C: cols, Data: make([]T, rows*cols)}
}

// Fill allocates a rows×cols matrix with every element set to v.
func Fill[T Number](rows, cols int, v T) Matrix[T] {
	m := Zero[T](rows, cols)
	for i := range m.Data {
		m.Data[i] = v
	}
	return m
}

// Identity allocates the n×n identity matrix.
func Identity[T Number](n int) Matrix[T] {
	m := Zero[T](n, n)
	for i := 0; i < n; i++ {
		m.Data[i*n+i] = 1
	}
	return m
}

// Random allocates a rows×cols float64 matrix with deterministic
// pseudo-random contents for the given seed. Used by benchmarks.
func Random(rows, cols int, seed int64) Matrix[float64] {
	rng := rand.New(rand.NewSource(seed))
	m := Zero[float64](rows, cols)
	for i := range m.Data {
		m.Data[i] = rng.Float64()*2 - 1
	}
	return m
}

// At returns the element at row i, column j.
func (m Matrix[T]) At(i, j int) T {
	if i < 0 || i >= m.R || j < 0 || j >= m.C {
		panic("matrix: index out of range")
	}
	return m.Data[i*m.C+j]
}

// Row returns a view of row i. The slice aliases the matrix storage;
// callers that hand it to another goroutine must copy it first.
func (m Matrix[T]) Row(i int) []T {
	if i < 0 || i >= m.R {
		panic("matrix: row index out of range")
	}
	start := i * m.C
	return m.Data[start : start+m.C]
}

// Col returns a copy of column j, extracted with stride C.
func (m Matrix[T]) Col(j int) []T {
	if j < 0 || j >= m.C {
		panic("matrix: column index out of range")
	}
	col := make([]T, m.R)
	for i := 0; i < m.R; i++ {
		col[i] = m.Data[i*m.C+j]
	}
	return col
}

// Equal reports whether both matrices have the same shape and elements.
func (m Matrix[T]) Equal(other Matrix[T]) bool {
	if m.R != other.R || m.C != other.C || len(m.Data) != len(other.Data) {
		return false
	}
	for i, v := range m.Data {
		if v != other.Data[i] {
			return false
		}
	}
	return true
}

// String renders the matrix as "{r0,r1,...}" with rows separated by
// commas and elements by single spaces: a 2×2 [a b c d] prints as
// "{a b,c d}".
func (m Matrix[T]) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i := 0; i < m.R; i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		for j := 0; j < m.C; j++ {
			if j > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%v", m.Data[i*m.C+j])
		}
	}
	sb.WriteByte('}')
	return sb.String()
}
