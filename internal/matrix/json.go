package matrix

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// matrixJSON is the wire shape: {"rows":R,"cols":C,"data":[...]}.
type matrixJSON[T Number] struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
	Data []T `json:"data"`
}

// MarshalJSON encodes the matrix with its shape alongside the
// row-major data.
func (m Matrix[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(matrixJSON[T]{Rows: m.R, Cols: m.C, Data: m.Data})
}

// UnmarshalJSON decodes a matrix, rejecting payloads whose data length
// does not match rows*cols. Unlike New, the wire boundary validates:
// malformed input comes from outside the process.
func (m *Matrix[T]) UnmarshalJSON(b []byte) error {
	var raw matrixJSON[T]
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw.Rows < 0 || raw.Cols < 0 || len(raw.Data) != raw.Rows*raw.Cols {
		return fmt.Errorf("matrix json: %w: rows=%d cols=%d len(data)=%d",
			ErrDimensionMismatch, raw.Rows, raw.Cols, len(raw.Data))
	}
	*m = New(raw.Data, raw.Rows, raw.Cols)
	return nil
}
