package api

import "github.com/samcharles93/lattice/internal/matrix"

// MultiplyRequest is the body of POST /v1/multiply. Workers, when
// positive, runs the request on a dedicated pool of that size instead
// of the server's long-lived pool.
type MultiplyRequest struct {
	A       *matrix.Matrix[float64] `json:"a"`
	B       *matrix.Matrix[float64] `json:"b"`
	Workers int                     `json:"workers,omitempty"`
}

// MultiplyResponse carries the product and job accounting.
type MultiplyResponse struct {
	ID        string                 `json:"id"`
	Result    matrix.Matrix[float64] `json:"result"`
	Workers   int                    `json:"workers"`
	ElapsedMS float64                `json:"elapsed_ms"`
}

// MetricsResponse is the body of GET /v1/metrics: pool task counters
// merged with per-route request counters.
type MetricsResponse struct {
	Counters map[string]int64 `json:"counters"`
}

// ErrorBody is the error envelope returned by every handler.
type ErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}
