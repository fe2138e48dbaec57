package matrix

import "errors"

var (
	// ErrDimensionMismatch reports incompatible operand shapes: multiply
	// requires a.Cols == b.Rows, dot requires equal-length slices.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrWorkerFailure reports a worker that terminated without
	// producing a value for a task it accepted.
	ErrWorkerFailure = errors.New("worker failure")

	// ErrDispatchFailure reports a task that could not be enqueued
	// because the pool was already shut down.
	ErrDispatchFailure = errors.New("dispatch failure")

	// ErrNoWorkers reports a pool configured with fewer than one worker.
	ErrNoWorkers = errors.New("worker count must be at least 1")
)
