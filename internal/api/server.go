// Package api exposes the multiply engine over HTTP.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/lattice/internal/logger"
	"github.com/samcharles93/lattice/internal/matrix"
	"github.com/samcharles93/lattice/internal/metrics"
)

// Request counter keys exposed at /v1/metrics.
const (
	metricMultiplyRequests = "api.multiply.requests"
	metricMultiplyErrors   = "api.multiply.errors"
)

// Server handles the REST surface. It owns a long-lived worker pool
// shared by all requests that do not ask for a dedicated one.
type Server struct {
	pool         *matrix.Pool[float64]
	poolCounters *metrics.AtomicMetrics
	requests     *metrics.Metrics
	log          logger.Logger
}

// NewServer wires a server around pool. poolCounters may be the
// counter set the pool itself reports into, or nil.
func NewServer(pool *matrix.Pool[float64], poolCounters *metrics.AtomicMetrics, log logger.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}
	return &Server{
		pool:         pool,
		poolCounters: poolCounters,
		requests:     metrics.New(),
		log:          log,
	}
}

// Register mounts the routes on e.
func (s *Server) Register(e *echo.Echo) {
	e.POST("/v1/multiply", s.handleMultiply)
	e.GET("/v1/metrics", s.handleMetrics)
	e.GET("/healthz", s.handleHealth)
}

func (s *Server) handleMultiply(c *echo.Context) error {
	s.requests.Inc(metricMultiplyRequests)

	req, err := decodeJSON[MultiplyRequest](c.Request().Body)
	if err != nil {
		s.requests.Inc(metricMultiplyErrors)
		return writeBadRequest(c, err.Error())
	}
	if req.A == nil || req.B == nil {
		s.requests.Inc(metricMultiplyErrors)
		return writeBadRequest(c, "both matrices a and b are required")
	}

	id := uuid.NewString()
	workers := s.pool.Workers()
	start := time.Now()

	var result matrix.Matrix[float64]
	if req.Workers > 0 {
		workers = req.Workers
		result, err = s.multiplyDedicated(req)
	} else {
		result, err = s.pool.Multiply(*req.A, *req.B)
	}
	if err != nil {
		s.requests.Inc(metricMultiplyErrors)
		if errors.Is(err, matrix.ErrDimensionMismatch) || errors.Is(err, matrix.ErrNoWorkers) {
			return writeBadRequest(c, err.Error())
		}
		s.log.Error("multiply failed", "id", id, "error", err)
		return writeError(c, http.StatusInternalServerError, "worker_error", err.Error())
	}

	elapsed := time.Since(start)
	s.log.Info("multiply",
		"id", id,
		"shape", result.R*result.C,
		"workers", workers,
		"elapsed", elapsed,
	)
	return c.JSON(http.StatusOK, MultiplyResponse{
		ID:        id,
		Result:    result,
		Workers:   workers,
		ElapsedMS: float64(elapsed.Microseconds()) / 1000,
	})
}

// multiplyDedicated runs one request on a pool of its own size, torn
// down afterwards. It reports into the same task counters as the
// shared pool so /v1/metrics sees every task either way.
func (s *Server) multiplyDedicated(req MultiplyRequest) (matrix.Matrix[float64], error) {
	p, err := matrix.NewPool[float64](matrix.PoolConfig{
		Workers:  req.Workers,
		Counters: s.poolCounters,
	})
	if err != nil {
		return matrix.Matrix[float64]{}, err
	}
	defer p.Close()
	return p.Multiply(*req.A, *req.B)
}

func (s *Server) handleMetrics(c *echo.Context) error {
	counters := s.requests.Snapshot()
	for k, v := range s.poolCounters.Snapshot() {
		counters[k] = v
	}
	return c.JSON(http.StatusOK, MetricsResponse{Counters: counters})
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
