package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/lattice/internal/logger"
	"github.com/samcharles93/lattice/internal/matrix"
	"github.com/samcharles93/lattice/internal/metrics"
)

func newTestServer(t *testing.T) (*echo.Echo, *Server) {
	t.Helper()
	counters := metrics.NewAtomic(matrix.PoolMetricKeys()...)
	pool, err := matrix.NewPool[float64](matrix.PoolConfig{Workers: 4, Counters: counters})
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	t.Cleanup(pool.Close)

	s := NewServer(pool, counters, logger.JSON(io.Discard, slog.LevelError))
	e := echo.New()
	s.Register(e)
	return e, s
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestMultiplyEndpoint(t *testing.T) {
	t.Parallel()
	e, _ := newTestServer(t)

	body := `{"a":{"rows":2,"cols":2,"data":[1,2,3,4]},"b":{"rows":2,"cols":2,"data":[1,2,3,4]}}`
	rec := doJSON(t, e, http.MethodPost, "/v1/multiply", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}

	var resp MultiplyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID == "" {
		t.Fatal("expected job id")
	}
	want := matrix.New([]float64{7, 10, 15, 22}, 2, 2)
	if !resp.Result.Equal(want) {
		t.Fatalf("result: got %v want %v", resp.Result, want)
	}
	if resp.Workers != 4 {
		t.Fatalf("workers: got %d want 4", resp.Workers)
	}
}

func TestMultiplyEndpointDedicatedWorkers(t *testing.T) {
	t.Parallel()
	e, _ := newTestServer(t)

	body := `{"a":{"rows":1,"cols":2,"data":[1,2]},"b":{"rows":2,"cols":1,"data":[3,4]},"workers":2}`
	rec := doJSON(t, e, http.MethodPost, "/v1/multiply", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	var resp MultiplyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Workers != 2 {
		t.Fatalf("workers: got %d want 2", resp.Workers)
	}
	if !resp.Result.Equal(matrix.New([]float64{11}, 1, 1)) {
		t.Fatalf("result: got %v", resp.Result)
	}
}

func TestMultiplyEndpointDimensionMismatch(t *testing.T) {
	t.Parallel()
	e, _ := newTestServer(t)

	body := `{"a":{"rows":2,"cols":2,"data":[1,2,3,4]},"b":{"rows":3,"cols":1,"data":[1,2,3]}}`
	rec := doJSON(t, e, http.MethodPost, "/v1/multiply", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("invalid_request_error")) {
		t.Fatalf("expected error envelope, got: %s", rec.Body.String())
	}
}

func TestMultiplyEndpointMissingOperand(t *testing.T) {
	t.Parallel()
	e, _ := newTestServer(t)

	rec := doJSON(t, e, http.MethodPost, "/v1/multiply", `{"a":{"rows":1,"cols":1,"data":[1]}}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestMultiplyEndpointMalformedBody(t *testing.T) {
	t.Parallel()
	e, _ := newTestServer(t)

	rec := doJSON(t, e, http.MethodPost, "/v1/multiply", `{"a":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}

	// Payload length not matching the declared shape is also a 400.
	rec = doJSON(t, e, http.MethodPost, "/v1/multiply",
		`{"a":{"rows":2,"cols":2,"data":[1]},"b":{"rows":2,"cols":2,"data":[1,2,3,4]}}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	e, _ := newTestServer(t)

	body := `{"a":{"rows":2,"cols":2,"data":[1,2,3,4]},"b":{"rows":2,"cols":2,"data":[1,2,3,4]}}`
	if rec := doJSON(t, e, http.MethodPost, "/v1/multiply", body); rec.Code != http.StatusOK {
		t.Fatalf("multiply status: got %d", rec.Code)
	}

	rec := doJSON(t, e, http.MethodGet, "/v1/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	var resp MetricsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := resp.Counters[metricMultiplyRequests]; got != 1 {
		t.Fatalf("%s: got %d want 1", metricMultiplyRequests, got)
	}
	if got := resp.Counters[matrix.MetricTasksCompleted]; got != 4 {
		t.Fatalf("%s: got %d want 4", matrix.MetricTasksCompleted, got)
	}
}

func TestMetricsEndpointCountsDedicatedPool(t *testing.T) {
	t.Parallel()
	e, _ := newTestServer(t)

	// One task on a request-scoped pool; it must show up in the same
	// counters the shared pool reports into.
	body := `{"a":{"rows":1,"cols":2,"data":[1,2]},"b":{"rows":2,"cols":1,"data":[3,4]},"workers":2}`
	if rec := doJSON(t, e, http.MethodPost, "/v1/multiply", body); rec.Code != http.StatusOK {
		t.Fatalf("multiply status: got %d body=%s", rec.Code, rec.Body.String())
	}

	rec := doJSON(t, e, http.MethodGet, "/v1/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	var resp MetricsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := resp.Counters[matrix.MetricTasksCompleted]; got != 1 {
		t.Fatalf("%s: got %d want 1", matrix.MetricTasksCompleted, got)
	}
	if got := resp.Counters[matrix.MetricTasksDispatched]; got != 1 {
		t.Fatalf("%s: got %d want 1", matrix.MetricTasksDispatched, got)
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	e, _ := newTestServer(t)
	rec := doJSON(t, e, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("body: %s", rec.Body.String())
	}
}
