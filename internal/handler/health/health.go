// Package health serves the dependency checks behind /healthz.
package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

// Checker verifies that an infrastructure dependency is reachable.
type Checker interface {
	Check(ctx context.Context) error
}

// CheckFunc adapts a function to Checker.
type CheckFunc func(ctx context.Context) error

func (f CheckFunc) Check(ctx context.Context) error { return f(ctx) }

const (
	StatusOK       = "ok"
	StatusError    = "error"
	StatusDegraded = "degraded"
)

type Result struct {
	Status     string `json:"status"`
	DurationMS int64  `json:"durationMs"`
}

// Response is the body of /healthz. Status is degraded when any check fails.
type Response struct {
	Status string            `json:"status"`
	Checks map[string]Result `json:"checks"`
}

type Handler struct {
	checks  map[string]Checker
	logger  *slog.Logger
	timeout time.Duration
}

func NewHandler(logger *slog.Logger, checks map[string]Checker) *Handler {
	return &Handler{checks: checks, logger: logger, timeout: 3 * time.Second}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.check)
	return r
}

func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp := Response{Status: StatusOK, Checks: make(map[string]Result, len(h.checks))}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for name, c := range h.checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			err := c.Check(ctx)
			res := Result{Status: StatusOK, DurationMS: time.Since(start).Milliseconds()}
			if err != nil {
				h.logger.Error("health check failed", "name", name, "error", err)
				res.Status = StatusError
			}

			mu.Lock()
			resp.Checks[name] = res
			if err != nil {
				resp.Status = StatusDegraded
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	status := http.StatusOK
	if resp.Status != StatusOK {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
