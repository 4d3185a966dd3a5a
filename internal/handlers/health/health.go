package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

const checkTimeout = 3 * time.Second

// Checker verifies that a backing store is reachable
type Checker interface {
	Check(ctx context.Context) error
}

// CheckerFunc adapts a function to Checker
type CheckerFunc func(ctx context.Context) error

// Check calls f
func (f CheckerFunc) Check(ctx context.Context) error {
	return f(ctx)
}

// Handler reports the state of the wallet, snapshot and settings stores
type Handler struct {
	checks map[string]Checker
	logger logrus.FieldLogger
}

// NewHandler creates a health handler over the named checks
func NewHandler(logger logrus.FieldLogger, checks map[string]Checker) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{checks: checks, logger: logger}
}

// Routes returns the handler's router, to be mounted by the caller
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.check)
	return r
}

type result struct {
	Status string `json:"status"`
}

func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	results := make(map[string]result, len(h.checks))
	status := http.StatusOK

	for name, c := range h.checks {
		if err := c.Check(ctx); err != nil {
			h.logger.WithError(err).WithField("check", name).Error("health check failed")
			results[name] = result{Status: "error"}
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = result{Status: "ok"}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(results); err != nil {
		h.logger.WithError(err).Warn("failed to write health response")
	}
}

// NewRouter serves the health checks under /healthz and metrics under /metrics
func NewRouter(h *Handler, metrics http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Mount("/healthz", h.Routes())
	if metrics != nil {
		r.Handle("/metrics", metrics)
	}
	return r
}
