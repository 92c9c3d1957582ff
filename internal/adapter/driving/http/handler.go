package httphandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ericfisherdev/meritbot/internal/application"
	"github.com/ericfisherdev/meritbot/internal/domain/port/driven"
)

// CycleSource exposes the poll loop to the API. *application.PollService
// implements it.
type CycleSource interface {
	LastResult() (result application.CycleResult, err error, at time.Time, ok bool)
	TriggerCycle(ctx context.Context) (application.CycleResult, error)
}

// HealthChecker is implemented by the sqlite and postgres stores.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Handler is the HTTP driving adapter that serves the REST API and the
// rendered meritocracy page.
type Handler struct {
	voterStore driven.VoterStore
	cycles     CycleSource
	store      HealthChecker
	repo       string
	logger     *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. store may be
// nil, in which case the health check skips the database.
func NewHandler(
	voterStore driven.VoterStore,
	cycles CycleSource,
	store HealthChecker,
	repo string,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		voterStore: voterStore,
		cycles:     cycles,
		store:      store,
		repo:       repo,
		logger:     logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("GET /api/v1/meritocracy", h.GetMeritocracy)
	mux.HandleFunc("GET /api/v1/voters", h.ListVoters)
	mux.HandleFunc("GET /api/v1/cycles/last", h.GetLastCycle)
	mux.HandleFunc("POST /api/v1/cycles", h.TriggerCycle)
	mux.HandleFunc("GET /meritocracy", h.MeritocracyPage)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// GetMeritocracy returns the meritocracy computed by the most recent cycle.
func (h *Handler) GetMeritocracy(w http.ResponseWriter, _ *http.Request) {
	result, _, at, ok := h.cycles.LastResult()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no cycle has run yet")
		return
	}

	writeJSON(w, http.StatusOK, toMeritocracyResponse(result, at))
}

// ListVoters returns every credited voter, highest credit first.
func (h *Handler) ListVoters(w http.ResponseWriter, r *http.Request) {
	voters, err := h.voterStore.ListVoters(r.Context())
	if err != nil {
		h.logger.Error("failed to list voters", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]VoterResponse, 0, len(voters))
	for _, v := range voters {
		resp = append(resp, toVoterResponse(v))
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetLastCycle returns the summary of the most recent cycle, including the
// error that aborted it, if any.
func (h *Handler) GetLastCycle(w http.ResponseWriter, _ *http.Request) {
	result, cycleErr, at, ok := h.cycles.LastResult()
	if !ok {
		writeError(w, http.StatusNotFound, "no cycle has run yet")
		return
	}

	writeJSON(w, http.StatusOK, toCycleResponse(result, cycleErr, at))
}

// TriggerCycle runs a cycle immediately and returns its summary. The request
// blocks until the cycle finishes.
func (h *Handler) TriggerCycle(w http.ResponseWriter, r *http.Request) {
	result, err := h.cycles.TriggerCycle(r.Context())
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		writeError(w, http.StatusServiceUnavailable, "cycle did not complete")
		return
	}

	status := http.StatusOK
	if err != nil {
		h.logger.Error("triggered cycle failed", "cycle_id", result.ID, "error", err)
		status = http.StatusBadGateway
	}

	writeJSON(w, status, toCycleResponse(result, err, time.Now()))
}

// Health reports liveness and, when a store is configured, database
// reachability.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status: "ok",
		Repo:   h.repo,
		Time:   time.Now().UTC().Format(time.RFC3339),
	}

	if h.store != nil {
		if err := h.store.Health(r.Context()); err != nil {
			h.logger.Warn("store health check failed", "error", err)
			resp.Status = "degraded"
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	}

	if _, cycleErr, at, ok := h.cycles.LastResult(); ok {
		resp.LastCycleAt = at.UTC().Format(time.RFC3339)
		resp.LastCycleOK = cycleErr == nil
	}

	writeJSON(w, http.StatusOK, resp)
}
