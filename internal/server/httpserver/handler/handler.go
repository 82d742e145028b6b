package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/yndnr/snapbrowse/internal/core/domain"
	"github.com/yndnr/snapbrowse/internal/telemetry/logger"
	"github.com/yndnr/snapbrowse/internal/telemetry/metric"
)

// Browser is the browse core the handlers delegate to.
type Browser interface {
	Serve(ctx context.Context, rootName string, segments []string, showHidden bool) (*domain.Resource, error)
	RootNames() []string
}

// Handler is the main HTTP handler that routes requests to the endpoint
// handlers.
type Handler struct {
	browser Browser
	metrics *metric.Registry
	logger  *slog.Logger
	mux     *http.ServeMux
}

// New creates a new Handler. metrics may be nil.
func New(browser Browser, metrics *metric.Registry, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	h := &Handler{
		browser: browser,
		metrics: metrics,
		logger:  log,
		mux:     http.NewServeMux(),
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)

	h.mux.HandleFunc("GET /info", h.handleInfo)
	h.mux.HandleFunc("GET /roots", h.handleRoots)
	h.mux.HandleFunc("GET /roots/{name}/path", h.handlePath)
	h.mux.HandleFunc("GET /roots/{name}/path/{path...}", h.handlePath)
}

// writeJSON writes v as a JSON response.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response",
			"request_id", logger.RequestIDFromContext(r.Context()),
			"error", err,
		)
	}
}

// writeError writes the error envelope for e.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, e *domain.DomainError, message string) {
	if message == "" {
		message = e.Message
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", e.Code)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Code:      e.Code,
		Message:   message,
		RequestID: logger.RequestIDFromContext(r.Context()),
	})
}

// handleServiceError logs a browse failure in full and answers with an
// opaque 500. Clients only ever see the request ID.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.KindOf(err)
	attrs := []any{
		"request_id", logger.RequestIDFromContext(r.Context()),
		"path", logger.EscapeControl(r.URL.Path),
		"code", domain.GetErrorCode(err),
		"kind", string(kind),
		"error", err,
	}
	if errors.Is(err, context.Canceled) {
		h.logger.Warn("request abandoned", attrs...)
	} else {
		h.logger.Error("request failed", attrs...)
	}

	h.writeError(w, r, http.StatusInternalServerError, domain.ErrInternal, "")
}
