// Package httpd exposes the analysis engine over HTTP.
package httpd

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/avasile/crosscheck/pkg/analyzer/comparisons"
	"github.com/avasile/crosscheck/pkg/artifact"
	"github.com/avasile/crosscheck/pkg/engine"
)

// Handler serves the report API. Every report endpoint takes the
// artifact location as a request parameter; there is no default
// artifact.
type Handler struct {
	router *chi.Mux
	engine *engine.Engine
	logger zerolog.Logger
}

// NewHandler builds the router.
func NewHandler(eng *engine.Engine, logger zerolog.Logger) *Handler {
	h := &Handler{
		router: chi.NewRouter(),
		engine: eng,
		logger: logger,
	}

	h.router.Use(middleware.RequestID)
	h.router.Use(middleware.RealIP)
	h.router.Use(middleware.Recoverer)
	h.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	h.router.Get("/health", h.health)
	h.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/reports", h.report)
		r.Get("/reports/comparison", h.comparison)
		r.Get("/reports/clusters", h.clusters)
	})

	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"service":   "crosscheck",
		"timestamp": time.Now().UTC(),
	})
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	artifactPath := r.URL.Query().Get("artifact")
	if artifactPath == "" {
		writeError(w, http.StatusBadRequest, "artifact parameter is required")
		return
	}

	report, err := h.engine.Analyze(r.Context(), artifactPath)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) comparison(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	artifactPath, first, second := q.Get("artifact"), q.Get("first"), q.Get("second")
	if artifactPath == "" || first == "" || second == "" {
		writeError(w, http.StatusBadRequest, "artifact, first and second parameters are required")
		return
	}

	detail, err := h.engine.Comparison(r.Context(), artifactPath, first, second)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) clusters(w http.ResponseWriter, r *http.Request) {
	artifactPath := r.URL.Query().Get("artifact")
	if artifactPath == "" {
		writeError(w, http.StatusBadRequest, "artifact parameter is required")
		return
	}

	report, err := h.engine.Analyze(r.Context(), artifactPath)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"analysis_id": report.AnalysisID,
		"clusters":    report.Clusters,
	})
}

func (h *Handler) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, comparisons.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, artifact.ErrInvalidArtifact):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.Error().Err(err).Msg("Request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
