package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ansuz/internal/adrservice"
	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
)

// Handler holds API route handlers.
type Handler struct {
	svc *adrservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *adrservice.Service) *Handler {
	return &Handler{svc: svc}
}

// Report handles GET /api/report: the full JSON report of the latest analysis.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.Report(r.Context())
	if err != nil {
		h.analysisError(w, err, "report")
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// Graph handles GET /api/graph: the persisted dependency graph.
func (h *Handler) Graph(w http.ResponseWriter, r *http.Request) {
	rows, edges, err := h.svc.PersistedGraph(r.Context())
	if err != nil {
		slog.Error("graph failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	nodes := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		nodes = append(nodes, map[string]string{
			"id":     row.ID,
			"title":  row.Title,
			"status": row.Status,
		})
	}
	if edges == nil {
		edges = []models.Edge{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"nodes": nodes,
		"edges": edges,
	})
}

// Cycles handles GET /api/cycles.
func (h *Handler) Cycles(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.Report(r.Context())
	if err != nil {
		h.analysisError(w, err, "cycles")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cycles": rep.Cycles})
}

// Issues handles GET /api/issues.
func (h *Handler) Issues(w http.ResponseWriter, r *http.Request) {
	issues, err := h.svc.PersistedIssues(r.Context())
	if err != nil {
		slog.Error("issues failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if issues == nil {
		issues = []models.Issue{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"issues": issues})
}

// ListADRs handles GET /api/adrs.
func (h *Handler) ListADRs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	status := q.Get("status")

	items, total, err := h.svc.ListADRs(r.Context(), limit, offset, status)
	if err != nil {
		slog.Error("list adrs failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"adrs":  items,
		"total": total,
	})
}

// GetADR handles GET /api/adrs/{id}.
func (h *Handler) GetADR(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("id is required"))
		return
	}
	detail, err := h.svc.GetADR(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get adr failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// Impact handles GET /api/adrs/{id}/impact.
func (h *Handler) Impact(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	entry, err := h.svc.Impact(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			h.analysisError(w, err, "impact")
		}
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Search handles GET /api/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("q is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	out := make([]map[string]string, 0, len(results))
	for _, res := range results {
		out = append(out, map[string]string{
			"id":      res.ID,
			"title":   res.Title,
			"snippet": res.Snippet,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": out})
}

// Fixes handles POST /api/fixes. The body selects dry-run (default) or apply.
func (h *Handler) Fixes(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req struct {
		Apply bool `json:"apply"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
			return
		}
	}

	fixes, err := h.svc.PlanFixes(r.Context())
	if err != nil {
		h.analysisError(w, err, "plan fixes")
		return
	}

	if !req.Apply {
		writeJSON(w, http.StatusOK, map[string]any{"planned": fixes, "applied": false})
		return
	}

	results, err := h.svc.ApplyFixes(r.Context(), fixes)
	if err != nil {
		slog.Error("apply fixes failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results, "applied": true})
}

func (h *Handler) analysisError(w http.ResponseWriter, err error, op string) {
	if errors.Is(err, apperr.ErrNoAnalysis) {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("analysis not ready"))
		return
	}
	slog.Error(op+" failed", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
}
