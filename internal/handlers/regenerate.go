// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"pagecraft/internal/content"
	"pagecraft/internal/models"
	"pagecraft/internal/regen"
)

// maxLogLimit caps the generation-logs page size.
const maxLogLimit = 200

// regenerateRequest is the body of POST /api/pages/{id}/regenerate. The
// body may be omitted to regenerate with the default model.
type regenerateRequest struct {
	Model     string       `json:"model" validate:"max=100"`
	Overwrite bool         `json:"overwrite"`
	Params    regen.Params `json:"params"`
}

// bulkRequest is the body of POST /api/regenerate/bulk.
type bulkRequest struct {
	PageIDs   []uuid.UUID  `json:"page_ids" validate:"required,min=1,max=500"`
	Model     string       `json:"model" validate:"max=100"`
	Overwrite bool         `json:"overwrite"`
	Params    regen.Params `json:"params"`
}

// failedResponse is a failed regeneration result with the error class.
type failedResponse struct {
	*regen.Result
	Error string `json:"error"`
}

// Regenerate runs the regeneration pipeline for one page and waits for it.
// 200 on success, 409 when the page has content and overwrite is unset,
// 422 for an invalid document, 502 for a provider failure.
func (a *API) Regenerate(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req regenerateRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
	}

	res, err := a.pipeline.Regenerate(r.Context(), regen.Job{
		PageID:    id,
		Model:     req.Model,
		Params:    req.Params,
		Overwrite: req.Overwrite,
	})
	if err != nil {
		if res == nil {
			writeError(w, r, err)
			return
		}
		writeFailed(w, r, res, err)
		return
	}

	if res.Status == regen.StatusConfirmationRequired {
		writeJSON(w, http.StatusConflict, res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// writeFailed answers a regeneration attempt that reached the generator
// and failed. The attempt is already in the audit log.
func writeFailed(w http.ResponseWriter, r *http.Request, res *regen.Result, err error) {
	var (
		invalid  *content.ValidationError
		provider *content.ProviderError
	)
	switch {
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusUnprocessableEntity, failedResponse{Result: res, Error: "validation"})
	case errors.As(err, &provider):
		writeJSON(w, http.StatusBadGateway, failedResponse{Result: res, Error: "provider"})
	default:
		slog.Error("regeneration failed", "path", r.URL.Path, "error", err, "request_id", chimw.GetReqID(r.Context()))
		writeJSON(w, http.StatusInternalServerError, failedResponse{Result: res, Error: "internal"})
	}
}

// BulkRegenerate queues one job per page for the background worker.
func (a *API) BulkRegenerate(w http.ResponseWriter, r *http.Request) {
	if a.queue == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "unavailable", Message: "regeneration queue is not configured"})
		return
	}
	var req bulkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.checkModel(req.Model); err != nil {
		writeError(w, r, err)
		return
	}

	seen := make(map[uuid.UUID]bool, len(req.PageIDs))
	jobs := make([]regen.Job, 0, len(req.PageIDs))
	for _, id := range req.PageIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		jobs = append(jobs, regen.Job{PageID: id, Model: req.Model, Params: req.Params, Overwrite: req.Overwrite})
	}

	if err := a.queue.Enqueue(r.Context(), jobs...); err != nil {
		writeError(w, r, err)
		return
	}
	depth, err := a.queue.Len(r.Context())
	if err != nil {
		slog.Warn("queue length unavailable", "error", err)
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"queued":      len(jobs),
		"queue_depth": depth,
	})
}

// checkModel rejects a model whose provider is not configured, so bad bulk
// requests fail before they reach the queue. An empty model is the default.
func (a *API) checkModel(model string) error {
	model = strings.TrimSpace(model)
	if model == "" || a.models == nil {
		return nil
	}
	provider, _, _ := strings.Cut(model, ":")
	if !slices.Contains(a.models.Available(), provider) {
		return &content.ValidationError{Field: "model", Message: "unknown model " + strconv.Quote(model)}
	}
	return nil
}

// ListModels returns the generator ids requests may name.
func (a *API) ListModels(w http.ResponseWriter, r *http.Request) {
	available := []string{}
	if a.models != nil {
		available = a.models.Available()
	}
	writeJSON(w, http.StatusOK, map[string]any{"models": available})
}

// ListGenerationLogs returns the audit rows of a page, newest first.
func (a *API) ListGenerationLogs(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxLogLimit {
			writeError(w, r, &content.ValidationError{Field: "limit", Message: "must be between 1 and " + strconv.Itoa(maxLogLimit)})
			return
		}
	}

	logs, err := a.content.ListGenerationLogs(r.Context(), id, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if logs == nil {
		logs = []models.AiGenerationLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}
