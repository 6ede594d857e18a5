// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the JSON HTTP handlers for the pagecraft API.
// Handlers are grouped by concern (pages, versions, regeneration, status)
// and receive their dependencies through the API struct.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"pagecraft/internal/content"
	"pagecraft/internal/models"
	"pagecraft/internal/regen"
)

// ContentService is the part of content.Service the API exposes.
type ContentService interface {
	CreatePage(ctx context.Context, in content.CreatePageInput, actor *uuid.UUID) (*models.Page, error)
	GetPage(ctx context.Context, id uuid.UUID) (*models.Page, error)
	GetPageBySlug(ctx context.Context, slug string) (*models.Page, error)
	DeletePage(ctx context.Context, id uuid.UUID) error
	UpdatePage(ctx context.Context, id uuid.UUID, in content.UpdatePageInput) (*models.Page, error)
	ComposeSections(ctx context.Context, pageID uuid.UUID, specs []content.SectionSpec, mode content.Mode) (*models.Page, error)
	ApplyTemplate(ctx context.Context, pageID uuid.UUID, templateSlug string) (*models.Page, error)
	DuplicatePage(ctx context.Context, id uuid.UUID, actor *uuid.UUID) (*models.Page, error)
	CreateSnapshot(ctx context.Context, pageID uuid.UUID, actor *uuid.UUID) (*models.ContentVersion, error)
	ListVersions(ctx context.Context, pageID uuid.UUID) ([]models.ContentVersion, error)
	GetVersion(ctx context.Context, id uuid.UUID) (*models.ContentVersion, error)
	RestoreVersion(ctx context.Context, versionID uuid.UUID) (*models.Page, error)
	ListGenerationLogs(ctx context.Context, pageID uuid.UUID, limit int) ([]models.AiGenerationLog, error)
	CheckPublishGate(ctx context.Context, pageID uuid.UUID) ([]content.Violation, error)
	TransitionStatus(ctx context.Context, ids []uuid.UUID, status models.PageStatus, publishAt *time.Time) ([]models.Page, error)
}

// Regenerator runs one regeneration request synchronously.
type Regenerator interface {
	Regenerate(ctx context.Context, job regen.Job) (*regen.Result, error)
}

// JobQueue accepts regeneration jobs for background workers.
type JobQueue interface {
	Enqueue(ctx context.Context, jobs ...regen.Job) error
	Len(ctx context.Context) (int64, error)
}

// PageReader serves composed pages, typically from the Valkey page cache.
type PageReader interface {
	Fetch(ctx context.Context, id uuid.UUID, load func(context.Context, uuid.UUID) (*models.Page, error)) (*models.Page, error)
}

// ModelLister reports the generator ids a request may name.
type ModelLister interface {
	Available() []string
}

// API groups all JSON handlers and their dependencies.
type API struct {
	content  ContentService
	pipeline Regenerator
	queue    JobQueue
	pages    PageReader
	models   ModelLister
}

// NewAPI creates the handler group. queue, pages and models may be nil:
// bulk regeneration then answers 503, page reads skip the cache and the
// model list is empty.
func NewAPI(svc ContentService, pipeline Regenerator, queue JobQueue, pages PageReader, models ModelLister) *API {
	return &API{
		content:  svc,
		pipeline: pipeline,
		queue:    queue,
		pages:    pages,
		models:   models,
	}
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Details any    `json:"details,omitempty"`
}

// writeJSON encodes data as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("encode response failed", "error", err)
	}
}

// writeError maps engine errors to HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		notFound  *content.NotFoundError
		invalid   *content.ValidationError
		blocked   *content.PublishBlockedError
		provider  *content.ProviderError
		confirm   *content.ConfirmationRequiredError
		restoreEr *content.RestoreError
	)

	// A rolled-back restore wraps the rejection that caused it; the cause
	// must not read as a missing version.
	if errors.As(err, &restoreEr) {
		writeRestoreError(w, r, restoreEr)
		return
	}

	switch {
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not_found", Message: notFound.Error()})
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "validation", Message: invalid.Error(), Field: invalid.Field})
	case errors.As(err, &blocked):
		writeJSON(w, http.StatusConflict, errorBody{Error: "publish_blocked", Message: blocked.Error(), Details: blocked.Pages})
	case errors.As(err, &confirm):
		writeJSON(w, http.StatusConflict, errorBody{Error: "confirmation_required", Message: confirm.Error(), Field: confirm.Flag})
	case errors.As(err, &provider):
		slog.Warn("provider failure", "provider", provider.Provider, "error", provider.Err, "request_id", chimw.GetReqID(r.Context()))
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "provider", Message: provider.Error()})
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err, "request_id", chimw.GetReqID(r.Context()))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal", Message: "internal server error"})
	}
}

// writeRestoreError answers 409 restore_failed when the snapshot no longer
// applies (a referenced entity is gone, the publish gate refuses it) and
// 500 for anything else. The page is unchanged in both cases.
func writeRestoreError(w http.ResponseWriter, r *http.Request, re *content.RestoreError) {
	var (
		notFound *content.NotFoundError
		invalid  *content.ValidationError
		blocked  *content.PublishBlockedError
	)
	body := errorBody{Error: "restore_failed", Message: re.Error()}
	switch {
	case errors.As(re.Err, &blocked):
		body.Details = blocked.Pages
	case errors.As(re.Err, &invalid):
		body.Field = invalid.Field
	case errors.As(re.Err, &notFound):
	default:
		slog.Error("restore failed", "version_id", re.VersionID, "error", re.Err, "request_id", chimw.GetReqID(r.Context()))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal", Message: "internal server error"})
		return
	}
	writeJSON(w, http.StatusConflict, body)
}
