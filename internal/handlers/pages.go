// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"pagecraft/internal/content"
	"pagecraft/internal/middleware"
	"pagecraft/internal/models"
	"pagecraft/internal/slug"
)

// urlID parses a UUID path parameter.
func urlID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, &content.ValidationError{Field: name, Message: "must be a UUID"}
	}
	return id, nil
}

// composeRequest is the body of PUT /api/pages/{id}/sections. An empty
// list clears the tree.
type composeRequest struct {
	Sections []content.SectionSpec `json:"sections" validate:"required"`
}

// templateRequest is the body of POST /api/pages/{id}/template.
type templateRequest struct {
	TemplateSlug string `json:"template_slug" validate:"required,max=255"`
}

// CreatePage inserts a draft page with its initial tree.
func (a *API) CreatePage(w http.ResponseWriter, r *http.Request) {
	var in content.CreatePageInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	page, err := a.content.CreatePage(r.Context(), in, middleware.ActorFromCtx(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/pages/"+page.ID.String())
	writeJSON(w, http.StatusCreated, page)
}

// GetPage returns the composed page, served from the cache when present.
func (a *API) GetPage(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var page *models.Page
	if a.pages != nil {
		page, err = a.pages.Fetch(r.Context(), id, a.content.GetPage)
	} else {
		page, err = a.content.GetPage(r.Context(), id)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// GetPageBySlug returns the composed page with the given slug.
func (a *API) GetPageBySlug(w http.ResponseWriter, r *http.Request) {
	s := chi.URLParam(r, "slug")
	if !slug.Valid(s) {
		writeError(w, r, &content.ValidationError{Field: "slug", Message: "must be lowercase letters, digits and hyphens"})
		return
	}

	page, err := a.content.GetPageBySlug(r.Context(), s)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// DeletePage removes a page and everything it owns.
func (a *API) DeletePage(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.content.DeletePage(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdatePage applies a partial edit; a present sections list is synced.
func (a *API) UpdatePage(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in content.UpdatePageInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	page, err := a.content.UpdatePage(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// ComposeSections syncs the page tree with the submitted sections.
func (a *API) ComposeSections(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req composeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	page, err := a.content.ComposeSections(r.Context(), id, req.Sections, content.SyncMode)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// ApplyTemplate replaces the page tree with a stored template.
func (a *API) ApplyTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req templateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	page, err := a.content.ApplyTemplate(r.Context(), id, req.TemplateSlug)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// DuplicatePage copies a page into a new draft.
func (a *API) DuplicatePage(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	page, err := a.content.DuplicatePage(r.Context(), id, middleware.ActorFromCtx(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/pages/"+page.ID.String())
	writeJSON(w, http.StatusCreated, page)
}
