// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"pagecraft/internal/content"
	"pagecraft/internal/models"
)

// statusRequest is the body of POST /api/pages/status.
type statusRequest struct {
	PageIDs   []uuid.UUID       `json:"page_ids" validate:"required,min=1,max=500"`
	Status    models.PageStatus `json:"status" validate:"required,oneof=draft published scheduled archived"`
	PublishAt *time.Time        `json:"publish_at"`
}

// gateResponse reports whether a page may be published.
type gateResponse struct {
	PageID      uuid.UUID           `json:"page_id"`
	Publishable bool                `json:"publishable"`
	Violations  []content.Violation `json:"violations"`
}

// CheckPublishGate lists the image blocks that block publication.
func (a *API) CheckPublishGate(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	violations, err := a.content.CheckPublishGate(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if violations == nil {
		violations = []content.Violation{}
	}
	writeJSON(w, http.StatusOK, gateResponse{
		PageID:      id,
		Publishable: len(violations) == 0,
		Violations:  violations,
	})
}

// TransitionStatus moves a batch of pages to a new status. A publish is
// all-or-nothing: one blocked page rejects the batch with 409.
func (a *API) TransitionStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	pages, err := a.content.TransitionStatus(r.Context(), req.PageIDs, req.Status, req.PublishAt)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pages": pages})
}
