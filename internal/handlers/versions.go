// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"pagecraft/internal/middleware"
	"pagecraft/internal/models"
)

// ListVersions returns a page's snapshots, newest first.
func (a *API) ListVersions(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	versions, err := a.content.ListVersions(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if versions == nil {
		versions = []models.ContentVersion{}
	}
	writeJSON(w, http.StatusOK, versions)
}

// CreateSnapshot records the page's current state as a new version.
func (a *API) CreateSnapshot(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	version, err := a.content.CreateSnapshot(r.Context(), id, middleware.ActorFromCtx(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, version)
}

// GetVersion returns one snapshot with its document.
func (a *API) GetVersion(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	version, err := a.content.GetVersion(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, version)
}

// RestoreVersion rebuilds the page from a snapshot.
func (a *API) RestoreVersion(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	page, err := a.content.RestoreVersion(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
