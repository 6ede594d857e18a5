// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// ActorKey is the context key for the acting user's id.
	ActorKey contextKey = "actor"

	// ActorHeader carries the id of the user performing the request.
	// Authentication happens upstream; the API trusts this header.
	ActorHeader = "X-Actor-ID"
)

// LoadActor parses the X-Actor-ID header and stores the id in the request
// context. A missing header leaves the request anonymous; a malformed one
// is rejected with 400.
func LoadActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(ActorHeader))
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		id, err := uuid.Parse(raw)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"bad_request","message":"X-Actor-ID must be a UUID"}`))
			return
		}

		ctx := context.WithValue(r.Context(), ActorKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ActorFromCtx returns the acting user's id, or nil for anonymous requests.
func ActorFromCtx(ctx context.Context) *uuid.UUID {
	id, ok := ctx.Value(ActorKey).(uuid.UUID)
	if !ok {
		return nil
	}
	return &id
}
