// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// pagecraft API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pagecraft/internal/handlers"
	"pagecraft/internal/middleware"
)

// New creates and returns the configured Chi router. limiter throttles the
// regeneration endpoints per client; nil disables throttling.
func New(api *handlers.API, limiter *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	r.NotFound(notFoundHandler)
	r.MethodNotAllowed(methodNotAllowedHandler)

	// Ops endpoints, no actor.
	r.Get("/health", healthHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.LoadActor)

		r.Get("/models", api.ListModels)

		r.Route("/pages", func(r chi.Router) {
			r.Post("/", api.CreatePage)
			r.Post("/status", api.TransitionStatus)
			r.Get("/by-slug/{slug}", api.GetPageBySlug)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", api.GetPage)
				r.Patch("/", api.UpdatePage)
				r.Delete("/", api.DeletePage)
				r.Put("/sections", api.ComposeSections)
				r.Post("/template", api.ApplyTemplate)
				r.Post("/duplicate", api.DuplicatePage)
				r.Get("/versions", api.ListVersions)
				r.Post("/versions", api.CreateSnapshot)
				r.Get("/generation-logs", api.ListGenerationLogs)
				r.Get("/publish-gate", api.CheckPublishGate)

				r.With(throttle(limiter)).Post("/regenerate", api.Regenerate)
			})
		})

		r.Route("/versions/{id}", func(r chi.Router) {
			r.Get("/", api.GetVersion)
			r.Post("/restore", api.RestoreVersion)
		})

		r.With(throttle(limiter)).Post("/regenerate/bulk", api.BulkRegenerate)
	})

	return r
}

// throttle returns the limiter middleware, or a pass-through when nil.
func throttle(limiter *middleware.RateLimiter) func(http.Handler) http.Handler {
	if limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return limiter.Middleware
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"error":"not_found","message":"no such route"}`))
}

func methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusMethodNotAllowed)
	w.Write([]byte(`{"error":"method_not_allowed","message":"method not allowed"}`))
}
