package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	apiMiddleware "github.com/phrazzld/roster-api/internal/api/middleware"
	"github.com/phrazzld/roster-api/internal/api/shared"
)

// v1MediaType is the vendor media type that selects API v1 when the
// header versioning strategy is active.
const v1MediaType = "application/vnd.roster.v1+json"

// setupRouter creates and configures the application router with all routes
// and middleware. The version-resolution strategy (path segment vs Accept
// header) is fixed at startup from configuration.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.Trace)

	// Unknown routes get the same structured error body as everything else.
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithError(w, r, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithError(w, r, http.StatusNotFound, "not found")
	})

	switch app.config.Server.Versioning {
	case "header":
		r.Group(func(r chi.Router) {
			r.Use(requireV1MediaType)
			app.registerV1Routes(r)
		})
	default: // "path"
		r.Route("/v1", app.registerV1Routes)
	}

	// Health check endpoint, outside any versioned surface.
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}

// registerV1Routes mounts the v1 resource routes on the given router.
func (app *application) registerV1Routes(r chi.Router) {
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	// Public endpoints
	r.Post("/users", app.userHandler.Create)
	r.Post("/login", app.authHandler.Login)
	r.Post("/auth/refresh", app.authHandler.RefreshToken)

	// Protected endpoints
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		r.Get("/users", app.userHandler.List)
		r.Get("/users/{id}", app.userHandler.Get)
		r.Put("/users/{id}", app.userHandler.Update)
		r.Delete("/users/{id}", app.userHandler.Delete)
		r.Get("/me", app.userHandler.Me)
	})
}

// requireV1MediaType resolves the API version from the Accept header.
// Requests that don't ask for v1 fail route resolution, same as an unknown
// path under the path strategy.
func requireV1MediaType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != v1MediaType {
			shared.RespondWithError(w, r, http.StatusNotFound, "not found")
			return
		}
		next.ServeHTTP(w, r)
	})
}
