// CartAtlas - Food Cart Discovery and Geographic Directory
// Copyright 2026 CartAtlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartatlas/cartatlas

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cartatlas/cartatlas/internal/auth"
	"github.com/cartatlas/cartatlas/internal/config"
	"github.com/cartatlas/cartatlas/internal/middleware"
)

// NewRouter assembles the chi router with the full middleware stack.
// Reads are public; every mutation goes through the bearer-token
// middleware, which is how the ownership guard learns the principal.
func NewRouter(h *Handler, jwt *auth.JWTManager, cfg config.SecurityConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.PrometheusMetrics)
	if !cfg.RateLimitDisabled {
		r.Use(httprate.LimitByIP(cfg.RateLimitReqs, cfg.RateLimitWindow))
	}

	r.Get("/healthz", h.Healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Mutations get a tighter per-IP budget than reads.
	mutationLimit := func(r chi.Router) {
		if !cfg.RateLimitDisabled {
			r.Use(httprate.LimitByIP(cfg.RateLimitMutReqs, cfg.RateLimitWindow))
		}
	}

	r.Route("/cartpods", func(r chi.Router) {
		r.Get("/", h.ListPods)
		r.Get("/nearby/{lat}/{lng}/{maxDistanceKm}", h.NearbyPods)
		r.Get("/{id}", h.GetPod)

		r.Group(func(r chi.Router) {
			mutationLimit(r)
			r.Use(jwt.Middleware)
			r.Post("/", h.CreatePod)
			r.Patch("/{id}", h.UpdatePod)
			r.Delete("/{id}", h.DeletePod)
		})
	})

	r.Route("/foodcarts", func(r chi.Router) {
		r.Get("/", h.ListCarts)
		r.Get("/search/{foodType}", h.SearchCarts)
		r.Get("/{id}", h.GetCart)

		r.Group(func(r chi.Router) {
			mutationLimit(r)
			r.Use(jwt.Middleware)
			r.Post("/", h.CreateCart)
			r.Patch("/{id}", h.UpdateCart)
			r.Delete("/{id}", h.DeleteCart)
			r.Post("/{id}/ratings", h.AddRating)
		})
	})

	r.Post("/upload", h.Upload)

	return r
}
