// Basketwise - E-Commerce Recommendation and Engagement Analytics
// Copyright 2026 Basketwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketwise/basketwise

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/basketwise/basketwise/internal/config"
)

// NewRouter wires the HTTP route tree.
//
// Middleware order matters: request ids first so every downstream log
// line carries one, then real IP extraction so rate limiting keys on
// the client address rather than a proxy.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRouter(cfg config.ServerConfig, handlers *Handlers, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	// Health and metrics stay outside the rate limit so monitoring
	// never gets throttled alongside traffic spikes.
	r.Get("/health", handlers.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimit > 0 {
			r.Use(httprate.LimitByIP(cfg.RateLimit, time.Minute))
		}
		r.Use(PrometheusMetrics)

		r.Route("/recommendations", func(r chi.Router) {
			r.Get("/cart", handlers.CartRecommendations)
			r.Get("/homepage", handlers.HomepageRecommendations)
			r.Get("/related/{productID}", handlers.RelatedRecommendations)
		})

		r.Get("/combos", handlers.Combos)

		r.Route("/engagement", func(r chi.Router) {
			r.Post("/events", handlers.TrackEvent)
			r.Get("/rates/{kind}", handlers.EngagementRates)
		})

		r.Get("/orders/count", handlers.OrderCount)
	})

	logger.Debug().
		Int("rate_limit_per_min", cfg.RateLimit).
		Strs("cors_origins", cfg.CORSOrigins).
		Msg("router configured")

	return r
}
