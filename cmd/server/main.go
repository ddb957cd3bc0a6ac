// Basketwise - E-Commerce Recommendation and Engagement Analytics
// Copyright 2026 Basketwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketwise/basketwise

// Package main is the entry point for the Basketwise server.
//
// Basketwise mines association rules from completed orders and serves
// product recommendations for the cart, homepage, and related-products
// surfaces, alongside engagement tracking for the recommendations it
// shows.
//
// The server initializes components in the following order:
//
//  1. Configuration: layered defaults, config file, environment (koanf v2)
//  2. Storage: SQLite order/catalog database and Badger engagement store
//  3. Caches: mining result cache and engagement rate cache
//  4. Domain: transaction extractor, composer, tracker, event pipeline
//  5. HTTP: chi router with the REST API and Prometheus metrics
//  6. Supervision: suture tree running the consumer and HTTP server
//
// Graceful shutdown is driven by SIGINT/SIGTERM. The supervisor stops
// its services within the configured shutdown timeout, then storage and
// caches are closed.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/basketwise/basketwise/internal/api"
	"github.com/basketwise/basketwise/internal/basket"
	"github.com/basketwise/basketwise/internal/cache"
	"github.com/basketwise/basketwise/internal/config"
	"github.com/basketwise/basketwise/internal/engagement"
	"github.com/basketwise/basketwise/internal/logging"
	"github.com/basketwise/basketwise/internal/recommend"
	"github.com/basketwise/basketwise/internal/storage"
	"github.com/basketwise/basketwise/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(cfg.Logging)
	logger := logging.Logger()

	logging.Info().
		Str("data_dir", cfg.Storage.DataDir).
		Str("engagement_path", cfg.Engagement.Path).
		Int("port", cfg.Server.Port).
		Msg("Configuration loaded")

	sqlStore, err := storage.OpenSQLite(cfg.Storage.DataDir, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open order database")
	}
	defer func() {
		if err := sqlStore.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing order database")
		}
	}()

	engStore, err := storage.OpenEngagement(cfg.Engagement, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open engagement store")
	}
	defer func() {
		if err := engStore.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing engagement store")
		}
	}()

	miningCache := cache.New(cfg.Recommend.MiningTTL)
	defer miningCache.Close()
	ratesCache := cache.New(engagement.DefaultRatesTTL)
	defer ratesCache.Close()

	extractor := basket.NewExtractor(sqlStore, logger)

	composer, err := recommend.NewComposer(cfg.Recommend, extractor, sqlStore, sqlStore, miningCache, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create recommendation composer")
	}

	tracker := engagement.NewTracker(engStore, ratesCache, logger)
	pipeline := engagement.NewPipeline(tracker, cfg.Events.Buffer, logger)
	defer func() {
		if err := pipeline.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event pipeline")
		}
	}()

	handlers := api.NewHandlers(composer, tracker, pipeline, sqlStore, logger)
	router := api.NewRouter(cfg.Server, handlers, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddEventService(supervisor.NewPipelineService(pipeline))
	tree.AddAPIService(supervisor.NewHTTPService(server, cfg.Server.ShutdownTimeout))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Server stopped gracefully")
}
