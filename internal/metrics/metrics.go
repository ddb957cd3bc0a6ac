// Basketwise - E-Commerce Recommendation and Engagement Analytics
// Copyright 2026 Basketwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketwise/basketwise

// Package metrics provides Prometheus instrumentation for:
//   - mining pass duration and output size per algorithm
//   - recommendation requests and fallback usage per surface
//   - result cache efficiency
//   - engagement event ingestion
//   - API endpoint latency and throughput
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Mining Metrics
	MiningDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mining_pass_duration_seconds",
			Help:    "Duration of frequent-itemset mining passes in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"algorithm"},
	)

	MiningItemsets = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mining_frequent_itemsets",
			Help: "Number of frequent itemsets produced by the last mining pass",
		},
		[]string{"algorithm"},
	)

	MiningTransactions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mining_transactions",
			Help: "Number of transactions consumed by the last mining pass",
		},
	)

	MiningErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mining_errors_total",
			Help: "Total number of failed mining passes",
		},
		[]string{"algorithm"},
	)

	// Recommendation Metrics
	RecommendationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_served_total",
			Help: "Total number of recommendation lists served per surface",
		},
		[]string{"surface"},
	)

	RecommendationFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_fallbacks_total",
			Help: "Recommendation lists that needed heuristic backfill",
		},
		[]string{"surface"},
	)

	// Result Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "result_cache_hits_total",
			Help: "Total number of result cache hits",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "result_cache_misses_total",
			Help: "Total number of result cache misses",
		},
		[]string{"cache"},
	)

	// Engagement Metrics
	EngagementEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagement_events_total",
			Help: "Total number of engagement events recorded",
		},
		[]string{"surface", "action"},
	)

	EngagementWriteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagement_write_failures_total",
			Help: "Engagement events that could not be persisted",
		},
		[]string{"surface", "action"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)
)

// ObserveMining records one mining pass.
func ObserveMining(algorithm string, transactions, itemsets int, duration time.Duration) {
	MiningDuration.WithLabelValues(algorithm).Observe(duration.Seconds())
	MiningItemsets.WithLabelValues(algorithm).Set(float64(itemsets))
	MiningTransactions.Set(float64(transactions))
}

// RecordAPIRequest records one completed HTTP request.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
