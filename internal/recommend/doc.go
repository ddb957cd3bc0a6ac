// Basketwise - E-Commerce Recommendation and Engagement Analytics
// Copyright 2026 Basketwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketwise/basketwise

// Package recommend composes mined itemsets into surface-specific product
// recommendations.
//
// Every entry point follows the same skeleton: try pattern-derived
// candidates; if they fall short, backfill with a simpler heuristic
// (featured products, or same-category products for the related surface);
// never return fewer than requested unless the catalog itself is exhausted.
// A surface that cannot compute personalized suggestions silently degrades
// to generic products rather than surfacing an error or an empty state.
//
// Mined itemsets are undirected co-occurrence groups: a basket containing
// any member of a set makes the remaining members candidates. There is no
// antecedent/consequent split and confidence never gates output.
//
// The package owns no global state. The cache, the miners, and both store
// collaborators are injected, so tests can swap in fresh caches and mock
// stores per case. Store calls run behind circuit breakers; an open breaker
// reads as a collaborator failure and triggers the same degradation path.
package recommend
