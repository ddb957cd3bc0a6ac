// Basketwise - E-Commerce Recommendation and Engagement Analytics
// Copyright 2026 Basketwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketwise/basketwise

// Package mining implements frequent-itemset mining over order baskets.
//
// Two interchangeable algorithms are provided behind the Miner interface:
//
//   - Apriori: level-wise candidate generation with support pruning
//   - FP-Growth: compressed prefix tree with recursive conditional mining
//
// Both produce the same set of itemsets for identical input and minimum
// support; only their runtime characteristics differ. Apriori is simple and
// predictable, FP-Growth avoids explicit candidate generation and is the
// better choice once the catalog grows.
//
// # Support Semantics
//
// The support of an itemset is the fraction of transactions containing every
// item in the set, a float in [0, 1]. Only itemsets of size >= 2 are emitted;
// singletons are scaffolding, not output. A minimum support of zero or below
// is a configuration error, not a request to mine everything.
//
// # Threshold Selection
//
// SelectMinSupport chooses a minimum support from the transaction count:
// sparse order history needs a lower bar before co-occurrence is meaningful,
// while large volumes can afford to suppress coincidental noise.
//
// # Thread Safety
//
// Miners are stateless; a single instance is safe for concurrent use.
package mining
