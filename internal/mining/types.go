// Basketwise - E-Commerce Recommendation and Engagement Analytics
// Copyright 2026 Basketwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketwise/basketwise

package mining

import (
	"context"
	"errors"
	"sort"
	"strings"
)

// Transaction is the set of product ids purchased together in one order.
// Ids are unique within a transaction; order carries no meaning.
type Transaction []string

// Itemset is a set of co-occurring product ids with derived scores.
type Itemset struct {
	// Items are the product ids in the set, sorted lexicographically.
	Items []string `json:"items"`

	// Support is the fraction of transactions containing every item, in [0, 1].
	Support float64 `json:"support"`

	// Confidence is the co-occurrence strength relative to the set's most
	// frequent member: support(set) / support(top item). Reported for
	// display, never used to gate output.
	Confidence float64 `json:"confidence"`

	// Frequency is the absolute number of transactions containing the set.
	Frequency int `json:"frequency"`
}

// Key returns a canonical identity for the itemset, independent of the
// original item order.
func (s Itemset) Key() string {
	return itemsetKey(s.Items)
}

// Contains reports whether the itemset includes the given product id.
func (s Itemset) Contains(productID string) bool {
	for _, id := range s.Items {
		if id == productID {
			return true
		}
	}
	return false
}

// ContainsAny reports whether the itemset includes any id from the given set.
func (s Itemset) ContainsAny(ids map[string]struct{}) bool {
	for _, id := range s.Items {
		if _, ok := ids[id]; ok {
			return true
		}
	}
	return false
}

// Miner mines frequent itemsets from transactions.
type Miner interface {
	// Name returns the algorithm identifier (e.g., "apriori", "fp-growth").
	Name() string

	// Mine returns all itemsets of size >= 2 whose support meets minSupport.
	// An empty transaction list yields an empty result, not an error.
	// A minSupport outside (0, 1] is a configuration error.
	Mine(ctx context.Context, txns []Transaction, minSupport, minConfidence float64) ([]Itemset, error)
}

// Configuration errors returned before any mining work starts.
var (
	// ErrInvalidMinSupport indicates a minimum support outside (0, 1].
	ErrInvalidMinSupport = errors.New("mining: minSupport must be in (0, 1]")

	// ErrInvalidMinConfidence indicates a minimum confidence outside [0, 1].
	ErrInvalidMinConfidence = errors.New("mining: minConfidence must be in [0, 1]")
)

// validateParams rejects invalid mining parameters synchronously.
func validateParams(minSupport, minConfidence float64) error {
	if minSupport <= 0 || minSupport > 1 {
		return ErrInvalidMinSupport
	}
	if minConfidence < 0 || minConfidence > 1 {
		return ErrInvalidMinConfidence
	}
	return nil
}

// itemsetKey joins sorted items with an unprintable separator so keys cannot
// collide with product ids containing common punctuation.
func itemsetKey(items []string) string {
	sorted := make([]string, len(items))
	copy(sorted, items)
	sort.Strings(sorted)
	return strings.Join(sorted, "\x1f")
}

// txnSets converts transactions to lookup sets, dropping duplicate ids.
// Empty transactions stay in the denominator but can never contain a set.
func txnSets(txns []Transaction) []map[string]struct{} {
	sets := make([]map[string]struct{}, len(txns))
	for i, txn := range txns {
		set := make(map[string]struct{}, len(txn))
		for _, id := range txn {
			if id == "" {
				continue
			}
			set[id] = struct{}{}
		}
		sets[i] = set
	}
	return sets
}

// countSingles counts how many transactions contain each product id.
func countSingles(sets []map[string]struct{}) map[string]int {
	counts := make(map[string]int)
	for _, set := range sets {
		for id := range set {
			counts[id]++
		}
	}
	return counts
}

// setConfidence derives the reported confidence for an itemset: its support
// relative to the support of its most frequent member.
func setConfidence(count int, items []string, singleCounts map[string]int) float64 {
	top := 0
	for _, id := range items {
		if c := singleCounts[id]; c > top {
			top = c
		}
	}
	if top == 0 {
		return 0
	}
	return float64(count) / float64(top)
}

// sortItemsets orders results by support descending, then canonical key, so
// both algorithms return identical, reproducible output.
func sortItemsets(itemsets []Itemset) {
	sort.Slice(itemsets, func(i, j int) bool {
		if itemsets[i].Support != itemsets[j].Support {
			return itemsets[i].Support > itemsets[j].Support
		}
		return itemsets[i].Key() < itemsets[j].Key()
	})
}

// contextCancelled checks if the context has been canceled.
func contextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
