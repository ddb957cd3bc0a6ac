// Basketwise - E-Commerce Recommendation and Engagement Analytics
// Copyright 2026 Basketwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketwise/basketwise

package mining

import (
	"context"
	"sort"
)

// Apriori implements classic level-wise frequent-itemset mining.
//
// Starting from frequent singletons, each level joins surviving itemsets
// into candidates one item larger, prunes candidates with an infrequent
// subset, counts the rest against the transactions, and stops when no
// candidate survives. Mining always terminates because support pruning
// shrinks the candidate set monotonically toward empty.
type Apriori struct{}

// NewApriori creates a new Apriori miner.
func NewApriori() *Apriori {
	return &Apriori{}
}

// Name returns the algorithm identifier.
func (a *Apriori) Name() string {
	return "apriori"
}

// Mine returns all itemsets of size >= 2 with support >= minSupport.
func (a *Apriori) Mine(ctx context.Context, txns []Transaction, minSupport, minConfidence float64) ([]Itemset, error) {
	if err := validateParams(minSupport, minConfidence); err != nil {
		return nil, err
	}
	if len(txns) == 0 {
		return []Itemset{}, nil
	}

	sets := txnSets(txns)
	n := len(sets)
	singleCounts := countSingles(sets)

	// L1: frequent singletons, sorted for deterministic candidate generation.
	var frequent [][]string
	for id, count := range singleCounts {
		if float64(count)/float64(n) >= minSupport {
			frequent = append(frequent, []string{id})
		}
	}
	sort.Slice(frequent, func(i, j int) bool { return frequent[i][0] < frequent[j][0] })

	var result []Itemset
	for len(frequent) > 0 {
		if contextCancelled(ctx) {
			return nil, ctx.Err()
		}

		candidates := joinCandidates(frequent)
		candidates = pruneCandidates(candidates, frequent)

		var next [][]string
		for _, cand := range candidates {
			count := countOccurrences(sets, cand)
			support := float64(count) / float64(n)
			if support < minSupport {
				continue
			}
			next = append(next, cand)
			result = append(result, Itemset{
				Items:      cand,
				Support:    support,
				Confidence: setConfidence(count, cand, singleCounts),
				Frequency:  count,
			})
		}
		frequent = next
	}

	sortItemsets(result)
	if result == nil {
		result = []Itemset{}
	}
	return result, nil
}

// joinCandidates generates size k+1 candidates from sorted size-k itemsets
// sharing their first k-1 items.
func joinCandidates(frequent [][]string) [][]string {
	var candidates [][]string
	k := len(frequent[0])

	for i := 0; i < len(frequent); i++ {
		for j := i + 1; j < len(frequent); j++ {
			if !samePrefix(frequent[i], frequent[j], k-1) {
				break
			}
			cand := make([]string, k+1)
			copy(cand, frequent[i])
			cand[k] = frequent[j][k-1]
			candidates = append(candidates, cand)
		}
	}
	return candidates
}

// pruneCandidates drops candidates with an infrequent size-k subset.
// Any superset of an infrequent set is itself infrequent, so counting it
// would be wasted work.
func pruneCandidates(candidates, frequent [][]string) [][]string {
	if len(candidates) == 0 {
		return candidates
	}

	known := make(map[string]struct{}, len(frequent))
	for _, set := range frequent {
		known[itemsetKey(set)] = struct{}{}
	}

	kept := candidates[:0]
	for _, cand := range candidates {
		if allSubsetsKnown(cand, known) {
			kept = append(kept, cand)
		}
	}
	return kept
}

// allSubsetsKnown checks every subset obtained by removing one item.
func allSubsetsKnown(cand []string, known map[string]struct{}) bool {
	subset := make([]string, 0, len(cand)-1)
	for skip := range cand {
		subset = subset[:0]
		for i, id := range cand {
			if i != skip {
				subset = append(subset, id)
			}
		}
		if _, ok := known[itemsetKey(subset)]; !ok {
			return false
		}
	}
	return true
}

// samePrefix reports whether two sorted itemsets agree on their first n items.
func samePrefix(a, b []string, n int) bool {
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// countOccurrences counts transactions containing every item of the set.
func countOccurrences(sets []map[string]struct{}, items []string) int {
	count := 0
	for _, set := range sets {
		if len(set) < len(items) {
			continue
		}
		contained := true
		for _, id := range items {
			if _, ok := set[id]; !ok {
				contained = false
				break
			}
		}
		if contained {
			count++
		}
	}
	return count
}

var _ Miner = (*Apriori)(nil)
