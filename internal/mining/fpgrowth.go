// Basketwise - E-Commerce Recommendation and Engagement Analytics
// Copyright 2026 Basketwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketwise/basketwise

package mining

import (
	"context"
	"sort"
)

// FPGrowth implements frequent-itemset mining over a compressed prefix tree.
//
// Transactions are inserted with their frequent items ordered by descending
// global frequency, so shared prefixes collapse into shared tree paths. The
// tree is then mined bottom-up: for each item, the prefix paths leading to it
// form a conditional pattern base from which a smaller conditional tree is
// built and mined recursively. No candidate generation takes place.
//
// For identical input and minimum support the emitted set of itemsets is
// identical to Apriori's; only the traversal differs.
type FPGrowth struct{}

// NewFPGrowth creates a new FP-Growth miner.
func NewFPGrowth() *FPGrowth {
	return &FPGrowth{}
}

// Name returns the algorithm identifier.
func (f *FPGrowth) Name() string {
	return "fp-growth"
}

// Mine returns all itemsets of size >= 2 with support >= minSupport.
func (f *FPGrowth) Mine(ctx context.Context, txns []Transaction, minSupport, minConfidence float64) ([]Itemset, error) {
	if err := validateParams(minSupport, minConfidence); err != nil {
		return nil, err
	}
	if len(txns) == 0 {
		return []Itemset{}, nil
	}

	sets := txnSets(txns)
	n := len(sets)
	singleCounts := countSingles(sets)

	// Weighted transactions for the initial tree; weight 1 each.
	weighted := make([]weightedTxn, 0, len(sets))
	for _, set := range sets {
		items := make([]string, 0, len(set))
		for id := range set {
			items = append(items, id)
		}
		weighted = append(weighted, weightedTxn{items: items, count: 1})
	}

	var result []Itemset
	emit := func(items []string, count int) {
		if len(items) < 2 {
			return
		}
		sorted := make([]string, len(items))
		copy(sorted, items)
		sort.Strings(sorted)
		result = append(result, Itemset{
			Items:      sorted,
			Support:    float64(count) / float64(n),
			Confidence: setConfidence(count, sorted, singleCounts),
			Frequency:  count,
		})
	}

	if err := mineTree(ctx, weighted, nil, n, minSupport, emit); err != nil {
		return nil, err
	}

	sortItemsets(result)
	if result == nil {
		result = []Itemset{}
	}
	return result, nil
}

// weightedTxn is a transaction with a multiplicity, used for conditional
// pattern bases where each prefix path carries the count of its leaf.
type weightedTxn struct {
	items []string
	count int
}

// fpNode is one node of the prefix tree.
type fpNode struct {
	item     string
	count    int
	parent   *fpNode
	children map[string]*fpNode
}

// mineTree builds a tree over the weighted transactions and recursively mines
// it. suffix is the itemset accumulated so far; every frequent item in this
// tree extends it by one. Frequency is always compared as count/total against
// minSupport, the exact comparison Apriori uses, so the two algorithms can
// never disagree on a boundary case.
func mineTree(ctx context.Context, txns []weightedTxn, suffix []string, total int, minSupport float64, emit func([]string, int)) error {
	if contextCancelled(ctx) {
		return ctx.Err()
	}

	// Count items within this (conditional) data set.
	counts := make(map[string]int)
	for _, txn := range txns {
		for _, id := range txn.items {
			counts[id] += txn.count
		}
	}

	// Frequent items ordered by descending count, lexicographic tie-break,
	// so insertion order is deterministic.
	order := make([]string, 0, len(counts))
	for id, count := range counts {
		if float64(count)/float64(total) >= minSupport {
			order = append(order, id)
		}
	}
	if len(order) == 0 {
		return nil
	}
	sort.Slice(order, func(i, j int) bool {
		if counts[order[i]] != counts[order[j]] {
			return counts[order[i]] > counts[order[j]]
		}
		return order[i] < order[j]
	})
	rank := make(map[string]int, len(order))
	for i, id := range order {
		rank[id] = i
	}

	// Build the tree and header lists.
	root := &fpNode{children: make(map[string]*fpNode)}
	header := make(map[string][]*fpNode, len(order))

	for _, txn := range txns {
		path := make([]string, 0, len(txn.items))
		for _, id := range txn.items {
			if _, ok := rank[id]; ok {
				path = append(path, id)
			}
		}
		if len(path) == 0 {
			continue
		}
		sort.Slice(path, func(i, j int) bool { return rank[path[i]] < rank[path[j]] })

		node := root
		for _, id := range path {
			child, ok := node.children[id]
			if !ok {
				child = &fpNode{item: id, parent: node, children: make(map[string]*fpNode)}
				node.children[id] = child
				header[id] = append(header[id], child)
			}
			child.count += txn.count
			node = child
		}
	}

	// Mine items least frequent first so conditional trees stay small.
	for i := len(order) - 1; i >= 0; i-- {
		item := order[i]

		pattern := make([]string, len(suffix)+1)
		copy(pattern, suffix)
		pattern[len(suffix)] = item
		emit(pattern, counts[item])

		// Conditional pattern base: prefix paths above each occurrence.
		var base []weightedTxn
		for _, node := range header[item] {
			var prefix []string
			for p := node.parent; p != nil && p.item != ""; p = p.parent {
				prefix = append(prefix, p.item)
			}
			if len(prefix) > 0 {
				base = append(base, weightedTxn{items: prefix, count: node.count})
			}
		}
		if len(base) == 0 {
			continue
		}
		if err := mineTree(ctx, base, pattern, total, minSupport, emit); err != nil {
			return err
		}
	}

	return nil
}

var _ Miner = (*FPGrowth)(nil)
