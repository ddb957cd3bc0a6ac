// Basketwise - E-Commerce Recommendation and Engagement Analytics
// Copyright 2026 Basketwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketwise/basketwise

package basket

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/basketwise/basketwise/internal/mining"
)

// LineItem is one product reference within an order.
type LineItem struct {
	// ProductID is the referenced product. Blank means the reference was
	// lost (e.g., the product was deleted) and the item is skipped.
	ProductID string `json:"product_id"`

	// Quantity is the number of units ordered.
	Quantity int `json:"quantity"`
}

// Order is a completed order as exposed by the order store.
type Order struct {
	// ID is the order identifier.
	ID string `json:"id"`

	// UserID is the purchaser, empty for guest checkouts.
	UserID string `json:"user_id,omitempty"`

	// PlacedAt is when the order was placed.
	PlacedAt time.Time `json:"placed_at"`

	// Items are the order's line items.
	Items []LineItem `json:"items"`
}

// OrderStore is the order collaborator the extractor reads from.
// Implemented by the storage layer.
type OrderStore interface {
	// ListCompletedOrders returns all completed orders with line items.
	ListCompletedOrders(ctx context.Context) ([]Order, error)

	// ListPurchasedProductIDs returns the distinct product ids a user has
	// purchased across completed orders.
	ListPurchasedProductIDs(ctx context.Context, userID string) ([]string, error)

	// CountCompletedOrders returns the number of completed orders placed in
	// [from, to). Zero times leave the corresponding bound open.
	CountCompletedOrders(ctx context.Context, from, to time.Time) (int, error)
}

// Extractor reduces completed orders to mining transactions.
type Extractor struct {
	store  OrderStore
	logger zerolog.Logger
}

// NewExtractor creates a new transaction extractor.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewExtractor(store OrderStore, logger zerolog.Logger) *Extractor {
	return &Extractor{
		store:  store,
		logger: logger.With().Str("component", "basket").Logger(),
	}
}

// Extract returns one transaction per order with at least one valid line
// item. Output order follows the store's order, which is stable within a
// single call.
func (e *Extractor) Extract(ctx context.Context) ([]mining.Transaction, error) {
	orders, err := e.store.ListCompletedOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list completed orders: %w", err)
	}

	txns := make([]mining.Transaction, 0, len(orders))
	skippedItems := 0

	for _, order := range orders {
		seen := make(map[string]struct{}, len(order.Items))
		var txn mining.Transaction

		for _, item := range order.Items {
			if item.ProductID == "" {
				skippedItems++
				continue
			}
			if _, dup := seen[item.ProductID]; dup {
				continue
			}
			seen[item.ProductID] = struct{}{}
			txn = append(txn, item.ProductID)
		}

		if len(txn) == 0 {
			continue
		}
		txns = append(txns, txn)
	}

	if skippedItems > 0 {
		e.logger.Debug().
			Int("skipped_items", skippedItems).
			Int("transactions", len(txns)).
			Msg("skipped malformed line items during extraction")
	}

	return txns, nil
}
