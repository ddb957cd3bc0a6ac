// Basketwise - E-Commerce Recommendation and Engagement Analytics
// Copyright 2026 Basketwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketwise/basketwise

package recommend

import (
	"context"

	"github.com/basketwise/basketwise/internal/mining"
)

// Product is a catalog record as exposed by the product store.
type Product struct {
	// ID is the product identifier.
	ID string `json:"id"`

	// Name is the display name.
	Name string `json:"name"`

	// Category is the product's category identifier.
	Category string `json:"category"`

	// PriceCents is the unit price in minor currency units.
	PriceCents int64 `json:"price_cents"`

	// Featured marks products eligible for the generic fallback surface.
	Featured bool `json:"featured"`
}

// Combo is a frequently-bought-together suggestion for the admin
// combo builder: a mined itemset hydrated into full product records.
type Combo struct {
	// Products are the itemset's members, hydrated for display.
	Products []Product `json:"products"`

	// Support is the fraction of transactions containing the set.
	Support float64 `json:"support"`

	// Confidence is the set's reported co-occurrence strength.
	Confidence float64 `json:"confidence"`

	// Frequency is the absolute number of transactions containing the set.
	Frequency int `json:"frequency"`
}

// ProductStore is the product collaborator used for backfill and hydration.
// Implemented by the storage layer.
type ProductStore interface {
	// FindByIDs returns the products for the given ids. Unknown ids are
	// omitted, not errors; the result preserves the requested order.
	FindByIDs(ctx context.Context, ids []string) ([]Product, error)

	// FindFeatured returns up to limit featured products in stable id
	// order, excluding the given ids.
	FindFeatured(ctx context.Context, exclude []string, limit int) ([]Product, error)

	// FindByCategory returns up to limit products in the category,
	// excluding the given ids.
	FindByCategory(ctx context.Context, category string, exclude []string, limit int) ([]Product, error)
}

// TransactionSource supplies the transactions a mining pass consumes.
// Implemented by basket.Extractor.
type TransactionSource interface {
	Extract(ctx context.Context) ([]mining.Transaction, error)
}

// PurchaseHistory supplies a user's previously purchased product ids.
// Implemented by the order store.
type PurchaseHistory interface {
	ListPurchasedProductIDs(ctx context.Context, userID string) ([]string, error)
}
