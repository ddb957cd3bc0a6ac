// Basketwise - E-Commerce Recommendation and Engagement Analytics
// Copyright 2026 Basketwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketwise/basketwise

package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/basketwise/basketwise/internal/recommend"
)

// SaveProduct inserts or replaces a catalog entry.
func (s *SQLStore) SaveProduct(ctx context.Context, p recommend.Product) error {
	featured := 0
	if p.Featured {
		featured = 1
	}
	query, args, err := s.builder.
		Replace("products").
		Columns("id", "name", "category", "price_cents", "featured").
		Values(p.ID, p.Name, p.Category, p.PriceCents, featured).
		ToSql()
	if err != nil {
		return fmt.Errorf("building product upsert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("saving product %s: %w", p.ID, err)
	}
	return nil
}

// FindByIDs returns the products for the given ids, preserving the input
// order. Unknown ids are skipped without error.
func (s *SQLStore) FindByIDs(ctx context.Context, ids []string) ([]recommend.Product, error) {
	if len(ids) == 0 {
		return []recommend.Product{}, nil
	}

	query, args, err := s.builder.
		Select("id", "name", "category", "price_cents", "featured").
		From("products").
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building products query: %w", err)
	}

	found, err := s.queryProducts(ctx, query, args)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]recommend.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	out := make([]recommend.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// FindFeatured returns up to limit featured products, skipping excluded ids,
// in catalog order.
func (s *SQLStore) FindFeatured(ctx context.Context, exclude []string, limit int) ([]recommend.Product, error) {
	builder := s.builder.
		Select("id", "name", "category", "price_cents", "featured").
		From("products").
		Where(sq.Eq{"featured": 1}).
		OrderBy("id ASC").
		Limit(uint64(limit))
	if len(exclude) > 0 {
		builder = builder.Where(sq.NotEq{"id": exclude})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building featured query: %w", err)
	}
	return s.queryProducts(ctx, query, args)
}

// FindByCategory returns up to limit products in the category, skipping
// excluded ids, in catalog order.
func (s *SQLStore) FindByCategory(ctx context.Context, category string, exclude []string, limit int) ([]recommend.Product, error) {
	builder := s.builder.
		Select("id", "name", "category", "price_cents", "featured").
		From("products").
		Where(sq.Eq{"category": category}).
		OrderBy("id ASC").
		Limit(uint64(limit))
	if len(exclude) > 0 {
		builder = builder.Where(sq.NotEq{"id": exclude})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building category query: %w", err)
	}
	return s.queryProducts(ctx, query, args)
}

func (s *SQLStore) queryProducts(ctx context.Context, query string, args []interface{}) ([]recommend.Product, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	products := []recommend.Product{}
	for rows.Next() {
		var (
			p        recommend.Product
			featured int
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.PriceCents, &featured); err != nil {
			return nil, fmt.Errorf("scanning product row: %w", err)
		}
		p.Featured = featured != 0
		products = append(products, p)
	}
	return products, rows.Err()
}

var _ recommend.ProductStore = (*SQLStore)(nil)
