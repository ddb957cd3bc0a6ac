// Basketwise - E-Commerce Recommendation and Engagement Analytics
// Copyright 2026 Basketwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketwise/basketwise

package storage

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/basketwise/basketwise/internal/basket"
	"github.com/basketwise/basketwise/internal/recommend"
)

const statusCompleted = "completed"

// SaveOrder inserts an order with its line items inside one transaction.
func (s *SQLStore) SaveOrder(ctx context.Context, order basket.Order, status string) error {
	if status == "" {
		status = statusCompleted
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning order transaction: %w", err)
	}
	defer tx.Rollback()

	query, args, err := s.builder.
		Insert("orders").
		Columns("id", "user_id", "status", "placed_at").
		Values(order.ID, order.UserID, status, order.PlacedAt.UTC().Format(time.RFC3339)).
		ToSql()
	if err != nil {
		return fmt.Errorf("building order insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting order %s: %w", order.ID, err)
	}

	for _, item := range order.Items {
		query, args, err := s.builder.
			Insert("order_items").
			Columns("order_id", "product_id", "quantity").
			Values(order.ID, item.ProductID, item.Quantity).
			ToSql()
		if err != nil {
			return fmt.Errorf("building line item insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("inserting line item %s/%s: %w", order.ID, item.ProductID, err)
		}
	}

	return tx.Commit()
}

// ListCompletedOrders returns all completed orders with their line items.
func (s *SQLStore) ListCompletedOrders(ctx context.Context) ([]basket.Order, error) {
	query, args, err := s.builder.
		Select("o.id", "o.user_id", "o.placed_at", "i.product_id", "i.quantity").
		From("orders o").
		Join("order_items i ON i.order_id = o.id").
		Where(sq.Eq{"o.status": statusCompleted}).
		OrderBy("o.placed_at ASC", "o.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building completed orders query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying completed orders: %w", err)
	}
	defer rows.Close()

	var orders []basket.Order
	index := make(map[string]int)
	for rows.Next() {
		var (
			orderID, userID, placedAt string
			item                      basket.LineItem
		)
		if err := rows.Scan(&orderID, &userID, &placedAt, &item.ProductID, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scanning order row: %w", err)
		}

		i, ok := index[orderID]
		if !ok {
			t, err := time.Parse(time.RFC3339, placedAt)
			if err != nil {
				return nil, fmt.Errorf("parsing placed_at for order %s: %w", orderID, err)
			}
			orders = append(orders, basket.Order{ID: orderID, UserID: userID, PlacedAt: t})
			i = len(orders) - 1
			index[orderID] = i
		}
		orders[i].Items = append(orders[i].Items, item)
	}
	return orders, rows.Err()
}

// ListPurchasedProductIDs returns the distinct product ids the user has
// bought through completed orders.
func (s *SQLStore) ListPurchasedProductIDs(ctx context.Context, userID string) ([]string, error) {
	query, args, err := s.builder.
		Select("DISTINCT i.product_id").
		From("order_items i").
		Join("orders o ON o.id = i.order_id").
		Where(sq.Eq{"o.status": statusCompleted, "o.user_id": userID}).
		OrderBy("i.product_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building purchase history query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying purchase history for %s: %w", userID, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning product id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountCompletedOrders returns the number of completed orders placed in
// [from, to]. A zero time leaves the corresponding bound open.
func (s *SQLStore) CountCompletedOrders(ctx context.Context, from, to time.Time) (int, error) {
	builder := s.builder.
		Select("COUNT(*)").
		From("orders").
		Where(sq.Eq{"status": statusCompleted})
	if !from.IsZero() {
		builder = builder.Where(sq.GtOrEq{"placed_at": from.UTC().Format(time.RFC3339)})
	}
	if !to.IsZero() {
		builder = builder.Where(sq.LtOrEq{"placed_at": to.UTC().Format(time.RFC3339)})
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("building order count query: %w", err)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting completed orders: %w", err)
	}
	return count, nil
}

var _ basket.OrderStore = (*SQLStore)(nil)

var _ recommend.PurchaseHistory = (*SQLStore)(nil)
