// Basketwise - E-Commerce Recommendation and Engagement Analytics
// Copyright 2026 Basketwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketwise/basketwise

package basket

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// mockOrderStore implements OrderStore for testing.
type mockOrderStore struct {
	orders    []Order
	ordersErr error
}

func (m *mockOrderStore) ListCompletedOrders(ctx context.Context) ([]Order, error) {
	if m.ordersErr != nil {
		return nil, m.ordersErr
	}
	return m.orders, nil
}

func (m *mockOrderStore) ListPurchasedProductIDs(ctx context.Context, userID string) ([]string, error) {
	return nil, nil
}

func (m *mockOrderStore) CountCompletedOrders(ctx context.Context, from, to time.Time) (int, error) {
	return len(m.orders), nil
}

func TestExtract(t *testing.T) {
	store := &mockOrderStore{
		orders: []Order{
			{ID: "o1", Items: []LineItem{{ProductID: "A", Quantity: 1}, {ProductID: "B", Quantity: 2}}},
			// Duplicate product ids collapse into one.
			{ID: "o2", Items: []LineItem{{ProductID: "A", Quantity: 1}, {ProductID: "A", Quantity: 3}}},
			// Malformed item skipped, valid item kept.
			{ID: "o3", Items: []LineItem{{ProductID: "", Quantity: 1}, {ProductID: "C", Quantity: 1}}},
			// All items malformed: no transaction.
			{ID: "o4", Items: []LineItem{{ProductID: ""}}},
			// No items at all: no transaction.
			{ID: "o5"},
		},
	}

	extractor := NewExtractor(store, zerolog.Nop())
	txns, err := extractor.Extract(context.Background())
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if len(txns) != 3 {
		t.Fatalf("got %d transactions, want 3: %v", len(txns), txns)
	}

	if len(txns[0]) != 2 || txns[0][0] != "A" || txns[0][1] != "B" {
		t.Errorf("txns[0] = %v, want [A B]", txns[0])
	}
	if len(txns[1]) != 1 || txns[1][0] != "A" {
		t.Errorf("duplicate ids not collapsed: %v", txns[1])
	}
	if len(txns[2]) != 1 || txns[2][0] != "C" {
		t.Errorf("malformed item not skipped individually: %v", txns[2])
	}
}

func TestExtractStoreFailure(t *testing.T) {
	wantErr := errors.New("store unreachable")
	extractor := NewExtractor(&mockOrderStore{ordersErr: wantErr}, zerolog.Nop())

	if _, err := extractor.Extract(context.Background()); !errors.Is(err, wantErr) {
		t.Errorf("got %v, want wrapped store error", err)
	}
}

func TestExtractNoOrders(t *testing.T) {
	extractor := NewExtractor(&mockOrderStore{}, zerolog.Nop())

	txns, err := extractor.Extract(context.Background())
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(txns) != 0 {
		t.Errorf("got %d transactions, want 0", len(txns))
	}
}
