// Basketwise - E-Commerce Recommendation and Engagement Analytics
// Copyright 2026 Basketwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketwise/basketwise

package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/basketwise/basketwise/internal/cache"
	"github.com/basketwise/basketwise/internal/mining"
)

type mockSource struct {
	txns []mining.Transaction
	err  error
}

func (m *mockSource) Extract(_ context.Context) ([]mining.Transaction, error) {
	return m.txns, m.err
}

type mockHistory struct {
	purchased map[string][]string
	err       error
}

func (m *mockHistory) ListPurchasedProductIDs(_ context.Context, userID string) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.purchased[userID], nil
}

type mockProducts struct {
	byID     map[string]Product
	featured []Product
	err      error

	featuredCalls int
}

func (m *mockProducts) FindByIDs(_ context.Context, ids []string) ([]Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProducts) FindFeatured(_ context.Context, exclude []string, limit int) ([]Product, error) {
	m.featuredCalls++
	if m.err != nil {
		return nil, m.err
	}
	skip := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		skip[id] = struct{}{}
	}
	var out []Product
	for _, p := range m.featured {
		if _, ok := skip[p.ID]; ok {
			continue
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockProducts) FindByCategory(_ context.Context, category string, exclude []string, limit int) ([]Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	skip := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		skip[id] = struct{}{}
	}
	var out []Product
	for _, p := range m.byID {
		if p.Category != category {
			continue
		}
		if _, ok := skip[p.ID]; ok {
			continue
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// scenario baskets: {A,B} co-occurs three times, {A,C} twice, D is noise.
func scenarioSource() *mockSource {
	return &mockSource{txns: []mining.Transaction{
		{"A", "B"},
		{"A", "B"},
		{"A", "B", "C"},
		{"A", "C"},
		{"D"},
	}}
}

func scenarioProducts() *mockProducts {
	return &mockProducts{
		byID: map[string]Product{
			"A": {ID: "A", Name: "Widget", Category: "tools"},
			"B": {ID: "B", Name: "Gadget", Category: "tools"},
			"C": {ID: "C", Name: "Gizmo", Category: "toys"},
			"D": {ID: "D", Name: "Doohickey", Category: "toys"},
		},
		featured: []Product{
			{ID: "F1", Name: "Promo One", Featured: true},
			{ID: "F2", Name: "Promo Two", Featured: true},
			{ID: "F3", Name: "Promo Three", Featured: true},
		},
	}
}

func newTestComposer(t *testing.T, source TransactionSource, history PurchaseHistory, products ProductStore) *Composer {
	t.Helper()
	c, err := NewComposer(DefaultConfig(), source, history, products, cache.NewNop(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewComposer() error = %v", err)
	}
	return c
}

func TestCartRecommendsCoOccurring(t *testing.T) {
	c := newTestComposer(t, scenarioSource(), &mockHistory{}, scenarioProducts())

	got := c.Cart(context.Background(), []string{"A"}, 2)

	want := []string{"B", "C"}
	if len(got) != len(want) {
		t.Fatalf("Cart() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Cart()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCartNeverRecommendsBasketItems(t *testing.T) {
	c := newTestComposer(t, scenarioSource(), &mockHistory{}, scenarioProducts())

	got := c.Cart(context.Background(), []string{"A", "B"}, 10)

	for _, id := range got {
		if id == "A" || id == "B" {
			t.Errorf("Cart() recommended basket item %q", id)
		}
	}
}

func TestCartBackfillsToExactLimit(t *testing.T) {
	c := newTestComposer(t, scenarioSource(), &mockHistory{}, scenarioProducts())

	got := c.Cart(context.Background(), []string{"A"}, 4)

	if len(got) != 4 {
		t.Fatalf("Cart() returned %d items, want 4: %v", len(got), got)
	}
	// Pattern candidates first, featured padding after.
	if got[0] != "B" || got[1] != "C" {
		t.Errorf("Cart() candidates = %v, want B, C first", got[:2])
	}
	if got[2] != "F1" || got[3] != "F2" {
		t.Errorf("Cart() backfill = %v, want F1, F2", got[2:])
	}
}

func TestCartEmptyBasketServesFeatured(t *testing.T) {
	products := scenarioProducts()
	c := newTestComposer(t, scenarioSource(), &mockHistory{}, products)

	got := c.Cart(context.Background(), nil, 2)

	if len(got) != 2 || got[0] != "F1" || got[1] != "F2" {
		t.Errorf("Cart(empty basket) = %v, want [F1 F2]", got)
	}
	if products.featuredCalls != 1 {
		t.Errorf("featured calls = %d, want 1", products.featuredCalls)
	}
}

func TestCartSourceFailureFallsBackToFeatured(t *testing.T) {
	source := &mockSource{err: errors.New("orders unavailable")}
	c := newTestComposer(t, source, &mockHistory{}, scenarioProducts())

	got := c.Cart(context.Background(), []string{"A"}, 2)

	if len(got) != 2 || got[0] != "F1" || got[1] != "F2" {
		t.Errorf("Cart() with failing source = %v, want [F1 F2]", got)
	}
}

func TestCartTotalFailureReturnsEmpty(t *testing.T) {
	source := &mockSource{err: errors.New("orders unavailable")}
	products := &mockProducts{err: errors.New("catalog unavailable")}
	c := newTestComposer(t, source, &mockHistory{}, products)

	got := c.Cart(context.Background(), []string{"A"}, 5)

	if got == nil {
		t.Fatal("Cart() = nil, want empty slice")
	}
	if len(got) != 0 {
		t.Errorf("Cart() with everything failing = %v, want []", got)
	}
}

func TestHomepagePersonalizedFromHistory(t *testing.T) {
	history := &mockHistory{purchased: map[string][]string{"u1": {"A"}}}
	c := newTestComposer(t, scenarioSource(), history, scenarioProducts())

	got := c.Homepage(context.Background(), "u1", 2)

	for _, id := range got {
		if id == "A" {
			t.Errorf("Homepage() recommended already-purchased %q", id)
		}
	}
	if len(got) == 0 || got[0] != "B" {
		t.Errorf("Homepage() = %v, want B first", got)
	}
}

func TestHomepageAnonymousServesFeatured(t *testing.T) {
	c := newTestComposer(t, scenarioSource(), &mockHistory{}, scenarioProducts())

	got := c.Homepage(context.Background(), "", 2)

	if len(got) != 2 || got[0] != "F1" {
		t.Errorf("Homepage(anonymous) = %v, want featured", got)
	}
}

func TestHomepageNoHistoryServesFeatured(t *testing.T) {
	history := &mockHistory{purchased: map[string][]string{}}
	c := newTestComposer(t, scenarioSource(), history, scenarioProducts())

	got := c.Homepage(context.Background(), "new-user", 1)

	if len(got) != 1 || got[0] != "F1" {
		t.Errorf("Homepage(no history) = %v, want [F1]", got)
	}
}

func TestRelatedBackfillsSameCategory(t *testing.T) {
	// A and B share the tools category. Patterns give B and C for A; with a
	// higher limit the shortfall fills from tools only, but B is already
	// chosen and A excluded, so nothing qualifies.
	c := newTestComposer(t, scenarioSource(), &mockHistory{}, scenarioProducts())

	got := c.Related(context.Background(), "A", 2)

	if len(got) != 2 || got[0] != "B" || got[1] != "C" {
		t.Fatalf("Related(A) = %v, want [B C]", got)
	}
	for _, id := range got {
		if id == "A" {
			t.Errorf("Related() recommended the product itself")
		}
	}
}

func TestRelatedCategoryLookupFailureKeepsCandidates(t *testing.T) {
	// Product store fails only after the mining pass by erroring every call;
	// candidates from patterns still come back.
	source := scenarioSource()
	products := &mockProducts{err: errors.New("catalog unavailable")}
	c := newTestComposer(t, source, &mockHistory{}, products)

	got := c.Related(context.Background(), "A", 5)

	if len(got) != 2 || got[0] != "B" || got[1] != "C" {
		t.Errorf("Related() with failing catalog = %v, want pattern candidates [B C]", got)
	}
}

func TestFrequentlyBoughtTogether(t *testing.T) {
	c := newTestComposer(t, scenarioSource(), &mockHistory{}, scenarioProducts())

	combos, err := c.FrequentlyBoughtTogether(context.Background(), 0.05, 10)
	if err != nil {
		t.Fatalf("FrequentlyBoughtTogether() error = %v", err)
	}
	if len(combos) == 0 {
		t.Fatal("FrequentlyBoughtTogether() returned no combos")
	}

	for i, combo := range combos {
		if len(combo.Products) < 2 {
			t.Errorf("combo %d has %d products, want >= 2", i, len(combo.Products))
		}
		if i > 0 && combo.Support > combos[i-1].Support {
			t.Errorf("combo %d support %.2f out of order after %.2f", i, combo.Support, combos[i-1].Support)
		}
	}

	top := combos[0]
	if top.Frequency != 3 || top.Support != 0.6 {
		t.Errorf("top combo = %+v, want frequency 3 support 0.6", top)
	}
	if top.Products[0].Name == "" {
		t.Error("combo products not hydrated")
	}
}

func TestFrequentlyBoughtTogetherInvalidSupport(t *testing.T) {
	c := newTestComposer(t, scenarioSource(), &mockHistory{}, scenarioProducts())

	_, err := c.FrequentlyBoughtTogether(context.Background(), 1.5, 10)
	if !errors.Is(err, mining.ErrInvalidMinSupport) {
		t.Errorf("FrequentlyBoughtTogether(1.5) error = %v, want ErrInvalidMinSupport", err)
	}
}

func TestFrequentlyBoughtTogetherSourceFailureDegrades(t *testing.T) {
	source := &mockSource{err: errors.New("orders unavailable")}
	c := newTestComposer(t, source, &mockHistory{}, scenarioProducts())

	combos, err := c.FrequentlyBoughtTogether(context.Background(), 0.05, 10)
	if err != nil {
		t.Fatalf("FrequentlyBoughtTogether() error = %v, want degradation", err)
	}
	if len(combos) != 0 {
		t.Errorf("FrequentlyBoughtTogether() = %v, want empty", combos)
	}
}

func TestHydratePreservesOrder(t *testing.T) {
	c := newTestComposer(t, scenarioSource(), &mockHistory{}, scenarioProducts())

	products, err := c.Hydrate(context.Background(), []string{"C", "A", "missing", "B"})
	if err != nil {
		t.Fatalf("Hydrate() error = %v", err)
	}

	want := []string{"C", "A", "B"}
	if len(products) != len(want) {
		t.Fatalf("Hydrate() returned %d products, want %d", len(products), len(want))
	}
	for i, id := range want {
		if products[i].ID != id {
			t.Errorf("Hydrate()[%d].ID = %q, want %q", i, products[i].ID, id)
		}
	}
}

func TestMiningResultCached(t *testing.T) {
	source := scenarioSource()
	store := cache.New(DefaultConfig().MiningTTL)
	defer store.Close()
	c, err := NewComposer(DefaultConfig(), source, &mockHistory{}, scenarioProducts(), store, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewComposer() error = %v", err)
	}

	c.Cart(context.Background(), []string{"A"}, 2)
	source.txns = nil // second call must be served from cache
	got := c.Cart(context.Background(), []string{"A"}, 2)

	if len(got) != 2 || got[0] != "B" {
		t.Errorf("Cart() after cache fill = %v, want [B C]", got)
	}
}

func TestLimitClamping(t *testing.T) {
	c := newTestComposer(t, scenarioSource(), &mockHistory{}, scenarioProducts())

	if got := c.clampLimit(0); got != DefaultConfig().DefaultLimit {
		t.Errorf("clampLimit(0) = %d, want default %d", got, DefaultConfig().DefaultLimit)
	}
	if got := c.clampLimit(10000); got != DefaultConfig().MaxLimit {
		t.Errorf("clampLimit(10000) = %d, want max %d", got, DefaultConfig().MaxLimit)
	}
	if got := c.clampLimit(7); got != 7 {
		t.Errorf("clampLimit(7) = %d, want 7", got)
	}
}
