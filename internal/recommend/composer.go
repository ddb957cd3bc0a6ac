// Basketwise - E-Commerce Recommendation and Engagement Analytics
// Copyright 2026 Basketwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketwise/basketwise

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/basketwise/basketwise/internal/cache"
	"github.com/basketwise/basketwise/internal/metrics"
	"github.com/basketwise/basketwise/internal/mining"
)

// Surface identifiers used for metrics labels.
const (
	surfaceCart     = "cart"
	surfaceHomepage = "homepage"
	surfaceRelated  = "related"
	surfaceAdmin    = "admin"
)

// Composer turns mined itemsets into surface-specific recommendation lists.
// It is safe for concurrent use.
type Composer struct {
	cfg      Config
	logger   zerolog.Logger
	source   TransactionSource
	history  PurchaseHistory
	products ProductStore
	apriori  mining.Miner
	fpgrowth mining.Miner
	cache    cache.Cacher

	txnsCB     *gobreaker.CircuitBreaker[[]mining.Transaction]
	historyCB  *gobreaker.CircuitBreaker[[]string]
	productsCB *gobreaker.CircuitBreaker[[]Product]
}

// NewComposer creates a composer over the given collaborators. The cache is
// owned by the caller; pass cache.NewNop() to disable memoization.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewComposer(cfg Config, source TransactionSource, history PurchaseHistory, products ProductStore, c cache.Cacher, logger zerolog.Logger) (*Composer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger = logger.With().Str("component", "recommend").Logger()

	return &Composer{
		cfg:        cfg,
		logger:     logger,
		source:     source,
		history:    history,
		products:   products,
		apriori:    mining.NewApriori(),
		fpgrowth:   mining.NewFPGrowth(),
		cache:      c,
		txnsCB:     newBreaker[[]mining.Transaction]("order-store", logger),
		historyCB:  newBreaker[[]string]("order-history", logger),
		productsCB: newBreaker[[]Product]("product-store", logger),
	}, nil
}

// newBreaker builds a breaker that shortcuts repeated collaborator failures.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func newBreaker[T any](name string, logger zerolog.Logger) *gobreaker.CircuitBreaker[T] {
	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 &&
				float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	})
}

// Cart recommends products for the current basket: items co-occurring with
// basket members, basket items excluded, featured products backfilled on
// shortfall. An empty basket skips mining and returns featured products.
func (c *Composer) Cart(ctx context.Context, basketIDs []string, limit int) []string {
	limit = c.clampLimit(limit)
	metrics.RecommendationsServed.WithLabelValues(surfaceCart).Inc()

	exclude := toSet(basketIDs)

	if len(basketIDs) == 0 {
		return c.featuredBackfill(ctx, surfaceCart, nil, exclude, limit)
	}

	itemsets, err := c.minedItemsets(ctx, c.apriori)
	if err != nil {
		c.logger.Warn().Err(err).Msg("cart mining unavailable, falling back to featured")
		return c.featuredBackfill(ctx, surfaceCart, nil, exclude, limit)
	}

	candidates := collectCandidates(itemsets, toSet(basketIDs), exclude, limit)
	return c.featuredBackfill(ctx, surfaceCart, candidates, exclude, limit)
}

// Homepage recommends products from a user's purchase history via FP-Growth
// patterns. Users without history (or anonymous visitors) get featured
// products directly.
func (c *Composer) Homepage(ctx context.Context, userID string, limit int) []string {
	limit = c.clampLimit(limit)
	metrics.RecommendationsServed.WithLabelValues(surfaceHomepage).Inc()

	if userID == "" {
		return c.featuredBackfill(ctx, surfaceHomepage, nil, nil, limit)
	}

	purchased, err := c.historyCB.Execute(func() ([]string, error) {
		return c.history.ListPurchasedProductIDs(ctx, userID)
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("user_id", userID).Msg("purchase history unavailable, falling back to featured")
		return c.featuredBackfill(ctx, surfaceHomepage, nil, nil, limit)
	}
	if len(purchased) == 0 {
		return c.featuredBackfill(ctx, surfaceHomepage, nil, nil, limit)
	}

	exclude := toSet(purchased)

	itemsets, err := c.minedItemsets(ctx, c.fpgrowth)
	if err != nil {
		c.logger.Warn().Err(err).Msg("homepage mining unavailable, falling back to featured")
		return c.featuredBackfill(ctx, surfaceHomepage, nil, exclude, limit)
	}

	candidates := collectCandidates(itemsets, toSet(purchased), exclude, limit)
	return c.featuredBackfill(ctx, surfaceHomepage, candidates, exclude, limit)
}

// Related recommends products co-occurring with the given product, backfilled
// with same-category products on shortfall.
func (c *Composer) Related(ctx context.Context, productID string, limit int) []string {
	limit = c.clampLimit(limit)
	metrics.RecommendationsServed.WithLabelValues(surfaceRelated).Inc()

	exclude := toSet([]string{productID})

	var candidates []string
	itemsets, err := c.minedItemsets(ctx, c.apriori)
	if err != nil {
		c.logger.Warn().Err(err).Str("product_id", productID).Msg("related mining unavailable, falling back to category")
	} else {
		candidates = collectCandidates(itemsets, exclude, exclude, limit)
	}
	if len(candidates) >= limit {
		return candidates[:limit]
	}

	metrics.RecommendationFallbacks.WithLabelValues(surfaceRelated).Inc()

	category, err := c.productCategory(ctx, productID)
	if err != nil {
		c.logger.Warn().Err(err).Str("product_id", productID).Msg("category lookup failed, returning pattern candidates only")
		return candidates
	}

	excludeIDs := append([]string{productID}, candidates...)
	fill, err := c.productsCB.Execute(func() ([]Product, error) {
		return c.products.FindByCategory(ctx, category, excludeIDs, limit-len(candidates))
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("category", category).Msg("category backfill failed, returning pattern candidates only")
		return candidates
	}

	for _, p := range fill {
		candidates = append(candidates, p.ID)
	}
	return candidates
}

// FrequentlyBoughtTogether mines FP-Growth at the caller-supplied minimum
// support (typically below the automatic threshold), keeps itemsets of size
// >= 2 sorted by support descending, truncates to limit, and hydrates each
// set's members into product records. Invalid mining parameters surface as
// errors; collaborator failures degrade to an empty list.
func (c *Composer) FrequentlyBoughtTogether(ctx context.Context, minSupport float64, limit int) ([]Combo, error) {
	limit = c.clampLimit(limit)
	metrics.RecommendationsServed.WithLabelValues(surfaceAdmin).Inc()

	key := fmt.Sprintf("%s:combo:%.4f", c.fpgrowth.Name(), minSupport)
	computed := false
	itemsets, err := cache.GetOrCompute(c.cache, key, c.cfg.MiningTTL, func() ([]mining.Itemset, error) {
		computed = true
		metrics.CacheMisses.WithLabelValues("mining").Inc()
		return c.mineAt(ctx, c.fpgrowth, minSupport)
	})
	if err == nil && !computed {
		metrics.CacheHits.WithLabelValues("mining").Inc()
	}
	if err != nil {
		// Parameter errors are the caller's to fix; anything else degrades.
		if isConfigError(err) {
			return nil, err
		}
		c.logger.Warn().Err(err).Msg("combo mining unavailable")
		return []Combo{}, nil
	}

	// Miners return results sorted by support descending already; the sort
	// is restated here because the contract belongs to this surface.
	sorted := make([]mining.Itemset, len(itemsets))
	copy(sorted, itemsets)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Support > sorted[j].Support })
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	byID, err := c.hydrateIndex(ctx, sorted)
	if err != nil {
		c.logger.Warn().Err(err).Msg("combo hydration unavailable")
		return []Combo{}, nil
	}

	combos := make([]Combo, 0, len(sorted))
	for _, s := range sorted {
		products := make([]Product, 0, len(s.Items))
		for _, id := range s.Items {
			if p, ok := byID[id]; ok {
				products = append(products, p)
			}
		}
		combos = append(combos, Combo{
			Products:   products,
			Support:    s.Support,
			Confidence: s.Confidence,
			Frequency:  s.Frequency,
		})
	}
	return combos, nil
}

// Hydrate resolves product ids to full records, preserving order. Used by
// the caller surfaces to shape responses.
func (c *Composer) Hydrate(ctx context.Context, ids []string) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}
	return c.productsCB.Execute(func() ([]Product, error) {
		return c.products.FindByIDs(ctx, ids)
	})
}

// minedItemsets returns the cached global mining result for the miner,
// computing it at the automatically selected support threshold on a miss.
func (c *Composer) minedItemsets(ctx context.Context, m mining.Miner) ([]mining.Itemset, error) {
	computed := false
	itemsets, err := cache.GetOrCompute(c.cache, m.Name(), c.cfg.MiningTTL, func() ([]mining.Itemset, error) {
		computed = true
		metrics.CacheMisses.WithLabelValues("mining").Inc()
		return c.mineAt(ctx, m, -1)
	})
	if err == nil && !computed {
		metrics.CacheHits.WithLabelValues("mining").Inc()
	}
	return itemsets, err
}

// mineAt runs one mining pass. A negative minSupport selects the automatic
// threshold from the transaction count.
func (c *Composer) mineAt(ctx context.Context, m mining.Miner, minSupport float64) ([]mining.Itemset, error) {
	txns, err := c.txnsCB.Execute(func() ([]mining.Transaction, error) {
		return c.source.Extract(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("extract transactions: %w", err)
	}
	if len(txns) == 0 {
		return []mining.Itemset{}, nil
	}

	if minSupport < 0 {
		minSupport = mining.SelectMinSupport(len(txns))
	}

	mctx, cancel := context.WithTimeout(ctx, c.cfg.MiningTimeout)
	defer cancel()

	start := time.Now()
	itemsets, err := m.Mine(mctx, txns, minSupport, c.cfg.MinConfidence)
	if err != nil {
		metrics.MiningErrors.WithLabelValues(m.Name()).Inc()
		return nil, fmt.Errorf("mine %s: %w", m.Name(), err)
	}
	metrics.ObserveMining(m.Name(), len(txns), len(itemsets), time.Since(start))

	c.logger.Debug().
		Str("algorithm", m.Name()).
		Int("transactions", len(txns)).
		Int("itemsets", len(itemsets)).
		Float64("min_support", minSupport).
		Dur("elapsed", time.Since(start)).
		Msg("mining pass complete")

	return itemsets, nil
}

// featuredBackfill pads candidates with featured products up to limit,
// excluding everything in exclude and everything already chosen. Candidates
// beyond limit are truncated. A failing product store degrades to whatever
// candidates exist, down to an empty list.
func (c *Composer) featuredBackfill(ctx context.Context, surface string, candidates []string, exclude map[string]struct{}, limit int) []string {
	if len(candidates) >= limit {
		return candidates[:limit]
	}

	metrics.RecommendationFallbacks.WithLabelValues(surface).Inc()

	excludeIDs := make([]string, 0, len(exclude)+len(candidates))
	for id := range exclude {
		excludeIDs = append(excludeIDs, id)
	}
	excludeIDs = append(excludeIDs, candidates...)

	fill, err := c.productsCB.Execute(func() ([]Product, error) {
		return c.products.FindFeatured(ctx, excludeIDs, limit-len(candidates))
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("surface", surface).Msg("featured backfill unavailable")
		if candidates == nil {
			return []string{}
		}
		return candidates
	}

	for _, p := range fill {
		candidates = append(candidates, p.ID)
	}
	return candidates
}

// collectCandidates walks itemsets in their mined order and gathers the
// members of every set touching the trigger set, skipping excluded and
// already-chosen ids. Equal-signal candidates keep the order the itemsets
// came in; no secondary sort key is applied.
func collectCandidates(itemsets []mining.Itemset, trigger, exclude map[string]struct{}, limit int) []string {
	var candidates []string
	chosen := make(map[string]struct{})

	for _, s := range itemsets {
		if len(candidates) >= limit {
			break
		}
		if !s.ContainsAny(trigger) {
			continue
		}
		for _, id := range s.Items {
			if len(candidates) >= limit {
				break
			}
			if _, ok := exclude[id]; ok {
				continue
			}
			if _, ok := chosen[id]; ok {
				continue
			}
			chosen[id] = struct{}{}
			candidates = append(candidates, id)
		}
	}
	return candidates
}

// productCategory resolves the category of a product for the related-surface
// backfill.
func (c *Composer) productCategory(ctx context.Context, productID string) (string, error) {
	products, err := c.productsCB.Execute(func() ([]Product, error) {
		return c.products.FindByIDs(ctx, []string{productID})
	})
	if err != nil {
		return "", err
	}
	if len(products) == 0 {
		return "", fmt.Errorf("product %s not found", productID)
	}
	return products[0].Category, nil
}

// hydrateIndex loads every product referenced by the itemsets in one call.
func (c *Composer) hydrateIndex(ctx context.Context, itemsets []mining.Itemset) (map[string]Product, error) {
	seen := make(map[string]struct{})
	var ids []string
	for _, s := range itemsets {
		for _, id := range s.Items {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return map[string]Product{}, nil
	}

	products, err := c.productsCB.Execute(func() ([]Product, error) {
		return c.products.FindByIDs(ctx, ids)
	})
	if err != nil {
		return nil, err
	}

	byID := make(map[string]Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID, nil
}

// clampLimit applies the default and maximum list sizes.
func (c *Composer) clampLimit(limit int) int {
	if limit <= 0 {
		return c.cfg.DefaultLimit
	}
	if limit > c.cfg.MaxLimit {
		return c.cfg.MaxLimit
	}
	return limit
}

// isConfigError reports whether the error is a mining parameter fault the
// caller must fix rather than a transient collaborator failure.
func isConfigError(err error) bool {
	return errors.Is(err, mining.ErrInvalidMinSupport) || errors.Is(err, mining.ErrInvalidMinConfidence)
}

// toSet converts an id slice to a lookup set.
func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id != "" {
			set[id] = struct{}{}
		}
	}
	return set
}
