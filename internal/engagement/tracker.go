// Basketwise - E-Commerce Recommendation and Engagement Analytics
// Copyright 2026 Basketwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketwise/basketwise

package engagement

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/basketwise/basketwise/internal/cache"
	"github.com/basketwise/basketwise/internal/metrics"
)

// DefaultRatesTTL is how long computed rate aggregates stay cached. Rates
// drift slowly compared to mined co-occurrence patterns.
const DefaultRatesTTL = time.Hour

// Tracker records engagement events and answers rate queries.
// It is safe for concurrent use when the underlying store is.
type Tracker struct {
	store    Store
	cache    cache.Cacher
	ratesTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewTracker creates a tracker over the given store. Pass cache.NewNop() to
// disable rate memoization.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTracker(store Store, c cache.Cacher, logger zerolog.Logger) *Tracker {
	return &Tracker{
		store:    store,
		cache:    c,
		ratesTTL: DefaultRatesTTL,
		logger:   logger.With().Str("component", "engagement").Logger(),
		now:      time.Now,
	}
}

// TrackImpression records that a recommendation was shown. Returns true when
// the flag was newly set, false when it was already set.
func (t *Tracker) TrackImpression(ctx context.Context, surface Surface, productID string, viewer Viewer) (bool, error) {
	return t.track(ctx, surface, productID, viewer, ActionImpression, t.now())
}

// TrackClick records that a recommended product was clicked.
func (t *Tracker) TrackClick(ctx context.Context, surface Surface, productID string, viewer Viewer) (bool, error) {
	return t.track(ctx, surface, productID, viewer, ActionClick, t.now())
}

// TrackAddToCart records that a recommended product was added to the cart.
func (t *Tracker) TrackAddToCart(ctx context.Context, surface Surface, productID string, viewer Viewer) (bool, error) {
	return t.track(ctx, surface, productID, viewer, ActionAddToCart, t.now())
}

// TrackPurchase records that a recommended product was purchased.
func (t *Tracker) TrackPurchase(ctx context.Context, surface Surface, productID string, viewer Viewer) (bool, error) {
	return t.track(ctx, surface, productID, viewer, ActionPurchase, t.now())
}

// Track dispatches on the action name, stamping the current time.
func (t *Tracker) Track(ctx context.Context, surface Surface, productID string, viewer Viewer, action Action) (bool, error) {
	return t.TrackAt(ctx, surface, productID, viewer, action, t.now())
}

// TrackAt records the action with a caller-supplied event time. The async
// pipeline uses it so a record's first-set timestamp reflects when the
// event occurred, not when the consumer got to it. A zero time falls back
// to the current time.
func (t *Tracker) TrackAt(ctx context.Context, surface Surface, productID string, viewer Viewer, action Action, at time.Time) (bool, error) {
	if !action.Valid() {
		return false, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}
	return t.track(ctx, surface, productID, viewer, action, at)
}

func (t *Tracker) track(ctx context.Context, surface Surface, productID string, viewer Viewer, action Action, at time.Time) (bool, error) {
	if !surface.Valid() {
		return false, fmt.Errorf("%w: %q", ErrInvalidSurface, surface)
	}
	if productID == "" {
		return false, ErrMissingProduct
	}
	if err := viewer.Validate(); err != nil {
		return false, err
	}

	if at.IsZero() {
		at = t.now()
	}

	changed := false
	err := t.store.Apply(ctx, surface, productID, viewer, func(r *Record) bool {
		changed = setFlag(r, action, at)
		return changed
	})
	if err != nil {
		metrics.EngagementWriteFailures.WithLabelValues(string(surface), string(action)).Inc()
		return false, fmt.Errorf("record %s on %s/%s: %w", action, surface, productID, err)
	}

	metrics.EngagementEvents.WithLabelValues(string(surface), string(action)).Inc()
	return changed, nil
}

// setFlag flips the flag for the action if it is still false, stamping the
// first-set time. Already-set flags and their timestamps are left alone.
func setFlag(r *Record, action Action, now time.Time) bool {
	switch action {
	case ActionImpression:
		if r.Impression {
			return false
		}
		r.Impression = true
		r.ImpressionAt = &now
	case ActionClick:
		if r.Clicked {
			return false
		}
		r.Clicked = true
		r.ClickedAt = &now
	case ActionAddToCart:
		if r.AddedToCart {
			return false
		}
		r.AddedToCart = true
		r.AddedToCartAt = &now
	case ActionPurchase:
		if r.Purchased {
			return false
		}
		r.Purchased = true
		r.PurchasedAt = &now
	}
	return true
}

// ClickThroughRate returns clicks/impressions*100 for the surface, bounded
// by the optional impression-time range.
func (t *Tracker) ClickThroughRate(ctx context.Context, surface Surface, from, to *time.Time) (Rate, error) {
	return t.rate(ctx, "ctr", surface, from, to, func(c Counts) int { return c.Clicks })
}

// CartAdditionRate returns cart-adds/impressions*100 for the surface.
func (t *Tracker) CartAdditionRate(ctx context.Context, surface Surface, from, to *time.Time) (Rate, error) {
	return t.rate(ctx, "cart", surface, from, to, func(c Counts) int { return c.CartAdds })
}

// ConversionRate returns purchases/impressions*100 for the surface.
func (t *Tracker) ConversionRate(ctx context.Context, surface Surface, from, to *time.Time) (Rate, error) {
	return t.rate(ctx, "conversion", surface, from, to, func(c Counts) int { return c.Purchases })
}

func (t *Tracker) rate(ctx context.Context, kind string, surface Surface, from, to *time.Time, pick func(Counts) int) (Rate, error) {
	if surface != "" && !surface.Valid() {
		return Rate{}, fmt.Errorf("%w: %q", ErrInvalidSurface, surface)
	}

	key := rateKey(kind, surface, from, to)
	return cache.GetOrCompute(t.cache, key, t.ratesTTL, func() (Rate, error) {
		counts, err := t.store.Count(ctx, Filter{Surface: surface, From: from, To: to})
		if err != nil {
			return Rate{}, fmt.Errorf("count engagement records: %w", err)
		}
		return makeRate(counts.Impressions, pick(counts)), nil
	})
}

// makeRate computes events/impressions*100 rounded to two decimals, zero
// when there are no impressions.
func makeRate(impressions, events int) Rate {
	r := Rate{Impressions: impressions, Events: events}
	if impressions > 0 {
		r.Percent = math.Round(float64(events)/float64(impressions)*100*100) / 100
	}
	return r
}

// rateKey builds the cache key for one (kind, surface, date range) query.
func rateKey(kind string, surface Surface, from, to *time.Time) string {
	f, u := "", ""
	if from != nil {
		f = from.UTC().Format(time.RFC3339)
	}
	if to != nil {
		u = to.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("rates:%s:%s:%s:%s", kind, surface, f, u)
}
