// Basketwise - E-Commerce Recommendation and Engagement Analytics
// Copyright 2026 Basketwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketwise/basketwise

package engagement

import (
	"context"
	"errors"
	"time"
)

// Surface identifies the UI context a recommendation was shown in.
type Surface string

// Recommendation surfaces.
const (
	SurfaceCart     Surface = "cart"
	SurfaceHomepage Surface = "homepage"
	SurfaceRelated  Surface = "related"
	SurfaceAdmin    Surface = "admin"
)

// Valid reports whether the surface is one of the known values.
func (s Surface) Valid() bool {
	switch s {
	case SurfaceCart, SurfaceHomepage, SurfaceRelated, SurfaceAdmin:
		return true
	}
	return false
}

// Action names an engagement event type.
type Action string

// Engagement actions.
const (
	ActionImpression Action = "impression"
	ActionClick      Action = "click"
	ActionAddToCart  Action = "add_to_cart"
	ActionPurchase   Action = "purchase"
)

// Valid reports whether the action is one of the known values.
func (a Action) Valid() bool {
	switch a {
	case ActionImpression, ActionClick, ActionAddToCart, ActionPurchase:
		return true
	}
	return false
}

// Validation errors.
var (
	ErrInvalidSurface = errors.New("engagement: unknown surface")
	ErrInvalidAction  = errors.New("engagement: unknown action")
	ErrInvalidViewer  = errors.New("engagement: viewer must have exactly one of user id or session id")
	ErrMissingProduct = errors.New("engagement: product id is required")
)

// Viewer identifies who saw a recommendation. Exactly one of UserID or
// SessionID is set.
type Viewer struct {
	UserID    string `json:"user_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// UserViewer creates a viewer for a signed-in user.
func UserViewer(userID string) Viewer { return Viewer{UserID: userID} }

// SessionViewer creates a viewer for an anonymous session.
func SessionViewer(sessionID string) Viewer { return Viewer{SessionID: sessionID} }

// Validate checks the mutual-exclusion rule.
func (v Viewer) Validate() error {
	if (v.UserID == "") == (v.SessionID == "") {
		return ErrInvalidViewer
	}
	return nil
}

// Key returns a stable identity string for the viewer.
func (v Viewer) Key() string {
	if v.UserID != "" {
		return "u:" + v.UserID
	}
	return "s:" + v.SessionID
}

// Record is the persisted engagement state for one (surface, product,
// viewer) tuple. Flags only move false to true; timestamps hold the
// first-set time and are never updated afterwards.
type Record struct {
	Surface   Surface `json:"surface"`
	ProductID string  `json:"product_id"`
	Viewer    Viewer  `json:"viewer"`

	Impression   bool       `json:"impression"`
	ImpressionAt *time.Time `json:"impression_at,omitempty"`

	Clicked   bool       `json:"clicked"`
	ClickedAt *time.Time `json:"clicked_at,omitempty"`

	AddedToCart   bool       `json:"added_to_cart"`
	AddedToCartAt *time.Time `json:"added_to_cart_at,omitempty"`

	Purchased   bool       `json:"purchased"`
	PurchasedAt *time.Time `json:"purchased_at,omitempty"`
}

// Key returns the storage key for the record's tuple.
func (r *Record) Key() string {
	return recordKey(r.Surface, r.ProductID, r.Viewer)
}

func recordKey(surface Surface, productID string, viewer Viewer) string {
	return string(surface) + "/" + productID + "/" + viewer.Key()
}

// Filter bounds a rate query. Zero-value fields mean no constraint. Date
// bounds apply to the impression timestamp.
type Filter struct {
	Surface   Surface
	ProductID string
	Viewer    Viewer
	From      *time.Time
	To        *time.Time
}

// Matches reports whether the record falls inside the filter. Records
// without an impression never match a date-bounded filter.
func (f Filter) Matches(r *Record) bool {
	if f.Surface != "" && r.Surface != f.Surface {
		return false
	}
	if f.ProductID != "" && r.ProductID != f.ProductID {
		return false
	}
	if (f.Viewer != Viewer{}) && r.Viewer != f.Viewer {
		return false
	}
	if f.From != nil || f.To != nil {
		if r.ImpressionAt == nil {
			return false
		}
		if f.From != nil && r.ImpressionAt.Before(*f.From) {
			return false
		}
		if f.To != nil && r.ImpressionAt.After(*f.To) {
			return false
		}
	}
	return true
}

// Counts aggregates flag totals over a set of records.
type Counts struct {
	Impressions int `json:"impressions"`
	Clicks      int `json:"clicks"`
	CartAdds    int `json:"cart_adds"`
	Purchases   int `json:"purchases"`
}

// Add folds a record into the totals.
func (c *Counts) Add(r *Record) {
	if r.Impression {
		c.Impressions++
	}
	if r.Clicked {
		c.Clicks++
	}
	if r.AddedToCart {
		c.CartAdds++
	}
	if r.Purchased {
		c.Purchases++
	}
}

// Rate is the result of a rate query. Events holds the numerator count for
// the queried flag and Percent the rounded ratio.
type Rate struct {
	Impressions int     `json:"impressions"`
	Events      int     `json:"events"`
	Percent     float64 `json:"percent"`
}

// Store persists engagement records. Apply must be atomic per tuple so two
// racing events for the same tuple cannot lose an update.
type Store interface {
	// Apply loads (or initializes) the record for the tuple, runs mutate on
	// it, and writes it back if mutate reports a change.
	Apply(ctx context.Context, surface Surface, productID string, viewer Viewer, mutate func(*Record) bool) error

	// Count aggregates flag totals over every record matching the filter.
	Count(ctx context.Context, filter Filter) (Counts, error)
}
