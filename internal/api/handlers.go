// Basketwise - E-Commerce Recommendation and Engagement Analytics
// Copyright 2026 Basketwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketwise/basketwise

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/basketwise/basketwise/internal/basket"
	"github.com/basketwise/basketwise/internal/engagement"
	"github.com/basketwise/basketwise/internal/recommend"
)

// Handlers bundle the collaborators the HTTP surface calls into.
type Handlers struct {
	composer *recommend.Composer
	tracker  *engagement.Tracker
	pipeline *engagement.Pipeline
	orders   basket.OrderStore
	logger   zerolog.Logger
}

// NewHandlers creates the handler set.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHandlers(composer *recommend.Composer, tracker *engagement.Tracker, pipeline *engagement.Pipeline, orders basket.OrderStore, logger zerolog.Logger) *Handlers {
	return &Handlers{
		composer: composer,
		tracker:  tracker,
		pipeline: pipeline,
		orders:   orders,
		logger:   logger.With().Str("component", "api").Logger(),
	}
}

// recommendationResponse is the payload for recommendation list endpoints.
type recommendationResponse struct {
	ProductIDs []string            `json:"product_ids"`
	Products   []recommend.Product `json:"products,omitempty"`
}

// CartRecommendations serves GET /recommendations/cart.
// The basket travels as a comma-separated ids query parameter.
func (h *Handlers) CartRecommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	limit, err := queryLimit(r)
	if err != nil {
		rw.BadRequest("limit must be an integer")
		return
	}
	req := CartRequest{ProductIDs: queryIDs(r, "ids"), Limit: limit}
	if err := requestValidator.Struct(req); err != nil {
		rw.ValidationError("invalid cart request", err.Error())
		return
	}

	ids := h.composer.Cart(r.Context(), req.ProductIDs, req.Limit)
	rw.Success(h.buildRecommendation(r, ids))
}

// HomepageRecommendations serves GET /recommendations/homepage.
func (h *Handlers) HomepageRecommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	limit, err := queryLimit(r)
	if err != nil {
		rw.BadRequest("limit must be an integer")
		return
	}
	req := HomepageRequest{UserID: r.URL.Query().Get("user_id"), Limit: limit}
	if err := requestValidator.Struct(req); err != nil {
		rw.ValidationError("invalid homepage request", err.Error())
		return
	}

	ids := h.composer.Homepage(r.Context(), req.UserID, req.Limit)
	rw.Success(h.buildRecommendation(r, ids))
}

// RelatedRecommendations serves GET /recommendations/related/{productID}.
func (h *Handlers) RelatedRecommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	limit, err := queryLimit(r)
	if err != nil {
		rw.BadRequest("limit must be an integer")
		return
	}
	req := RelatedRequest{ProductID: chi.URLParam(r, "productID"), Limit: limit}
	if err := requestValidator.Struct(req); err != nil {
		rw.ValidationError("invalid related request", err.Error())
		return
	}

	ids := h.composer.Related(r.Context(), req.ProductID, req.Limit)
	rw.Success(h.buildRecommendation(r, ids))
}

// Combos serves GET /combos, the admin frequently-bought-together seed.
func (h *Handlers) Combos(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	limit, err := queryLimit(r)
	if err != nil {
		rw.BadRequest("limit must be an integer")
		return
	}
	minSupport, err := strconv.ParseFloat(r.URL.Query().Get("min_support"), 64)
	if err != nil {
		rw.BadRequest("min_support must be a number")
		return
	}
	req := CombosRequest{MinSupport: minSupport, Limit: limit}
	if err := requestValidator.Struct(req); err != nil {
		rw.ValidationError("invalid combos request", err.Error())
		return
	}

	combos, err := h.composer.FrequentlyBoughtTogether(r.Context(), req.MinSupport, req.Limit)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	rw.Success(map[string]interface{}{"combos": combos})
}

// TrackEvent serves POST /engagement/events. The event is queued on the
// async pipeline; persistence failures never surface to the caller.
func (h *Handlers) TrackEvent(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("malformed event payload")
		return
	}
	if err := requestValidator.Struct(req); err != nil {
		rw.ValidationError("invalid event", err.Error())
		return
	}

	ev := engagement.Event{
		Surface:    engagement.Surface(req.Surface),
		ProductID:  req.ProductID,
		Viewer:     engagement.Viewer{UserID: req.UserID, SessionID: req.SessionID},
		Action:     engagement.Action(req.Action),
		OccurredAt: time.Now(),
	}
	if err := h.pipeline.Publish(r.Context(), ev); err != nil {
		// Viewer mutual exclusion is checked at publish time.
		rw.BadRequest(err.Error())
		return
	}

	rw.Accepted(map[string]string{"status": "queued"})
}

// EngagementRates serves GET /engagement/rates/{kind}.
func (h *Handlers) EngagementRates(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req := RatesRequest{
		Kind:    chi.URLParam(r, "kind"),
		Surface: r.URL.Query().Get("surface"),
		From:    r.URL.Query().Get("from"),
		To:      r.URL.Query().Get("to"),
	}
	if err := requestValidator.Struct(req); err != nil {
		rw.ValidationError("invalid rates request", err.Error())
		return
	}

	from, _ := queryTime(req.From)
	to, _ := queryTime(req.To)
	surface := engagement.Surface(req.Surface)

	var (
		rate engagement.Rate
		err  error
	)
	switch req.Kind {
	case "ctr":
		rate, err = h.tracker.ClickThroughRate(r.Context(), surface, from, to)
	case "cart":
		rate, err = h.tracker.CartAdditionRate(r.Context(), surface, from, to)
	case "conversion":
		rate, err = h.tracker.ConversionRate(r.Context(), surface, from, to)
	}
	if err != nil {
		h.logger.Error().Err(err).Str("kind", req.Kind).Msg("rate query failed")
		rw.InternalError("rate query failed")
		return
	}

	rw.Success(rate)
}

// OrderCount serves GET /orders/count, the dashboard helper.
func (h *Handlers) OrderCount(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req := OrderCountRequest{
		From: r.URL.Query().Get("from"),
		To:   r.URL.Query().Get("to"),
	}
	if err := requestValidator.Struct(req); err != nil {
		rw.ValidationError("invalid order count request", err.Error())
		return
	}

	from, _ := queryTime(req.From)
	to, _ := queryTime(req.To)

	count, err := h.orders.CountCompletedOrders(r.Context(), *from, *to)
	if err != nil {
		h.logger.Error().Err(err).Msg("order count failed")
		rw.InternalError("order count failed")
		return
	}

	rw.Success(map[string]int{"count": count})
}

// Health serves GET /health.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]string{"status": "ok"})
}

// buildRecommendation hydrates the id list when include=products is set.
func (h *Handlers) buildRecommendation(r *http.Request, ids []string) recommendationResponse {
	resp := recommendationResponse{ProductIDs: ids}
	if r.URL.Query().Get("include") != "products" {
		return resp
	}

	products, err := h.composer.Hydrate(r.Context(), ids)
	if err != nil {
		h.logger.Warn().Err(err).Msg("hydration failed, returning ids only")
		return resp
	}
	resp.Products = products
	return resp
}
