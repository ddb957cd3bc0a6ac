// Basketwise - E-Commerce Recommendation and Engagement Analytics
// Copyright 2026 Basketwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketwise/basketwise

package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// requestValidator validates request structs against their validate tags.
var requestValidator = validator.New()

// CartRequest parameterizes GET /recommendations/cart.
type CartRequest struct {
	ProductIDs []string `validate:"dive,required"`
	Limit      int      `validate:"min=0,max=1000"`
}

// HomepageRequest parameterizes GET /recommendations/homepage.
type HomepageRequest struct {
	UserID string `validate:"omitempty,max=128"`
	Limit  int    `validate:"min=0,max=1000"`
}

// RelatedRequest parameterizes GET /recommendations/related/{productID}.
type RelatedRequest struct {
	ProductID string `validate:"required,max=128"`
	Limit     int    `validate:"min=0,max=1000"`
}

// CombosRequest parameterizes GET /combos.
type CombosRequest struct {
	MinSupport float64 `validate:"gt=0,lte=1"`
	Limit      int     `validate:"min=0,max=1000"`
}

// EventRequest is the POST /engagement/events payload.
type EventRequest struct {
	Surface   string `json:"surface" validate:"required,oneof=cart homepage related admin"`
	Action    string `json:"action" validate:"required,oneof=impression click add_to_cart purchase"`
	ProductID string `json:"product_id" validate:"required,max=128"`
	UserID    string `json:"user_id" validate:"omitempty,max=128"`
	SessionID string `json:"session_id" validate:"omitempty,max=128"`
}

// RatesRequest parameterizes GET /engagement/rates/{kind}.
type RatesRequest struct {
	Kind    string `validate:"required,oneof=ctr cart conversion"`
	Surface string `validate:"required,oneof=cart homepage related admin"`
	From    string `validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	To      string `validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// OrderCountRequest parameterizes GET /orders/count.
type OrderCountRequest struct {
	From string `validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	To   string `validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
}

// queryLimit parses the limit query parameter, zero when absent. A
// non-positive or missing limit makes the composer apply its default.
func queryLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

// queryIDs parses a comma-separated id list query parameter.
func queryIDs(r *http.Request, name string) []string {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}

// queryTime parses an optional RFC3339 time query parameter.
func queryTime(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
