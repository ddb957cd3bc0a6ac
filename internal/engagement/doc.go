// Basketwise - E-Commerce Recommendation and Engagement Analytics
// Copyright 2026 Basketwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketwise/basketwise

// Package engagement tracks how shoppers interact with recommended products.
//
// One record exists per (surface, product, viewer) tuple, where the viewer
// is a user id or an anonymous session id, never both. Records carry four
// boolean flags, impression, clicked, added-to-cart and purchased, each with
// a timestamp set the first time the flag turns true. Flags only transition
// false to true; repeat events are no-ops that still succeed.
//
// Rate queries (click-through, cart-addition, conversion) all share the
// shape count(flag)/count(impressions)*100, rounded to two decimals, zero
// when there are no impressions. Results are cached for an hour per
// (kind, surface, date range) combination.
//
// Events may also arrive asynchronously through the Pipeline, a watermill
// in-process pub/sub feed, so tracking never blocks the user action that
// produced it.
package engagement
