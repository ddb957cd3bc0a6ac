// Basketwise - E-Commerce Recommendation and Engagement Analytics
// Copyright 2026 Basketwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketwise/basketwise

// Package storage holds the persistence implementations behind the
// collaborator interfaces the core packages define.
//
// SQLStore is a SQLite-backed order and product catalog implementing
// basket.OrderStore and recommend.ProductStore. EngagementStore is a
// BadgerDB-backed implementation of engagement.Store; it supports pure
// in-memory operation for tests.
package storage
