// Basketwise - E-Commerce Recommendation and Engagement Analytics
// Copyright 2026 Basketwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketwise/basketwise

// Package basket extracts mining transactions from completed orders.
//
// A transaction is the deduplicated set of product ids in one order's line
// items. Orders with zero usable items yield no transaction: an empty basket
// contributes no co-occurrence signal and would only dilute support counts.
// A malformed line item (blank product reference) is skipped individually;
// the rest of the order still contributes.
//
// Transactions are derived, never persisted. They are recomputed from the
// order store on each mining pass, subject to the result cache upstream.
package basket
