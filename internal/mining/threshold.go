// Basketwise - E-Commerce Recommendation and Engagement Analytics
// Copyright 2026 Basketwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketwise/basketwise

package mining

// Support threshold tiers. With few transactions any reasonably common pair
// has low absolute support; raising the bar with data volume suppresses
// coincidental noise as the sample grows. Callers depend on this exact shape.
const (
	sparseThreshold = 0.05
	mediumThreshold = 0.10
	denseThreshold  = 0.20

	mediumTransactionCount = 50
	denseTransactionCount  = 500
)

// SelectMinSupport chooses a minimum support as a function of the number of
// available transactions. Monotonically non-decreasing in transactionCount.
func SelectMinSupport(transactionCount int) float64 {
	switch {
	case transactionCount >= denseTransactionCount:
		return denseThreshold
	case transactionCount >= mediumTransactionCount:
		return mediumThreshold
	default:
		return sparseThreshold
	}
}
