// Basketwise - E-Commerce Recommendation and Engagement Analytics
// Copyright 2026 Basketwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketwise/basketwise

package mining

import "testing"

func TestSelectMinSupport(t *testing.T) {
	tests := []struct {
		name             string
		transactionCount int
		want             float64
	}{
		{"zero transactions", 0, 0.05},
		{"one transaction", 1, 0.05},
		{"just below medium tier", 49, 0.05},
		{"medium tier lower bound", 50, 0.10},
		{"just below dense tier", 499, 0.10},
		{"dense tier lower bound", 500, 0.20},
		{"large volume", 100000, 0.20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectMinSupport(tt.transactionCount)
			if got != tt.want {
				t.Errorf("SelectMinSupport(%d) = %v, want %v", tt.transactionCount, got, tt.want)
			}
		})
	}
}

func TestSelectMinSupportMonotonic(t *testing.T) {
	prev := SelectMinSupport(0)
	for n := 1; n <= 1000; n++ {
		got := SelectMinSupport(n)
		if got < prev {
			t.Fatalf("SelectMinSupport(%d) = %v decreased below %v", n, got, prev)
		}
		prev = got
	}
}
