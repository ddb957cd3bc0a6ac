// Basketwise - E-Commerce Recommendation and Engagement Analytics
// Copyright 2026 Basketwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketwise/basketwise

package cache

import "time"

// Cacher is the interface consumed by GetOrCompute. It allows injecting a
// fresh cache per test, or a no-op cache to disable memoization entirely.
type Cacher interface {
	// Get retrieves a value. Returns the value and true on a fresh hit.
	Get(key string) (any, bool)

	// Set stores a value with the default TTL.
	Set(key string, value any)

	// SetWithTTL stores a value with a custom TTL.
	SetWithTTL(key string, value any, ttl time.Duration)

	// Delete removes a value.
	Delete(key string)

	// Clear removes all entries.
	Clear()

	// GetStats returns cache counters.
	GetStats() Stats

	// HitRate returns the hit rate as a percentage.
	HitRate() float64
}

// GetOrCompute returns the cached value under key, or computes, stores, and
// returns it. A cached value of the wrong type is treated as corruption:
// dropped and recomputed. Compute errors are returned without caching, so a
// transient failure does not poison the cache for the TTL.
func GetOrCompute[T any](c Cacher, key string, ttl time.Duration, compute func() (T, error)) (T, error) {
	if cached, ok := c.Get(key); ok {
		if value, ok := cached.(T); ok {
			return value, nil
		}
		c.Delete(key)
	}

	value, err := compute()
	if err != nil {
		var zero T
		return zero, err
	}

	c.SetWithTTL(key, value, ttl)
	return value, nil
}

// Nop is a cache that stores nothing. Every Get misses and every write is
// discarded; useful in tests and to disable caching via configuration.
type Nop struct{}

// NewNop creates a no-op cache.
func NewNop() Nop { return Nop{} }

// Get always misses.
func (Nop) Get(string) (any, bool) { return nil, false }

// Set discards the value.
func (Nop) Set(string, any) {}

// SetWithTTL discards the value.
func (Nop) SetWithTTL(string, any, time.Duration) {}

// Delete is a no-op.
func (Nop) Delete(string) {}

// Clear is a no-op.
func (Nop) Clear() {}

// GetStats returns zero counters.
func (Nop) GetStats() Stats { return Stats{} }

// HitRate returns zero.
func (Nop) HitRate() float64 { return 0 }

// Verify interface implementations at compile time.
var (
	_ Cacher = (*Cache)(nil)
	_ Cacher = Nop{}
)
