// Basketwise - E-Commerce Recommendation and Engagement Analytics
// Copyright 2026 Basketwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketwise/basketwise

package cache

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestCacheSetGet(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	c.Set("k", 42)
	got, ok := c.Get("k")
	if !ok {
		t.Fatal("expected hit")
	}
	if got.(int) != 42 {
		t.Errorf("got %v, want 42", got)
	}
}

func TestCacheExpiry(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	c.SetWithTTL("k", "v", 10*time.Millisecond)
	time.Sleep(25 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("expired entry must miss")
	}
}

func TestCacheMissAndStats(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	if _, ok := c.Get("absent"); ok {
		t.Fatal("expected miss")
	}
	c.Set("k", 1)
	c.Get("k")

	stats := c.GetStats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("stats = %+v, want 1 hit / 1 miss", stats)
	}
	if rate := c.HitRate(); rate != 50 {
		t.Errorf("HitRate = %v, want 50", rate)
	}
}

func TestCacheDeleteClear(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	c.Set("a", 1)
	c.Set("b", 2)
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("deleted entry must miss")
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", c.Len())
	}
}

func TestGetOrComputeMissThenHit(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	calls := 0
	compute := func() ([]string, error) {
		calls++
		return []string{"x", "y"}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := GetOrCompute(c, "k", time.Minute, compute)
		if err != nil {
			t.Fatalf("GetOrCompute failed: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("got %v", got)
		}
	}
	if calls != 1 {
		t.Errorf("compute called %d times, want 1", calls)
	}
}

func TestGetOrComputeErrorNotCached(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	wantErr := errors.New("collaborator down")
	calls := 0

	_, err := GetOrCompute(c, "k", time.Minute, func() (int, error) {
		calls++
		return 0, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("got %v, want compute error", err)
	}

	got, err := GetOrCompute(c, "k", time.Minute, func() (int, error) {
		calls++
		return 7, nil
	})
	if err != nil || got != 7 {
		t.Fatalf("got %v, %v", got, err)
	}
	if calls != 2 {
		t.Errorf("compute called %d times, want 2 (error must not be cached)", calls)
	}
}

// A corrupted entry (wrong type under the key) is treated as a miss.
func TestGetOrComputeCorruptEntry(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	c.Set("k", "not an int")

	got, err := GetOrCompute(c, "k", time.Minute, func() (int, error) {
		return 5, nil
	})
	if err != nil {
		t.Fatalf("GetOrCompute failed: %v", err)
	}
	if got != 5 {
		t.Errorf("got %d, want 5", got)
	}
}

func TestGetOrComputeNopCache(t *testing.T) {
	calls := 0
	for i := 0; i < 2; i++ {
		got, err := GetOrCompute(NewNop(), "k", time.Minute, func() (int, error) {
			calls++
			return 9, nil
		})
		if err != nil || got != 9 {
			t.Fatalf("got %v, %v", got, err)
		}
	}
	if calls != 2 {
		t.Errorf("compute called %d times, want 2 with nop cache", calls)
	}
}

func TestStatsDuringConcurrentEviction(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	// Expired-entry eviction in Get and the stats snapshot take the two
	// locks; they must never wait on each other.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 5000; i++ {
			c.SetWithTTL("k", i, time.Nanosecond)
			c.Get("k")
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 5000; i++ {
			c.GetStats()
			c.HitRate()
		}
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("stats and eviction paths deadlocked")
	}

	stats := c.GetStats()
	if stats.Evictions == 0 {
		t.Error("expected expired entries to be counted as evictions")
	}
}

func TestSweepRecordsEvictions(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	c.SetWithTTL("a", 1, time.Nanosecond)
	c.SetWithTTL("b", 2, time.Nanosecond)
	time.Sleep(time.Millisecond)
	c.sweep()

	stats := c.GetStats()
	if stats.Evictions != 2 {
		t.Errorf("Evictions = %d, want 2", stats.Evictions)
	}
	if stats.TotalKeys != 0 {
		t.Errorf("TotalKeys = %d, want 0 after sweep", stats.TotalKeys)
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Set("shared", n)
				c.Get("shared")
			}
		}(i)
	}
	wg.Wait()

	if _, ok := c.Get("shared"); !ok {
		t.Error("expected shared key to be present")
	}
}
