// Basketwise - E-Commerce Recommendation and Engagement Analytics
// Copyright 2026 Basketwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketwise/basketwise

package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	badger "github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/basketwise/basketwise/internal/engagement"
)

// keyPrefix namespaces engagement records inside the key space.
const keyPrefix = "rec/"

// EngagementStore persists engagement records in BadgerDB, one value per
// (surface, product, viewer) tuple.
type EngagementStore struct {
	db     *badger.DB
	logger zerolog.Logger

	// mu serializes read-modify-write cycles so racing events for the same
	// tuple cannot lose an update.
	mu sync.Mutex
}

// EngagementStoreConfig configures the store.
type EngagementStoreConfig struct {
	// Path is the on-disk database directory. Ignored when InMemory is set.
	Path string `koanf:"path"`

	// InMemory keeps everything in RAM. Used by tests.
	InMemory bool `koanf:"in_memory"`

	// SyncWrites fsyncs every write.
	SyncWrites bool `koanf:"sync_writes"`
}

// OpenEngagement opens (or creates) the engagement record store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func OpenEngagement(cfg EngagementStoreConfig, logger zerolog.Logger) (*EngagementStore, error) {
	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.SyncWrites = cfg.SyncWrites
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open engagement store: %w", err)
	}

	logger = logger.With().Str("component", "engagement-store").Logger()
	logger.Info().Str("path", cfg.Path).Bool("in_memory", cfg.InMemory).Msg("engagement store opened")

	return &EngagementStore{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *EngagementStore) Close() error {
	return s.db.Close()
}

// Apply loads (or initializes) the tuple's record, runs mutate on it, and
// writes it back when mutate reports a change.
func (s *EngagementStore) Apply(_ context.Context, surface engagement.Surface, productID string, viewer engagement.Viewer, mutate func(*engagement.Record) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := []byte(keyPrefix + string(surface) + "/" + productID + "/" + viewer.Key())

	return s.db.Update(func(txn *badger.Txn) error {
		record := &engagement.Record{Surface: surface, ProductID: productID, Viewer: viewer}

		item, err := txn.Get(key)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			// new tuple
		case err != nil:
			return fmt.Errorf("load record: %w", err)
		default:
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, record)
			}); err != nil {
				return fmt.Errorf("decode record: %w", err)
			}
		}

		if !mutate(record) {
			return nil
		}

		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("encode record: %w", err)
		}
		return txn.Set(key, data)
	})
}

// Count aggregates flag totals over every record matching the filter.
// The scan narrows to the surface's key range when the filter names one.
func (s *EngagementStore) Count(_ context.Context, filter engagement.Filter) (engagement.Counts, error) {
	prefix := []byte(keyPrefix)
	if filter.Surface != "" {
		prefix = []byte(keyPrefix + string(filter.Surface) + "/")
	}

	var counts engagement.Counts
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var record engagement.Record
				if err := json.Unmarshal(val, &record); err != nil {
					return fmt.Errorf("decode record %s: %w", it.Item().Key(), err)
				}
				if filter.Matches(&record) {
					counts.Add(&record)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return engagement.Counts{}, fmt.Errorf("scan engagement records: %w", err)
	}
	return counts, nil
}

var _ engagement.Store = (*EngagementStore)(nil)
