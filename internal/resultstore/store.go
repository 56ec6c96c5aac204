// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

// Package resultstore persists finalized reductions in BadgerDB, keyed by
// the fingerprint of the request that produced them.
package resultstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/goccy/go-json"

	"github.com/tomtom215/visreduce/internal/logging"
	"github.com/tomtom215/visreduce/internal/models"
)

var (
	// ErrNotFound is returned when no reduction is stored for a fingerprint.
	ErrNotFound = errors.New("reduction not found")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("result store is closed")

	// ErrEmptyFingerprint is returned for an empty key.
	ErrEmptyFingerprint = errors.New("empty fingerprint")
)

const prefixReduction = "reduction:"

// Config configures the store.
type Config struct {
	// Path is the BadgerDB directory. Ignored when InMemory is set.
	Path     string
	InMemory bool
	// TTL expires entries; zero keeps them forever.
	TTL         time.Duration
	SyncWrites  bool
	Compression bool
}

// Store is a BadgerDB backed reduction cache.
type Store struct {
	db  *badger.DB
	ttl time.Duration

	mu     sync.RWMutex
	closed bool
}

// Open opens (or creates) the store.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, fmt.Errorf("result store path is required")
	}

	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.SyncWrites = cfg.SyncWrites
	if cfg.Compression {
		opts.Compression = options.Snappy
	}

	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Dur("ttl", cfg.TTL).
		Msg("Result store opened")
	return &Store{db: db, ttl: cfg.TTL}, nil
}

// Fingerprint hashes the JSON encoding of parts into a stable key.
func Fingerprint(parts ...any) (string, error) {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for _, p := range parts {
		if err := enc.Encode(p); err != nil {
			return "", fmt.Errorf("encode fingerprint part: %w", err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func (s *Store) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Get returns the reduction stored under fingerprint.
func (s *Store) Get(ctx context.Context, fingerprint string) (*models.Reduction, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if fingerprint == "" {
		return nil, ErrEmptyFingerprint
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var r models.Reduction
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefixReduction + fingerprint))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get reduction: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &r)
		})
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Put stores r under its fingerprint, replacing any previous entry.
func (s *Store) Put(ctx context.Context, r *models.Reduction) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if r.Fingerprint == "" {
		return ErrEmptyFingerprint
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal reduction: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(prefixReduction+r.Fingerprint), data)
		if s.ttl > 0 {
			e = e.WithTTL(s.ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("write to BadgerDB: %w", err)
	}
	return nil
}

// Delete removes the reduction stored under fingerprint. Deleting a missing
// entry is not an error.
func (s *Store) Delete(ctx context.Context, fingerprint string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(prefixReduction + fingerprint)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete reduction: %w", err)
		}
		return nil
	})
}

// Fingerprints lists the stored keys.
func (s *Store) Fingerprints(ctx context.Context) ([]string, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	var out []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefixReduction)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			out = append(out, string(it.Item().Key()[len(prefixReduction):]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RunGC reclaims value log space until BadgerDB finds nothing to rewrite.
// It is a no-op for in-memory stores.
func (s *Store) RunGC(discardRatio float64) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	for {
		err := s.db.RunValueLogGC(discardRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
	}
}

// Close flushes and closes the database. It is safe to call twice.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close BadgerDB: %w", err)
	}
	logging.Info().Msg("Result store closed")
	return nil
}
