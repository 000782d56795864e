// ViewLens - IPTV Viewing History Analytics and Channel Recommendations
// Copyright 2026 ViewLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/viewlens/viewlens

// Package storage provides the durable document store backing the
// recommendation service, implemented on BadgerDB.
//
// The whole recommendation state (history ledger plus channel metadata)
// is stored as a single JSON document under one key, so a save replaces
// the previous snapshot atomically within a Badger transaction.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/viewlens/viewlens/internal/recommend"
)

// stateKey is the Badger key holding the recommendation state document.
const stateKey = "recommend:state"

// BadgerStore implements recommend.Store on an embedded BadgerDB.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (or creates) a Badger database at the given path.
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Badger's own logger is too chatty; we log at the store level.

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", path, err)
	}
	return &BadgerStore{db: db}, nil
}

// NewBadgerStoreFromDB wraps an already-open Badger database. The caller
// retains ownership of the database lifecycle.
func NewBadgerStoreFromDB(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// Load reads the persisted state document. Returns
// recommend.ErrStateNotFound when nothing has been stored yet.
func (s *BadgerStore) Load(ctx context.Context) (*recommend.Document, error) {
	var doc recommend.Document

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(stateKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return recommend.ErrStateNotFound
		}
		if err != nil {
			return fmt.Errorf("get state: %w", err)
		}

		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &doc); err != nil {
				return fmt.Errorf("unmarshal state: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Save writes the state document, replacing any previous snapshot.
func (s *BadgerStore) Save(ctx context.Context, doc *recommend.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(stateKey), data)
	})
	if err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

// Close releases the underlying Badger database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
