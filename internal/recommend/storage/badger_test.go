// ViewLens - IPTV Viewing History Analytics and Channel Recommendations
// Copyright 2026 ViewLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/viewlens/viewlens

package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/viewlens/viewlens/internal/recommend"
)

func newTestStore(t *testing.T) *BadgerStore {
	t.Helper()
	store, err := NewBadgerStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewBadgerStore: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return store
}

func TestBadgerStoreLoadEmpty(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	_, err := store.Load(context.Background())
	if !errors.Is(err, recommend.ErrStateNotFound) {
		t.Errorf("expected ErrStateNotFound, got %v", err)
	}
}

func TestBadgerStoreSaveLoad(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	doc := &recommend.Document{
		History: []recommend.ViewingHistoryEntry{
			{
				ChannelID:     "ch1",
				ChannelTitle:  "News 24",
				ViewCount:     3,
				TotalViewTime: 5400,
				FirstViewed:   1756000000000,
				LastViewed:    1756600000000,
				Group:         "News",
			},
		},
		ChannelMetadata: map[string]recommend.ChannelMetadata{
			"ch1": {ID: "ch1", Title: "News 24", Group: "News", Tags: []string{"live"}},
		},
	}

	if err := store.Save(ctx, doc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded.History) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(loaded.History))
	}
	if loaded.History[0] != doc.History[0] {
		t.Errorf("history round trip mismatch: %+v", loaded.History[0])
	}
	meta, ok := loaded.ChannelMetadata["ch1"]
	if !ok || meta.Title != "News 24" || len(meta.Tags) != 1 {
		t.Errorf("metadata round trip mismatch: %+v", meta)
	}
}

func TestBadgerStoreSaveReplaces(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	first := &recommend.Document{
		History: []recommend.ViewingHistoryEntry{
			{ChannelID: "a", ViewCount: 1, TotalViewTime: 100},
			{ChannelID: "b", ViewCount: 1, TotalViewTime: 200},
		},
	}
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("Save: %v", err)
	}

	second := &recommend.Document{
		History: []recommend.ViewingHistoryEntry{
			{ChannelID: "c", ViewCount: 1, TotalViewTime: 300},
		},
	}
	if err := store.Save(ctx, second); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded.History) != 1 || loaded.History[0].ChannelID != "c" {
		t.Errorf("save must replace the previous snapshot: %+v", loaded.History)
	}
}
