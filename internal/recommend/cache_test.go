// ViewLens - IPTV Viewing History Analytics and Channel Recommendations
// Copyright 2026 ViewLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/viewlens/viewlens

package recommend

import (
	"sync"
	"testing"
)

func TestScoreCachePutGet(t *testing.T) {
	t.Parallel()

	c := newScoreCache()
	key := scoreKey{channelID: "ch1", windowSize: 5, newestViewed: 1000}

	if _, ok := c.get(key); ok {
		t.Fatal("empty cache must miss")
	}

	c.put(key, 0.42)
	score, ok := c.get(key)
	if !ok || score != 0.42 {
		t.Errorf("expected hit with 0.42, got %f/%v", score, ok)
	}

	// A different window fingerprint is a different key.
	other := scoreKey{channelID: "ch1", windowSize: 5, newestViewed: 2000}
	if _, ok := c.get(other); ok {
		t.Error("stale fingerprint must miss")
	}
}

func TestScoreCacheClear(t *testing.T) {
	t.Parallel()

	c := newScoreCache()
	c.put(scoreKey{channelID: "a"}, 1)
	c.put(scoreKey{channelID: "b"}, 2)

	if c.size() != 2 {
		t.Fatalf("expected 2 entries, got %d", c.size())
	}

	c.clear()
	if c.size() != 0 {
		t.Errorf("clear must drop everything, %d left", c.size())
	}
	if _, ok := c.get(scoreKey{channelID: "a"}); ok {
		t.Error("cleared entry must miss")
	}
}

func TestScoreCacheConcurrentAccess(t *testing.T) {
	t.Parallel()

	c := newScoreCache()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := scoreKey{channelID: "ch", windowSize: n, newestViewed: int64(j)}
				c.put(key, float64(j))
				c.get(key)
				if j%25 == 0 {
					c.clear()
				}
			}
		}(i)
	}
	wg.Wait()
}
