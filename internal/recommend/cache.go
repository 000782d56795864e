// ViewLens - IPTV Viewing History Analytics and Channel Recommendations
// Copyright 2026 ViewLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/viewlens/viewlens

package recommend

import "sync"

// scoreKey identifies a cached similarity score. The window size and the
// newest timestamp of the scored window act as a history fingerprint: a
// stale fingerprint can never be looked up because the cache is cleared
// wholesale on every ledger mutation.
type scoreKey struct {
	channelID    string
	windowSize   int
	newestViewed int64
}

// scoreCache memoizes similarity scores between ledger mutations. It is
// process-lifetime only and never persisted.
type scoreCache struct {
	mu     sync.RWMutex
	scores map[scoreKey]float64
}

func newScoreCache() *scoreCache {
	return &scoreCache{scores: make(map[scoreKey]float64)}
}

func (c *scoreCache) get(k scoreKey) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	score, ok := c.scores[k]
	return score, ok
}

func (c *scoreCache) put(k scoreKey, score float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scores[k] = score
}

// clear removes all cached scores. Called on every ledger mutation;
// entries are never invalidated one by one.
func (c *scoreCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scores = make(map[scoreKey]float64)
}

func (c *scoreCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.scores)
}
