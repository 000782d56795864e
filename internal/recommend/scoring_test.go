// ViewLens - IPTV Viewing History Analytics and Channel Recommendations
// Copyright 2026 ViewLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/viewlens/viewlens

package recommend

import (
	"testing"
	"time"
)

func entry(channelID, group string, viewTime int64, lastViewed time.Time) ViewingHistoryEntry {
	return ViewingHistoryEntry{
		ChannelID:     channelID,
		ChannelTitle:  channelID,
		ViewCount:     1,
		TotalViewTime: viewTime,
		FirstViewed:   lastViewed.UnixMilli(),
		LastViewed:    lastViewed.UnixMilli(),
		Group:         group,
	}
}

func TestSimilarityScoreEmptyWindow(t *testing.T) {
	t.Parallel()

	score := similarityScore(Channel{ID: "x", Group: "News"}, nil, DefaultSettings().RecommendationFactors, time.Now())
	if score != 0 {
		t.Errorf("empty window must score 0, got %f", score)
	}
}

func TestSimilarityScoreZeroViewTime(t *testing.T) {
	t.Parallel()

	now := time.Now()
	window := []ViewingHistoryEntry{
		entry("a", "News", 0, now),
		entry("b", "Sports", 0, now),
	}

	score := similarityScore(Channel{ID: "x", Group: "News"}, window, DefaultSettings().RecommendationFactors, now)
	if score != 0 {
		t.Errorf("zero total view time must score 0, got %f", score)
	}
}

func TestSimilarityScorePrefersMatchingGenre(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	window := []ViewingHistoryEntry{
		entry("a", "Sports", 3600, now.Add(-2*time.Hour)),
		entry("b", "Sports", 1800, now.AddDate(0, 0, -1)),
		entry("c", "News", 600, now.AddDate(0, 0, -2)),
	}
	factors := DefaultSettings().RecommendationFactors

	sports := similarityScore(Channel{ID: "d", Group: "Sports"}, window, factors, now)
	comedy := similarityScore(Channel{ID: "e", Group: "Comedy"}, window, factors, now)

	if sports <= comedy {
		t.Errorf("sports candidate must outscore comedy: %f vs %f", sports, comedy)
	}
	// The non-genre components are identical for both candidates.
	if diff := sports - comedy; diff <= 0 || diff > factors.Genre {
		t.Errorf("score difference must come from the genre weight alone, got %f", diff)
	}
}

func TestSimilarityScoreExcludesCandidateEntries(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	window := []ViewingHistoryEntry{
		entry("a", "News", 3600, now),
	}
	factors := DefaultSettings().RecommendationFactors

	// The only window entry is the candidate itself; every accumulator
	// stays zero.
	if score := similarityScore(Channel{ID: "a", Group: "News"}, window, factors, now); score != 0 {
		t.Errorf("candidate's own history must not contribute, got %f", score)
	}
}

func TestSimilarityScoreBounds(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	window := make([]ViewingHistoryEntry, 0, scoringWindowSize)
	for i := 0; i < scoringWindowSize; i++ {
		group := "News"
		if i%2 == 0 {
			group = "Sports"
		}
		window = append(window, entry(string(rune('a'+i)), group, int64(100*(i+1)), now.AddDate(0, 0, -i)))
	}
	factors := Factors{Genre: 2, ViewTime: 2, Recency: 2}

	score := similarityScore(Channel{ID: "zz", Group: "Sports"}, window, factors, now)
	if score < 0 || score > factors.Sum() {
		t.Errorf("score %f outside [0, %f]", score, factors.Sum())
	}
}

func TestSimilarityScoreRecencyDamping(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	factors := Factors{Genre: 0, ViewTime: 0, Recency: 1}

	fresh := []ViewingHistoryEntry{entry("a", "News", 600, now)}
	stale := []ViewingHistoryEntry{entry("a", "News", 600, now.AddDate(0, 0, -9))}

	freshScore := similarityScore(Channel{ID: "x", Group: "News"}, fresh, factors, now)
	staleScore := similarityScore(Channel{ID: "x", Group: "News"}, stale, factors, now)

	if freshScore != 1 {
		t.Errorf("today's view must contribute its full share, got %f", freshScore)
	}
	if staleScore != 0.1 {
		t.Errorf("nine-day-old view must be damped to 1/10, got %f", staleScore)
	}
}

func TestSimilarityScoreViewTimeIsCandidateIndependent(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	window := []ViewingHistoryEntry{
		entry("a", "News", 900, now),
		entry("b", "Sports", 300, now.AddDate(0, 0, -1)),
	}
	factors := Factors{Genre: 0, ViewTime: 1, Recency: 0}

	// Every candidate not present in the window sees the same view-time
	// component: the full window share.
	x := similarityScore(Channel{ID: "x", Group: "Movies"}, window, factors, now)
	y := similarityScore(Channel{ID: "y", Group: "Kids"}, window, factors, now)
	if x != y || x != 1 {
		t.Errorf("view-time component must be identical across candidates: %f vs %f", x, y)
	}
}
