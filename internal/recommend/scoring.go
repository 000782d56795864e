// ViewLens - IPTV Viewing History Analytics and Channel Recommendations
// Copyright 2026 ViewLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/viewlens/viewlens

package recommend

import "time"

// scoringWindowSize is the number of most-recent ledger entries a
// recommendation query scores against.
const scoringWindowSize = 20

// similarityScore computes the affinity between a candidate channel and
// the recent viewing window. Pure function over an immutable snapshot;
// the result lies in [0, Factors.Sum()].
//
// Each window entry contributes its share of the window's total watch
// time to three accumulators:
//
//	genreScore:    only when entry and candidate share a non-empty group
//	viewTimeScore: unconditionally (overall viewing intensity; identical
//	               for every candidate apart from same-channel exclusion)
//	recencyScore:  damped by the days elapsed since the entry's last view
//
// Entries for the candidate itself are excluded. Each accumulator is
// clipped to [0, 1] before weighting.
func similarityScore(ch Channel, window []ViewingHistoryEntry, factors Factors, now time.Time) float64 {
	var totalViewTime int64
	for _, e := range window {
		totalViewTime += e.TotalViewTime
	}
	if totalViewTime <= 0 {
		return 0
	}

	var genreScore, viewTimeScore, recencyScore float64
	for _, e := range window {
		if e.ChannelID == ch.ID {
			continue
		}

		share := float64(e.TotalViewTime) / float64(totalViewTime)

		if e.Group != "" && ch.Group != "" && e.Group == ch.Group {
			genreScore += share
		}
		viewTimeScore += share
		recencyScore += share / float64(1+daysSince(e.LastViewed, now))
	}

	genreScore = clip01(genreScore)
	viewTimeScore = clip01(viewTimeScore)
	recencyScore = clip01(recencyScore)

	return factors.Genre*genreScore +
		factors.ViewTime*viewTimeScore +
		factors.Recency*recencyScore
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
