// ViewLens - IPTV Viewing History Analytics and Channel Recommendations
// Copyright 2026 ViewLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/viewlens/viewlens

package recommend

import (
	"sort"
	"time"
)

// ledger is the ordered viewing log. Entries are kept most-recent-first;
// every mutation re-establishes that ordering.
type ledger struct {
	entries []ViewingHistoryEntry
}

// record merges the view into an existing same-day entry for the channel
// or inserts a new entry at the front.
func (l *ledger) record(ch Channel, durationSeconds int64, now time.Time) {
	nowMillis := now.UnixMilli()

	for i := range l.entries {
		e := l.entries[i]
		if e.ChannelID != ch.ID || !sameCalendarDay(e.LastViewed, now) {
			continue
		}

		e.ViewCount++
		e.TotalViewTime += durationSeconds
		e.LastViewed = nowMillis

		// Move the merged entry to the front.
		l.entries = append(l.entries[:i], l.entries[i+1:]...)
		l.entries = append([]ViewingHistoryEntry{e}, l.entries...)
		return
	}

	group := ch.Group
	if group == "" {
		group = DefaultGroup
	}

	l.entries = append([]ViewingHistoryEntry{{
		ChannelID:     ch.ID,
		ChannelTitle:  ch.Title,
		ViewCount:     1,
		TotalViewTime: durationSeconds,
		FirstViewed:   nowMillis,
		LastViewed:    nowMillis,
		Group:         group,
	}}, l.entries...)
}

// truncate drops the tail so that at most limit entries remain.
func (l *ledger) truncate(limit int) {
	if limit > 0 && len(l.entries) > limit {
		l.entries = l.entries[:limit]
	}
}

// clear empties the ledger.
func (l *ledger) clear() {
	l.entries = nil
}

func (l *ledger) len() int {
	return len(l.entries)
}

// window returns the most recent n entries. The returned slice aliases
// the ledger; callers must not mutate it.
func (l *ledger) window(n int) []ViewingHistoryEntry {
	if len(l.entries) < n {
		n = len(l.entries)
	}
	return l.entries[:n]
}

// copyEntries returns a defensive copy, optionally truncated to limit
// entries from the front. A non-positive limit returns everything.
func (l *ledger) copyEntries(limit int) []ViewingHistoryEntry {
	n := len(l.entries)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]ViewingHistoryEntry, n)
	copy(out, l.entries[:n])
	return out
}

// sortRecentFirst re-establishes most-recent-first ordering. Used after
// loading persisted state.
func (l *ledger) sortRecentFirst() {
	sort.SliceStable(l.entries, func(i, j int) bool {
		return l.entries[i].LastViewed > l.entries[j].LastViewed
	})
}

// stats aggregates every entry for the channel. Returns nil when the
// channel does not appear in the ledger.
func (l *ledger) stats(channelID string, now time.Time) *ChannelStats {
	var st *ChannelStats

	for _, e := range l.entries {
		if e.ChannelID != channelID {
			continue
		}
		if st == nil {
			st = &ChannelStats{
				ChannelID:    e.ChannelID,
				ChannelTitle: e.ChannelTitle,
				FirstViewed:  e.FirstViewed,
				LastViewed:   e.LastViewed,
			}
		}
		st.TotalViewCount += e.ViewCount
		st.TotalViewTime += e.TotalViewTime
		if e.FirstViewed < st.FirstViewed {
			st.FirstViewed = e.FirstViewed
		}
		if e.LastViewed > st.LastViewed {
			st.LastViewed = e.LastViewed
		}
	}

	if st == nil {
		return nil
	}

	st.DaysSinceFirstViewed = daysSince(st.FirstViewed, now)
	st.DaysSinceLastViewed = daysSince(st.LastViewed, now)
	if st.TotalViewCount > 0 {
		st.AverageViewDuration = float64(st.TotalViewTime) / float64(st.TotalViewCount)
	}
	return st
}

// topWatched groups entries by channel, sums watch time and view counts,
// and returns the channels sorted descending by total watch time. Ties
// preserve the order channels first appear in the ledger.
func (l *ledger) topWatched(limit int) []AggregatedChannel {
	index := make(map[string]int, len(l.entries))
	agg := make([]AggregatedChannel, 0, len(l.entries))

	for _, e := range l.entries {
		i, ok := index[e.ChannelID]
		if !ok {
			i = len(agg)
			index[e.ChannelID] = i
			agg = append(agg, AggregatedChannel{
				ChannelID:    e.ChannelID,
				ChannelTitle: e.ChannelTitle,
				Group:        e.Group,
			})
		}
		agg[i].ViewCount += e.ViewCount
		agg[i].TotalViewTime += e.TotalViewTime
		if e.LastViewed > agg[i].LastViewed {
			agg[i].LastViewed = e.LastViewed
		}
	}

	sort.SliceStable(agg, func(i, j int) bool {
		return agg[i].TotalViewTime > agg[j].TotalViewTime
	})

	if limit > 0 && len(agg) > limit {
		agg = agg[:limit]
	}
	return agg
}

// sameCalendarDay reports whether the epoch-millisecond timestamp falls
// on the same calendar day as now, in now's location.
func sameCalendarDay(millis int64, now time.Time) bool {
	t := time.UnixMilli(millis).In(now.Location())
	return t.Year() == now.Year() && t.YearDay() == now.YearDay()
}

// daysSince returns the floor of elapsed days between the
// epoch-millisecond timestamp and now. Never negative.
func daysSince(millis int64, now time.Time) int {
	elapsed := now.Sub(time.UnixMilli(millis))
	if elapsed <= 0 {
		return 0
	}
	return int(elapsed / (24 * time.Hour))
}

// mergeMetadata upserts channel attributes into the stored metadata.
// Non-empty incoming fields overwrite; empty fields keep the stored value.
func mergeMetadata(existing ChannelMetadata, ch Channel) ChannelMetadata {
	existing.ID = ch.ID
	if ch.Title != "" {
		existing.Title = ch.Title
	}
	if ch.Logo != "" {
		existing.Logo = ch.Logo
	}
	if ch.Group != "" {
		existing.Group = ch.Group
	}
	if ch.Language != "" {
		existing.Language = ch.Language
	}
	if len(ch.Tags) > 0 {
		existing.Tags = append([]string(nil), ch.Tags...)
	}
	if ch.TvgID != "" {
		existing.TvgID = ch.TvgID
	}
	if ch.TvgName != "" {
		existing.TvgName = ch.TvgName
	}
	if ch.TvgLogo != "" {
		existing.TvgLogo = ch.TvgLogo
	}
	if ch.GroupTitle != "" {
		existing.GroupTitle = ch.GroupTitle
	}
	return existing
}
