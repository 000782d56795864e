// ViewLens - IPTV Viewing History Analytics and Channel Recommendations
// Copyright 2026 ViewLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/viewlens/viewlens

// Package recommend implements content-based channel recommendations
// from a log of past viewing activity.
//
// # Architecture
//
// The package is built around a small set of collaborating pieces:
//
//   - History Ledger: an ordered log of viewing sessions, most recent
//     first, bounded by the configured history limit. Same-day repeat
//     views of a channel are merged into a single entry.
//   - Metadata Store: a keyed table of per-channel attributes, upserted
//     as channels are observed, with non-empty fields winning on merge.
//   - Scoring Engine: a pure function scoring a candidate channel
//     against the most recent ledger window using group affinity,
//     accumulated watch time and recency.
//   - Score Cache: a memo table keyed by (channel, window fingerprint),
//     cleared wholesale on every ledger mutation.
//   - Service: the public façade that records events, answers
//     recommendation and statistics queries, and owns persistence.
//
// # Persistence
//
// The ledger and metadata table persist as one logical JSON document
// through the Store interface, implemented by the storage subpackage on
// BadgerDB. Persistence failures degrade durability only: the in-memory
// state remains authoritative and all operations keep working.
//
// # Concurrency
//
// The Service is safe for concurrent use. Mutations are serialized by a
// single mutex; queries take a read lock and return defensive copies.
package recommend
