// Package storage implements the two storage tiers behind clipkeep's
// session persistence.
//
// The durable tier is a SQLite database with one table per entity kind
// (media, transcripts, highlight_sets) plus the session registry. Each
// entity table is indexed by primary id and secondary session id, and a
// Txn handle batches cross-store deletions so a cleanup pass is observed
// all-or-nothing.
//
// The volatile tier (Scratch) is a small JSON file for run-scoped flag
// records and metadata-only media. Unlike the durable tier it is never
// consulted for full payloads and is wiped by cleanup or reaping.
package storage
