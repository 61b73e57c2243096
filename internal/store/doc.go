// Package store implements the write-through entity repositories.
//
// One Store instance exists per entity kind. Writes always land in the
// in-memory map first; durable writes are best-effort and failures are
// logged rather than surfaced, so a storage outage degrades durability but
// not correctness within the run. Reads are memory-first with a durable
// fallback, and the bulk scan runs at most once per process.
//
// MediaStore adds tier routing on top of the generic Store: media above
// the configured size threshold is persisted metadata-only in the volatile
// tier.
package store
