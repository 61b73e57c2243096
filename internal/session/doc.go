// Package session owns session identity and the services that move whole
// sessions at once: restore, cleanup, and stale-session reaping.
//
// The Registry mints the process's session id and tracks creation and
// last-write timestamps. RestoreService reassembles Media, Transcript, and
// HighlightSet into one State and surfaces torn writes as
// ErrIncompleteSessionData. CleanupService deletes a session atomically
// through one durable transaction. The Reaper bounds the residue left by
// crashes and never-restarted terminations with a time-based TTL.
//
// Manager glues these together behind the boot sequence: reap, then either
// honor a pending termination directive or restore.
package session
