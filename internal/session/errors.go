package session

import "errors"

// ErrIncompleteSessionData indicates media exists but a sibling entity does
// not. It is genuinely ambiguous (torn write vs. corruption) and is
// surfaced to the caller rather than papered over as "no session".
var ErrIncompleteSessionData = errors.New("incomplete session data")

// ErrCleanupFailed indicates a cleanup transaction did not commit. The
// pending-termination flag is left intact so a later boot can retry.
var ErrCleanupFailed = errors.New("session cleanup failed")
