package session

import "time"

// Context identifies the session owning the stores for this process. It is
// passed explicitly into every component constructor; no component reads
// ambient session state.
type Context struct {
	SessionID string
	StartedAt time.Time
}
