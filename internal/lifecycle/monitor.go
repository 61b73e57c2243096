package lifecycle

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"clipkeep/internal/logging"
	"clipkeep/internal/storage"
)

// FlagKey is the volatile-tier key holding the pending-termination flag.
const FlagKey = "is_closing"

type flagRecord struct {
	SessionID string `json:"session_id"`
	IsClosing bool   `json:"is_closing"`
}

// Monitor drives the termination state machine and applies its effects to
// the volatile tier. There is no way to run work during an actual
// termination; the flag written here is what the next boot consumes to
// decide between cleanup and restore.
type Monitor struct {
	scratch   storage.VolatileTier
	sessionID string
	logger    *slog.Logger

	mu    sync.Mutex
	state State
}

// NewMonitor creates a monitor for the given owning session.
func NewMonitor(scratch storage.VolatileTier, sessionID string, logger *slog.Logger) *Monitor {
	return &Monitor{
		scratch:   scratch,
		sessionID: sessionID,
		logger:    logging.NewComponentLogger(logger, "lifecycle"),
		state:     StateIdle,
	}
}

// State returns the current machine state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// AboutToTerminate handles the host's unload announcement. The flag write
// is synchronous; the host may not wait for deferred work, so failures are
// logged and accepted rather than retried.
func (m *Monitor) AboutToTerminate() {
	m.step(EventAboutToTerminate)
}

// Restarted handles startup completing in the same process continuation,
// clearing the flag before anything can act on it.
func (m *Monitor) Restarted() {
	m.step(EventRestarted)
}

func (m *Monitor) step(event Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, effect := Step(m.state, event)
	m.logger.Debug("lifecycle transition",
		logging.String("from", m.state.String()),
		logging.String("event", event.String()),
		logging.String("to", next.String()))
	m.state = next

	switch effect {
	case EffectSetFlag:
		value, err := json.Marshal(flagRecord{SessionID: m.sessionID, IsClosing: true})
		if err != nil {
			m.logger.Warn("encode closing flag failed", logging.Error(err))
			return
		}
		if err := m.scratch.Put(FlagKey, value); err != nil {
			m.logger.Warn("write closing flag failed", logging.Error(err))
		}
	case EffectClearFlag:
		if err := m.scratch.Remove(FlagKey); err != nil {
			m.logger.Warn("clear closing flag failed", logging.Error(err))
		}
	}
}

// PendingDirective reports whether a previous run left the closing flag
// set, which a cold start treats as confirmation of a genuine termination.
// It returns the session id the flag was written for.
func (m *Monitor) PendingDirective() (string, bool, error) {
	value, found, err := m.scratch.Get(FlagKey)
	if err != nil {
		return "", false, fmt.Errorf("read closing flag: %w", err)
	}
	if !found {
		return "", false, nil
	}
	var flag flagRecord
	if err := json.Unmarshal(value, &flag); err != nil {
		// An unreadable flag cannot be trusted as a termination directive.
		m.logger.Warn("closing flag unreadable, ignoring", logging.Error(err))
		return "", false, nil
	}
	if !flag.IsClosing {
		return "", false, nil
	}
	return flag.SessionID, true, nil
}

// ConsumeDirective removes the closing flag after cleanup has run.
func (m *Monitor) ConsumeDirective() error {
	if err := m.scratch.Remove(FlagKey); err != nil {
		return fmt.Errorf("consume closing flag: %w", err)
	}
	return nil
}
