package lifecycle

// State is the monitor's position in the termination protocol.
type State int

const (
	// StateIdle means no termination signal has been observed this boot.
	StateIdle State = iota
	// StateTerminationPending means the host announced an unload and the
	// closing flag has been requested.
	StateTerminationPending
	// StateAcknowledged means the process continued in place after an
	// unload signal; the pending termination was a false alarm.
	StateAcknowledged
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTerminationPending:
		return "termination-pending"
	case StateAcknowledged:
		return "acknowledged"
	default:
		return "unknown"
	}
}

// Event is a host lifecycle signal.
type Event int

const (
	// EventAboutToTerminate fires when the host is about to unload the process.
	EventAboutToTerminate Event = iota
	// EventRestarted fires when startup completes in the same process
	// continuation, proving the unload was a reload.
	EventRestarted
)

func (e Event) String() string {
	switch e {
	case EventAboutToTerminate:
		return "about-to-terminate"
	case EventRestarted:
		return "restarted"
	default:
		return "unknown"
	}
}

// Effect is the side effect a transition requests. The machine itself
// performs no I/O; the Monitor applies effects against the volatile tier.
type Effect int

const (
	EffectNone Effect = iota
	EffectSetFlag
	EffectClearFlag
)

// Step is the pure transition function. Unmatched state/event pairs leave
// the state unchanged with no effect, which makes repeated signals
// idempotent.
func Step(state State, event Event) (State, Effect) {
	switch {
	case event == EventAboutToTerminate:
		// An unload can follow an earlier false alarm in the same
		// continuation, so Acknowledged re-arms as well.
		return StateTerminationPending, EffectSetFlag
	case event == EventRestarted && state == StateTerminationPending:
		return StateAcknowledged, EffectClearFlag
	default:
		return state, EffectNone
	}
}
