package lifecycle

// Signals is the host runtime's lifecycle surface. The host fires
// OnColdStart once per process boot before any other work, OnRestarted
// once when an in-place restart finishes, and OnAboutToTerminate when the
// process is about to unload, with no guarantee that any work after the
// callback returns will run.
type Signals interface {
	OnAboutToTerminate(handler func())
	OnRestarted(handler func())
	OnColdStart(handler func())
}

// Bind wires host signals to monitor transitions. The cold-start handler
// is owned by the session manager, not the monitor, so it is not bound
// here.
func (m *Monitor) Bind(host Signals) {
	host.OnAboutToTerminate(m.AboutToTerminate)
	host.OnRestarted(m.Restarted)
}
