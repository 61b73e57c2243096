package lifecycle_test

import (
	"testing"

	"clipkeep/internal/lifecycle"
	"clipkeep/internal/logging"
	"clipkeep/internal/testsupport"
)

func TestFalseAlarmLeavesNoDirective(t *testing.T) {
	scratch := testsupport.NewFakeScratch()
	monitor := lifecycle.NewMonitor(scratch, "session-1", logging.NewNop())

	monitor.AboutToTerminate()
	monitor.Restarted()

	// The next boot sees a clean slate: a reload must not trigger cleanup.
	next := lifecycle.NewMonitor(scratch, "session-2", logging.NewNop())
	if _, pending, err := next.PendingDirective(); err != nil || pending {
		t.Fatalf("expected no directive after false alarm, pending=%v err=%v", pending, err)
	}
}

func TestGenuineTerminationLeavesDirective(t *testing.T) {
	scratch := testsupport.NewFakeScratch()
	monitor := lifecycle.NewMonitor(scratch, "session-1", logging.NewNop())

	monitor.AboutToTerminate()
	// Process ends here; no Restarted ever fires.

	next := lifecycle.NewMonitor(scratch, "session-2", logging.NewNop())
	sessionID, pending, err := next.PendingDirective()
	if err != nil {
		t.Fatalf("PendingDirective failed: %v", err)
	}
	if !pending {
		t.Fatal("expected directive after genuine termination")
	}
	if sessionID != "session-1" {
		t.Fatalf("expected directive for session-1, got %q", sessionID)
	}

	if err := next.ConsumeDirective(); err != nil {
		t.Fatalf("ConsumeDirective failed: %v", err)
	}
	if _, pending, _ := next.PendingDirective(); pending {
		t.Fatal("expected directive gone after consume")
	}
}

func TestRepeatedFalseAlarmsStayIdempotent(t *testing.T) {
	scratch := testsupport.NewFakeScratch()
	monitor := lifecycle.NewMonitor(scratch, "session-1", logging.NewNop())

	for i := 0; i < 3; i++ {
		monitor.AboutToTerminate()
		monitor.Restarted()
	}
	if _, pending, _ := monitor.PendingDirective(); pending {
		t.Fatal("expected no directive after repeated false alarms")
	}
	if monitor.State() != lifecycle.StateAcknowledged {
		t.Fatalf("expected acknowledged state, got %s", monitor.State())
	}
}

func TestUnreadableFlagIsIgnored(t *testing.T) {
	scratch := testsupport.NewFakeScratch()
	if err := scratch.Put(lifecycle.FlagKey, []byte("{broken")); err != nil {
		t.Fatalf("seed put failed: %v", err)
	}

	monitor := lifecycle.NewMonitor(scratch, "session-1", logging.NewNop())
	if _, pending, err := monitor.PendingDirective(); err != nil || pending {
		t.Fatalf("expected unreadable flag ignored, pending=%v err=%v", pending, err)
	}
}
