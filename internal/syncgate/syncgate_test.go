package syncgate

import "testing"

func TestGateReadyAfterAllEventsOccur(t *testing.T) {
	g := New(2)
	if g.Ready() {
		t.Fatal("gate should not be ready before any events")
	}
	g.NotifyEventOccurred()
	if g.Ready() {
		t.Fatal("gate should not be ready after only 1 of 2 events")
	}
	g.NotifyEventOccurred()
	if !g.Ready() {
		t.Fatal("gate should be ready after both events")
	}
}

func TestGateZeroValueIsReady(t *testing.T) {
	var g Gate
	if !g.Ready() {
		t.Fatal("zero-value gate should be ready")
	}
}

func TestSetEventsToWaitRearms(t *testing.T) {
	g := New(1)
	g.NotifyEventOccurred()
	if !g.Ready() {
		t.Fatal("expected gate to be ready")
	}
	g.SetEventsToWait(3)
	if g.Ready() {
		t.Fatal("expected gate to be armed for a new epoch")
	}
}
