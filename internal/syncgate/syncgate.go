// Package syncgate implements the measurement-sync countdown barrier:
// the owner declares how many events to wait for, the measurement
// builder counts one down per successful build, and the location
// provider checks Ready before emitting.
package syncgate

import "sync/atomic"

// Gate is a countdown barrier. The zero value is ready (no events
// pending); call SetEventsToWait to arm it for a new epoch.
type Gate struct {
	eventsToWait atomic.Int32
}

// New returns a Gate armed to wait for n events.
func New(n int32) *Gate {
	g := &Gate{}
	g.SetEventsToWait(n)
	return g
}

// SetEventsToWait (re)arms the gate for a new epoch, replacing whatever
// count was left over from the previous one.
func (g *Gate) SetEventsToWait(n int32) {
	g.eventsToWait.Store(n)
}

// NotifyEventOccurred counts down one arrived event.
func (g *Gate) NotifyEventOccurred() {
	g.eventsToWait.Add(-1)
}

// Ready reports whether every event this epoch was waiting on has
// occurred.
func (g *Gate) Ready() bool {
	return g.eventsToWait.Load() <= 0
}
