// Package measurement implements the measurement builder and provider:
// collect one of each of the four clock/measurement UBX parcel kinds
// within a deadline, fold them into one GnssData record, and advance
// the shared measurement-sync gate so the location provider knows
// enough epochs have been observed to start emitting.
package measurement

import (
	"fmt"
	"time"

	"github.com/gnss-hal/core/internal/fusion"
	"github.com/gnss-hal/core/internal/gnsserr"
	"github.com/gnss-hal/core/internal/parser/ubx"
)

// collectDeadline bounds how long Build waits for all four expected
// parcel kinds to arrive before giving up. A var, not a const, so
// tests can shrink it rather than wait out the full production value.
var collectDeadline = 2 * time.Second

const pollInterval = 20 * time.Millisecond

// Record is the fused reading a Provider hands to sinks.
type Record struct {
	ubx.GnssData
	ElapsedRealtimeNs int64
}

// Popper is the minimal pull surface a Builder needs from a parcel
// queue; *queue.Queue[T] satisfies it.
type Popper[T any] interface {
	Pop() (T, bool)
	Empty() bool
	WaitFor(timeout time.Duration, predicate func() bool) bool
}

// Notifier is the side of the measurement-sync gate the Builder
// advances after each successful emission; *syncgate.Gate satisfies
// it.
type Notifier interface {
	NotifyEventOccurred()
}

// Builder pulls NAV-CLOCK, NAV-STATUS, NAV-TIMEGPS, and RXM-MEASX
// parcels off four independent queues and folds the first of each kind
// seen within collectDeadline into one GnssData record.
type Builder struct {
	navClock   Popper[ubx.NavClockParcel]
	navStatus  Popper[ubx.NavStatusParcel]
	navTimeGps Popper[ubx.NavTimeGpsParcel]
	rxmMeasx   Popper[ubx.RxmMeasxParcel]

	gate Notifier
}

// NewBuilder constructs a Builder. gate may be nil (used by tests and
// by callers that don't need to drive the location provider's
// measurement-sync barrier).
func NewBuilder(navClock Popper[ubx.NavClockParcel], navStatus Popper[ubx.NavStatusParcel],
	navTimeGps Popper[ubx.NavTimeGpsParcel], rxmMeasx Popper[ubx.RxmMeasxParcel], gate Notifier) *Builder {
	return &Builder{navClock: navClock, navStatus: navStatus, navTimeGps: navTimeGps, rxmMeasx: rxmMeasx, gate: gate}
}

type kind int

const (
	kindNavClock kind = iota
	kindNavStatus
	kindNavTimeGps
	kindRxmMeasx
	kindCount
)

// Build waits up to collectDeadline for one parcel of each of the four
// expected kinds. NAV-STATUS must apply after NAV-TIMEGPS, since it
// refines the clock time TIMEGPS derives; the other two are applied in
// arrival order. On success, it advances the measurement-sync gate.
func (b *Builder) Build() (Record, error) {
	var data ubx.GnssData
	var navStatus *ubx.NavStatusParcel
	seen := make(map[kind]bool, kindCount)

	deadline := time.Now().Add(collectDeadline)
	for len(seen) < int(kindCount) && time.Now().Before(deadline) {
		progressed := false

		if !seen[kindNavClock] {
			if p, ok := b.navClock.Pop(); ok {
				p.ToGnssData(&data)
				seen[kindNavClock] = true
				progressed = true
			}
		}
		if !seen[kindNavTimeGps] {
			if p, ok := b.navTimeGps.Pop(); ok {
				p.ToGnssData(&data)
				seen[kindNavTimeGps] = true
				progressed = true
			}
		}
		if !seen[kindNavStatus] {
			if p, ok := b.navStatus.Pop(); ok {
				navStatus = &p
				seen[kindNavStatus] = true
				progressed = true
			}
		}
		if !seen[kindRxmMeasx] {
			if p, ok := b.rxmMeasx.Pop(); ok {
				p.ToGnssData(&data)
				seen[kindRxmMeasx] = true
				progressed = true
			}
		}

		if !progressed {
			b.navClock.WaitFor(pollInterval, func() bool {
				return !b.navClock.Empty() || !b.navStatus.Empty() || !b.navTimeGps.Empty() || !b.rxmMeasx.Empty()
			})
		}
	}

	if len(seen) < int(kindCount) {
		return Record{}, fmt.Errorf("measurement: only %d/%d parcel kinds within %s: %w",
			len(seen), kindCount, collectDeadline, gnsserr.ErrIncomplete)
	}

	// NAV-STATUS refines the clock time NAV-TIMEGPS set, so it must run
	// after ToGnssData has populated data.ClockTimeNs.
	navStatus.ToGnssData(&data)

	if b.gate != nil {
		b.gate.NotifyEventOccurred()
	}

	return Record{GnssData: data, ElapsedRealtimeNs: fusion.ElapsedRealtimeNs()}, nil
}
