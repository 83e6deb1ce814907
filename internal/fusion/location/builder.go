// Package location implements the location builder and provider: join
// one RMC reading with the latest GGA/PUBX,00 extra-info reading into a
// fused record and deliver it to registered sinks at a configurable
// cadence.
package location

import (
	"fmt"
	"sync"
	"time"

	"github.com/gnss-hal/core/internal/fusion"
	"github.com/gnss-hal/core/internal/gnsserr"
	"github.com/gnss-hal/core/internal/parser/nmea"
)

// rmcWait is how long Build waits for an RMC parcel before giving up.
const rmcWait = time.Second

// extraPollInterval is how often the background drain thread rechecks
// the GGA/PUBX,00 queues when both were empty.
const extraPollInterval = 100 * time.Millisecond

// Record is the fused reading a Provider hands to sinks.
type Record struct {
	nmea.Location
	Extra             nmea.Extra
	ElapsedRealtimeNs int64
	UncertaintyNs     int64
}

// Builder joins one RMC parcel per Build call with whatever the
// background drain thread has most recently learned from GGA/PUBX,00
// parcels.
type Builder struct {
	rmc  Popper[nmea.RMCParcel]
	gga  Popper[nmea.GGAParcel]
	pubx Popper[nmea.PUBX00Parcel]

	mu    sync.Mutex
	extra nmea.Extra

	stop chan struct{}
	wg   sync.WaitGroup
}

// Popper is the minimal pull surface a Builder needs from a parcel
// queue; *queue.Queue[T] satisfies it.
type Popper[T any] interface {
	Pop() (T, bool)
	Empty() bool
	WaitFor(timeout time.Duration, predicate func() bool) bool
}

// NewBuilder constructs a Builder and starts its background extra-info
// drain thread. Close stops that thread.
func NewBuilder(rmc Popper[nmea.RMCParcel], gga Popper[nmea.GGAParcel], pubx Popper[nmea.PUBX00Parcel]) *Builder {
	b := &Builder{rmc: rmc, gga: gga, pubx: pubx, stop: make(chan struct{})}
	b.wg.Add(1)
	go b.drainExtra()
	return b
}

// Close stops the background drain thread and waits for it to exit.
func (b *Builder) Close() {
	close(b.stop)
	b.wg.Wait()
}

func (b *Builder) drainExtra() {
	defer b.wg.Done()
	for {
		select {
		case <-b.stop:
			return
		default:
		}

		gotAny := false
		if p, ok := b.gga.Pop(); ok {
			if e, valid := p.ToExtra(); valid {
				b.mergeExtra(e)
			}
			gotAny = true
		}
		if p, ok := b.pubx.Pop(); ok {
			if e, valid := p.ToExtra(); valid {
				b.mergeExtra(e)
			}
			gotAny = true
		}
		if gotAny {
			continue
		}

		b.gga.WaitFor(extraPollInterval, func() bool { return !b.gga.Empty() || !b.pubx.Empty() })
	}
}

// mergeExtra ORs the new reading's present-field flags into the latest
// extra, overwriting the corresponding value for each field the new
// reading marks present.
func (b *Builder) mergeExtra(e nmea.Extra) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if e.HasAltitude {
		b.extra.HasAltitude = true
		b.extra.Altitude = e.Altitude
	}
	if e.HasHorizontalAccuracy {
		b.extra.HasHorizontalAccuracy = true
		b.extra.HorizontalAccuracy = e.HorizontalAccuracy
	}
	if e.HasVerticalAccuracy {
		b.extra.HasVerticalAccuracy = true
		b.extra.VerticalAccuracy = e.VerticalAccuracy
	}
}

// Build waits up to rmcWait for one RMC parcel, merges in the latest
// extra-info reading, and stamps the record's timing fields.
// ErrIncomplete if no RMC parcel arrived in time; ErrInvalidData if the
// sentence reported an inactive fix.
func (b *Builder) Build() (Record, error) {
	p, ok := b.rmc.Pop()
	if !ok {
		b.rmc.WaitFor(rmcWait, func() bool { return !b.rmc.Empty() })
		p, ok = b.rmc.Pop()
	}
	if !ok {
		return Record{}, fmt.Errorf("location: no rmc parcel within %s: %w", rmcWait, gnsserr.ErrIncomplete)
	}

	loc, valid := p.ToLocation()
	if !valid {
		return Record{}, fmt.Errorf("location: rmc fix not active: %w", gnsserr.ErrInvalidData)
	}

	b.mu.Lock()
	extra := b.extra
	b.mu.Unlock()

	return Record{
		Location:          loc,
		Extra:             extra,
		ElapsedRealtimeNs: fusion.ElapsedRealtimeNs(),
		UncertaintyNs:     0,
	}, nil
}
