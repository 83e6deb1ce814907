// Package svinfo implements the satellite-info builder and provider:
// reassemble multi-message GSV groups per constellation, track which
// svids the receiver reports as used in the current position fix from
// GSA, and join the two into one fused record.
package svinfo

import (
	"sync"
	"time"

	"github.com/gnss-hal/core/internal/constellation"
	"github.com/gnss-hal/core/internal/fusion"
	"github.com/gnss-hal/core/internal/parser/nmea"
)

// MaxSatellites bounds how many satellite entries Build ever returns in
// one record, mirroring the platform's GnssMax::SVS_COUNT.
const MaxSatellites = 64

// FlagUsedInFix marks a Satellite as a contributor to the current
// position fix.
const FlagUsedInFix uint8 = 1 << 0

// Satellite is one entry of a Record: a GSV reading, joined with
// whether its svid appears in the matching constellation's GSA list.
type Satellite struct {
	Constellation       constellation.ID
	SVID                int
	Elevation           int
	Azimuth             int
	CN0                 int
	CarrierFrequencyHz  float64
	HasCarrierFrequency bool
	Flags               uint8
}

// Record is the fused reading a Provider hands to sinks.
type Record struct {
	Satellites        []Satellite
	ElapsedRealtimeNs int64
}

// Popper is the minimal pull surface a Builder needs from a parcel
// queue; *queue.Queue[T] satisfies it.
type Popper[T any] interface {
	Pop() (T, bool)
	Empty() bool
	WaitFor(timeout time.Duration, predicate func() bool) bool
}

type gsvGroup struct {
	constellation constellation.ID
	msgAmount     int
	nextMsgNum    int
	satellites    []nmea.GSVSatellite
}

// Builder runs two background threads: one reassembles GSV groups into
// a complete-satellites-per-constellation table, the other drains GSA
// parcels into a used-in-fix svid set per constellation.
type Builder struct {
	gsa Popper[nmea.GSAParcel]
	gsv Popper[nmea.GSVParcel]

	fixMu     sync.Mutex
	usedInFix map[constellation.ID]map[int]struct{}

	satMu      sync.Mutex
	satellites map[constellation.ID][]nmea.GSVSatellite

	groupMu sync.Mutex
	group   *gsvGroup

	stop chan struct{}
	wg   sync.WaitGroup
}

// NewBuilder constructs a Builder and starts its two background
// threads. Close stops them.
func NewBuilder(gsa Popper[nmea.GSAParcel], gsv Popper[nmea.GSVParcel]) *Builder {
	b := &Builder{
		gsa:        gsa,
		gsv:        gsv,
		usedInFix:  make(map[constellation.ID]map[int]struct{}),
		satellites: make(map[constellation.ID][]nmea.GSVSatellite),
		stop:       make(chan struct{}),
	}
	b.wg.Add(2)
	go b.drainGSA()
	go b.drainGSV()
	return b
}

// Close stops both background threads and waits for them to exit.
func (b *Builder) Close() {
	close(b.stop)
	b.wg.Wait()
}

func (b *Builder) drainGSA() {
	defer b.wg.Done()
	for {
		select {
		case <-b.stop:
			return
		default:
		}
		p, ok := b.gsa.Pop()
		if !ok {
			b.gsa.WaitFor(100*time.Millisecond, func() bool { return !b.gsa.Empty() })
			continue
		}
		set := make(map[int]struct{}, len(p.SVIDs))
		for _, svid := range p.SVIDs {
			set[svid] = struct{}{}
		}
		b.fixMu.Lock()
		b.usedInFix[p.Constellation] = set
		b.fixMu.Unlock()
	}
}

func (b *Builder) drainGSV() {
	defer b.wg.Done()
	for {
		select {
		case <-b.stop:
			return
		default:
		}
		p, ok := b.gsv.Pop()
		if !ok {
			b.gsv.WaitFor(100*time.Millisecond, func() bool { return !b.gsv.Empty() })
			continue
		}
		b.handleGSV(p)
	}
}

// handleGSV folds one GSV message into the in-progress group for its
// constellation. A msg_num that isn't the expected next one, or a
// constellation/msg_amount change mid-group, discards the partial
// group; the only way to start a new one is a message reporting
// msg_num 1.
func (b *Builder) handleGSV(p nmea.GSVParcel) {
	b.groupMu.Lock()
	defer b.groupMu.Unlock()

	mismatched := b.group == nil ||
		b.group.constellation != p.Constellation ||
		b.group.msgAmount != p.MsgAmount ||
		p.MsgNum != b.group.nextMsgNum

	if mismatched {
		if p.MsgNum != 1 {
			b.group = nil
			return
		}
		b.group = &gsvGroup{constellation: p.Constellation, msgAmount: p.MsgAmount, nextMsgNum: 1}
	}

	b.group.satellites = append(b.group.satellites, p.Satellites...)
	b.group.nextMsgNum++

	if b.group.nextMsgNum > b.group.msgAmount {
		b.satMu.Lock()
		b.satellites[b.group.constellation] = b.group.satellites
		b.satMu.Unlock()
		b.group = nil
	}
}

// Build assembles one Record from the current satellites table, in
// constellation order, stopping once MaxSatellites entries have been
// collected. Each entry's pre-normalization svid (OrigSVID, the same
// numbering GSA reports) is checked against, and consumed from, that
// constellation's used-in-fix set.
func (b *Builder) Build() Record {
	b.satMu.Lock()
	snapshot := make(map[constellation.ID][]nmea.GSVSatellite, len(b.satellites))
	for id, sats := range b.satellites {
		snapshot[id] = sats
	}
	b.satMu.Unlock()

	b.fixMu.Lock()
	defer b.fixMu.Unlock()

	var out []Satellite
	for id := constellation.ID(0); id < constellation.Count && len(out) < MaxSatellites; id++ {
		for _, sat := range snapshot[id] {
			if len(out) >= MaxSatellites {
				break
			}
			entry := Satellite{
				Constellation:       sat.Constellation,
				SVID:                sat.SVID,
				Elevation:           sat.Elevation,
				Azimuth:             sat.Azimuth,
				CN0:                 sat.CN0,
				CarrierFrequencyHz:  constellation.CarrierFrequencyHz(sat.Constellation),
				HasCarrierFrequency: constellation.CarrierFrequencyHz(sat.Constellation) > 0,
			}

			if set, ok := b.usedInFix[sat.Constellation]; ok {
				if _, used := set[sat.OrigSVID]; used {
					entry.Flags |= FlagUsedInFix
					delete(set, sat.OrigSVID)
				}
			}

			out = append(out, entry)
		}
	}

	return Record{Satellites: out, ElapsedRealtimeNs: fusion.ElapsedRealtimeNs()}
}
