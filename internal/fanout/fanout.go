// Package fanout splits the single mixed-parcel stream each protocol
// dispatcher produces back into the type-indexed queues the builders
// actually consume: the dispatcher's Queuer only needs one Push(Parcel)
// method, but a location builder popping RMC parcels and a satellite-
// info builder popping GSA/GSV parcels must not steal items from each
// other by racing over one shared queue. Fanout restores that
// separation without requiring either dispatcher to know its consumers'
// shapes.
package fanout

import (
	"github.com/gnss-hal/core/internal/parser/nmea"
	"github.com/gnss-hal/core/internal/parser/ubx"
	"github.com/gnss-hal/core/internal/queue"
)

// Nmea demultiplexes one nmea.Parcel stream into a typed queue per
// sentence kind. It implements nmea.Queuer.
type Nmea struct {
	RMC    *queue.Queue[nmea.RMCParcel]
	GGA    *queue.Queue[nmea.GGAParcel]
	GSA    *queue.Queue[nmea.GSAParcel]
	GSV    *queue.Queue[nmea.GSVParcel]
	PUBX00 *queue.Queue[nmea.PUBX00Parcel]
}

// NewNmea returns a Nmea fanout with all five sub-queues at
// queue.MaxSize capacity.
func NewNmea() *Nmea {
	return &Nmea{
		RMC:    queue.New[nmea.RMCParcel](queue.MaxSize),
		GGA:    queue.New[nmea.GGAParcel](queue.MaxSize),
		GSA:    queue.New[nmea.GSAParcel](queue.MaxSize),
		GSV:    queue.New[nmea.GSVParcel](queue.MaxSize),
		PUBX00: queue.New[nmea.PUBX00Parcel](queue.MaxSize),
	}
}

// Push implements nmea.Queuer, routing p to its kind's sub-queue.
func (f *Nmea) Push(p nmea.Parcel) {
	switch v := p.(type) {
	case nmea.RMCParcel:
		f.RMC.Push(v)
	case nmea.GGAParcel:
		f.GGA.Push(v)
	case nmea.GSAParcel:
		f.GSA.Push(v)
	case nmea.GSVParcel:
		f.GSV.Push(v)
	case nmea.PUBX00Parcel:
		f.PUBX00.Push(v)
	}
}

// Ubx demultiplexes one ubx.Parcel stream into a typed queue per
// message kind. It implements ubx.Queuer.
type Ubx struct {
	NavClock   *queue.Queue[ubx.NavClockParcel]
	NavStatus  *queue.Queue[ubx.NavStatusParcel]
	NavTimeGps *queue.Queue[ubx.NavTimeGpsParcel]
	RxmMeasx   *queue.Queue[ubx.RxmMeasxParcel]
	MonVer     *queue.Queue[ubx.MonVerParcel]
	Ack        *queue.Queue[ubx.AckParcel]
	NavPvt     *queue.Queue[ubx.NavPvtParcel]
}

// NewUbx returns a Ubx fanout with all sub-queues at queue.MaxSize
// capacity.
func NewUbx() *Ubx {
	return &Ubx{
		NavClock:   queue.New[ubx.NavClockParcel](queue.MaxSize),
		NavStatus:  queue.New[ubx.NavStatusParcel](queue.MaxSize),
		NavTimeGps: queue.New[ubx.NavTimeGpsParcel](queue.MaxSize),
		RxmMeasx:   queue.New[ubx.RxmMeasxParcel](queue.MaxSize),
		MonVer:     queue.New[ubx.MonVerParcel](queue.MaxSize),
		Ack:        queue.New[ubx.AckParcel](queue.MaxSize),
		NavPvt:     queue.New[ubx.NavPvtParcel](queue.MaxSize),
	}
}

// Push implements ubx.Queuer, routing p to its kind's sub-queue.
func (f *Ubx) Push(p ubx.Parcel) {
	switch v := p.(type) {
	case ubx.NavClockParcel:
		f.NavClock.Push(v)
	case ubx.NavStatusParcel:
		f.NavStatus.Push(v)
	case ubx.NavTimeGpsParcel:
		f.NavTimeGps.Push(v)
	case ubx.RxmMeasxParcel:
		f.RxmMeasx.Push(v)
	case ubx.MonVerParcel:
		f.MonVer.Push(v)
	case ubx.AckParcel:
		f.Ack.Push(v)
	case ubx.NavPvtParcel:
		f.NavPvt.Push(v)
	}
}
