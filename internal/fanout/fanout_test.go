package fanout

import (
	"testing"

	"github.com/gnss-hal/core/internal/parser/nmea"
	"github.com/gnss-hal/core/internal/parser/ubx"
)

func TestNmeaFanoutRoutesByKind(t *testing.T) {
	f := NewNmea()
	f.Push(nmea.RMCParcel{Valid: true})
	f.Push(nmea.GGAParcel{Altitude: 12})

	if _, ok := f.RMC.Pop(); !ok {
		t.Error("expected an RMC parcel routed to RMC queue")
	}
	if _, ok := f.GGA.Pop(); !ok {
		t.Error("expected a GGA parcel routed to GGA queue")
	}
	if !f.GSA.Empty() {
		t.Error("GSA queue should be untouched")
	}
}

func TestUbxFanoutRoutesByKind(t *testing.T) {
	f := NewUbx()
	f.Push(ubx.NavClockParcel{})
	f.Push(ubx.AckParcel{Negative: true})

	if _, ok := f.NavClock.Pop(); !ok {
		t.Error("expected a NavClock parcel routed to NavClock queue")
	}
	if _, ok := f.Ack.Pop(); !ok {
		t.Error("expected an Ack parcel routed to Ack queue")
	}
	if !f.RxmMeasx.Empty() {
		t.Error("RxmMeasx queue should be untouched")
	}
}
