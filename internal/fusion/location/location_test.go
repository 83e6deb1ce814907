package location

import (
	"testing"
	"time"

	"github.com/gnss-hal/core/internal/parser/nmea"
	"github.com/gnss-hal/core/internal/queue"
	"github.com/gnss-hal/core/internal/sink"
)

func TestBuildMergesExtraIntoRecord(t *testing.T) {
	rmcQ := queue.New[nmea.RMCParcel](4)
	ggaQ := queue.New[nmea.GGAParcel](4)
	puxQ := queue.New[nmea.PUBX00Parcel](4)

	ggaQ.Push(nmea.GGAParcel{Altitude: 100, HDOP: 2})
	b := NewBuilder(rmcQ, ggaQ, puxQ)
	defer b.Close()

	// give the drain goroutine a moment to pick up the GGA parcel
	deadline := time.Now().Add(time.Second)
	for ggaQ.Size() > 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	rmcQ.Push(nmea.RMCParcel{Valid: true, Location: nmea.Location{Lat: 1, Lon: 2}})

	rec, err := b.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rec.Extra.HasAltitude || rec.Extra.Altitude != 100 {
		t.Errorf("expected merged altitude 100, got %+v", rec.Extra)
	}
	if rec.Lat != 1 || rec.Lon != 2 {
		t.Errorf("unexpected location: %+v", rec.Location)
	}
}

func TestBuildReturnsErrorOnInactiveFix(t *testing.T) {
	rmcQ := queue.New[nmea.RMCParcel](4)
	ggaQ := queue.New[nmea.GGAParcel](4)
	puxQ := queue.New[nmea.PUBX00Parcel](4)
	rmcQ.Push(nmea.RMCParcel{Valid: false})

	b := NewBuilder(rmcQ, ggaQ, puxQ)
	defer b.Close()

	if _, err := b.Build(); err == nil {
		t.Fatal("expected an error for an inactive fix")
	}
}

type alwaysReady struct{}

func (alwaysReady) Ready() bool { return true }

func TestProviderDispatchesToRegisteredSinks(t *testing.T) {
	rmcQ := queue.New[nmea.RMCParcel](4)
	ggaQ := queue.New[nmea.GGAParcel](4)
	puxQ := queue.New[nmea.PUBX00Parcel](4)
	rmcQ.Push(nmea.RMCParcel{Valid: true, Location: nmea.Location{Lat: 5}})

	b := NewBuilder(rmcQ, ggaQ, puxQ)
	defer b.Close()

	sinks := sink.NewRegistry[Record]()
	received := make(chan Record, 1)
	sinks.Register(sink.V2_0, func(r Record) { received <- r })

	p := NewProvider(b, sinks, alwaysReady{}, 1000, nil) // 1ms cadence
	p.StartProviding()
	defer p.StopProviding()

	select {
	case r := <-received:
		if r.Lat != 5 {
			t.Errorf("lat = %v, want 5", r.Lat)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a dispatched record")
	}
}
