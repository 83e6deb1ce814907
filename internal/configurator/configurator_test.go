package configurator

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gnss-hal/core/internal/config"
	"github.com/gnss-hal/core/internal/gnsserr"
	"github.com/gnss-hal/core/internal/parser/ubx"
	"github.com/gnss-hal/core/internal/receiver"
	"github.com/gnss-hal/core/internal/transport"
)

// fakeQueue is a tiny single-slot stand-in for *queue.Queue[T], enough
// to drive the configurator's Pop/Empty/WaitFor contract in tests
// without pulling in the real bounded FIFO.
type fakeQueue[T any] struct {
	mu    sync.Mutex
	items []T
}

func (q *fakeQueue[T]) push(v T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, v)
}

func (q *fakeQueue[T]) Pop() (v T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return v, false
	}
	v = q.items[0]
	q.items = q.items[1:]
	return v, true
}

func (q *fakeQueue[T]) Empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) == 0
}

func (q *fakeQueue[T]) WaitFor(timeout time.Duration, predicate func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if predicate() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return predicate()
}

// recordingTransport counts WriteFrame calls and always acks the next
// frame through a paired ack queue, simulating a cooperative receiver.
type recordingTransport struct {
	mu     sync.Mutex
	frames [][]byte
	acks   *fakeQueue[ubx.AckParcel]
}

func (t *recordingTransport) Open() error  { return nil }
func (t *recordingTransport) Close() error { return nil }
func (t *recordingTransport) Reset() error { return nil }
func (t *recordingTransport) SetBaud(int) error {
	return nil
}
func (t *recordingTransport) ReadByte() (byte, error) { return 0, errors.New("not used") }
func (t *recordingTransport) Endian() transport.Endian {
	return transport.HostEndian()
}
func (t *recordingTransport) WriteFrame(body []byte) error {
	t.mu.Lock()
	t.frames = append(t.frames, append([]byte(nil), body...))
	t.mu.Unlock()

	if len(body) >= 2 {
		t.acks.push(ubx.AckParcel{Class: ubx.Class(body[0]), ID: ubx.ID(body[1])})
	}
	return nil
}

func newFixture(swVersion float64) (*recordingTransport, *Configurator) {
	acks := &fakeQueue[ubx.AckParcel]{}
	monVer := &fakeQueue[ubx.MonVerParcel]{}
	monVer.push(ubx.MonVerParcel{SwVersion: swVersion})

	tr := &recordingTransport{acks: acks}
	rx := receiver.New(receiver.VendorUblox, 0x01A9)
	cfg := config.Default()
	cfg.GNSSBaudRate = 0 // skip baud negotiation in the fixture

	c := New(tr, rx, acks, monVer, cfg, nil)
	return tr, c
}

func TestRunSucceedsForSPG201(t *testing.T) {
	tr, c := newFixture(2.01)
	if err := c.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.State() != StateConfigured {
		t.Errorf("state = %v, want StateConfigured", c.State())
	}
	if len(tr.frames) == 0 {
		t.Errorf("expected commands to have been written")
	}
}

func TestRunRejectsNonUbloxVendor(t *testing.T) {
	acks := &fakeQueue[ubx.AckParcel]{}
	monVer := &fakeQueue[ubx.MonVerParcel]{}
	tr := &recordingTransport{acks: acks}
	rx := receiver.New(0x067B, 0)

	c := New(tr, rx, acks, monVer, config.Default(), nil)
	err := c.Run()
	if !errors.Is(err, gnsserr.ErrUnsupportedReceiver) {
		t.Fatalf("err = %v, want ErrUnsupportedReceiver", err)
	}
	if c.State() != StateFailed {
		t.Errorf("state = %v, want StateFailed", c.State())
	}
}

func TestRunFailsOnUnknownFirmwareVersion(t *testing.T) {
	_, c := newFixture(9.99)
	err := c.Run()
	if !errors.Is(err, gnsserr.ErrUnsupportedReceiver) {
		t.Fatalf("err = %v, want ErrUnsupportedReceiver", err)
	}
}

// droppingTransport accepts every WriteFrame but never produces an ACK,
// exercising the exhausted-retries path.
type droppingTransport struct{ recordingTransport }

func (t *droppingTransport) WriteFrame(body []byte) error {
	t.mu.Lock()
	t.frames = append(t.frames, append([]byte(nil), body...))
	t.mu.Unlock()
	return nil
}

func TestNegotiateBaudSendsCfgPrtBeforeSwitching(t *testing.T) {
	acks := &fakeQueue[ubx.AckParcel]{}
	monVer := &fakeQueue[ubx.MonVerParcel]{}
	tr := &recordingTransport{acks: acks}
	rx := receiver.New(receiver.VendorUblox, 0)
	cfg := config.Default()
	cfg.GNSSBaudRate = 115200

	c := New(tr, rx, acks, monVer, cfg, nil)
	if err := c.negotiateBaud(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(tr.frames) != 1 {
		t.Fatalf("expected one cfg-prt frame, got %d", len(tr.frames))
	}
	frame := tr.frames[0]
	if frame[0] != byte(classCFG) || frame[1] != byte(idPrt) {
		t.Fatalf("frame class/id = %02x/%02x, want cfg-prt", frame[0], frame[1])
	}
	if frame[4] != cfgPrtPortID {
		t.Errorf("port = %d, want %d", frame[4], cfgPrtPortID)
	}
	gotBaud := uint32(frame[12]) | uint32(frame[13])<<8 | uint32(frame[14])<<16 | uint32(frame[15])<<24
	if gotBaud != uint32(cfg.GNSSBaudRate) {
		t.Errorf("baud = %d, want %d", gotBaud, cfg.GNSSBaudRate)
	}
}

func TestRunFailsAfterExhaustingAckRetries(t *testing.T) {
	oldAckWait := ackWait
	ackWait = 10 * time.Millisecond
	defer func() { ackWait = oldAckWait }()

	acks := &fakeQueue[ubx.AckParcel]{}
	monVer := &fakeQueue[ubx.MonVerParcel]{}
	monVer.push(ubx.MonVerParcel{SwVersion: 2.01})

	tr := &droppingTransport{recordingTransport{acks: acks}}
	rx := receiver.New(receiver.VendorUblox, 0)
	cfg := config.Default()
	cfg.GNSSBaudRate = 0

	c := New(tr, rx, acks, monVer, cfg, nil)
	if err := c.Run(); !errors.Is(err, gnsserr.ErrAckTimeout) {
		t.Fatalf("err = %v, want ErrAckTimeout", err)
	}
	if c.State() != StateFailed {
		t.Errorf("state = %v, want StateFailed", c.State())
	}
}
