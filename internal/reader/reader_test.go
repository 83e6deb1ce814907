package reader

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/gnss-hal/core/internal/transport"
)

// byteFeedTransport plays back a fixed byte slice then reports an
// error forever, simulating an exhausted or dead source.
type byteFeedTransport struct {
	mu     sync.Mutex
	bytes  []byte
	pos    int
	endian transport.Endian
}

func newByteFeedTransport(b []byte) *byteFeedTransport {
	return &byteFeedTransport{bytes: b, endian: transport.EndianLittle}
}

func (f *byteFeedTransport) Open() error         { return nil }
func (f *byteFeedTransport) Close() error        { return nil }
func (f *byteFeedTransport) Reset() error        { return nil }
func (f *byteFeedTransport) SetBaud(int) error   { return nil }
func (f *byteFeedTransport) WriteFrame([]byte) error { return nil }
func (f *byteFeedTransport) Endian() transport.Endian { return f.endian }

func (f *byteFeedTransport) ReadByte() (byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pos >= len(f.bytes) {
		return 0, errors.New("byteFeedTransport: exhausted")
	}
	b := f.bytes[f.pos]
	f.pos++
	return b, nil
}

type recordingNmeaSink struct {
	mu        sync.Mutex
	sentences [][]byte
}

func (s *recordingNmeaSink) DispatchNmea(sentence []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sentences = append(s.sentences, sentence)
}

func (s *recordingNmeaSink) all() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.sentences...)
}

type recordingUbxSink struct {
	mu     sync.Mutex
	frames [][]byte
}

func (s *recordingUbxSink) DispatchUbx(frame []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, frame)
}

func (s *recordingUbxSink) all() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.frames...)
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestReaderEmitsWholeNmeaSentence(t *testing.T) {
	tr := newByteFeedTransport([]byte("garbage$GPRMC,1,2,3*1A\nmore"))
	nmea := &recordingNmeaSink{}

	r := New(tr, nmea, nil, nil, nil)
	r.Start()
	defer r.Stop()

	waitUntil(t, time.Second, func() bool { return len(nmea.all()) == 1 })

	got := string(nmea.all()[0])
	if got != "$GPRMC,1,2,3*1A\n" {
		t.Errorf("expected exact sentence, got %q", got)
	}
}

func TestReaderResyncsOnEmbeddedDollar(t *testing.T) {
	tr := newByteFeedTransport([]byte("$GPGSA,broken$GPGGA,lost*00\n$GPGGA,ok*00\n"))
	nmea := &recordingNmeaSink{}

	r := New(tr, nmea, nil, nil, nil)
	r.Start()
	defer r.Stop()

	waitUntil(t, time.Second, func() bool { return len(nmea.all()) == 1 })
	got := string(nmea.all()[0])
	if got != "$GPGGA,ok*00\n" {
		t.Errorf("expected resync to drop the partial sentence, got %q", got)
	}
}

func TestReaderEmitsWholeUbxFrame(t *testing.T) {
	// class=0x01 id=0x07, payload length=2 (little-endian), payload {0xAA,0xBB}, then 2 checksum bytes.
	frame := []byte{0xB5, 0x62, 0x01, 0x07, 0x02, 0x00, 0xAA, 0xBB, 0x00, 0x00}
	tr := newByteFeedTransport(frame)
	ubx := &recordingUbxSink{}

	r := New(tr, nil, ubx, nil, nil)
	r.Start()
	defer r.Stop()

	waitUntil(t, time.Second, func() bool { return len(ubx.all()) == 1 })

	got := ubx.all()[0]
	if len(got) != len(frame) {
		t.Fatalf("expected frame of length %d, got %d", len(frame), len(got))
	}
	for i := range frame {
		if got[i] != frame[i] {
			t.Fatalf("frame mismatch at byte %d: want % x got % x", i, frame, got)
		}
	}
}

func TestReaderIgnoresBytesBeforeFirstSync(t *testing.T) {
	frame := []byte{0xB5, 0x62, 0x01, 0x07, 0x00, 0x00, 0x07, 0x08}
	tr := newByteFeedTransport(append([]byte{0x00, 0x01, 0x02}, frame...))
	ubx := &recordingUbxSink{}

	r := New(tr, nil, ubx, nil, nil)
	r.Start()
	defer r.Stop()

	waitUntil(t, time.Second, func() bool { return len(ubx.all()) == 1 })
}

func TestReaderInvokesDeathCallbackAfterFiveFailures(t *testing.T) {
	tr := newByteFeedTransport(nil) // every ReadByte fails immediately

	var mu sync.Mutex
	var deaths int
	onDeath := func(err error) {
		mu.Lock()
		deaths++
		mu.Unlock()
	}

	r := New(tr, nil, nil, onDeath, nil)
	r.Start()
	waitUntil(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return deaths > 0
	})
	r.Stop()

	mu.Lock()
	defer mu.Unlock()
	if deaths != 1 {
		t.Fatalf("expected exactly one death callback, got %d", deaths)
	}
}

func TestReaderWaitUbxSync2ResetsOnNonSync(t *testing.T) {
	// 0xB5 followed by a non-0x62 byte must reset to Idle, not treat it as
	// the start of a frame.
	frame := []byte{0xB5, 0x00, 0xB5, 0x62, 0x01, 0x07, 0x00, 0x00, 0x07, 0x08}
	tr := newByteFeedTransport(frame)
	ubx := &recordingUbxSink{}

	r := New(tr, nil, ubx, nil, nil)
	r.Start()
	defer r.Stop()

	waitUntil(t, time.Second, func() bool { return len(ubx.all()) == 1 })

	got := ubx.all()[0]
	if len(got) != 8 {
		t.Fatalf("expected the second, valid frame to be emitted, got % x", got)
	}
}

func ExampleReader_deathCallback() {
	tr := newByteFeedTransport(nil)
	done := make(chan struct{})
	r := New(tr, nil, nil, func(err error) {
		fmt.Println("reader died")
		close(done)
	}, nil)
	r.Start()
	<-done
	r.Stop()
	// Output: reader died
}
