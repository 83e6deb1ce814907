package transport

import (
	"fmt"
	"sync"

	"github.com/bramburn/gnssgo"
)

// FakeConfig configures a FakeTransport.
type FakeConfig struct {
	// RoutePath is the file gnssgo.Stream replays, read in chunks of
	// fakeReadChunk bytes and served byte by byte; looping is not
	// performed: the stream reports EOF once exhausted like any other
	// file read.
	RoutePath string
}

// FakeTransport stands in for a physical receiver on the test bench: it
// opens RoutePath with gnssgo.Stream in STR_FILE/STR_MODE_R mode and
// replays its bytes through ReadByte exactly as a live serial line would
// deliver them. WriteFrame, SetBaud, and Reset are accepted and
// discarded, matching a recording that cannot talk back.
type FakeTransport struct {
	cfg FakeConfig

	mu     sync.Mutex
	stream *gnssgo.Stream
	buf    []byte
	pos    int

	endian Endian
}

// NewFakeTransport constructs a transport bound to cfg.RoutePath. Open
// must be called before use.
func NewFakeTransport(cfg FakeConfig) *FakeTransport {
	return &FakeTransport{cfg: cfg, endian: HostEndian()}
}

// Open opens the replay file via gnssgo.Stream.
func (f *FakeTransport) Open() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.stream != nil {
		return nil
	}

	var s gnssgo.Stream
	s.InitStream()
	if ok := s.OpenStream(gnssgo.STR_FILE, gnssgo.STR_MODE_R, f.cfg.RoutePath); ok == 0 {
		return fmt.Errorf("transport: open fake route %s", f.cfg.RoutePath)
	}
	f.stream = &s
	return nil
}

// Close releases the underlying file stream.
func (f *FakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.stream == nil {
		return nil
	}
	f.stream.StreamClose()
	f.stream = nil
	f.buf = nil
	f.pos = 0
	return nil
}

// Reset rewinds the replay by reopening the route file from the start.
func (f *FakeTransport) Reset() error {
	if err := f.Close(); err != nil {
		return err
	}
	return f.Open()
}

// SetBaud is a no-op: a file replay has no line rate.
func (f *FakeTransport) SetBaud(rate int) error {
	return nil
}

const fakeReadChunk = 256

// ReadByte serves one byte at a time from an internal chunk buffer,
// refilling it from the stream as needed.
func (f *FakeTransport) ReadByte() (byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.stream == nil {
		return 0, fmt.Errorf("transport: not open")
	}

	if f.pos >= len(f.buf) {
		chunk := make([]byte, fakeReadChunk)
		n := f.stream.StreamRead(chunk, fakeReadChunk)
		if n <= 0 {
			return 0, fmt.Errorf("transport: fake route %s exhausted", f.cfg.RoutePath)
		}
		f.buf = chunk[:n]
		f.pos = 0
	}

	b := f.buf[f.pos]
	f.pos++
	return b, nil
}

// WriteFrame is a no-op: a recorded route has nothing listening for
// commands. Callers that need to observe configurator behavior against
// a fake receiver should use a dedicated in-memory Transport instead.
func (f *FakeTransport) WriteFrame(body []byte) error {
	return nil
}

// Endian reports the host byte order.
func (f *FakeTransport) Endian() Endian {
	return f.endian
}
