// Package transport provides the byte-level I/O leg of the pipeline: a
// serial line to a real receiver, or a file-replay source for bench
// testing, behind one interface so the framed reader never knows which
// it is talking to.
package transport

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/gnss-hal/core/internal/ubxwire"
)

// Endian identifies the host's native byte order, detected once per
// transport and reported by Transport.Endian. The framed reader does not
// consult it: the UBX payload length is always assembled little-endian.
type Endian uint8

const (
	EndianUnset Endian = iota
	EndianLittle
	EndianBig
)

// HostEndian detects the running process's native byte order without
// unsafe, by observing how binary.NativeEndian round-trips a known value.
func HostEndian() Endian {
	var buf [2]byte
	binary.NativeEndian.PutUint16(buf[:], 0x0102)
	if buf[0] == 0x02 {
		return EndianLittle
	}
	return EndianBig
}

// AllowedBaudRates are the only line rates SetBaud honors; anything else
// falls back to DefaultBaudRate.
var AllowedBaudRates = map[int]bool{
	2400: true, 4800: true, 9600: true, 19200: true,
	38400: true, 57600: true, 115200: true,
}

// DefaultBaudRate is used when SetBaud is asked for an unsupported rate.
const DefaultBaudRate = 9600

// Transport is the byte source/sink the framed reader pumps. Open, Close,
// and Reset are idempotent.
type Transport interface {
	Open() error
	Close() error
	Reset() error
	SetBaud(rate int) error
	// ReadByte blocks until one byte is available, the source signals
	// end of stream, or an error occurs.
	ReadByte() (byte, error)
	// WriteFrame writes a full UBX command: sync bytes, body, and
	// Fletcher-8 checksum, as one atomic write.
	WriteFrame(body []byte) error
	// Endian reports the host byte order detected at construction.
	Endian() Endian
}

// writeFrameAtomic is the shared WriteFrame body every Transport
// implementation delegates to: it builds the exact on-wire bytes and
// hands them to the implementation-specific raw writer under the
// writer's own mutex, so a concurrent ReadByte is never blocked by a
// write in flight.
func writeFrameAtomic(mu *sync.Mutex, write func([]byte) (int, error), body []byte) error {
	frame := ubxwire.BuildFrame(body)
	mu.Lock()
	defer mu.Unlock()
	n, err := write(frame)
	if err != nil {
		return fmt.Errorf("transport: write frame: %w", err)
	}
	if n != len(frame) {
		return fmt.Errorf("transport: short write: wrote %d of %d bytes", n, len(frame))
	}
	return nil
}

// NormalizeBaud maps rate to itself if allowed, otherwise to
// DefaultBaudRate. warn, when non-nil, is called with the rejected rate.
func NormalizeBaud(rate int, warn func(rejected int)) int {
	if AllowedBaudRates[rate] {
		return rate
	}
	if warn != nil {
		warn(rate)
	}
	return DefaultBaudRate
}
