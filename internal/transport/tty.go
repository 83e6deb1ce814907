package transport

import (
	"bufio"
	"fmt"
	"log"
	"sync"
	"time"

	"go.bug.st/serial"
	"golang.org/x/sys/unix"
)

// gpioResetOffDuration and gpioResetOnDuration are the toggle timings for
// an on-board receiver chip's reset line, applied once before the first
// Open.
const (
	gpioResetOffDuration = 200 * time.Millisecond
	gpioResetOnDuration  = time.Second
)

// TTYConfig configures a TTYTransport.
type TTYConfig struct {
	Path string
	Baud int
	// GPIOResetPin is the sysfs GPIO line to toggle before the first
	// Open. A negative value disables the reset sequence.
	GPIOResetPin int
	Logger       *log.Logger
}

// TTYTransport is the POSIX serial leg of Transport: 8N1, no parity, no
// echo, no canonical processing (go.bug.st/serial always opens in raw
// mode, so no cooked-attribute cleanup is needed here).
type TTYTransport struct {
	cfg    TTYConfig
	logger *log.Logger

	mu   sync.Mutex // guards port and reader lifecycle
	port serial.Port
	r    *bufio.Reader

	readMu, writeMu sync.Mutex

	endian      Endian
	resetDone   bool
	currentBaud int
}

// NewTTYTransport constructs a transport bound to cfg.Path. Open must be
// called before use.
func NewTTYTransport(cfg TTYConfig) *TTYTransport {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	baud := NormalizeBaud(cfg.Baud, func(rejected int) {
		logger.Printf("transport: unsupported baud rate %d, falling back to %d", rejected, DefaultBaudRate)
	})
	return &TTYTransport{
		cfg:         cfg,
		logger:      logger,
		endian:      HostEndian(),
		currentBaud: baud,
	}
}

// Open opens the serial line, toggling the GPIO reset line first if this
// is an on-board chip and this is the first Open.
func (t *TTYTransport) Open() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.port != nil {
		return nil
	}

	if !t.resetDone && t.cfg.GPIOResetPin >= 0 {
		if err := toggleGPIOReset(t.cfg.GPIOResetPin); err != nil {
			t.logger.Printf("transport: gpio reset on pin %d failed: %v", t.cfg.GPIOResetPin, err)
		}
		t.resetDone = true
	}

	mode := &serial.Mode{
		BaudRate: t.currentBaud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(t.cfg.Path, mode)
	if err != nil {
		return fmt.Errorf("transport: open %s: %w", t.cfg.Path, err)
	}

	t.port = port
	t.r = bufio.NewReader(port)
	return nil
}

// Close closes the serial line. Calling Close when not open is a no-op.
func (t *TTYTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.port == nil {
		return nil
	}
	err := t.port.Close()
	t.port = nil
	t.r = nil
	if err != nil {
		return fmt.Errorf("transport: close: %w", err)
	}
	return nil
}

// Reset is Close followed by Open.
func (t *TTYTransport) Reset() error {
	if err := t.Close(); err != nil {
		return err
	}
	return t.Open()
}

// SetBaud reopens the line at a new rate, falling back to
// DefaultBaudRate for any rate outside AllowedBaudRates.
func (t *TTYTransport) SetBaud(rate int) error {
	rate = NormalizeBaud(rate, func(rejected int) {
		t.logger.Printf("transport: unsupported baud rate %d, falling back to %d", rejected, DefaultBaudRate)
	})

	t.mu.Lock()
	t.currentBaud = rate
	port := t.port
	t.mu.Unlock()

	if port == nil {
		return nil
	}

	mode := &serial.Mode{BaudRate: rate, DataBits: 8, Parity: serial.NoParity, StopBits: serial.OneStopBit}
	if err := port.SetMode(mode); err != nil {
		return fmt.Errorf("transport: set baud %d: %w", rate, err)
	}
	return nil
}

// ReadByte blocks until one byte is available or the underlying read
// fails.
func (t *TTYTransport) ReadByte() (byte, error) {
	t.mu.Lock()
	r := t.r
	t.mu.Unlock()

	if r == nil {
		return 0, fmt.Errorf("transport: not open")
	}

	t.readMu.Lock()
	defer t.readMu.Unlock()
	b, err := r.ReadByte()
	if err != nil {
		return 0, fmt.Errorf("transport: read byte: %w", err)
	}
	return b, nil
}

// WriteFrame writes a full UBX command atomically.
func (t *TTYTransport) WriteFrame(body []byte) error {
	t.mu.Lock()
	port := t.port
	t.mu.Unlock()

	if port == nil {
		return fmt.Errorf("transport: not open")
	}

	return writeFrameAtomic(&t.writeMu, port.Write, body)
}

// Endian reports the host byte order.
func (t *TTYTransport) Endian() Endian {
	return t.endian
}

// toggleGPIOReset drives a sysfs GPIO line low for 200ms then high for
// 1s, using raw file descriptor writes below the buffered-I/O layer the
// serial port itself uses.
func toggleGPIOReset(pin int) error {
	path := fmt.Sprintf("/sys/class/gpio/gpio%d/value", pin)

	fd, err := unix.Open(path, unix.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer unix.Close(fd)

	if _, err := unix.Write(fd, []byte("0")); err != nil {
		return fmt.Errorf("write low: %w", err)
	}
	time.Sleep(gpioResetOffDuration)

	if _, err := unix.Seek(fd, 0, unix.SEEK_SET); err != nil {
		return fmt.Errorf("seek: %w", err)
	}
	if _, err := unix.Write(fd, []byte("1")); err != nil {
		return fmt.Errorf("write high: %w", err)
	}
	time.Sleep(gpioResetOnDuration)

	return nil
}
