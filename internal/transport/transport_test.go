package transport

import (
	"bytes"
	"errors"
	"sync"
	"testing"
)

func TestHostEndianIsLittleOrBig(t *testing.T) {
	e := HostEndian()
	if e != EndianLittle && e != EndianBig {
		t.Fatalf("expected a resolved endianness, got %v", e)
	}
}

func TestNormalizeBaudAllowed(t *testing.T) {
	got := NormalizeBaud(115200, func(int) { t.Fatal("warn should not be called for an allowed rate") })
	if got != 115200 {
		t.Errorf("expected 115200, got %d", got)
	}
}

func TestNormalizeBaudRejected(t *testing.T) {
	var warned int
	got := NormalizeBaud(300, func(rejected int) { warned = rejected })
	if got != DefaultBaudRate {
		t.Errorf("expected fallback to %d, got %d", DefaultBaudRate, got)
	}
	if warned != 300 {
		t.Errorf("expected warn callback with 300, got %d", warned)
	}
}

func TestWriteFrameAtomicBuildsUbxFrame(t *testing.T) {
	var mu sync.Mutex
	var written []byte
	write := func(p []byte) (int, error) {
		written = append([]byte(nil), p...)
		return len(p), nil
	}

	body := []byte{0x06, 0x09, 0x00, 0x00}
	if err := writeFrameAtomic(&mu, write, body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if written[0] != 0xB5 || written[1] != 0x62 {
		t.Fatalf("expected frame to start with sync bytes, got % x", written[:2])
	}
	if !bytes.Contains(written, body) {
		t.Errorf("expected frame to contain body, got % x", written)
	}
}

func TestWriteFrameAtomicShortWrite(t *testing.T) {
	var mu sync.Mutex
	write := func(p []byte) (int, error) { return len(p) - 1, nil }

	err := writeFrameAtomic(&mu, write, []byte{0x01, 0x02})
	if err == nil {
		t.Fatal("expected an error for a short write")
	}
}

func TestWriteFrameAtomicPropagatesError(t *testing.T) {
	var mu sync.Mutex
	wantErr := errors.New("boom")
	write := func(p []byte) (int, error) { return 0, wantErr }

	err := writeFrameAtomic(&mu, write, []byte{0x01})
	if !errors.Is(err, wantErr) {
		t.Errorf("expected wrapped %v, got %v", wantErr, err)
	}
}

func TestFakeTransportReadByteRequiresOpen(t *testing.T) {
	tr := NewFakeTransport(FakeConfig{RoutePath: "does-not-matter"})
	if _, err := tr.ReadByte(); err == nil {
		t.Fatal("expected an error reading before Open")
	}
}

func TestFakeTransportWriteFrameIsNoop(t *testing.T) {
	tr := NewFakeTransport(FakeConfig{RoutePath: "does-not-matter"})
	if err := tr.WriteFrame([]byte{0x01, 0x02}); err != nil {
		t.Errorf("expected WriteFrame to be a no-op, got %v", err)
	}
}

func TestFakeTransportSetBaudIsNoop(t *testing.T) {
	tr := NewFakeTransport(FakeConfig{RoutePath: "does-not-matter"})
	if err := tr.SetBaud(9600); err != nil {
		t.Errorf("expected SetBaud to be a no-op, got %v", err)
	}
}

func TestFakeTransportCloseWithoutOpenIsNoop(t *testing.T) {
	tr := NewFakeTransport(FakeConfig{RoutePath: "does-not-matter"})
	if err := tr.Close(); err != nil {
		t.Errorf("expected Close without Open to be a no-op, got %v", err)
	}
}

func TestTTYTransportReadByteRequiresOpen(t *testing.T) {
	tr := NewTTYTransport(TTYConfig{Path: "/dev/null", Baud: 9600, GPIOResetPin: -1})
	if _, err := tr.ReadByte(); err == nil {
		t.Fatal("expected an error reading before Open")
	}
}

func TestTTYTransportWriteFrameRequiresOpen(t *testing.T) {
	tr := NewTTYTransport(TTYConfig{Path: "/dev/null", Baud: 9600, GPIOResetPin: -1})
	if err := tr.WriteFrame([]byte{0x01}); err == nil {
		t.Fatal("expected an error writing before Open")
	}
}

func TestTTYTransportNormalizesConstructorBaud(t *testing.T) {
	tr := NewTTYTransport(TTYConfig{Path: "/dev/null", Baud: 1234, GPIOResetPin: -1})
	if tr.currentBaud != DefaultBaudRate {
		t.Errorf("expected unsupported baud to normalize to %d, got %d", DefaultBaudRate, tr.currentBaud)
	}
}

func TestTTYTransportEndianMatchesHost(t *testing.T) {
	tr := NewTTYTransport(TTYConfig{Path: "/dev/null", Baud: 9600, GPIOResetPin: -1})
	if tr.Endian() != HostEndian() {
		t.Errorf("expected transport endian to match host endian")
	}
}
