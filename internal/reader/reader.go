// Package reader pumps bytes from a Transport through a four-state
// machine that recognizes whole NMEA sentences and whole UBX frames and
// hands each to its dispatcher, resynchronizing on any protocol
// violation rather than failing the stream.
package reader

import (
	"log"
	"sync"
	"time"

	"github.com/gnss-hal/core/internal/transport"
)

// state is the framed reader's position in the NMEA/UBX byte grammar.
type state uint8

const (
	stateIdle state = iota
	stateWaitUbxSync2
	stateInNmea
	stateInUbx
)

const (
	ubxLenLoOffset   = 4
	ubxLenHiOffset   = 5
	ubxFrameOverhead = 8 // sync(2) + class+id(2) + len(2) + checksum(2)

	maxConsecutiveFailures = 5
	failureBackoff         = 50 * time.Millisecond
)

// NmeaSink receives a complete NMEA sentence, '$' through the trailing
// '\n' inclusive.
type NmeaSink interface {
	DispatchNmea(sentence []byte)
}

// UbxSink receives a complete UBX frame, sync bytes through checksum
// inclusive.
type UbxSink interface {
	DispatchUbx(frame []byte)
}

// DeathFunc is invoked once read_byte has failed maxConsecutiveFailures
// times in a row; the reader stops pumping after calling it.
type DeathFunc func(lastErr error)

// Reader owns a Transport and pumps it on a single goroutine until
// Stop is called or the death callback fires.
type Reader struct {
	tr     transport.Transport
	nmea   NmeaSink
	ubx    UbxSink
	onDeath DeathFunc
	logger *log.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

// New constructs a Reader. onDeath may be nil, in which case a death is
// only logged.
func New(tr transport.Transport, nmea NmeaSink, ubx UbxSink, onDeath DeathFunc, logger *log.Logger) *Reader {
	if logger == nil {
		logger = log.Default()
	}
	return &Reader{
		tr:      tr,
		nmea:    nmea,
		ubx:     ubx,
		onDeath: onDeath,
		logger:  logger,
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start launches the pump goroutine. The reader owns the transport for
// the duration of the pump: Stop joins it before returning.
func (r *Reader) Start() {
	go r.pump()
}

// Stop signals the pump to exit and blocks until it has joined.
func (r *Reader) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
	<-r.done
}

func (r *Reader) pump() {
	defer close(r.done)

	st := stateIdle
	var nmeaBuf []byte
	var ubxBuf []byte
	var ubxLen uint16
	var consecutiveFailures int

	for {
		select {
		case <-r.stopCh:
			return
		default:
		}

		b, err := r.tr.ReadByte()
		if err != nil {
			consecutiveFailures++
			r.logger.Printf("reader: read_byte failed (%d/%d): %v", consecutiveFailures, maxConsecutiveFailures, err)
			if consecutiveFailures >= maxConsecutiveFailures {
				if r.onDeath != nil {
					r.onDeath(err)
				}
				return
			}
			time.Sleep(failureBackoff)
			continue
		}
		consecutiveFailures = 0

		switch st {
		case stateIdle:
			switch b {
			case '$':
				nmeaBuf = append(nmeaBuf[:0], b)
				st = stateInNmea
			case 0xB5:
				st = stateWaitUbxSync2
			}

		case stateWaitUbxSync2:
			if b == 0x62 {
				ubxBuf = append(ubxBuf[:0], 0xB5, 0x62)
				ubxLen = 0
				st = stateInUbx
			} else {
				st = stateIdle
			}

		case stateInNmea:
			switch b {
			case '$':
				nmeaBuf = nmeaBuf[:0]
				st = stateIdle
			case '\n':
				nmeaBuf = append(nmeaBuf, b)
				if r.nmea != nil {
					r.nmea.DispatchNmea(append([]byte(nil), nmeaBuf...))
				}
				nmeaBuf = nmeaBuf[:0]
				st = stateIdle
			default:
				nmeaBuf = append(nmeaBuf, b)
			}

		case stateInUbx:
			ubxBuf = append(ubxBuf, b)
			offset := len(ubxBuf) - 1
			switch offset {
			case ubxLenLoOffset:
				ubxLen = setLenByte(ubxLen, b, false)
			case ubxLenHiOffset:
				ubxLen = setLenByte(ubxLen, b, true)
			}
			if offset >= ubxLenHiOffset && len(ubxBuf) == int(ubxLen)+ubxFrameOverhead {
				if r.ubx != nil {
					r.ubx.DispatchUbx(append([]byte(nil), ubxBuf...))
				}
				ubxBuf = ubxBuf[:0]
				st = stateIdle
			}
		}
	}
}

// setLenByte folds one byte of the UBX payload length into the running
// value. The wire format is always little-endian regardless of host byte
// order, matching internal/ubxwire.LittleEndianLength.
func setLenByte(cur uint16, b byte, high bool) uint16 {
	if high {
		return cur | uint16(b)<<8
	}
	return uint16(b)
}
