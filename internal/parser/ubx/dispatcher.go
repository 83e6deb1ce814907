package ubx

import (
	"fmt"
	"log"

	"github.com/gnss-hal/core/internal/gnsserr"
	"github.com/gnss-hal/core/internal/ubxwire"
)

// Queuer receives a fully parsed Parcel for a background builder to
// consume.
type Queuer interface {
	Push(Parcel)
}

// Dispatcher validates raw UBX frames and routes them to the parser for
// their (class, id) pair.
type Dispatcher struct {
	queue  Queuer
	logger *log.Logger
}

// NewDispatcher constructs a Dispatcher against a fixed output queue.
func NewDispatcher(queue Queuer, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Dispatcher{queue: queue, logger: logger}
}

// DispatchUbx validates one whole raw UBX frame (as delivered by the
// framed reader, sync bytes through the trailing checksum byte) and, on
// success, parses and queues it.
func (d *Dispatcher) DispatchUbx(raw []byte) {
	payload, class, id, err := validateUbxFrame(raw)
	if err != nil {
		d.logger.Printf("ubx: dropping frame: %v", err)
		return
	}

	var parcel Parcel
	switch {
	case class == ClassACK && id == IDAck:
		p, perr := ParseAck(payload, false)
		if perr != nil {
			d.logger.Printf("ubx: ack: %v", perr)
			return
		}
		parcel = p
	case class == ClassACK && id == IDNack:
		p, perr := ParseAck(payload, true)
		if perr != nil {
			d.logger.Printf("ubx: nack: %v", perr)
			return
		}
		parcel = p
	case class == ClassNAV && id == IDClock:
		p, perr := ParseNavClock(payload)
		if perr != nil {
			d.logger.Printf("ubx: nav-clock: %v", perr)
			return
		}
		parcel = p
	case class == ClassNAV && id == IDStatus:
		p, perr := ParseNavStatus(payload)
		if perr != nil {
			d.logger.Printf("ubx: nav-status: %v", perr)
			return
		}
		parcel = p
	case class == ClassNAV && id == IDTimeGps:
		p, perr := ParseNavTimeGps(payload)
		if perr != nil {
			d.logger.Printf("ubx: nav-timegps: %v", perr)
			return
		}
		parcel = p
	case class == ClassNAV && id == IDPVT:
		p, perr := ParseNavPvt(payload)
		if perr != nil {
			d.logger.Printf("ubx: nav-pvt: %v", perr)
			return
		}
		parcel = p
	case class == ClassRXM && id == IDMeasx:
		p, perr := ParseRxmMeasx(payload)
		if perr != nil {
			d.logger.Printf("ubx: rxm-measx: %v", perr)
			return
		}
		parcel = p
	case class == ClassMON && id == IDMonVer:
		p, perr := ParseMonVer(payload)
		if perr != nil {
			d.logger.Printf("ubx: mon-ver: %v", perr)
			return
		}
		parcel = p
	default:
		d.logger.Printf("ubx: unrecognized (class=0x%02x, id=0x%02x)", class, id)
		return
	}

	if d.queue != nil {
		d.queue.Push(parcel)
	}
}

// validateUbxFrame checks sync bytes, the Fletcher-8 checksum over
// class||id||length||payload, and that the declared length fits the
// buffer, returning the payload slice and the (class, id) pair.
func validateUbxFrame(raw []byte) ([]byte, Class, ID, error) {
	const minFrameLen = 2 + ubxwire.HeaderLen + ubxwire.ChecksumLen
	if len(raw) < minFrameLen || raw[0] != ubxwire.Sync1 || raw[1] != ubxwire.Sync2 {
		return nil, 0, 0, fmt.Errorf("ubx: malformed frame: %w", gnsserr.ErrIncompletePacket)
	}

	covered := raw[2 : len(raw)-ubxwire.ChecksumLen]
	wantA, wantB := ubxwire.Fletcher8(covered)
	gotA, gotB := raw[len(raw)-2], raw[len(raw)-1]
	if wantA != gotA || wantB != gotB {
		return nil, 0, 0, fmt.Errorf("ubx: checksum mismatch: %w", gnsserr.ErrBadChecksum)
	}

	class := Class(raw[2])
	id := ID(raw[3])
	length := ubxwire.LittleEndianLength(raw[4], raw[5])
	if int(length) > len(raw)-minFrameLen {
		return nil, 0, 0, fmt.Errorf("ubx: declared length %d exceeds buffer: %w", length, gnsserr.ErrIncompletePacket)
	}

	payloadStart := 2 + ubxwire.HeaderLen
	payload := raw[payloadStart : payloadStart+int(length)]
	return payload, class, id, nil
}
