package nmea

import (
	"log"
	"strings"

	"github.com/gnss-hal/core/internal/constellation"
)

// Queuer receives a fully parsed Parcel for a background builder to
// consume. Implementations are expected to be the generic message
// queue's per-type Push.
type Queuer interface {
	Push(Parcel)
}

// Dispatcher validates raw NMEA frames and routes them to the parser
// for their sentence kind.
type Dispatcher struct {
	version Version
	queue   Queuer
	logger  *log.Logger
}

// NewDispatcher constructs a Dispatcher against a fixed protocol
// version and output queue. version typically starts at V23 and is
// advanced once the configurator negotiates a newer NMEA protocol.
func NewDispatcher(version Version, queue Queuer, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Dispatcher{version: version, queue: queue, logger: logger}
}

// SetVersion updates the protocol version used to size and interpret
// subsequent sentences. The demo host calls it after the configurator
// has run, with the NMEA generation the receiver was configured for.
func (d *Dispatcher) SetVersion(v Version) {
	d.version = v
}

// DispatchNmea validates one whole raw sentence (as delivered by the
// framed reader) and, on success, parses and queues it.
func (d *Dispatcher) DispatchNmea(raw []byte) {
	body, err := validateFrame(raw)
	if err != nil {
		d.logger.Printf("nmea: dropping frame: %v", err)
		return
	}

	talker := "$" + body[:min(2, len(body))]

	var parcel Parcel
	switch {
	case strings.Contains(body, "GGA"):
		p, perr := ParseGGA(body, d.version)
		if perr != nil {
			d.logger.Printf("nmea: gga: %v", perr)
			return
		}
		parcel = p
	case strings.Contains(body, "GSA"):
		p, perr := ParseGSA(body, d.version, talkerConstellation(talker))
		if perr != nil {
			d.logger.Printf("nmea: gsa: %v", perr)
			return
		}
		parcel = p
	case strings.Contains(body, "GSV"):
		p, perr := ParseGSV(body, talker, d.version)
		if perr != nil {
			d.logger.Printf("nmea: gsv: %v", perr)
			return
		}
		parcel = p
	case strings.Contains(body, "RMC"):
		p, perr := ParseRMC(body, d.version)
		if perr != nil {
			d.logger.Printf("nmea: rmc: %v", perr)
			return
		}
		parcel = p
	case strings.Contains(body, "PUBX,00"):
		p, perr := ParsePUBX00(body, d.version)
		if perr != nil {
			d.logger.Printf("nmea: pubx00: %v", perr)
			return
		}
		parcel = p
	case strings.Contains(body, "TXT"):
		p, perr := ParseTXT(body)
		if perr != nil {
			d.logger.Printf("nmea: txt: %v", perr)
			return
		}
		d.logger.Printf("nmea: receiver %s: %s", p.Severity, p.Text)
		return
	default:
		d.logger.Printf("nmea: unrecognized sentence type in %q", body)
		return
	}

	if d.queue != nil {
		d.queue.Push(parcel)
	}
}

func talkerConstellation(talker string) constellation.ID {
	switch talker {
	case "$GP":
		return constellation.GPS
	case "$GL":
		return constellation.GLONASS
	case "$GA":
		return constellation.GALILEO
	case "$GB":
		return constellation.BEIDOU
	default:
		return constellation.Unknown
	}
}
