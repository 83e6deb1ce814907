// Package ubx implements the UBX binary message parser family and
// dispatcher: Fletcher-8 checksum validation, message selection by
// (class, id), and one parser per message kind (NAV-CLOCK, NAV-STATUS,
// NAV-TIMEGPS, NAV-PVT, RXM-MEASX, MON-VER, ACK/NACK).
package ubx

import "github.com/gnss-hal/core/internal/constellation"

// GnssID is the UBX wire encoding of a constellation, distinct from the
// shared internal/constellation.ID space used by the NMEA parsers.
type GnssID uint8

const (
	GnssIDGPS     GnssID = 0
	GnssIDSBAS    GnssID = 1
	GnssIDGalileo GnssID = 2
	GnssIDBeidou  GnssID = 3
	GnssIDQZSS    GnssID = 5
	GnssIDGlonass GnssID = 6
)

func (g GnssID) toConstellation() constellation.ID {
	switch g {
	case GnssIDGPS:
		return constellation.GPS
	case GnssIDSBAS:
		return constellation.SBAS
	case GnssIDGalileo:
		return constellation.GALILEO
	case GnssIDBeidou:
		return constellation.BEIDOU
	case GnssIDQZSS:
		return constellation.QZSS
	case GnssIDGlonass:
		return constellation.GLONASS
	default:
		return constellation.Unknown
	}
}

// Class and Id identify a UBX message kind, the (class, id) pair the
// dispatcher selects a parser by.
type Class uint8
type ID uint8

const (
	ClassNAV Class = 0x01
	ClassRXM Class = 0x02
	ClassACK Class = 0x05
	ClassMON Class = 0x0A
)

const (
	IDNack    ID = 0x00
	IDAck     ID = 0x01
	IDStatus  ID = 0x03
	IDPVT     ID = 0x07
	IDMeasx   ID = 0x14
	IDTimeGps ID = 0x20
	IDClock   ID = 0x22
	IDMonVer  ID = 0x04
)

// Parcel is the closed sum type every UBX parser produces: one concrete
// struct per message kind, tagged by an unexported marker method so only
// this package's types satisfy it.
type Parcel interface {
	isUbxParcel()
}

// GnssData is the clock/measurement fusion target ToGnssData methods
// write into; the measurement builder merges successive parcels'
// contributions into one instance per epoch.
type GnssData struct {
	ClockBiasNs              int64
	ClockDriftNsps           float64
	ClockBiasUncertaintyNs   float64
	ClockDriftUncertaintyNsp float64
	ClockTimeNs              int64
	ClockFullBiasNs          int64
	ClockTimeUncertaintyNs   float64
	LeapSecond               int8
	ClockFlags               uint16

	Measurements []Measurement
}

// ClockFlags bits, mirroring GnssClockFlags from the callback this module
// was modeled on.
const (
	ClockFlagHasBias             uint16 = 1 << 0
	ClockFlagHasBiasUncertainty  uint16 = 1 << 1
	ClockFlagHasDrift            uint16 = 1 << 2
	ClockFlagHasDriftUncertainty uint16 = 1 << 3
	ClockFlagHasLeapSecond       uint16 = 1 << 4
	ClockFlagHasTimeUncertainty  uint16 = 1 << 5
	ClockFlagHasFullBias         uint16 = 1 << 6
)

// TOW state, mirroring GnssMeasurementState's TOW-decoded/known/unknown
// tristate.
type TowState uint32

const (
	TowStateUnknown TowState = 0
	TowStateKnown   TowState = 1
	TowStateDecoded TowState = 2
)

// Measurement is one RXM-MEASX repeated block, normalized into the
// shared constellation space.
type Measurement struct {
	Constellation              constellation.ID
	SVID                       uint8
	CarrierFrequencyHz         float64
	HasCarrierFrequency        bool
	CN0DbHz                    float64
	MultipathPresent           bool
	PseudorangeRateMps         float64
	PseudorangeRateUncertainty float64
	ReceivedSvTimeNs           int64
	ReceivedSvTimeUncertainty  int64
	TowState                   TowState
}
