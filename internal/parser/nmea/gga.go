package nmea

import (
	"fmt"
	"strconv"

	"github.com/gnss-hal/core/internal/gnsserr"
)

var ggaPartsCount = [versionCount]int{15, 15, 15}

const (
	ggaOffsetHDOP     = 8
	ggaOffsetAltitude = 9

	hdopToHorizontalAccuracy = 2.5
)

// GGAParcel is the parsed form of a GxGGA sentence: altitude and HDOP,
// from which a horizontal accuracy estimate is derived.
type GGAParcel struct {
	Altitude float64
	HDOP     float32
}

func (GGAParcel) isNmeaParcel() {}

// ToExtra converts the GGA reading into an Extra record. Horizontal
// accuracy is estimated from HDOP; it is overwritten by a PUBX,00
// reading when one is present.
func (p GGAParcel) ToExtra() (Extra, bool) {
	return Extra{
		HasAltitude:           true,
		Altitude:              p.Altitude,
		HasHorizontalAccuracy: true,
		HorizontalAccuracy:    p.HDOP * hdopToHorizontalAccuracy,
	}, true
}

// ParseGGA decodes an already checksum-validated GGA body.
func ParseGGA(body string, version Version) (GGAParcel, error) {
	fields := splitFields(body)
	if len(fields) != ggaPartsCount[version] {
		return GGAParcel{}, fmt.Errorf("nmea: gga field count %d, want %d: %w",
			len(fields), ggaPartsCount[version], gnsserr.ErrIncompletePacket)
	}

	if fields[ggaOffsetAltitude] == "" {
		return GGAParcel{}, fmt.Errorf("nmea: gga missing altitude: %w", gnsserr.ErrInvalidData)
	}
	altitude, err := strconv.ParseFloat(fields[ggaOffsetAltitude], 64)
	if err != nil {
		return GGAParcel{}, fmt.Errorf("nmea: gga altitude: %w", gnsserr.ErrInvalidData)
	}

	if fields[ggaOffsetHDOP] == "" {
		return GGAParcel{}, fmt.Errorf("nmea: gga missing hdop: %w", gnsserr.ErrInvalidData)
	}
	hdop, err := strconv.ParseFloat(fields[ggaOffsetHDOP], 32)
	if err != nil {
		return GGAParcel{}, fmt.Errorf("nmea: gga hdop: %w", gnsserr.ErrInvalidData)
	}

	return GGAParcel{Altitude: altitude, HDOP: float32(hdop)}, nil
}
