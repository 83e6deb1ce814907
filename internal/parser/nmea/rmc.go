package nmea

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gnss-hal/core/internal/gnsserr"
)

// rmcPartsCount is the expected comma-split field count per protocol
// version, index by Version.
var rmcPartsCount = [versionCount]int{13, 14, 14}

const (
	rmcOffsetTime       = 1
	rmcOffsetStatus     = 2
	rmcOffsetLatitude   = 3
	rmcOffsetNorthSouth = 4
	rmcOffsetLongitude  = 5
	rmcOffsetEastWest   = 6
	rmcOffsetSpeed      = 7
	rmcOffsetCourse     = 8
	rmcOffsetDate       = 9

	knotsToKmh = 1.852
	kmhToMps   = 3.6

	speedAccuracyUblox7Mps   = 0.1
	bearingAccuracyUblox7Deg = 0.5
	speedAccuracyUblox8Mps   = 0.05
	bearingAccuracyUblox8Deg = 0.3
)

// RMCParcel is the parsed form of a GxRMC sentence.
type RMCParcel struct {
	Valid    bool
	Location Location
}

func (RMCParcel) isNmeaParcel() {}

// ToLocation returns the partial location reading and whether the
// sentence represented an active fix.
func (p RMCParcel) ToLocation() (Location, bool) {
	return p.Location, p.Valid
}

// ParseRMC decodes an already checksum-validated RMC body (talker+type
// through the last field, no leading '$' or trailing '*hh\n').
func ParseRMC(body string, version Version) (RMCParcel, error) {
	fields := splitFields(body)
	if len(fields) != rmcPartsCount[version] {
		return RMCParcel{}, fmt.Errorf("nmea: rmc field count %d, want %d: %w",
			len(fields), rmcPartsCount[version], gnsserr.ErrIncompletePacket)
	}

	if fields[rmcOffsetStatus] != "A" {
		return RMCParcel{Valid: false}, nil
	}

	timeMs, err := rmcTimestamp(fields[rmcOffsetDate], fields[rmcOffsetTime])
	if err != nil {
		return RMCParcel{}, err
	}

	lat, err := ddmmToDecimalDegrees(fields[rmcOffsetLatitude], fields[rmcOffsetNorthSouth] == "S")
	if err != nil {
		return RMCParcel{}, err
	}
	lon, err := ddmmToDecimalDegrees(fields[rmcOffsetLongitude], fields[rmcOffsetEastWest] == "W")
	if err != nil {
		return RMCParcel{}, err
	}

	speedKnots, err := strconv.ParseFloat(fields[rmcOffsetSpeed], 32)
	if err != nil {
		return RMCParcel{}, fmt.Errorf("nmea: rmc speed: %w", gnsserr.ErrInvalidData)
	}
	bearing, err := strconv.ParseFloat(fields[rmcOffsetCourse], 32)
	if err != nil {
		return RMCParcel{}, fmt.Errorf("nmea: rmc bearing: %w", gnsserr.ErrInvalidData)
	}

	speedAcc, bearingAcc := hardwareAccuracy(version)

	return RMCParcel{
		Valid: true,
		Location: Location{
			Lat:                lat,
			Lon:                lon,
			SpeedMps:           float32(speedKnots * knotsToKmh / kmhToMps),
			BearingDeg:         float32(bearing),
			TimeMs:             timeMs,
			SpeedAccuracyMps:   speedAcc,
			BearingAccuracyDeg: bearingAcc,
		},
	}, nil
}

// hardwareAccuracy returns the speed/bearing accuracy constants the
// original firmware datasheets specify per NMEA protocol generation:
// NEO-7 for v2.3, NEO-8 for v4.1.
func hardwareAccuracy(version Version) (speedAccuracy, bearingAccuracy float32) {
	switch version {
	case V23:
		return speedAccuracyUblox7Mps, bearingAccuracyUblox7Deg
	case V41:
		return speedAccuracyUblox8Mps, bearingAccuracyUblox8Deg
	default:
		return 0, 0
	}
}

// ddmmToDecimalDegrees converts a coordinate in ddmm.mmmm (or
// dddmm.mmmm) form into signed decimal degrees.
func ddmmToDecimalDegrees(raw string, negative bool) (float64, error) {
	if raw == "" {
		return 0, fmt.Errorf("nmea: empty coordinate: %w", gnsserr.ErrInvalidData)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("nmea: coordinate %q: %w", raw, gnsserr.ErrInvalidData)
	}
	degrees := float64(int(v / 100))
	minutes := (v/100 - degrees) * 100
	decimal := degrees + minutes/60
	if negative {
		decimal = -decimal
	}
	return decimal, nil
}

// rmcTimestamp reconstructs a UTC epoch-ms timestamp from the
// sentence's ddmmyy date and hhmmss(.sss) time fields. Unlike the
// firmware this module was modeled on, which mixed the host's local
// UTC offset into a value it still called UTC, this always returns true
// UTC milliseconds: the sentence's date/time fields are already UTC by
// the NMEA 0183 standard, and the output consumers expect epoch-UTC,
// not epoch-shifted-by-host-timezone.
func rmcTimestamp(date, clock string) (int64, error) {
	if len(date) < 6 || len(clock) < 6 {
		return 0, fmt.Errorf("nmea: rmc date/time field too short: %w", gnsserr.ErrInvalidData)
	}

	day, err1 := strconv.Atoi(date[0:2])
	month, err2 := strconv.Atoi(date[2:4])
	year, err3 := strconv.Atoi(date[4:6])
	hour, err4 := strconv.Atoi(clock[0:2])
	minute, err5 := strconv.Atoi(clock[2:4])
	secFloat, err6 := strconv.ParseFloat(clock[4:], 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil || err6 != nil {
		return 0, fmt.Errorf("nmea: rmc date/time: %w", gnsserr.ErrInvalidData)
	}

	sec := int(secFloat)
	nsec := int((secFloat - float64(sec)) * 1e9)
	t := time.Date(year+2000, time.Month(month), day, hour, minute, sec, nsec, time.UTC)
	return t.UnixMilli(), nil
}
