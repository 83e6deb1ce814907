package nmea

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gnss-hal/core/internal/constellation"
	"github.com/gnss-hal/core/internal/gnsserr"
)

var gsvMinimalPartsCount = [versionCount]int{7, 8, 8}

const (
	gsvOffsetTalkerType = 0
	gsvOffsetMsgAmount  = 1
	gsvOffsetMsgNum     = 2
	gsvOffsetNumInView  = 3

	gsvSingleBlockFields   = 4
	gsvRepeatedBlockFields = 4
)

// GSVSatellite is one repeated-block entry of a GSV sentence: a single
// satellite's visibility record.
type GSVSatellite struct {
	SVID          int // normalized into this module's constellation-relative numbering
	OrigSVID      int
	Constellation constellation.ID
	Elevation     int
	Azimuth       int
	CN0           int
}

// GSVParcel is one message of a (possibly multi-message) GSV group.
type GSVParcel struct {
	Constellation       constellation.ID
	HasCarrier          bool
	CarrierFrequency    float64
	MsgAmount           int
	MsgNum              int
	NumSatellitesInView int
	Satellites          []GSVSatellite
}

func (GSVParcel) isNmeaParcel() {}

// ParseGSV decodes an already checksum-validated GSV body. talker is
// the raw three-character talker+sentinel prefix (e.g. "$GP") used to
// pick the constellation and carrier frequency.
func ParseGSV(body, talker string, version Version) (GSVParcel, error) {
	fields := splitFields(body)
	if len(fields) < gsvMinimalPartsCount[version] {
		return GSVParcel{}, fmt.Errorf("nmea: gsv field count %d, want at least %d: %w",
			len(fields), gsvMinimalPartsCount[version], gnsserr.ErrIncompletePacket)
	}

	p, err := gsvSingleBlock(talker)
	if err != nil {
		return GSVParcel{}, err
	}

	msgAmount, err1 := strconv.Atoi(fields[gsvOffsetMsgAmount])
	msgNum, err2 := strconv.Atoi(fields[gsvOffsetMsgNum])
	numInView, err3 := strconv.Atoi(fields[gsvOffsetNumInView])
	if err1 != nil || err2 != nil || err3 != nil {
		return GSVParcel{}, fmt.Errorf("nmea: gsv header fields: %w", gnsserr.ErrInvalidData)
	}
	p.MsgAmount = msgAmount
	p.MsgNum = msgNum
	p.NumSatellitesInView = numInView

	rest := fields[gsvSingleBlockFields:]
	for len(rest) >= gsvRepeatedBlockFields {
		sat, err := parseGSVBlock(rest[:gsvRepeatedBlockFields], p.Constellation)
		if err != nil {
			return GSVParcel{}, err
		}
		p.Satellites = append(p.Satellites, sat)
		rest = rest[gsvRepeatedBlockFields:]
	}

	return p, nil
}

func gsvSingleBlock(talker string) (GSVParcel, error) {
	p := GSVParcel{HasCarrier: true}
	switch {
	case strings.HasPrefix(talker, "$GP"):
		p.Constellation = constellation.GPS
		p.CarrierFrequency = constellation.L1BandHz
	case strings.HasPrefix(talker, "$GL"):
		p.Constellation = constellation.GLONASS
		p.CarrierFrequency = constellation.L1GlonassBandHz
	case strings.HasPrefix(talker, "$GA"):
		p.Constellation = constellation.GALILEO
		p.CarrierFrequency = constellation.L1BandHz
	case strings.HasPrefix(talker, "$GB"):
		p.Constellation = constellation.BEIDOU
		p.CarrierFrequency = constellation.B1BandHz
	case strings.HasPrefix(talker, "$GN"):
		p.Constellation = constellation.Unknown
		p.HasCarrier = false
	default:
		return GSVParcel{}, fmt.Errorf("nmea: gsv unknown talker %q: %w", talker, gnsserr.ErrInvalidData)
	}
	return p, nil
}

// parseGSVBlock normalizes a raw wire svid into this module's
// constellation-relative numbering:
//   - GLONASS 65..88 -> svid-64, else reported as 93.
//   - GPS 1..32 -> GPS; SBAS 33..64 -> SBAS, svid+=87; SBAS 152..158 ->
//     SBAS, svid+=31; QZSS 193..197 -> QZSS.
//   - GALILEO 1..36 -> GALILEO.
func parseGSVBlock(fields []string, group constellation.ID) (GSVSatellite, error) {
	svid, err1 := strconv.Atoi(fields[0])
	elevation, err2 := strconv.Atoi(fields[1])
	azimuth, err3 := strconv.Atoi(fields[2])
	cn0, err4 := strconv.Atoi(fields[3])
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return GSVSatellite{}, fmt.Errorf("nmea: gsv satellite block: %w", gnsserr.ErrInvalidData)
	}

	sat := GSVSatellite{OrigSVID: svid, Elevation: elevation, Azimuth: azimuth, CN0: cn0}

	switch {
	case svid >= 1 && svid <= 32 && group == constellation.GPS:
		sat.Constellation = constellation.GPS
		sat.SVID = svid
	case svid >= 1 && svid <= 36 && group == constellation.GALILEO:
		sat.Constellation = constellation.GALILEO
		sat.SVID = svid
	case group == constellation.GLONASS:
		sat.Constellation = constellation.GLONASS
		if svid >= 65 && svid <= 88 {
			sat.SVID = svid - 64
		} else {
			sat.SVID = 93
		}
	case group == constellation.BEIDOU:
		sat.Constellation = constellation.BEIDOU
		sat.SVID = svid
	case svid >= 33 && svid <= 64:
		sat.Constellation = constellation.SBAS
		sat.SVID = svid + 87
	case svid >= 152 && svid <= 158:
		sat.Constellation = constellation.SBAS
		sat.SVID = svid + 31
	case svid >= 193 && svid <= 197:
		sat.Constellation = constellation.QZSS
		sat.SVID = svid
	default:
		sat.Constellation = constellation.Unknown
		sat.SVID = svid
	}

	return sat, nil
}
