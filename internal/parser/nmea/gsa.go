package nmea

import (
	"fmt"
	"strconv"

	"github.com/gnss-hal/core/internal/constellation"
	"github.com/gnss-hal/core/internal/gnsserr"
)

var gsaPartsCount = [versionCount]int{18, 19, 19}

const (
	gsaOffsetSvBegin  = 3
	gsaOffsetSvEnd    = 15
	gsaOffsetSystemID = 18
)

// GSAParcel is the parsed form of a GxGSA sentence: the set of svids
// the receiver is using in the current position fix, for one
// constellation.
type GSAParcel struct {
	Constellation constellation.ID
	SVIDs         []int
}

func (GSAParcel) isNmeaParcel() {}

// ParseGSA decodes an already checksum-validated GSA body.
// talkerConstellation is used as the constellation id for protocols
// older than V41, which carry no explicit system-id field.
func ParseGSA(body string, version Version, talkerConstellation constellation.ID) (GSAParcel, error) {
	fields := splitFields(body)
	if len(fields) != gsaPartsCount[version] {
		return GSAParcel{}, fmt.Errorf("nmea: gsa field count %d, want %d: %w",
			len(fields), gsaPartsCount[version], gnsserr.ErrIncompletePacket)
	}

	p := GSAParcel{Constellation: talkerConstellation}
	if version >= V41 {
		id, err := strconv.Atoi(fields[gsaOffsetSystemID])
		if err != nil {
			return GSAParcel{}, fmt.Errorf("nmea: gsa system id: %w", gnsserr.ErrInvalidData)
		}
		p.Constellation = systemIDToConstellation(id - 1)
	}

	for i := gsaOffsetSvBegin; i < gsaOffsetSvEnd; i++ {
		if fields[i] == "" {
			break
		}
		svid, err := strconv.Atoi(fields[i])
		if err != nil {
			return GSAParcel{}, fmt.Errorf("nmea: gsa svid: %w", gnsserr.ErrInvalidData)
		}
		p.SVIDs = append(p.SVIDs, svid)
	}

	return p, nil
}

// systemIDToConstellation maps the zero-based NMEA 4.11 GSA system-id
// field (1=GPS, 2=GLONASS, 3=Galileo, 4=BeiDou, 5=QZSS on the wire, so
// zero-based here) into this module's constellation space, so a v4.1+
// GSA's constellation lines up with the talker-prefix-derived id a GSV
// from the same receiver would carry.
func systemIDToConstellation(zeroBased int) constellation.ID {
	switch zeroBased {
	case 0:
		return constellation.GPS
	case 1:
		return constellation.GLONASS
	case 2:
		return constellation.GALILEO
	case 3:
		return constellation.BEIDOU
	case 4:
		return constellation.QZSS
	default:
		return constellation.Unknown
	}
}
