package nmea

import (
	"fmt"
	"strconv"

	"github.com/gnss-hal/core/internal/gnsserr"
)

var pubx00PartsCount = [versionCount]int{21, 21, 21}

const (
	pubx00OffsetMsgID              = 1
	pubx00OffsetHorizontalAccuracy = 9
	pubx00OffsetVerticalAccuracy   = 10

	pubx00MsgID = "00"
)

// PUBX00Parcel is the parsed form of a PUBX,00 sentence: horizontal and
// vertical accuracy reported directly by the receiver, which override
// GGA's HDOP-derived estimate.
type PUBX00Parcel struct {
	HasHorizontal bool
	Horizontal    float32
	HasVertical   bool
	Vertical      float32
}

func (PUBX00Parcel) isNmeaParcel() {}

// ToExtra converts the PUBX,00 reading into an Extra record. Only the
// fields actually present in the sentence are marked present; the
// location builder merges this on top of a GGA-derived Extra so the
// absent side keeps its GGA value.
func (p PUBX00Parcel) ToExtra() (Extra, bool) {
	return Extra{
		HasHorizontalAccuracy: p.HasHorizontal,
		HorizontalAccuracy:    p.Horizontal,
		HasVerticalAccuracy:   p.HasVertical,
		VerticalAccuracy:      p.Vertical,
	}, true
}

// ParsePUBX00 decodes an already checksum-validated PUBX,00 body.
func ParsePUBX00(body string, version Version) (PUBX00Parcel, error) {
	fields := splitFields(body)
	if len(fields) != pubx00PartsCount[version] {
		return PUBX00Parcel{}, fmt.Errorf("nmea: pubx00 field count %d, want %d: %w",
			len(fields), pubx00PartsCount[version], gnsserr.ErrIncompletePacket)
	}
	if fields[pubx00OffsetMsgID] != pubx00MsgID {
		return PUBX00Parcel{}, fmt.Errorf("nmea: not a pubx,00 message: %w", gnsserr.ErrInvalidData)
	}

	var p PUBX00Parcel
	if fields[pubx00OffsetHorizontalAccuracy] != "" {
		v, err := strconv.ParseFloat(fields[pubx00OffsetHorizontalAccuracy], 32)
		if err != nil {
			return PUBX00Parcel{}, fmt.Errorf("nmea: pubx00 horizontal accuracy: %w", gnsserr.ErrInvalidData)
		}
		p.HasHorizontal = true
		p.Horizontal = float32(v)
	}
	if fields[pubx00OffsetVerticalAccuracy] != "" {
		v, err := strconv.ParseFloat(fields[pubx00OffsetVerticalAccuracy], 32)
		if err != nil {
			return PUBX00Parcel{}, fmt.Errorf("nmea: pubx00 vertical accuracy: %w", gnsserr.ErrInvalidData)
		}
		p.HasVertical = true
		p.Vertical = float32(v)
	}

	return p, nil
}
