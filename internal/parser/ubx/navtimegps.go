package ubx

import (
	"encoding/binary"
	"fmt"

	"github.com/gnss-hal/core/internal/gnsserr"
)

const navTimeGpsBlockSize = 16

const (
	navTimeGpsOffsetITow  = 0
	navTimeGpsOffsetFTow  = 4
	navTimeGpsOffsetWeek  = 8
	navTimeGpsOffsetLeapS = 10
	navTimeGpsOffsetValid = 11
	navTimeGpsOffsetTAcc  = 12
)

const (
	navTimeGpsValidTowMask  uint8 = 0x01
	navTimeGpsValidWeekMask uint8 = 0x02
	navTimeGpsValidLeapMask uint8 = 0x04
)

const fullWeekMs int64 = 604800000

// NavTimeGpsParcel is the parsed form of UBX-NAV-TIMEGPS.
type NavTimeGpsParcel struct {
	ITow  uint32
	FTow  int32
	Week  int16
	LeapS int8
	Valid uint8
	TAcc  uint32
}

func (NavTimeGpsParcel) isUbxParcel() {}

// ParseNavTimeGps decodes an already checksum-validated NAV-TIMEGPS
// payload. It returns gnsserr.ErrInvalidData when the week/TOW validity
// flags are not both set, since no reliable time can be derived then.
func ParseNavTimeGps(payload []byte) (NavTimeGpsParcel, error) {
	if len(payload) != navTimeGpsBlockSize {
		return NavTimeGpsParcel{}, fmt.Errorf("ubx: nav-timegps payload length %d, want %d: %w",
			len(payload), navTimeGpsBlockSize, gnsserr.ErrIncompletePacket)
	}

	p := NavTimeGpsParcel{
		ITow:  binary.LittleEndian.Uint32(payload[navTimeGpsOffsetITow:]),
		FTow:  int32(binary.LittleEndian.Uint32(payload[navTimeGpsOffsetFTow:])),
		Week:  int16(binary.LittleEndian.Uint16(payload[navTimeGpsOffsetWeek:])),
		LeapS: int8(payload[navTimeGpsOffsetLeapS]),
		Valid: payload[navTimeGpsOffsetValid],
		TAcc:  binary.LittleEndian.Uint32(payload[navTimeGpsOffsetTAcc:]),
	}

	validTow := p.Valid&navTimeGpsValidTowMask == navTimeGpsValidTowMask
	validWeek := p.Valid&navTimeGpsValidWeekMask == navTimeGpsValidWeekMask
	if !validTow || !validWeek {
		return NavTimeGpsParcel{}, fmt.Errorf("ubx: nav-timegps week/tow not both valid: %w", gnsserr.ErrInvalidData)
	}

	return p, nil
}

// ToGnssData reconstructs the GPS-epoch clock time and sets the clock
// flag bits the TIMEGPS fields satisfy.
func (p NavTimeGpsParcel) ToGnssData(data *GnssData) {
	gpsTimeNs := int64(p.Week) * fullWeekMs * msToNsMultiplier
	towNs := int64(p.ITow)*msToNsMultiplier + int64(p.FTow)
	data.ClockTimeNs = gpsTimeNs + towNs
	data.ClockBiasNs = int64(p.FTow)
	data.ClockBiasUncertaintyNs = float64(p.TAcc)
	data.ClockTimeUncertaintyNs = float64(p.TAcc)
	data.LeapSecond = p.LeapS
	data.ClockFlags |= ClockFlagHasTimeUncertainty | ClockFlagHasFullBias
	if p.Valid&navTimeGpsValidLeapMask == navTimeGpsValidLeapMask {
		data.ClockFlags |= ClockFlagHasLeapSecond
	}
}
