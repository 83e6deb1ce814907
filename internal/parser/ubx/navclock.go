package ubx

import (
	"encoding/binary"
	"fmt"

	"github.com/gnss-hal/core/internal/gnsserr"
)

const navClockBlockSize = 20

const (
	navClockOffsetITow         = 0
	navClockOffsetClockBias    = 4
	navClockOffsetClockDrift   = 8
	navClockOffsetTimeAccuracy = 12
	navClockOffsetFreqAccuracy = 16
)

// psToNsScale converts the wire's ps/s drift-accuracy field to ns/s.
const psToNsScale = 1000.0

// NavClockParcel is the parsed form of UBX-NAV-CLOCK.
type NavClockParcel struct {
	ITow                 uint32
	ClockBias            int32
	ClockDrift           int32
	TimeAccuracy         uint32
	FreqAccuracyEstimate uint32
}

func (NavClockParcel) isUbxParcel() {}

// ToGnssData folds the clock-bias/drift contribution into data, setting
// the clock flag bits the bias/drift fields satisfy.
func (p NavClockParcel) ToGnssData(data *GnssData) {
	data.ClockBiasNs = int64(p.ClockBias)
	data.ClockDriftNsps = float64(p.ClockDrift)
	data.ClockBiasUncertaintyNs = float64(p.TimeAccuracy)
	data.ClockDriftUncertaintyNsp = float64(p.FreqAccuracyEstimate) / psToNsScale
	data.ClockFlags |= ClockFlagHasBias | ClockFlagHasBiasUncertainty |
		ClockFlagHasDrift | ClockFlagHasDriftUncertainty
}

// ParseNavClock decodes an already checksum-validated NAV-CLOCK payload.
func ParseNavClock(payload []byte) (NavClockParcel, error) {
	if len(payload) != navClockBlockSize {
		return NavClockParcel{}, fmt.Errorf("ubx: nav-clock payload length %d, want %d: %w",
			len(payload), navClockBlockSize, gnsserr.ErrIncompletePacket)
	}
	return NavClockParcel{
		ITow:                 binary.LittleEndian.Uint32(payload[navClockOffsetITow:]),
		ClockBias:            int32(binary.LittleEndian.Uint32(payload[navClockOffsetClockBias:])),
		ClockDrift:           int32(binary.LittleEndian.Uint32(payload[navClockOffsetClockDrift:])),
		TimeAccuracy:         binary.LittleEndian.Uint32(payload[navClockOffsetTimeAccuracy:]),
		FreqAccuracyEstimate: binary.LittleEndian.Uint32(payload[navClockOffsetFreqAccuracy:]),
	}, nil
}
