package ubx

import (
	"encoding/binary"
	"fmt"

	"github.com/gnss-hal/core/internal/gnsserr"
)

const navStatusBlockSize = 16

const (
	navStatusOffsetITow = 0
	navStatusOffsetMsss = 12
)

const msToNsMultiplier = int64(1000000)

// NavStatusParcel is the parsed form of UBX-NAV-STATUS.
type NavStatusParcel struct {
	ITow uint32
	Msss uint32
}

func (NavStatusParcel) isUbxParcel() {}

// ToGnssData refines data's clock time so the emitted time_ns equals the
// derived msss-based value: full_bias -= (time_ns - msss_ns); time_ns = msss_ns.
func (p NavStatusParcel) ToGnssData(data *GnssData) {
	msssNs := int64(p.Msss) * msToNsMultiplier
	data.ClockFullBiasNs -= data.ClockTimeNs - msssNs
	data.ClockTimeNs = msssNs
}

// ParseNavStatus decodes an already checksum-validated NAV-STATUS payload.
func ParseNavStatus(payload []byte) (NavStatusParcel, error) {
	if len(payload) != navStatusBlockSize {
		return NavStatusParcel{}, fmt.Errorf("ubx: nav-status payload length %d, want %d: %w",
			len(payload), navStatusBlockSize, gnsserr.ErrIncompletePacket)
	}
	return NavStatusParcel{
		ITow: binary.LittleEndian.Uint32(payload[navStatusOffsetITow:]),
		Msss: binary.LittleEndian.Uint32(payload[navStatusOffsetMsss:]),
	}, nil
}
