package ubx

import (
	"encoding/binary"
	"fmt"

	"github.com/gnss-hal/core/internal/gnsserr"
)

const navPvtBlockSize = 84

const (
	navPvtOffsetFixType       = 20
	navPvtOffsetFlag1         = 21
	navPvtOffsetFlag2         = 22
	navPvtOffsetNumSvs        = 23
	navPvtOffsetLon           = 24
	navPvtOffsetLat           = 28
	navPvtOffsetHeightMSL     = 36
	navPvtOffsetHorizontalAcc = 40
	navPvtOffsetVerticalAcc   = 44
	navPvtOffsetGroundSpeed   = 60
	navPvtOffsetHeadingMotion = 64
	navPvtOffsetSpeedAcc      = 68
	navPvtOffsetHeadingAcc    = 72
)

// NavPvtParcel is the parsed form of UBX-NAV-PVT.
type NavPvtParcel struct {
	FixType         uint8
	Flag1           uint8
	Flag2           uint8
	NumSvs          uint8
	LonE7           int32
	LatE7           int32
	HeightMSLmm     int32
	HorizontalAccMm uint32
	VerticalAccMm   uint32
	GroundSpeedMmps int32
	HeadingOfMotion int32
	SpeedAccMmps    uint32
	HeadingAcc      uint32
}

func (NavPvtParcel) isUbxParcel() {}

// ParseNavPvt decodes an already checksum-validated NAV-PVT payload.
//
// The firmware this module was modeled on checked
// `payloadLen >= blockSize` and treated that as the incomplete-packet
// case — backwards, since it rejected every payload at least as long as
// the block it needed and accepted only short ones. This always requires
// `payloadLen >= blockSize`.
func ParseNavPvt(payload []byte) (NavPvtParcel, error) {
	if len(payload) < navPvtBlockSize {
		return NavPvtParcel{}, fmt.Errorf("ubx: nav-pvt payload length %d, want at least %d: %w",
			len(payload), navPvtBlockSize, gnsserr.ErrIncompletePacket)
	}

	return NavPvtParcel{
		FixType:         payload[navPvtOffsetFixType],
		Flag1:           payload[navPvtOffsetFlag1],
		Flag2:           payload[navPvtOffsetFlag2],
		NumSvs:          payload[navPvtOffsetNumSvs],
		LonE7:           int32(binary.LittleEndian.Uint32(payload[navPvtOffsetLon:])),
		LatE7:           int32(binary.LittleEndian.Uint32(payload[navPvtOffsetLat:])),
		HeightMSLmm:     int32(binary.LittleEndian.Uint32(payload[navPvtOffsetHeightMSL:])),
		HorizontalAccMm: binary.LittleEndian.Uint32(payload[navPvtOffsetHorizontalAcc:]),
		VerticalAccMm:   binary.LittleEndian.Uint32(payload[navPvtOffsetVerticalAcc:]),
		GroundSpeedMmps: int32(binary.LittleEndian.Uint32(payload[navPvtOffsetGroundSpeed:])),
		HeadingOfMotion: int32(binary.LittleEndian.Uint32(payload[navPvtOffsetHeadingMotion:])),
		SpeedAccMmps:    binary.LittleEndian.Uint32(payload[navPvtOffsetSpeedAcc:]),
		HeadingAcc:      binary.LittleEndian.Uint32(payload[navPvtOffsetHeadingAcc:]),
	}, nil
}
