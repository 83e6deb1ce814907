package configurator

import (
	"encoding/binary"

	"github.com/gnss-hal/core/internal/config"
	"github.com/gnss-hal/core/internal/parser/ubx"
)

// cfgDefaultRate and cfgDisableRate are the per-port rate bytes
// UbxSetMessageRate embeds in a CFG-MSG body.
const (
	cfgDefaultRate uint8 = 1
	cfgDisableRate uint8 = 0
)

// gnssMaskMutationIndex locates, within a CFG-GNSS body, the entry-size
// and the per-constellation entry offsets (SBAS, BEIDOU, GLONASS) that
// prepareGnssMask mutates.
type gnssMaskMutationIndex struct {
	entrySize int
	sbas      int
	beidou    int
	glonass   int
}

var (
	cfgIndexSPG201 = gnssMaskMutationIndex{entrySize: 8, sbas: 2, beidou: 3, glonass: 5}
	cfgIndexSPG301 = gnssMaskMutationIndex{entrySize: 8, sbas: 2, beidou: 4, glonass: 7}
)

// Byte offsets within one CFG-GNSS constellation entry.
const (
	gnssEntryOffsetMinChannels = 1
	gnssEntryOffsetEnable      = 4
)

// msgPollMonVer polls UBX-MON-VER. class=MON(0x0A), id=VER(0x04), no
// payload.
var msgPollMonVer = []byte{0x0A, 0x04, 0x00, 0x00}

// cfgReset issues a controlled software reset (GNSS only). Byte 6 (the
// reset mode) is filled in by buildCfgReset.
var cfgReset = []byte{0x06, 0x04, 0x04, 0x00, 0xFF, 0xFF, 0x00, 0x00}

const cfgResetModeOffset = 6
const cfgResetModeGnssOnly byte = 0x02

func buildCfgReset() []byte {
	body := append([]byte(nil), cfgReset...)
	body[cfgResetModeOffset] = cfgResetModeGnssOnly
	return body
}

// cfgClear is CFG-CFG: clear the saved configuration back to defaults.
var cfgClear = []byte{
	0x06, 0x09, 0x0D, 0x00, 0xFE, 0xFF, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0xFE, 0xFF, 0x00, 0x00,
	0x17,
}

// cfgNav5 is CFG-NAV5: dynamic model, fix mode, and the rest of the
// navigation-engine settings. The defaults here match the receiver's
// power-on values; the configurator doesn't otherwise tune it.
var cfgNav5 = []byte{
	0x06, 0x24, 0x24, 0x00, 0xFF, 0xFF, 0x04, 0x02,
	0x00, 0x00, 0x00, 0x00, 0x10, 0x27, 0x00, 0x00,
	0x05, 0x00, 0xFA, 0x00, 0xFA, 0x00, 0x64, 0x00,
	0x5E, 0x01, 0x00, 0x3C, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
}

// cfgNmea23 and cfgNmea41 are CFG-NMEA, selecting NMEA protocol version
// 2.3 (SPG100 receivers) or 4.1 (SPG201/SPG301).
var cfgNmea23 = []byte{
	0x06, 0x17, 0x0C, 0x00, 0x20, 0x23, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x01,
}

var cfgNmea41 = []byte{
	0x06, 0x17, 0x0F, 0x00, 0x20, 0x41, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x01,
	0x00, 0x00, 0x00,
}

// cfgGnssSPG100/201/301 are CFG-GNSS, one fixed entry per constellation
// the corresponding firmware generation knows about. 201/301 carry a
// mutable SBAS/BEIDOU/GLONASS entry that prepareGnssMask adjusts from
// the host's secmajor/sbas configuration before sending.
var cfgGnssSPG100 = []byte{
	0x06, 0x3E, 0x24, 0x00, 0x00, 0x16, 0x16, 0x04,
	0x00, 0x04, 0xFF, 0x00, 0x01, 0x00, 0x00, 0x00, // GPS
	0x01, 0x00, 0x03, 0x00, 0x01, 0x00, 0x00, 0x00, // SBAS
	0x05, 0x00, 0x03, 0x00, 0x01, 0x00, 0x00, 0x00, // QZSS
	0x06, 0x00, 0xFF, 0x00, 0x00, 0x00, 0x00, 0x00, // GLONASS
}

var cfgGnssSPG201 = []byte{
	0x06, 0x3E, 0x2C, 0x00, 0x00, 0x20, 0x20, 0x05,
	0x00, 0x08, 0x10, 0x00, 0x01, 0x00, 0x01, 0x01, // GPS
	0x01, 0x01, 0x03, 0x00, 0x01, 0x00, 0x01, 0x01, // SBAS
	0x03, 0x00, 0x10, 0x00, 0x00, 0x00, 0x01, 0x01, // BEIDOU
	0x05, 0x00, 0x03, 0x00, 0x01, 0x00, 0x01, 0x05, // QZSS
	0x06, 0x00, 0x0E, 0x00, 0x00, 0x00, 0x01, 0x01, // GLONASS
}

var cfgGnssSPG301 = []byte{
	0x06, 0x3E, 0x3C, 0x00, 0x00, 0x20, 0x20, 0x07,
	0x00, 0x08, 0x10, 0x00, 0x01, 0x00, 0x01, 0x01, // GPS
	0x01, 0x01, 0x03, 0x00, 0x01, 0x00, 0x01, 0x01, // SBAS
	0x02, 0x04, 0x08, 0x00, 0x01, 0x00, 0x01, 0x01, // GALILEO
	0x03, 0x00, 0x10, 0x00, 0x00, 0x00, 0x01, 0x01, // BEIDOU
	0x04, 0x00, 0x08, 0x00, 0x00, 0x00, 0x01, 0x03, // IMES
	0x05, 0x00, 0x03, 0x00, 0x01, 0x00, 0x01, 0x05, // QZSS
	0x06, 0x00, 0x0E, 0x00, 0x00, 0x00, 0x01, 0x01, // GLONASS
}

// prepareGnssMask copies base and mutates its SBAS/secondary-major
// constellation entries per secMajor/sbas, mirroring the original
// firmware's default: GPS plus GALILEO/QZSS always on, SBAS on unless
// disabled, and at most one of GLONASS/BEIDOU enabled as the secondary
// major system.
func prepareGnssMask(base []byte, idx gnssMaskMutationIndex, secMajor config.SecMajor, sbas config.SBASMode) []byte {
	out := append([]byte(nil), base...)

	entryOffset := func(entry int) int { return idx.entrySize * entry }

	if sbas == config.SBASDisabled {
		out[entryOffset(idx.sbas)+gnssEntryOffsetMinChannels] = 0x00
		out[entryOffset(idx.sbas)+gnssEntryOffsetEnable] = 0x00
	}

	switch secMajor {
	case config.SecMajorGlonass:
		out[entryOffset(idx.glonass)+gnssEntryOffsetMinChannels] = 0x08
		out[entryOffset(idx.glonass)+gnssEntryOffsetEnable] = 0x01
	case config.SecMajorBeidou:
		out[entryOffset(idx.beidou)+gnssEntryOffsetMinChannels] = 0x08
		out[entryOffset(idx.beidou)+gnssEntryOffsetEnable] = 0x01
	}

	return out
}

// buildCfgMsgRate is CFG-MSG: set the output rate of one (class, id)
// message pair on the current port.
func buildCfgMsgRate(class ubx.Class, id ubx.ID, rate uint8) []byte {
	return []byte{
		0x06, 0x01, 0x08, 0x00, byte(class), byte(id), rate, rate,
		0x00, rate, rate, 0x00,
	}
}

// UBX classes/ids the configurator references beyond the ones
// internal/parser/ubx already defines for parsing.
const (
	classCFG      ubx.Class = 0x06
	classNmeaCfg  ubx.Class = 0xF0
	classNmeaPubx ubx.Class = 0xF1

	idClear ubx.ID = 0x09
	idNmea  ubx.ID = 0x17
	idNav5  ubx.ID = 0x24
	idGnss  ubx.ID = 0x3E
	idReset ubx.ID = 0x04
	idRate  ubx.ID = 0x01

	idNmeaGLL ubx.ID = 0x01
	idNmeaVTG ubx.ID = 0x05
	idNmeaRMC ubx.ID = 0x04
	idPubx00  ubx.ID = 0x00

	idPrt ubx.ID = 0x00
)

// cfgPrtPortID is the GNSS UART port index CFG-PRT addresses.
const cfgPrtPortID uint8 = 1

// cfgPrtMode8N1 is the CFG-PRT UART mode word for 8 data bits, no
// parity, 1 stop bit: charLen(3<<6) | parity(1<<11); nStopBits is 0.
const cfgPrtMode8N1 uint32 = 1<<11 | 3<<6

// cfgPrtProtoMask enables NMEA and UBX on the port; RTCM is left off.
const (
	cfgPrtProtoUBX  uint8 = 0x01
	cfgPrtProtoNMEA uint8 = 0x02
	cfgPrtProtoMask       = cfgPrtProtoUBX | cfgPrtProtoNMEA
)

// buildCfgPrt is CFG-PRT (UART): reconfigure the receiver's port mode
// and baud rate. negotiateBaud sends this, switches the local line rate
// to match, and then waits for its ACK.
func buildCfgPrt(port uint8, baud uint32) []byte {
	const cfgPrtPayloadLen = 20
	body := make([]byte, 4+cfgPrtPayloadLen)
	body[0] = byte(classCFG)
	body[1] = byte(idPrt)
	body[2] = cfgPrtPayloadLen
	body[3] = 0x00

	payload := body[4:]
	payload[0] = port
	binary.LittleEndian.PutUint32(payload[4:8], cfgPrtMode8N1)
	binary.LittleEndian.PutUint32(payload[8:12], baud)
	payload[12] = cfgPrtProtoMask
	payload[14] = cfgPrtProtoMask
	return body
}
