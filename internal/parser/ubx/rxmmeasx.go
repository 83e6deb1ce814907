package ubx

import (
	"encoding/binary"
	"fmt"

	"github.com/gnss-hal/core/internal/gnsserr"
)

const (
	rxmMeasxSingleBlockSize   = 44
	rxmMeasxRepeatedBlockSize = 24
	rxmMeasxMaxSvs            = 64
)

const (
	rxmMeasxOffsetVersion       = 0
	rxmMeasxOffsetGpsTOW        = 4
	rxmMeasxOffsetGlonassTOW    = 8
	rxmMeasxOffsetBdsTOW        = 12
	rxmMeasxOffsetQzssTOW       = 20
	rxmMeasxOffsetGpsTOWacc     = 24
	rxmMeasxOffsetGlonassTOWacc = 26
	rxmMeasxOffsetBdsTOWacc     = 28
	rxmMeasxOffsetQzssTOWacc    = 32
	rxmMeasxOffsetNumSvs        = 34
	rxmMeasxOffsetTOWset        = 35
)

const (
	rxmMeasxBlockOffsetGnssID = 0
	rxmMeasxBlockOffsetSvID   = 1
	rxmMeasxBlockOffsetCN0    = 2
	rxmMeasxBlockOffsetMPath  = 3
	rxmMeasxBlockOffsetPRR    = 4
)

// Satellite vehicle numbering ranges, per the u-blox 8 / M8 receiver
// description manual's UBX-RXM-MEASX section.
const (
	svRangeGpsFirst, svRangeGpsLast         = 1, 32
	svRangeSbasOneFirst, svRangeSbasOneLast = 120, 151
	svRangeSbasTwoFirst, svRangeSbasTwoLast = 183, 192
	svRangeGalileoFirst, svRangeGalileoLast = 1, 36
	svRangeQzssFirst, svRangeQzssLast       = 193, 200
	svRangeBdFirst, svRangeBdLast           = 1, 37
	svRangeGlonassFcnFirst                  = 93
	svRangeGlonassFcnLast                   = 106
	svRangeGlonassFirst, svRangeGlonassLast = 1, 24
)

const rxmMeasxScaleTowAcc = 16
const rxmMeasxPseudorangeRateScale = 0.04

type rxmMeasxSingleBlock struct {
	version       uint8
	numSvs        uint8
	gpsTOW        uint32
	glonassTOW    uint32
	bdsTOW        uint32
	qzssTOW       uint32
	gpsTOWacc     uint16
	glonassTOWacc uint16
	bdsTOWacc     uint16
	qzssTOWacc    uint16
	towSet        uint8
}

type rxmMeasxRepeatedBlock struct {
	gnssID          GnssID
	svID            uint8
	cn0             uint8
	multipath       uint8
	pseudorangeRate int32
}

// RxmMeasxParcel is the parsed form of UBX-RXM-MEASX: the satellite
// measurement set for one epoch.
type RxmMeasxParcel struct {
	single   rxmMeasxSingleBlock
	repeated []rxmMeasxRepeatedBlock
}

func (RxmMeasxParcel) isUbxParcel() {}

// ParseRxmMeasx decodes an already checksum-validated RXM-MEASX payload.
func ParseRxmMeasx(payload []byte) (RxmMeasxParcel, error) {
	if len(payload) < rxmMeasxSingleBlockSize ||
		len(payload) > rxmMeasxSingleBlockSize+rxmMeasxMaxSvs*rxmMeasxRepeatedBlockSize {
		return RxmMeasxParcel{}, fmt.Errorf("ubx: rxm-measx payload length %d out of range: %w",
			len(payload), gnsserr.ErrIncompletePacket)
	}

	single := parseRxmMeasxSingleBlock(payload)
	if int(single.numSvs) > rxmMeasxMaxSvs {
		return RxmMeasxParcel{}, fmt.Errorf("ubx: rxm-measx numSvs %d exceeds %d: %w",
			single.numSvs, rxmMeasxMaxSvs, gnsserr.ErrInvalidData)
	}

	rest := payload[rxmMeasxSingleBlockSize:]
	repeated := make([]rxmMeasxRepeatedBlock, 0, single.numSvs)
	offset := 0
	for i := 0; i < int(single.numSvs); i++ {
		if offset+rxmMeasxRepeatedBlockSize > len(rest) {
			return RxmMeasxParcel{}, fmt.Errorf("ubx: rxm-measx repeated block %d truncated: %w",
				i, gnsserr.ErrIncompletePacket)
		}
		repeated = append(repeated, parseRxmMeasxRepeatedBlock(rest[offset:]))
		offset += rxmMeasxRepeatedBlockSize
	}

	return RxmMeasxParcel{single: single, repeated: repeated}, nil
}

func parseRxmMeasxSingleBlock(in []byte) rxmMeasxSingleBlock {
	return rxmMeasxSingleBlock{
		version:       in[rxmMeasxOffsetVersion],
		numSvs:        in[rxmMeasxOffsetNumSvs],
		gpsTOW:        binary.LittleEndian.Uint32(in[rxmMeasxOffsetGpsTOW:]),
		glonassTOW:    binary.LittleEndian.Uint32(in[rxmMeasxOffsetGlonassTOW:]),
		bdsTOW:        binary.LittleEndian.Uint32(in[rxmMeasxOffsetBdsTOW:]),
		qzssTOW:       binary.LittleEndian.Uint32(in[rxmMeasxOffsetQzssTOW:]),
		gpsTOWacc:     binary.LittleEndian.Uint16(in[rxmMeasxOffsetGpsTOWacc:]),
		glonassTOWacc: binary.LittleEndian.Uint16(in[rxmMeasxOffsetGlonassTOWacc:]),
		bdsTOWacc:     binary.LittleEndian.Uint16(in[rxmMeasxOffsetBdsTOWacc:]),
		qzssTOWacc:    binary.LittleEndian.Uint16(in[rxmMeasxOffsetQzssTOWacc:]),
		towSet:        in[rxmMeasxOffsetTOWset],
	}
}

func parseRxmMeasxRepeatedBlock(in []byte) rxmMeasxRepeatedBlock {
	return rxmMeasxRepeatedBlock{
		gnssID:          GnssID(in[rxmMeasxBlockOffsetGnssID]),
		svID:            in[rxmMeasxBlockOffsetSvID],
		cn0:             in[rxmMeasxBlockOffsetCN0],
		multipath:       in[rxmMeasxBlockOffsetMPath],
		pseudorangeRate: int32(binary.LittleEndian.Uint32(in[rxmMeasxBlockOffsetPRR:])),
	}
}

// ToGnssData appends one Measurement per repeated block to data,
// normalizing svid and carrier frequency per constellation.
func (p RxmMeasxParcel) ToGnssData(data *GnssData) {
	for _, block := range p.repeated {
		m := Measurement{
			Constellation:      block.gnssID.toConstellation(),
			SVID:               validSvidForGnssID(block.gnssID, block.svID),
			CN0DbHz:            float64(block.cn0),
			MultipathPresent:   block.multipath != 0,
			PseudorangeRateMps: float64(block.pseudorangeRate) * rxmMeasxPseudorangeRateScale,
			// TODO(measurement-builder): a real uncertainty has never been
			// characterized for this receiver family; 0.075 mirrors the
			// placeholder the firmware this was modeled on carried.
			PseudorangeRateUncertainty: 0.075,
		}

		freq := carrierFrequencyForGnssID(block.gnssID)
		if freq > 0 {
			m.CarrierFrequencyHz = freq
			m.HasCarrierFrequency = true
		}

		tow, towState := towForGnssID(p.single, block.gnssID)
		m.ReceivedSvTimeNs = tow
		m.TowState = towState
		m.ReceivedSvTimeUncertainty = towAccForGnssID(p.single, block.gnssID, towState)

		data.Measurements = append(data.Measurements, m)
	}
}

func towForGnssID(single rxmMeasxSingleBlock, id GnssID) (int64, TowState) {
	var towMs uint32
	var state TowState
	switch id {
	case GnssIDGPS:
		towMs, state = single.gpsTOW, TowStateDecoded
	case GnssIDGlonass:
		towMs, state = single.glonassTOW, TowStateDecoded
	case GnssIDQZSS:
		towMs, state = single.qzssTOW, TowStateDecoded
	case GnssIDBeidou:
		towMs, state = single.bdsTOW, TowStateDecoded
	case GnssIDSBAS, GnssIDGalileo:
		towMs, state = single.gpsTOW, TowStateKnown
	default:
		return 0, TowStateUnknown
	}
	return int64(towMs) * msToNsMultiplier, state
}

func towAccForGnssID(single rxmMeasxSingleBlock, id GnssID, state TowState) int64 {
	if single.towSet == 0 || state == TowStateUnknown {
		return 0
	}
	var towAccMs uint16
	switch id {
	case GnssIDGPS:
		towAccMs = single.gpsTOWacc
	case GnssIDGlonass:
		towAccMs = single.glonassTOWacc
	case GnssIDQZSS:
		towAccMs = single.qzssTOWacc
	case GnssIDBeidou:
		towAccMs = single.bdsTOWacc
	case GnssIDSBAS, GnssIDGalileo:
		towAccMs = single.gpsTOWacc
	default:
		return 0
	}
	result := int64(towAccMs) / rxmMeasxScaleTowAcc * msToNsMultiplier
	if result <= 0 {
		return 1
	}
	return result
}

func carrierFrequencyForGnssID(id GnssID) float64 {
	switch id {
	case GnssIDGPS, GnssIDSBAS, GnssIDGalileo, GnssIDQZSS:
		return 1575.42e6
	case GnssIDBeidou:
		return 1561.098e6
	case GnssIDGlonass:
		return 1602.562e6
	default:
		return 0
	}
}

func inRange(value, begin, end uint8) uint8 {
	if value < begin || value > end {
		return begin
	}
	return value
}

func inRanges(value, beginFirst, endFirst, beginSecond, endSecond uint8) uint8 {
	if value >= beginFirst && value <= endFirst {
		return value
	}
	if value >= beginSecond && value <= endSecond {
		return value
	}
	return beginSecond
}

// validSvidForGnssID clamps svid into the valid numbering range for its
// constellation, substituting the range's first valid value (or, for
// GLONASS, falling back to the FCN-aliased range) when out of range.
func validSvidForGnssID(id GnssID, svid uint8) uint8 {
	switch id {
	case GnssIDGPS:
		return inRange(svid, svRangeGpsFirst, svRangeGpsLast)
	case GnssIDSBAS:
		return inRanges(svid, svRangeSbasOneFirst, svRangeSbasOneLast, svRangeSbasTwoFirst, svRangeSbasTwoLast)
	case GnssIDGalileo:
		return inRange(svid, svRangeGalileoFirst, svRangeGalileoLast)
	case GnssIDQZSS:
		return inRange(svid, svRangeQzssFirst, svRangeQzssLast)
	case GnssIDBeidou:
		return inRange(svid, svRangeBdFirst, svRangeBdLast)
	case GnssIDGlonass:
		return inRanges(svid, svRangeGlonassFirst, svRangeGlonassLast, svRangeGlonassFcnFirst, svRangeGlonassFcnLast)
	default:
		return svid
	}
}
