package ubx

import (
	"fmt"

	"github.com/gnss-hal/core/internal/gnsserr"
)

const ackBlockSize = 2

const (
	ackOffsetClass = 0
	ackOffsetID    = 1
)

// AckParcel is the parsed form of an ACK-ACK or ACK-NACK message: the
// (class, id) of the command being acknowledged or rejected.
type AckParcel struct {
	Class    Class
	ID       ID
	Negative bool
}

func (AckParcel) isUbxParcel() {}

// ParseAck decodes an already checksum-validated ACK-ACK/ACK-NACK
// payload. negative selects which of the two message kinds is being
// parsed, since both share one 2-byte layout.
func ParseAck(payload []byte, negative bool) (AckParcel, error) {
	if len(payload) != ackBlockSize {
		return AckParcel{}, fmt.Errorf("ubx: ack payload length %d, want %d: %w",
			len(payload), ackBlockSize, gnsserr.ErrIncompletePacket)
	}
	return AckParcel{
		Class:    Class(payload[ackOffsetClass]),
		ID:       ID(payload[ackOffsetID]),
		Negative: negative,
	}, nil
}
