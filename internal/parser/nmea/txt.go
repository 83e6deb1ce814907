package nmea

import (
	"fmt"
	"strconv"

	"github.com/gnss-hal/core/internal/gnsserr"
)

const txtMinimalPartsCount = 5

const (
	txtOffsetMsgAmount = 1
	txtOffsetMsgNum    = 2
	txtOffsetSeverity  = 3
	txtOffsetText      = 4
)

// Severity is the TXT sentence's diagnostic level.
type Severity int

const (
	SeverityError   Severity = 0
	SeverityWarning Severity = 1
	SeverityNotice  Severity = 2
	SeverityUser    Severity = 7
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARNING"
	case SeverityNotice:
		return "NOTICE"
	case SeverityUser:
		return "USER"
	default:
		return "UNKNOWN"
	}
}

// TXTParcel is a diagnostic message from the receiver. It is logged,
// never forwarded to a builder.
type TXTParcel struct {
	MsgAmount int
	MsgNum    int
	Severity  Severity
	Text      string
}

func (TXTParcel) isNmeaParcel() {}

// ParseTXT decodes an already checksum-validated TXT body.
func ParseTXT(body string) (TXTParcel, error) {
	fields := splitFields(body)
	if len(fields) < txtMinimalPartsCount {
		return TXTParcel{}, fmt.Errorf("nmea: txt field count %d, want at least %d: %w",
			len(fields), txtMinimalPartsCount, gnsserr.ErrIncompletePacket)
	}

	amount, err1 := strconv.Atoi(fields[txtOffsetMsgAmount])
	num, err2 := strconv.Atoi(fields[txtOffsetMsgNum])
	severity, err3 := strconv.Atoi(fields[txtOffsetSeverity])
	if err1 != nil || err2 != nil || err3 != nil {
		return TXTParcel{}, fmt.Errorf("nmea: txt header fields: %w", gnsserr.ErrInvalidData)
	}

	return TXTParcel{
		MsgAmount: amount,
		MsgNum:    num,
		Severity:  Severity(severity),
		Text:      fields[txtOffsetText],
	}, nil
}
