package nmea

import (
	"fmt"

	"github.com/gnss-hal/core/internal/gnsserr"
)

// validateFrame checks the structural rule from spec §4.4: begins with
// '$', ends with '\n', and '*' sits right before the two checksum digits
// (the framed reader keeps any '\r' before the terminating '\n', so the
// trailing shape is "...*hh\r\n" or "...*hh\n"); then XORs every byte
// between '$' (exclusive) and '*' (exclusive) and compares it to the two
// hex digits.
//
// It returns the sentence body (talker+type through the last field,
// '$' and checksum suffix stripped) on success.
func validateFrame(raw []byte) (string, error) {
	if len(raw) < 7 || raw[0] != '$' || raw[len(raw)-1] != '\n' {
		return "", fmt.Errorf("nmea: malformed frame: %w", gnsserr.ErrIncompletePacket)
	}
	starPos := len(raw) - 4
	if raw[len(raw)-2] == '\r' {
		starPos--
	}
	if raw[starPos] != '*' {
		return "", fmt.Errorf("nmea: missing checksum delimiter: %w", gnsserr.ErrIncompletePacket)
	}

	var sum byte
	for _, b := range raw[1:starPos] {
		sum ^= b
	}

	wantHi, okHi := hexDigit(raw[starPos+1])
	wantLo, okLo := hexDigit(raw[starPos+2])
	if !okHi || !okLo {
		return "", fmt.Errorf("nmea: bad checksum digits: %w", gnsserr.ErrBadChecksum)
	}
	want := wantHi<<4 | wantLo
	if want != sum {
		return "", fmt.Errorf("nmea: checksum mismatch: %w", gnsserr.ErrBadChecksum)
	}

	return string(raw[1:starPos]), nil
}

func hexDigit(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	default:
		return 0, false
	}
}
