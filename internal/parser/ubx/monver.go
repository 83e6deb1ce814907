package ubx

import (
	"bytes"
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/gnss-hal/core/internal/gnsserr"
)

const (
	monVerSwVersionLen = 30
	monVerHwVersionLen = 10
	monVerExtensionLen = 30
)

// knownSoftwareVersions is the small set of firmware families the
// configurator knows a command sequence for.
var knownSoftwareVersions = []float64{1.00, 2.01, 3.01}

var swVersionPattern = regexp.MustCompile(`\d\.\d\d`)

// MonVerParcel is the parsed form of UBX-MON-VER: the software version
// double the configurator dispatches its command sequence on, plus the
// extension strings the receiver reports for diagnostics.
type MonVerParcel struct {
	SwVersion  float64
	Extensions []string
}

func (MonVerParcel) isUbxParcel() {}

// ParseMonVer decodes an already checksum-validated MON-VER payload. The
// version is detected by a regex anywhere in the leading sw-version
// field; the parcel is only valid (no error) when the detected value
// matches one of the known software families within 0.001.
func ParseMonVer(payload []byte) (MonVerParcel, error) {
	if len(payload) < monVerSwVersionLen+monVerHwVersionLen {
		return MonVerParcel{}, fmt.Errorf("ubx: mon-ver payload length %d too short: %w",
			len(payload), gnsserr.ErrIncompletePacket)
	}

	swField := cString(payload[:monVerSwVersionLen])
	match := swVersionPattern.FindString(swField)
	if match == "" {
		return MonVerParcel{}, fmt.Errorf("ubx: mon-ver no version pattern in %q: %w", swField, gnsserr.ErrInvalidData)
	}
	version, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return MonVerParcel{}, fmt.Errorf("ubx: mon-ver version %q: %w", match, gnsserr.ErrInvalidData)
	}

	known := false
	for _, v := range knownSoftwareVersions {
		if math.Abs(v-version) < 0.001 {
			known = true
			break
		}
	}
	if !known {
		return MonVerParcel{}, fmt.Errorf("ubx: mon-ver unknown software version %v: %w", version, gnsserr.ErrInvalidData)
	}

	var extensions []string
	offset := monVerSwVersionLen + monVerHwVersionLen
	for offset+monVerExtensionLen <= len(payload) {
		extensions = append(extensions, cString(payload[offset:offset+monVerExtensionLen]))
		offset += monVerExtensionLen
	}

	return MonVerParcel{SwVersion: version, Extensions: extensions}, nil
}

// cString trims a fixed-width NUL-padded field to its text content.
func cString(field []byte) string {
	if i := bytes.IndexByte(field, 0); i >= 0 {
		return string(field[:i])
	}
	return string(field)
}
