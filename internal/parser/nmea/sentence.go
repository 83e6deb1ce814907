// Package nmea implements the NMEA 0183 parser family and dispatcher:
// checksum validation, field splitting, and one parser per sentence
// kind (RMC, GGA, GSA, GSV, TXT, PUBX,00).
package nmea

import "strings"

// Version selects the field layout a sentence was emitted under; older
// and newer U-Blox firmware families emit different field counts for
// the same sentence kind.
type Version int

const (
	V23 Version = iota
	V40
	V41
	versionCount
)

// Parcel is the closed sum type every NMEA parser produces: one
// concrete struct per sentence kind, tagged by an unexported marker
// method so only this package's types satisfy it.
type Parcel interface {
	isNmeaParcel()
}

// Location is the partial location fix carried by an RMC sentence,
// before the extra-info (altitude/accuracy) merge the location builder
// performs.
type Location struct {
	Lat, Lon           float64
	SpeedMps           float32
	BearingDeg         float32
	TimeMs             int64
	SpeedAccuracyMps   float32
	BearingAccuracyDeg float32
}

// Extra is the altitude/accuracy supplement carried by GGA and
// PUBX,00 sentences, merged into a Location by the location builder.
type Extra struct {
	HasAltitude           bool
	Altitude              float64
	HasHorizontalAccuracy bool
	HorizontalAccuracy    float32
	HasVerticalAccuracy   bool
	VerticalAccuracy      float32
}

// splitFields implements the exact comma/asterisk splitting rule the
// original parser common base used: split on ',', and if the field
// that would otherwise run to end-of-string instead contains a '*',
// truncate at the '*' without consuming it as a value.
func splitFields(s string) []string {
	var out []string
	for len(s) > 0 {
		idx := strings.IndexByte(s, ',')
		if idx < 0 {
			if star := strings.IndexByte(s, '*'); star >= 0 {
				s = s[:star]
			}
			out = append(out, s)
			return out
		}
		out = append(out, s[:idx])
		s = s[idx+1:]
		if len(s) == 0 {
			out = append(out, "")
		}
	}
	return out
}
