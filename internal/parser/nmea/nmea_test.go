package nmea

import (
	"math"
	"testing"

	"github.com/gnss-hal/core/internal/constellation"
)

func closeEnough(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestValidateFrameChecksumOK(t *testing.T) {
	sentence := []byte("$GPTXT,01,01,02,test message*10\n")
	if _, err := validateFrame(sentence); err != nil {
		t.Fatalf("unexpected error for a well-formed frame: %v", err)
	}
}

func TestValidateFrameBadChecksum(t *testing.T) {
	sentence := []byte("$GPTXT,01,01,02,test message*00\n")
	if _, err := validateFrame(sentence); err == nil {
		t.Fatal("expected a checksum mismatch error")
	}
}

func TestValidateFrameMalformed(t *testing.T) {
	if _, err := validateFrame([]byte("not a sentence")); err == nil {
		t.Fatal("expected an error for a malformed frame")
	}
}

func TestParseRMCActiveFix(t *testing.T) {
	body := "GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W,A"
	p, err := ParseRMC(body, V23)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Valid {
		t.Fatal("expected an active fix")
	}
	if !closeEnough(p.Location.Lat, 48.1173, 1e-3) {
		t.Errorf("latitude = %v, want ~48.1173", p.Location.Lat)
	}
	if !closeEnough(p.Location.Lon, 11.516666, 1e-3) {
		t.Errorf("longitude = %v, want ~11.5167", p.Location.Lon)
	}
	if p.Location.SpeedAccuracyMps != speedAccuracyUblox7Mps {
		t.Errorf("expected ublox-7 era speed accuracy, got %v", p.Location.SpeedAccuracyMps)
	}
}

func TestParseRMCVoidFix(t *testing.T) {
	body := "GPRMC,123519,V,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W,N"
	p, err := ParseRMC(body, V23)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Valid {
		t.Fatal("expected an inactive fix to report Valid=false")
	}
}

func TestParseRMCWrongFieldCount(t *testing.T) {
	body := "GPRMC,123519,A"
	if _, err := ParseRMC(body, V23); err == nil {
		t.Fatal("expected an error for a short RMC body")
	}
}

func TestParseGGAHorizontalAccuracyFromHDOP(t *testing.T) {
	body := "GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,"
	p, err := ParseGGA(body, V23)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	extra, ok := p.ToExtra()
	if !ok {
		t.Fatal("expected ToExtra to succeed")
	}
	want := float32(0.9) * hdopToHorizontalAccuracy
	if extra.HorizontalAccuracy != want {
		t.Errorf("horizontal accuracy = %v, want %v", extra.HorizontalAccuracy, want)
	}
	if extra.Altitude != 545.4 {
		t.Errorf("altitude = %v, want 545.4", extra.Altitude)
	}
}

func TestParsePUBX00OverridesAccuracy(t *testing.T) {
	fields := make([]string, 21)
	for i := range fields {
		fields[i] = ""
	}
	fields[1] = "00"
	fields[9] = "1.5"
	fields[10] = "2.5"
	body := joinComma(fields)

	p, err := ParsePUBX00(body, V23)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	extra, _ := p.ToExtra()
	if !extra.HasHorizontalAccuracy || extra.HorizontalAccuracy != 1.5 {
		t.Errorf("expected horizontal accuracy 1.5, got %+v", extra)
	}
	if !extra.HasVerticalAccuracy || extra.VerticalAccuracy != 2.5 {
		t.Errorf("expected vertical accuracy 2.5, got %+v", extra)
	}
}

func joinComma(fields []string) string {
	out := ""
	for i, f := range fields {
		if i > 0 {
			out += ","
		}
		out += f
	}
	return out
}

func TestParseGSAv41UsesSystemID(t *testing.T) {
	// fields[0] is the sentence id ("GPGSA"), stripped of '$' by
	// validateFrame in the real pipeline; svids occupy fields[3:15].
	fields := []string{"GPGSA", "A", "3", "1", "2", "3", "", "", "", "", "", "", "", "", "", "1.0", "2.0", "3.0", "1"}
	body := joinComma(fields)
	p, err := ParseGSA(body, V41, constellation.Unknown)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Constellation != constellation.GPS {
		t.Errorf("expected GPS from system id 1, got %v", p.Constellation)
	}
	if len(p.SVIDs) != 3 {
		t.Errorf("expected 3 svids, got %d", len(p.SVIDs))
	}
}

func TestParseGSATerminatesOnFirstEmptyField(t *testing.T) {
	fields := []string{"GPGSA", "A", "3", "1", "2", "", "", "", "", "", "", "", "", "", "", "1.0", "2.0", "3.0", "1"}
	body := joinComma(fields)
	p, err := ParseGSA(body, V41, constellation.Unknown)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.SVIDs) != 2 {
		t.Errorf("expected svid list to stop at the first empty field, got %v", p.SVIDs)
	}
}

func TestParseGSVSingleSatellite(t *testing.T) {
	body := "GPGSV,1,1,01,01,45,120,40"
	p, err := ParseGSV(body, "$GP", V23)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Constellation != constellation.GPS {
		t.Errorf("expected GPS constellation, got %v", p.Constellation)
	}
	if len(p.Satellites) != 1 {
		t.Fatalf("expected 1 satellite, got %d", len(p.Satellites))
	}
	if p.Satellites[0].SVID != 1 {
		t.Errorf("expected svid 1 to pass through unchanged for GPS, got %d", p.Satellites[0].SVID)
	}
}

func TestParseGSVGlonassSvidNormalization(t *testing.T) {
	body := "GLGSV,1,1,01,70,45,120,40"
	p, err := ParseGSV(body, "$GL", V23)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Satellites[0].SVID != 70-64 {
		t.Errorf("expected svid 6, got %d", p.Satellites[0].SVID)
	}
}

func TestParseGSVGlonassOutOfRangeFallsBackTo93(t *testing.T) {
	body := "GLGSV,1,1,01,200,45,120,40"
	p, err := ParseGSV(body, "$GL", V23)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Satellites[0].SVID != 93 {
		t.Errorf("expected fallback svid 93, got %d", p.Satellites[0].SVID)
	}
}

func TestParseGSVMixedTalkerClearsCarrierFlag(t *testing.T) {
	body := "GNGSV,1,1,01,01,45,120,40"
	p, err := ParseGSV(body, "$GN", V23)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.HasCarrier {
		t.Error("expected carrier frequency flag to be cleared for a mixed-talker GN sentence")
	}
}

func TestParseTXTSeverity(t *testing.T) {
	body := "GPTXT,01,01,02,u-blox AG - www.u-blox.com"
	p, err := ParseTXT(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Severity != SeverityNotice {
		t.Errorf("expected severity notice, got %v", p.Severity)
	}
}
