package config

import "testing"

func TestDecodeFillsDefaults(t *testing.T) {
	cfg, err := Decode([]byte(`
tty_path: /dev/ttyACM0
gnss_baudrate: 115200
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.TTYPath != "/dev/ttyACM0" {
		t.Errorf("expected tty_path to be set, got %q", cfg.TTYPath)
	}
	if cfg.GNSSBaudRate != 115200 {
		t.Errorf("expected gnss_baudrate 115200, got %d", cfg.GNSSBaudRate)
	}
	if cfg.FakeRoutePath != defaultFakeRoutePath {
		t.Errorf("expected default fake route path, got %q", cfg.FakeRoutePath)
	}
	if cfg.SBAS != SBASEnabled {
		t.Errorf("expected default sbas enabled, got %q", cfg.SBAS)
	}
}

func TestIsFake(t *testing.T) {
	cfg := Default()
	cfg.TTYPath = "fake"
	if !cfg.IsFake() {
		t.Error("expected IsFake to be true for tty_path=fake")
	}

	cfg.TTYPath = "/dev/ttyUSB0"
	if cfg.IsFake() {
		t.Error("expected IsFake to be false for a real device path")
	}
}

func TestDecodeInvalidYAML(t *testing.T) {
	if _, err := Decode([]byte("not: valid: yaml: [")); err == nil {
		t.Fatal("expected an error decoding malformed YAML")
	}
}
