// Package receiver tracks the identity of the GNSS chip a configurator
// is about to drive: vendor id and firmware version, the two facts the
// command-sequence selection gates on.
package receiver

import (
	"fmt"

	"github.com/gnss-hal/core/internal/gnsserr"
)

// VendorID is the USB/chip vendor identifier a receiver reports.
type VendorID uint16

// VendorUblox is the only vendor id the configurator knows how to
// drive a command sequence against.
const VendorUblox VendorID = 0x1546

// SoftwareFamily names the command-sequence family the configurator
// selects a byte-template set for, keyed off UBX-MON-VER's software
// version.
type SoftwareFamily int

const (
	FamilyUnknown SoftwareFamily = iota
	FamilySPG100
	FamilySPG201
	FamilySPG301
)

const (
	versionSPG100  = 1.00
	versionSPG201  = 2.01
	versionSPG301  = 3.01
	versionEpsilon = 0.001
)

// Receiver is the identity record a Configurator checks before running
// its command sequence.
type Receiver struct {
	VendorID        VendorID
	ProductID       uint16
	FirmwareVersion float64
}

// New constructs a Receiver from its USB/chip identity. FirmwareVersion
// is unset until SetFirmwareVersion runs, typically from a MON-VER
// reply.
func New(vendorID VendorID, productID uint16) *Receiver {
	return &Receiver{VendorID: vendorID, ProductID: productID}
}

// SetFirmwareVersion records the software version a MON-VER reply
// reported.
func (r *Receiver) SetFirmwareVersion(version float64) {
	r.FirmwareVersion = version
}

// Validate reports ErrUnsupportedReceiver for any vendor id other than
// U-Blox; the configurator's command sequence is only meaningful
// against that chip family.
func (r *Receiver) Validate() error {
	if r.VendorID != VendorUblox {
		return fmt.Errorf("receiver: vendor id 0x%04x: %w", uint16(r.VendorID), gnsserr.ErrUnsupportedReceiver)
	}
	return nil
}

// SoftwareFamily classifies FirmwareVersion into the family the
// configurator has a command template set for. FamilyUnknown for any
// version outside the three it recognizes.
func (r *Receiver) SoftwareFamily() SoftwareFamily {
	switch {
	case closeEnough(r.FirmwareVersion, versionSPG100):
		return FamilySPG100
	case closeEnough(r.FirmwareVersion, versionSPG201):
		return FamilySPG201
	case closeEnough(r.FirmwareVersion, versionSPG301):
		return FamilySPG301
	default:
		return FamilyUnknown
	}
}

func closeEnough(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < versionEpsilon
}
