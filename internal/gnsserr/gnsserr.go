// Package gnsserr defines the sentinel error taxonomy shared across the
// ingestion and fusion pipeline. Wire-level errors stay local to the
// component that detects them; only the configurator is allowed to turn
// one of these into a fatal condition.
package gnsserr

import "errors"

var (
	// ErrTransport signals a read/write failure at the transport layer.
	ErrTransport = errors.New("gnss: transport error")

	// ErrIncompletePacket signals a frame that ended before enough bytes
	// arrived to satisfy its declared or expected length.
	ErrIncompletePacket = errors.New("gnss: incomplete packet")

	// ErrBadChecksum signals a frame whose checksum did not match.
	ErrBadChecksum = errors.New("gnss: bad checksum")

	// ErrInvalidData signals a structurally complete frame with
	// semantically invalid field contents (e.g. RMC status not "A").
	ErrInvalidData = errors.New("gnss: invalid data")

	// ErrAckTimeout signals a configurator step that never received an
	// ACK/NACK within its wait window.
	ErrAckTimeout = errors.New("gnss: ack timeout")

	// ErrNack signals a configurator step explicitly rejected by the
	// receiver.
	ErrNack = errors.New("gnss: nack received")

	// ErrUnsupportedReceiver signals a receiver whose vendor or firmware
	// family the configurator does not know how to drive.
	ErrUnsupportedReceiver = errors.New("gnss: unsupported receiver")

	// ErrIncomplete signals a builder that could not assemble a full
	// record before its cycle deadline; the provider skips this cycle.
	ErrIncomplete = errors.New("gnss: build incomplete")
)
