// Package configurator drives a u-blox receiver through its power-on
// command sequence: identify the firmware family from UBX-MON-VER, then
// send the family's CFG sequence, retrying each step against an ACK.
package configurator

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gnss-hal/core/internal/config"
	"github.com/gnss-hal/core/internal/gnsserr"
	"github.com/gnss-hal/core/internal/parser/ubx"
	"github.com/gnss-hal/core/internal/receiver"
	"github.com/gnss-hal/core/internal/transport"
)

// State is one of the configurator's lifecycle stages.
type State int

const (
	StateUnconfigured State = iota
	StateBaudNegotiating
	StateVersionProbing
	StateSequencing
	StateConfigured
	StateFailed
)

const maxAckRetries = 5
const resetSettleFor = 25 * time.Millisecond

// ackWait and monVerWait are vars, not consts, so tests can shrink them
// rather than wait out the full production timeout.
var ackWait = 5 * time.Second
var monVerWait = 5 * time.Second

// AckPopper is the minimal pull surface the configurator needs from the
// ACK parcel queue; *queue.Queue[ubx.AckParcel] satisfies it.
type AckPopper interface {
	Pop() (ubx.AckParcel, bool)
	Empty() bool
	WaitFor(timeout time.Duration, predicate func() bool) bool
}

// MonVerPopper is the minimal pull surface the configurator needs from
// the MON-VER parcel queue.
type MonVerPopper interface {
	Pop() (ubx.MonVerParcel, bool)
	Empty() bool
	WaitFor(timeout time.Duration, predicate func() bool) bool
}

// Configurator runs the power-on command sequence against one receiver
// over one transport.
type Configurator struct {
	tr       transport.Transport
	receiver *receiver.Receiver
	acks     AckPopper
	monVer   MonVerPopper
	cfg      config.Config
	logger   *log.Logger

	state State
}

// New constructs a Configurator. cfg supplies the target baud rate and
// the GNSS-mask mutation inputs (secmajor, sbas).
func New(tr transport.Transport, rx *receiver.Receiver, acks AckPopper, monVer MonVerPopper, cfg config.Config, logger *log.Logger) *Configurator {
	if logger == nil {
		logger = log.Default()
	}
	return &Configurator{tr: tr, receiver: rx, acks: acks, monVer: monVer, cfg: cfg, logger: logger}
}

// State reports the configurator's current lifecycle stage.
func (c *Configurator) State() State {
	return c.state
}

// step is one command in a firmware family's sequence: the frame body
// to send and the (class, id) an ACK must echo back. noAck marks a
// command the receiver never acknowledges (the GNSS-only reset), where
// runStep just sends and waits out resetSettleFor instead of polling
// for an ACK.
type step struct {
	name  string
	body  []byte
	class ubx.Class
	id    ubx.ID
	noAck bool
}

// Run executes the full sequence: validate the receiver's vendor,
// negotiate the baud rate, probe the firmware version, then run that
// family's command sequence. Returns gnsserr.ErrUnsupportedReceiver for
// a non-u-blox vendor or an unrecognized firmware version, and
// gnsserr.ErrAckTimeout/gnsserr.ErrNack if a step exhausts its retries.
func (c *Configurator) Run() error {
	if err := c.receiver.Validate(); err != nil {
		c.state = StateFailed
		return err
	}

	c.state = StateBaudNegotiating
	if err := c.negotiateBaud(); err != nil {
		c.state = StateFailed
		return err
	}

	c.state = StateVersionProbing
	if err := c.probeVersion(); err != nil {
		c.state = StateFailed
		return err
	}

	family := c.receiver.SoftwareFamily()
	sequence, err := c.sequenceFor(family)
	if err != nil {
		c.state = StateFailed
		return err
	}

	c.state = StateSequencing
	for i, s := range sequence {
		if err := c.runStep(s); err != nil {
			c.state = StateFailed
			return fmt.Errorf("configurator: step %d (%s): %w", i, s.name, err)
		}
	}

	c.state = StateConfigured
	return nil
}

// negotiateBaud raises the line to the configured target rate if it
// differs from the rate the transport was opened at (TTYBaudRate). The
// receiver has to be told about the new rate before the host switches
// its own: a CFG-PRT frame carrying the new baud is written at the
// current rate, the transport's line rate is then changed, and the ACK
// is awaited on the new rate.
func (c *Configurator) negotiateBaud() error {
	if c.cfg.GNSSBaudRate <= 0 || c.cfg.GNSSBaudRate == c.cfg.TTYBaudRate {
		return nil
	}

	if err := c.tr.WriteFrame(buildCfgPrt(cfgPrtPortID, uint32(c.cfg.GNSSBaudRate))); err != nil {
		return fmt.Errorf("configurator: write cfg-prt: %w", err)
	}
	if err := c.tr.SetBaud(c.cfg.GNSSBaudRate); err != nil {
		return fmt.Errorf("configurator: set baud: %w", err)
	}
	if err := c.waitForAck(classCFG, idPrt); err != nil {
		return fmt.Errorf("configurator: cfg-prt ack: %w", err)
	}
	return nil
}

// probeVersion polls MON-VER, waits for a reply, and records the
// reported software version on the receiver.
func (c *Configurator) probeVersion() error {
	if err := c.tr.WriteFrame(msgPollMonVer); err != nil {
		return fmt.Errorf("configurator: poll mon-ver: %w", err)
	}

	c.monVer.WaitFor(monVerWait, func() bool { return !c.monVer.Empty() })
	parcel, ok := c.monVer.Pop()
	if !ok {
		return fmt.Errorf("configurator: mon-ver reply within %s: %w", monVerWait, gnsserr.ErrAckTimeout)
	}

	c.receiver.SetFirmwareVersion(parcel.SwVersion)
	if c.receiver.SoftwareFamily() == receiver.FamilyUnknown {
		return fmt.Errorf("configurator: firmware version %v: %w", parcel.SwVersion, gnsserr.ErrUnsupportedReceiver)
	}
	return nil
}

// runStep writes s.body up to maxAckRetries times, waiting for a
// matching ACK after each attempt.
func (c *Configurator) runStep(s step) error {
	if s.noAck {
		if err := c.tr.WriteFrame(s.body); err != nil {
			return fmt.Errorf("write: %w", err)
		}
		time.Sleep(resetSettleFor)
		return nil
	}

	var lastErr error
	for attempt := 0; attempt < maxAckRetries; attempt++ {
		if err := c.tr.WriteFrame(s.body); err != nil {
			return fmt.Errorf("write: %w", err)
		}

		err := c.waitForAck(s.class, s.id)
		if err == nil {
			return nil
		}
		lastErr = err
		c.logger.Printf("configurator: step %s attempt %d/%d: %v", s.name, attempt+1, maxAckRetries, err)
	}
	return fmt.Errorf("exhausted %d retries: %w", maxAckRetries, lastErr)
}

// waitForAck pops one ACK parcel, failing if it times out, is negative,
// or doesn't name the expected (class, id).
func (c *Configurator) waitForAck(class ubx.Class, id ubx.ID) error {
	c.acks.WaitFor(ackWait, func() bool { return !c.acks.Empty() })
	parcel, ok := c.acks.Pop()
	if !ok {
		return gnsserr.ErrAckTimeout
	}
	if parcel.Negative {
		return gnsserr.ErrNack
	}
	if parcel.Class != class || parcel.ID != id {
		return fmt.Errorf("ack for (%v, %v), want (%v, %v): %w", parcel.Class, parcel.ID, class, id, gnsserr.ErrNack)
	}
	return nil
}

var errUnknownFamily = errors.New("configurator: receiver firmware family has no known command sequence")

// sequenceFor builds the ordered step list for one firmware family,
// mutating the GNSS-mask template per the configurator's constellation
// settings.
func (c *Configurator) sequenceFor(family receiver.SoftwareFamily) ([]step, error) {
	reset := step{name: "gnss-reset", body: buildCfgReset(), noAck: true}
	clearCfg := step{name: "clear-config", body: cfgClear, class: classCFG, id: idClear}
	nav5 := step{name: "nav5", body: cfgNav5, class: classCFG, id: idNav5}
	pubx00 := step{name: "enable-pubx00", body: buildCfgMsgRate(classNmeaPubx, idPubx00, cfgDefaultRate), class: classCFG, id: idRate}
	disableGLL := step{name: "disable-gll", body: buildCfgMsgRate(classNmeaCfg, idNmeaGLL, cfgDisableRate), class: classCFG, id: idRate}
	disableVTG := step{name: "disable-vtg", body: buildCfgMsgRate(classNmeaCfg, idNmeaVTG, cfgDisableRate), class: classCFG, id: idRate}
	enableRMC := step{name: "enable-rmc", body: buildCfgMsgRate(classNmeaCfg, idNmeaRMC, cfgDefaultRate), class: classCFG, id: idRate}

	switch family {
	case receiver.FamilySPG100:
		nmea := step{name: "nmea-2.3", body: cfgNmea23, class: classCFG, id: idNmea}
		gnss := step{name: "gnss-mask-spg100", body: cfgGnssSPG100, class: classCFG, id: idGnss}
		return []step{reset, clearCfg, nmea, gnss, nav5, pubx00, disableGLL, disableVTG, enableRMC}, nil

	case receiver.FamilySPG201, receiver.FamilySPG301:
		nmea := step{name: "nmea-4.1", body: cfgNmea41, class: classCFG, id: idNmea}
		pollNavTimeGps := step{name: "poll-nav-timegps", body: buildCfgMsgRate(ubx.ClassNAV, ubx.IDTimeGps, cfgDefaultRate), class: classCFG, id: idRate}
		pollNavClock := step{name: "poll-nav-clock", body: buildCfgMsgRate(ubx.ClassNAV, ubx.IDClock, cfgDefaultRate), class: classCFG, id: idRate}
		pollRxmMeasx := step{name: "poll-rxm-measx", body: buildCfgMsgRate(ubx.ClassRXM, ubx.IDMeasx, cfgDefaultRate), class: classCFG, id: idRate}
		pollNavStatus := step{name: "poll-nav-status", body: buildCfgMsgRate(ubx.ClassNAV, ubx.IDStatus, cfgDefaultRate), class: classCFG, id: idRate}

		var gnss step
		if family == receiver.FamilySPG201 {
			gnss = step{name: "gnss-mask-spg201", body: prepareGnssMask(cfgGnssSPG201, cfgIndexSPG201, c.cfg.SecMajor, c.cfg.SBAS), class: classCFG, id: idGnss}
		} else {
			gnss = step{name: "gnss-mask-spg301", body: prepareGnssMask(cfgGnssSPG301, cfgIndexSPG301, c.cfg.SecMajor, c.cfg.SBAS), class: classCFG, id: idGnss}
		}

		return []step{
			reset, clearCfg, nmea, gnss, nav5, pubx00, disableGLL, disableVTG,
			pollNavTimeGps, pollNavClock, pollRxmMeasx, pollNavStatus, enableRMC,
		}, nil

	default:
		return nil, fmt.Errorf("%w: %v", errUnknownFamily, family)
	}
}
