// Command gnss-core is a demo host for the fusion pipeline: it opens a
// receiver (real serial port or a file-replay stand-in), runs the
// configurator's power-on sequence, then starts the framed reader, both
// protocol dispatchers, and the three fused providers, logging each
// dispatched record to stderr until interrupted.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gnss-hal/core/internal/config"
	"github.com/gnss-hal/core/internal/configurator"
	"github.com/gnss-hal/core/internal/fanout"
	"github.com/gnss-hal/core/internal/fusion/location"
	"github.com/gnss-hal/core/internal/fusion/measurement"
	"github.com/gnss-hal/core/internal/fusion/svinfo"
	"github.com/gnss-hal/core/internal/parser/nmea"
	"github.com/gnss-hal/core/internal/parser/ubx"
	"github.com/gnss-hal/core/internal/reader"
	"github.com/gnss-hal/core/internal/receiver"
	"github.com/gnss-hal/core/internal/sink"
	"github.com/gnss-hal/core/internal/syncgate"
	"github.com/gnss-hal/core/internal/transport"
)

// measurementSyncThreshold is how many measurement epochs the location
// provider waits for before it starts dispatching.
const measurementSyncThreshold = 2

// defaultUpdateIntervalUs is the provider cadence used when the config
// file doesn't override it; 1 Hz.
const defaultUpdateIntervalUs = 1_000_000

// demoUbloxProductID is the USB product id used to construct the
// receiver identity when one isn't otherwise known; only the vendor id
// gates the configurator's Validate.
const demoUbloxProductID = 0x01A9

func main() {
	configPath := flag.String("config", "config.yaml", "path to the pipeline configuration file")
	flag.Parse()

	logger := log.New(os.Stderr, "gnss-core: ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Printf("using defaults, couldn't load %s: %v", *configPath, err)
		cfg = config.Default()
	}

	tr := openTransport(cfg, logger)
	if err := tr.Open(); err != nil {
		logger.Fatalf("open transport: %v", err)
	}
	defer tr.Close()

	nmeaFanout := fanout.NewNmea()
	ubxFanout := fanout.NewUbx()

	nmeaDispatcher := nmea.NewDispatcher(nmea.V23, nmeaFanout, logger)
	ubxDispatcher := ubx.NewDispatcher(ubxFanout, logger)

	fr := reader.New(tr, nmeaDispatcher, ubxDispatcher, func(err error) {
		logger.Printf("reader died: %v", err)
	}, logger)

	rx := receiver.New(receiver.VendorUblox, demoUbloxProductID)
	cfgr := configurator.New(tr, rx, ubxFanout.Ack, ubxFanout.MonVer, cfg, logger)

	fr.Start()
	defer fr.Stop()

	if err := cfgr.Run(); err != nil {
		logger.Printf("configurator: %v (continuing with whatever output the receiver already produces)", err)
	} else {
		nmeaDispatcher.SetVersion(nmeaVersionFor(rx))
	}

	gate := syncgate.New(measurementSyncThreshold)

	locBuilder := location.NewBuilder(nmeaFanout.RMC, nmeaFanout.GGA, nmeaFanout.PUBX00)
	defer locBuilder.Close()
	locSinks := sink.NewRegistry[location.Record]()
	locSinks.Register(sink.V2_1, func(r location.Record) { logRecord(logger, "location", r) })
	locProvider := location.NewProvider(locBuilder, locSinks, gate, defaultUpdateIntervalUs, logger)

	svBuilder := svinfo.NewBuilder(nmeaFanout.GSA, nmeaFanout.GSV)
	defer svBuilder.Close()
	svSinks := sink.NewRegistry[svinfo.Record]()
	svSinks.Register(sink.V2_1, func(r svinfo.Record) { logRecord(logger, "svinfo", r) })
	svProvider := svinfo.NewProvider(svBuilder, svSinks, defaultUpdateIntervalUs)

	measBuilder := measurement.NewBuilder(ubxFanout.NavClock, ubxFanout.NavStatus, ubxFanout.NavTimeGps, ubxFanout.RxmMeasx, gate)
	measSinks := sink.NewRegistry[measurement.Record]()
	measSinks.Register(sink.V2_1, func(r measurement.Record) { logRecord(logger, "measurement", r) })
	measProvider := measurement.NewProvider(measBuilder, measSinks, defaultUpdateIntervalUs, logger)

	locProvider.StartProviding()
	defer locProvider.StopProviding()
	svProvider.StartProviding()
	defer svProvider.StopProviding()
	measProvider.StartProviding()
	defer measProvider.StopProviding()

	logger.Printf("pipeline running against %s", cfg.TTYPath)
	waitForSignal()
}

// openTransport selects the file-replay transport for bench testing or a
// real serial port, per cfg.IsFake.
func openTransport(cfg config.Config, logger *log.Logger) transport.Transport {
	if cfg.IsFake() {
		return transport.NewFakeTransport(transport.FakeConfig{RoutePath: cfg.FakeRoutePath})
	}
	return transport.NewTTYTransport(transport.TTYConfig{
		Path:         cfg.TTYPath,
		Baud:         cfg.TTYBaudRate,
		GPIOResetPin: cfg.GPIOResetPin,
		Logger:       logger,
	})
}

// nmeaVersionFor reports the NMEA protocol generation the configurator
// just negotiated, so the dispatcher parses subsequent sentences under
// the right field layout.
func nmeaVersionFor(rx *receiver.Receiver) nmea.Version {
	if rx.SoftwareFamily() == receiver.FamilySPG100 {
		return nmea.V23
	}
	return nmea.V41
}

// logRecord prints one dispatched record as JSON, the cheapest way for
// this demo host to show the pipeline is producing fused output without
// committing to a particular downstream sink format.
func logRecord(logger *log.Logger, kind string, record any) {
	data, err := json.Marshal(record)
	if err != nil {
		logger.Printf("%s: marshal: %v", kind, err)
		return
	}
	logger.Printf("%s: %s", kind, data)
}

// waitForSignal blocks until SIGINT or SIGTERM, then returns so main can
// run its deferred shutdown.
func waitForSignal() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
}
