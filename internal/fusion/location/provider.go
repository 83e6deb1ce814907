package location

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gnss-hal/core/internal/sink"
)

// Gate reports whether the measurement-sync barrier has let enough
// measurement epochs through to start emitting locations; *syncgate.Gate
// satisfies it.
type Gate interface {
	Ready() bool
}

// Provider invokes Builder.Build at a configurable cadence and
// dispatches the result to every registered sink version, once the
// measurement-sync gate reports ready.
type Provider struct {
	builder *Builder
	sinks   *sink.Registry[Record]
	gate    Gate
	logger  *log.Logger

	intervalUs atomic.Int64
	enabled    atomic.Bool

	stop chan struct{}
	wg   sync.WaitGroup
}

// NewProvider constructs a Provider. gate may be nil, in which case the
// provider emits unconditionally.
func NewProvider(builder *Builder, sinks *sink.Registry[Record], gate Gate, updateIntervalUs uint32, logger *log.Logger) *Provider {
	if logger == nil {
		logger = log.Default()
	}
	p := &Provider{
		builder: builder,
		sinks:   sinks,
		gate:    gate,
		logger:  logger,
		stop:    make(chan struct{}),
	}
	p.intervalUs.Store(int64(updateIntervalUs))
	p.enabled.Store(true)
	return p
}

// SetEnabled toggles whether StartProviding's loop actually dispatches
// to sinks; the loop keeps running so the interval can still change.
func (p *Provider) SetEnabled(enabled bool) {
	p.enabled.Store(enabled)
}

// SetUpdateInterval changes the cadence the next loop iteration reads.
func (p *Provider) SetUpdateInterval(updateIntervalUs uint32) {
	p.intervalUs.Store(int64(updateIntervalUs))
}

// StartProviding starts the background emission loop.
func (p *Provider) StartProviding() {
	p.wg.Add(1)
	go p.loop()
}

// StopProviding stops the loop and waits for it to exit.
func (p *Provider) StopProviding() {
	close(p.stop)
	p.wg.Wait()
}

func (p *Provider) loop() {
	defer p.wg.Done()
	for {
		interval := time.Duration(p.intervalUs.Load()) * time.Microsecond
		if interval <= 0 {
			interval = time.Second
		}
		timer := time.NewTimer(interval)
		select {
		case <-p.stop:
			timer.Stop()
			return
		case <-timer.C:
		}

		if !p.enabled.Load() {
			continue
		}
		if p.gate != nil && !p.gate.Ready() {
			continue
		}

		record, err := p.builder.Build()
		if err != nil {
			p.logger.Printf("location: %v", err)
			continue
		}
		p.sinks.Dispatch(record)
	}
}
