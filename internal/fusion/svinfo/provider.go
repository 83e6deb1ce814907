package svinfo

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gnss-hal/core/internal/sink"
)

// Provider invokes Builder.Build at a configurable cadence and
// dispatches the result to every registered sink version. Unlike the
// location provider, satellite-info emission is not gated on the
// measurement-sync barrier.
type Provider struct {
	builder *Builder
	sinks   *sink.Registry[Record]

	intervalUs atomic.Int64
	enabled    atomic.Bool

	stop chan struct{}
	wg   sync.WaitGroup
}

// NewProvider constructs a Provider.
func NewProvider(builder *Builder, sinks *sink.Registry[Record], updateIntervalUs uint32) *Provider {
	p := &Provider{builder: builder, sinks: sinks, stop: make(chan struct{})}
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

		p.sinks.Dispatch(p.builder.Build())
	}
}
