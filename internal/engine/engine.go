// SPDX-License-Identifier: MIT
/*
Package engine implements the update cycle driver. All pipeline state
(raw window, per-band windows, powers) is owned by the Engine and mutated
only from the tick loop, so one tick never overlaps another and the
pipeline is testable without a live timer.

Per tick: read one line from the source, parse, convert to volts, push
the raw window, refilter the full raw window per band, push the newest
filtered value into that band's window, recompute RMS power, select the
dominant band, and fan the resulting Frame out to the sinks. A failed or
timed-out read skips the remainder of the tick; one attempt per tick, no
retries.
*/
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"bandscope/internal/config"
	"bandscope/internal/dsp"
	applog "bandscope/internal/log"
	"bandscope/internal/source"
	"bandscope/internal/transport"
)

// Engine drives the acquisition and analysis pipeline on a fixed cadence.
type Engine struct {
	cfg   *config.Config
	src   source.Source
	sinks []transport.Transport

	catalog dsp.Catalog
	bank    *dsp.Bank
	conv    dsp.Converter

	raw      *dsp.Window
	bandWins []*dsp.Window
	powers   []float64
	scratch  []float64 // whole-window filter output, reused per band

	seq       uint32
	processed atomic.Uint64
	skipped   atomic.Uint64

	mu     sync.RWMutex
	latest *transport.Frame
}

// New constructs the pipeline from configuration. Filter construction
// failure (a band cutoff outside (0, Nyquist)) is returned as an error and
// must abort startup; the catalog cannot change mid-run.
func New(cfg *config.Config, src source.Source, sinks ...transport.Transport) (*Engine, error) {
	if src == nil {
		return nil, fmt.Errorf("engine: sample source must not be nil")
	}

	a := cfg.Analysis
	catalog := make(dsp.Catalog, len(a.Bands))
	for i, b := range a.Bands {
		catalog[i] = dsp.Band{Name: b.Name, LowHz: b.LowHz, HighHz: b.HighHz}
	}

	bank, err := dsp.NewBank(catalog, a.FilterOrder, a.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("engine: building filter bank: %w", err)
	}

	bandWins := make([]*dsp.Window, len(catalog))
	for i := range bandWins {
		bandWins[i] = dsp.NewWindow(a.WindowSize)
	}

	applog.Infof("engine: window=%d samples, rate=%g Hz, %d bands, order %d",
		a.WindowSize, a.SampleRate, len(catalog), a.FilterOrder)

	return &Engine{
		cfg:      cfg,
		src:      src,
		sinks:    sinks,
		catalog:  catalog,
		bank:     bank,
		conv:     dsp.NewConverter(a.RefVoltage, a.CodeRange),
		raw:      dsp.NewWindow(a.WindowSize),
		bandWins: bandWins,
		powers:   make([]float64, len(catalog)),
		scratch:  make([]float64, a.WindowSize),
	}, nil
}

// Catalog returns the engine's band catalog.
func (e *Engine) Catalog() dsp.Catalog {
	return e.catalog
}

// Tick executes one update cycle. Recoverable source conditions
// (ErrReadTimeout, ErrBadSample, transient I/O errors) are returned to the
// caller; the pipeline state is untouched in that case and the next tick
// proceeds normally.
func (e *Engine) Tick() error {
	raw, err := e.src.ReadRaw()
	if err != nil {
		e.skipped.Add(1)
		return err
	}

	e.raw.Push(e.conv.ToVolts(raw))
	rawValues := e.raw.Values()

	for i := 0; i < e.bank.Len(); i++ {
		e.bank.Filter(i).Apply(e.scratch, rawValues)
		win := e.bandWins[i]
		win.Push(e.scratch[len(e.scratch)-1])
		e.powers[i] = dsp.RMS(win.Values())
	}

	idx, name := e.catalog.Dominant(e.powers)
	frame := e.buildFrame(idx, name)

	e.mu.Lock()
	e.latest = frame
	e.mu.Unlock()

	for _, sink := range e.sinks {
		if err := sink.Send(frame); err != nil {
			applog.Warnf("engine: sink send: %v", err)
		}
	}

	e.processed.Add(1)
	return nil
}

// Run ticks at the configured redraw interval until ctx is cancelled.
// Ticks are strictly sequential; a tick that runs long simply delays the
// next one (time.Ticker drops missed ticks).
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.cfg.Render.RedrawInterval)
	defer ticker.Stop()

	applog.Infof("engine: running, redraw interval %s", e.cfg.Render.RedrawInterval)
	for {
		select {
		case <-ctx.Done():
			applog.Infof("engine: stopping (%d frames, %d skipped ticks)",
				e.processed.Load(), e.skipped.Load())
			return nil
		case <-ticker.C:
			if err := e.Tick(); err != nil {
				if errors.Is(err, source.ErrReadTimeout) || errors.Is(err, source.ErrBadSample) {
					applog.Debugf("engine: tick skipped: %v", err)
				} else {
					applog.Warnf("engine: source read failed, tick skipped: %v", err)
				}
			}
		}
	}
}

// LatestFrame returns the most recent frame, or nil before the first
// complete tick. Frames are immutable once published.
func (e *Engine) LatestFrame() *transport.Frame {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.latest
}

// Stats reports processed frames and skipped ticks.
func (e *Engine) Stats() (processed, skipped uint64) {
	return e.processed.Load(), e.skipped.Load()
}

// Close releases the sample source and all sinks.
func (e *Engine) Close() error {
	var firstErr error
	if err := e.src.Close(); err != nil {
		firstErr = err
	}
	for _, sink := range e.sinks {
		if err := sink.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (e *Engine) buildFrame(dominantIdx int, dominant string) *transport.Frame {
	e.seq++
	bands := make([]transport.BandFrame, len(e.catalog))
	for i, band := range e.catalog {
		bands[i] = transport.BandFrame{
			Name:    band.Name,
			LowHz:   band.LowHz,
			HighHz:  band.HighHz,
			Samples: e.bandWins[i].Snapshot(),
			Power:   e.powers[i],
		}
	}
	return &transport.Frame{
		Seq:            e.seq,
		Timestamp:      time.Now(),
		Raw:            e.raw.Snapshot(),
		Bands:          bands,
		Dominant:       dominant,
		DominantIndex:  dominantIdx,
		RawRangeVolts:  e.cfg.Render.RawRangeVolts,
		BandRangeVolts: e.cfg.Render.BandRangeVolts,
	}
}
