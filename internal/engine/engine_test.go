// SPDX-License-Identifier: MIT
package engine

import (
	"errors"
	"math"
	"testing"

	"bandscope/internal/config"
	"bandscope/internal/source"
	"bandscope/internal/transport"
	"bandscope/pkg/testsignal"
)

// scriptSource replays a fixed sequence of reads, then times out.
type scriptSource struct {
	steps []scriptStep
	pos   int
	reads int
	done  bool
}

type scriptStep struct {
	raw int64
	err error
}

func (s *scriptSource) ReadRaw() (int64, error) {
	s.reads++
	if s.pos >= len(s.steps) {
		return 0, source.ErrReadTimeout
	}
	step := s.steps[s.pos]
	s.pos++
	return step.raw, step.err
}

func (s *scriptSource) Close() error {
	s.done = true
	return nil
}

func samplesSource(raws ...int64) *scriptSource {
	steps := make([]scriptStep, len(raws))
	for i, r := range raws {
		steps[i] = scriptStep{raw: r}
	}
	return &scriptSource{steps: steps}
}

// captureSink records every frame it receives.
type captureSink struct {
	frames []*transport.Frame
	closed bool
}

func (c *captureSink) Send(frame *transport.Frame) error {
	c.frames = append(c.frames, frame)
	return nil
}

func (c *captureSink) Close() error {
	c.closed = true
	return nil
}

func testConfig(windowSize int) *config.Config {
	cfg := config.NewConfig()
	cfg.Analysis.WindowSize = windowSize
	return cfg
}

func TestNewRejectsInvalidBand(t *testing.T) {
	cfg := testConfig(16)
	cfg.Analysis.Bands = append(cfg.Analysis.Bands,
		config.BandSetting{Name: "Broken", LowHz: 40, HighHz: 80})

	if _, err := New(cfg, samplesSource()); err == nil {
		t.Error("band above Nyquist must abort engine construction")
	}
}

func TestNewRejectsNilSource(t *testing.T) {
	if _, err := New(testConfig(16), nil); err == nil {
		t.Error("nil source must be rejected")
	}
}

func TestTickConvertsRawWindow(t *testing.T) {
	// Raw sequence [0, 0, 0, 16384] at Vref 4.096 / code range 32768 must
	// end as [0, 0, 0, 2.048] V in the raw window.
	cfg := testConfig(4)
	src := samplesSource(0, 0, 0, 16384)
	sink := &captureSink{}

	eng, err := New(cfg, src, sink)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < 4; i++ {
		if err := eng.Tick(); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}

	frame := eng.LatestFrame()
	if frame == nil {
		t.Fatal("no frame after four ticks")
	}
	want := []float64{0, 0, 0, 2.048}
	if len(frame.Raw) != len(want) {
		t.Fatalf("raw window length = %d, want %d", len(frame.Raw), len(want))
	}
	for i := range want {
		if math.Abs(frame.Raw[i]-want[i]) > 1e-9 {
			t.Errorf("raw[%d] = %g V, want %g V", i, frame.Raw[i], want[i])
		}
	}
}

func TestTickSkipsOnBadSample(t *testing.T) {
	cfg := testConfig(8)
	src := &scriptSource{steps: []scriptStep{
		{raw: 1000},
		{err: source.ErrBadSample},
		{raw: 2000},
	}}
	eng, err := New(cfg, src)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := eng.Tick(); err != nil {
		t.Fatalf("first tick: %v", err)
	}
	before := eng.LatestFrame()

	// The malformed line is reported and the tick leaves all state alone.
	if err := eng.Tick(); !errors.Is(err, source.ErrBadSample) {
		t.Fatalf("second tick error = %v, want ErrBadSample", err)
	}
	after := eng.LatestFrame()
	if after != before {
		t.Error("skipped tick must not publish a new frame")
	}
	if after.Seq != 1 {
		t.Errorf("frame seq = %d, want 1", after.Seq)
	}

	if err := eng.Tick(); err != nil {
		t.Fatalf("third tick: %v", err)
	}
	if got := eng.LatestFrame().Seq; got != 2 {
		t.Errorf("seq after recovery = %d, want 2", got)
	}

	processed, skipped := eng.Stats()
	if processed != 2 || skipped != 1 {
		t.Errorf("Stats() = (%d, %d), want (2, 1)", processed, skipped)
	}
}

func TestTickSkipsOnTimeout(t *testing.T) {
	eng, err := New(testConfig(8), samplesSource()) // empty script: always times out
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := eng.Tick(); !errors.Is(err, source.ErrReadTimeout) {
		t.Fatalf("tick error = %v, want ErrReadTimeout", err)
	}
	if eng.LatestFrame() != nil {
		t.Error("no frame may be published before the first successful tick")
	}
}

func TestTickFansOutToAllSinks(t *testing.T) {
	first := &captureSink{}
	second := &captureSink{}
	eng, err := New(testConfig(8), samplesSource(100, 200), first, second)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := eng.Tick(); err != nil {
		t.Fatal(err)
	}
	if err := eng.Tick(); err != nil {
		t.Fatal(err)
	}

	if len(first.frames) != 2 || len(second.frames) != 2 {
		t.Fatalf("sink frame counts = (%d, %d), want (2, 2)", len(first.frames), len(second.frames))
	}
	if first.frames[1] != second.frames[1] {
		t.Error("all sinks must receive the same frame")
	}
	if first.frames[1].Seq != 2 {
		t.Errorf("second frame seq = %d, want 2", first.frames[1].Seq)
	}
}

func TestFrameShape(t *testing.T) {
	cfg := testConfig(8)
	eng, err := New(cfg, samplesSource(500))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := eng.Tick(); err != nil {
		t.Fatal(err)
	}

	frame := eng.LatestFrame()
	if len(frame.Bands) != len(cfg.Analysis.Bands) {
		t.Fatalf("frame has %d bands, want %d", len(frame.Bands), len(cfg.Analysis.Bands))
	}
	for i, band := range frame.Bands {
		if len(band.Samples) != cfg.Analysis.WindowSize {
			t.Errorf("band %d window length = %d, want %d",
				i, len(band.Samples), cfg.Analysis.WindowSize)
		}
		if band.Power < 0 {
			t.Errorf("band %d power = %g, want >= 0", i, band.Power)
		}
		if band.Name != cfg.Analysis.Bands[i].Name {
			t.Errorf("band %d name = %q, want %q (catalog order must be preserved)",
				i, band.Name, cfg.Analysis.Bands[i].Name)
		}
	}
	if frame.DominantIndex < 0 || frame.DominantIndex >= len(frame.Bands) {
		t.Errorf("dominant index %d out of range", frame.DominantIndex)
	}
	if frame.Dominant != frame.Bands[frame.DominantIndex].Name {
		t.Errorf("dominant %q does not match band at index %d", frame.Dominant, frame.DominantIndex)
	}
	if frame.RawRangeVolts != cfg.Render.RawRangeVolts {
		t.Errorf("raw range = %g, want %g", frame.RawRangeVolts, cfg.Render.RawRangeVolts)
	}
}

func TestAlphaToneDominates(t *testing.T) {
	// Feed a 10 Hz tone long enough to cycle every window completely; the
	// Alpha band (8-13 Hz) must win the power comparison.
	const windowSize = 128
	cfg := testConfig(windowSize)
	codes := testsignal.SineCodes(600, cfg.Analysis.SampleRate, 10, 16384)
	eng, err := New(cfg, samplesSource(codes...))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for range codes {
		if err := eng.Tick(); err != nil {
			t.Fatal(err)
		}
	}

	frame := eng.LatestFrame()
	if frame.Dominant != "Alpha" {
		powers := frame.Powers()
		t.Errorf("dominant = %q (powers %v), want Alpha", frame.Dominant, powers)
	}
}

func TestCloseReleasesSourceAndSinks(t *testing.T) {
	src := samplesSource()
	sink := &captureSink{}
	eng, err := New(testConfig(8), src, sink)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := eng.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !src.done {
		t.Error("source not closed")
	}
	if !sink.closed {
		t.Error("sink not closed")
	}
}

// constantSource never runs out; used for benchmarks.
type constantSource struct{ raw int64 }

func (c *constantSource) ReadRaw() (int64, error) { return c.raw, nil }
func (c *constantSource) Close() error            { return nil }

func BenchmarkTick(b *testing.B) {
	cfg := testConfig(config.DefaultWindowSize)
	eng, err := New(cfg, &constantSource{raw: 12000})
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	for b.Loop() {
		if err := eng.Tick(); err != nil {
			b.Fatal(err)
		}
	}
}
