// SPDX-License-Identifier: MIT
package dsp

import (
	"math"
	"testing"

	"bandscope/pkg/testsignal"
)

func TestRMSKnownValues(t *testing.T) {
	tests := []struct {
		name    string
		samples []float64
		want    float64
	}{
		{"empty", nil, 0},
		{"all zeros", make([]float64, 100), 0},
		{"constant one", testsignal.DC(100, 1), 1},
		{"constant negative", testsignal.DC(100, -2), 2},
		{"alternating", []float64{3, -3, 3, -3}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RMS(tt.samples)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("RMS = %g, want %g", got, tt.want)
			}
		})
	}
}

func TestRMSNonNegative(t *testing.T) {
	signals := [][]float64{
		testsignal.Sine(256, 100, 7),
		testsignal.DC(256, -0.5),
		testsignal.Mix(testsignal.Sine(256, 100, 3), testsignal.DC(256, 1)),
	}
	for i, s := range signals {
		if got := RMS(s); got < 0 {
			t.Errorf("signal %d: RMS = %g, want >= 0", i, got)
		}
	}
}

func TestRMSZeroOnlyForZeroWindow(t *testing.T) {
	s := make([]float64, 50)
	if RMS(s) != 0 {
		t.Error("all-zero window should have zero power")
	}
	s[49] = 1e-9
	if RMS(s) == 0 {
		t.Error("non-zero window should have non-zero power")
	}
}

func TestRMSSineAmplitude(t *testing.T) {
	// A full-cycle sine has RMS amplitude/sqrt(2).
	s := testsignal.Sine(1000, 100, 10)
	want := 1 / math.Sqrt2
	if got := RMS(s); math.Abs(got-want) > 0.01 {
		t.Errorf("RMS of unit sine = %g, want ~%g", got, want)
	}
}

func TestConverterLinearAndReversible(t *testing.T) {
	conv := NewConverter(4.096, 32768)

	tests := []struct {
		raw   int64
		volts float64
	}{
		{0, 0},
		{16384, 2.048},
		{32768, 4.096},
		{-32768, -4.096},
		{1, 4.096 / 32768},
	}

	for _, tt := range tests {
		got := conv.ToVolts(tt.raw)
		if math.Abs(got-tt.volts) > 1e-12 {
			t.Errorf("ToVolts(%d) = %g, want %g", tt.raw, got, tt.volts)
		}
		back := conv.FromVolts(got)
		if math.Abs(back-float64(tt.raw)) > 1e-9 {
			t.Errorf("FromVolts(ToVolts(%d)) = %g, want %d", tt.raw, back, tt.raw)
		}
	}
}

func TestRMSDoesNotAllocate(t *testing.T) {
	s := testsignal.Sine(500, 100, 10)
	if allocs := testing.AllocsPerRun(100, func() {
		RMS(s)
	}); allocs != 0 {
		t.Errorf("RMS allocates %.0f times per call, want 0", allocs)
	}
}

func BenchmarkRMS(b *testing.B) {
	s := testsignal.Sine(500, 100, 10)
	b.ReportAllocs()
	for b.Loop() {
		RMS(s)
	}
}
