// Package testsignal provides deterministic waveform generators shared by
// the pipeline tests.
package testsignal

import "math"

// Sine returns size samples of a unit-amplitude sine at frequency Hz,
// sampled at sampleRate.
func Sine(size int, sampleRate, frequency float64) []float64 {
	out := make([]float64, size)
	for i := range out {
		t := float64(i) / sampleRate
		out[i] = math.Sin(2 * math.Pi * frequency * t)
	}
	return out
}

// SineCodes returns size raw ADC codes of a sine at frequency Hz scaled to
// amplitude codes (e.g. 16384 for half scale of a 16-bit ADC).
func SineCodes(size int, sampleRate, frequency float64, amplitude int64) []int64 {
	out := make([]int64, size)
	for i := range out {
		t := float64(i) / sampleRate
		out[i] = int64(math.Round(math.Sin(2*math.Pi*frequency*t) * float64(amplitude)))
	}
	return out
}

// DC returns size samples of the constant value v.
func DC(size int, v float64) []float64 {
	out := make([]float64, size)
	for i := range out {
		out[i] = v
	}
	return out
}

// Mix sums the given signals element-wise. All inputs must share a length.
func Mix(signals ...[]float64) []float64 {
	if len(signals) == 0 {
		return nil
	}
	out := make([]float64, len(signals[0]))
	for _, s := range signals {
		for i, v := range s {
			out[i] += v
		}
	}
	return out
}
