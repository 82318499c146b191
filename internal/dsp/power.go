// SPDX-License-Identifier: MIT
package dsp

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// RMS returns the root-mean-square of the samples: sqrt(mean(x_i^2)).
// It is recomputed from scratch over the full window every tick; no
// smoothing is applied beyond what the window itself provides.
// The result is always >= 0 and is zero iff every sample is zero.
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sumSq := floats.Dot(samples, samples)
	return math.Sqrt(sumSq / float64(len(samples)))
}

// Converter maps raw ADC codes to physical units using a fixed linear
// scale: volts = raw * RefVoltage / CodeRange. The scale is constant for
// the session.
type Converter struct {
	RefVoltage float64
	CodeRange  float64
}

// NewConverter returns a Converter for the given full-scale voltage and
// code range (e.g. 4.096 V over 32768 codes for a 16-bit signed ADC).
func NewConverter(refVoltage float64, codeRange int) Converter {
	return Converter{RefVoltage: refVoltage, CodeRange: float64(codeRange)}
}

// ToVolts converts a raw ADC code to volts.
func (c Converter) ToVolts(raw int64) float64 {
	return float64(raw) * c.RefVoltage / c.CodeRange
}

// FromVolts converts volts back to a raw ADC code value.
func (c Converter) FromVolts(v float64) float64 {
	return v * c.CodeRange / c.RefVoltage
}
