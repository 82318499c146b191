// SPDX-License-Identifier: MIT
package dsp

import (
	"errors"
	"fmt"
)

// ErrInvalidBand reports a band whose cutoffs violate
// 0 < low < high < Nyquist. Band construction failures are fatal at
// startup: a partial filter bank would corrupt the dominant-band
// comparison set, so there is no degraded mode.
var ErrInvalidBand = errors.New("dsp: invalid band cutoffs")

// Band is a named frequency sub-range [LowHz, HighHz].
type Band struct {
	Name   string
	LowHz  float64
	HighHz float64
}

// Validate checks the band cutoffs against the Nyquist frequency for the
// given sample rate.
func (b Band) Validate(sampleRate float64) error {
	nyquist := sampleRate / 2
	if b.LowHz <= 0 || b.LowHz >= b.HighHz || b.HighHz >= nyquist {
		return fmt.Errorf("%w: %s [%g, %g] Hz with nyquist %g Hz",
			ErrInvalidBand, b.Name, b.LowHz, b.HighHz, nyquist)
	}
	return nil
}

// Catalog is an ordered, immutable-at-runtime set of bands. The slice
// order is the tie-break order for dominant-band selection.
type Catalog []Band

// Names returns the band names in catalog order.
func (c Catalog) Names() []string {
	names := make([]string, len(c))
	for i, b := range c {
		names[i] = b.Name
	}
	return names
}

// Validate checks every band in the catalog against the sample rate.
func (c Catalog) Validate(sampleRate float64) error {
	if len(c) == 0 {
		return fmt.Errorf("%w: empty catalog", ErrInvalidBand)
	}
	for _, b := range c {
		if err := b.Validate(sampleRate); err != nil {
			return err
		}
	}
	return nil
}

// Dominant returns the index and name of the band with the maximum power,
// scanning in catalog order and keeping the first maximum on ties. powers
// must be indexed in catalog order. Returns (-1, "") for an empty catalog,
// which cannot happen with a validated configuration.
func (c Catalog) Dominant(powers []float64) (int, string) {
	if len(c) == 0 || len(powers) == 0 {
		return -1, ""
	}
	best := 0
	for i := 1; i < len(c) && i < len(powers); i++ {
		if powers[i] > powers[best] {
			best = i
		}
	}
	return best, c[best].Name
}
