// SPDX-License-Identifier: MIT
package dsp

import (
	"fmt"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design/pass"
)

// BandFilter is a Butterworth bandpass filter for one band, realized as a
// highpass cascade at the low cutoff feeding a lowpass cascade at the high
// cutoff, each of the configured order.
type BandFilter struct {
	band Band
	hp   *biquad.Chain
	lp   *biquad.Chain
}

// NewBandFilter designs the filter for band at the given order and sample
// rate. Returns ErrInvalidBand when the cutoffs fall outside
// (0, Nyquist) or low >= high.
func NewBandFilter(band Band, order int, sampleRate float64) (*BandFilter, error) {
	if err := band.Validate(sampleRate); err != nil {
		return nil, err
	}
	if order <= 0 || order%2 != 0 {
		return nil, fmt.Errorf("%w: %s: order %d must be a positive even integer",
			ErrInvalidBand, band.Name, order)
	}

	hpCoeffs := pass.ButterworthHP(band.LowHz, order, sampleRate)
	lpCoeffs := pass.ButterworthLP(band.HighHz, order, sampleRate)
	if len(hpCoeffs) == 0 || len(lpCoeffs) == 0 {
		return nil, fmt.Errorf("%w: %s: filter design failed", ErrInvalidBand, band.Name)
	}

	return &BandFilter{
		band: band,
		hp:   biquad.NewChain(hpCoeffs),
		lp:   biquad.NewChain(lpCoeffs),
	}, nil
}

// Band returns the band this filter was designed for.
func (f *BandFilter) Band() Band {
	return f.band
}

// Apply filters src into dst in a single whole-window pass starting from
// zero filter state. dst and src must have equal length. Every call
// reprocesses the full window, so the output depends only on the current
// window contents, never on previous ticks.
func (f *BandFilter) Apply(dst, src []float64) {
	if len(dst) != len(src) {
		panic("dsp: Apply requires equal-length dst and src")
	}
	f.hp.Reset()
	f.lp.Reset()
	copy(dst, src)
	f.hp.ProcessBlock(dst)
	f.lp.ProcessBlock(dst)
}

// ProcessSample runs one sample through the cascade, carrying filter state
// across calls. This is the streaming alternative to Apply; steady-state
// output matches the whole-window pass, transients near the window head
// differ.
func (f *BandFilter) ProcessSample(x float64) float64 {
	return f.lp.ProcessSample(f.hp.ProcessSample(x))
}

// Reset clears the streaming filter state.
func (f *BandFilter) Reset() {
	f.hp.Reset()
	f.lp.Reset()
}

// Bank is the ordered set of band filters matching a Catalog.
type Bank struct {
	catalog Catalog
	filters []*BandFilter
}

// NewBank designs one BandFilter per catalog entry. Any single design
// failure aborts construction; there is no partial bank.
func NewBank(catalog Catalog, order int, sampleRate float64) (*Bank, error) {
	if err := catalog.Validate(sampleRate); err != nil {
		return nil, err
	}
	filters := make([]*BandFilter, len(catalog))
	for i, band := range catalog {
		f, err := NewBandFilter(band, order, sampleRate)
		if err != nil {
			return nil, err
		}
		filters[i] = f
	}
	return &Bank{catalog: catalog, filters: filters}, nil
}

// Catalog returns the bank's band catalog.
func (b *Bank) Catalog() Catalog {
	return b.catalog
}

// Len returns the number of bands.
func (b *Bank) Len() int {
	return len(b.filters)
}

// Filter returns the i-th band filter in catalog order.
func (b *Bank) Filter(i int) *BandFilter {
	return b.filters[i]
}
