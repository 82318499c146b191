// SPDX-License-Identifier: MIT
/*
Package transport defines the render-sink boundary: a Frame snapshot
produced once per tick and a Transport interface consuming it.
Implementations must not block the tick loop; slow consumers drop frames.
*/
package transport

import "time"

// BandFrame carries one band's filtered window and its current RMS power.
type BandFrame struct {
	Name    string    `json:"name"`
	LowHz   float64   `json:"low_hz"`
	HighHz  float64   `json:"high_hz"`
	Samples []float64 `json:"samples"`
	Power   float64   `json:"power"`
}

// Frame is the per-tick snapshot handed to every sink: the raw window in
// volts, all per-band filtered windows, per-band powers, and the dominant
// band. Frames are immutable after publication; sinks may retain them.
type Frame struct {
	Seq           uint32      `json:"seq"`
	Timestamp     time.Time   `json:"timestamp"`
	Raw           []float64   `json:"raw"`
	Bands         []BandFrame `json:"bands"`
	Dominant      string      `json:"dominant"`
	DominantIndex int         `json:"dominant_index"`

	// Fixed display scaling; configuration, not computed from data.
	RawRangeVolts  float64 `json:"raw_range_volts"`
	BandRangeVolts float64 `json:"band_range_volts"`
}

// Powers returns the per-band powers in catalog order.
func (f *Frame) Powers() []float64 {
	powers := make([]float64, len(f.Bands))
	for i, b := range f.Bands {
		powers[i] = b.Power
	}
	return powers
}

// Transport is a render or telemetry sink for per-tick frames.
// Implementations should be safe for use from a single producer goroutine
// and must return quickly; queueing and fan-out happen inside the sink.
type Transport interface {
	Send(frame *Frame) error
	Close() error
}
