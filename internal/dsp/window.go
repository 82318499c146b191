// SPDX-License-Identifier: MIT
/*
Package dsp implements the streaming filter-and-power pipeline:
fixed-length sliding windows, a Butterworth bandpass filter bank,
RMS power estimation, and dominant-band selection.

The pipeline is allocation-free per tick: windows shift in place and
filters write into pre-allocated scratch buffers owned by the caller.
*/
package dsp

// Window is a fixed-length sliding history of samples. It is created
// zero-filled and keeps its length constant for the process lifetime:
// every Push discards the oldest (head) element and appends the newest
// at the tail.
type Window struct {
	data []float64
}

// NewWindow returns a zero-filled window of the given size.
// Size must be positive.
func NewWindow(size int) *Window {
	if size <= 0 {
		panic("dsp: window size must be positive")
	}
	return &Window{data: make([]float64, size)}
}

// Push shifts the window left by one and places v at the tail.
// The length is preserved exactly.
func (w *Window) Push(v float64) {
	copy(w.data, w.data[1:])
	w.data[len(w.data)-1] = v
}

// Len returns the window length W.
func (w *Window) Len() int {
	return len(w.data)
}

// Values returns the backing slice, oldest first. The slice is mutated by
// subsequent Push calls; use Snapshot for a stable copy.
func (w *Window) Values() []float64 {
	return w.data
}

// Tail returns the newest sample.
func (w *Window) Tail() float64 {
	return w.data[len(w.data)-1]
}

// Snapshot returns a copy of the current window contents.
func (w *Window) Snapshot() []float64 {
	out := make([]float64, len(w.data))
	copy(out, w.data)
	return out
}
