// SPDX-License-Identifier: MIT
/*
Package source abstracts the byte stream producing one integer sample per
line. The production implementation reads a serial port; tests substitute
any io.Reader.

Error contract: ErrReadTimeout and ErrBadSample are recoverable (the
caller skips the current tick); failing to open the port at all is fatal
at startup.
*/
package source

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrReadTimeout reports that no complete sample line arrived within the
// configured read timeout.
var ErrReadTimeout = errors.New("source: read timeout")

// ErrBadSample reports a line that did not parse as a signed integer.
// Malformed and partial lines are expected on a live serial link and are
// skipped, never fatal.
var ErrBadSample = errors.New("source: malformed sample line")

// Source yields one raw ADC code per call.
type Source interface {
	// ReadRaw blocks for at most the configured read timeout and returns
	// the next sample as a raw integer code.
	ReadRaw() (int64, error)
	Close() error
}

// maxLineBytes bounds line accumulation so a stream that never emits a
// newline cannot grow the buffer without limit.
const maxLineBytes = 4096

// lineReader frames newline-terminated lines on top of a reader with
// timeout semantics: a zero-byte read with a nil error means the timeout
// expired. A partial line survives a timeout and is completed by later
// reads.
type lineReader struct {
	r       io.Reader
	pending []byte
	scratch []byte
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{
		r:       r,
		pending: make([]byte, 0, maxLineBytes),
		scratch: make([]byte, 256),
	}
}

// readLine returns the next complete line without its newline terminator.
func (lr *lineReader) readLine() (string, error) {
	for {
		if i := indexByte(lr.pending, '\n'); i >= 0 {
			line := string(lr.pending[:i])
			lr.pending = append(lr.pending[:0], lr.pending[i+1:]...)
			return strings.TrimSuffix(line, "\r"), nil
		}

		if len(lr.pending) >= maxLineBytes {
			lr.pending = lr.pending[:0]
			return "", fmt.Errorf("%w: no newline in %d bytes", ErrBadSample, maxLineBytes)
		}

		n, err := lr.r.Read(lr.scratch)
		if n > 0 {
			lr.pending = append(lr.pending, lr.scratch[:n]...)
			continue
		}
		if err != nil {
			return "", err
		}
		// Zero bytes and no error: the port read timed out.
		return "", ErrReadTimeout
	}
}

func indexByte(b []byte, c byte) int {
	for i := range b {
		if b[i] == c {
			return i
		}
	}
	return -1
}

// parseSample converts one text line to a raw ADC code.
func parseSample(line string) (int64, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return 0, fmt.Errorf("%w: empty line", ErrBadSample)
	}
	raw, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadSample, trimmed)
	}
	return raw, nil
}

// ReaderSource adapts any io.Reader (a file, a pipe, a test buffer) to the
// Source interface using the same line framing as the serial source.
type ReaderSource struct {
	lines  *lineReader
	closer io.Closer
}

// NewReaderSource wraps r. If r also implements io.Closer, Close is
// forwarded to it.
func NewReaderSource(r io.Reader) *ReaderSource {
	rs := &ReaderSource{lines: newLineReader(r)}
	if c, ok := r.(io.Closer); ok {
		rs.closer = c
	}
	return rs
}

// ReadRaw returns the next parsed sample from the reader.
func (rs *ReaderSource) ReadRaw() (int64, error) {
	line, err := rs.lines.readLine()
	if err != nil {
		return 0, err
	}
	return parseSample(line)
}

// Close closes the underlying reader when it supports closing.
func (rs *ReaderSource) Close() error {
	if rs.closer != nil {
		return rs.closer.Close()
	}
	return nil
}
