// SPDX-License-Identifier: MIT
package source

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// SerialSource reads newline-delimited ASCII sample codes from a serial
// port. Each read waits at most the configured timeout; a stalled sensor
// therefore cannot hang a tick.
type SerialSource struct {
	port  serial.Port
	name  string
	lines *lineReader
}

// OpenSerial opens the named port at the given baud rate and arms the read
// timeout. An open failure is fatal for the caller; there is no retry.
func OpenSerial(name string, baudRate int, readTimeout time.Duration) (*SerialSource, error) {
	if name == "" {
		return nil, fmt.Errorf("source: no serial port configured")
	}

	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("source: open %s: %w", name, err)
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("source: set read timeout on %s: %w", name, err)
	}

	return &SerialSource{
		port:  port,
		name:  name,
		lines: newLineReader(port),
	}, nil
}

// Name returns the port name.
func (s *SerialSource) Name() string {
	return s.name
}

// ReadRaw returns the next sample code from the port. Timeouts surface as
// ErrReadTimeout, unparseable lines as ErrBadSample; both are skip-tick
// conditions for the caller.
func (s *SerialSource) ReadRaw() (int64, error) {
	line, err := s.lines.readLine()
	if err != nil {
		return 0, err
	}
	return parseSample(line)
}

// Close releases the serial port.
func (s *SerialSource) Close() error {
	return s.port.Close()
}

// ListPorts enumerates the serial ports visible to the host, for the CLI
// `list` command.
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("source: list ports: %w", err)
	}
	return ports, nil
}

var _ Source = (*SerialSource)(nil)
var _ Source = (*ReaderSource)(nil)
