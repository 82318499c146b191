// SPDX-License-Identifier: MIT
package udp

import (
	"fmt"
	"net"
	"sync"

	applog "bandscope/internal/log"
)

// Sender owns the UDP socket used for telemetry packets.
type Sender struct {
	conn   *net.UDPConn
	target *net.UDPAddr
	mu     sync.Mutex
	closed bool
}

// NewSender dials the target address ("host:port").
func NewSender(targetAddress string) (*Sender, error) {
	addr, err := net.ResolveUDPAddr("udp", targetAddress)
	if err != nil {
		return nil, fmt.Errorf("udp: resolve %q: %w", targetAddress, err)
	}

	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("udp: dial %q: %w", targetAddress, err)
	}

	applog.Infof("udp: sending to %s", targetAddress)
	return &Sender{conn: conn, target: addr}, nil
}

// Send writes one packet. Errors are returned, not retried; UDP telemetry
// is best effort.
func (s *Sender) Send(packet []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("udp: sender closed")
	}
	if _, err := s.conn.Write(packet); err != nil {
		return fmt.Errorf("udp: write: %w", err)
	}
	return nil
}

// Close releases the socket. Safe to call more than once.
func (s *Sender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}
