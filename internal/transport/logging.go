// SPDX-License-Identifier: MIT
package transport

import applog "bandscope/internal/log"

// LoggingTransport is a debug sink that logs the dominant band and powers.
type LoggingTransport struct{}

// NewLoggingTransport returns a sink that writes frames to the logger.
func NewLoggingTransport() *LoggingTransport {
	applog.Infof("transport: using logging sink")
	return &LoggingTransport{}
}

// Send logs the frame summary at debug level. It never fails.
func (lt *LoggingTransport) Send(frame *Frame) error {
	applog.Debugf("frame seq=%d dominant=%s powers=%v",
		frame.Seq, frame.Dominant, frame.Powers())
	return nil
}

// Close is a no-op.
func (lt *LoggingTransport) Close() error {
	return nil
}

var _ Transport = (*LoggingTransport)(nil)
