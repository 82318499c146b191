// SPDX-License-Identifier: MIT
package udp

import (
	"fmt"
	"math"
	"sync"
	"time"

	applog "bandscope/internal/log"
	"bandscope/internal/transport"
)

// FrameProvider hands out the most recent frame snapshot. The engine
// implements it; the publisher polls instead of subscribing so its send
// rate is decoupled from the tick rate.
type FrameProvider interface {
	LatestFrame() *transport.Frame
}

// Publisher periodically encodes the latest band powers and sends them
// over UDP. It runs in its own goroutine between Start and Stop.
type Publisher struct {
	sender   *Sender
	frames   FrameProvider
	interval time.Duration

	ticker   *time.Ticker
	doneChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	mu       sync.Mutex

	lastSeq uint32
	packet  []byte // reused across sends
}

// NewPublisher creates a Publisher. interval <= 0 falls back to 50ms.
func NewPublisher(interval time.Duration, sender *Sender, frames FrameProvider) (*Publisher, error) {
	if sender == nil {
		return nil, fmt.Errorf("udp: sender must not be nil")
	}
	if frames == nil {
		return nil, fmt.Errorf("udp: frame provider must not be nil")
	}
	if interval <= 0 {
		interval = 50 * time.Millisecond
		applog.Warnf("udp: invalid publish interval, defaulting to %s", interval)
	}

	return &Publisher{
		sender:   sender,
		frames:   frames,
		interval: interval,
	}, nil
}

// Start launches the publish loop. Calling Start on a running publisher
// is a no-op.
func (p *Publisher) Start() {
	p.mu.Lock()
	if p.ticker != nil {
		p.mu.Unlock()
		applog.Warnf("udp: Start called but already running")
		return
	}
	p.ticker = time.NewTicker(p.interval)
	p.doneChan = make(chan struct{})
	p.stopOnce = sync.Once{}

	ticker := p.ticker
	doneChan := p.doneChan
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		applog.Infof("udp: publisher started (interval %s)", p.interval)
		for {
			select {
			case <-ticker.C:
				p.publishLatest()
			case <-doneChan:
				return
			}
		}
	}()
}

// Stop signals the loop to exit and waits for it.
func (p *Publisher) Stop() error {
	p.mu.Lock()
	if p.ticker == nil {
		p.mu.Unlock()
		return nil
	}
	p.stopOnce.Do(func() {
		close(p.doneChan)
		p.ticker.Stop()
		p.ticker = nil
	})
	p.mu.Unlock()

	p.wg.Wait()
	applog.Infof("udp: publisher stopped")
	return nil
}

// publishLatest sends the newest frame, skipping when nothing new arrived
// since the previous send.
func (p *Publisher) publishLatest() {
	frame := p.frames.LatestFrame()
	if frame == nil || frame.Seq == p.lastSeq {
		return
	}
	p.lastSeq = frame.Seq

	p.packet = EncodeFrame(p.packet, frame)
	if err := p.sender.Send(p.packet); err != nil {
		applog.Errorf("udp: send: %v", err)
	}
}

func floatBits(v float64) uint32 {
	return math.Float32bits(float32(v))
}

func bitsFloat(bits uint32) float32 {
	return math.Float32frombits(bits)
}
