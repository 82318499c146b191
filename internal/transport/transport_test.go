// SPDX-License-Identifier: MIT
package transport

import (
	"io"
	"os"
	"testing"
	"time"

	applog "bandscope/internal/log"
)

func sampleFrame(seq uint32) *Frame {
	return &Frame{
		Seq:       seq,
		Timestamp: time.Now(),
		Raw:       []float64{0, 0.5, 1.0},
		Bands: []BandFrame{
			{Name: "Delta", LowHz: 0.5, HighHz: 4, Power: 0.1},
			{Name: "Alpha", LowHz: 8, HighHz: 13, Power: 0.7},
		},
		Dominant:      "Alpha",
		DominantIndex: 1,
	}
}

func TestFramePowersFollowCatalogOrder(t *testing.T) {
	frame := sampleFrame(1)
	powers := frame.Powers()
	if len(powers) != 2 {
		t.Fatalf("Powers() length = %d, want 2", len(powers))
	}
	if powers[0] != 0.1 || powers[1] != 0.7 {
		t.Errorf("Powers() = %v, want [0.1 0.7]", powers)
	}
}

func TestLoggingTransportNeverFails(t *testing.T) {
	applog.SetOutput(io.Discard)
	defer applog.SetOutput(os.Stderr)

	lt := NewLoggingTransport()
	for seq := uint32(1); seq <= 3; seq++ {
		if err := lt.Send(sampleFrame(seq)); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}
	if err := lt.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestWebSocketTransportSendNeverBlocks(t *testing.T) {
	wst := NewWebSocketTransport("127.0.0.1:0")
	defer wst.Close()

	// Far more frames than the queue holds; with no clients connected the
	// sink must shed load instead of stalling the producer.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for seq := uint32(1); seq <= 1000; seq++ {
			if err := wst.Send(sampleFrame(seq)); err != nil {
				t.Errorf("Send: %v", err)
				return
			}
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Send blocked on a full broadcast queue")
	}
}

func TestWebSocketTransportCloseStopsServer(t *testing.T) {
	wst := NewWebSocketTransport("127.0.0.1:0")
	if err := wst.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// Sends after Close are still safe; the sink just sheds them.
	if err := wst.Send(sampleFrame(1)); err != nil {
		t.Errorf("Send after Close: %v", err)
	}
}
