package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"bandscope/cmd"
	"bandscope/internal/engine"
	applog "bandscope/internal/log"
	"bandscope/internal/source"
	"bandscope/internal/transport"
	"bandscope/internal/transport/udp"
	"bandscope/internal/tui"
)

// main runs in three phases:
//
// 1. Startup (cold path): parse flags, load configuration, open the serial
// port, design the filter bank. Any failure here is fatal: a malformed
// band catalog or an unavailable source cannot be recovered at runtime.
//
// 2. Concurrent phase: the engine ticks on the redraw interval in its own
// goroutine; render and telemetry sinks consume frames.
//
// 3. Shutdown (cold path): on SIGINT/SIGTERM or the view quitting, cancel
// the engine, stop the UDP publisher, and release the serial port.
func main() {
	opts, err := cmd.ParseArgs()
	if err != nil {
		applog.Fatalf("startup: %v", err)
	}

	// One-off commands run without touching the pipeline.
	if opts.Command == "list" {
		listPorts()
		return
	}
	if !opts.Run {
		return
	}

	cfg := opts.Config
	if level, ok := applog.ParseLevel(cfg.LogLevel); ok {
		applog.SetLevel(level)
	}
	if cfg.Debug {
		applog.SetLevel(applog.LevelDebug)
	}

	// ==================== STARTUP PHASE ====================

	src, err := source.OpenSerial(cfg.Source.Port, cfg.Source.BaudRate, cfg.Source.ReadTimeout)
	if err != nil {
		applog.Fatalf("startup: %v", err)
	}

	var sinks []transport.Transport
	var scopeSink *tui.Sink
	if opts.Headless {
		sinks = append(sinks, transport.NewLoggingTransport())
	} else {
		scopeSink = tui.NewSink()
		sinks = append(sinks, scopeSink)
	}
	if cfg.Transport.WebSocketEnabled {
		sinks = append(sinks, transport.NewWebSocketTransport(cfg.Transport.WebSocketAddr))
	}
	if cfg.Transport.MQTTEnabled {
		mqttSink, err := transport.NewMQTTTransport(cfg.Transport.MQTTBroker, cfg.Transport.MQTTTopic)
		if err != nil {
			applog.Fatalf("startup: %v", err)
		}
		sinks = append(sinks, mqttSink)
	}

	eng, err := engine.New(cfg, src, sinks...)
	if err != nil {
		// Covers invalid band cutoffs: the filter bank must be complete
		// or the process does not start.
		applog.Fatalf("startup: %v", err)
	}

	var publisher *udp.Publisher
	if cfg.Transport.UDPEnabled {
		sender, err := udp.NewSender(cfg.Transport.UDPTargetAddress)
		if err != nil {
			applog.Fatalf("startup: %v", err)
		}
		publisher, err = udp.NewPublisher(cfg.Transport.UDPSendInterval, sender, eng)
		if err != nil {
			applog.Fatalf("startup: %v", err)
		}
	}

	// ==================== CONCURRENT PHASE ====================

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	engineDone := make(chan struct{})
	go func() {
		defer close(engineDone)
		_ = eng.Run(ctx)
	}()

	if publisher != nil {
		publisher.Start()
	}

	if scopeSink != nil {
		program := tea.NewProgram(tui.NewModel(scopeSink.Frames()))
		if _, err := program.Run(); err != nil {
			applog.Errorf("view: %v", err)
		}
		// View quit (q / ctrl-c inside the TUI): stop the engine too.
		cancel()
	}

	<-ctx.Done()
	<-engineDone

	// ==================== SHUTDOWN PHASE ====================

	if publisher != nil {
		if err := publisher.Stop(); err != nil {
			applog.Errorf("shutdown: udp publisher: %v", err)
		}
	}
	if err := eng.Close(); err != nil {
		applog.Errorf("shutdown: %v", err)
	}

	processed, skipped := eng.Stats()
	applog.Infof("shutdown: %d frames rendered, %d ticks skipped", processed, skipped)
}

func listPorts() {
	ports, err := source.ListPorts()
	if err != nil {
		applog.Fatalf("list: %v", err)
	}
	if len(ports) == 0 {
		fmt.Println("No serial ports found.")
		return
	}
	fmt.Println("Available serial ports:")
	for _, port := range ports {
		fmt.Printf("  %s\n", port)
	}
}
