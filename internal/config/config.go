// SPDX-License-Identifier: MIT
package config

import "time"

// Core configuration constants that define the boundaries and defaults
// for the acquisition and analysis pipeline.
const (
	// Default values for the analysis pipeline
	DefaultWindowSize  = 500   // Samples held in each sliding window
	DefaultSampleRate  = 100.0 // Sensor sample rate (Hz)
	DefaultFilterOrder = 4     // Butterworth order per band edge
	DefaultRefVoltage  = 4.096 // ADC full-scale reference (V)
	DefaultCodeRange   = 32768 // ADC code range (16-bit signed)

	// Default values for the serial source
	DefaultPort        = ""              // No port until configured
	DefaultBaudRate    = 9600            // Sensor board default
	DefaultReadTimeout = 1 * time.Second // Bounded wait per line read

	// Default values for rendering
	DefaultRedrawInterval = 50 * time.Millisecond
	DefaultRawRangeVolts  = 3.0 // Raw plot scale: ±3 V
	DefaultBandRangeVolts = 0.5 // Per-band plot scale: ±0.5 V

	// Processing limits
	MinWindowSize  = 8
	MaxWindowSize  = 65536
	MinSampleRate  = 1.0
	MaxSampleRate  = 100000.0
	MaxFilterOrder = 16
)

// BandSetting is one configurable entry of the band catalog. Order in the
// slice is the catalog order used for tie-breaking.
type BandSetting struct {
	Name   string  `yaml:"name"`
	LowHz  float64 `yaml:"low_hz"`
	HighHz float64 `yaml:"high_hz"`
}

// DefaultBands returns the five canonical EEG bands spanning 0.5-45 Hz.
func DefaultBands() []BandSetting {
	return []BandSetting{
		{Name: "Delta", LowHz: 0.5, HighHz: 4},
		{Name: "Theta", LowHz: 4, HighHz: 8},
		{Name: "Alpha", LowHz: 8, HighHz: 13},
		{Name: "Beta", LowHz: 13, HighHz: 30},
		{Name: "Gamma", LowHz: 30, HighHz: 45},
	}
}

// SourceConfig holds settings for the serial sample source.
type SourceConfig struct {
	Port        string        `yaml:"port"`         // Serial device path, e.g. /dev/ttyUSB0
	BaudRate    int           `yaml:"baud_rate"`    // Line speed in bits per second
	ReadTimeout time.Duration `yaml:"read_timeout"` // Bounded wait for one sample line
}

// AnalysisConfig holds settings for the filter-and-power pipeline.
type AnalysisConfig struct {
	WindowSize  int           `yaml:"window_size"`  // Sliding window length W
	SampleRate  float64       `yaml:"sample_rate"`  // Sensor sample rate (Hz)
	FilterOrder int           `yaml:"filter_order"` // Butterworth order per band edge
	RefVoltage  float64       `yaml:"ref_voltage"`  // ADC full-scale voltage
	CodeRange   int           `yaml:"code_range"`   // ADC code range (e.g. 32768)
	Bands       []BandSetting `yaml:"bands"`        // Ordered band catalog
}

// RenderConfig holds settings for the render sinks.
type RenderConfig struct {
	RedrawInterval time.Duration `yaml:"redraw_interval"` // Tick cadence
	RawRangeVolts  float64       `yaml:"raw_range_volts"` // Raw plot amplitude range (±)
	BandRangeVolts float64       `yaml:"band_range_volts"`
}

// TransportConfig holds settings for the optional telemetry sinks.
type TransportConfig struct {
	WebSocketEnabled bool          `yaml:"websocket_enabled"`
	WebSocketAddr    string        `yaml:"websocket_addr"`
	UDPEnabled       bool          `yaml:"udp_enabled"`
	UDPTargetAddress string        `yaml:"udp_target_address"`
	UDPSendInterval  time.Duration `yaml:"udp_send_interval"`
	MQTTEnabled      bool          `yaml:"mqtt_enabled"`
	MQTTBroker       string        `yaml:"mqtt_broker"`
	MQTTTopic        string        `yaml:"mqtt_topic"`
}

// Config is the root configuration, loaded from YAML with env overrides.
type Config struct {
	Debug     bool            `yaml:"debug"`
	LogLevel  string          `yaml:"log_level"`
	Source    SourceConfig    `yaml:"source"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Render    RenderConfig    `yaml:"render"`
	Transport TransportConfig `yaml:"transport"`
}

// NewConfig returns a Config populated with defaults. This is the base
// configuration before YAML, env, and flag overrides are applied.
func NewConfig() *Config {
	return &Config{
		Debug:    false,
		LogLevel: "info",
		Source: SourceConfig{
			Port:        DefaultPort,
			BaudRate:    DefaultBaudRate,
			ReadTimeout: DefaultReadTimeout,
		},
		Analysis: AnalysisConfig{
			WindowSize:  DefaultWindowSize,
			SampleRate:  DefaultSampleRate,
			FilterOrder: DefaultFilterOrder,
			RefVoltage:  DefaultRefVoltage,
			CodeRange:   DefaultCodeRange,
			Bands:       DefaultBands(),
		},
		Render: RenderConfig{
			RedrawInterval: DefaultRedrawInterval,
			RawRangeVolts:  DefaultRawRangeVolts,
			BandRangeVolts: DefaultBandRangeVolts,
		},
		Transport: TransportConfig{
			WebSocketEnabled: false,
			WebSocketAddr:    ":8080",
			UDPEnabled:       false,
			UDPTargetAddress: "127.0.0.1:9090",
			UDPSendInterval:  DefaultRedrawInterval,
			MQTTEnabled:      false,
			MQTTBroker:       "tcp://127.0.0.1:1883",
			MQTTTopic:        "bandscope/powers",
		},
	}
}
