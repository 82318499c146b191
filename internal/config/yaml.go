// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file specified by path. If path
// is empty, it searches default locations ("bandscope.yaml", "config.yaml").
// If no file is found, built-in defaults are used. Environment overrides are
// applied after loading, then the final configuration is validated.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		candidates := []string{"bandscope.yaml", "config.yaml"}
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
		if path == "" {
			cfg.applyEnvOverrides()
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("invalid default configuration: %w", err)
			}
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks structural invariants that must hold before the filter
// bank is constructed. Band cutoffs are checked against the Nyquist bound
// here so a malformed catalog aborts startup rather than surfacing later
// as a filter design failure.
func (c *Config) Validate() error {
	a := &c.Analysis

	if a.WindowSize < MinWindowSize || a.WindowSize > MaxWindowSize {
		return fmt.Errorf("analysis.window_size %d outside [%d, %d]",
			a.WindowSize, MinWindowSize, MaxWindowSize)
	}
	if a.SampleRate < MinSampleRate || a.SampleRate > MaxSampleRate {
		return fmt.Errorf("analysis.sample_rate %g outside [%g, %g]",
			a.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if a.FilterOrder <= 0 || a.FilterOrder%2 != 0 || a.FilterOrder > MaxFilterOrder {
		return fmt.Errorf("analysis.filter_order %d must be a positive even integer <= %d",
			a.FilterOrder, MaxFilterOrder)
	}
	if a.RefVoltage <= 0 {
		return fmt.Errorf("analysis.ref_voltage %g must be positive", a.RefVoltage)
	}
	if a.CodeRange <= 0 {
		return fmt.Errorf("analysis.code_range %d must be positive", a.CodeRange)
	}
	if len(a.Bands) == 0 {
		return fmt.Errorf("analysis.bands must not be empty")
	}

	nyquist := a.SampleRate / 2
	for i, b := range a.Bands {
		if b.Name == "" {
			return fmt.Errorf("analysis.bands[%d]: name must not be empty", i)
		}
		if b.LowHz <= 0 || b.LowHz >= b.HighHz || b.HighHz >= nyquist {
			return fmt.Errorf("analysis.bands[%d] %q: need 0 < low (%g) < high (%g) < nyquist (%g)",
				i, b.Name, b.LowHz, b.HighHz, nyquist)
		}
	}

	if c.Source.BaudRate <= 0 {
		return fmt.Errorf("source.baud_rate %d must be positive", c.Source.BaudRate)
	}
	if c.Source.ReadTimeout <= 0 {
		return fmt.Errorf("source.read_timeout must be positive")
	}
	if c.Render.RedrawInterval <= 0 {
		return fmt.Errorf("render.redraw_interval must be positive")
	}

	if c.Transport.UDPEnabled && c.Transport.UDPSendInterval <= 0 {
		return fmt.Errorf("transport.udp_send_interval must be positive when UDP is enabled")
	}

	return nil
}

// applyEnvOverrides applies BANDSCOPE_* environment variables on top of the
// loaded configuration. Only the knobs that matter for headless deployments
// are exposed this way.
func (c *Config) applyEnvOverrides() {
	if val, ok := os.LookupEnv("BANDSCOPE_DEBUG"); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Debug = b
		}
	}
	if val, ok := os.LookupEnv("BANDSCOPE_PORT"); ok {
		c.Source.Port = val
	}
	if val, ok := os.LookupEnv("BANDSCOPE_BAUD"); ok {
		if n, err := strconv.Atoi(val); err == nil {
			c.Source.BaudRate = n
		}
	}
	if val, ok := os.LookupEnv("BANDSCOPE_WS_ADDR"); ok {
		c.Transport.WebSocketAddr = val
		c.Transport.WebSocketEnabled = true
	}
	if val, ok := os.LookupEnv("BANDSCOPE_UDP_TARGET"); ok {
		c.Transport.UDPTargetAddress = val
		c.Transport.UDPEnabled = true
	}
	if val, ok := os.LookupEnv("BANDSCOPE_UDP_INTERVAL"); ok {
		if d, err := time.ParseDuration(val); err == nil {
			c.Transport.UDPSendInterval = d
		}
	}
	if val, ok := os.LookupEnv("BANDSCOPE_MQTT_BROKER"); ok {
		c.Transport.MQTTBroker = val
		c.Transport.MQTTEnabled = true
	}
}
