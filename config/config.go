package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// OSCConfig defines the OSC backend target
type OSCConfig struct {
	Enabled bool   `json:"enabled"`
	Host    string `json:"host,omitempty"`
	Port    int    `json:"port,omitempty"`
}

// MIDIConfig defines the MIDI backend output
type MIDIConfig struct {
	Enabled  bool   `json:"enabled"`
	PortName string `json:"portName,omitempty"` // substring match, empty = first port
	Channel  uint8  `json:"channel,omitempty"`  // 0-15
}

// ClockConfig stores scheduler timing knobs
type ClockConfig struct {
	ResolutionMS int     `json:"resolutionMs,omitempty"` // tick interval
	Latency      float64 `json:"latency,omitempty"`      // look-ahead window, seconds
}

// Config is the main configuration structure
type Config struct {
	OSC   OSCConfig   `json:"osc,omitempty"`
	MIDI  MIDIConfig  `json:"midi,omitempty"`
	Clock ClockConfig `json:"clock,omitempty"`
	Debug bool        `json:"debug,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		OSC: OSCConfig{
			Enabled: true,
			Host:    "127.0.0.1",
			Port:    57120, // SuperCollider's default language port
		},
		MIDI: MIDIConfig{
			Enabled: false,
		},
		Clock: ClockConfig{
			ResolutionMS: 10,
			Latency:      0.05,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "xi"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
