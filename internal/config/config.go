package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Client  ClientConfig  `toml:"client"`
	Network NetworkConfig `toml:"network"`
	Logging LoggingConfig `toml:"logging"`
	Script  ScriptConfig  `toml:"script"`
	Replay  ReplayConfig  `toml:"replay"`
}

type ClientConfig struct {
	Name      string `toml:"name"`       // player/display name sent at login
	StateKeys string `toml:"state_keys"` // optional YAML state-key table, builtin when empty
}

type NetworkConfig struct {
	Server      string        `toml:"server"`    // host:port for tcp, full URL for websocket
	Transport   string        `toml:"transport"` // "tcp" or "websocket"
	DialTimeout time.Duration `toml:"dial_timeout"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
	// File routes logs to a rotating file instead of the terminal, so a
	// full-screen presentation layer is not scribbled over.
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

type ScriptConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type ReplayConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Client: ClientConfig{
			Name: "adventurer",
		},
		Network: NetworkConfig{
			Server:      "127.0.0.1:9190",
			Transport:   "tcp",
			DialTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
		Script: ScriptConfig{
			Enabled: false,
			Dir:     "scripts",
		},
		Replay: ReplayConfig{
			Enabled: false,
			Path:    "ghack-session.journal",
		},
	}
}
