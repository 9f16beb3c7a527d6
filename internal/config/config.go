// Package config loads server configuration from YAML files. A missing
// file is not an error: every loader falls back to its defaults.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// GameServer holds all configuration for the game server. The listen
// port is deliberately absent: it comes from the -p flag only.
type GameServer struct {
	BindAddress string `yaml:"bind_address"`
	MaxClients  int    `yaml:"max_clients"`
	LogLevel    string `yaml:"log_level"` // debug|info|warn|error
}

// DefaultGameServer returns the configuration used when no file exists.
func DefaultGameServer() GameServer {
	return GameServer{
		BindAddress: "0.0.0.0",
		MaxClients:  64,
		LogLevel:    "info",
	}
}

// LoadGameServer reads the configuration at path, filling missing
// fields from the defaults.
func LoadGameServer(path string) (GameServer, error) {
	cfg := DefaultGameServer()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.MaxClients <= 0 {
		return cfg, fmt.Errorf("config %s: max_clients must be positive, got %d", path, cfg.MaxClients)
	}
	return cfg, nil
}

// SlogLevel maps the configured log level onto slog. Unknown values
// fall back to info.
func (c GameServer) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
