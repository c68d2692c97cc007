package app

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/soqlgrid/internal/render"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPaths []string // hcl files or directories
	EnvFiles    []string // loaded before the connection files

	LogFormat string
	LogLevel  string
	Output    string
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.ConfigPaths) == 0 {
		return nil, errors.New("at least one connections file or directory is required")
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	f, err := render.ParseFormat(cfg.Output)
	if err != nil {
		return nil, err
	}
	cfg.Output = string(f)
	return &cfg, nil
}
