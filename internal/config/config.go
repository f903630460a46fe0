// Package config holds the settings of the fixcodec command, read from a
// TOML file and overridden by flags.
package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap/zapcore"
)

const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config is the command configuration.
//
//	schema = "types.yaml"
//	type = "Bar"
//	log_level = "debug"
//	color = "never"
type Config struct {
	// Schema is the path of the schema document, YAML or TOML.
	Schema string `toml:"schema"`
	// Type is the type reference commands work on, e.g. "Bar" or "[4]Bar".
	Type     string `toml:"type"`
	LogLevel string `toml:"log_level"`
	// Color is one of auto, always or never.
	Color string `toml:"color"`
}

func Default() *Config {
	return &Config{
		LogLevel: "warn",
		Color:    ColorAuto,
	}
}

// Load reads path over the defaults. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if unknown := md.Undecoded(); len(unknown) > 0 {
		return nil, fmt.Errorf("config %s has unknown keys %v", path, unknown)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s is invalid: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("invalid color mode: %q", c.Color)
	}
	return nil
}

// Level returns the zap level named by LogLevel. An empty level is info.
func (c *Config) Level() (zapcore.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info", "":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return 0, fmt.Errorf("invalid log level: %q", c.LogLevel)
	}
}
