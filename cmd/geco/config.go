package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/klyja/geco/common"
	"github.com/pelletier/go-toml/v2"
)

// Config holds the defaults read from a geco.toml file. Command-line flags override them.
type Config struct {
	Log     LogConfig     `toml:"log"`
	Preview PreviewConfig `toml:"preview"`
	Bake    BakeConfig    `toml:"bake"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn or error
	Format string `toml:"format"` // text or json
}

// PreviewConfig configures PNG previews.
type PreviewConfig struct {
	Width       int     `toml:"width"`
	Height      int     `toml:"height"`
	Azimuth     float32 `toml:"azimuth"`   // radians
	Elevation   float32 `toml:"elevation"` // radians
	Radius      float32 `toml:"radius"`
	LineWidth   float64 `toml:"line_width"`
	HiddenAlpha float64 `toml:"hidden_alpha"`
	Globe       bool    `toml:"globe"`
}

// BakeConfig configures frame-range baking.
type BakeConfig struct {
	Workers   int  `toml:"workers"` // 0 picks one less than the CPU count
	QueueSize int  `toml:"queue_size"`
	Profile   bool `toml:"profile"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Preview: PreviewConfig{
			Width:       512,
			Height:      512,
			Elevation:   0.5,
			Radius:      3,
			LineWidth:   2,
			HiddenAlpha: 0.2,
			Globe:       true,
		},
		Bake: BakeConfig{
			QueueSize: 256,
		},
	}
}

// LoadConfig reads path over DefaultConfig. An empty path returns the defaults. Unknown keys are an error.
//
// Parameters:
//   - path: the TOML file, or ""
//
// Returns:
//   - Config: the merged configuration
//   - error: an error if the file cannot be read or parsed
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := decodeConfig(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func decodeConfig(data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	err := dec.Decode(cfg)

	var strict *toml.StrictMissingError
	if errors.As(err, &strict) {
		return errors.New(strict.String())
	}
	var decodeErr *toml.DecodeError
	if errors.As(err, &decodeErr) {
		row, col := decodeErr.Position()
		return fmt.Errorf("line %d, column %d: %w", row, col, err)
	}
	return err
}

// Logger builds the slog logger described by c, writing to w.
//
// Parameters:
//   - w: the log destination
//
// Returns:
//   - *slog.Logger: the logger
//   - error: an error if the level or format is unknown
func (c LogConfig) Logger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(common.Coalesce(c.Level, "info"))); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(common.Coalesce(c.Format, "text")) {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", c.Format)
	}
}
