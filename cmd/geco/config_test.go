package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "geco.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigOverlaysFile(t *testing.T) {
	path := writeConfig(t, `
[log]
level = "debug"
format = "json"

[preview]
width = 200
elevation = 0.25

[bake]
workers = 3
profile = true
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 200, cfg.Preview.Width)
	assert.Equal(t, 512, cfg.Preview.Height)
	assert.Equal(t, float32(0.25), cfg.Preview.Elevation)
	assert.Equal(t, float32(3), cfg.Preview.Radius)
	assert.True(t, cfg.Preview.Globe)
	assert.Equal(t, 3, cfg.Bake.Workers)
	assert.Equal(t, 256, cfg.Bake.QueueSize)
	assert.True(t, cfg.Bake.Profile)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown key", "[preview]\nzoom = 2\n", "zoom"},
		{"wrong type", "[preview]\nwidth = \"wide\"\n", "Width"},
		{"syntax", "[preview\n", "line 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLogConfigLogger(t *testing.T) {
	var out bytes.Buffer
	logger, err := LogConfig{Level: "info", Format: "json"}.Logger(&out)
	require.NoError(t, err)
	logger.Debug("hidden")
	logger.Info("shown", "frames", 3)
	assert.NotContains(t, out.String(), "hidden")
	assert.True(t, strings.HasPrefix(out.String(), "{"))
	assert.Contains(t, out.String(), `"frames":3`)

	_, err = LogConfig{Level: "loud"}.Logger(&out)
	assert.Error(t, err)
	_, err = LogConfig{Level: "info", Format: "xml"}.Logger(&out)
	assert.Error(t, err)

	out.Reset()
	logger, err = LogConfig{}.Logger(&out)
	require.NoError(t, err)
	logger.Info("defaults")
	assert.Contains(t, out.String(), "level=INFO msg=defaults")
}
