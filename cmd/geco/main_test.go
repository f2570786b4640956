package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/klyja/geco/engine/renderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func geco(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func writeDemo(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "demo.pb")
	out, stderr, code := geco(t, "demo", "-out", path)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "2 features")
	return path
}

func TestUsage(t *testing.T) {
	_, stderr, code := geco(t)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "inspect")

	_, stderr, code = geco(t, "explode")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, `unknown command "explode"`)
}

func TestInspectJSON(t *testing.T) {
	path := writeDemo(t)
	out, stderr, code := geco(t, "inspect", "-in", path, "-frame", "60")
	require.Equal(t, 0, code, stderr)

	var doc inspection
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "Demo Borders", doc.Name)
	assert.Equal(t, int32(120), doc.TotalFrames)
	require.Len(t, doc.Features, 2)
	assert.Equal(t, doc.Features[1].ID, doc.ActiveFeature)
	require.NotNil(t, doc.Frame)
	assert.Equal(t, int32(60), *doc.Frame)
	require.Len(t, doc.Renderables, 2)
	assert.Len(t, doc.Renderables[1].Points, 5)
	assert.Contains(t, out, `"kind": "polygon"`)
}

func TestInspectYAML(t *testing.T) {
	path := writeDemo(t)
	out, stderr, code := geco(t, "inspect", "-in", path, "-format", "yaml")
	require.Equal(t, 0, code, stderr)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "Demo Borders", doc["name"])
	assert.NotContains(t, doc, "renderables")
	assert.Contains(t, out, "kind: polyline")
}

func TestInspectErrors(t *testing.T) {
	_, stderr, code := geco(t, "inspect")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "-in is required")

	bad := filepath.Join(t.TempDir(), "bad.pb")
	require.NoError(t, os.WriteFile(bad, []byte{0x0a, 0x05, 'a'}, 0o644))
	_, stderr, code = geco(t, "inspect", "-in", bad)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "decode")

	path := writeDemo(t)
	_, stderr, code = geco(t, "inspect", "-in", path, "-format", "xml")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unknown format")
}

func TestPreview(t *testing.T) {
	path := writeDemo(t)
	png := filepath.Join(t.TempDir(), "frame.png")
	out, stderr, code := geco(t, "preview", "-in", path, "-frame", "60", "-out", png, "-width", "64", "-height", "64")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "12 segments")
	assert.FileExists(t, png)
}

func TestBake(t *testing.T) {
	path := writeDemo(t)
	dir := filepath.Join(t.TempDir(), "baked")
	cfg := writeConfig(t, "[bake]\nworkers = 2\n[preview]\nwidth = 32\nheight = 32\n")

	out, stderr, code := geco(t, "-config", cfg, "bake", "-in", path, "-from", "58", "-to", "61", "-out", dir, "-png")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "wrote 4 frames")

	for frame, segments := range map[string]int{"00058": 11, "00060": 12} {
		data, err := os.ReadFile(filepath.Join(dir, "frame_"+frame+".bin"))
		require.NoError(t, err)
		assert.Len(t, data, segments*renderer.FloatsPerSegment*4, "frame %s", frame)
		assert.FileExists(t, filepath.Join(dir, "frame_"+frame+".png"))
	}
}

func TestBadConfig(t *testing.T) {
	cfg := writeConfig(t, "[log]\nlevel = \"loud\"\n")
	_, stderr, code := geco(t, "-config", cfg, "demo", "-out", filepath.Join(t.TempDir(), "x.pb"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "log level")
}
