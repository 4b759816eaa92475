package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lumen.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
debug = true

[window]
title = "demo"
width = 640
height = 480
vsync = false

[renderer]
max_instances = 5000
clear_color = [0.1, 0.2, 0.3, 1.0]

[font]
path = "assets/mono.ttf"
size = 18.0
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.True(t, cfg.Debug)
	assert.Equal(t, "demo", cfg.Window.Title)
	assert.Equal(t, 640, cfg.Window.Width)
	assert.Equal(t, 480, cfg.Window.Height)
	assert.False(t, cfg.Window.VSync)
	assert.Equal(t, 5000, cfg.Renderer.MaxInstances)
	assert.Equal(t, [4]float32{0.1, 0.2, 0.3, 1.0}, cfg.Renderer.ClearColor)
	assert.Equal(t, "assets/mono.ttf", cfg.Font.Path)
	assert.Equal(t, 18.0, cfg.Font.Size)
}

func TestLoadConfigDefaults(t *testing.T) {
	// A partial file keeps defaults for everything it omits.
	path := writeConfig(t, `
[window]
title = "partial"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	def := DefaultConfig()
	assert.Equal(t, "partial", cfg.Window.Title)
	assert.Equal(t, def.Window.Width, cfg.Window.Width)
	assert.Equal(t, def.Window.VSync, cfg.Window.VSync)
	assert.Equal(t, def.Font.Size, cfg.Font.Size)
	assert.False(t, cfg.Debug)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"Malformed TOML", `window = "not a table`},
		{"Zero width", "[window]\nwidth = 0\n"},
		{"Negative instance cap", "[renderer]\nmax_instances = -1\n"},
		{"Zero font size", "[font]\nsize = 0.0\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}
}

func TestDefaultConfigValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}
