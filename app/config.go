package app

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config is the TOML application configuration.
type Config struct {
	Window   WindowConfig   `toml:"window"`
	Renderer RendererConfig `toml:"renderer"`
	Font     FontConfig     `toml:"font"`
	Debug    bool           `toml:"debug"`
}

type WindowConfig struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	VSync  bool   `toml:"vsync"`
}

type RendererConfig struct {
	// MaxInstances caps per-class records queued in one frame; zero
	// means unbounded.
	MaxInstances int `toml:"max_instances"`
	// ClearColor is the frame background as RGBA in [0, 1].
	ClearColor [4]float32 `toml:"clear_color"`
}

type FontConfig struct {
	Path string  `toml:"path"`
	Size float64 `toml:"size"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{
			Title:  "lumen",
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Renderer: RendererConfig{
			MaxInstances: 0,
			ClearColor:   [4]float32{0, 0, 0, 1},
		},
		Font: FontConfig{
			Size: 32,
		},
	}
}

// LoadConfig reads a TOML file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects configurations the renderer cannot start with.
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Renderer.MaxInstances < 0 {
		return fmt.Errorf("max_instances %d must not be negative", c.Renderer.MaxInstances)
	}
	if c.Font.Size <= 0 {
		return fmt.Errorf("font size %v must be positive", c.Font.Size)
	}
	return nil
}
