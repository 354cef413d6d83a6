// Package config loads heropose settings from YAML over built-in defaults.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/heropose/internal/capture"
	"github.com/ayusman/heropose/internal/detector"
	"github.com/ayusman/heropose/internal/gesture"
	"github.com/ayusman/heropose/internal/publish"
	"github.com/ayusman/heropose/internal/theme"
)

// Display modes.
const (
	ModeWindow   = "window"
	ModeTray     = "tray"
	ModeHeadless = "headless"
)

// Config is the complete application configuration.
type Config struct {
	Camera     capture.Config     `yaml:"camera"`
	Pipeline   Pipeline           `yaml:"pipeline"`
	Detector   detector.Config    `yaml:"detector"`
	Thresholds gesture.Thresholds `yaml:"thresholds"`
	Theme      Theme              `yaml:"theme"`
	Display    Display            `yaml:"display"`
	Server     Server             `yaml:"server"`
	Store      Store              `yaml:"store"`
	Publish    publish.Config     `yaml:"publish"`
	Log        Log                `yaml:"log"`
}

// Pipeline controls the frame loop.
type Pipeline struct {
	// Interval between frames when the loop is timer driven.
	Interval time.Duration `yaml:"interval"`
}

// Theme selects the label to image table.
type Theme struct {
	Name      string `yaml:"name"`
	File      string `yaml:"file"`
	AssetsDir string `yaml:"assets_dir"`
}

// Display selects how results are presented.
type Display struct {
	Mode         string `yaml:"mode"`
	DebugOverlay bool   `yaml:"debug_overlay"`
	Width        int    `yaml:"width"`
	Height       int    `yaml:"height"`
}

// Server configures the HTTP API. An empty Addr disables it.
type Server struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
}

// Store configures the history database.
type Store struct {
	Path string `yaml:"path"`
}

// Log configures the slog handler.
type Log struct {
	Level string `yaml:"level"`
}

// DataDir returns ~/.heropose, or .heropose when the home directory is unknown.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".heropose"
	}
	return filepath.Join(home, ".heropose")
}

// DefaultPath is where Load looks when no file is given.
func DefaultPath() string {
	return filepath.Join(DataDir(), "config.yaml")
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Camera:     capture.DefaultConfig(),
		Pipeline:   Pipeline{Interval: 25 * time.Millisecond},
		Detector:   detector.DefaultConfig(),
		Thresholds: gesture.DefaultThresholds(),
		Theme:      Theme{Name: "hero", AssetsDir: "assets"},
		Display:    Display{Mode: ModeWindow, Width: 1280, Height: 650},
		Server:     Server{Addr: "127.0.0.1:8090"},
		Store:      Store{Path: filepath.Join(DataDir(), "heropose.db")},
		Publish:    publish.DefaultConfig(),
		Log:        Log{Level: "info"},
	}
}

// Load reads path over the defaults. A missing file at the default path is
// not an error; a missing explicit path is.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.Camera.Device < 0 {
		return fmt.Errorf("camera.device must not be negative")
	}
	if c.Camera.OpenTimeout <= 0 {
		return fmt.Errorf("camera.open_timeout must be positive")
	}
	if c.Pipeline.Interval <= 0 {
		return fmt.Errorf("pipeline.interval must be positive")
	}
	if c.Detector.MaxHands < 1 {
		return fmt.Errorf("detector.max_hands must be at least 1")
	}
	if err := c.Thresholds.Validate(); err != nil {
		return err
	}
	if c.Theme.File == "" {
		if _, err := theme.ByName(c.Theme.Name); err != nil {
			return fmt.Errorf("theme.name: %w", err)
		}
	}
	switch c.Display.Mode {
	case ModeWindow, ModeTray, ModeHeadless:
	default:
		return fmt.Errorf("display.mode must be one of %s, %s, %s; got %q", ModeWindow, ModeTray, ModeHeadless, c.Display.Mode)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store.path is required")
	}
	return nil
}

// LoadTheme resolves the configured theme, preferring a theme file over a
// built-in name. AssetsDir overrides the theme's own directory when set.
func (c Config) LoadTheme() (*theme.Theme, error) {
	var (
		t   *theme.Theme
		err error
	)
	if c.Theme.File != "" {
		t, err = theme.Load(c.Theme.File)
	} else {
		t, err = theme.ByName(c.Theme.Name)
	}
	if err != nil {
		return nil, err
	}
	if c.Theme.AssetsDir != "" && (c.Theme.File == "" || t.AssetsDir == "") {
		t.AssetsDir = c.Theme.AssetsDir
	}
	return t, nil
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("log.level: unknown level %q", s)
}
