// Package app wires capture, detection, classification and presentation into
// the per-frame pipeline.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/ayusman/heropose/internal/capture"
	"github.com/ayusman/heropose/internal/detector"
	"github.com/ayusman/heropose/internal/display"
	"github.com/ayusman/heropose/internal/gesture"
	"github.com/ayusman/heropose/internal/publish"
	"github.com/ayusman/heropose/internal/store"
	"github.com/ayusman/heropose/internal/theme"
)

// DefaultInterval is the frame period used when none is configured.
const DefaultInterval = 25 * time.Millisecond

// publishTimeout bounds a single label-change publish.
const publishTimeout = 2 * time.Second

// Broadcaster fans per-frame updates out to live clients.
type Broadcaster interface {
	Broadcast(v any)
}

// ChangeFunc is called after the label changes.
type ChangeFunc func(current, previous gesture.Label, entry theme.Entry)

// Config holds the collaborators of an App. Camera, Detector and Theme are
// required.
type Config struct {
	Camera      capture.Camera
	Detector    detector.Detector
	Classifier  *gesture.Classifier
	Theme       *theme.Theme
	Store       *store.Store
	Publisher   publish.Publisher
	Broadcaster Broadcaster
	Panel       *display.Panel
	Interval    time.Duration
	Debug       bool

	// AssetsDir is applied to themes switched by name that carry no
	// assets directory of their own.
	AssetsDir string
}

// App is the main application that turns camera frames into labels.
type App struct {
	config     Config
	camera     capture.Camera
	detector   detector.Detector
	classifier *gesture.Classifier
	publisher  publish.Publisher

	mu        sync.RWMutex
	theme     *theme.Theme
	enabled   bool
	label     gesture.Label
	last      gesture.Result
	jpeg      []byte
	frames    int64
	listeners []ChangeFunc
}

// New creates an App. Detection starts enabled.
func New(config Config) (*App, error) {
	if config.Camera == nil {
		return nil, errors.New("camera is required")
	}
	if config.Detector == nil {
		return nil, errors.New("detector is required")
	}
	if config.Theme == nil {
		return nil, errors.New("theme is required")
	}
	if config.Classifier == nil {
		config.Classifier = gesture.NewClassifier(gesture.DefaultThresholds())
	}
	if config.Publisher == nil {
		config.Publisher = publish.Nop{}
	}
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}

	return &App{
		config:     config,
		camera:     config.Camera,
		detector:   config.Detector,
		classifier: config.Classifier,
		publisher:  config.Publisher,
		theme:      config.Theme,
		enabled:    true,
		label:      gesture.Default,
		last:       gesture.Result{Label: gesture.Default},
	}, nil
}

// RestoreSettings applies the theme and enabled state saved by a previous
// run. Missing settings are ignored.
func (a *App) RestoreSettings() error {
	if a.config.Store == nil {
		return nil
	}
	settings := a.config.Store.Settings()

	if name, err := settings.Get(store.SettingTheme); err == nil {
		if err := a.applyTheme(name); err != nil {
			slog.Warn("saved theme not applied", "theme", name, "error", err)
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("read theme setting: %w", err)
	}

	if v, err := settings.Get(store.SettingEnabled); err == nil {
		enabled, perr := strconv.ParseBool(v)
		if perr != nil {
			slog.Warn("invalid enabled setting", "value", v)
		} else {
			a.setEnabled(enabled)
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("read enabled setting: %w", err)
	}
	return nil
}

// SetEnabled pauses or resumes classification and persists the choice.
func (a *App) SetEnabled(enabled bool) {
	a.setEnabled(enabled)
	if a.config.Store != nil {
		if err := a.config.Store.Settings().Set(store.SettingEnabled, strconv.FormatBool(enabled)); err != nil {
			slog.Warn("failed to save enabled setting", "error", err)
		}
	}
}

func (a *App) setEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether classification is running.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetTheme switches to the built-in theme name and persists the choice.
func (a *App) SetTheme(name string) error {
	if err := a.applyTheme(name); err != nil {
		return err
	}
	if a.config.Store != nil {
		if err := a.config.Store.Settings().Set(store.SettingTheme, name); err != nil {
			return fmt.Errorf("save theme setting: %w", err)
		}
	}
	return nil
}

func (a *App) applyTheme(name string) error {
	t, err := theme.ByName(name)
	if err != nil {
		return err
	}
	if t.AssetsDir == "" {
		t.AssetsDir = a.config.AssetsDir
	}

	a.mu.Lock()
	a.theme = t
	a.mu.Unlock()

	if a.config.Panel != nil {
		a.config.Panel.SetTheme(t)
	}
	slog.Info("theme switched", "theme", t.Name)
	return nil
}

// Theme returns the active theme.
func (a *App) Theme() *theme.Theme {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.theme
}

// Classifier returns the classifier used by the pipeline.
func (a *App) Classifier() *gesture.Classifier {
	return a.classifier
}

// Label returns the current label.
func (a *App) Label() gesture.Label {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.label
}

// Last returns the classification of the most recent frame.
func (a *App) Last() gesture.Result {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.last
}

// Frames returns how many frames have been processed.
func (a *App) Frames() int64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.frames
}

// LatestJPEG returns the most recent annotated frame as JPEG, or nil before
// the first frame.
func (a *App) LatestJPEG() []byte {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.jpeg
}

// OnChange registers fn to be called after every label change.
func (a *App) OnChange(fn ChangeFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, fn)
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Detector returns the landmark detector.
func (a *App) Detector() detector.Detector {
	return a.detector
}

// Close releases the camera, detector and publisher.
func (a *App) Close() error {
	var errs []error
	if err := a.camera.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close camera: %w", err))
	}
	if err := a.detector.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close detector: %w", err))
	}
	if err := a.publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close publisher: %w", err))
	}
	slog.Info("pipeline stopped", "frames", a.Frames())
	return errors.Join(errs...)
}
