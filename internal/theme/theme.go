// Package theme maps gesture labels to the reference image, caption and
// color shown beside the camera feed.
package theme

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/heropose/internal/gesture"
)

// ErrUnknownTheme is returned when a theme name is not built in.
var ErrUnknownTheme = errors.New("unknown theme")

// DefaultColor is used for the default entry when a theme leaves it blank.
const DefaultColor = "#4CAF50"

// Entry is what the presentation layer shows for one label.
type Entry struct {
	Name    string `yaml:"name" json:"name"`
	Caption string `yaml:"caption" json:"caption"`
	Asset   string `yaml:"asset" json:"asset,omitempty"`
	Color   string `yaml:"color" json:"color"`
	Hint    string `yaml:"hint" json:"hint,omitempty"`
}

// Theme is a label to Entry table plus window text.
type Theme struct {
	Name      string                  `yaml:"name" json:"name"`
	Title     string                  `yaml:"title" json:"title"`
	Prompt    string                  `yaml:"prompt" json:"prompt"`
	AssetsDir string                  `yaml:"assets_dir" json:"assets_dir,omitempty"`
	Entries   map[gesture.Label]Entry `yaml:"entries" json:"entries"`
}

// Hero returns the built-in superhero theme.
func Hero() *Theme {
	return &Theme{
		Name:   "hero",
		Title:  "Hero Pose Mimic",
		Prompt: "Strike a hero pose!",
		Entries: map[gesture.Label]Entry{
			gesture.FingerSnap: {
				Name:    "IRON MAN",
				Caption: "I Am Iron Man! (Finger Snap)",
				Asset:   "c.jpg",
				Color:   "#FF8F00",
				Hint:    "Snap your fingers",
			},
			gesture.PalmRaised: {
				Name:    "IRON MAN",
				Caption: "Repulsor Blast (Open Palm Raised)",
				Asset:   "ironman.jpg",
				Color:   "#EF5350",
				Hint:    "Raise an open palm",
			},
			gesture.ArmsCrossed: {
				Name:    "BLACK PANTHER",
				Caption: "Wakanda Forever (Arms Crossed)",
				Asset:   "black-panther-a4ad45f2c272490cbf8d569e0bd0bf85.jpg",
				Color:   "#AB47BC",
				Hint:    "Cross your arms",
			},
			gesture.WebShoot: {
				Name:    "SPIDER-MAN",
				Caption: "Web Shooter (Web Sign)",
				Asset:   "b.jpg",
				Color:   "#E53935",
				Hint:    "Make the web sign",
			},
			gesture.Default: {
				Name:    "",
				Caption: "Strike a Superhero Pose!",
				Color:   DefaultColor,
			},
		},
	}
}

// Monkey returns the built-in monkey reaction theme.
func Monkey() *Theme {
	return &Theme{
		Name:   "monkey",
		Title:  "Monkey Mimic",
		Prompt: "Copy the monkey!",
		Entries: map[gesture.Label]Entry{
			gesture.ArmsCrossed: {
				Name:    "GRUMPY MONKEY",
				Caption: "Not Impressed (Arms Crossed)",
				Asset:   "monkey_grumpy.jpg",
				Color:   "#8D6E63",
				Hint:    "Cross your arms",
			},
			gesture.WebShoot: {
				Name:    "ROCK MONKEY",
				Caption: "Rock On (Horns)",
				Asset:   "monkey_rock.jpg",
				Color:   "#FF7043",
				Hint:    "Make the horns sign",
			},
			gesture.FingerSnap: {
				Name:    "COOL MONKEY",
				Caption: "Snap Snap (Finger Snap)",
				Asset:   "monkey_snap.jpg",
				Color:   "#FFCA28",
				Hint:    "Snap your fingers",
			},
			gesture.PalmRaised: {
				Name:    "HI-FIVE MONKEY",
				Caption: "High Five! (Open Palm Raised)",
				Asset:   "monkey_wave.jpg",
				Color:   "#66BB6A",
				Hint:    "Raise an open palm",
			},
			gesture.Default: {
				Caption: "Do Something Monkey!",
				Asset:   "monkey_idle.jpg",
				Color:   DefaultColor,
			},
		},
	}
}

var builtin = map[string]func() *Theme{
	"hero":   Hero,
	"monkey": Monkey,
}

// Names returns the built-in theme names in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ByName returns a fresh copy of a built-in theme.
func ByName(name string) (*Theme, error) {
	fn, ok := builtin[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
	return fn(), nil
}

// Load reads a theme from a YAML file. A relative assets_dir is resolved
// against the file's directory.
func Load(path string) (*Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read theme: %w", err)
	}

	var t Theme
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse theme %s: %w", path, err)
	}

	if t.Name == "" {
		t.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if t.AssetsDir != "" && !filepath.IsAbs(t.AssetsDir) {
		t.AssetsDir = filepath.Join(filepath.Dir(path), t.AssetsDir)
	}
	if _, ok := t.Entries[gesture.Default]; !ok {
		if t.Entries == nil {
			t.Entries = make(map[gesture.Label]Entry)
		}
		t.Entries[gesture.Default] = Entry{Caption: t.Prompt, Color: DefaultColor}
	}

	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("theme %s: %w", path, err)
	}
	return &t, nil
}

// Validate checks that every entry names a known label, every pose label
// has an entry and every color parses.
func (t *Theme) Validate() error {
	if t.Name == "" {
		return errors.New("name is required")
	}
	for label, e := range t.Entries {
		if _, err := gesture.ParseLabel(string(label)); err != nil {
			return err
		}
		if _, err := RGBA(e.Color); err != nil {
			return fmt.Errorf("entry %s: %w", label, err)
		}
	}
	for _, label := range gesture.Labels() {
		if label == gesture.Default {
			continue
		}
		if _, ok := t.Entries[label]; !ok {
			return fmt.Errorf("missing entry for %s", label)
		}
	}
	return nil
}

// Lookup returns the entry for label, falling back to the default entry.
func (t *Theme) Lookup(label gesture.Label) Entry {
	if e, ok := t.Entries[label]; ok {
		return e
	}
	if e, ok := t.Entries[gesture.Default]; ok {
		return e
	}
	return Entry{Caption: t.Prompt, Color: DefaultColor}
}

// AssetPath returns the file shown for label, or "" when the entry has none.
func (t *Theme) AssetPath(label gesture.Label) string {
	e := t.Lookup(label)
	if e.Asset == "" {
		return ""
	}
	if filepath.IsAbs(e.Asset) || t.AssetsDir == "" {
		return e.Asset
	}
	return filepath.Join(t.AssetsDir, e.Asset)
}

// Placeholder is the text shown when no reference image is available.
// It lists every pose with its hint.
func (t *Theme) Placeholder() []string {
	lines := []string{t.Prompt, ""}
	for _, label := range gesture.Labels() {
		if label == gesture.Default {
			continue
		}
		e := t.Entries[label]
		if e.Hint == "" {
			lines = append(lines, e.Name)
			continue
		}
		lines = append(lines, fmt.Sprintf("%s = %s", e.Hint, e.Name))
	}
	return lines
}

// RGBA parses a #RRGGBB color.
func RGBA(hex string) (color.RGBA, error) {
	s := strings.TrimPrefix(hex, "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", hex)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// RGBA returns the entry color, or the default color when it does not parse.
func (e Entry) RGBA() color.RGBA {
	c, err := RGBA(e.Color)
	if err != nil {
		c, _ = RGBA(DefaultColor)
	}
	return c
}
