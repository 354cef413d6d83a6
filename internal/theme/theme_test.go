package theme

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/heropose/internal/gesture"
)

func TestBuiltinThemesValidate(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			th, err := ByName(name)
			require.NoError(t, err)
			assert.NoError(t, th.Validate())
			assert.Equal(t, name, th.Name)
		})
	}
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"hero", "monkey"}, Names())
}

func TestByName(t *testing.T) {
	th, err := ByName("HERO")
	require.NoError(t, err)
	assert.Equal(t, "BLACK PANTHER", th.Lookup(gesture.ArmsCrossed).Name)

	// Each call returns an independent copy.
	th.Entries[gesture.ArmsCrossed] = Entry{Name: "changed", Color: "#000000"}
	again, _ := ByName("hero")
	assert.Equal(t, "BLACK PANTHER", again.Lookup(gesture.ArmsCrossed).Name)

	_, err = ByName("pirate")
	assert.ErrorIs(t, err, ErrUnknownTheme)
}

func TestHeroTable(t *testing.T) {
	th := Hero()

	tests := []struct {
		label gesture.Label
		name  string
		color string
		asset string
	}{
		{gesture.FingerSnap, "IRON MAN", "#FF8F00", "c.jpg"},
		{gesture.PalmRaised, "IRON MAN", "#EF5350", "ironman.jpg"},
		{gesture.ArmsCrossed, "BLACK PANTHER", "#AB47BC", "black-panther-a4ad45f2c272490cbf8d569e0bd0bf85.jpg"},
		{gesture.WebShoot, "SPIDER-MAN", "#E53935", "b.jpg"},
		{gesture.Default, "", "#4CAF50", ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.label), func(t *testing.T) {
			e := th.Lookup(tt.label)
			assert.Equal(t, tt.name, e.Name)
			assert.Equal(t, tt.color, e.Color)
			assert.Equal(t, tt.asset, e.Asset)
		})
	}
}

func TestLookupFallsBackToDefault(t *testing.T) {
	th := &Theme{
		Name:    "sparse",
		Prompt:  "go",
		Entries: map[gesture.Label]Entry{gesture.Default: {Caption: "idle", Color: "#111111"}},
	}
	assert.Equal(t, "idle", th.Lookup(gesture.WebShoot).Caption)

	th.Entries = nil
	e := th.Lookup(gesture.WebShoot)
	assert.Equal(t, "go", e.Caption)
	assert.Equal(t, DefaultColor, e.Color)
}

func TestAssetPath(t *testing.T) {
	th := Hero()
	assert.Equal(t, "b.jpg", th.AssetPath(gesture.WebShoot))
	assert.Equal(t, "", th.AssetPath(gesture.Default))

	th.AssetsDir = "/srv/assets"
	assert.Equal(t, filepath.Join("/srv/assets", "b.jpg"), th.AssetPath(gesture.WebShoot))
}

func TestPlaceholderListsEveryPose(t *testing.T) {
	lines := Hero().Placeholder()

	require.Len(t, lines, 6)
	assert.Equal(t, "Strike a hero pose!", lines[0])
	assert.Contains(t, lines, "Cross your arms = BLACK PANTHER")
	assert.Contains(t, lines, "Make the web sign = SPIDER-MAN")
	assert.Contains(t, lines, "Snap your fingers = IRON MAN")
	assert.Contains(t, lines, "Raise an open palm = IRON MAN")
}

func TestValidate(t *testing.T) {
	t.Run("missing entry", func(t *testing.T) {
		th := Hero()
		delete(th.Entries, gesture.WebShoot)
		err := th.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "web_shoot")
	})

	t.Run("unknown label", func(t *testing.T) {
		th := Hero()
		th.Entries["moonwalk"] = Entry{Color: "#123456"}
		assert.ErrorIs(t, th.Validate(), gesture.ErrUnknownLabel)
	})

	t.Run("bad color", func(t *testing.T) {
		th := Hero()
		th.Entries[gesture.FingerSnap] = Entry{Name: "x", Color: "gold"}
		assert.Error(t, th.Validate())
	})

	t.Run("missing name", func(t *testing.T) {
		th := Hero()
		th.Name = ""
		assert.Error(t, th.Validate())
	})
}

func TestRGBA(t *testing.T) {
	c, err := RGBA("#FF8F00")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0xFF, G: 0x8F, B: 0x00, A: 0xFF}, c)

	c, err = RGBA("ab47bc")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0xAB, G: 0x47, B: 0xBC, A: 0xFF}, c)

	for _, bad := range []string{"", "#FFF", "#GGGGGG", "#1234567"} {
		_, err := RGBA(bad)
		assert.Error(t, err, bad)
	}

	assert.Equal(t, color.RGBA{R: 0x4C, G: 0xAF, B: 0x50, A: 0xFF}, Entry{Color: "nope"}.RGBA())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pirate.yaml")
	content := `title: Pirate Poses
prompt: Arr, strike a pose!
assets_dir: images
entries:
  arms_crossed:
    name: CAPTAIN
    caption: Stern Captain
    asset: captain.jpg
    color: "#795548"
  web_shoot:
    name: LOOKOUT
    caption: Land Ho
    color: "#03A9F4"
  finger_snap:
    name: DECKHAND
    caption: Hop To It
    color: "#FFC107"
  palm_raised:
    name: PARROT
    caption: Polly Wants A Cracker
    color: "#4CAF50"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	th, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "pirate", th.Name)
	assert.Equal(t, "Pirate Poses", th.Title)
	assert.Equal(t, filepath.Join(dir, "images"), th.AssetsDir)
	assert.Equal(t, filepath.Join(dir, "images", "captain.jpg"), th.AssetPath(gesture.ArmsCrossed))
	assert.Equal(t, "Arr, strike a pose!", th.Lookup(gesture.Default).Caption)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("entries: [not, a, map]"), 0o644))
	_, err = Load(bad)
	assert.Error(t, err)

	incomplete := filepath.Join(dir, "incomplete.yaml")
	require.NoError(t, os.WriteFile(incomplete, []byte("entries:\n  web_shoot:\n    color: \"#000000\"\n"), 0o644))
	_, err = Load(incomplete)
	assert.Error(t, err)
}
