package app

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/heropose/internal/capture"
	"github.com/ayusman/heropose/internal/detector"
	"github.com/ayusman/heropose/internal/display"
	"github.com/ayusman/heropose/internal/gesture"
	"github.com/ayusman/heropose/internal/publish"
	"github.com/ayusman/heropose/internal/store"
	"github.com/ayusman/heropose/internal/theme"
)

type recordingBroadcaster struct {
	mu      sync.Mutex
	updates []*Update
}

func (b *recordingBroadcaster) Broadcast(v any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if u, ok := v.(*Update); ok {
		b.updates = append(b.updates, u)
	}
}

func (b *recordingBroadcaster) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.updates)
}

type fixture struct {
	app      *App
	camera   *capture.MockCamera
	detector *detector.MockDetector
	store    *store.Store
	pub      *publish.Memory
	hub      *recordingBroadcaster
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	frame := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { frame.Close() })

	cam := capture.NewMockCamera([]*gocv.Mat{&frame}, true)
	if err := cam.Open(context.Background()); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	f := &fixture{
		camera:   cam,
		detector: detector.NewMockDetector(),
		store:    s,
		pub:      publish.NewMemory(),
		hub:      &recordingBroadcaster{},
	}
	a, err := New(Config{
		Camera:      cam,
		Detector:    f.detector,
		Theme:       theme.Hero(),
		Store:       s,
		Publisher:   f.pub,
		Broadcaster: f.hub,
		Interval:    5 * time.Millisecond,
		Debug:       true,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	f.app = a
	return f
}

func (f *fixture) step(t *testing.T) *Outcome {
	t.Helper()
	out, err := f.app.Step(context.Background())
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	t.Cleanup(out.Close)
	return out
}

func TestNew_RequiresCollaborators(t *testing.T) {
	cam := capture.NewMockCamera(nil, false)
	det := detector.NewMockDetector()

	tests := []struct {
		name   string
		config Config
	}{
		{"no camera", Config{Detector: det, Theme: theme.Hero()}},
		{"no detector", Config{Camera: cam, Theme: theme.Hero()}},
		{"no theme", Config{Camera: cam, Detector: det}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.config); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestStep_DefaultWithoutLandmarks(t *testing.T) {
	f := newFixture(t)

	out := f.step(t)

	if out.Classification.Label != gesture.Default {
		t.Errorf("label = %s, want default", out.Classification.Label)
	}
	if out.Changed {
		t.Error("first default frame should not count as a change")
	}
	if out.Frame == nil || out.Frame.Empty() {
		t.Error("expected annotated frame")
	}
	if len(f.app.LatestJPEG()) == 0 {
		t.Error("expected latest JPEG to be kept")
	}
	if f.hub.count() != 1 {
		t.Errorf("broadcasts = %d, want 1", f.hub.count())
	}
}

func TestStep_LabelChangeIsRecordedOnce(t *testing.T) {
	f := newFixture(t)
	f.detector.SetHands([]detector.HandLandmarks{detector.WebShooterLandmarks()})

	var (
		mu      sync.Mutex
		changes []gesture.Label
	)
	f.app.OnChange(func(current, previous gesture.Label, entry theme.Entry) {
		mu.Lock()
		defer mu.Unlock()
		changes = append(changes, current)
		if entry.Name != "SPIDER-MAN" {
			t.Errorf("entry name = %q, want SPIDER-MAN", entry.Name)
		}
	})

	out := f.step(t)
	if out.Classification.Label != gesture.WebShoot {
		t.Fatalf("label = %s, want web_shoot", out.Classification.Label)
	}
	if !out.Changed || out.Previous != gesture.Default {
		t.Errorf("changed = %v previous = %s, want true default", out.Changed, out.Previous)
	}

	// Same pose on the next frame is not a new change.
	if again := f.step(t); again.Changed {
		t.Error("repeated label should not be a change")
	}

	events, err := f.store.Events().List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(events) != 1 || events[0].Label != "web_shoot" || events[0].Previous != "default" {
		t.Errorf("unexpected events: %+v", events)
	}

	msgs := f.pub.Messages()
	if len(msgs) != 1 || msgs[0].Label != "web_shoot" || msgs[0].Theme != "hero" {
		t.Errorf("unexpected messages: %+v", msgs)
	}
	if len(changes) != 1 {
		t.Errorf("listener calls = %d, want 1", len(changes))
	}
	if f.hub.count() != 2 {
		t.Errorf("broadcasts = %d, want one per frame", f.hub.count())
	}
	if f.app.Label() != gesture.WebShoot {
		t.Errorf("Label() = %s", f.app.Label())
	}
}

func TestStep_DetectionErrorYieldsDefault(t *testing.T) {
	f := newFixture(t)
	f.detector.SetHands([]detector.HandLandmarks{detector.SnapLandmarks()})
	if got := f.step(t).Classification.Label; got != gesture.FingerSnap {
		t.Fatalf("label = %s, want finger_snap", got)
	}

	f.detector.SetError(errors.New("model crashed"))
	out := f.step(t)

	if out.Classification.Label != gesture.Default {
		t.Errorf("label = %s, want default", out.Classification.Label)
	}
	if !out.Changed || out.Previous != gesture.FingerSnap {
		t.Errorf("expected change back to default, got %+v", out)
	}
}

func TestStep_PublishFailureDoesNotStopPipeline(t *testing.T) {
	f := newFixture(t)
	f.pub.SetError(errors.New("redis down"))
	pose := detector.ArmsCrossedPose()
	f.detector.SetResult(&detector.Result{Pose: &pose})

	out := f.step(t)
	if out.Classification.Label != gesture.ArmsCrossed {
		t.Errorf("label = %s, want arms_crossed", out.Classification.Label)
	}
	counts, err := f.store.Events().Counts()
	if err != nil {
		t.Fatalf("Counts() error = %v", err)
	}
	if counts["arms_crossed"] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

func TestStep_Disabled(t *testing.T) {
	f := newFixture(t)
	f.detector.SetHands([]detector.HandLandmarks{detector.WebShooterLandmarks()})
	f.app.SetEnabled(false)

	out := f.step(t)

	if out.Classification.Label != gesture.Default || out.Changed {
		t.Errorf("disabled step should not classify, got %+v", out.Classification)
	}
	if f.detector.Calls() != 0 {
		t.Errorf("detector called %d times while disabled", f.detector.Calls())
	}
	if f.hub.count() != 0 {
		t.Error("disabled frames should not be broadcast")
	}
	if v, _ := f.store.Settings().Get(store.SettingEnabled); v != "false" {
		t.Errorf("enabled setting = %q, want false", v)
	}
}

func TestStep_UpdatesPanel(t *testing.T) {
	f := newFixture(t)
	panel := display.NewPanel(theme.Hero(), 200, 240)
	defer panel.Close()
	f.app.config.Panel = panel
	f.detector.SetHands([]detector.HandLandmarks{detector.WebShooterLandmarks()})

	f.step(t)
	f.step(t)

	if panel.Renders() != 1 {
		t.Errorf("panel renders = %d, want 1", panel.Renders())
	}
}

func TestSetTheme(t *testing.T) {
	f := newFixture(t)

	if err := f.app.SetTheme("monkey"); err != nil {
		t.Fatalf("SetTheme() error = %v", err)
	}
	if f.app.Theme().Name != "monkey" {
		t.Errorf("Theme() = %s", f.app.Theme().Name)
	}
	if v, _ := f.store.Settings().Get(store.SettingTheme); v != "monkey" {
		t.Errorf("theme setting = %q", v)
	}

	if err := f.app.SetTheme("pirate"); !errors.Is(err, theme.ErrUnknownTheme) {
		t.Errorf("expected ErrUnknownTheme, got %v", err)
	}
	if f.app.Theme().Name != "monkey" {
		t.Error("failed switch should keep the current theme")
	}
}

func TestRestoreSettings(t *testing.T) {
	f := newFixture(t)
	if err := f.store.Settings().Set(store.SettingTheme, "monkey"); err != nil {
		t.Fatal(err)
	}
	if err := f.store.Settings().Set(store.SettingEnabled, "false"); err != nil {
		t.Fatal(err)
	}

	if err := f.app.RestoreSettings(); err != nil {
		t.Fatalf("RestoreSettings() error = %v", err)
	}
	if f.app.Theme().Name != "monkey" {
		t.Errorf("Theme() = %s, want monkey", f.app.Theme().Name)
	}
	if f.app.IsEnabled() {
		t.Error("expected detection disabled")
	}
}

func TestRun_ProcessesUntilCanceled(t *testing.T) {
	f := newFixture(t)
	f.camera.Close()
	f.detector.SetHands([]detector.HandLandmarks{detector.WebShooterLandmarks()})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.app.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for f.app.Frames() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
	if f.app.Frames() < 3 {
		t.Errorf("frames = %d, want at least 3", f.app.Frames())
	}
	if f.app.Label() != gesture.WebShoot {
		t.Errorf("Label() = %s", f.app.Label())
	}
}

func TestRun_OpenFailure(t *testing.T) {
	f := newFixture(t)
	f.camera.Close()
	f.camera.SetOpenError(capture.ErrOpenTimeout)

	if err := f.app.Run(context.Background()); !errors.Is(err, capture.ErrOpenTimeout) {
		t.Errorf("expected ErrOpenTimeout, got %v", err)
	}
}
