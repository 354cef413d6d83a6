// Package tray provides the system tray mode: a detection toggle, the last
// recognized pose, a theme picker and a dashboard link.
package tray

import (
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/heropose/internal/gesture"
	"github.com/ayusman/heropose/internal/theme"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle    func(enabled bool)
	onTheme     func(name string)
	onDashboard func()
	onQuit      func()
	enabled     bool
	themes      []string
	current     string
	mu          sync.RWMutex

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuLast   *systray.MenuItem
	menuThemes map[string]*systray.MenuItem
}

// New creates a Tray listing themes, with current selected and detection
// enabled.
func New(themes []string, current string) *Tray {
	return &Tray{
		enabled: true,
		themes:  themes,
		current: current,
	}
}

// OnToggle sets the callback function to be called when the enabled state is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnTheme sets the callback called when a theme is picked.
func (t *Tray) OnTheme(fn func(name string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onTheme = fn
}

// OnDashboard sets the callback called when the dashboard item is clicked.
func (t *Tray) OnDashboard(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDashboard = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application. It must be called from the main
// goroutine and blocks until Quit.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit stops the tray loop.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("HeroPose")
	systray.SetTooltip("Hero pose mimic")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle pose detection")
	systray.AddSeparator()

	t.menuLast = systray.AddMenuItem(LastTitle(theme.Entry{}, gesture.Default), "Last recognized pose")
	t.menuLast.Disable()
	systray.AddSeparator()

	menuTheme := systray.AddMenuItem("Theme", "Switch theme")
	t.menuThemes = make(map[string]*systray.MenuItem, len(t.themes))
	for _, name := range t.themes {
		item := menuTheme.AddSubMenuItem(name, "Use the "+name+" theme")
		if name == t.current {
			item.Check()
		}
		t.menuThemes[name] = item
		go t.watchTheme(name, item)
	}
	t.mu.Unlock()

	menuDashboard := systray.AddMenuItem("Open Dashboard...", "Open the dashboard in a browser")
	systray.AddSeparator()
	menuQuit := systray.AddMenuItem("Quit", "Quit HeroPose")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuDashboard.ClickedCh:
				t.handleDashboard()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) watchTheme(name string, item *systray.MenuItem) {
	for range item.ClickedCh {
		t.handleTheme(name)
	}
}

func (t *Tray) onExit() {}

// handleToggle flips the enabled state and notifies the callback.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

// handleTheme selects name and notifies the callback.
func (t *Tray) handleTheme(name string) {
	t.mu.Lock()
	if name == t.current {
		t.mu.Unlock()
		return
	}
	t.current = name
	for n, item := range t.menuThemes {
		if n == name {
			item.Check()
		} else {
			item.Uncheck()
		}
	}
	callback := t.onTheme
	t.mu.Unlock()

	if callback != nil {
		callback(name)
	}
}

func (t *Tray) handleDashboard() {
	t.mu.RLock()
	callback := t.onDashboard
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetLast shows the most recent pose in the menu.
func (t *Tray) SetLast(label gesture.Label, entry theme.Entry) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuLast != nil {
		t.menuLast.SetTitle(LastTitle(entry, label))
	}
}

// SetEnabled updates the toggle without calling OnToggle.
func (t *Tray) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// Current returns the selected theme name.
func (t *Tray) Current() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

// LastTitle formats the "Last:" menu entry.
func LastTitle(entry theme.Entry, label gesture.Label) string {
	if label == gesture.Default || entry.Name == "" {
		return "Last: none"
	}
	return "Last: " + entry.Name
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Enabled"
	}
	return "○ Disabled"
}
