package store

import (
	"errors"
	"testing"
)

func TestSettingsRepository(t *testing.T) {
	s := newTestStore(t)
	repo := s.Settings()

	if _, err := repo.Get(SettingTheme); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unset key, got %v", err)
	}

	if err := repo.Set(SettingTheme, "hero"); err != nil {
		t.Fatalf("failed to set: %v", err)
	}
	if err := repo.Set(SettingTheme, "monkey"); err != nil {
		t.Fatalf("failed to overwrite: %v", err)
	}

	got, err := repo.Get(SettingTheme)
	if err != nil {
		t.Fatalf("failed to get: %v", err)
	}
	if got != "monkey" {
		t.Errorf("Get() = %q, want %q", got, "monkey")
	}

	if err := repo.Delete(SettingTheme); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}
	if err := repo.Delete(SettingTheme); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}
