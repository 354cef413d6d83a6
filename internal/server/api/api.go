// Package api provides the JSON HTTP handlers of the pose demo.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/heropose/internal/theme"
)

// ThemeSource returns the active theme.
type ThemeSource interface {
	Theme() *theme.Theme
}

// ThemeSwitcher changes the active theme by name.
type ThemeSwitcher interface {
	ThemeSource
	SetTheme(name string) error
}

// StaticTheme serves a fixed theme. It is used when no pipeline is running.
type StaticTheme struct {
	T *theme.Theme
}

// Theme returns the fixed theme.
func (s StaticTheme) Theme() *theme.Theme { return s.T }

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
