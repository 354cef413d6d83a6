package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayusman/heropose/internal/gesture"
	"github.com/ayusman/heropose/internal/theme"
)

type labelResponse struct {
	Label    gesture.Label `json:"label"`
	Priority int           `json:"priority"`
	Entry    theme.Entry   `json:"entry"`
}

type labelsResponse struct {
	Theme  string          `json:"theme"`
	Labels []labelResponse `json:"labels"`
}

// LabelsHandler lists every label with the active theme's entry, in rule
// priority order.
type LabelsHandler struct {
	themes ThemeSource
}

// NewLabelsHandler creates a LabelsHandler.
func NewLabelsHandler(themes ThemeSource) *LabelsHandler {
	return &LabelsHandler{themes: themes}
}

// ServeHTTP handles GET /api/labels.
func (h *LabelsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	t := h.themes.Theme()
	labels := gesture.Labels()
	resp := labelsResponse{Theme: t.Name, Labels: make([]labelResponse, 0, len(labels))}
	for i, l := range labels {
		resp.Labels = append(resp.Labels, labelResponse{Label: l, Priority: i + 1, Entry: t.Lookup(l)})
	}
	writeJSON(w, http.StatusOK, resp)
}

type themeResponse struct {
	Current   *theme.Theme `json:"current"`
	Available []string     `json:"available"`
}

type setThemeRequest struct {
	Name string `json:"name"`
}

// ThemeHandler reports and switches the active theme.
type ThemeHandler struct {
	themes ThemeSource
}

// NewThemeHandler creates a ThemeHandler. PUT is only allowed when themes
// also implements ThemeSwitcher.
func NewThemeHandler(themes ThemeSource) *ThemeHandler {
	return &ThemeHandler{themes: themes}
}

// ServeHTTP handles GET and PUT /api/theme.
func (h *ThemeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w)
	case http.MethodPut:
		h.set(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ThemeHandler) get(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, themeResponse{Current: h.themes.Theme(), Available: theme.Names()})
}

func (h *ThemeHandler) set(w http.ResponseWriter, r *http.Request) {
	switcher, ok := h.themes.(ThemeSwitcher)
	if !ok {
		writeError(w, http.StatusConflict, "Theme switching is not available")
		return
	}

	var req setThemeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}

	if err := switcher.SetTheme(req.Name); err != nil {
		if errors.Is(err, theme.ErrUnknownTheme) {
			writeError(w, http.StatusNotFound, "Theme not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to switch theme")
		return
	}
	h.get(w)
}
