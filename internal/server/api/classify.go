package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/heropose/internal/detector"
	"github.com/ayusman/heropose/internal/gesture"
	"github.com/ayusman/heropose/internal/theme"
)

// maxClassifyBody limits the landmark payload accepted by /api/classify.
const maxClassifyBody = 1 << 20

// ClassifyHandler classifies a posted landmark set without a camera.
type ClassifyHandler struct {
	classifier *gesture.Classifier
	themes     ThemeSource
}

// NewClassifyHandler creates a ClassifyHandler.
func NewClassifyHandler(c *gesture.Classifier, themes ThemeSource) *ClassifyHandler {
	return &ClassifyHandler{classifier: c, themes: themes}
}

type classifyResponse struct {
	Label gesture.Label `json:"label"`
	Flags gesture.Flags `json:"flags"`
	Entry theme.Entry   `json:"entry"`
}

// ServeHTTP handles POST /api/classify. The body is a detector.Result.
func (h *ClassifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var frame detector.Result
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxClassifyBody))
	if err := dec.Decode(&frame); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	res := h.classifier.Classify(&frame)
	writeJSON(w, http.StatusOK, classifyResponse{
		Label: res.Label,
		Flags: res.Flags,
		Entry: h.themes.Theme().Lookup(res.Label),
	})
}
