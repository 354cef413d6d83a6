// Package testdata holds recorded landmark frames with their expected labels.
package testdata

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/ayusman/heropose/internal/detector"
	"github.com/ayusman/heropose/internal/gesture"
)

//go:embed frames/*.json
var framesFS embed.FS

// Case pairs a frame file with the label it must classify as.
type Case struct {
	File  string        `json:"file"`
	Label gesture.Label `json:"label"`
}

// LoadFrame loads a landmark frame by file name.
func LoadFrame(name string) (*detector.Result, error) {
	data, err := framesFS.ReadFile("frames/" + name)
	if err != nil {
		return nil, fmt.Errorf("load frame %s: %w", name, err)
	}

	var r detector.Result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode frame %s: %w", name, err)
	}
	return &r, nil
}

// Cases returns every recorded frame with its expected label.
func Cases() ([]Case, error) {
	data, err := framesFS.ReadFile("frames/cases.json")
	if err != nil {
		return nil, fmt.Errorf("load cases: %w", err)
	}

	var cases []Case
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("decode cases: %w", err)
	}
	return cases, nil
}
