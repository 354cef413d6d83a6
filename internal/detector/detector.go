package detector

import (
	"time"

	"gocv.io/x/gocv"
)

// Detector defines the interface for landmark provider implementations.
type Detector interface {
	// Detect analyzes a video frame and returns the pose, hand and face
	// landmarks found in it. A frame without a subject yields an empty
	// Result, not an error.
	Detect(frame *gocv.Mat) (*Result, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for landmark detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 2).
	MaxHands int `yaml:"max_hands"`

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64 `yaml:"min_confidence"`

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64 `yaml:"min_tracking_confidence"`

	// Python is the interpreter used to run the service script.
	// Empty means search the usual virtual environment locations.
	Python string `yaml:"python"`

	// Script is the path to mediapipe_service.py. Empty means search.
	Script string `yaml:"script"`

	// IdleTimeout stops the service process after this long without a frame.
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:        2,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
		IdleTimeout:     30 * time.Second,
	}
}
