// Package capture provides camera capture functionality using GoCV (OpenCV).
package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"gocv.io/x/gocv"
)

// Default camera settings
const (
	DefaultFPS    = 30
	DefaultWidth  = 640
	DefaultHeight = 480
)

var (
	// ErrCameraNotOpen is returned when trying to read from a camera that is not open.
	ErrCameraNotOpen = errors.New("camera is not open")

	// ErrOpenTimeout is returned when the device did not open within OpenTimeout.
	ErrOpenTimeout = errors.New("camera open timed out")
)

// Config describes the capture device.
type Config struct {
	Device int  `yaml:"device"`
	Width  int  `yaml:"width"`
	Height int  `yaml:"height"`
	FPS    int  `yaml:"fps"`
	Mirror bool `yaml:"mirror"`

	// OpenTimeout bounds the whole Open call including retries.
	OpenTimeout time.Duration `yaml:"open_timeout"`

	// OpenBackoff is the pause between failed open attempts.
	OpenBackoff time.Duration `yaml:"open_backoff"`
}

// DefaultConfig returns the settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		Device:      0,
		Width:       DefaultWidth,
		Height:      DefaultHeight,
		FPS:         DefaultFPS,
		Mirror:      true,
		OpenTimeout: 10 * time.Second,
		OpenBackoff: 500 * time.Millisecond,
	}
}

// Camera defines the interface for camera capture implementations.
type Camera interface {
	// Open starts capture. It returns within the configured open timeout
	// even if the driver hangs.
	Open(ctx context.Context) error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// Source is the subset of *gocv.VideoCapture the camera uses.
type Source interface {
	Read(m *gocv.Mat) bool
	Set(prop gocv.VideoCaptureProperties, param float64)
	IsOpened() bool
	Close() error
}

// Opener opens a capture device by index.
type Opener func(device int) (Source, error)

func openVideoCapture(device int) (Source, error) {
	vc, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, err
	}
	return videoCapture{vc}, nil
}

type videoCapture struct {
	*gocv.VideoCapture
}

func (v videoCapture) Set(prop gocv.VideoCaptureProperties, param float64) {
	v.VideoCapture.Set(prop, param)
}

// cameraImpl manages video capture from a camera device using GoCV.
type cameraImpl struct {
	config  Config
	open    Opener
	capture Source
	mu      sync.Mutex
	running bool
	fps     int
}

// NewCamera creates a new Camera for the configured device.
func NewCamera(config Config) Camera {
	return newCamera(config, openVideoCapture)
}

func newCamera(config Config, open Opener) *cameraImpl {
	defaults := DefaultConfig()
	if config.FPS <= 0 {
		config.FPS = defaults.FPS
	}
	if config.OpenTimeout <= 0 {
		config.OpenTimeout = defaults.OpenTimeout
	}
	if config.OpenBackoff <= 0 {
		config.OpenBackoff = defaults.OpenBackoff
	}
	return &cameraImpl{
		config: config,
		open:   open,
		fps:    config.FPS,
	}
}

// Open opens the camera for capturing frames. Each attempt races the
// device open against the remaining deadline; failed attempts are retried
// with a constant backoff until OpenTimeout elapses.
func (c *cameraImpl) Open(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	openCtx, cancel := context.WithTimeout(ctx, c.config.OpenTimeout)
	defer cancel()

	var (
		capture  Source
		lastErr  error
		attempts int
	)
	b := retry.NewConstant(c.config.OpenBackoff)
	err := retry.Do(openCtx, b, func(ctx context.Context) error {
		attempts++
		src, err := c.attempt(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			slog.Debug("camera open failed", "device", c.config.Device, "attempt", attempts, "error", err)
			return retry.RetryableError(err)
		}
		capture = src
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			if lastErr != nil {
				return fmt.Errorf("%w: device %d after %s: %v", ErrOpenTimeout, c.config.Device, c.config.OpenTimeout, lastErr)
			}
			return fmt.Errorf("%w: device %d after %s", ErrOpenTimeout, c.config.Device, c.config.OpenTimeout)
		}
		return fmt.Errorf("open camera %d: %w", c.config.Device, err)
	}

	if c.config.Width > 0 && c.config.Height > 0 {
		capture.Set(gocv.VideoCaptureFrameWidth, float64(c.config.Width))
		capture.Set(gocv.VideoCaptureFrameHeight, float64(c.config.Height))
	}
	capture.Set(gocv.VideoCaptureFPS, float64(c.fps))

	c.capture = capture
	c.running = true

	slog.Info("camera opened", "device", c.config.Device, "attempts", attempts)
	return nil
}

type openResult struct {
	src Source
	err error
}

// attempt runs one device open in its own goroutine so a hanging driver
// cannot hold the caller past ctx. A capture that arrives after ctx is done
// is closed.
func (c *cameraImpl) attempt(ctx context.Context) (Source, error) {
	done := make(chan openResult, 1)
	go func() {
		src, err := c.open(c.config.Device)
		done <- openResult{src: src, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return nil, r.err
		}
		if r.src == nil || !r.src.IsOpened() {
			if r.src != nil {
				r.src.Close()
			}
			return nil, fmt.Errorf("device %d did not open", c.config.Device)
		}
		return r.src, nil
	case <-ctx.Done():
		go func() {
			if r := <-done; r.src != nil {
				r.src.Close()
			}
		}()
		return nil, ctx.Err()
	}
}

// Close closes the camera and releases resources.
func (c *cameraImpl) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		c.running = false
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	c.running = false

	return err
}

// ReadFrame reads a single frame from the camera, mirrored when configured.
// The caller is responsible for closing the returned Mat.
func (c *cameraImpl) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok {
		mat.Close()
		return nil, errors.New("failed to read frame from camera")
	}

	if mat.Empty() {
		mat.Close()
		return nil, errors.New("captured frame is empty")
	}

	if c.config.Mirror {
		gocv.Flip(mat, &mat, 1)
	}

	return &mat, nil
}

// SetFPS sets the frames per second for capture.
// Values less than or equal to 0 are ignored.
func (c *cameraImpl) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.fps = fps

	if c.capture != nil {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

// FPS returns the current frames per second setting.
func (c *cameraImpl) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.fps
}

// IsOpen returns true if the camera is currently open and running.
func (c *cameraImpl) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.running
}
