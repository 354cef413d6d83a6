package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/heropose/internal/capture"
	"github.com/ayusman/heropose/internal/detector"
	"github.com/ayusman/heropose/internal/display"
	"github.com/ayusman/heropose/internal/gesture"
	"github.com/ayusman/heropose/internal/publish"
	"github.com/ayusman/heropose/internal/store"
)

// Outcome is the result of one pipeline step.
type Outcome struct {
	// Frame is the annotated camera frame. The caller must Close it.
	Frame          *gocv.Mat
	Detection      *detector.Result
	Classification gesture.Result
	Changed        bool
	Previous       gesture.Label
}

// Close releases the frame.
func (o *Outcome) Close() {
	if o != nil && o.Frame != nil {
		o.Frame.Close()
		o.Frame = nil
	}
}

// Update is the per-frame message sent to live clients.
type Update struct {
	Label     gesture.Label `json:"label"`
	Flags     gesture.Flags `json:"flags"`
	Name      string        `json:"name"`
	Caption   string        `json:"caption"`
	Color     string        `json:"color"`
	Theme     string        `json:"theme"`
	Enabled   bool          `json:"enabled"`
	Timestamp int64         `json:"timestamp"`
}

// Step processes one frame: read, detect, classify, annotate and record.
// While detection is disabled the frame is returned with only the caption
// drawn and the label is left unchanged.
func (a *App) Step(ctx context.Context) (*Outcome, error) {
	frame, err := a.camera.ReadFrame()
	if err != nil {
		return nil, fmt.Errorf("read frame: %w", err)
	}

	a.mu.RLock()
	enabled := a.enabled
	th := a.theme
	a.mu.RUnlock()

	out := &Outcome{Frame: frame, Detection: &detector.Result{}}

	if !enabled {
		out.Classification = gesture.Result{Label: gesture.Default}
		display.Annotate(frame, nil, out.Classification, th.Lookup(gesture.Default), false)
		a.finishFrame(frame, nil)
		return out, nil
	}

	det, err := a.detector.Detect(frame)
	if err != nil {
		slog.Warn("landmark detection failed", "error", err)
		det = nil
	}
	if det == nil {
		det = &detector.Result{}
	}
	out.Detection = det

	res := a.classifier.Classify(det)
	out.Classification = res
	entry := th.Lookup(res.Label)
	display.Annotate(frame, det, res, entry, a.config.Debug)

	a.mu.Lock()
	previous := a.label
	a.label = res.Label
	a.last = res
	listeners := append([]ChangeFunc(nil), a.listeners...)
	a.mu.Unlock()

	if res.Label != previous {
		out.Changed = true
		out.Previous = previous
		a.recordChange(ctx, res, previous, th.Name, entry.Caption)
		for _, fn := range listeners {
			fn(res.Label, previous, entry)
		}
	}

	if a.config.Panel != nil {
		a.config.Panel.Update(res.Label)
	}

	a.finishFrame(frame, &Update{
		Label:     res.Label,
		Flags:     res.Flags,
		Name:      entry.Name,
		Caption:   entry.Caption,
		Color:     entry.Color,
		Theme:     th.Name,
		Enabled:   true,
		Timestamp: time.Now().UnixMilli(),
	})
	return out, nil
}

// finishFrame keeps the JPEG for streaming and broadcasts u when set.
func (a *App) finishFrame(frame *gocv.Mat, u *Update) {
	var jpeg []byte
	if buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame); err != nil {
		slog.Debug("frame encode failed", "error", err)
	} else {
		jpeg = append([]byte(nil), buf.GetBytes()...)
		buf.Close()
	}

	a.mu.Lock()
	a.frames++
	if jpeg != nil {
		a.jpeg = jpeg
	}
	a.mu.Unlock()

	if u != nil && a.config.Broadcaster != nil {
		a.config.Broadcaster.Broadcast(u)
	}
}

// recordChange persists and publishes a label transition. Failures are
// logged and never stop the pipeline.
func (a *App) recordChange(ctx context.Context, res gesture.Result, previous gesture.Label, themeName, caption string) {
	slog.Info("label changed", "label", res.Label, "previous", previous, "hands", res.Flags.Hands)

	now := time.Now()
	if a.config.Store != nil {
		ev := &store.Event{
			Label:     string(res.Label),
			Previous:  string(previous),
			Theme:     themeName,
			Hands:     res.Flags.Hands,
			CreatedAt: now,
		}
		if err := a.config.Store.Events().Create(ev); err != nil {
			slog.Warn("failed to record label change", "error", err)
		}
	}

	pctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	msg := publish.Message{
		Label:     string(res.Label),
		Previous:  string(previous),
		Theme:     themeName,
		Caption:   caption,
		Hands:     res.Flags.Hands,
		Timestamp: now,
	}
	if err := a.publisher.Publish(pctx, msg); err != nil {
		slog.Warn("failed to publish label change", "error", err)
	}
}

// Run opens the camera and processes frames every Interval until ctx is
// done. Read failures are logged and the loop keeps going.
func (a *App) Run(ctx context.Context) error {
	if err := a.camera.Open(ctx); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	slog.Info("pipeline started", "interval", a.config.Interval, "theme", a.Theme().Name)

	ticker := time.NewTicker(a.config.Interval)
	defer ticker.Stop()

	var readErrors int
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			out, err := a.Step(ctx)
			if err != nil {
				readErrors++
				if errors.Is(err, capture.ErrCameraNotOpen) {
					return err
				}
				if readErrors == 1 || readErrors%100 == 0 {
					slog.Warn("frame skipped", "error", err, "count", readErrors)
				}
				continue
			}
			readErrors = 0
			out.Close()
		}
	}
}
