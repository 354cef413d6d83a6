package display

import (
	"image"

	"gocv.io/x/gocv"
)

const (
	keyEsc = 27
	keyQ   = 'q'
)

// Window shows the annotated camera feed next to the reference panel.
type Window struct {
	win      *gocv.Window
	panel    *Panel
	combined gocv.Mat
}

// NewWindow opens a native window. It must be called from the main thread.
func NewWindow(title string, panel *Panel, width, height int) *Window {
	win := gocv.NewWindow(title)
	win.ResizeWindow(width, height)
	return &Window{win: win, panel: panel, combined: gocv.NewMat()}
}

// Show draws frame beside the panel.
func (w *Window) Show(frame gocv.Mat) {
	Compose(frame, w.panel.Mat(), &w.combined)
	if w.combined.Empty() {
		return
	}
	w.win.IMShow(w.combined)
}

// Poll pumps window events for delay milliseconds and reports whether the
// user asked to quit.
func (w *Window) Poll(delay int) bool {
	key := w.win.WaitKey(delay)
	return key == keyEsc || key == keyQ
}

// Close destroys the window.
func (w *Window) Close() error {
	w.combined.Close()
	return w.win.Close()
}

// Compose writes frame and panel side by side into dst. The frame is scaled
// to the panel height. An empty panel leaves dst as a copy of frame.
func Compose(frame, panel gocv.Mat, dst *gocv.Mat) {
	if frame.Empty() {
		return
	}
	if panel.Empty() {
		frame.CopyTo(dst)
		return
	}

	left := frame
	if frame.Rows() != panel.Rows() {
		size := image.Pt(frame.Cols()*panel.Rows()/frame.Rows(), panel.Rows())
		scaled := gocv.NewMat()
		defer scaled.Close()
		gocv.Resize(frame, &scaled, size, 0, 0, gocv.InterpolationLinear)
		left = scaled
	}
	gocv.Hconcat(left, panel, dst)
}
