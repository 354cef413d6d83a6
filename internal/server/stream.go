package server

import (
	"fmt"
	"net/http"
	"time"
)

// DefaultStreamInterval paces MJPEG frames at roughly 15 FPS.
const DefaultStreamInterval = 66 * time.Millisecond

// FrameSource supplies the latest annotated frame as JPEG.
type FrameSource interface {
	LatestJPEG() []byte
}

// StreamHandler serves MJPEG frames from a FrameSource.
type StreamHandler struct {
	source   FrameSource
	interval time.Duration
}

// NewStreamHandler creates a new StreamHandler with the given source.
func NewStreamHandler(source FrameSource) *StreamHandler {
	return &StreamHandler{source: source, interval: DefaultStreamInterval}
}

// ServeHTTP streams MJPEG frames to connected clients.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		buf := h.source.LatestJPEG()
		if len(buf) == 0 {
			continue
		}

		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(buf))
		if _, err := w.Write(buf); err != nil {
			return
		}
		fmt.Fprintf(w, "\r\n")

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}
