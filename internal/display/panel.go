package display

import (
	"image"
	"image/color"
	"log/slog"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/heropose/internal/gesture"
	"github.com/ayusman/heropose/internal/theme"
)

var (
	panelBackground = color.RGBA{R: 0x16, G: 0x21, B: 0x3e, A: 255}
	placeholderEdge = color.RGBA{R: 0x44, G: 0x44, B: 0x44, A: 255}
	placeholderText = color.RGBA{R: 0xaa, G: 0xaa, B: 0xaa, A: 255}
	titleColor      = color.RGBA{R: 0xe9, G: 0x45, B: 0x60, A: 255}
)

const (
	panelMargin  = 20
	titleHeight  = 50
	footerHeight = 50
)

// Panel renders the reference image for the current label. It only redraws
// when the label or theme changes.
type Panel struct {
	mu      sync.Mutex
	theme   *theme.Theme
	width   int
	height  int
	label   gesture.Label
	valid   bool
	canvas  gocv.Mat
	images  map[string]gocv.Mat
	missing map[string]bool
	renders int
}

// NewPanel creates a panel of the given size for t.
func NewPanel(t *theme.Theme, width, height int) *Panel {
	return &Panel{
		theme:   t,
		width:   width,
		height:  height,
		canvas:  gocv.NewMat(),
		images:  make(map[string]gocv.Mat),
		missing: make(map[string]bool),
	}
}

// SetTheme swaps the theme and forces the next Update to redraw.
func (p *Panel) SetTheme(t *theme.Theme) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.theme = t
	p.valid = false
	p.dropImages()
}

// Theme returns the theme currently drawn.
func (p *Panel) Theme() *theme.Theme {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.theme
}

// Update shows label and reports whether the panel was redrawn.
func (p *Panel) Update(label gesture.Label) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.valid && label == p.label {
		return false
	}
	p.label = label
	p.render()
	p.valid = true
	p.renders++
	return true
}

// Mat returns the rendered panel. It stays owned by the panel.
func (p *Panel) Mat() gocv.Mat {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.canvas
}

// Renders returns how many times the panel has been drawn.
func (p *Panel) Renders() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.renders
}

// Close releases the canvas and cached images.
func (p *Panel) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.dropImages()
	return p.canvas.Close()
}

func (p *Panel) dropImages() {
	for path, img := range p.images {
		img.Close()
		delete(p.images, path)
	}
	p.missing = make(map[string]bool)
}

func (p *Panel) render() {
	entry := p.theme.Lookup(p.label)
	accent := entry.RGBA()

	canvas := gocv.NewMatWithSizeFromScalar(
		gocv.NewScalar(float64(panelBackground.B), float64(panelBackground.G), float64(panelBackground.R), 0),
		p.height, p.width, gocv.MatTypeCV8UC3)
	p.canvas.Close()
	p.canvas = canvas

	title := entry.Name
	if title == "" {
		title = p.theme.Title
	}
	gocv.PutText(&p.canvas, title, image.Pt(panelMargin, 35), gocv.FontHersheySimplex, 0.9, titleColor, 2)

	area := image.Rect(panelMargin, titleHeight, p.width-panelMargin, p.height-footerHeight)
	if area.Dx() <= 0 || area.Dy() <= 0 {
		return
	}

	if img, ok := p.image(p.theme.AssetPath(p.label)); ok {
		p.drawImage(img, area)
		gocv.Rectangle(&p.canvas, area, accent, 3)
	} else {
		p.drawPlaceholder(area)
	}

	gocv.PutText(&p.canvas, entry.Caption, image.Pt(panelMargin, p.height-18), gocv.FontHersheySimplex, 0.6, accent, 2)
}

// image loads path once. Missing or unreadable files are logged once and
// remembered.
func (p *Panel) image(path string) (gocv.Mat, bool) {
	if path == "" {
		return gocv.Mat{}, false
	}
	if img, ok := p.images[path]; ok {
		return img, true
	}
	if p.missing[path] {
		return gocv.Mat{}, false
	}

	if _, err := os.Stat(path); err != nil {
		slog.Warn("reference image missing", "path", path, "error", err)
		p.missing[path] = true
		return gocv.Mat{}, false
	}
	img := gocv.IMRead(path, gocv.IMReadColor)
	if img.Empty() {
		img.Close()
		slog.Warn("reference image unreadable", "path", path)
		p.missing[path] = true
		return gocv.Mat{}, false
	}
	p.images[path] = img
	return img, true
}

// drawImage scales img to fit area, keeping its aspect ratio, and centers it.
func (p *Panel) drawImage(img gocv.Mat, area image.Rectangle) {
	size := fit(img.Cols(), img.Rows(), area.Dx(), area.Dy())
	if size.X <= 0 || size.Y <= 0 {
		return
	}

	scaled := gocv.NewMat()
	defer scaled.Close()
	gocv.Resize(img, &scaled, size, 0, 0, gocv.InterpolationLinear)

	offset := image.Pt(area.Min.X+(area.Dx()-size.X)/2, area.Min.Y+(area.Dy()-size.Y)/2)
	roi := p.canvas.Region(image.Rectangle{Min: offset, Max: offset.Add(size)})
	defer roi.Close()
	scaled.CopyTo(&roi)
}

func (p *Panel) drawPlaceholder(area image.Rectangle) {
	gocv.Rectangle(&p.canvas, area, placeholderEdge, 2)
	y := area.Min.Y + 40
	for _, line := range p.theme.Placeholder() {
		if line != "" {
			gocv.PutText(&p.canvas, line, image.Pt(area.Min.X+15, y), gocv.FontHersheySimplex, 0.5, placeholderText, 1)
		}
		y += 28
	}
}

// fit returns the largest size with the aspect ratio of w x h that fits
// inside maxW x maxH.
func fit(w, h, maxW, maxH int) image.Point {
	if w <= 0 || h <= 0 || maxW <= 0 || maxH <= 0 {
		return image.Point{}
	}
	if w*maxH > h*maxW {
		return image.Pt(maxW, h*maxW/w)
	}
	return image.Pt(w*maxH/h, maxH)
}
