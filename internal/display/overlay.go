// Package display renders the annotated camera feed and the reference panel
// with OpenCV.
package display

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/heropose/internal/detector"
	"github.com/ayusman/heropose/internal/gesture"
	"github.com/ayusman/heropose/internal/theme"
)

var (
	faceColor    = color.RGBA{R: 255, G: 255, A: 255}
	handColor    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	jointColor   = color.RGBA{R: 255, A: 255}
	poseColor    = color.RGBA{R: 80, G: 175, B: 255, A: 255}
	debugColor   = color.RGBA{G: 255, B: 255, A: 255}
	captionColor = color.RGBA{G: 255, A: 255}
)

// WaitingText is shown in the caption while no pose is recognized.
const WaitingText = "Waiting..."

// Annotate draws the landmarks, optional debug flags and the caption onto
// frame in place.
func Annotate(frame *gocv.Mat, det *detector.Result, res gesture.Result, entry theme.Entry, debug bool) {
	if frame == nil || frame.Empty() {
		return
	}
	cols, rows := frame.Cols(), frame.Rows()

	if det != nil {
		if det.Face != nil {
			for _, p := range det.Face.Points {
				gocv.Circle(frame, toPixel(p, cols, rows), 1, faceColor, -1)
			}
		}
		if det.Pose != nil {
			drawSkeleton(frame, det.Pose.Points[:], detector.PoseConnections, poseColor, 3)
			for _, i := range []int{detector.LeftShoulder, detector.RightShoulder, detector.LeftWrist, detector.RightWrist} {
				gocv.Circle(frame, toPixel(det.Pose.Points[i], cols, rows), 6, poseColor, -1)
			}
		}
		for i := range det.Hands {
			drawSkeleton(frame, det.Hands[i].Points[:], detector.HandConnections, handColor, 2)
			for _, p := range det.Hands[i].Points {
				gocv.Circle(frame, toPixel(p, cols, rows), 4, jointColor, -1)
			}
		}
	}

	if debug {
		y := 30
		for _, line := range DebugLines(res) {
			gocv.PutText(frame, line, image.Pt(10, y), gocv.FontHersheySimplex, 0.55, debugColor, 2)
			y += 25
		}
	}

	gocv.PutText(frame, CaptionText(entry), image.Pt(10, rows-20), gocv.FontHersheySimplex, 0.7, captionColor, 2)
}

func drawSkeleton(frame *gocv.Mat, points []detector.Point3D, connections [][2]int, c color.RGBA, thickness int) {
	cols, rows := frame.Cols(), frame.Rows()
	for _, conn := range connections {
		a, b := points[conn[0]], points[conn[1]]
		gocv.Line(frame, toPixel(a, cols, rows), toPixel(b, cols, rows), c, thickness)
	}
}

// toPixel maps a normalized landmark to pixel coordinates.
func toPixel(p detector.Point3D, cols, rows int) image.Point {
	return image.Pt(int(p.X*float64(cols)), int(p.Y*float64(rows)))
}

// DebugLines returns the per-rule diagnostics shown in the corner.
func DebugLines(res gesture.Result) []string {
	return []string{
		fmt.Sprintf("Hands: %d", res.Flags.Hands),
		"Arms crossed: " + yesNo(res.Flags.ArmsCrossed),
		"Web shoot: " + yesNo(res.Flags.WebShoot),
		"Finger snap: " + yesNo(res.Flags.FingerSnap),
		"Open palm: " + yesNo(res.Flags.PalmRaised),
	}
}

// CaptionText returns the bottom caption for entry.
func CaptionText(entry theme.Entry) string {
	if entry.Name == "" {
		return "Hero: " + WaitingText
	}
	return "Hero: " + entry.Name
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "-"
}
