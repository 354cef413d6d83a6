// Package gesture classifies a frame's landmarks into one of a fixed set of
// named poses using geometric rules over normalized coordinates.
package gesture

import (
	"math"

	"github.com/ayusman/heropose/internal/detector"
)

// FingerExtended reports whether the fingertip sits above its PIP joint.
// Image Y grows downward, so above means a smaller Y.
func FingerExtended(hand *detector.HandLandmarks, tip, pip int) bool {
	return hand.Points[tip].Y < hand.Points[pip].Y
}

// FingerCurled reports whether the fingertip sits below its PIP joint.
// A tip level with its joint is neither extended nor curled.
func FingerCurled(hand *detector.HandLandmarks, tip, pip int) bool {
	return hand.Points[tip].Y > hand.Points[pip].Y
}

// Distance returns the planar Euclidean distance between two points.
func Distance(a, b detector.Point3D) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Midpoint returns the planar point halfway between a and b.
func Midpoint(a, b detector.Point3D) detector.Point3D {
	return detector.Point3D{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

func indexExtended(h *detector.HandLandmarks) bool {
	return FingerExtended(h, detector.IndexTip, detector.IndexPIP)
}

func middleExtended(h *detector.HandLandmarks) bool {
	return FingerExtended(h, detector.MiddleTip, detector.MiddlePIP)
}

func ringExtended(h *detector.HandLandmarks) bool {
	return FingerExtended(h, detector.RingTip, detector.RingPIP)
}

func pinkyExtended(h *detector.HandLandmarks) bool {
	return FingerExtended(h, detector.PinkyTip, detector.PinkyPIP)
}
