package gesture

import (
	"errors"
	"fmt"
	"math"

	"github.com/ayusman/heropose/internal/detector"
)

// Label identifies one of the fixed poses the classifier can report.
type Label string

// Recognized labels. Default is returned when no rule matches.
const (
	Default     Label = "default"
	ArmsCrossed Label = "arms_crossed"
	WebShoot    Label = "web_shoot"
	FingerSnap  Label = "finger_snap"
	PalmRaised  Label = "palm_raised"
)

// ErrUnknownLabel is returned by ParseLabel for names outside the label set.
var ErrUnknownLabel = errors.New("unknown label")

// Labels returns every label in evaluation order, Default last.
func Labels() []Label {
	return []Label{ArmsCrossed, WebShoot, FingerSnap, PalmRaised, Default}
}

// ParseLabel converts a name into a Label.
func ParseLabel(s string) (Label, error) {
	for _, l := range Labels() {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLabel, s)
}

// Thresholds are the tuned geometric constants used by the rules.
// Distances are in normalized image units; the cross reach values are
// multiples of shoulder width.
type Thresholds struct {
	MinShoulderWidth float64 `yaml:"min_shoulder_width" json:"min_shoulder_width"`
	CrossReachX      float64 `yaml:"cross_reach_x" json:"cross_reach_x"`
	CrossReachY      float64 `yaml:"cross_reach_y" json:"cross_reach_y"`
	SnapDistance     float64 `yaml:"snap_distance" json:"snap_distance"`
	RaiseTolerance   float64 `yaml:"raise_tolerance" json:"raise_tolerance"`
}

// DefaultThresholds returns the stock tuning.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinShoulderWidth: 0.01,
		CrossReachX:      0.9,
		CrossReachY:      1.2,
		SnapDistance:     0.06,
		RaiseTolerance:   0.05,
	}
}

// Validate checks that every threshold is positive.
func (t Thresholds) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"min_shoulder_width", t.MinShoulderWidth},
		{"cross_reach_x", t.CrossReachX},
		{"cross_reach_y", t.CrossReachY},
		{"snap_distance", t.SnapDistance},
		{"raise_tolerance", t.RaiseTolerance},
	}
	for _, f := range fields {
		if f.value <= 0 || math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("threshold %s must be positive, got %v", f.name, f.value)
		}
	}
	return nil
}

// Flags carries per-frame diagnostics for the debug overlay. Only the rule
// that matched is set; rules after it are never evaluated.
type Flags struct {
	Hands       int  `json:"hands"`
	Face        bool `json:"face"`
	ArmsCrossed bool `json:"arms_crossed"`
	WebShoot    bool `json:"web_shoot"`
	FingerSnap  bool `json:"finger_snap"`
	PalmRaised  bool `json:"palm_raised"`
}

// Result is the outcome of classifying one frame.
type Result struct {
	Label Label `json:"label"`
	Flags Flags `json:"flags"`
}

type rule struct {
	label Label
	match func(*detector.Result) bool
}

// Classifier maps a frame's landmarks to exactly one Label. It holds no
// per-frame state and is safe for concurrent use.
type Classifier struct {
	thresholds Thresholds
	rules      []rule
}

// NewClassifier creates a classifier using the given thresholds.
func NewClassifier(t Thresholds) *Classifier {
	c := &Classifier{thresholds: t}
	c.rules = []rule{
		{ArmsCrossed, c.armsCrossed},
		{WebShoot, c.webShoot},
		{FingerSnap, c.fingerSnap},
		{PalmRaised, c.palmRaised},
	}
	return c
}

// Thresholds returns the thresholds the classifier was built with.
func (c *Classifier) Thresholds() Thresholds {
	return c.thresholds
}

// Classify evaluates the rules in priority order and returns the first
// match, or Default. A nil frame classifies as Default.
func (c *Classifier) Classify(frame *detector.Result) Result {
	out := Result{Label: Default}
	if frame == nil {
		return out
	}

	out.Flags.Hands = len(frame.Hands)
	out.Flags.Face = frame.Face != nil

	for _, r := range c.rules {
		if r.match(frame) {
			out.Label = r.label
			out.Flags.set(r.label)
			return out
		}
	}
	return out
}

func (f *Flags) set(l Label) {
	switch l {
	case ArmsCrossed:
		f.ArmsCrossed = true
	case WebShoot:
		f.WebShoot = true
	case FingerSnap:
		f.FingerSnap = true
	case PalmRaised:
		f.PalmRaised = true
	}
}

// armsCrossed matches both wrists held near the chest with the left wrist
// to the right of the right wrist.
func (c *Classifier) armsCrossed(frame *detector.Result) bool {
	if frame.Pose == nil {
		return false
	}
	p := frame.Pose.Points
	ls, rs := p[detector.LeftShoulder], p[detector.RightShoulder]
	lw, rw := p[detector.LeftWrist], p[detector.RightWrist]

	width := math.Abs(ls.X - rs.X)
	if width < c.thresholds.MinShoulderWidth {
		return false
	}
	chest := Midpoint(ls, rs)

	near := func(w detector.Point3D) bool {
		return math.Abs(w.X-chest.X) < c.thresholds.CrossReachX*width &&
			math.Abs(w.Y-chest.Y) < c.thresholds.CrossReachY*width
	}

	return near(lw) && near(rw) && lw.X > rw.X
}

// webShoot matches any hand with index and pinky up, middle and ring down.
func (c *Classifier) webShoot(frame *detector.Result) bool {
	for i := range frame.Hands {
		h := &frame.Hands[i]
		if indexExtended(h) && pinkyExtended(h) &&
			FingerCurled(h, detector.MiddleTip, detector.MiddlePIP) &&
			FingerCurled(h, detector.RingTip, detector.RingPIP) {
			return true
		}
	}
	return false
}

// fingerSnap matches any hand with the thumb tip on the middle fingertip
// and the index finger raised.
func (c *Classifier) fingerSnap(frame *detector.Result) bool {
	for i := range frame.Hands {
		h := &frame.Hands[i]
		d := Distance(h.Points[detector.ThumbTip], h.Points[detector.MiddleTip])
		if d < c.thresholds.SnapDistance && indexExtended(h) {
			return true
		}
	}
	return false
}

// palmRaised matches a single open hand held at or above shoulder height.
// Two hands never match.
func (c *Classifier) palmRaised(frame *detector.Result) bool {
	if frame.Pose == nil || len(frame.Hands) != 1 {
		return false
	}
	p := frame.Pose.Points
	shoulderY := (p[detector.LeftShoulder].Y + p[detector.RightShoulder].Y) / 2

	h := &frame.Hands[0]
	if h.Points[detector.Wrist].Y >= shoulderY+c.thresholds.RaiseTolerance {
		return false
	}
	return indexExtended(h) && middleExtended(h) && ringExtended(h) && pinkyExtended(h)
}

var defaultClassifier = NewClassifier(DefaultThresholds())

// Classify classifies a frame with the default thresholds.
func Classify(frame *detector.Result) Result {
	return defaultClassifier.Classify(frame)
}
