// Package detector provides landmark provider interfaces and types for pose recognition.
package detector

import "encoding/json"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Pose landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/pose_landmarker
const (
	Nose             = 0
	LeftEyeInner     = 1
	LeftEye          = 2
	LeftEyeOuter     = 3
	RightEyeInner    = 4
	RightEye         = 5
	RightEyeOuter    = 6
	LeftEar          = 7
	RightEar         = 8
	MouthLeft        = 9
	MouthRight       = 10
	LeftShoulder     = 11
	RightShoulder    = 12
	LeftElbow        = 13
	RightElbow       = 14
	LeftWrist        = 15
	RightWrist       = 16
	LeftPinky        = 17
	RightPinky       = 18
	LeftIndex        = 19
	RightIndex       = 20
	LeftThumb        = 21
	RightThumb       = 22
	LeftHip          = 23
	RightHip         = 24
	LeftKnee         = 25
	RightKnee        = 26
	LeftAnkle        = 27
	RightAnkle       = 28
	LeftHeel         = 29
	RightHeel        = 30
	LeftFootIndex    = 31
	RightFootIndex   = 32
	NumPoseLandmarks = 33
)

// Point3D is a landmark position in normalized image coordinates.
// X and Y lie in [0,1] with Y growing downward; Z is relative depth.
type Point3D struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility,omitempty"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Translate returns a copy of the hand moved by dx, dy.
func (h HandLandmarks) Translate(dx, dy float64) HandLandmarks {
	for i := range h.Points {
		h.Points[i].X += dx
		h.Points[i].Y += dy
	}
	return h
}

// PoseLandmarks represents the 33 body landmarks detected by MediaPipe.
type PoseLandmarks struct {
	Points [NumPoseLandmarks]Point3D `json:"points"`
}

// FaceLandmarks holds face mesh points. They are drawn but never classified.
type FaceLandmarks struct {
	Points []Point3D `json:"points"`
}

// Result is the landmark provider output for one frame.
// A nil Pose or Face means the model did not find one; Hands holds zero or
// more detected hands with no identity across frames.
type Result struct {
	Pose  *PoseLandmarks  `json:"pose"`
	Hands []HandLandmarks `json:"hands"`
	Face  *FaceLandmarks  `json:"face"`
}

// UnmarshalJSON decodes the wire form. A pose or hand with fewer points than
// its topology, or a face with none, is absent rather than zero-filled.
func (r *Result) UnmarshalJSON(data []byte) error {
	var wire jsonResult
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*r = Result{}
	if wire.Pose != nil && len(wire.Pose.Points) >= NumPoseLandmarks {
		pose := &PoseLandmarks{}
		copy(pose.Points[:], wire.Pose.Points)
		r.Pose = pose
	}
	for _, h := range wire.Hands {
		if len(h.Points) < NumLandmarks {
			continue
		}
		r.Hands = append(r.Hands, h.toHandLandmarks())
	}
	if wire.Face != nil && len(wire.Face.Points) > 0 {
		r.Face = &FaceLandmarks{Points: wire.Face.Points}
	}
	return nil
}

// jsonResult mirrors Result with variable-length point lists.
type jsonResult struct {
	Pose  *jsonPoints `json:"pose"`
	Hands []jsonHand  `json:"hands"`
	Face  *jsonPoints `json:"face"`
}

type jsonPoints struct {
	Points []Point3D `json:"points"`
}

type jsonHand struct {
	Points     []Point3D `json:"points"`
	Handedness string    `json:"handedness"`
	Score      float64   `json:"score"`
}

func (h jsonHand) toHandLandmarks() HandLandmarks {
	lm := HandLandmarks{
		Handedness: h.Handedness,
		Score:      h.Score,
	}
	copy(lm.Points[:], h.Points)
	return lm
}

// Empty reports whether nothing was detected in the frame.
func (r *Result) Empty() bool {
	return r == nil || (r.Pose == nil && len(r.Hands) == 0 && r.Face == nil)
}

// HandConnections lists landmark index pairs forming the hand skeleton.
var HandConnections = [][2]int{
	{Wrist, ThumbCMC}, {ThumbCMC, ThumbMCP}, {ThumbMCP, ThumbIP}, {ThumbIP, ThumbTip},
	{Wrist, IndexMCP}, {IndexMCP, IndexPIP}, {IndexPIP, IndexDIP}, {IndexDIP, IndexTip},
	{IndexMCP, MiddleMCP}, {MiddleMCP, MiddlePIP}, {MiddlePIP, MiddleDIP}, {MiddleDIP, MiddleTip},
	{MiddleMCP, RingMCP}, {RingMCP, RingPIP}, {RingPIP, RingDIP}, {RingDIP, RingTip},
	{RingMCP, PinkyMCP}, {Wrist, PinkyMCP}, {PinkyMCP, PinkyPIP}, {PinkyPIP, PinkyDIP}, {PinkyDIP, PinkyTip},
}

// PoseConnections lists the upper-body segments drawn on the overlay.
var PoseConnections = [][2]int{
	{LeftShoulder, RightShoulder},
	{LeftShoulder, LeftElbow}, {LeftElbow, LeftWrist},
	{RightShoulder, RightElbow}, {RightElbow, RightWrist},
	{LeftShoulder, LeftHip}, {RightShoulder, RightHip}, {LeftHip, RightHip},
}
