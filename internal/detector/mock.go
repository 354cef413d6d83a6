package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu     sync.Mutex
	result *Result
	err    error
	calls  int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetResult sets the landmarks that will be returned by Detect.
func (m *MockDetector) SetResult(r *Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result = r
}

// SetHands sets a result holding only the given hands.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result = &Result{Hands: hands}
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured result or error.
func (m *MockDetector) Detect(frame *gocv.Mat) (*Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		return &Result{}, nil
	}
	return m.result, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// ThumbsUpLandmarks returns a preset HandLandmarks representing a thumbs up gesture.
// The thumb is extended upward while other fingers are curled.
func ThumbsUpLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	// Thumb extended upward (pointing up, Y decreases going up)
	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.0}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.58, Y: 0.65, Z: 0.0}
	landmarks.Points[ThumbIP] = Point3D{X: 0.58, Y: 0.50, Z: 0.0}
	landmarks.Points[ThumbTip] = Point3D{X: 0.58, Y: 0.35, Z: 0.0}

	// Index finger curled (knuckles close together, tip near palm)
	landmarks.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.70, Z: -0.02}
	landmarks.Points[IndexPIP] = Point3D{X: 0.55, Y: 0.68, Z: -0.05}
	landmarks.Points[IndexDIP] = Point3D{X: 0.52, Y: 0.70, Z: -0.04}
	landmarks.Points[IndexTip] = Point3D{X: 0.50, Y: 0.72, Z: -0.02}

	landmarks.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.68, Z: -0.02}
	landmarks.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.66, Z: -0.05}
	landmarks.Points[MiddleDIP] = Point3D{X: 0.47, Y: 0.68, Z: -0.04}
	landmarks.Points[MiddleTip] = Point3D{X: 0.45, Y: 0.70, Z: -0.02}

	landmarks.Points[RingMCP] = Point3D{X: 0.45, Y: 0.70, Z: -0.02}
	landmarks.Points[RingPIP] = Point3D{X: 0.45, Y: 0.68, Z: -0.05}
	landmarks.Points[RingDIP] = Point3D{X: 0.42, Y: 0.70, Z: -0.04}
	landmarks.Points[RingTip] = Point3D{X: 0.40, Y: 0.72, Z: -0.02}

	landmarks.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.72, Z: -0.02}
	landmarks.Points[PinkyPIP] = Point3D{X: 0.40, Y: 0.70, Z: -0.05}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.37, Y: 0.72, Z: -0.04}
	landmarks.Points[PinkyTip] = Point3D{X: 0.35, Y: 0.74, Z: -0.02}

	return landmarks
}

// OpenPalmLandmarks returns a preset HandLandmarks representing an open palm
// held low in the frame. All fingers are extended outward.
func OpenPalmLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	// Thumb extended to the side
	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.02}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.70, Z: 0.03}
	landmarks.Points[ThumbIP] = Point3D{X: 0.68, Y: 0.65, Z: 0.03}
	landmarks.Points[ThumbTip] = Point3D{X: 0.73, Y: 0.60, Z: 0.03}

	landmarks.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68, Z: 0.0}
	landmarks.Points[IndexPIP] = Point3D{X: 0.57, Y: 0.55, Z: 0.0}
	landmarks.Points[IndexDIP] = Point3D{X: 0.58, Y: 0.45, Z: 0.0}
	landmarks.Points[IndexTip] = Point3D{X: 0.58, Y: 0.35, Z: 0.0}

	// Middle finger extended upward (slightly longer)
	landmarks.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66, Z: 0.0}
	landmarks.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.52, Z: 0.0}
	landmarks.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.40, Z: 0.0}
	landmarks.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.28, Z: 0.0}

	landmarks.Points[RingMCP] = Point3D{X: 0.45, Y: 0.68, Z: 0.0}
	landmarks.Points[RingPIP] = Point3D{X: 0.43, Y: 0.55, Z: 0.0}
	landmarks.Points[RingDIP] = Point3D{X: 0.42, Y: 0.45, Z: 0.0}
	landmarks.Points[RingTip] = Point3D{X: 0.42, Y: 0.35, Z: 0.0}

	landmarks.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.70, Z: 0.0}
	landmarks.Points[PinkyPIP] = Point3D{X: 0.37, Y: 0.60, Z: 0.0}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.35, Y: 0.50, Z: 0.0}
	landmarks.Points[PinkyTip] = Point3D{X: 0.34, Y: 0.42, Z: 0.0}

	return landmarks
}

// RaisedPalmLandmarks returns a compact open palm with the wrist at y=0.45,
// high enough to count as raised against NeutralPose shoulders.
func RaisedPalmLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.93,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.25, Y: 0.45}

	landmarks.Points[ThumbCMC] = Point3D{X: 0.29, Y: 0.42}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.32, Y: 0.39}
	landmarks.Points[ThumbIP] = Point3D{X: 0.35, Y: 0.36}
	landmarks.Points[ThumbTip] = Point3D{X: 0.38, Y: 0.33}

	landmarks.Points[IndexMCP] = Point3D{X: 0.28, Y: 0.35}
	landmarks.Points[IndexPIP] = Point3D{X: 0.29, Y: 0.28}
	landmarks.Points[IndexDIP] = Point3D{X: 0.295, Y: 0.23}
	landmarks.Points[IndexTip] = Point3D{X: 0.30, Y: 0.19}

	landmarks.Points[MiddleMCP] = Point3D{X: 0.25, Y: 0.34}
	landmarks.Points[MiddlePIP] = Point3D{X: 0.25, Y: 0.26}
	landmarks.Points[MiddleDIP] = Point3D{X: 0.25, Y: 0.21}
	landmarks.Points[MiddleTip] = Point3D{X: 0.25, Y: 0.16}

	landmarks.Points[RingMCP] = Point3D{X: 0.22, Y: 0.35}
	landmarks.Points[RingPIP] = Point3D{X: 0.21, Y: 0.28}
	landmarks.Points[RingDIP] = Point3D{X: 0.205, Y: 0.23}
	landmarks.Points[RingTip] = Point3D{X: 0.20, Y: 0.19}

	landmarks.Points[PinkyMCP] = Point3D{X: 0.19, Y: 0.37}
	landmarks.Points[PinkyPIP] = Point3D{X: 0.18, Y: 0.32}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.175, Y: 0.28}
	landmarks.Points[PinkyTip] = Point3D{X: 0.17, Y: 0.25}

	return landmarks
}

// WebShooterLandmarks returns a hand with index and pinky extended, middle
// and ring curled into the palm and the thumb out to the side.
func WebShooterLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.92,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.5, Y: 0.8}

	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.76}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.60, Y: 0.72}
	landmarks.Points[ThumbIP] = Point3D{X: 0.65, Y: 0.68}
	landmarks.Points[ThumbTip] = Point3D{X: 0.70, Y: 0.65}

	landmarks.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.66}
	landmarks.Points[IndexPIP] = Point3D{X: 0.56, Y: 0.55}
	landmarks.Points[IndexDIP] = Point3D{X: 0.57, Y: 0.46}
	landmarks.Points[IndexTip] = Point3D{X: 0.58, Y: 0.38}

	landmarks.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.65}
	landmarks.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.58}
	landmarks.Points[MiddleDIP] = Point3D{X: 0.49, Y: 0.63}
	landmarks.Points[MiddleTip] = Point3D{X: 0.49, Y: 0.67}

	landmarks.Points[RingMCP] = Point3D{X: 0.45, Y: 0.66}
	landmarks.Points[RingPIP] = Point3D{X: 0.45, Y: 0.60}
	landmarks.Points[RingDIP] = Point3D{X: 0.45, Y: 0.65}
	landmarks.Points[RingTip] = Point3D{X: 0.45, Y: 0.68}

	landmarks.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.69}
	landmarks.Points[PinkyPIP] = Point3D{X: 0.38, Y: 0.60}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.37, Y: 0.53}
	landmarks.Points[PinkyTip] = Point3D{X: 0.36, Y: 0.47}

	return landmarks
}

// SnapLandmarks returns a hand about to snap: thumb tip pressed against the
// middle fingertip with the index finger raised.
func SnapLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.9,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.5, Y: 0.8}

	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.76}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.58, Y: 0.70}
	landmarks.Points[ThumbIP] = Point3D{X: 0.57, Y: 0.64}
	landmarks.Points[ThumbTip] = Point3D{X: 0.53, Y: 0.60}

	landmarks.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.66}
	landmarks.Points[IndexPIP] = Point3D{X: 0.56, Y: 0.55}
	landmarks.Points[IndexDIP] = Point3D{X: 0.57, Y: 0.46}
	landmarks.Points[IndexTip] = Point3D{X: 0.58, Y: 0.38}

	landmarks.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.65}
	landmarks.Points[MiddlePIP] = Point3D{X: 0.51, Y: 0.57}
	landmarks.Points[MiddleDIP] = Point3D{X: 0.52, Y: 0.56}
	landmarks.Points[MiddleTip] = Point3D{X: 0.52, Y: 0.59}

	landmarks.Points[RingMCP] = Point3D{X: 0.45, Y: 0.66}
	landmarks.Points[RingPIP] = Point3D{X: 0.45, Y: 0.60}
	landmarks.Points[RingDIP] = Point3D{X: 0.45, Y: 0.65}
	landmarks.Points[RingTip] = Point3D{X: 0.45, Y: 0.68}

	landmarks.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.69}
	landmarks.Points[PinkyPIP] = Point3D{X: 0.39, Y: 0.64}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.39, Y: 0.68}
	landmarks.Points[PinkyTip] = Point3D{X: 0.40, Y: 0.71}

	return landmarks
}

// PoseWith returns a standing pose whose shoulders and wrists are placed at
// the given points. Elbows sit halfway between them and the hips sit below
// the shoulders; every landmark is fully visible.
func PoseWith(leftShoulder, rightShoulder, leftWrist, rightWrist Point3D) PoseLandmarks {
	var pose PoseLandmarks

	midX := (leftShoulder.X + rightShoulder.X) / 2
	headY := (leftShoulder.Y+rightShoulder.Y)/2 - 0.15
	for i := Nose; i <= MouthRight; i++ {
		pose.Points[i] = Point3D{X: midX, Y: headY}
	}

	pose.Points[LeftShoulder] = leftShoulder
	pose.Points[RightShoulder] = rightShoulder
	pose.Points[LeftWrist] = leftWrist
	pose.Points[RightWrist] = rightWrist
	pose.Points[LeftElbow] = midpoint(leftShoulder, leftWrist)
	pose.Points[RightElbow] = midpoint(rightShoulder, rightWrist)

	for _, i := range []int{LeftPinky, LeftIndex, LeftThumb} {
		pose.Points[i] = leftWrist
	}
	for _, i := range []int{RightPinky, RightIndex, RightThumb} {
		pose.Points[i] = rightWrist
	}

	legs := [][2]int{
		{LeftHip, RightHip}, {LeftKnee, RightKnee}, {LeftAnkle, RightAnkle},
		{LeftHeel, RightHeel}, {LeftFootIndex, RightFootIndex},
	}
	for n, pair := range legs {
		dy := 0.3 + 0.1*float64(n)
		pose.Points[pair[0]] = Point3D{X: leftShoulder.X, Y: leftShoulder.Y + dy}
		pose.Points[pair[1]] = Point3D{X: rightShoulder.X, Y: rightShoulder.Y + dy}
	}

	for i := range pose.Points {
		pose.Points[i].Visibility = 1
	}

	return pose
}

// ArmsCrossedPose returns a pose with the wrists crossed in front of the chest.
func ArmsCrossedPose() PoseLandmarks {
	return PoseWith(
		Point3D{X: 0.4, Y: 0.3},
		Point3D{X: 0.6, Y: 0.3},
		Point3D{X: 0.55, Y: 0.32},
		Point3D{X: 0.45, Y: 0.31},
	)
}

// NeutralPose returns a pose with both arms hanging at the sides.
func NeutralPose() PoseLandmarks {
	return PoseWith(
		Point3D{X: 0.4, Y: 0.5},
		Point3D{X: 0.6, Y: 0.5},
		Point3D{X: 0.38, Y: 0.85},
		Point3D{X: 0.62, Y: 0.85},
	)
}

func midpoint(a, b Point3D) Point3D {
	return Point3D{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2, Z: (a.Z + b.Z) / 2}
}
