package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/heropose/internal/detector"
)

func poseRef(p detector.PoseLandmarks) *detector.PoseLandmarks {
	return &p
}

func TestClassify_Scenarios(t *testing.T) {
	shooterWithSnap := detector.WebShooterLandmarks()
	shooterWithSnap.Points[detector.ThumbTip] = detector.Point3D{X: 0.49, Y: 0.66}

	crossedLow := detector.PoseWith(
		detector.Point3D{X: 0.4, Y: 0.5},
		detector.Point3D{X: 0.6, Y: 0.5},
		detector.Point3D{X: 0.55, Y: 0.52},
		detector.Point3D{X: 0.45, Y: 0.51},
	)

	tests := []struct {
		name  string
		frame *detector.Result
		want  Label
	}{
		{
			name:  "nil frame",
			frame: nil,
			want:  Default,
		},
		{
			name:  "empty frame",
			frame: &detector.Result{},
			want:  Default,
		},
		{
			name:  "arms crossed worked example",
			frame: &detector.Result{Pose: poseRef(detector.ArmsCrossedPose())},
			want:  ArmsCrossed,
		},
		{
			name:  "neutral pose",
			frame: &detector.Result{Pose: poseRef(detector.NeutralPose())},
			want:  Default,
		},
		{
			name:  "web shooter without pose",
			frame: &detector.Result{Hands: []detector.HandLandmarks{detector.WebShooterLandmarks()}},
			want:  WebShoot,
		},
		{
			name:  "snap without pose",
			frame: &detector.Result{Hands: []detector.HandLandmarks{detector.SnapLandmarks()}},
			want:  FingerSnap,
		},
		{
			name: "raised palm",
			frame: &detector.Result{
				Pose:  poseRef(detector.NeutralPose()),
				Hands: []detector.HandLandmarks{detector.RaisedPalmLandmarks()},
			},
			want: PalmRaised,
		},
		{
			name:  "raised palm needs a pose",
			frame: &detector.Result{Hands: []detector.HandLandmarks{detector.RaisedPalmLandmarks()}},
			want:  Default,
		},
		{
			name: "open palm held low",
			frame: &detector.Result{
				Pose:  poseRef(detector.NeutralPose()),
				Hands: []detector.HandLandmarks{detector.OpenPalmLandmarks()},
			},
			want: Default,
		},
		{
			name:  "thumbs up is not a pose",
			frame: &detector.Result{Hands: []detector.HandLandmarks{detector.ThumbsUpLandmarks()}},
			want:  Default,
		},
		{
			name: "arms crossed beats palm raised",
			frame: &detector.Result{
				Pose:  poseRef(crossedLow),
				Hands: []detector.HandLandmarks{detector.RaisedPalmLandmarks()},
			},
			want: ArmsCrossed,
		},
		{
			name:  "web shoot beats finger snap",
			frame: &detector.Result{Hands: []detector.HandLandmarks{shooterWithSnap}},
			want:  WebShoot,
		},
		{
			name: "web shoot on either hand",
			frame: &detector.Result{Hands: []detector.HandLandmarks{
				detector.OpenPalmLandmarks(),
				detector.WebShooterLandmarks(),
			}},
			want: WebShoot,
		},
		{
			name: "two raised palms never yield palm raised",
			frame: &detector.Result{
				Pose: poseRef(detector.NeutralPose()),
				Hands: []detector.HandLandmarks{
					detector.RaisedPalmLandmarks(),
					detector.RaisedPalmLandmarks().Translate(0.5, 0),
				},
			},
			want: Default,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.frame)
			assert.Equal(t, tt.want, got.Label)
		})
	}
}

func TestClassify_WebShootExample(t *testing.T) {
	// Only the four fingertips and PIP joints matter for this rule.
	var hand detector.HandLandmarks
	hand.Points[detector.IndexPIP] = detector.Point3D{Y: 0.5}
	hand.Points[detector.IndexTip] = detector.Point3D{Y: 0.4}
	hand.Points[detector.PinkyPIP] = detector.Point3D{Y: 0.5}
	hand.Points[detector.PinkyTip] = detector.Point3D{Y: 0.4}
	hand.Points[detector.MiddlePIP] = detector.Point3D{Y: 0.5}
	hand.Points[detector.MiddleTip] = detector.Point3D{Y: 0.6}
	hand.Points[detector.RingPIP] = detector.Point3D{Y: 0.5}
	hand.Points[detector.RingTip] = detector.Point3D{Y: 0.6}
	hand.Points[detector.ThumbTip] = detector.Point3D{X: 0.9, Y: 0.9}

	got := Classify(&detector.Result{Hands: []detector.HandLandmarks{hand}})
	assert.Equal(t, WebShoot, got.Label)
}

func TestClassify_ZeroShoulderWidth(t *testing.T) {
	shoulder := detector.Point3D{X: 0.5, Y: 0.3}
	pose := detector.PoseWith(shoulder, shoulder,
		detector.Point3D{X: 0.5, Y: 0.3},
		detector.Point3D{X: 0.5, Y: 0.3},
	)

	c := NewClassifier(DefaultThresholds())
	frame := &detector.Result{Pose: &pose}

	assert.False(t, c.armsCrossed(frame))
	assert.Equal(t, Default, c.Classify(frame).Label)
}

func TestClassify_NarrowShoulders(t *testing.T) {
	// Width 0.005 is below the guard even though the wrists are crossed.
	pose := detector.PoseWith(
		detector.Point3D{X: 0.4975, Y: 0.3},
		detector.Point3D{X: 0.5025, Y: 0.3},
		detector.Point3D{X: 0.501, Y: 0.3},
		detector.Point3D{X: 0.499, Y: 0.3},
	)
	got := Classify(&detector.Result{Pose: &pose})
	assert.Equal(t, Default, got.Label)
}

func TestClassify_UncrossedWristsAtChest(t *testing.T) {
	pose := detector.PoseWith(
		detector.Point3D{X: 0.4, Y: 0.3},
		detector.Point3D{X: 0.6, Y: 0.3},
		detector.Point3D{X: 0.45, Y: 0.32},
		detector.Point3D{X: 0.55, Y: 0.31},
	)
	got := Classify(&detector.Result{Pose: &pose})
	assert.Equal(t, Default, got.Label)
}

func TestClassify_Idempotent(t *testing.T) {
	frame := &detector.Result{
		Pose:  poseRef(detector.NeutralPose()),
		Hands: []detector.HandLandmarks{detector.RaisedPalmLandmarks()},
	}

	first := Classify(frame)
	second := Classify(frame)

	assert.Equal(t, first, second)
	assert.Equal(t, PalmRaised, first.Label)
}

func TestClassify_Flags(t *testing.T) {
	t.Run("only matching rule is flagged", func(t *testing.T) {
		frame := &detector.Result{
			Pose:  poseRef(detector.ArmsCrossedPose()),
			Hands: []detector.HandLandmarks{detector.WebShooterLandmarks()},
			Face:  &detector.FaceLandmarks{Points: []detector.Point3D{{X: 0.5, Y: 0.2}}},
		}

		got := Classify(frame)

		require.Equal(t, ArmsCrossed, got.Label)
		assert.Equal(t, Flags{Hands: 1, Face: true, ArmsCrossed: true}, got.Flags)
	})

	t.Run("default sets no rule flag", func(t *testing.T) {
		got := Classify(&detector.Result{Hands: []detector.HandLandmarks{detector.OpenPalmLandmarks()}})

		assert.Equal(t, Flags{Hands: 1}, got.Flags)
	})
}

func TestClassifier_CustomThresholds(t *testing.T) {
	frame := &detector.Result{
		Pose:  poseRef(detector.NeutralPose()),
		Hands: []detector.HandLandmarks{detector.OpenPalmLandmarks()},
	}

	// The open palm wrist sits at 0.8, shoulders at 0.5.
	th := DefaultThresholds()
	th.RaiseTolerance = 0.35
	c := NewClassifier(th)

	assert.Equal(t, PalmRaised, c.Classify(frame).Label)
	assert.Equal(t, th, c.Thresholds())
}

func TestThresholds_Validate(t *testing.T) {
	require.NoError(t, DefaultThresholds().Validate())

	th := DefaultThresholds()
	th.SnapDistance = 0
	err := th.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "snap_distance")

	th = DefaultThresholds()
	th.CrossReachY = -1
	assert.Error(t, th.Validate())
}

func TestParseLabel(t *testing.T) {
	for _, l := range Labels() {
		got, err := ParseLabel(string(l))
		require.NoError(t, err)
		assert.Equal(t, l, got)
	}

	_, err := ParseLabel("moonwalk")
	assert.ErrorIs(t, err, ErrUnknownLabel)
}

func TestLabels_Order(t *testing.T) {
	assert.Equal(t, []Label{ArmsCrossed, WebShoot, FingerSnap, PalmRaised, Default}, Labels())
}
