package score

import (
	"testing"

	"github.com/attn-labs/focusship/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openEye returns an eye with EAR 0.3 and the iris centered.
func openEye() domain.EyeLandmarks {
	return domain.EyeLandmarks{
		P1:   domain.Point{X: 0.40, Y: 0.50},
		P4:   domain.Point{X: 0.60, Y: 0.50},
		P2:   domain.Point{X: 0.45, Y: 0.47},
		P6:   domain.Point{X: 0.45, Y: 0.53},
		P3:   domain.Point{X: 0.55, Y: 0.47},
		P5:   domain.Point{X: 0.55, Y: 0.53},
		Iris: domain.Point{X: 0.50, Y: 0.50},
	}
}

// closedEye returns an eye with EAR 0.05.
func closedEye() domain.EyeLandmarks {
	eye := openEye()
	eye.P2 = domain.Point{X: 0.45, Y: 0.495}
	eye.P6 = domain.Point{X: 0.45, Y: 0.505}
	eye.P3 = domain.Point{X: 0.55, Y: 0.495}
	eye.P5 = domain.Point{X: 0.55, Y: 0.505}
	return eye
}

func frameAt(ts int64, eye domain.EyeLandmarks) domain.LandmarkFrame {
	return domain.LandmarkFrame{
		Seq:          uint64(ts),
		Timestamp:    ts,
		LeftEye:      eye,
		RightEye:     eye,
		FaceDetected: true,
	}
}

func TestScore_AttentiveFrame(t *testing.T) {
	s := New(DefaultConfig())

	sample, err := s.Score(frameAt(1000, openEye()))
	require.NoError(t, err)

	assert.Equal(t, 100.0, sample.Score)
	assert.InDelta(t, 0.3, sample.EyeOpenness, 1e-9)
	assert.False(t, sample.Blink)
	assert.Equal(t, domain.GazeCenter, sample.GazeDirection)
	assert.InDelta(t, 0.0, sample.GazeOffset, 1e-9)
	assert.True(t, sample.Focused())
}

func TestScore_NoFace(t *testing.T) {
	s := New(DefaultConfig())

	frame := frameAt(1000, openEye())
	frame.FaceDetected = false

	_, err := s.Score(frame)
	assert.ErrorIs(t, err, domain.ErrNoLandmarks)
	assert.Equal(t, int64(1), s.Skipped())
}

func TestScore_DegenerateLandmarks(t *testing.T) {
	s := New(DefaultConfig())

	eye := openEye()
	eye.P4 = eye.P1 // coincident corners

	_, err := s.Score(frameAt(1000, eye))
	assert.ErrorIs(t, err, domain.ErrNoLandmarks)
	assert.Equal(t, int64(1), s.Skipped())
}

func TestScore_ClosedEyesPenalty(t *testing.T) {
	s := New(DefaultConfig())

	sample, err := s.Score(frameAt(1000, closedEye()))
	require.NoError(t, err)

	assert.InDelta(t, 80.0, sample.Score, 1e-9)
	assert.False(t, sample.Blink, "closing frame itself is not the blink")
}

func TestScore_BlinkOnReopen(t *testing.T) {
	s := New(DefaultConfig())

	_, err := s.Score(frameAt(1000, closedEye()))
	require.NoError(t, err)

	sample, err := s.Score(frameAt(1200, openEye()))
	require.NoError(t, err)
	assert.True(t, sample.Blink)
}

func TestScore_LongClosureNotFlaggedAsBlink(t *testing.T) {
	s := New(DefaultConfig())

	_, err := s.Score(frameAt(1000, closedEye()))
	require.NoError(t, err)

	// Eyes reopen after 2s, well past the blink duration cap.
	sample, err := s.Score(frameAt(3000, openEye()))
	require.NoError(t, err)
	assert.False(t, sample.Blink)
}

func TestScore_HeadPosePenalty(t *testing.T) {
	s := New(DefaultConfig())

	frame := frameAt(1000, openEye())
	frame.HeadYaw = 40 // twice the tolerated yaw

	sample, err := s.Score(frame)
	require.NoError(t, err)
	assert.InDelta(t, 70.0, sample.Score, 1e-9)
}

func TestScore_GazeDirections(t *testing.T) {
	tests := []struct {
		name      string
		irisX     float64
		irisY     float64
		direction string
	}{
		{"right", 0.58, 0.50, domain.GazeRight},
		{"left", 0.42, 0.50, domain.GazeLeft},
		{"up", 0.50, 0.42, domain.GazeUp},
		{"down", 0.50, 0.58, domain.GazeDown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(DefaultConfig())
			eye := openEye()
			eye.Iris = domain.Point{X: tt.irisX, Y: tt.irisY}

			sample, err := s.Score(frameAt(1000, eye))
			require.NoError(t, err)
			assert.Equal(t, tt.direction, sample.GazeDirection)
			assert.InDelta(t, 0.8, sample.GazeOffset, 1e-9)
			assert.Less(t, sample.Score, 100.0)
		})
	}
}

func TestScore_GazeWithinDeadzone(t *testing.T) {
	s := New(DefaultConfig())

	eye := openEye()
	eye.Iris = domain.Point{X: 0.51, Y: 0.50} // offset 0.1, inside deadzone

	sample, err := s.Score(frameAt(1000, eye))
	require.NoError(t, err)
	assert.Equal(t, domain.GazeCenter, sample.GazeDirection)
	assert.Equal(t, 100.0, sample.Score)
}

func TestScore_HighBlinkRatePenalty(t *testing.T) {
	s := New(DefaultConfig())

	// 30 rapid blinks inside one minute pushes the rate past the healthy band.
	ts := int64(0)
	for i := 0; i < 30; i++ {
		_, err := s.Score(frameAt(ts, closedEye()))
		require.NoError(t, err)
		ts += 100
		_, err = s.Score(frameAt(ts, openEye()))
		require.NoError(t, err)
		ts += 100
	}

	sample, err := s.Score(frameAt(ts, openEye()))
	require.NoError(t, err)
	assert.InDelta(t, 90.0, sample.Score, 1e-9)
}

func TestScore_BlinkWindowExpires(t *testing.T) {
	s := New(DefaultConfig())

	for i := 0; i < 30; i++ {
		ts := int64(i * 200)
		_, err := s.Score(frameAt(ts, closedEye()))
		require.NoError(t, err)
		_, err = s.Score(frameAt(ts+100, openEye()))
		require.NoError(t, err)
	}

	// Two minutes later all blinks have left the window.
	sample, err := s.Score(frameAt(130_000, openEye()))
	require.NoError(t, err)
	assert.Equal(t, 100.0, sample.Score)
}

func TestScore_ClampedAtZero(t *testing.T) {
	s := New(DefaultConfig())

	eye := closedEye()
	eye.Iris = domain.Point{X: 0.60, Y: 0.50}
	frame := frameAt(1000, eye)
	frame.HeadYaw = 90
	frame.HeadPitch = 80

	sample, err := s.Score(frame)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, sample.Score, 0.0)
	assert.LessOrEqual(t, sample.Score, 100.0)
	assert.True(t, sample.Distracted())
}

func TestSetConfig_PreservesBlinkState(t *testing.T) {
	s := New(DefaultConfig())

	_, err := s.Score(frameAt(1000, closedEye()))
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.GazeDeadzone = 0.3
	s.SetConfig(cfg)

	sample, err := s.Score(frameAt(1200, openEye()))
	require.NoError(t, err)
	assert.True(t, sample.Blink, "blink edge must survive config reload")
}
