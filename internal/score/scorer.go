// Package score implements the per-frame attention scoring heuristic.
//
// The scorer turns facial-landmark frames into attention samples: it computes
// the eye aspect ratio for blink detection, estimates gaze offset from the
// iris position, and composes a 0-100 score from weighted penalties for gaze
// deviation, head pose, closed eyes, and abnormal blink rate.
package score

import (
	"math"
	"time"

	"github.com/attn-labs/focusship/internal/domain"
)

// Default thresholds and penalty weights for the scoring heuristic.
const (
	DefaultBlinkThreshold = 0.21
	DefaultGazeDeadzone   = 0.15
	DefaultMaxYawDeg      = 20.0
	DefaultMaxPitchDeg    = 15.0

	// Penalty weights. The score starts at 100 and each active penalty
	// subtracts up to its weight.
	gazeWeight      = 40.0
	headPoseWeight  = 30.0
	eyeClosedWeight = 20.0
	blinkRateWeight = 10.0

	// Blink rates outside this band (blinks per minute) are penalized.
	minHealthyBlinkRate = 4.0
	maxHealthyBlinkRate = 25.0

	// A closed-eye run longer than this counts as one blink, not many.
	maxBlinkDuration = 500 * time.Millisecond
)

// Config holds the tunable thresholds of the scorer.
type Config struct {
	// BlinkThreshold is the eye aspect ratio below which eyes count as closed.
	BlinkThreshold float64

	// GazeDeadzone is the normalized iris offset tolerated before the gaze
	// penalty applies.
	GazeDeadzone float64

	// MaxYawDeg and MaxPitchDeg bound the head pose tolerated before the
	// head-pose penalty applies.
	MaxYawDeg   float64
	MaxPitchDeg float64

	// BlinkWindow is the rolling window over which the blink rate is
	// estimated.
	BlinkWindow time.Duration
}

// DefaultConfig returns a Config with the default thresholds.
func DefaultConfig() Config {
	return Config{
		BlinkThreshold: DefaultBlinkThreshold,
		GazeDeadzone:   DefaultGazeDeadzone,
		MaxYawDeg:      DefaultMaxYawDeg,
		MaxPitchDeg:    DefaultMaxPitchDeg,
		BlinkWindow:    time.Minute,
	}
}

// Scorer converts landmark frames into attention samples. It keeps the
// rolling blink window and the previous-frame eye state, so one Scorer
// serves exactly one session and is not safe for concurrent use.
type Scorer struct {
	cfg Config

	// eyesClosed tracks whether the previous frame was below the blink
	// threshold; a blink is counted on the closed-to-open edge.
	eyesClosed   bool
	closedSince  int64
	blinkTimes   []int64
	skippedCount int64
}

// New creates a Scorer with the given configuration. Zero fields fall back
// to defaults.
func New(cfg Config) *Scorer {
	d := DefaultConfig()
	if cfg.BlinkThreshold <= 0 {
		cfg.BlinkThreshold = d.BlinkThreshold
	}
	if cfg.GazeDeadzone <= 0 {
		cfg.GazeDeadzone = d.GazeDeadzone
	}
	if cfg.MaxYawDeg <= 0 {
		cfg.MaxYawDeg = d.MaxYawDeg
	}
	if cfg.MaxPitchDeg <= 0 {
		cfg.MaxPitchDeg = d.MaxPitchDeg
	}
	if cfg.BlinkWindow <= 0 {
		cfg.BlinkWindow = d.BlinkWindow
	}
	return &Scorer{cfg: cfg}
}

// SetConfig replaces the tunable thresholds. Rolling state is preserved so
// the blink rate estimate survives a config reload.
func (s *Scorer) SetConfig(cfg Config) {
	*s = Scorer{
		cfg:          New(cfg).cfg,
		eyesClosed:   s.eyesClosed,
		closedSince:  s.closedSince,
		blinkTimes:   s.blinkTimes,
		skippedCount: s.skippedCount,
	}
}

// Skipped returns the number of frames dropped for missing or degenerate
// landmarks since the scorer was created.
func (s *Scorer) Skipped() int64 {
	return s.skippedCount
}

// Score converts one frame into a sample. Frames without a usable face or
// with degenerate landmark geometry are rejected with domain.ErrNoLandmarks
// and counted as skipped.
func (s *Scorer) Score(frame domain.LandmarkFrame) (domain.Sample, error) {
	if !frame.FaceDetected {
		s.skippedCount++
		return domain.Sample{}, domain.ErrNoLandmarks
	}

	leftEAR, okL := eyeAspectRatio(frame.LeftEye)
	rightEAR, okR := eyeAspectRatio(frame.RightEye)
	if !okL || !okR {
		s.skippedCount++
		return domain.Sample{}, domain.ErrNoLandmarks
	}
	openness := (leftEAR + rightEAR) / 2

	blink := s.trackBlink(openness, frame.Timestamp)
	rate := s.blinkRate(frame.Timestamp)

	offset, direction := gaze(frame.LeftEye, frame.RightEye, s.cfg.GazeDeadzone)

	sample := domain.Sample{
		Seq:           frame.Seq,
		Timestamp:     frame.Timestamp,
		EyeOpenness:   openness,
		Blink:         blink,
		GazeDirection: direction,
		GazeOffset:    offset,
		HeadYaw:       frame.HeadYaw,
		HeadPitch:     frame.HeadPitch,
	}
	sample.Score = s.compose(openness, offset, frame.HeadYaw, frame.HeadPitch, rate)
	return sample, nil
}

// compose applies the weighted-penalty formula, clamping to [0,100].
func (s *Scorer) compose(openness, gazeOffset, yaw, pitch, blinkRate float64) float64 {
	score := 100.0

	if gazeOffset > s.cfg.GazeDeadzone {
		// Scale the penalty by how far past the deadzone the iris sits,
		// saturating at twice the deadzone.
		excess := (gazeOffset - s.cfg.GazeDeadzone) / s.cfg.GazeDeadzone
		score -= gazeWeight * clamp01(excess)
	}

	yawExcess := math.Abs(yaw) / s.cfg.MaxYawDeg
	pitchExcess := math.Abs(pitch) / s.cfg.MaxPitchDeg
	if poseExcess := math.Max(yawExcess, pitchExcess); poseExcess > 1 {
		score -= headPoseWeight * clamp01(poseExcess-1)
	}

	if openness < s.cfg.BlinkThreshold {
		score -= eyeClosedWeight
	}

	if blinkRate > maxHealthyBlinkRate || (blinkRate > 0 && blinkRate < minHealthyBlinkRate) {
		score -= blinkRateWeight
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// trackBlink updates eye-closure state and reports whether this frame
// completed a blink (closed-to-open falling edge within the blink duration).
func (s *Scorer) trackBlink(openness float64, ts int64) bool {
	closed := openness < s.cfg.BlinkThreshold

	switch {
	case closed && !s.eyesClosed:
		s.eyesClosed = true
		s.closedSince = ts
	case !closed && s.eyesClosed:
		s.eyesClosed = false
		if ts-s.closedSince <= maxBlinkDuration.Milliseconds() {
			s.blinkTimes = append(s.blinkTimes, ts)
			return true
		}
		// A long closed run still counts as a single blink for the rate
		// estimate, but the sample is not flagged.
		s.blinkTimes = append(s.blinkTimes, ts)
	}
	return false
}

// blinkRate returns blinks per minute over the rolling window ending at ts.
func (s *Scorer) blinkRate(ts int64) float64 {
	windowMS := s.cfg.BlinkWindow.Milliseconds()
	cutoff := ts - windowMS

	// Drop entries that fell out of the window.
	i := 0
	for i < len(s.blinkTimes) && s.blinkTimes[i] < cutoff {
		i++
	}
	if i > 0 {
		s.blinkTimes = s.blinkTimes[i:]
	}

	if len(s.blinkTimes) == 0 {
		return 0
	}
	return float64(len(s.blinkTimes)) / s.cfg.BlinkWindow.Minutes()
}

// eyeAspectRatio computes (|p2-p6| + |p3-p5|) / (2*|p1-p4|).
// Returns false for degenerate geometry (coincident corners).
func eyeAspectRatio(eye domain.EyeLandmarks) (float64, bool) {
	horizontal := dist(eye.P1, eye.P4)
	if horizontal < 1e-9 {
		return 0, false
	}
	vertical := dist(eye.P2, eye.P6) + dist(eye.P3, eye.P5)
	return vertical / (2 * horizontal), true
}

// gaze returns the mean normalized iris offset of both eyes and a direction
// label. The offset is the iris distance from the midpoint of the eye
// corners, normalized by half the inter-corner distance.
func gaze(left, right domain.EyeLandmarks, deadzone float64) (float64, string) {
	lx, ly, lok := irisOffset(left)
	rx, ry, rok := irisOffset(right)
	if !lok && !rok {
		return 0, domain.GazeCenter
	}
	if !lok {
		lx, ly = rx, ry
	}
	if !rok {
		rx, ry = lx, ly
	}

	dx := (lx + rx) / 2
	dy := (ly + ry) / 2
	offset := math.Hypot(dx, dy)
	if offset > 1 {
		offset = 1
	}

	if offset <= deadzone {
		return offset, domain.GazeCenter
	}
	if math.Abs(dx) >= math.Abs(dy) {
		if dx < 0 {
			return offset, domain.GazeLeft
		}
		return offset, domain.GazeRight
	}
	if dy < 0 {
		return offset, domain.GazeUp
	}
	return offset, domain.GazeDown
}

// irisOffset returns the iris displacement from the eye center as a
// fraction of half the inter-corner distance, per axis.
func irisOffset(eye domain.EyeLandmarks) (dx, dy float64, ok bool) {
	half := dist(eye.P1, eye.P4) / 2
	if half < 1e-9 {
		return 0, 0, false
	}
	cx := (eye.P1.X + eye.P4.X) / 2
	cy := (eye.P1.Y + eye.P4.Y) / 2
	return (eye.Iris.X - cx) / half, (eye.Iris.Y - cy) / half, true
}

func dist(a, b domain.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
