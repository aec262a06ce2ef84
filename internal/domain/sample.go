package domain

// Gaze direction labels derived from the iris offset.
const (
	GazeCenter = "center"
	GazeLeft   = "left"
	GazeRight  = "right"
	GazeUp     = "up"
	GazeDown   = "down"
)

// Score thresholds shared by the scorer, the session aggregates, and the
// alert trigger.
const (
	// FocusedScore is the minimum score counted as focused time.
	FocusedScore = 70.0

	// DistractedScore is the score below which a sample counts as a
	// distraction event.
	DistractedScore = 40.0
)

// Sample is one scored attention measurement, derived from a LandmarkFrame
// by the scoring heuristic.
type Sample struct {
	// SessionID is the session this sample belongs to.
	SessionID string

	// Seq is the source frame sequence number, monotonic per session.
	Seq uint64

	// Timestamp is the capture time in unix milliseconds.
	Timestamp int64

	// Score is the composed attention score in [0,100].
	Score float64

	// EyeOpenness is the mean eye aspect ratio of both eyes.
	EyeOpenness float64

	// Blink reports whether this frame completed a blink.
	Blink bool

	// GazeDirection is one of the Gaze* labels.
	GazeDirection string

	// GazeOffset is the normalized iris offset from the eye center, 0..1.
	GazeOffset float64

	// HeadYaw and HeadPitch are head pose estimates in degrees.
	HeadYaw   float64
	HeadPitch float64
}

// Focused reports whether the sample counts toward focused time.
func (s Sample) Focused() bool {
	return s.Score >= FocusedScore
}

// Distracted reports whether the sample counts as a distraction event.
func (s Sample) Distracted() bool {
	return s.Score < DistractedScore
}

// SampleMeta is the JSON wire form of a Sample used by the batch upload
// endpoint and the export writers.
type SampleMeta struct {
	SessionID     string  `json:"session_id,omitempty"`
	Seq           uint64  `json:"seq"`
	TS            int64   `json:"ts"`
	Score         float64 `json:"score"`
	EyeOpenness   float64 `json:"eye_openness"`
	Blink         bool    `json:"blink"`
	GazeDirection string  `json:"gaze_direction"`
	GazeOffset    float64 `json:"gaze_offset"`
	HeadYaw       float64 `json:"head_yaw"`
	HeadPitch     float64 `json:"head_pitch"`
}

// ToSample converts SampleMeta to a Sample domain entity.
func (m SampleMeta) ToSample() Sample {
	return Sample{
		SessionID:     m.SessionID,
		Seq:           m.Seq,
		Timestamp:     m.TS,
		Score:         m.Score,
		EyeOpenness:   m.EyeOpenness,
		Blink:         m.Blink,
		GazeDirection: m.GazeDirection,
		GazeOffset:    m.GazeOffset,
		HeadYaw:       m.HeadYaw,
		HeadPitch:     m.HeadPitch,
	}
}

// ToMeta converts a Sample to SampleMeta for JSON serialization.
func (s Sample) ToMeta() SampleMeta {
	return SampleMeta{
		SessionID:     s.SessionID,
		Seq:           s.Seq,
		TS:            s.Timestamp,
		Score:         s.Score,
		EyeOpenness:   s.EyeOpenness,
		Blink:         s.Blink,
		GazeDirection: s.GazeDirection,
		GazeOffset:    s.GazeOffset,
		HeadYaw:       s.HeadYaw,
		HeadPitch:     s.HeadPitch,
	}
}
