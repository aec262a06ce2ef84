package domain

// Point is a 2D landmark coordinate normalized to the video frame
// (0..1 on both axes).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// EyeLandmarks holds the six-point eye contour used by the eye-aspect-ratio
// formula, plus the iris center. P1 and P4 are the horizontal corners,
// P2/P3 the upper lid, P6/P5 the lower lid.
type EyeLandmarks struct {
	P1   Point `json:"p1"`
	P2   Point `json:"p2"`
	P3   Point `json:"p3"`
	P4   Point `json:"p4"`
	P5   Point `json:"p5"`
	P6   Point `json:"p6"`
	Iris Point `json:"iris"`
}

// LandmarkFrame is one observation emitted by the external face-landmark
// inference process. It is the atomic unit of input read from the feed.
type LandmarkFrame struct {
	// Seq is the monotonically increasing frame number assigned by the
	// inference process.
	Seq uint64

	// Timestamp is the capture time in unix milliseconds.
	Timestamp int64

	// LeftEye and RightEye are the per-eye landmark sets.
	LeftEye  EyeLandmarks
	RightEye EyeLandmarks

	// HeadYaw and HeadPitch are head pose estimates in degrees.
	// Positive yaw is a turn to the subject's left, positive pitch
	// is looking up.
	HeadYaw   float64
	HeadPitch float64

	// FaceDetected is false when the inference process ran but found no
	// face. Such frames carry no usable landmarks.
	FaceDetected bool
}

// FrameMeta is the NDJSON wire format written by the inference process,
// one object per line in the feed file.
type FrameMeta struct {
	Seq   uint64       `json:"seq"`
	TS    int64        `json:"ts"`
	Left  EyeLandmarks `json:"left_eye"`
	Right EyeLandmarks `json:"right_eye"`
	Yaw   float64      `json:"yaw"`
	Pitch float64      `json:"pitch"`
	Face  bool         `json:"face"`
}

// ToFrame converts FrameMeta to a LandmarkFrame domain entity.
func (m FrameMeta) ToFrame() LandmarkFrame {
	return LandmarkFrame{
		Seq:          m.Seq,
		Timestamp:    m.TS,
		LeftEye:      m.Left,
		RightEye:     m.Right,
		HeadYaw:      m.Yaw,
		HeadPitch:    m.Pitch,
		FaceDetected: m.Face,
	}
}

// ToMeta converts a LandmarkFrame to FrameMeta for JSON serialization.
func (f LandmarkFrame) ToMeta() FrameMeta {
	return FrameMeta{
		Seq:   f.Seq,
		TS:    f.Timestamp,
		Left:  f.LeftEye,
		Right: f.RightEye,
		Yaw:   f.HeadYaw,
		Pitch: f.HeadPitch,
		Face:  f.FaceDetected,
	}
}
