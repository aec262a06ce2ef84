package domain

import "time"

// Session is one tracked interval with aggregate attention statistics.
// Aggregates are maintained by the server as sample batches arrive.
type Session struct {
	ID        string
	StartedAt time.Time
	EndedAt   *time.Time
	Notes     string

	// DurationMS is EndedAt-StartedAt in milliseconds, zero while the
	// session is still open.
	DurationMS int64

	// Aggregates over the session's samples.
	SampleCount      int64
	AvgScore         float64
	MinScore         float64
	MaxScore         float64
	BlinkCount       int64
	DistractionCount int64
	FocusedCount     int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Open reports whether the session has not been ended yet.
func (s *Session) Open() bool {
	return s.EndedAt == nil
}

// FocusRatio returns the fraction of samples at or above the focused
// threshold, or zero for an empty session.
func (s *Session) FocusRatio() float64 {
	if s.SampleCount == 0 {
		return 0
	}
	return float64(s.FocusedCount) / float64(s.SampleCount)
}

// ApplySamples folds a batch of samples into the session aggregates.
// The running average is recomputed from the previous total, so batches
// can be applied incrementally in any number of calls.
func (s *Session) ApplySamples(samples []Sample) {
	if len(samples) == 0 {
		return
	}

	total := s.AvgScore * float64(s.SampleCount)
	for _, sm := range samples {
		total += sm.Score
		if s.SampleCount == 0 || sm.Score < s.MinScore {
			s.MinScore = sm.Score
		}
		if s.SampleCount == 0 || sm.Score > s.MaxScore {
			s.MaxScore = sm.Score
		}
		s.SampleCount++
		if sm.Blink {
			s.BlinkCount++
		}
		if sm.Distracted() {
			s.DistractionCount++
		}
		if sm.Focused() {
			s.FocusedCount++
		}
	}
	s.AvgScore = total / float64(s.SampleCount)
}

// End closes the session at the given time and fixes the duration.
func (s *Session) End(at time.Time) {
	t := at
	s.EndedAt = &t
	s.DurationMS = at.Sub(s.StartedAt).Milliseconds()
}
