package server

import (
	"net/http"
	"time"
)

// sessionStatsPayload combines the session aggregates with the score
// distribution and the observed blink rate.
type sessionStatsPayload struct {
	Session sessionPayload `json:"session"`

	// ScoreHistogram holds per-decile sample counts, bucket 0 covering
	// scores below 10 and bucket 9 covering 90 and above.
	ScoreHistogram [10]int64 `json:"score_histogram"`

	// BlinkRatePerMin is blinks per minute over the session duration,
	// zero while no time has elapsed.
	BlinkRatePerMin float64 `json:"blink_rate_per_min"`
}

type globalStatsPayload struct {
	SessionCount    int64   `json:"session_count"`
	SampleCount     int64   `json:"sample_count"`
	AvgScore        float64 `json:"avg_score"`
	TotalDurationMS int64   `json:"total_duration_ms"`
}

func (s *Server) handleSessionStats(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.fetchSession(w, r)
	if !ok {
		return
	}

	hist, err := s.store.Samples.ScoreHistogram(r.Context(), sess.ID)
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}

	// Open sessions measure against elapsed time so far.
	duration := time.Duration(sess.DurationMS) * time.Millisecond
	if sess.Open() {
		duration = time.Since(sess.StartedAt)
	}
	var blinkRate float64
	if duration > 0 {
		blinkRate = float64(sess.BlinkCount) / duration.Minutes()
	}

	s.writeJSON(w, http.StatusOK, sessionStatsPayload{
		Session:         toSessionPayload(sess),
		ScoreHistogram:  hist,
		BlinkRatePerMin: blinkRate,
	})
}

func (s *Server) handleGlobalStats(w http.ResponseWriter, r *http.Request) {
	g, err := s.store.Sessions.GlobalStats(r.Context())
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, globalStatsPayload{
		SessionCount:    g.SessionCount,
		SampleCount:     g.SampleCount,
		AvgScore:        g.AvgScore,
		TotalDurationMS: g.TotalDurationMS,
	})
}
