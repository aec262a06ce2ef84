package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/attn-labs/focusship/internal/domain"
	"github.com/attn-labs/focusship/internal/store"
)

// sessionPayload is the JSON shape of a session in responses.
type sessionPayload struct {
	ID               string     `json:"id"`
	StartedAt        time.Time  `json:"started_at"`
	EndedAt          *time.Time `json:"ended_at,omitempty"`
	Notes            string     `json:"notes,omitempty"`
	DurationMS       int64      `json:"duration_ms"`
	SampleCount      int64      `json:"sample_count"`
	AvgScore         float64    `json:"avg_score"`
	MinScore         float64    `json:"min_score"`
	MaxScore         float64    `json:"max_score"`
	BlinkCount       int64      `json:"blink_count"`
	DistractionCount int64      `json:"distraction_count"`
	FocusRatio       float64    `json:"focus_ratio"`
}

func toSessionPayload(s *domain.Session) sessionPayload {
	return sessionPayload{
		ID:               s.ID,
		StartedAt:        s.StartedAt,
		EndedAt:          s.EndedAt,
		Notes:            s.Notes,
		DurationMS:       s.DurationMS,
		SampleCount:      s.SampleCount,
		AvgScore:         s.AvgScore,
		MinScore:         s.MinScore,
		MaxScore:         s.MaxScore,
		BlinkCount:       s.BlinkCount,
		DistractionCount: s.DistractionCount,
		FocusRatio:       s.FocusRatio(),
	}
}

type createSessionRequest struct {
	StartedAt *time.Time `json:"started_at"`
	Notes     string     `json:"notes"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	// An empty body is fine: started_at defaults to now.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	now := time.Now().UTC()
	started := now
	if req.StartedAt != nil {
		started = req.StartedAt.UTC()
	}

	sess := &domain.Session{
		ID:        uuid.NewString(),
		StartedAt: started,
		Notes:     req.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Sessions.Create(r.Context(), sess); err != nil {
		s.writeInternal(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toSessionPayload(sess))
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	opts := store.ListSessionsOptions{}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		opts.Limit = n
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, http.StatusBadRequest, "invalid offset")
			return
		}
		opts.Offset = n
	}

	sessions, err := s.store.Sessions.List(r.Context(), opts)
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}
	payload := make([]sessionPayload, 0, len(sessions))
	for _, sess := range sessions {
		payload = append(payload, toSessionPayload(sess))
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": payload})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.fetchSession(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, toSessionPayload(sess))
}

type patchSessionRequest struct {
	EndedAt *time.Time `json:"ended_at"`
	Notes   *string    `json:"notes"`
}

func (s *Server) handlePatchSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.fetchSession(w, r)
	if !ok {
		return
	}

	var req patchSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.EndedAt == nil && req.Notes == nil {
		s.writeError(w, http.StatusBadRequest, "nothing to update")
		return
	}

	if req.EndedAt != nil {
		if req.EndedAt.Before(sess.StartedAt) {
			s.writeError(w, http.StatusBadRequest, "ended_at before started_at")
			return
		}
		sess.End(req.EndedAt.UTC())
	}
	if req.Notes != nil {
		sess.Notes = *req.Notes
	}

	if err := s.store.Sessions.Update(r.Context(), sess); err != nil {
		s.writeInternal(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toSessionPayload(sess))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	err := s.store.Sessions.Delete(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// fetchSession loads the session named in the route, writing the error
// response itself when the lookup fails.
func (s *Server) fetchSession(w http.ResponseWriter, r *http.Request) (*domain.Session, bool) {
	id := mux.Vars(r)["id"]
	sess, err := s.store.Sessions.GetByID(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	if err != nil {
		s.writeInternal(w, r, err)
		return nil, false
	}
	return sess, true
}
