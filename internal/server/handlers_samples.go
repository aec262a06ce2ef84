package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/attn-labs/focusship/internal/domain"
	"github.com/attn-labs/focusship/internal/store"
)

type sampleBatchRequest struct {
	Samples []domain.SampleMeta `json:"samples"`
}

type sampleBatchResponse struct {
	Accepted int `json:"accepted"`
}

func (s *Server) handleInsertSampleBatch(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req sampleBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Samples) == 0 {
		s.writeError(w, http.StatusBadRequest, "samples must not be empty")
		return
	}

	samples := make([]domain.Sample, 0, len(req.Samples))
	for i, m := range req.Samples {
		sm := m.ToSample()
		sm.SessionID = id
		if err := validateSample(sm); err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("sample %d: %v", i, err))
			return
		}
		samples = append(samples, sm)
	}

	n, err := s.store.Samples.InsertBatch(r.Context(), id, samples)
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if errors.Is(err, domain.ErrSessionClosed) {
		s.writeError(w, http.StatusConflict, "session already ended")
		return
	}
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}

	sampleBatchSize.Observe(float64(n))
	samplesInsertedTotal.Add(float64(n))
	s.writeJSON(w, http.StatusCreated, sampleBatchResponse{Accepted: n})
}

func (s *Server) handleInsertSample(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var m domain.SampleMeta
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	sm := m.ToSample()
	sm.SessionID = id
	if err := validateSample(sm); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	n, err := s.store.Samples.InsertBatch(r.Context(), id, []domain.Sample{sm})
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if errors.Is(err, domain.ErrSessionClosed) {
		s.writeError(w, http.StatusConflict, "session already ended")
		return
	}
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}

	samplesInsertedTotal.Add(float64(n))
	s.writeJSON(w, http.StatusCreated, sampleBatchResponse{Accepted: n})
}

func (s *Server) handleListSamples(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.fetchSession(w, r); !ok {
		return
	}
	id := mux.Vars(r)["id"]

	opts := store.ListSamplesOptions{}
	var err error
	if opts.From, err = queryInt64(r, "from"); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid from")
		return
	}
	if opts.To, err = queryInt64(r, "to"); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid to")
		return
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		opts.Limit = n
	}

	samples, err := s.store.Samples.ListBySession(r.Context(), id, opts)
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}

	payload := make([]domain.SampleMeta, 0, len(samples))
	for _, sm := range samples {
		payload = append(payload, sm.ToMeta())
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"samples": payload})
}

func validateSample(sm domain.Sample) error {
	if sm.Score < 0 || sm.Score > 100 {
		return fmt.Errorf("score %g out of range [0,100]", sm.Score)
	}
	if sm.Timestamp <= 0 {
		return fmt.Errorf("ts is required")
	}
	switch sm.GazeDirection {
	case domain.GazeCenter, domain.GazeLeft, domain.GazeRight, domain.GazeUp, domain.GazeDown:
	default:
		return fmt.Errorf("unknown gaze_direction %q", sm.GazeDirection)
	}
	return nil
}

func queryInt64(r *http.Request, key string) (int64, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}
