package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/attn-labs/focusship/internal/domain"
	"github.com/attn-labs/focusship/internal/store"
	"github.com/attn-labs/focusship/pkg/log"
)

type createAlertRequest struct {
	SessionID string  `json:"session_id"`
	Kind      string  `json:"kind"`
	Message   string  `json:"message"`
	Score     float64 `json:"score"`
}

type alertPayload struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message,omitempty"`
	Score     float64   `json:"score"`
	Delivered bool      `json:"delivered"`
	CreatedAt time.Time `json:"created_at"`
}

func toAlertPayload(a *domain.Alert) alertPayload {
	return alertPayload{
		ID:        a.ID,
		SessionID: a.SessionID,
		Kind:      a.Kind,
		Message:   a.Message,
		Score:     a.Score,
		Delivered: a.Delivered,
		CreatedAt: a.CreatedAt,
	}
}

func (s *Server) handleCreateAlert(w http.ResponseWriter, r *http.Request) {
	var req createAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.SessionID == "" {
		s.writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if req.Kind == "" {
		req.Kind = domain.AlertLowAttention
	}
	if !domain.ValidAlertKind(req.Kind) {
		s.writeError(w, http.StatusBadRequest, "unknown alert kind")
		return
	}

	if _, err := s.store.Sessions.GetByID(r.Context(), req.SessionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "session not found")
			return
		}
		s.writeInternal(w, r, err)
		return
	}

	alert := &domain.Alert{
		ID:        uuid.NewString(),
		SessionID: req.SessionID,
		Kind:      req.Kind,
		Message:   req.Message,
		Score:     req.Score,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Alerts.Create(r.Context(), alert); err != nil {
		s.writeInternal(w, r, err)
		return
	}
	alertsTotal.WithLabelValues(alert.Kind).Inc()

	// Delivery failure does not fail the request; the alert row stays
	// undelivered for a later retry.
	if err := s.notifier.Notify(r.Context(), alert); err != nil {
		s.logger.Warn("alert delivery failed", log.String("alert_id", alert.ID), log.Err(err))
	} else {
		alert.Delivered = true
		if err := s.store.Alerts.MarkDelivered(r.Context(), alert.ID); err != nil {
			s.logger.Warn("marking alert delivered", log.String("alert_id", alert.ID), log.Err(err))
		}
	}

	s.writeJSON(w, http.StatusCreated, toAlertPayload(alert))
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := s.store.Alerts.List(r.Context(), r.URL.Query().Get("session_id"))
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}
	payload := make([]alertPayload, 0, len(alerts))
	for _, a := range alerts {
		payload = append(payload, toAlertPayload(a))
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"alerts": payload})
}
