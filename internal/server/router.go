package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler builds the full route table. Health and metrics sit outside the
// rate limit; everything under /api/v1 goes through it.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.requestLogging)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(s.rateLimit)

	api.HandleFunc("/sessions", s.handleCreateSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions", s.handleListSessions).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", s.handlePatchSession).Methods(http.MethodPatch)
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods(http.MethodDelete)

	api.HandleFunc("/sessions/{id}/samples/batch", s.handleInsertSampleBatch).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/samples", s.handleInsertSample).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/samples", s.handleListSamples).Methods(http.MethodGet)

	api.HandleFunc("/sessions/{id}/stats", s.handleSessionStats).Methods(http.MethodGet)
	api.HandleFunc("/stats", s.handleGlobalStats).Methods(http.MethodGet)

	api.HandleFunc("/sessions/{id}/export", s.handleExportSession).Methods(http.MethodGet)
	api.HandleFunc("/export", s.handleExportAll).Methods(http.MethodGet)

	api.HandleFunc("/alerts", s.handleCreateAlert).Methods(http.MethodPost)
	api.HandleFunc("/alerts", s.handleListAlerts).Methods(http.MethodGet)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DB.PingContext(r.Context()); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
