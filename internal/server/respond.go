package server

import (
	"encoding/json"
	"net/http"

	"github.com/attn-labs/focusship/pkg/log"
)

// errorPayload is the JSON body returned for all error responses.
type errorPayload struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response", log.Err(err))
	}
}

// writeError sends a client-visible error message. Storage failures go
// through writeInternal instead so their detail stays in the logs.
func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorPayload{Error: msg})
}

func (s *Server) writeInternal(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed",
		log.String("method", r.Method),
		log.String("path", r.URL.Path),
		log.Err(err),
	)
	s.writeError(w, http.StatusInternalServerError, "internal error")
}
