package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/attn-labs/focusship/internal/domain"
	"github.com/attn-labs/focusship/internal/export"
	"github.com/attn-labs/focusship/internal/store"
	"github.com/attn-labs/focusship/pkg/log"
)

func (s *Server) handleExportSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.fetchSession(w, r)
	if !ok {
		return
	}
	s.export(w, r, []*domain.Session{sess})
}

func (s *Server) handleExportAll(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.store.Sessions.List(r.Context(), store.ListSessionsOptions{})
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}
	s.export(w, r, sessions)
}

func (s *Server) export(w http.ResponseWriter, r *http.Request, sessions []*domain.Session) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	stamp := time.Now().UTC().Format("20060102-150405")
	var err error
	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="focusship-%s.csv"`, stamp))
		err = export.WriteCSV(r.Context(), w, sessions, s.store.Samples)
	case "json":
		w.Header().Set("Content-Type", "application/json")
		err = export.WriteJSON(r.Context(), w, sessions, s.store.Samples)
	default:
		s.writeError(w, http.StatusBadRequest, "format must be csv or json")
		return
	}

	// Headers are gone once streaming starts; the cut-off body is the
	// client's signal.
	if err != nil {
		s.logger.Error("export failed", log.Err(err))
	}
}
