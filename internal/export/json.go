package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/attn-labs/focusship/internal/domain"
	"github.com/attn-labs/focusship/internal/store"
)

// sessionExport is the JSON shape of one exported session.
type sessionExport struct {
	ID        string              `json:"id"`
	StartedAt time.Time           `json:"started_at"`
	EndedAt   *time.Time          `json:"ended_at,omitempty"`
	Notes     string              `json:"notes,omitempty"`
	Samples   []domain.SampleMeta `json:"samples"`
}

// WriteJSON streams the sessions with their embedded samples as a JSON
// array, one session encoded at a time.
func WriteJSON(ctx context.Context, w io.Writer, sessions []*domain.Session, lister SampleLister) error {
	if _, err := io.WriteString(w, "["); err != nil {
		return fmt.Errorf("writing json export: %w", err)
	}

	enc := json.NewEncoder(w)
	for i, sess := range sessions {
		if i > 0 {
			if _, err := io.WriteString(w, ","); err != nil {
				return fmt.Errorf("writing json export: %w", err)
			}
		}

		samples, err := lister.ListBySession(ctx, sess.ID, store.ListSamplesOptions{})
		if err != nil {
			return fmt.Errorf("listing samples for %s: %w", sess.ID, err)
		}
		metas := make([]domain.SampleMeta, 0, len(samples))
		for _, sm := range samples {
			m := sm.ToMeta()
			// The enclosing session already names it.
			m.SessionID = ""
			metas = append(metas, m)
		}

		if err := enc.Encode(sessionExport{
			ID:        sess.ID,
			StartedAt: sess.StartedAt,
			EndedAt:   sess.EndedAt,
			Notes:     sess.Notes,
			Samples:   metas,
		}); err != nil {
			return fmt.Errorf("encoding session %s: %w", sess.ID, err)
		}
	}

	if _, err := io.WriteString(w, "]"); err != nil {
		return fmt.Errorf("writing json export: %w", err)
	}
	return nil
}
