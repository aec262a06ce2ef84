// Package export writes session data as CSV or JSON streams for the
// export endpoints.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/attn-labs/focusship/internal/domain"
	"github.com/attn-labs/focusship/internal/store"
)

// SampleLister supplies the samples of a session; the store's SampleRepo
// satisfies it.
type SampleLister interface {
	ListBySession(ctx context.Context, sessionID string, opts store.ListSamplesOptions) ([]domain.Sample, error)
}

var csvHeader = []string{
	"session_id", "session_started_at", "session_ended_at",
	"seq", "ts", "score", "eye_openness", "blink",
	"gaze_direction", "gaze_offset", "head_yaw", "head_pitch",
}

// WriteCSV streams one row per sample for each session, prefixed with the
// session columns. Rows flush through the csv writer, so large exports never
// materialize in memory.
func WriteCSV(ctx context.Context, w io.Writer, sessions []*domain.Session, lister SampleLister) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, sess := range sessions {
		samples, err := lister.ListBySession(ctx, sess.ID, store.ListSamplesOptions{})
		if err != nil {
			return fmt.Errorf("listing samples for %s: %w", sess.ID, err)
		}

		endedAt := ""
		if sess.EndedAt != nil {
			endedAt = sess.EndedAt.UTC().Format(time.RFC3339)
		}
		for _, sm := range samples {
			row := []string{
				sess.ID,
				sess.StartedAt.UTC().Format(time.RFC3339),
				endedAt,
				strconv.FormatUint(sm.Seq, 10),
				strconv.FormatInt(sm.Timestamp, 10),
				formatFloat(sm.Score),
				formatFloat(sm.EyeOpenness),
				strconv.FormatBool(sm.Blink),
				sm.GazeDirection,
				formatFloat(sm.GazeOffset),
				formatFloat(sm.HeadYaw),
				formatFloat(sm.HeadPitch),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("writing csv row: %w", err)
			}
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return fmt.Errorf("flushing csv: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
