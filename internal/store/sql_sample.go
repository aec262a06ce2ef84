package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/attn-labs/focusship/internal/domain"
)

const sampleColumns = `session_id, seq, ts, score, eye_openness, blink,
	gaze_direction, gaze_offset, head_yaw, head_pitch`

// sqlSampleRepo implements SampleRepo over database/sql for both drivers.
type sqlSampleRepo struct {
	db     *sql.DB
	driver string
}

func newSampleRepo(db *sql.DB, driver string) *sqlSampleRepo {
	return &sqlSampleRepo{db: db, driver: driver}
}

// InsertBatch inserts the samples and folds them into the session aggregate
// columns in one transaction, so readers never observe rows the session
// counters do not yet include.
func (r *sqlSampleRepo) InsertBatch(ctx context.Context, sessionID string, samples []domain.Sample) (int, error) {
	if len(samples) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting batch transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	session, err := scanSession(tx.QueryRowContext(ctx,
		rebind(r.driver, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`), sessionID))
	if err != nil {
		return 0, err
	}
	if !session.Open() {
		return 0, fmt.Errorf("session %s: %w", sessionID, domain.ErrSessionClosed)
	}

	insert := rebind(r.driver, `INSERT INTO samples (`+sampleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return 0, fmt.Errorf("preparing sample insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range samples {
		_, err := stmt.ExecContext(ctx,
			sessionID,
			int64(s.Seq),
			s.Timestamp,
			s.Score,
			s.EyeOpenness,
			s.Blink,
			s.GazeDirection,
			s.GazeOffset,
			s.HeadYaw,
			s.HeadPitch,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting sample seq %d: %w", s.Seq, err)
		}
	}

	session.ApplySamples(samples)
	update := rebind(r.driver, `UPDATE sessions SET
		sample_count = ?, avg_score = ?, min_score = ?, max_score = ?,
		blink_count = ?, distraction_count = ?, focused_count = ?, updated_at = ?
		WHERE id = ?`)
	if _, err := tx.ExecContext(ctx, update,
		session.SampleCount,
		session.AvgScore,
		session.MinScore,
		session.MaxScore,
		session.BlinkCount,
		session.DistractionCount,
		session.FocusedCount,
		nowUTC(),
		sessionID,
	); err != nil {
		return 0, fmt.Errorf("updating session aggregates: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing sample batch: %w", err)
	}
	committed = true
	return len(samples), nil
}

func (r *sqlSampleRepo) ListBySession(ctx context.Context, sessionID string, opts ListSamplesOptions) ([]domain.Sample, error) {
	query := `SELECT ` + sampleColumns + ` FROM samples WHERE session_id = ?`
	args := []interface{}{sessionID}
	if opts.From > 0 {
		query += ` AND ts >= ?`
		args = append(args, opts.From)
	}
	if opts.To > 0 {
		query += ` AND ts <= ?`
		args = append(args, opts.To)
	}
	query += ` ORDER BY seq LIMIT ?`
	limit := opts.Limit
	if limit <= 0 {
		limit = maxListLimit
	}
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, rebind(r.driver, query), args...)
	if err != nil {
		return nil, fmt.Errorf("listing samples: %w", err)
	}
	defer rows.Close()

	var samples []domain.Sample
	for rows.Next() {
		var s domain.Sample
		var seq int64
		err := rows.Scan(
			&s.SessionID, &seq, &s.Timestamp, &s.Score, &s.EyeOpenness,
			&s.Blink, &s.GazeDirection, &s.GazeOffset, &s.HeadYaw, &s.HeadPitch,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning sample row: %w", err)
		}
		s.Seq = uint64(seq)
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating samples: %w", err)
	}
	return samples, nil
}

func (r *sqlSampleRepo) ScoreHistogram(ctx context.Context, sessionID string) ([10]int64, error) {
	var buckets [10]int64
	// Scores land in deciles; a perfect 100 shares the top bucket.
	query := rebind(r.driver, `SELECT
		CASE WHEN score >= 100 THEN 9 ELSE CAST(FLOOR(score / 10) AS INTEGER) END AS bucket,
		COUNT(*)
		FROM samples WHERE session_id = ?
		GROUP BY bucket`)
	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return buckets, fmt.Errorf("computing score histogram: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var bucket int
		var count int64
		if err := rows.Scan(&bucket, &count); err != nil {
			return buckets, fmt.Errorf("scanning histogram row: %w", err)
		}
		if bucket >= 0 && bucket < len(buckets) {
			buckets[bucket] = count
		}
	}
	if err := rows.Err(); err != nil {
		return buckets, fmt.Errorf("iterating histogram rows: %w", err)
	}
	return buckets, nil
}
