package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/attn-labs/focusship/internal/domain"
)

const sessionColumns = `id, started_at, ended_at, notes, duration_ms,
	sample_count, avg_score, min_score, max_score,
	blink_count, distraction_count, focused_count, created_at, updated_at`

// sqlSessionRepo implements SessionRepo over database/sql for both drivers.
type sqlSessionRepo struct {
	db     *sql.DB
	driver string
}

func newSessionRepo(db *sql.DB, driver string) *sqlSessionRepo {
	return &sqlSessionRepo{db: db, driver: driver}
}

func (r *sqlSessionRepo) Create(ctx context.Context, s *domain.Session) error {
	query := rebind(r.driver, `INSERT INTO sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		formatTime(s.StartedAt),
		nullableTimeToString(s.EndedAt),
		s.Notes,
		s.DurationMS,
		s.SampleCount,
		s.AvgScore,
		s.MinScore,
		s.MaxScore,
		s.BlinkCount,
		s.DistractionCount,
		s.FocusedCount,
		formatTime(s.CreatedAt),
		formatTime(s.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

func (r *sqlSessionRepo) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	query := rebind(r.driver, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`)
	return scanSession(r.db.QueryRowContext(ctx, query, id))
}

func (r *sqlSessionRepo) List(ctx context.Context, opts ListSessionsOptions) ([]*domain.Session, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = maxListLimit
	}
	query := rebind(r.driver, `SELECT `+sessionColumns+` FROM sessions
		ORDER BY started_at DESC LIMIT ? OFFSET ?`)
	rows, err := r.db.QueryContext(ctx, query, limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}
	return sessions, nil
}

func (r *sqlSessionRepo) Update(ctx context.Context, s *domain.Session) error {
	s.UpdatedAt = time.Now().UTC()
	query := rebind(r.driver, `UPDATE sessions SET
		started_at = ?, ended_at = ?, notes = ?, duration_ms = ?,
		sample_count = ?, avg_score = ?, min_score = ?, max_score = ?,
		blink_count = ?, distraction_count = ?, focused_count = ?, updated_at = ?
		WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query,
		formatTime(s.StartedAt),
		nullableTimeToString(s.EndedAt),
		s.Notes,
		s.DurationMS,
		s.SampleCount,
		s.AvgScore,
		s.MinScore,
		s.MaxScore,
		s.BlinkCount,
		s.DistractionCount,
		s.FocusedCount,
		formatTime(s.UpdatedAt),
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("updating session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating session: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("session %s: %w", s.ID, ErrNotFound)
	}
	return nil
}

func (r *sqlSessionRepo) Delete(ctx context.Context, id string) error {
	query := rebind(r.driver, `DELETE FROM sessions WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *sqlSessionRepo) GlobalStats(ctx context.Context) (*GlobalStats, error) {
	query := `SELECT COUNT(*),
		COALESCE(SUM(sample_count), 0),
		COALESCE(SUM(avg_score * sample_count), 0),
		COALESCE(SUM(duration_ms), 0)
		FROM sessions`
	var g GlobalStats
	var scoreTotal float64
	err := r.db.QueryRowContext(ctx, query).Scan(
		&g.SessionCount, &g.SampleCount, &scoreTotal, &g.TotalDurationMS,
	)
	if err != nil {
		return nil, fmt.Errorf("computing global stats: %w", err)
	}
	if g.SampleCount > 0 {
		g.AvgScore = scoreTotal / float64(g.SampleCount)
	}
	return &g, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var s domain.Session
	var startedAt, createdAt, updatedAt string
	var endedAt sql.NullString

	err := row.Scan(
		&s.ID, &startedAt, &endedAt, &s.Notes, &s.DurationMS,
		&s.SampleCount, &s.AvgScore, &s.MinScore, &s.MaxScore,
		&s.BlinkCount, &s.DistractionCount, &s.FocusedCount,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("session: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning session: %w", err)
	}

	if s.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, fmt.Errorf("parsing started_at: %w", err)
	}
	s.EndedAt = parseNullableTime(endedAt)
	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &s, nil
}
