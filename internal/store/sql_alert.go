package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/attn-labs/focusship/internal/domain"
)

// sqlAlertRepo implements AlertRepo over database/sql for both drivers.
type sqlAlertRepo struct {
	db     *sql.DB
	driver string
}

func newAlertRepo(db *sql.DB, driver string) *sqlAlertRepo {
	return &sqlAlertRepo{db: db, driver: driver}
}

func (r *sqlAlertRepo) Create(ctx context.Context, a *domain.Alert) error {
	query := rebind(r.driver, `INSERT INTO alerts (id, session_id, kind, message, score, delivered, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.SessionID, a.Kind, a.Message, a.Score, a.Delivered, formatTime(a.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting alert: %w", err)
	}
	return nil
}

func (r *sqlAlertRepo) List(ctx context.Context, sessionID string) ([]*domain.Alert, error) {
	query := `SELECT id, session_id, kind, message, score, delivered, created_at FROM alerts`
	var args []interface{}
	if sessionID != "" {
		query += ` WHERE session_id = ?`
		args = append(args, sessionID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, rebind(r.driver, query), args...)
	if err != nil {
		return nil, fmt.Errorf("listing alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*domain.Alert
	for rows.Next() {
		var a domain.Alert
		var createdAt string
		if err := rows.Scan(&a.ID, &a.SessionID, &a.Kind, &a.Message, &a.Score, &a.Delivered, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning alert row: %w", err)
		}
		if a.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parsing alert created_at: %w", err)
		}
		alerts = append(alerts, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating alerts: %w", err)
	}
	return alerts, nil
}

func (r *sqlAlertRepo) MarkDelivered(ctx context.Context, id string) error {
	query := rebind(r.driver, `UPDATE alerts SET delivered = ? WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, true, id)
	if err != nil {
		return fmt.Errorf("marking alert delivered: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("marking alert delivered: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("alert %s: %w", id, ErrNotFound)
	}
	return nil
}
