package store

import (
	"context"
	"errors"

	"github.com/attn-labs/focusship/internal/domain"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("focusship: not found")

// maxListLimit caps unbounded listings so a missing limit cannot pull an
// arbitrarily large result set into memory.
const maxListLimit = 100000

// ListSessionsOptions narrows a session listing. Zero values mean no limit
// and no offset.
type ListSessionsOptions struct {
	Limit  int
	Offset int
}

// ListSamplesOptions narrows a sample listing to a time range. From and To
// are inclusive unix-millisecond bounds; zero means unbounded.
type ListSamplesOptions struct {
	From  int64
	To    int64
	Limit int
}

// GlobalStats aggregates across all sessions.
type GlobalStats struct {
	SessionCount    int64
	SampleCount     int64
	AvgScore        float64
	TotalDurationMS int64
}

type SessionRepo interface {
	Create(ctx context.Context, s *domain.Session) error
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	List(ctx context.Context, opts ListSessionsOptions) ([]*domain.Session, error)
	Update(ctx context.Context, s *domain.Session) error
	Delete(ctx context.Context, id string) error
	GlobalStats(ctx context.Context) (*GlobalStats, error)
}

type SampleRepo interface {
	// InsertBatch inserts samples under the session and folds them into
	// the session aggregates within a single transaction. It returns the
	// number of rows inserted.
	InsertBatch(ctx context.Context, sessionID string, samples []domain.Sample) (int, error)
	ListBySession(ctx context.Context, sessionID string, opts ListSamplesOptions) ([]domain.Sample, error)
	// ScoreHistogram returns per-decile sample counts for the session:
	// index 0 covers scores [0,10), index 9 covers [90,100].
	ScoreHistogram(ctx context.Context, sessionID string) ([10]int64, error)
}

type AlertRepo interface {
	Create(ctx context.Context, a *domain.Alert) error
	List(ctx context.Context, sessionID string) ([]*domain.Alert, error)
	MarkDelivered(ctx context.Context, id string) error
}
