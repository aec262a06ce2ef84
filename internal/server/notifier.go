package server

import (
	"context"

	"github.com/attn-labs/focusship/internal/domain"
	"github.com/attn-labs/focusship/pkg/log"
)

// Notifier delivers a recorded alert through an outward channel. The default
// implementation only logs; SMS or push delivery plugs in here.
type Notifier interface {
	Notify(ctx context.Context, alert *domain.Alert) error
}

// LogNotifier writes alerts to the log and nothing else.
type LogNotifier struct {
	Logger log.Logger
}

func (n *LogNotifier) Notify(_ context.Context, alert *domain.Alert) error {
	n.Logger.Warn("alert triggered",
		log.String("session_id", alert.SessionID),
		log.String("kind", alert.Kind),
		log.Float64("score", alert.Score),
		log.String("message", alert.Message),
	)
	return nil
}
