package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/attn-labs/focusship/internal/store"
	"github.com/attn-labs/focusship/pkg/log"
)

// Server is the focusship REST backend.
type Server struct {
	cfg      Config
	store    *store.Store
	logger   log.Logger
	notifier Notifier
	limiter  *rateLimiter

	httpServer *http.Server
}

// New wires a Server over an open store. A nil notifier falls back to
// log-only alert delivery.
func New(cfg Config, st *store.Store, logger log.Logger, notifier Notifier) *Server {
	if logger == nil {
		logger = log.NewNoop()
	}
	if notifier == nil {
		notifier = &LogNotifier{Logger: logger}
	}

	s := &Server{
		cfg:      cfg,
		store:    st,
		logger:   logger,
		notifier: notifier,
	}
	if cfg.RateLimit > 0 {
		s.limiter = newRateLimiter(cfg.RateLimit, cfg.RateLimitWindow)
	}
	s.httpServer = &http.Server{
		Addr:    cfg.Addr,
		Handler: s.Handler(),
	}
	return s
}

// Run serves until ctx is cancelled, then shuts down gracefully within the
// configured timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", log.String("addr", s.cfg.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
