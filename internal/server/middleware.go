package server

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/attn-labs/focusship/pkg/log"
)

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// requestLogging logs each request and records request metrics keyed by the
// mux route template, so path parameters do not explode the label space.
func (s *Server) requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tmpl, err := cur.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		elapsed := time.Since(start)
		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())

		s.logger.Info("request",
			log.String("method", r.Method),
			log.String("path", r.URL.Path),
			log.Int("status", rec.status),
			log.Duration("elapsed", elapsed),
		)
	})
}

// rateLimiter is a fixed-window per-client counter.
type rateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientWindow

	limit  int
	window time.Duration
}

type clientWindow struct {
	count   int
	started time.Time
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		clients: make(map[string]*clientWindow),
		limit:   limit,
		window:  window,
	}
}

// allow reports whether the client may proceed and returns the remaining
// budget in the current window.
func (l *rateLimiter) allow(client string, now time.Time) (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for ip, w := range l.clients {
		if now.Sub(w.started) > l.window {
			delete(l.clients, ip)
		}
	}

	w, ok := l.clients[client]
	if !ok || now.Sub(w.started) > l.window {
		w = &clientWindow{started: now}
		l.clients[client] = w
	}
	if w.count >= l.limit {
		return false, 0
	}
	w.count++
	return true, l.limit - w.count
}

// rateLimit rejects clients that exceed the per-window request budget.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := r.RemoteAddr
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			client = host
		}

		ok, remaining := s.limiter.allow(client, time.Now())
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(s.limiter.limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !ok {
			s.writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
