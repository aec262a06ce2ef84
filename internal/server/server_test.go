package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attn-labs/focusship/internal/domain"
	"github.com/attn-labs/focusship/internal/store"
	"github.com/attn-labs/focusship/pkg/log"
)

type recordingNotifier struct {
	alerts []*domain.Alert
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, a *domain.Alert) error {
	n.alerts = append(n.alerts, a)
	return n.err
}

func newTestServer(t *testing.T) (*Server, *recordingNotifier) {
	t.Helper()
	st, err := store.Open(store.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	notifier := &recordingNotifier{}
	cfg := DefaultConfig()
	cfg.RateLimit = 0
	return New(cfg, st, log.NewNoop(), notifier), notifier
}

func doJSON(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func createSession(t *testing.T, s *Server) sessionPayload {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/api/v1/sessions", map[string]interface{}{})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var sess sessionPayload
	decode(t, rec, &sess)
	return sess
}

func batchBody(scores ...float64) map[string]interface{} {
	samples := make([]map[string]interface{}, 0, len(scores))
	for i, score := range scores {
		samples = append(samples, map[string]interface{}{
			"seq":            i + 1,
			"ts":             1000 + i,
			"score":          score,
			"gaze_direction": "center",
		})
	}
	return map[string]interface{}{"samples": samples}
}

func TestCreateSession_DefaultsStart(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var sess sessionPayload
	decode(t, rec, &sess)
	assert.NotEmpty(t, sess.ID)
	assert.WithinDuration(t, time.Now(), sess.StartedAt, 5*time.Second)
	assert.Nil(t, sess.EndedAt)
}

func TestCreateSession_ExplicitStart(t *testing.T) {
	s, _ := newTestServer(t)

	started := time.Date(2026, 2, 1, 8, 30, 0, 0, time.UTC)
	rec := doJSON(t, s, http.MethodPost, "/api/v1/sessions", map[string]interface{}{
		"started_at": started.Format(time.RFC3339),
		"notes":      "morning block",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var sess sessionPayload
	decode(t, rec, &sess)
	assert.True(t, sess.StartedAt.Equal(started))
	assert.Equal(t, "morning block", sess.Notes)
}

func TestGetSession_NotFound(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/v1/sessions/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPatchSession_End(t *testing.T) {
	s, _ := newTestServer(t)
	sess := createSession(t, s)

	ended := sess.StartedAt.Add(2 * time.Minute)
	rec := doJSON(t, s, http.MethodPatch, "/api/v1/sessions/"+sess.ID, map[string]interface{}{
		"ended_at": ended.Format(time.RFC3339Nano),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got sessionPayload
	decode(t, rec, &got)
	require.NotNil(t, got.EndedAt)
	assert.Equal(t, int64(120000), got.DurationMS)
}

func TestPatchSession_Validation(t *testing.T) {
	s, _ := newTestServer(t)
	sess := createSession(t, s)

	rec := doJSON(t, s, http.MethodPatch, "/api/v1/sessions/"+sess.ID, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "empty patch")

	before := sess.StartedAt.Add(-time.Minute)
	rec = doJSON(t, s, http.MethodPatch, "/api/v1/sessions/"+sess.ID, map[string]interface{}{
		"ended_at": before.Format(time.RFC3339Nano),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "ended_at before started_at")

	rec = doJSON(t, s, http.MethodPatch, "/api/v1/sessions/missing", map[string]interface{}{
		"notes": "x",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListSessions(t *testing.T) {
	s, _ := newTestServer(t)
	createSession(t, s)
	createSession(t, s)

	rec := doJSON(t, s, http.MethodGet, "/api/v1/sessions?limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Sessions []sessionPayload `json:"sessions"`
	}
	decode(t, rec, &resp)
	assert.Len(t, resp.Sessions, 1)

	rec = doJSON(t, s, http.MethodGet, "/api/v1/sessions?limit=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteSession(t *testing.T) {
	s, _ := newTestServer(t)
	sess := createSession(t, s)

	rec := doJSON(t, s, http.MethodDelete, "/api/v1/sessions/"+sess.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, s, http.MethodDelete, "/api/v1/sessions/"+sess.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInsertSampleBatch(t *testing.T) {
	s, _ := newTestServer(t)
	sess := createSession(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/sessions/"+sess.ID+"/samples/batch", batchBody(90, 30, 60))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp sampleBatchResponse
	decode(t, rec, &resp)
	assert.Equal(t, 3, resp.Accepted)

	rec = doJSON(t, s, http.MethodGet, "/api/v1/sessions/"+sess.ID, nil)
	var got sessionPayload
	decode(t, rec, &got)
	assert.Equal(t, int64(3), got.SampleCount)
	assert.InDelta(t, 60.0, got.AvgScore, 1e-9)
	assert.Equal(t, int64(1), got.DistractionCount)
}

func TestInsertSampleBatch_Errors(t *testing.T) {
	s, _ := newTestServer(t)
	sess := createSession(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/sessions/missing/samples/batch", batchBody(50))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/v1/sessions/"+sess.ID+"/samples/batch",
		map[string]interface{}{"samples": []interface{}{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "empty batch")

	rec = doJSON(t, s, http.MethodPost, "/api/v1/sessions/"+sess.ID+"/samples/batch", batchBody(150))
	assert.Equal(t, http.StatusBadRequest, rec.Code, "score out of range")

	// End the session, further uploads conflict.
	ended := sess.StartedAt.Add(time.Minute)
	doJSON(t, s, http.MethodPatch, "/api/v1/sessions/"+sess.ID, map[string]interface{}{
		"ended_at": ended.Format(time.RFC3339Nano),
	})
	rec = doJSON(t, s, http.MethodPost, "/api/v1/sessions/"+sess.ID+"/samples/batch", batchBody(50))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestInsertSample_Single(t *testing.T) {
	s, _ := newTestServer(t)
	sess := createSession(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/sessions/"+sess.ID+"/samples", map[string]interface{}{
		"seq": 1, "ts": 1000, "score": 72.5, "gaze_direction": "center",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, s, http.MethodGet, "/api/v1/sessions/"+sess.ID+"/samples", nil)
	var resp struct {
		Samples []domain.SampleMeta `json:"samples"`
	}
	decode(t, rec, &resp)
	require.Len(t, resp.Samples, 1)
	assert.Equal(t, 72.5, resp.Samples[0].Score)
}

func TestListSamples_TimeRange(t *testing.T) {
	s, _ := newTestServer(t)
	sess := createSession(t, s)
	doJSON(t, s, http.MethodPost, "/api/v1/sessions/"+sess.ID+"/samples/batch", batchBody(50, 60, 70))

	rec := doJSON(t, s, http.MethodGet,
		fmt.Sprintf("/api/v1/sessions/%s/samples?from=1001&to=1002", sess.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Samples []domain.SampleMeta `json:"samples"`
	}
	decode(t, rec, &resp)
	assert.Len(t, resp.Samples, 2)

	rec = doJSON(t, s, http.MethodGet, "/api/v1/sessions/"+sess.ID+"/samples?from=-5", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionStats(t *testing.T) {
	s, _ := newTestServer(t)
	sess := createSession(t, s)
	doJSON(t, s, http.MethodPost, "/api/v1/sessions/"+sess.ID+"/samples/batch", batchBody(5, 55, 95))

	rec := doJSON(t, s, http.MethodGet, "/api/v1/sessions/"+sess.ID+"/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats sessionStatsPayload
	decode(t, rec, &stats)
	assert.Equal(t, int64(3), stats.Session.SampleCount)
	assert.Equal(t, int64(1), stats.ScoreHistogram[0])
	assert.Equal(t, int64(1), stats.ScoreHistogram[5])
	assert.Equal(t, int64(1), stats.ScoreHistogram[9])
}

func TestGlobalStats(t *testing.T) {
	s, _ := newTestServer(t)
	a := createSession(t, s)
	createSession(t, s)
	doJSON(t, s, http.MethodPost, "/api/v1/sessions/"+a.ID+"/samples/batch", batchBody(80, 40))

	rec := doJSON(t, s, http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats globalStatsPayload
	decode(t, rec, &stats)
	assert.Equal(t, int64(2), stats.SessionCount)
	assert.Equal(t, int64(2), stats.SampleCount)
	assert.InDelta(t, 60.0, stats.AvgScore, 1e-9)
}

func TestExportSession_CSV(t *testing.T) {
	s, _ := newTestServer(t)
	sess := createSession(t, s)
	doJSON(t, s, http.MethodPost, "/api/v1/sessions/"+sess.ID+"/samples/batch", batchBody(80, 40))

	rec := doJSON(t, s, http.MethodGet, "/api/v1/sessions/"+sess.ID+"/export?format=csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "session_id,"))
}

func TestExportAll_JSON(t *testing.T) {
	s, _ := newTestServer(t)
	sess := createSession(t, s)
	doJSON(t, s, http.MethodPost, "/api/v1/sessions/"+sess.ID+"/samples/batch", batchBody(80))

	rec := doJSON(t, s, http.MethodGet, "/api/v1/export?format=json", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, sess.ID, decoded[0]["id"])
}

func TestExport_BadFormat(t *testing.T) {
	s, _ := newTestServer(t)
	sess := createSession(t, s)

	rec := doJSON(t, s, http.MethodGet, "/api/v1/sessions/"+sess.ID+"/export?format=xml", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateAlert(t *testing.T) {
	s, notifier := newTestServer(t)
	sess := createSession(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/alerts", map[string]interface{}{
		"session_id": sess.ID,
		"kind":       domain.AlertLowAttention,
		"message":    "attention dropped",
		"score":      18.0,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var alert alertPayload
	decode(t, rec, &alert)
	assert.True(t, alert.Delivered)
	require.Len(t, notifier.alerts, 1)
	assert.Equal(t, sess.ID, notifier.alerts[0].SessionID)

	rec = doJSON(t, s, http.MethodGet, "/api/v1/alerts?session_id="+sess.ID, nil)
	var resp struct {
		Alerts []alertPayload `json:"alerts"`
	}
	decode(t, rec, &resp)
	require.Len(t, resp.Alerts, 1)
	assert.Equal(t, "attention dropped", resp.Alerts[0].Message)
}

func TestCreateAlert_Validation(t *testing.T) {
	s, _ := newTestServer(t)
	sess := createSession(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/alerts", map[string]interface{}{"kind": "low_attention"})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "missing session_id")

	rec = doJSON(t, s, http.MethodPost, "/api/v1/alerts", map[string]interface{}{
		"session_id": sess.ID, "kind": "klaxon",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "unknown kind")

	rec = doJSON(t, s, http.MethodPost, "/api/v1/alerts", map[string]interface{}{
		"session_id": "missing",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateAlert_DeliveryFailureKeepsAlert(t *testing.T) {
	s, notifier := newTestServer(t)
	notifier.err = fmt.Errorf("carrier unreachable")
	sess := createSession(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/alerts", map[string]interface{}{
		"session_id": sess.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var alert alertPayload
	decode(t, rec, &alert)
	assert.False(t, alert.Delivered, "failed delivery leaves the alert undelivered")
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter(t *testing.T) {
	l := newRateLimiter(2, time.Minute)
	now := time.Now()

	ok, remaining := l.allow("1.2.3.4", now)
	assert.True(t, ok)
	assert.Equal(t, 1, remaining)
	ok, _ = l.allow("1.2.3.4", now)
	assert.True(t, ok)
	ok, _ = l.allow("1.2.3.4", now)
	assert.False(t, ok, "third request in the window is rejected")

	ok, _ = l.allow("5.6.7.8", now)
	assert.True(t, ok, "budget is per client")

	ok, _ = l.allow("1.2.3.4", now.Add(2*time.Minute))
	assert.True(t, ok, "a fresh window resets the budget")
}

func TestRateLimit_Middleware(t *testing.T) {
	st, err := store.Open(store.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	cfg := DefaultConfig()
	cfg.RateLimit = 1
	s := New(cfg, st, log.NewNoop(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions", nil)
	req.RemoteAddr = "9.9.9.9:1234"
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
}
