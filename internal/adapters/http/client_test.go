package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/attn-labs/focusship/internal/domain"
	"github.com/attn-labs/focusship/internal/ports"
	"github.com/attn-labs/focusship/pkg/log"
)

func metadataFor(url string) ports.SendMetadata {
	return ports.SendMetadata{
		SessionID:  "sess-1",
		DeviceID:   "dev-1",
		Hostname:   "test-host",
		AuthKey:    "secret",
		ServiceURL: url,
	}
}

func TestClient_Send(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/api/v1/sessions/sess-1/samples/batch" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q, want Bearer secret", got)
		}
		if got := r.Header.Get("X-Focusship-Device-Id"); got != "dev-1" {
			t.Errorf("device header = %q, want dev-1", got)
		}

		var payload struct {
			Samples []domain.SampleMeta `json:"samples"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if len(payload.Samples) != 2 {
			t.Fatalf("samples = %d, want 2", len(payload.Samples))
		}
		if payload.Samples[0].Seq != 1 || payload.Samples[1].Seq != 2 {
			t.Errorf("sample seqs = %d/%d, want 1/2", payload.Samples[0].Seq, payload.Samples[1].Seq)
		}
		if payload.Samples[0].SessionID != "" {
			t.Error("session id duplicated in body; it is carried by the URL")
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]int{"accepted": 2})
	}))
	defer ts.Close()

	c := NewClient(http.DefaultClient, log.NewNoop())

	batch := domain.NewBatch()
	batch.Add(domain.Sample{SessionID: "sess-1", Seq: 1, Timestamp: 1000, Score: 90})
	batch.Add(domain.Sample{SessionID: "sess-1", Seq: 2, Timestamp: 1033, Score: 85})

	if err := c.Send(context.Background(), batch, metadataFor(ts.URL)); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
}

func TestClient_SendEmptyBatchIsNoop(t *testing.T) {
	called := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer ts.Close()

	c := NewClient(http.DefaultClient, log.NewNoop())
	if err := c.Send(context.Background(), domain.NewBatch(), metadataFor(ts.URL)); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if called {
		t.Error("empty batch produced a request")
	}
}

func TestClient_SendServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	c := NewClient(http.DefaultClient, log.NewNoop())
	batch := domain.NewBatch()
	batch.Add(domain.Sample{Seq: 1})

	if err := c.Send(context.Background(), batch, metadataFor(ts.URL)); err == nil {
		t.Fatal("Send() error = nil, want server error")
	}
}

func TestClient_SendConflictIsSessionClosed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"session already ended"}`, http.StatusConflict)
	}))
	defer ts.Close()

	c := NewClient(http.DefaultClient, log.NewNoop())
	batch := domain.NewBatch()
	batch.Add(domain.Sample{Seq: 1})

	err := c.Send(context.Background(), batch, metadataFor(ts.URL))
	if !errors.Is(err, domain.ErrSessionClosed) {
		t.Fatalf("Send() error = %v, want ErrSessionClosed", err)
	}
}

func TestClient_CreateSession(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/sessions" {
			t.Errorf("%s %s, want POST /api/v1/sessions", r.Method, r.URL.Path)
		}
		var payload struct {
			StartedAt time.Time `json:"started_at"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if payload.StartedAt.IsZero() {
			t.Error("started_at missing")
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": "sess-new"})
	}))
	defer ts.Close()

	c := NewClient(http.DefaultClient, log.NewNoop())
	id, err := c.CreateSession(context.Background(), time.Now(), metadataFor(ts.URL))
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if id != "sess-new" {
		t.Errorf("id = %q, want sess-new", id)
	}
}

func TestClient_EndSession(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/api/v1/sessions/sess-1" {
			t.Errorf("%s %s, want PATCH /api/v1/sessions/sess-1", r.Method, r.URL.Path)
		}
		var payload struct {
			EndedAt time.Time `json:"ended_at"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if payload.EndedAt.IsZero() {
			t.Error("ended_at missing")
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"id": "sess-1"})
	}))
	defer ts.Close()

	c := NewClient(http.DefaultClient, log.NewNoop())
	if err := c.EndSession(context.Background(), "sess-1", time.Now(), metadataFor(ts.URL)); err != nil {
		t.Fatalf("EndSession() error = %v", err)
	}
}
