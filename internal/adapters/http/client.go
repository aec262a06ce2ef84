// Package http contains the backend client adapter used by the agent.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/attn-labs/focusship/internal/domain"
	"github.com/attn-labs/focusship/internal/ports"
)

const (
	sessionsEndpoint = "/api/v1/sessions"
	batchEndpoint    = "/api/v1/sessions/%s/samples/batch"
)

// Client implements ports.SampleSender and ports.SessionClient over the
// backend's JSON REST API.
type Client struct {
	client ports.HTTPClient
	logger ports.Logger
}

// NewClient creates a backend client using the given HTTP transport.
func NewClient(client ports.HTTPClient, logger ports.Logger) *Client {
	return &Client{client: client, logger: logger}
}

// Send transmits a batch of samples to the backend.
func (c *Client) Send(ctx context.Context, batch *domain.Batch, metadata ports.SendMetadata) error {
	if batch.Empty() {
		return nil
	}

	samples := make([]domain.SampleMeta, len(batch.Samples))
	for i, s := range batch.Samples {
		meta := s.ToMeta()
		meta.SessionID = "" // carried by the URL
		samples[i] = meta
	}

	payload := struct {
		Samples []domain.SampleMeta `json:"samples"`
	}{Samples: samples}

	url := metadata.ServiceURL + fmt.Sprintf(batchEndpoint, metadata.SessionID)
	var out struct {
		Accepted int `json:"accepted"`
	}
	if err := c.do(ctx, http.MethodPost, url, payload, &out, metadata); err != nil {
		return err
	}

	if out.Accepted != len(samples) {
		c.logger.Warn("backend accepted fewer samples than sent",
			ports.Int("sent", len(samples)),
			ports.Int("accepted", out.Accepted),
		)
	}
	return nil
}

// CreateSession registers a new session and returns its server-assigned ID.
func (c *Client) CreateSession(ctx context.Context, startedAt time.Time, metadata ports.SendMetadata) (string, error) {
	payload := struct {
		StartedAt time.Time `json:"started_at"`
		Notes     string    `json:"notes,omitempty"`
	}{StartedAt: startedAt}

	var out struct {
		ID string `json:"id"`
	}
	url := metadata.ServiceURL + sessionsEndpoint
	if err := c.do(ctx, http.MethodPost, url, payload, &out, metadata); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("create session: backend returned no id")
	}
	return out.ID, nil
}

// EndSession marks the session as ended at the given time.
func (c *Client) EndSession(ctx context.Context, sessionID string, endedAt time.Time, metadata ports.SendMetadata) error {
	payload := struct {
		EndedAt time.Time `json:"ended_at"`
	}{EndedAt: endedAt}

	url := metadata.ServiceURL + sessionsEndpoint + "/" + sessionID
	return c.do(ctx, http.MethodPatch, url, payload, nil, metadata)
}

// do sends one JSON request and decodes the JSON response into out (when
// out is non-nil).
func (c *Client) do(ctx context.Context, method, url string, payload, out interface{}, metadata ports.SendMetadata) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if metadata.AuthKey != "" {
		req.Header.Set("Authorization", "Bearer "+metadata.AuthKey)
	}
	req.Header.Set("X-Focusship-Device-Id", metadata.DeviceID)
	req.Header.Set("X-Agent-Hostname", metadata.Hostname)
	req.Header.Set("X-Agent-OSArch", metadata.OSArch)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		// 409 means the session was ended server-side; callers recover by
		// opening a fresh session instead of retrying.
		if resp.StatusCode == http.StatusConflict {
			return fmt.Errorf("server returned 409: %s: %w", string(respBody), domain.ErrSessionClosed)
		}
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
