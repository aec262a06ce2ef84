package export

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attn-labs/focusship/internal/domain"
	"github.com/attn-labs/focusship/internal/store"
)

type staticLister struct {
	samples map[string][]domain.Sample
}

func (l *staticLister) ListBySession(_ context.Context, sessionID string, _ store.ListSamplesOptions) ([]domain.Sample, error) {
	return l.samples[sessionID], nil
}

func testData() ([]*domain.Session, *staticLister) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	sessions := []*domain.Session{
		{ID: "s1", StartedAt: start, EndedAt: &end},
		{ID: "s2", StartedAt: start.Add(2 * time.Hour)},
	}
	lister := &staticLister{samples: map[string][]domain.Sample{
		"s1": {
			{SessionID: "s1", Seq: 1, Timestamp: 1000, Score: 88.5, EyeOpenness: 0.31, GazeDirection: domain.GazeCenter},
			{SessionID: "s1", Seq: 2, Timestamp: 2000, Score: 35, Blink: true, GazeDirection: domain.GazeLeft, GazeOffset: 0.4},
		},
		"s2": {},
	}}
	return sessions, lister
}

func TestWriteCSV(t *testing.T) {
	sessions, lister := testData()
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(context.Background(), &buf, sessions, lister))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3, "header plus one row per sample")
	assert.Equal(t, strings.Join(csvHeader, ","), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "s1,2026-03-01T09:00:00Z,2026-03-01T10:00:00Z,1,1000,88.5,"))
	assert.Contains(t, lines[2], ",true,left,")
}

func TestWriteJSON(t *testing.T) {
	sessions, lister := testData()
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(context.Background(), &buf, sessions, lister))

	var decoded []sessionExport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)

	assert.Equal(t, "s1", decoded[0].ID)
	require.Len(t, decoded[0].Samples, 2)
	assert.Empty(t, decoded[0].Samples[0].SessionID, "session id is carried by the parent object")
	assert.Equal(t, uint64(2), decoded[0].Samples[1].Seq)

	assert.Equal(t, "s2", decoded[1].ID)
	assert.Empty(t, decoded[1].Samples)
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(context.Background(), &buf, nil, &staticLister{}))
	assert.Equal(t, strings.Join(csvHeader, ",")+"\n", buf.String())
}
