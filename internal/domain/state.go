package domain

import "time"

// State represents persistent agent state for crash recovery.
// This state is saved to disk after each successful batch send.
type State struct {
	// SessionID is the server-assigned session the agent is feeding.
	SessionID string `json:"session_id"`

	// FeedPath is the landmark feed file currently being read.
	FeedPath string `json:"feed_path"`

	// FeedOffset is the byte position of the next unread feed line.
	FeedOffset int64 `json:"feed_offset"`

	// LastSeq is the last frame sequence number that was successfully sent.
	LastSeq uint64 `json:"last_seq"`

	// LastCommitAt is the timestamp of the last successful send.
	LastCommitAt time.Time `json:"last_commit_at"`

	// LastSendAt is the timestamp of the last send attempt.
	LastSendAt time.Time `json:"last_send_at"`
}

// IsEmpty returns true if the state has not been initialized.
func (s State) IsEmpty() bool {
	return s.FeedPath == "" && s.SessionID == ""
}

// UpdateAfterSend updates the state after a successful batch send.
func (s *State) UpdateAfterSend(offsetAdvance int64, lastSeq uint64) {
	s.FeedOffset += offsetAdvance
	s.LastSeq = lastSeq
	now := time.Now()
	s.LastCommitAt = now
	s.LastSendAt = now
}

// UpdatePosition updates the feed position without a send.
func (s *State) UpdatePosition(feedPath string, feedOffset int64) {
	s.FeedPath = feedPath
	s.FeedOffset = feedOffset
}
