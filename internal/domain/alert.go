package domain

import "time"

// Alert kinds recorded by the alert endpoint.
const (
	AlertLowAttention = "low_attention"
	AlertNoFace       = "no_face"
)

// Alert is a recorded alert trigger tied to a session. Delivery through an
// outward channel is optional and tracked by the Delivered flag.
type Alert struct {
	ID        string
	SessionID string
	Kind      string
	Message   string
	Score     float64
	Delivered bool
	CreatedAt time.Time
}

// ValidAlertKind reports whether kind is one of the recognized alert kinds.
func ValidAlertKind(kind string) bool {
	switch kind {
	case AlertLowAttention, AlertNoFace:
		return true
	}
	return false
}
