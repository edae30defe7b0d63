package notify

import "context"

// CheckinEvent describes one successful check-in.
type CheckinEvent struct {
	At      int64   `json:"atMs"`
	Email   string  `json:"email,omitempty"`
	Subject string  `json:"subject"`
	Balance float64 `json:"balance"`
	Award   float64 `json:"award"`
}

// Notifier collects check-in events during a cycle; CycleDone flushes
// whatever accumulated.
type Notifier interface {
	CheckinSucceeded(ctx context.Context, evt CheckinEvent)
	CycleDone(ctx context.Context)
}
