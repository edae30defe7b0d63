package model

import "time"

// Credential is one classified line of the accounts file: either a raw
// bearer token or an email/password pair used to obtain one.
type Credential struct {
	Token    string `json:"token,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"-"`
}

func (c Credential) IsToken() bool { return c.Token != "" }

// Check-in outcome statuses recorded per account per cycle.
const (
	StatusCheckedIn     = "checked_in"
	StatusCooldown      = "cooldown"
	StatusExpired       = "expired"
	StatusInvalid       = "invalid"
	StatusSignInFailed  = "signin_failed"
	StatusStatusFailed  = "status_failed"
	StatusCheckinFailed = "checkin_failed"
)

type CheckinRecord struct {
	ID      string    `json:"id"`
	Email   string    `json:"email,omitempty"`
	Subject string    `json:"subject,omitempty"`
	Balance float64   `json:"balance"`
	Award   float64   `json:"award"`
	Status  string    `json:"status"`
	At      time.Time `json:"at"`
}
