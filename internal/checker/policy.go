package checker

import "time"

// Cooldown the server enforces between check-ins.
const checkinCooldown = 24 * time.Hour

// Timestamp format the status endpoint uses for dipInitMineTime.
const checkinTimeLayout = "2006-01-02T15:04:05.000Z"

// Decision is the outcome of the cooldown policy for one account.
type Decision struct {
	Due       bool
	Next      time.Time
	Remaining time.Duration
}

// Evaluate decides whether a check-in is due. An absent or unreadable
// last-check-in timestamp counts as "never checked in" and is due
// immediately.
func Evaluate(lastCheckin string, now time.Time) Decision {
	last, ok := parseLastCheckin(lastCheckin)
	if !ok {
		return Decision{Due: true}
	}
	next := last.Add(checkinCooldown)
	if now.Before(next) {
		return Decision{Due: false, Next: next, Remaining: next.Sub(now)}
	}
	return Decision{Due: true, Next: next}
}

func parseLastCheckin(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(checkinTimeLayout, raw); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}
