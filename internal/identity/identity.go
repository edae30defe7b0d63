package identity

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidToken = errors.New("invalid token")

// Identity is what the middle segment of a bearer token carries. Fields
// absent from the payload stay zero; the signature is never checked.
type Identity struct {
	Email     string
	Subject   string
	ExpiresAt time.Time
}

func (id Identity) Expired(now time.Time) bool {
	return !id.ExpiresAt.IsZero() && now.After(id.ExpiresAt)
}

// Complete reports whether the token carried everything the check-in
// flow needs from a raw credential line.
func (id Identity) Complete() bool {
	return id.Email != "" && id.Subject != "" && !id.ExpiresAt.IsZero()
}

// Decode parses a three-segment dot-delimited token and extracts the
// email, subject and expiry claims from its payload.
func Decode(token string) (Identity, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return Identity{}, fmt.Errorf("%w: expected 3 segments, got %d", ErrInvalidToken, len(parts))
	}
	if parts[1] == "" {
		return Identity{}, fmt.Errorf("%w: empty payload segment", ErrInvalidToken)
	}

	raw, err := decodeSegment(parts[1])
	if err != nil {
		return Identity{}, fmt.Errorf("decode token payload: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var claims map[string]any
	if err := dec.Decode(&claims); err != nil {
		return Identity{}, fmt.Errorf("parse token claims: %w", err)
	}

	id := Identity{
		Email:   stringClaim(claims, "email"),
		Subject: stringClaim(claims, "sub"),
	}
	if secs, ok := expiryClaim(claims); ok {
		id.ExpiresAt = time.Unix(secs, 0).UTC()
	}
	return id, nil
}

func decodeSegment(segment string) ([]byte, error) {
	if raw, err := base64.RawURLEncoding.DecodeString(segment); err == nil {
		return raw, nil
	}
	return base64.URLEncoding.DecodeString(pad(segment))
}

func pad(s string) string {
	switch len(s) % 4 {
	case 2:
		return s + "=="
	case 3:
		return s + "="
	default:
		return s
	}
}

func stringClaim(claims map[string]any, key string) string {
	switch v := claims[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

func expiryClaim(claims map[string]any) (int64, bool) {
	switch v := claims["exp"].(type) {
	case json.Number:
		secs, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return secs, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
