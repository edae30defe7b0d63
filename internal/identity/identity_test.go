package identity

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"
)

func buildToken(t *testing.T, claims map[string]any) string {
	t.Helper()
	payload, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("marshal claims: %v", err)
	}
	seg := base64.RawURLEncoding.EncodeToString
	return seg([]byte(`{"alg":"HS256","typ":"JWT"}`)) + "." + seg(payload) + ".sig"
}

func TestDecode_AllClaims(t *testing.T) {
	exp := time.Now().Add(2 * time.Hour).Unix()
	token := buildToken(t, map[string]any{
		"email": "a@b.com",
		"sub":   "123",
		"exp":   exp,
	})

	id, err := Decode(token)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if id.Email != "a@b.com" {
		t.Errorf("Email = %q, want %q", id.Email, "a@b.com")
	}
	if id.Subject != "123" {
		t.Errorf("Subject = %q, want %q", id.Subject, "123")
	}
	if id.ExpiresAt.Unix() != exp {
		t.Errorf("ExpiresAt = %v, want unix %d", id.ExpiresAt, exp)
	}
	if !id.Complete() {
		t.Error("Complete() = false, want true")
	}
}

func TestDecode_TwoSegments(t *testing.T) {
	if _, err := Decode("abc.def"); err == nil {
		t.Fatal("expected error for two-segment token")
	}
}

func TestDecode_NonBase64Payload(t *testing.T) {
	if _, err := Decode("head.!!not-base64!!.sig"); err == nil {
		t.Fatal("expected error for non-base64 payload")
	}
}

func TestDecode_NonJSONPayload(t *testing.T) {
	payload := base64.RawURLEncoding.EncodeToString([]byte("plain text"))
	if _, err := Decode("head." + payload + ".sig"); err == nil {
		t.Fatal("expected error for non-JSON payload")
	}
}

func TestDecode_PaddedPayload(t *testing.T) {
	payload, _ := json.Marshal(map[string]any{"email": "pad@b.com", "sub": "9"})
	padded := base64.URLEncoding.EncodeToString(payload)
	id, err := Decode("head." + padded + ".sig")
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if id.Email != "pad@b.com" || id.Subject != "9" {
		t.Errorf("got %+v", id)
	}
}

func TestDecode_MissingClaims(t *testing.T) {
	id, err := Decode(buildToken(t, map[string]any{"foo": "bar"}))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if id.Email != "" || id.Subject != "" || !id.ExpiresAt.IsZero() {
		t.Errorf("expected zero identity, got %+v", id)
	}
	if id.Complete() {
		t.Error("Complete() = true, want false")
	}
}

func TestExpired(t *testing.T) {
	now := time.Now()

	past := Identity{ExpiresAt: now.Add(-time.Minute)}
	if !past.Expired(now) {
		t.Error("token with past exp should be expired")
	}

	future := Identity{ExpiresAt: now.Add(time.Minute)}
	if future.Expired(now) {
		t.Error("token with future exp should be active")
	}

	none := Identity{}
	if none.Expired(now) {
		t.Error("token without exp should not be classified expired")
	}
}
