package securitylabs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/k2wGG/Check-bot/internal/config"
)

func testClient(baseURL string) *Client {
	return New(config.ProviderConfig{
		BaseURL:   baseURL,
		TimeoutMs: 2000,
		Retry:     config.ProviderRetryCfg{Count: 1, WaitMs: 1},
	}, nil)
}

func TestSignIn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/auth/signin-user" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Email != "a@b.com" || body.Password != "pw" {
			t.Errorf("body = %+v", body)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"accessToken": "tok-123"})
	}))
	defer srv.Close()

	token, err := testClient(srv.URL).SignIn(context.Background(), "a@b.com", "pw")
	if err != nil {
		t.Fatalf("SignIn error: %v", err)
	}
	if token != "tok-123" {
		t.Errorf("token = %q", token)
	}
}

func TestSignIn_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	if _, err := testClient(srv.URL).SignIn(context.Background(), "a@b.com", "pw"); err == nil {
		t.Fatal("expected error on 401")
	}
}

func TestSignIn_EmptyToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer srv.Close()

	if _, err := testClient(srv.URL).SignIn(context.Background(), "a@b.com", "pw"); err == nil {
		t.Fatal("expected error on empty access token")
	}
}

func TestUserInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/users" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("Authorization = %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":              "u-1",
			"dipTokenBalance": 41.5,
			"dipInitMineTime": "2026-08-29T10:00:00.000Z",
		})
	}))
	defer srv.Close()

	info, err := testClient(srv.URL).UserInfo(context.Background(), "tok-123")
	if err != nil {
		t.Fatalf("UserInfo error: %v", err)
	}
	if info.ID != "u-1" || info.TokenBalance != 41.5 || info.LastCheckin != "2026-08-29T10:00:00.000Z" {
		t.Errorf("info = %+v", info)
	}
}

func TestCheckIn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/users/earn/u-1" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"tokensToAward": 25.0})
	}))
	defer srv.Close()

	result, err := testClient(srv.URL).CheckIn(context.Background(), "tok-123", "u-1")
	if err != nil {
		t.Fatalf("CheckIn error: %v", err)
	}
	if result.Award != 25 {
		t.Errorf("Award = %v", result.Award)
	}
}

func TestRetry_ServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "u-1"})
	}))
	defer srv.Close()

	info, err := testClient(srv.URL).UserInfo(context.Background(), "tok")
	if err != nil {
		t.Fatalf("UserInfo error after retry: %v", err)
	}
	if info.ID != "u-1" {
		t.Errorf("info = %+v", info)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestCommonHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "application/json, text/plain, */*" {
			t.Errorf("Accept = %q", got)
		}
		if got := r.Header.Get("User-Agent"); got == "" {
			t.Error("User-Agent missing")
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "u-1"})
	}))
	defer srv.Close()

	if _, err := testClient(srv.URL).UserInfo(context.Background(), "tok"); err != nil {
		t.Fatalf("UserInfo error: %v", err)
	}
}
