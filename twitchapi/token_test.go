package twitchapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// rewriteTransport redirects api/id.twitch.tv requests to a test server.
type rewriteTransport struct {
	host string
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = "http"
	req.URL.Host = strings.TrimPrefix(t.host, "http://")
	return http.DefaultTransport.RoundTrip(req)
}

func tokenServer(t *testing.T, calls *int, token string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		if r.Method != http.MethodPost {
			t.Errorf("token exchange method = %s, want POST", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "client_credentials" {
			t.Errorf("grant_type = %q, want client_credentials", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": token,
			"expires_in":   3600,
			"token_type":   "bearer",
		})
	}))
}

func TestTokenSourceCachesToken(t *testing.T) {
	calls := 0
	server := tokenServer(t, &calls, "app-token-1")
	defer server.Close()

	ts := &TokenSource{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		HTTPClient:   &http.Client{Transport: &rewriteTransport{host: server.URL}},
	}

	ctx := context.Background()
	tok, err := ts.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if tok != "app-token-1" {
		t.Errorf("Get() = %q, want app-token-1", tok)
	}
	if _, err := ts.Get(ctx); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 exchange (second call cached), got %d", calls)
	}
}

func TestTokenSourceRefreshesNearExpiry(t *testing.T) {
	calls := 0
	server := tokenServer(t, &calls, "app-token-2")
	defer server.Close()

	ts := &TokenSource{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		HTTPClient:   &http.Client{Transport: &rewriteTransport{host: server.URL}},
	}
	// Inside the 60s buffer: must be treated as stale.
	ts.SetToken("stale", time.Now().Add(30*time.Second))

	tok, err := ts.Get(context.Background())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if tok != "app-token-2" {
		t.Errorf("Get() = %q, want refreshed app-token-2", tok)
	}
	if calls != 1 {
		t.Errorf("expected 1 exchange, got %d", calls)
	}
}

func TestTokenSourceMissingCredentials(t *testing.T) {
	ts := &TokenSource{}
	_, err := ts.Get(context.Background())
	if err == nil || !strings.Contains(err.Error(), "missing client id/secret") {
		t.Errorf("Get() error = %v, want missing-credentials error", err)
	}
}

func TestTokenSourceServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid_client"}`))
	}))
	defer server.Close()

	ts := &TokenSource{
		ClientID:     "bad-client",
		ClientSecret: "bad-secret",
		HTTPClient:   &http.Client{Transport: &rewriteTransport{host: server.URL}},
	}
	if _, err := ts.Get(context.Background()); err == nil {
		t.Error("Get() with 401 response should return error")
	}
}

func TestTokenSourceEmptyToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "",
			"expires_in":   3600,
		})
	}))
	defer server.Close()

	ts := &TokenSource{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		HTTPClient:   &http.Client{Transport: &rewriteTransport{host: server.URL}},
	}
	_, err := ts.Get(context.Background())
	if err == nil || !strings.Contains(err.Error(), "empty access_token") {
		t.Errorf("Get() error = %v, want empty access_token error", err)
	}
}
