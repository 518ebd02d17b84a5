package hytalesession_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hytale-oss/gameserver/internal/hytalesession"
)

func TestClientAuthGrantAndAuthToken(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/server-join/auth-grant", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer session-tok" {
			t.Errorf("Authorization = %q", got)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["identityToken"] != "identity" || body["aud"] != "aud-1" {
			t.Errorf("unexpected body: %+v", body)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"authorizationGrant": "grant-xyz"})
	})
	mux.HandleFunc("/server-join/auth-token", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"accessToken": "access-xyz"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := hytalesession.NewClient(hytalesession.Config{SessionServiceURL: srv.URL, HTTPClient: srv.Client()})

	grant, err := c.AuthGrant(context.Background(), "identity", "aud-1", "session-tok")
	if err != nil {
		t.Fatalf("AuthGrant: %v", err)
	}
	if grant != "grant-xyz" {
		t.Fatalf("grant = %q", grant)
	}

	token, err := c.AuthToken(context.Background(), grant, "fingerprint", "session-tok")
	if err != nil {
		t.Fatalf("AuthToken: %v", err)
	}
	if token != "access-xyz" {
		t.Fatalf("token = %q", token)
	}
}

func TestClientGameSessionLifecycle(t *testing.T) {
	t.Parallel()

	expiresAt := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)

	mux := http.NewServeMux()
	mux.HandleFunc("/game-session/new", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"sessionToken":  "stok",
			"identityToken": "itok",
			"expiresAt":     expiresAt,
		})
	})
	mux.HandleFunc("/game-session", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s, want DELETE", r.Method)
		}
		w.WriteHeader(http.StatusNoContent)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := hytalesession.NewClient(hytalesession.Config{SessionServiceURL: srv.URL, HTTPClient: srv.Client()})

	sess, err := c.CreateGameSession(context.Background(), "profile-uuid", "oauth-access")
	if err != nil {
		t.Fatalf("CreateGameSession: %v", err)
	}
	if sess.SessionToken != "stok" || sess.IdentityToken != "itok" {
		t.Fatalf("unexpected session: %+v", sess)
	}

	refreshed, err := c.RefreshGameSession(context.Background(), sess.SessionToken)
	if err != nil {
		t.Fatalf("RefreshGameSession: %v", err)
	}
	if refreshed.SessionToken != "stok" {
		t.Fatalf("unexpected refreshed session: %+v", refreshed)
	}

	if err := c.TerminateGameSession(context.Background(), sess.SessionToken); err != nil {
		t.Fatalf("TerminateGameSession: %v", err)
	}
}

func TestClientOAuthCodeExchange(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm: %v", err)
		}
		if r.PostForm.Get("grant_type") != "authorization_code" {
			t.Errorf("grant_type = %q", r.PostForm.Get("grant_type"))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "acc",
			"refresh_token": "ref",
			"id_token":      "idt",
			"expires_in":    3600,
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := hytalesession.NewClient(hytalesession.Config{OAuthBaseURL: srv.URL, ClientID: "client-1", HTTPClient: srv.Client()})

	bundle, err := c.ExchangeOAuthCode(context.Background(), "code", "verifier", "http://127.0.0.1/callback")
	if err != nil {
		t.Fatalf("ExchangeOAuthCode: %v", err)
	}
	if bundle.AccessToken != "acc" || bundle.RefreshToken != "ref" {
		t.Fatalf("unexpected bundle: %+v", bundle)
	}
	if bundle.ExpiresIn != time.Hour {
		t.Fatalf("ExpiresIn = %v, want 1h", bundle.ExpiresIn)
	}
}

func TestClientDevicePollPending(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/device/auth", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"deviceCode":      "dc",
			"userCode":        "UC",
			"verificationUri": "http://example.invalid/verify",
			"expiresIn":       600,
			"interval":        5,
		})
	})
	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "authorization_pending"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := hytalesession.NewClient(hytalesession.Config{OAuthBaseURL: srv.URL, ClientID: "client-1", HTTPClient: srv.Client()})

	da, err := c.StartDeviceAuthorization(context.Background())
	if err != nil {
		t.Fatalf("StartDeviceAuthorization: %v", err)
	}
	if da.DeviceCode != "dc" || da.UserCode != "UC" {
		t.Fatalf("unexpected device authorization: %+v", da)
	}

	_, err = c.PollDeviceToken(context.Background(), da.DeviceCode)
	if err == nil {
		t.Fatal("expected pending error")
	}
	var pollErr *hytalesession.DevicePollError
	if !errors.As(err, &pollErr) || pollErr.Code != "authorization_pending" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClientNonSuccessStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer srv.Close()

	c := hytalesession.NewClient(hytalesession.Config{SessionServiceURL: srv.URL, HTTPClient: srv.Client()})

	if _, err := c.JWKS(context.Background()); err == nil {
		t.Fatal("expected error for 500 response")
	}
}
