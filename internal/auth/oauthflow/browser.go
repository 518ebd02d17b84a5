package oauthflow

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/hytale-oss/gameserver/internal/hytalesession"
)

// browserTimeout bounds the wait for the loopback callback.
const browserTimeout = 5 * time.Minute

// BrowserResult is returned by Browser once the authorization URL is
// ready: the caller presents AuthorizeURL to the user, then awaits Done
// for the exchanged credentials.
type BrowserResult struct {
	// AuthorizeURL is the URL the operator should open in a browser.
	AuthorizeURL string
	// Done resolves to the exchanged OAuth bundle, or an error if the
	// callback never arrived, mismatched, or the exchange failed.
	Done <-chan BrowserOutcome
}

// BrowserOutcome is the terminal result delivered on BrowserResult.Done.
type BrowserOutcome struct {
	Bundle hytalesession.OAuthBundle
	Err    error
}

// Browser starts the browser-based authorization-code-with-PKCE flow:
// it binds a loopback listener, builds the authorization URL, and
// returns immediately. The caller must present AuthorizeURL to the user
// and then read from Done.
func Browser(ctx context.Context, cfg Config) (*BrowserResult, error) {
	state, err := randomURLSafe(32)
	if err != nil {
		return nil, err
	}
	verifier, err := randomURLSafe(64)
	if err != nil {
		return nil, err
	}
	challenge := pkceChallenge(verifier)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("oauthflow: bind loopback listener: %w", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port

	combinedState, err := encodeState(stateParam{State: state, Port: port})
	if err != nil {
		ln.Close()
		return nil, err
	}

	authorizeURL := buildAuthorizeURL(cfg, combinedState, challenge)

	outcome := make(chan BrowserOutcome, 1)
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		sp, decErr := decodeState(q.Get("state"))
		if decErr != nil || sp.State != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			select {
			case errCh <- errStateMismatch:
			default:
			}
			return
		}
		fmt.Fprintln(w, "Authorization complete. You may close this window.")
		select {
		case codeCh <- q.Get("code"):
		default:
		}
	})

	srv := &http.Server{Handler: mux}
	go func() { _ = srv.Serve(ln) }()

	deadline := time.NewTimer(browserTimeout)

	go func() {
		defer deadline.Stop()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		select {
		case code := <-codeCh:
			bundle, exchErr := cfg.Client.ExchangeOAuthCode(ctx, code, verifier, cfg.RedirectURI)
			if exchErr != nil {
				outcome <- BrowserOutcome{Err: fmt.Errorf("oauthflow: exchange code: %w", exchErr)}
				return
			}
			outcome <- BrowserOutcome{Bundle: bundle}
		case err := <-errCh:
			outcome <- BrowserOutcome{Err: err}
		case <-deadline.C:
			outcome <- BrowserOutcome{Err: errTimeout}
		case <-ctx.Done():
			outcome <- BrowserOutcome{Err: ctx.Err()}
		}
	}()

	return &BrowserResult{AuthorizeURL: authorizeURL, Done: outcome}, nil
}

func buildAuthorizeURL(cfg Config, state, challenge string) string {
	v := url.Values{
		"response_type":         {"code"},
		"client_id":             {cfg.ClientID},
		"redirect_uri":          {cfg.RedirectURI},
		"scope":                 {joinScopes(cfg.Scopes)},
		"state":                 {state},
		"code_challenge":        {challenge},
		"code_challenge_method": {"S256"},
	}
	return cfg.AuthorizeURL + "?" + v.Encode()
}
