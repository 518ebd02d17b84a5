// Package oauthflow implements the two one-shot OAuth acquisition flows
// that feed credentials into an auth.Manager: a browser-based
// authorization-code flow with PKCE, and a device-code flow for
// headless operators.
package oauthflow

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hytale-oss/gameserver/internal/hytalesession"
)

// Config carries the OAuth client parameters shared by both flows.
type Config struct {
	Client      *hytalesession.Client
	AuthorizeURL string // external authorization server's /oauth2/auth
	ClientID    string
	Scopes      []string
	RedirectURI string // fixed browser redirect target
}

// stateParam is the combined CSRF-state-plus-callback-port value,
// base64url(JSON)-encoded as the OAuth `state` parameter.
type stateParam struct {
	State string `json:"state"`
	Port  int    `json:"port"`
}

func encodeState(sp stateParam) (string, error) {
	raw, err := json.Marshal(sp)
	if err != nil {
		return "", fmt.Errorf("oauthflow: encode state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func decodeState(s string) (stateParam, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return stateParam{}, fmt.Errorf("oauthflow: decode state: %w", err)
	}
	var sp stateParam
	if err := json.Unmarshal(raw, &sp); err != nil {
		return stateParam{}, fmt.Errorf("oauthflow: decode state json: %w", err)
	}
	return sp, nil
}

// randomURLSafe returns n cryptographically random bytes encoded as
// unpadded base64url, matching the CSRF state (32 bytes) and PKCE
// verifier (64 bytes) sizes used by the browser flow.
func randomURLSafe(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("oauthflow: read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// pkceChallenge computes the S256 PKCE code challenge for verifier.
func pkceChallenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// errStateMismatch is returned when the loopback callback's state
// parameter is absent or does not match the value generated for this
// flow instance.
var errStateMismatch = errors.New("oauthflow: callback state mismatch")

// errTimeout is returned when a flow's bounding deadline elapses before
// completion.
var errTimeout = errors.New("oauthflow: timed out waiting for authorization")

func joinScopes(scopes []string) string { return strings.Join(scopes, " ") }
