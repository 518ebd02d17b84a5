// Package hytalesession is the JSON-over-HTTPS adapter to the session
// service and the external OAuth authorization server: authorization-
// grant issuance, grant-to-token exchange, JWKS, game-profile lookup,
// game-session lifecycle, and the OAuth code/device/refresh endpoints.
package hytalesession

import (
	"bytes"
	"context"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNonSuccess is returned when the session service or authorization
// server responds with a non-2xx status; the error carries the status
// code and response body for diagnostics.
var ErrNonSuccess = errors.New("hytalesession: non-2xx response")

// Config configures a Client's upstream base URLs and OAuth client
// identity. All fields except HTTPClient are required.
type Config struct {
	// SessionServiceURL is the base URL of the session service, e.g.
	// "https://session.hytale.com".
	SessionServiceURL string
	// AccountDataURL is the base URL of the account-data service used for
	// profile enumeration, e.g. "https://account-data.hytale.com".
	AccountDataURL string
	// OAuthBaseURL is the base URL of the external authorization server.
	OAuthBaseURL string
	// ClientID identifies this server to the authorization server.
	ClientID string
	// Scopes is the space-joined OAuth scope list requested in every flow.
	Scopes []string
	// HTTPClient is used for all requests; defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// Client is safe for concurrent use; it holds no mutable state beyond
// its configured HTTP client and base URLs.
type Client struct {
	cfg Config
}

// NewClient builds a Client from cfg, defaulting HTTPClient when unset.
func NewClient(cfg Config) *Client {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	return &Client{cfg: cfg}
}

// OAuthBundle is the external authorization server's token response.
type OAuthBundle struct {
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
	IDToken      string        `json:"idToken"`
	ExpiresIn    time.Duration `json:"-"`
	ExpiresInRaw int64         `json:"expiresIn"`
	Error        string        `json:"error,omitempty"`
}

// GameSession is the session service's issued game-session credential.
type GameSession struct {
	SessionToken  string    `json:"sessionToken"`
	IdentityToken string    `json:"identityToken"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

// Profile is one entry from the account-data profile list.
type Profile struct {
	UUID     string `json:"uuid"`
	Username string `json:"username"`
}

// DeviceAuthorization is the response from the device-authorization
// start endpoint.
type DeviceAuthorization struct {
	DeviceCode              string `json:"deviceCode"`
	UserCode                string `json:"userCode"`
	VerificationURI         string `json:"verificationUri"`
	VerificationURIComplete string `json:"verificationUriComplete"`
	ExpiresIn               int64  `json:"expiresIn"`
	Interval                int64  `json:"interval"`
}

// AuthGrant requests an authorization grant for identityToken against
// audience aud, authenticating with the server's current session token.
func (c *Client) AuthGrant(ctx context.Context, identityToken, aud, sessionToken string) (string, error) {
	var resp struct {
		AuthorizationGrant string `json:"authorizationGrant"`
	}
	body := map[string]string{"identityToken": identityToken, "aud": aud}
	if err := c.postJSON(ctx, c.cfg.SessionServiceURL+"/server-join/auth-grant", body, bearer(sessionToken), &resp); err != nil {
		return "", fmt.Errorf("auth-grant: %w", err)
	}
	return resp.AuthorizationGrant, nil
}

// AuthToken exchanges an authorization grant and the connection's
// certificate fingerprint for a server access token.
func (c *Client) AuthToken(ctx context.Context, authorizationGrant, x509Fingerprint, sessionToken string) (string, error) {
	var resp struct {
		AccessToken string `json:"accessToken"`
	}
	body := map[string]string{"authorizationGrant": authorizationGrant, "x509Fingerprint": x509Fingerprint}
	if err := c.postJSON(ctx, c.cfg.SessionServiceURL+"/server-join/auth-token", body, bearer(sessionToken), &resp); err != nil {
		return "", fmt.Errorf("auth-token: %w", err)
	}
	return resp.AccessToken, nil
}

// JWKS fetches the session service's published JSON Web Key Set.
func (c *Client) JWKS(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.SessionServiceURL+"/.well-known/jwks.json", nil)
	if err != nil {
		return nil, fmt.Errorf("jwks: %w", err)
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("jwks: %w", err)
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// Profiles enumerates the account's game profiles, authenticating with
// an OAuth access token.
func (c *Client) Profiles(ctx context.Context, oauthAccessToken string) ([]Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.AccountDataURL+"/my-account/get-profiles", nil)
	if err != nil {
		return nil, fmt.Errorf("get-profiles: %w", err)
	}
	req.Header.Set("Authorization", bearer(oauthAccessToken))
	resp, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("get-profiles: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		Profiles []Profile `json:"profiles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("get-profiles: decode: %w", err)
	}
	return body.Profiles, nil
}

// CreateGameSession creates a new game session for the given profile
// UUID, authenticated by an OAuth access token.
func (c *Client) CreateGameSession(ctx context.Context, uuid, oauthAccessToken string) (GameSession, error) {
	return c.newGameSession(ctx, map[string]string{"uuid": uuid}, bearer(oauthAccessToken))
}

// RefreshGameSession re-issues the session, authenticated by the
// current session token instead of a profile UUID.
func (c *Client) RefreshGameSession(ctx context.Context, sessionToken string) (GameSession, error) {
	return c.newGameSession(ctx, map[string]string{}, bearer(sessionToken))
}

func (c *Client) newGameSession(ctx context.Context, body map[string]string, authHeader string) (GameSession, error) {
	var resp struct {
		SessionToken  string `json:"sessionToken"`
		IdentityToken string `json:"identityToken"`
		ExpiresAt     string `json:"expiresAt"`
	}
	if err := c.postJSON(ctx, c.cfg.SessionServiceURL+"/game-session/new", body, authHeader, &resp); err != nil {
		return GameSession{}, fmt.Errorf("game-session/new: %w", err)
	}
	expiresAt, err := time.Parse(time.RFC3339, resp.ExpiresAt)
	if err != nil {
		return GameSession{}, fmt.Errorf("game-session/new: parse expiresAt: %w", err)
	}
	return GameSession{SessionToken: resp.SessionToken, IdentityToken: resp.IdentityToken, ExpiresAt: expiresAt}, nil
}

// TerminateGameSession ends the session identified by sessionToken.
func (c *Client) TerminateGameSession(ctx context.Context, sessionToken string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.cfg.SessionServiceURL+"/game-session", nil)
	if err != nil {
		return fmt.Errorf("game-session delete: %w", err)
	}
	req.Header.Set("Authorization", bearer(sessionToken))
	resp, err := c.do(req)
	if err != nil {
		return fmt.Errorf("game-session delete: %w", err)
	}
	defer resp.Body.Close()
	return nil
}

// ExchangeOAuthCode exchanges an authorization code plus PKCE verifier
// for an OAuthBundle at the external authorization server.
func (c *Client) ExchangeOAuthCode(ctx context.Context, code, verifier, redirectURI string) (OAuthBundle, error) {
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {redirectURI},
		"client_id":     {c.cfg.ClientID},
		"code_verifier": {verifier},
	}
	return c.postForm(ctx, c.cfg.OAuthBaseURL+"/oauth2/token", form)
}

// RefreshOAuthToken exchanges a refresh token for a fresh OAuthBundle.
func (c *Client) RefreshOAuthToken(ctx context.Context, refreshToken string) (OAuthBundle, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
		"client_id":     {c.cfg.ClientID},
	}
	return c.postForm(ctx, c.cfg.OAuthBaseURL+"/oauth2/token", form)
}

// DeviceAuthorizationGrantType is the grant-type URN used to poll the
// token endpoint during the device flow.
const DeviceAuthorizationGrantType = "urn:ietf:params:oauth:grant-type:device_code"

// StartDeviceAuthorization requests a device/user code pair.
func (c *Client) StartDeviceAuthorization(ctx context.Context) (DeviceAuthorization, error) {
	form := url.Values{
		"client_id": {c.cfg.ClientID},
		"scope":     {strings.Join(c.cfg.Scopes, " ")},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.OAuthBaseURL+"/oauth2/device/auth", strings.NewReader(form.Encode()))
	if err != nil {
		return DeviceAuthorization{}, fmt.Errorf("device/auth: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.do(req)
	if err != nil {
		return DeviceAuthorization{}, fmt.Errorf("device/auth: %w", err)
	}
	defer resp.Body.Close()

	var da DeviceAuthorization
	if err := json.NewDecoder(resp.Body).Decode(&da); err != nil {
		return DeviceAuthorization{}, fmt.Errorf("device/auth: decode: %w", err)
	}
	return da, nil
}

// DevicePollError is the token endpoint's error code while a device
// flow is still pending ("authorization_pending", "slow_down") or has
// failed outright.
type DevicePollError struct {
	Code string
}

func (e *DevicePollError) Error() string { return "hytalesession: device poll: " + e.Code }

// PollDeviceToken makes a single poll of the token endpoint for the
// device flow. The caller drives the pending/slow_down retry loop; see
// internal/auth/oauthflow.
func (c *Client) PollDeviceToken(ctx context.Context, deviceCode string) (OAuthBundle, error) {
	form := url.Values{
		"grant_type":  {DeviceAuthorizationGrantType},
		"device_code": {deviceCode},
		"client_id":   {c.cfg.ClientID},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.OAuthBaseURL+"/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return OAuthBundle{}, fmt.Errorf("device token poll: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return OAuthBundle{}, fmt.Errorf("device token poll: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return OAuthBundle{}, fmt.Errorf("device token poll: read body: %w", err)
	}

	var bundle oauthBundleWire
	if err := json.Unmarshal(raw, &bundle); err != nil {
		return OAuthBundle{}, fmt.Errorf("device token poll: decode: %w", err)
	}
	if bundle.Error != "" {
		return OAuthBundle{}, &DevicePollError{Code: bundle.Error}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return OAuthBundle{}, fmt.Errorf("%w: %d: %s", ErrNonSuccess, resp.StatusCode, string(raw))
	}
	return bundle.toOAuthBundle(), nil
}

type oauthBundleWire struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	IDToken      string `json:"id_token"`
	ExpiresIn    int64  `json:"expires_in"`
	Error        string `json:"error"`
}

func (w oauthBundleWire) toOAuthBundle() OAuthBundle {
	return OAuthBundle{
		AccessToken:  w.AccessToken,
		RefreshToken: w.RefreshToken,
		IDToken:      w.IDToken,
		ExpiresIn:    time.Duration(w.ExpiresIn) * time.Second,
		ExpiresInRaw: w.ExpiresIn,
	}
}

func (c *Client) postForm(ctx context.Context, fullURL string, form url.Values) (OAuthBundle, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, strings.NewReader(form.Encode()))
	if err != nil {
		return OAuthBundle{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.do(req)
	if err != nil {
		return OAuthBundle{}, err
	}
	defer resp.Body.Close()

	var bundle oauthBundleWire
	if err := json.NewDecoder(resp.Body).Decode(&bundle); err != nil {
		return OAuthBundle{}, fmt.Errorf("decode: %w", err)
	}
	return bundle.toOAuthBundle(), nil
}

func (c *Client) postJSON(ctx context.Context, fullURL string, body any, authHeader string, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// do executes req and translates a non-2xx status into ErrNonSuccess,
// carrying the status and body for diagnostics.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: %d: %s", ErrNonSuccess, resp.StatusCode, string(raw))
	}
	return resp, nil
}

func bearer(token string) string { return "Bearer " + token }

// Fingerprint computes the server-join certificate fingerprint expected
// by the session service: unpadded URL-safe base64 of the SHA-256
// digest of the leaf certificate's DER encoding.
func Fingerprint(cert *x509.Certificate) string {
	sum := sha256.Sum256(cert.Raw)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
