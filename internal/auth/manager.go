// Package auth implements the credential manager: a single long-lived
// task that owns the server's current OAuth bundle and game session,
// refreshes each on its own deadline, and derives a session from a
// fresh OAuth bundle when none exists yet.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/hytale-oss/gameserver/internal/hytalesession"
	"github.com/hytale-oss/gameserver/internal/metrics"
)

// mailboxSize matches the teacher's notification-channel sizing: small,
// bounded, non-blocking for the rare external credential delivery.
const mailboxSize = 8

// minRefreshDelay is the floor applied to both deadlines so a
// zero or near-zero expiry never causes a refresh storm.
const minRefreshDelay = 60 * time.Second

// OAuthBundle is the immutable external-authorization-server token set
// held in a Snapshot.
type OAuthBundle = hytalesession.OAuthBundle

// GameSession is the immutable session-service credential held in a
// Snapshot.
type GameSession = hytalesession.GameSession

// Snapshot is the immutable credential pair published by the manager.
// Readers always observe a whole snapshot, never a partially updated
// one: a session's identity token is never paired with a stale OAuth
// bundle it wasn't derived from.
type Snapshot struct {
	OAuth   *OAuthBundle
	Session *GameSession
}

// Manager owns the mutable credential slots and runs the refresh event
// loop. Zero value is not usable; construct with NewManager.
type Manager struct {
	client *hytalesession.Client
	logger *slog.Logger

	mailbox chan Snapshot
	current atomic.Pointer[Snapshot]

	// audience is the per-server UUID bound into session creation; held
	// here only for the derive-session-from-profile step.
	audience string

	metrics *metrics.Collector
}

// Option customizes a Manager at construction.
type Option func(*Manager)

// WithMetrics records refresh outcomes against collector. Nil-safe: a
// Manager constructed without this option simply records nothing.
func WithMetrics(collector *metrics.Collector) Option {
	return func(m *Manager) { m.metrics = collector }
}

// NewManager constructs a Manager. Run must be called to start the
// refresh loop before Snapshot reflects anything beyond the empty
// initial value.
func NewManager(client *hytalesession.Client, audience string, logger *slog.Logger, opts ...Option) *Manager {
	m := &Manager{
		client:   client,
		logger:   logger,
		mailbox:  make(chan Snapshot, mailboxSize),
		audience: audience,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.current.Store(&Snapshot{})
	return m
}

// Snapshot returns the current immutable credential snapshot. Safe to
// call from any goroutine without synchronization.
func (m *Manager) Snapshot() Snapshot {
	return *m.current.Load()
}

// Deliver hands externally acquired credentials (from an OAuth flow) to
// the manager's mailbox. It blocks only if the mailbox is full, which
// would indicate a stuck event loop.
func (m *Manager) Deliver(ctx context.Context, snap Snapshot) error {
	select {
	case m.mailbox <- snap:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes the credential refresh event loop until ctx is
// cancelled. It is the sole mutator of the credential slots; all
// updates are published as a fresh immutable Snapshot.
func (m *Manager) Run(ctx context.Context) error {
	var oauth *OAuthBundle
	var session *GameSession

	oauthTimer := time.NewTimer(time.Duration(1<<63 - 1))
	defer drainTimer(oauthTimer)
	sessionTimer := time.NewTimer(time.Duration(1<<63 - 1))
	defer drainTimer(sessionTimer)
	stopTimer(oauthTimer)
	stopTimer(sessionTimer)

	for {
		select {
		case <-ctx.Done():
			return nil

		case snap := <-m.mailbox:
			oauth, session = snap.OAuth, snap.Session
			m.rearmOAuthTimer(oauthTimer, oauth)
			m.rearmSessionTimer(sessionTimer, session)
			m.afterTransition(ctx, &oauth, &session, oauthTimer, sessionTimer)

		case <-oauthTimer.C:
			m.refreshOAuth(ctx, &oauth, &session)
			m.rearmOAuthTimer(oauthTimer, oauth)
			m.afterTransition(ctx, &oauth, &session, oauthTimer, sessionTimer)

		case <-sessionTimer.C:
			m.refreshSession(ctx, session, &session)
			m.rearmSessionTimer(sessionTimer, session)
			m.afterTransition(ctx, &oauth, &session, oauthTimer, sessionTimer)
		}
	}
}

// refreshOAuth calls the OAuth refresh endpoint with the current
// refresh token. On failure the OAuth bundle (and by cascade the
// session, since it was derived from it) is cleared.
func (m *Manager) refreshOAuth(ctx context.Context, oauth **OAuthBundle, session **GameSession) {
	if *oauth == nil {
		return
	}
	fresh, err := m.client.RefreshOAuthToken(ctx, (*oauth).RefreshToken)
	if err != nil {
		m.logger.Warn("oauth refresh failed, clearing credentials",
			slog.String("error", err.Error()))
		m.recordRefresh("failure")
		*oauth = nil
		*session = nil
		return
	}
	m.recordRefresh("success")
	*oauth = &fresh
}

// refreshSession calls the session-service refresh endpoint with the
// current session token. On failure the session is cleared; the OAuth
// bundle is left intact.
func (m *Manager) refreshSession(ctx context.Context, current *GameSession, out **GameSession) {
	if current == nil {
		return
	}
	fresh, err := m.client.RefreshGameSession(ctx, current.SessionToken)
	if err != nil {
		m.logger.Warn("session refresh failed, clearing session",
			slog.String("error", err.Error()))
		m.recordRefresh("failure")
		*out = nil
		return
	}
	m.recordRefresh("success")
	*out = &fresh
}

// recordRefresh records a credential refresh outcome, if a collector was
// configured via WithMetrics.
func (m *Manager) recordRefresh(outcome string) {
	if m.metrics != nil {
		m.metrics.RecordCredentialRefresh(outcome)
	}
}

// afterTransition derives a session from a fresh OAuth bundle when one
// is missing, then publishes the updated snapshot.
func (m *Manager) afterTransition(ctx context.Context, oauth **OAuthBundle, session **GameSession, oauthTimer, sessionTimer *time.Timer) {
	if *oauth != nil && *session == nil {
		derived, err := m.deriveSession(ctx, **oauth)
		if err != nil {
			m.logger.Warn("derive session from oauth bundle failed",
				slog.String("error", err.Error()))
		} else {
			*session = &derived
			m.rearmSessionTimer(sessionTimer, *session)
		}
	}
	m.publish(*oauth, *session)
}

// deriveSession fetches the account's game profiles and creates a game
// session bound to the first profile.
func (m *Manager) deriveSession(ctx context.Context, oauth OAuthBundle) (GameSession, error) {
	profiles, err := m.client.Profiles(ctx, oauth.AccessToken)
	if err != nil {
		return GameSession{}, err
	}
	if len(profiles) == 0 {
		return GameSession{}, errNoProfiles
	}
	return m.client.CreateGameSession(ctx, profiles[0].UUID, oauth.AccessToken)
}

var errNoProfiles = errors.New("auth: account has no game profiles")

func (m *Manager) publish(oauth *OAuthBundle, session *GameSession) {
	m.current.Store(&Snapshot{OAuth: oauth, Session: session})
}

// rearmOAuthTimer sets the OAuth deadline to now+max(60s, ExpiresIn)
// when a bundle exists and stops the timer when it is absent.
func (m *Manager) rearmOAuthTimer(t *time.Timer, oauth *OAuthBundle) {
	stopTimer(t)
	if oauth == nil {
		return
	}
	delay := oauth.ExpiresIn
	if delay < minRefreshDelay {
		delay = minRefreshDelay
	}
	t.Reset(delay)
}

// rearmSessionTimer sets the session deadline to
// now+max(60s, ExpiresAt-now) when a session exists and stops the timer
// when it is absent.
func (m *Manager) rearmSessionTimer(t *time.Timer, session *GameSession) {
	stopTimer(t)
	if session == nil {
		return
	}
	delay := time.Until(session.ExpiresAt)
	if delay < minRefreshDelay {
		delay = minRefreshDelay
	}
	t.Reset(delay)
}

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}

func drainTimer(t *time.Timer) {
	stopTimer(t)
}
