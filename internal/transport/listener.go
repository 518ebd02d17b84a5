// Package transport binds the session bring-up state machine
// (internal/session) to a QUIC listener: one accepted connection, one
// bidirectional stream, one session.Conn.
package transport

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/quic-go/quic-go"

	"github.com/hytale-oss/gameserver/internal/auth"
	"github.com/hytale-oss/gameserver/internal/hytalesession"
	"github.com/hytale-oss/gameserver/internal/metrics"
	"github.com/hytale-oss/gameserver/internal/packets"
	"github.com/hytale-oss/gameserver/internal/session"
)

// alpnProtocols lists the ALPN identifiers this listener accepts, newest
// first. The spec's reference implementation negotiates "hytale/2" and
// falls back to "hytale/1" for older clients.
var alpnProtocols = []string{"hytale/2", "hytale/1"}

// ErrListenerClosed reports a closed listener. Run does not return it:
// after Close, Run returns the accept error wrapped as "transport: accept".
var ErrListenerClosed = errors.New("transport: listener closed")

// Config configures a Listener.
type Config struct {
	// Addr is the UDP address to bind, e.g. ":5520".
	Addr string

	// TLSCert is the server's TLS 1.3 certificate, used both for the
	// QUIC handshake and for deriving the certificate fingerprint
	// exchanged during auth-token issuance.
	TLSCert tls.Certificate

	// Audience is the server's stable per-deployment UUID.
	Audience string

	// WorldHeight and RequiredAssets configure the unsolicited
	// WorldSettings payload pushed after the AUTH handshake.
	WorldHeight    uint32
	RequiredAssets []packets.Asset
}

// Listener accepts QUIC connections, hands each connection's first
// bidirectional stream to a session.Conn, and tracks connections in a
// Manager for the control surface.
type Listener struct {
	quicListener *quic.Listener
	registry     *packets.Registry
	authClient   *hytalesession.Client
	credMgr      *auth.Manager
	metrics      *metrics.Collector
	audience     string
	certFinger   string
	worldHeight  uint32
	requiredAsts []packets.Asset

	manager *Manager
	logger  *slog.Logger
}

// New creates a Listener bound to cfg.Addr. The returned Listener owns the
// UDP socket; call Close to release it.
func New(
	cfg Config,
	reg *packets.Registry,
	authClient *hytalesession.Client,
	credMgr *auth.Manager,
	collector *metrics.Collector,
	logger *slog.Logger,
) (*Listener, error) {
	tlsConf := &tls.Config{
		Certificates: []tls.Certificate{cfg.TLSCert},
		NextProtos:   alpnProtocols,
		MinVersion:   tls.VersionTLS13,
	}

	ql, err := quic.ListenAddr(cfg.Addr, tlsConf, nil)
	if err != nil {
		return nil, fmt.Errorf("transport: listen %s: %w", cfg.Addr, err)
	}

	if len(cfg.TLSCert.Certificate) == 0 {
		ql.Close()
		return nil, fmt.Errorf("transport: TLS certificate has no leaf")
	}
	leaf, err := x509.ParseCertificate(cfg.TLSCert.Certificate[0])
	if err != nil {
		ql.Close()
		return nil, fmt.Errorf("transport: parse leaf certificate: %w", err)
	}
	fingerprint := hytalesession.Fingerprint(leaf)

	return &Listener{
		quicListener: ql,
		registry:     reg,
		authClient:   authClient,
		credMgr:      credMgr,
		metrics:      collector,
		audience:     cfg.Audience,
		certFinger:   fingerprint,
		worldHeight:  cfg.WorldHeight,
		requiredAsts: cfg.RequiredAssets,
		manager:      NewManager(logger),
		logger:       logger.With(slog.String("component", "transport.listener")),
	}, nil
}

// Manager returns the connection manager backing the control surface.
func (l *Listener) Manager() *Manager { return l.manager }

// Addr returns the bound local address.
func (l *Listener) Addr() string { return l.quicListener.Addr().String() }

// Run accepts connections until ctx is cancelled or Close is called.
// Each accepted connection is handled in its own goroutine; Run does not
// wait for in-flight connections to finish (the caller supervises those
// via the Manager or an errgroup of its own).
func (l *Listener) Run(ctx context.Context) error {
	for {
		qconn, err := l.quicListener.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("transport: accept: %w", err)
		}
		go l.handleConnection(ctx, qconn)
	}
}

// handleConnection accepts the connection's first bidirectional stream
// and drives it through the bring-up FSM until it closes.
func (l *Listener) handleConnection(ctx context.Context, qconn *quic.Conn) {
	stream, err := qconn.AcceptStream(ctx)
	if err != nil {
		l.logger.Warn("accept stream failed", slog.String("error", err.Error()))
		return
	}

	connID := uuid.NewString()
	remoteAddr := qconn.RemoteAddr().String()

	conn, err := session.NewConn(
		stream,
		l.registry,
		l.authClient,
		l.credMgr,
		l.audience,
		l.certFinger,
		l.logger.With(slog.String("conn_id", connID)),
		session.WithWorldSettings(l.worldHeight, l.requiredAsts),
		session.WithIdentity(connID, remoteAddr),
		session.WithNotifyChannel(l.manager.notifyCh),
		session.WithMetrics(l.metrics),
	)
	if err != nil {
		l.logger.Error("new session conn failed", slog.String("error", err.Error()))
		stream.Close()
		return
	}
	defer conn.Close()

	l.manager.Register(conn)
	defer l.manager.Unregister(connID)

	if err := conn.Run(ctx); err != nil {
		l.logger.Info("connection ended",
			slog.String("conn_id", connID),
			slog.String("reason", err.Error()),
		)
	}
}

// Close stops accepting new connections and releases the UDP socket.
// In-flight connections are not forcibly closed; callers that want a
// hard stop should cancel the context passed to Run.
func (l *Listener) Close() error {
	if err := l.quicListener.Close(); err != nil {
		return fmt.Errorf("transport: close listener: %w", err)
	}
	return nil
}
