package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/hytale-oss/gameserver/internal/auth"
	"github.com/hytale-oss/gameserver/internal/frame"
	"github.com/hytale-oss/gameserver/internal/hytalesession"
	"github.com/hytale-oss/gameserver/internal/metrics"
	"github.com/hytale-oss/gameserver/internal/packets"
)

// readBufSize is the chunk size used to pull bytes off the QUIC stream
// between frame-decode attempts.
const readBufSize = 4096

// ErrFatalProtocol is wrapped by any error that must close the stream:
// a packet received in a state whose filter does not admit its
// category, or a session-service call that fails at a step the peer
// cannot retry past.
var ErrFatalProtocol = errors.New("session: fatal protocol error")

// Stream is the minimal surface Conn needs from a QUIC bidirectional
// stream (or any net.Conn-like full duplex byte stream, for testing).
type Stream interface {
	io.Reader
	io.Writer
	io.Closer
}

// StateChange describes one bring-up FSM transition, emitted to the
// connection's notify channel (if configured) for external consumers
// such as the control surface's WatchConnections stream.
type StateChange struct {
	ConnID     string
	RemoteAddr string
	Username   string
	OldState   State
	NewState   State
}

// ConnOption customizes a Conn at construction.
type ConnOption func(*Conn)

// WithWorldSettings overrides the WorldSettings payload pushed after
// the AUTH handshake completes.
func WithWorldSettings(worldHeight uint32, requiredAssets []packets.Asset) ConnOption {
	return func(c *Conn) {
		c.worldHeight = worldHeight
		c.requiredAssets = requiredAssets
	}
}

// WithIdentity sets the connection's id and remote address, used only
// for observability (control-surface listing and logging) and never
// consulted by the bring-up FSM itself.
func WithIdentity(connID, remoteAddr string) ConnOption {
	return func(c *Conn) {
		c.id = connID
		c.remoteAddr = remoteAddr
	}
}

// WithMetrics records packet, connection-state, and FSM-transition
// counters against collector. Nil-safe: a Conn constructed without this
// option simply records nothing.
func WithMetrics(collector *metrics.Collector) ConnOption {
	return func(c *Conn) {
		c.metrics = collector
	}
}

// WithNotifyChannel sets the channel that receives a StateChange on
// every FSM transition. The channel is never closed by Conn; the
// caller owns its lifecycle. A full channel drops the notification
// rather than blocking the connection's read loop.
func WithNotifyChannel(ch chan<- StateChange) ConnOption {
	return func(c *Conn) {
		c.notifyCh = ch
	}
}

// Conn drives one accepted QUIC stream through the bring-up FSM:
// Connect, authorization-grant exchange, authorization-token exchange,
// world setup, and the asset catalog burst, until Ready or a fatal
// protocol error.
type Conn struct {
	stream   Stream
	registry *packets.Registry
	enc      *frame.Encoder
	dec      *frame.Decoder

	authClient      *hytalesession.Client
	credMgr         *auth.Manager
	audience        string
	certFingerprint string

	worldHeight    uint32
	requiredAssets []packets.Asset

	id         string
	remoteAddr string
	username   string
	notifyCh   chan<- StateChange

	state   State
	logger  *slog.Logger
	metrics *metrics.Collector
}

// NewConn builds a Conn over stream using reg for the frame codec.
// audience is the server's stable per-deployment UUID used when
// requesting authorization grants; certFingerprint is this server's
// TLS leaf certificate fingerprint (hytalesession.Fingerprint).
func NewConn(
	stream Stream,
	reg *packets.Registry,
	authClient *hytalesession.Client,
	credMgr *auth.Manager,
	audience string,
	certFingerprint string,
	logger *slog.Logger,
	opts ...ConnOption,
) (*Conn, error) {
	enc, err := frame.NewEncoder(reg)
	if err != nil {
		return nil, fmt.Errorf("session: new encoder: %w", err)
	}
	dec, err := frame.NewDecoder(reg, StateAwaitingConnect.AllowedCategories())
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("session: new decoder: %w", err)
	}

	c := &Conn{
		stream:          stream,
		registry:        reg,
		enc:             enc,
		dec:             dec,
		authClient:      authClient,
		credMgr:         credMgr,
		audience:        audience,
		certFingerprint: certFingerprint,
		state:           StateAwaitingConnect,
		logger:          logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.metrics != nil {
		c.metrics.RegisterConnection(c.state.String())
	}
	return c, nil
}

// Close releases the Conn's codec resources and the underlying stream.
func (c *Conn) Close() error {
	if c.metrics != nil {
		c.metrics.UnregisterConnection(c.state.String())
	}
	c.enc.Close()
	c.dec.Close()
	return c.stream.Close()
}

// State returns the connection's current bring-up state.
func (c *Conn) State() State { return c.state }

// ID returns the connection's identifier, as set by WithIdentity.
func (c *Conn) ID() string { return c.id }

// RemoteAddr returns the connection's remote address, as set by WithIdentity.
func (c *Conn) RemoteAddr() string { return c.remoteAddr }

// Username returns the peer's username, populated once the Connect
// packet has been processed. Empty before then.
func (c *Conn) Username() string { return c.username }

// Run reads and dispatches packets until the stream ends, the peer
// disconnects, or a fatal protocol error occurs. It returns nil once a
// Disconnect packet moves the connection to Closed, io.EOF (wrapped) on
// a clean stream close, a wrapped ErrFatalProtocol on a protocol
// violation, and otherwise the wrapped read or write error.
func (c *Conn) Run(ctx context.Context) error {
	buf := make([]byte, readBufSize)
	for {
		n, err := c.stream.Read(buf)
		if n > 0 {
			c.dec.Feed(buf[:n])
			if derr := c.drainDecoder(ctx); derr != nil {
				return derr
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				c.transition(ApplyEvent(c.state, EventDisconnect).NewState)
				return fmt.Errorf("session: stream closed: %w", err)
			}
			return fmt.Errorf("session: read stream: %w", err)
		}
		if c.state == StateClosed {
			return nil
		}
	}
}

// drainDecoder decodes and dispatches every complete frame currently
// buffered.
func (c *Conn) drainDecoder(ctx context.Context) error {
	for {
		pkt, ok, err := c.dec.Next()
		if err != nil {
			c.recordDropped(err)
			return fmt.Errorf("%w: %v", ErrFatalProtocol, err)
		}
		if !ok {
			return nil
		}
		if c.metrics != nil {
			c.metrics.IncPacketsReceived(pkt.Descriptor().Name)
		}
		if err := c.dispatch(ctx, pkt); err != nil {
			return err
		}
		if c.state == StateClosed {
			return nil
		}
	}
}

// dispatch routes one decoded packet to its handler. Packet types that
// carry no bring-up transition (ViewRadius, PlayerOptions, and the rest
// of the Ready-phase traffic) are accepted and otherwise ignored here;
// a real deployment would hand them to gameplay logic beyond this
// package's scope.
func (c *Conn) dispatch(ctx context.Context, pkt packets.Packet) error {
	switch p := pkt.(type) {
	case packets.Connect:
		return c.onConnect(ctx, p)
	case packets.AuthToken:
		return c.onAuthToken(ctx, p)
	case packets.RequestAssets:
		return c.onRequestAssets(ctx)
	case packets.Disconnect:
		return c.onDisconnect(ctx)
	default:
		c.logger.Debug("consumed packet", slog.String("type", fmt.Sprintf("%T", pkt)))
		return nil
	}
}

func (c *Conn) onConnect(ctx context.Context, p packets.Connect) error {
	if p.IdentityToken == nil {
		return fmt.Errorf("%w: Connect missing identity token", ErrFatalProtocol)
	}
	c.username = p.Username

	result := ApplyEvent(c.state, EventConnect)
	if !result.Changed {
		return fmt.Errorf("%w: Connect not accepted in state %s", ErrFatalProtocol, c.state)
	}
	c.transition(result.NewState)

	snap := c.credMgr.Snapshot()
	if snap.Session == nil {
		return fmt.Errorf("%w: no session credential available", ErrFatalProtocol)
	}

	var grant string
	for _, action := range result.Actions {
		switch action {
		case ActionFetchAuthGrant:
			g, err := c.authClient.AuthGrant(ctx, *p.IdentityToken, c.audience, snap.Session.SessionToken)
			if err != nil {
				return fmt.Errorf("%w: fetch auth grant: %v", ErrFatalProtocol, err)
			}
			grant = g
		case ActionEmitAuthGrant:
			if err := c.send(packets.AuthGrant{
				AuthorizationGrant:  &grant,
				ServerIdentityToken: &snap.Session.IdentityToken,
			}); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: unexpected action %s for Connect", ErrFatalProtocol, action)
		}
	}

	// The grant has been fetched and sent; advance past the transient
	// AwaitingAuth state.
	sent := ApplyEvent(c.state, EventAuthGrantSent)
	c.transition(sent.NewState)
	return nil
}

func (c *Conn) onAuthToken(ctx context.Context, p packets.AuthToken) error {
	if p.ServerAuthorizationGrant == nil {
		return fmt.Errorf("%w: AuthToken missing server authorization grant", ErrFatalProtocol)
	}

	result := ApplyEvent(c.state, EventAuthToken)
	if !result.Changed {
		return fmt.Errorf("%w: AuthToken not accepted in state %s", ErrFatalProtocol, c.state)
	}
	c.transition(result.NewState)

	snap := c.credMgr.Snapshot()
	if snap.Session == nil {
		return fmt.Errorf("%w: no session credential available", ErrFatalProtocol)
	}

	var accessToken string
	for _, action := range result.Actions {
		switch action {
		case ActionFetchAuthToken:
			token, err := c.authClient.AuthToken(ctx, *p.ServerAuthorizationGrant, c.certFingerprint, snap.Session.SessionToken)
			if err != nil {
				return fmt.Errorf("%w: fetch auth token: %v", ErrFatalProtocol, err)
			}
			accessToken = token
		case ActionEmitServerAuthToken:
			if err := c.send(packets.ServerAuthToken{ServerAccessToken: &accessToken}); err != nil {
				return err
			}
		case ActionEmitWorldSettings:
			if err := c.send(packets.WorldSettings{
				WorldHeight:    c.worldHeight,
				RequiredAssets: assetsPtr(c.requiredAssets),
			}); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: unexpected action %s for AuthToken", ErrFatalProtocol, action)
		}
	}
	return nil
}

func (c *Conn) onRequestAssets(ctx context.Context) error {
	_ = ctx
	result := ApplyEvent(c.state, EventRequestAssets)
	if !result.Changed {
		return fmt.Errorf("%w: RequestAssets not accepted in state %s", ErrFatalProtocol, c.state)
	}
	c.transition(result.NewState)

	for _, action := range result.Actions {
		if action != ActionSendAssetBurst {
			return fmt.Errorf("%w: unexpected action %s for RequestAssets", ErrFatalProtocol, action)
		}
		if err := c.sendAssetBurst(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Conn) sendAssetBurst() error {
	for _, pkt := range packets.AssetBurstPackets {
		if err := c.send(pkt); err != nil {
			return err
		}
	}
	complete := uint32(100)
	if err := c.send(packets.WorldLoadProgress{PercentComplete: complete, PercentCompleteSubitem: complete}); err != nil {
		return err
	}
	return c.send(packets.WorldLoadFinished{})
}

func (c *Conn) onDisconnect(_ context.Context) error {
	result := ApplyEvent(c.state, EventDisconnect)
	c.transition(result.NewState)
	return nil
}

// transition applies newState to both the FSM state and the decoder's
// admitted-category filter.
func (c *Conn) transition(newState State) {
	if newState == c.state {
		return
	}
	c.logger.Info("session state transition",
		slog.String("from", c.state.String()),
		slog.String("to", newState.String()),
	)
	oldState := c.state
	c.state = newState
	c.dec.SetAllowed(newState.AllowedCategories())

	if c.metrics != nil {
		c.metrics.UnregisterConnection(oldState.String())
		c.metrics.RegisterConnection(newState.String())
		c.metrics.RecordStateTransition(oldState.String(), newState.String())
	}

	if c.notifyCh != nil {
		sc := StateChange{
			ConnID:     c.id,
			RemoteAddr: c.remoteAddr,
			Username:   c.username,
			OldState:   oldState,
			NewState:   newState,
		}
		select {
		case c.notifyCh <- sc:
		default:
			c.logger.Warn("state change notify channel full, dropping notification",
				slog.String("conn_id", c.id))
		}
	}
}

func (c *Conn) send(pkt packets.Packet) error {
	wire, err := c.enc.Encode(pkt)
	if err != nil {
		return fmt.Errorf("session: encode %T: %w", pkt, err)
	}
	if _, err := io.Copy(c.stream, bytes.NewReader(wire)); err != nil {
		return fmt.Errorf("session: write %T: %w", pkt, err)
	}
	if c.metrics != nil {
		c.metrics.IncPacketsSent(pkt.Descriptor().Name)
	}
	return nil
}

// recordDropped classifies a decode failure and records it against the
// configured collector, if any.
func (c *Conn) recordDropped(err error) {
	if c.metrics == nil {
		return
	}
	reason := "decode_error"
	if errors.Is(err, frame.ErrCategoryDenied) {
		reason = "category_denied"
	}
	c.metrics.IncPacketsDropped(reason)
}

func assetsPtr(assets []packets.Asset) *[]packets.Asset {
	if assets == nil {
		return nil
	}
	return &assets
}
