// Package server implements the ConnectRPC control surface exposing the
// set of live connections tracked by internal/transport.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"connectrpc.com/connect"

	"github.com/hytale-oss/gameserver/internal/session"
	"github.com/hytale-oss/gameserver/internal/transport"
	gameserverv1 "github.com/hytale-oss/gameserver/pkg/gameserverpb/v1"
	"github.com/hytale-oss/gameserver/pkg/gameserverpb/v1/gameserverv1connect"
)

// GameSessionServer implements gameserverv1connect.GameSessionServiceHandler.
//
// Each RPC delegates to the transport Manager for the actual connection
// registry. The server is a thin adapter between the ConnectRPC API and
// the internal domain.
type GameSessionServer struct {
	manager *transport.Manager
	logger  *slog.Logger
}

// verify interface compliance at compile time.
var _ gameserverv1connect.GameSessionServiceHandler = (*GameSessionServer)(nil)

// New creates a new GameSessionServer and returns the mount path and HTTP handler.
func New(mgr *transport.Manager, logger *slog.Logger, opts ...connect.HandlerOption) (string, http.Handler) {
	srv := &GameSessionServer{
		manager: mgr,
		logger:  logger.With(slog.String("component", "server")),
	}
	return gameserverv1connect.NewGameSessionServiceHandler(srv, opts...)
}

// ListConnections returns every currently tracked connection.
func (s *GameSessionServer) ListConnections(
	ctx context.Context,
	_ *connect.Request[gameserverv1.ListConnectionsRequest],
) (*connect.Response[gameserverv1.ListConnectionsResponse], error) {
	s.logger.InfoContext(ctx, "ListConnections called")

	snaps := s.manager.Connections()
	conns := make([]*gameserverv1.ConnectionSummary, 0, len(snaps))
	for _, snap := range snaps {
		conns = append(conns, snapshotToProto(snap))
	}

	return connect.NewResponse(&gameserverv1.ListConnectionsResponse{
		Connections: conns,
	}), nil
}

// GetConnection returns a single connection by id.
func (s *GameSessionServer) GetConnection(
	ctx context.Context,
	req *connect.Request[gameserverv1.GetConnectionRequest],
) (*connect.Response[gameserverv1.GetConnectionResponse], error) {
	connID := req.Msg.GetConnectionId()
	s.logger.InfoContext(ctx, "GetConnection called", slog.String("connection_id", connID))

	snap, ok := s.manager.Lookup(connID)
	if !ok {
		return nil, connect.NewError(connect.CodeNotFound,
			fmt.Errorf("connection %q: %w", connID, ErrConnectionNotFound))
	}

	return connect.NewResponse(&gameserverv1.GetConnectionResponse{
		Connection: snapshotToProto(snap),
	}), nil
}

// WatchConnections streams connection lifecycle and state-transition
// events (server-side streaming).
func (s *GameSessionServer) WatchConnections(
	ctx context.Context,
	req *connect.Request[gameserverv1.WatchConnectionsRequest],
	stream *connect.ServerStream[gameserverv1.ConnectionEvent],
) error {
	s.logger.InfoContext(ctx, "WatchConnections called",
		slog.Bool("include_current", req.Msg.GetIncludeCurrent()),
	)

	if req.Msg.GetIncludeCurrent() {
		for _, snap := range s.manager.Connections() {
			ev := &gameserverv1.ConnectionEvent{
				Type:       gameserverv1.ConnectionEvent_EVENT_TYPE_CONNECTION_ADDED,
				Connection: snapshotToProto(snap),
				Timestamp:  timestampNow(),
			}
			if err := stream.Send(ev); err != nil {
				return fmt.Errorf("send current connection event: %w", err)
			}
		}
	}

	ch := s.manager.StateChanges()
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("watch connections: %w", ctx.Err())
		case sc, ok := <-ch:
			if !ok {
				return nil
			}
			ev := stateChangeToProto(sc)
			if err := stream.Send(ev); err != nil {
				return fmt.Errorf("send state change event: %w", err)
			}
		}
	}
}

// -------------------------------------------------------------------------
// Errors
// -------------------------------------------------------------------------

// ErrConnectionNotFound indicates no connection exists with the given id.
var ErrConnectionNotFound = fmt.Errorf("connection not found")

// -------------------------------------------------------------------------
// Proto conversions
// -------------------------------------------------------------------------

func snapshotToProto(snap transport.ConnectionSnapshot) *gameserverv1.ConnectionSummary {
	return &gameserverv1.ConnectionSummary{
		ConnectionId: snap.ConnID,
		RemoteAddr:   snap.RemoteAddr,
		Username:     snap.Username,
		State:        stateToProto(snap.State),
		ConnectedAt:  snap.ConnectedAt,
	}
}

func stateChangeToProto(sc session.StateChange) *gameserverv1.ConnectionEvent {
	return &gameserverv1.ConnectionEvent{
		Type: gameserverv1.ConnectionEvent_EVENT_TYPE_STATE_CHANGE,
		Connection: &gameserverv1.ConnectionSummary{
			ConnectionId: sc.ConnID,
			RemoteAddr:   sc.RemoteAddr,
			Username:     sc.Username,
			State:        stateToProto(sc.NewState),
		},
		PreviousState: stateToProto(sc.OldState),
		Timestamp:     timestampNow(),
	}
}

func timestampNow() time.Time { return time.Now() }

func stateToProto(s session.State) gameserverv1.ConnectionState {
	switch s {
	case session.StateAwaitingConnect:
		return gameserverv1.ConnectionState_CONNECTION_STATE_AWAITING_CONNECT
	case session.StateAwaitingAuth:
		return gameserverv1.ConnectionState_CONNECTION_STATE_AWAITING_AUTH
	case session.StateAwaitingAuthToken:
		return gameserverv1.ConnectionState_CONNECTION_STATE_AWAITING_AUTH_TOKEN
	case session.StateSetup:
		return gameserverv1.ConnectionState_CONNECTION_STATE_SETUP
	case session.StateReady:
		return gameserverv1.ConnectionState_CONNECTION_STATE_READY
	case session.StateClosed:
		return gameserverv1.ConnectionState_CONNECTION_STATE_CLOSED
	default:
		return gameserverv1.ConnectionState_CONNECTION_STATE_UNSPECIFIED
	}
}
