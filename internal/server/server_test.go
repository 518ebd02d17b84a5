package server_test

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"

	"github.com/hytale-oss/gameserver/internal/auth"
	"github.com/hytale-oss/gameserver/internal/hytalesession"
	"github.com/hytale-oss/gameserver/internal/packets"
	"github.com/hytale-oss/gameserver/internal/server"
	"github.com/hytale-oss/gameserver/internal/session"
	"github.com/hytale-oss/gameserver/internal/transport"
	gameserverv1 "github.com/hytale-oss/gameserver/pkg/gameserverpb/v1"
	"github.com/hytale-oss/gameserver/pkg/gameserverpb/v1/gameserverv1connect"
)

const testAudience = "00000000-0000-0000-0000-000000000001"

// setupTestServer creates a real HTTP server backed by a transport Manager
// and returns a ConnectRPC client connected to it.
func setupTestServer(t *testing.T, mgr *transport.Manager) gameserverv1connect.GameSessionServiceClient {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	path, handler := server.New(mgr, logger)

	mux := http.NewServeMux()
	mux.Handle(path, handler)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return gameserverv1connect.NewGameSessionServiceClient(srv.Client(), srv.URL)
}

// newTestConn builds a session.Conn suitable for registering with a
// transport.Manager in tests, without needing a real QUIC stream.
func newTestConn(t *testing.T, connID, remoteAddr string) *session.Conn {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	authClient := hytalesession.NewClient(hytalesession.Config{SessionServiceURL: "http://127.0.0.1:0"})
	credMgr := auth.NewManager(authClient, testAudience, logger)

	serverSide, clientSide := net.Pipe()
	t.Cleanup(func() { clientSide.Close() })

	conn, err := session.NewConn(
		serverSide, packets.NewDefaultRegistry(), authClient, credMgr,
		testAudience, "test-fingerprint", logger,
		session.WithIdentity(connID, remoteAddr),
	)
	if err != nil {
		t.Fatalf("NewConn: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestListConnectionsEmpty(t *testing.T) {
	t.Parallel()

	mgr := transport.NewManager(slog.New(slog.DiscardHandler))
	client := setupTestServer(t, mgr)

	resp, err := client.ListConnections(context.Background(), connect.NewRequest(&gameserverv1.ListConnectionsRequest{}))
	if err != nil {
		t.Fatalf("ListConnections: %v", err)
	}
	if len(resp.Msg.GetConnections()) != 0 {
		t.Errorf("expected 0 connections, got %d", len(resp.Msg.GetConnections()))
	}
}

func TestListConnections(t *testing.T) {
	t.Parallel()

	mgr := transport.NewManager(slog.New(slog.DiscardHandler))
	mgr.Register(newTestConn(t, "conn-1", "203.0.113.5:1234"))
	mgr.Register(newTestConn(t, "conn-2", "203.0.113.6:1234"))

	client := setupTestServer(t, mgr)

	resp, err := client.ListConnections(context.Background(), connect.NewRequest(&gameserverv1.ListConnectionsRequest{}))
	if err != nil {
		t.Fatalf("ListConnections: %v", err)
	}
	if len(resp.Msg.GetConnections()) != 2 {
		t.Fatalf("expected 2 connections, got %d", len(resp.Msg.GetConnections()))
	}

	byID := make(map[string]*gameserverv1.ConnectionSummary, len(resp.Msg.GetConnections()))
	for _, c := range resp.Msg.GetConnections() {
		byID[c.GetConnectionId()] = c
	}

	c1, ok := byID["conn-1"]
	if !ok {
		t.Fatal("conn-1 not found")
	}
	if c1.GetRemoteAddr() != "203.0.113.5:1234" {
		t.Errorf("RemoteAddr = %q, want %q", c1.GetRemoteAddr(), "203.0.113.5:1234")
	}
	if c1.GetState() != gameserverv1.ConnectionState_CONNECTION_STATE_AWAITING_CONNECT {
		t.Errorf("State = %s, want AWAITING_CONNECT", c1.GetState())
	}

	if _, ok := byID["conn-2"]; !ok {
		t.Fatal("conn-2 not found")
	}
}

func TestGetConnection(t *testing.T) {
	t.Parallel()

	mgr := transport.NewManager(slog.New(slog.DiscardHandler))
	mgr.Register(newTestConn(t, "conn-1", "203.0.113.5:1234"))

	client := setupTestServer(t, mgr)

	resp, err := client.GetConnection(context.Background(), connect.NewRequest(&gameserverv1.GetConnectionRequest{
		ConnectionId: "conn-1",
	}))
	if err != nil {
		t.Fatalf("GetConnection: %v", err)
	}

	conn := resp.Msg.GetConnection()
	if conn.GetConnectionId() != "conn-1" {
		t.Errorf("ConnectionId = %q, want %q", conn.GetConnectionId(), "conn-1")
	}
}

func TestGetConnectionNotFound(t *testing.T) {
	t.Parallel()

	mgr := transport.NewManager(slog.New(slog.DiscardHandler))
	client := setupTestServer(t, mgr)

	_, err := client.GetConnection(context.Background(), connect.NewRequest(&gameserverv1.GetConnectionRequest{
		ConnectionId: "nonexistent",
	}))
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		t.Fatalf("expected connect.Error, got %T: %v", err, err)
	}
	if connectErr.Code() != connect.CodeNotFound {
		t.Errorf("code = %s, want NotFound", connectErr.Code())
	}
}

func TestWatchConnectionsIncludesCurrent(t *testing.T) {
	t.Parallel()

	mgr := transport.NewManager(slog.New(slog.DiscardHandler))
	mgr.Register(newTestConn(t, "conn-1", "203.0.113.5:1234"))

	client := setupTestServer(t, mgr)

	stream, err := client.WatchConnections(context.Background(), connect.NewRequest(&gameserverv1.WatchConnectionsRequest{
		IncludeCurrent: true,
	}))
	if err != nil {
		t.Fatalf("WatchConnections: %v", err)
	}
	defer stream.Close()

	if !stream.Receive() {
		t.Fatalf("expected an event, got error: %v", stream.Err())
	}

	ev := stream.Msg()
	if ev.GetType() != gameserverv1.ConnectionEvent_EVENT_TYPE_CONNECTION_ADDED {
		t.Errorf("Type = %v, want CONNECTION_ADDED", ev.GetType())
	}
	if ev.GetConnection().GetConnectionId() != "conn-1" {
		t.Errorf("ConnectionId = %q, want %q", ev.GetConnection().GetConnectionId(), "conn-1")
	}
}
