//go:build integration

package integration_test

import (
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

func TestServerConnectionLifecycle(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	mgr := transport.NewManager(logger)

	path, handler := server.New(mgr, logger)
	mux := http.NewServeMux()
	mux.Handle(path, handler)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := gameserverv1connect.NewGameSessionServiceClient(srv.Client(), srv.URL)
	ctx := t.Context()

	// --- no connections yet ---
	listResp, err := client.ListConnections(ctx, connect.NewRequest(&gameserverv1.ListConnectionsRequest{}))
	if err != nil {
		t.Fatalf("ListConnections: %v", err)
	}
	if len(listResp.Msg.GetConnections()) != 0 {
		t.Fatalf("expected no connections before registration, got %d", len(listResp.Msg.GetConnections()))
	}

	// --- register a session under the manager, as the QUIC listener would ---
	authClient := hytalesession.NewClient(hytalesession.Config{SessionServiceURL: "http://127.0.0.1:0"})
	credMgr := auth.NewManager(authClient, testAudience, logger)

	serverSide, clientSide := net.Pipe()
	t.Cleanup(func() { clientSide.Close() })

	conn, err := session.NewConn(
		serverSide, packets.NewDefaultRegistry(), authClient, credMgr,
		testAudience, "test-fingerprint", logger,
		session.WithIdentity("conn-live", "198.51.100.9:7777"),
	)
	if err != nil {
		t.Fatalf("NewConn: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	mgr.Register(conn)

	getResp, err := client.GetConnection(ctx, connect.NewRequest(&gameserverv1.GetConnectionRequest{
		ConnectionId: "conn-live",
	}))
	if err != nil {
		t.Fatalf("GetConnection: %v", err)
	}
	if got := getResp.Msg.GetConnection().GetRemoteAddr(); got != "198.51.100.9:7777" {
		t.Errorf("RemoteAddr = %q, want %q", got, "198.51.100.9:7777")
	}

	// --- unregister and confirm it disappears ---
	mgr.Unregister("conn-live")

	_, err = client.GetConnection(ctx, connect.NewRequest(&gameserverv1.GetConnectionRequest{
		ConnectionId: "conn-live",
	}))
	if err == nil {
		t.Fatal("expected GetConnection to fail after Unregister")
	}
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) || connectErr.Code() != connect.CodeNotFound {
		t.Fatalf("expected NotFound after Unregister, got %v", err)
	}
}
