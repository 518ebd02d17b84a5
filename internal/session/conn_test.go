package session_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hytale-oss/gameserver/internal/auth"
	"github.com/hytale-oss/gameserver/internal/frame"
	"github.com/hytale-oss/gameserver/internal/hytalesession"
	"github.com/hytale-oss/gameserver/internal/packets"
	"github.com/hytale-oss/gameserver/internal/session"

	"github.com/google/uuid"
)

func newTestSessionService(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/server-join/auth-grant", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"authorizationGrant": "test-grant"})
	})
	mux.HandleFunc("/server-join/auth-token", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"accessToken": "test-access-token"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// waitForSession polls until the manager has published a snapshot
// carrying a session, bounding the wait so a broken delivery path fails
// the test instead of hanging.
func waitForSession(t *testing.T, mgr *auth.Manager) auth.Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap := mgr.Snapshot()
		if snap.Session != nil {
			return snap
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("timed out waiting for credential manager to publish session")
	return auth.Snapshot{}
}

func TestConnBringUpHappyPath(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.DiscardHandler)
	ts := newTestSessionService(t)

	authClient := hytalesession.NewClient(hytalesession.Config{
		SessionServiceURL: ts.URL,
		HTTPClient:        ts.Client(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	credMgr := auth.NewManager(authClient, "00000000-0000-0000-0000-000000000001", logger)
	go func() { _ = credMgr.Run(ctx) }()

	if err := credMgr.Deliver(ctx, auth.Snapshot{
		Session: &auth.GameSession{
			SessionToken:  "server-session-token",
			IdentityToken: "server-identity-token",
			ExpiresAt:     time.Now().Add(time.Hour),
		},
	}); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	waitForSession(t, credMgr)

	registry := packets.NewDefaultRegistry()

	serverSide, clientSide := net.Pipe()
	defer clientSide.Close()

	conn, err := session.NewConn(serverSide, registry, authClient, credMgr,
		"00000000-0000-0000-0000-000000000001", "test-cert-fingerprint", logger)
	if err != nil {
		t.Fatalf("NewConn: %v", err)
	}

	runErr := make(chan error, 1)
	go func() { runErr <- conn.Run(ctx) }()

	clientEnc, err := frame.NewEncoder(registry)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	defer clientEnc.Close()
	clientDec, err := frame.NewDecoder(registry, packets.CategoryConnection|packets.CategoryAuth|packets.CategorySetup|packets.CategoryAssets)
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	defer clientDec.Close()

	send := func(pkt packets.Packet) {
		t.Helper()
		wire, err := clientEnc.Encode(pkt)
		if err != nil {
			t.Fatalf("encode %T: %v", pkt, err)
		}
		if _, err := clientSide.Write(wire); err != nil {
			t.Fatalf("write %T: %v", pkt, err)
		}
	}

	recv := func() packets.Packet {
		t.Helper()
		buf := make([]byte, 4096)
		for {
			if pkt, ok, err := clientDec.Next(); err != nil {
				t.Fatalf("decode: %v", err)
			} else if ok {
				return pkt
			}
			n, err := clientSide.Read(buf)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			clientDec.Feed(buf[:n])
		}
	}

	identity := "peer-identity-token"
	send(packets.Connect{
		ProtocolCRC:         1,
		ProtocolBuildNumber: 1,
		ClientVersion:       "test",
		ClientType:          packets.ClientTypeGame,
		UUID:                uuid.New(),
		Username:            "player1",
		IdentityToken:       &identity,
		Language:            "en",
	})

	grantPkt, ok := recv().(packets.AuthGrant)
	if !ok {
		t.Fatalf("expected AuthGrant, got %T", grantPkt)
	}
	if grantPkt.AuthorizationGrant == nil || *grantPkt.AuthorizationGrant != "test-grant" {
		t.Fatalf("unexpected grant: %+v", grantPkt)
	}

	send(packets.AuthToken{ServerAuthorizationGrant: grantPkt.AuthorizationGrant})

	satPkt, ok := recv().(packets.ServerAuthToken)
	if !ok {
		t.Fatalf("expected ServerAuthToken, got %T", satPkt)
	}
	if satPkt.ServerAccessToken == nil || *satPkt.ServerAccessToken != "test-access-token" {
		t.Fatalf("unexpected server access token: %+v", satPkt)
	}

	if _, ok := recv().(packets.WorldSettings); !ok {
		t.Fatal("expected WorldSettings")
	}

	send(packets.RequestAssets{})

	for range packets.AssetBurstPackets {
		recv()
	}
	if _, ok := recv().(packets.WorldLoadProgress); !ok {
		t.Fatal("expected WorldLoadProgress")
	}
	if _, ok := recv().(packets.WorldLoadFinished); !ok {
		t.Fatal("expected WorldLoadFinished")
	}

	if conn.State() != session.StateReady {
		t.Fatalf("State() = %s, want Ready", conn.State())
	}

	send(packets.Disconnect{})

	select {
	case err := <-runErr:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for Conn.Run to return after Disconnect")
	}
}
