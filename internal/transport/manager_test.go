package transport

import (
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/hytale-oss/gameserver/internal/auth"
	"github.com/hytale-oss/gameserver/internal/hytalesession"
	"github.com/hytale-oss/gameserver/internal/packets"
	"github.com/hytale-oss/gameserver/internal/session"
)

func newTestConn(t *testing.T, connID string, notifyCh chan<- session.StateChange) *session.Conn {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	authClient := hytalesession.NewClient(hytalesession.Config{SessionServiceURL: "http://127.0.0.1:0"})
	credMgr := auth.NewManager(authClient, "00000000-0000-0000-0000-000000000001", logger)

	serverSide, clientSide := net.Pipe()
	t.Cleanup(func() { clientSide.Close() })

	opts := []session.ConnOption{session.WithIdentity(connID, "203.0.113.5:1234")}
	if notifyCh != nil {
		opts = append(opts, session.WithNotifyChannel(notifyCh))
	}

	conn, err := session.NewConn(
		serverSide, packets.NewDefaultRegistry(), authClient, credMgr,
		"00000000-0000-0000-0000-000000000001", "test-fingerprint", logger, opts...,
	)
	if err != nil {
		t.Fatalf("NewConn: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestManagerRegisterAndLookup(t *testing.T) {
	t.Parallel()

	m := NewManager(slog.New(slog.DiscardHandler))
	conn := newTestConn(t, "conn-1", nil)

	m.Register(conn)

	snap, ok := m.Lookup("conn-1")
	if !ok {
		t.Fatal("Lookup(conn-1) = false, want true")
	}
	if snap.RemoteAddr != "203.0.113.5:1234" {
		t.Errorf("RemoteAddr = %q, want %q", snap.RemoteAddr, "203.0.113.5:1234")
	}
	if snap.State != session.StateAwaitingConnect {
		t.Errorf("State = %v, want StateAwaitingConnect", snap.State)
	}

	if len(m.Connections()) != 1 {
		t.Fatalf("Connections() len = %d, want 1", len(m.Connections()))
	}

	m.Unregister("conn-1")
	if _, ok := m.Lookup("conn-1"); ok {
		t.Fatal("Lookup(conn-1) after unregister = true, want false")
	}
}

func TestManagerLookupMissing(t *testing.T) {
	t.Parallel()

	m := NewManager(slog.New(slog.DiscardHandler))
	if _, ok := m.Lookup("nonexistent"); ok {
		t.Fatal("Lookup(nonexistent) = true, want false")
	}
}

func TestManagerRunDispatchForwardsNotifications(t *testing.T) {
	t.Parallel()

	m := NewManager(slog.New(slog.DiscardHandler))
	done := make(chan struct{})
	go m.RunDispatch(done)
	defer close(done)

	sc := session.StateChange{
		ConnID:   "conn-1",
		OldState: session.StateAwaitingConnect,
		NewState: session.StateAwaitingAuth,
	}
	m.notifyCh <- sc

	select {
	case got := <-m.StateChanges():
		if got.ConnID != sc.ConnID || got.NewState != sc.NewState {
			t.Fatalf("got %+v, want %+v", got, sc)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for forwarded state change")
	}
}
