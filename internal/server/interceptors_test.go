package server_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"

	"github.com/hytale-oss/gameserver/internal/server"
	"github.com/hytale-oss/gameserver/internal/transport"
	gameserverv1 "github.com/hytale-oss/gameserver/pkg/gameserverpb/v1"
	"github.com/hytale-oss/gameserver/pkg/gameserverpb/v1/gameserverv1connect"
)

// panicHandler wraps the handler interface and panics on ListConnections.
// Used to test the RecoveryInterceptor.
type panicHandler struct {
	gameserverv1connect.UnimplementedGameSessionServiceHandler
}

func (panicHandler) ListConnections(
	_ context.Context,
	_ *connect.Request[gameserverv1.ListConnectionsRequest],
) (*connect.Response[gameserverv1.ListConnectionsResponse], error) {
	panic("intentional test panic")
}

// setupServerWithInterceptors creates a test server with the given ConnectRPC handler options.
func setupServerWithInterceptors(
	t *testing.T,
	opts ...connect.HandlerOption,
) gameserverv1connect.GameSessionServiceClient {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	mgr := transport.NewManager(logger)

	path, handler := server.New(mgr, logger, opts...)
	mux := http.NewServeMux()
	mux.Handle(path, handler)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return gameserverv1connect.NewGameSessionServiceClient(srv.Client(), srv.URL)
}

// setupPanicServer creates a test server that panics on ListConnections,
// using the given handler options (interceptors).
func setupPanicServer(
	t *testing.T,
	opts ...connect.HandlerOption,
) gameserverv1connect.GameSessionServiceClient {
	t.Helper()

	path, handler := gameserverv1connect.NewGameSessionServiceHandler(panicHandler{}, opts...)
	mux := http.NewServeMux()
	mux.Handle(path, handler)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return gameserverv1connect.NewGameSessionServiceClient(srv.Client(), srv.URL)
}

func TestLoggingInterceptorSuccess(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.DiscardHandler)
	client := setupServerWithInterceptors(t, server.LoggingInterceptorOption(logger))

	resp, err := client.ListConnections(context.Background(), connect.NewRequest(&gameserverv1.ListConnectionsRequest{}))
	if err != nil {
		t.Fatalf("ListConnections: %v", err)
	}
	if resp == nil {
		t.Fatal("response is nil")
	}
}

func TestLoggingInterceptorError(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.DiscardHandler)
	client := setupServerWithInterceptors(t, server.LoggingInterceptorOption(logger))

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

func TestRecoveryInterceptorNoPanic(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.DiscardHandler)
	client := setupServerWithInterceptors(t, server.RecoveryInterceptorOption(logger))

	resp, err := client.ListConnections(context.Background(), connect.NewRequest(&gameserverv1.ListConnectionsRequest{}))
	if err != nil {
		t.Fatalf("ListConnections: %v", err)
	}
	if resp == nil {
		t.Fatal("response is nil")
	}
}

func TestRecoveryInterceptorPanic(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.DiscardHandler)
	client := setupPanicServer(t, server.RecoveryInterceptorOption(logger))

	_, err := client.ListConnections(context.Background(), connect.NewRequest(&gameserverv1.ListConnectionsRequest{}))
	if err == nil {
		t.Fatal("expected error after panic, got nil")
	}

	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		t.Fatalf("expected connect.Error, got %T: %v", err, err)
	}
	if connectErr.Code() != connect.CodeInternal {
		t.Errorf("code = %s, want Internal", connectErr.Code())
	}
}

func TestBothInterceptors(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.DiscardHandler)
	client := setupServerWithInterceptors(t,
		server.LoggingInterceptorOption(logger),
		server.RecoveryInterceptorOption(logger),
	)

	resp, err := client.ListConnections(context.Background(), connect.NewRequest(&gameserverv1.ListConnectionsRequest{}))
	if err != nil {
		t.Fatalf("ListConnections: %v", err)
	}
	if resp == nil {
		t.Fatal("response is nil")
	}
}
