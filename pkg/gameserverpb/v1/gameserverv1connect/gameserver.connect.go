// Package gameserverv1connect hand-maintains the ConnectRPC service
// definition for the game session control surface, in the shape
// protoc-gen-connect-go would produce, without running protoc.
package gameserverv1connect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	gameserverv1 "github.com/hytale-oss/gameserver/pkg/gameserverpb/v1"
)

const (
	// GameSessionServiceName is the fully-qualified name of the GameSessionService.
	GameSessionServiceName = "hytale.gameserver.v1.GameSessionService"
)

const (
	GameSessionServiceListConnectionsProcedure  = "/" + GameSessionServiceName + "/ListConnections"
	GameSessionServiceGetConnectionProcedure    = "/" + GameSessionServiceName + "/GetConnection"
	GameSessionServiceWatchConnectionsProcedure = "/" + GameSessionServiceName + "/WatchConnections"
)

// GameSessionServiceClient is a client for the GameSessionService.
type GameSessionServiceClient interface {
	ListConnections(context.Context, *connect.Request[gameserverv1.ListConnectionsRequest]) (*connect.Response[gameserverv1.ListConnectionsResponse], error)
	GetConnection(context.Context, *connect.Request[gameserverv1.GetConnectionRequest]) (*connect.Response[gameserverv1.GetConnectionResponse], error)
	WatchConnections(context.Context, *connect.Request[gameserverv1.WatchConnectionsRequest]) (*connect.ServerStreamForClient[gameserverv1.ConnectionEvent], error)
}

// NewGameSessionServiceClient constructs a client for the GameSessionService.
func NewGameSessionServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) GameSessionServiceClient {
	return &gameSessionServiceClient{
		listConnections: connect.NewClient[gameserverv1.ListConnectionsRequest, gameserverv1.ListConnectionsResponse](
			httpClient, baseURL+GameSessionServiceListConnectionsProcedure, opts...,
		),
		getConnection: connect.NewClient[gameserverv1.GetConnectionRequest, gameserverv1.GetConnectionResponse](
			httpClient, baseURL+GameSessionServiceGetConnectionProcedure, opts...,
		),
		watchConnections: connect.NewClient[gameserverv1.WatchConnectionsRequest, gameserverv1.ConnectionEvent](
			httpClient, baseURL+GameSessionServiceWatchConnectionsProcedure, opts...,
		),
	}
}

type gameSessionServiceClient struct {
	listConnections  *connect.Client[gameserverv1.ListConnectionsRequest, gameserverv1.ListConnectionsResponse]
	getConnection    *connect.Client[gameserverv1.GetConnectionRequest, gameserverv1.GetConnectionResponse]
	watchConnections *connect.Client[gameserverv1.WatchConnectionsRequest, gameserverv1.ConnectionEvent]
}

func (c *gameSessionServiceClient) ListConnections(ctx context.Context, req *connect.Request[gameserverv1.ListConnectionsRequest]) (*connect.Response[gameserverv1.ListConnectionsResponse], error) {
	return c.listConnections.CallUnary(ctx, req)
}

func (c *gameSessionServiceClient) GetConnection(ctx context.Context, req *connect.Request[gameserverv1.GetConnectionRequest]) (*connect.Response[gameserverv1.GetConnectionResponse], error) {
	return c.getConnection.CallUnary(ctx, req)
}

func (c *gameSessionServiceClient) WatchConnections(ctx context.Context, req *connect.Request[gameserverv1.WatchConnectionsRequest]) (*connect.ServerStreamForClient[gameserverv1.ConnectionEvent], error) {
	return c.watchConnections.CallServerStream(ctx, req)
}

// GameSessionServiceHandler is implemented by servers serving the
// GameSessionService.
type GameSessionServiceHandler interface {
	ListConnections(context.Context, *connect.Request[gameserverv1.ListConnectionsRequest]) (*connect.Response[gameserverv1.ListConnectionsResponse], error)
	GetConnection(context.Context, *connect.Request[gameserverv1.GetConnectionRequest]) (*connect.Response[gameserverv1.GetConnectionResponse], error)
	WatchConnections(context.Context, *connect.Request[gameserverv1.WatchConnectionsRequest], *connect.ServerStream[gameserverv1.ConnectionEvent]) error
}

// NewGameSessionServiceHandler builds an HTTP handler for the
// GameSessionService, returning the mount path and handler as the
// ConnectRPC convention dictates.
func NewGameSessionServiceHandler(svc GameSessionServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()

	mux.Handle(GameSessionServiceListConnectionsProcedure, connect.NewUnaryHandler(
		GameSessionServiceListConnectionsProcedure, svc.ListConnections, opts...,
	))
	mux.Handle(GameSessionServiceGetConnectionProcedure, connect.NewUnaryHandler(
		GameSessionServiceGetConnectionProcedure, svc.GetConnection, opts...,
	))
	mux.Handle(GameSessionServiceWatchConnectionsProcedure, connect.NewServerStreamHandler(
		GameSessionServiceWatchConnectionsProcedure, svc.WatchConnections, opts...,
	))

	return "/" + GameSessionServiceName + "/", mux
}

// UnimplementedGameSessionServiceHandler returns CodeUnimplemented from all
// methods, for embedding in handlers that only implement a subset.
type UnimplementedGameSessionServiceHandler struct{}

func (UnimplementedGameSessionServiceHandler) ListConnections(context.Context, *connect.Request[gameserverv1.ListConnectionsRequest]) (*connect.Response[gameserverv1.ListConnectionsResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errUnimplemented(GameSessionServiceListConnectionsProcedure))
}

func (UnimplementedGameSessionServiceHandler) GetConnection(context.Context, *connect.Request[gameserverv1.GetConnectionRequest]) (*connect.Response[gameserverv1.GetConnectionResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errUnimplemented(GameSessionServiceGetConnectionProcedure))
}

func (UnimplementedGameSessionServiceHandler) WatchConnections(context.Context, *connect.Request[gameserverv1.WatchConnectionsRequest], *connect.ServerStream[gameserverv1.ConnectionEvent]) error {
	return connect.NewError(connect.CodeUnimplemented, errUnimplemented(GameSessionServiceWatchConnectionsProcedure))
}

func errUnimplemented(procedure string) error {
	return &unimplementedError{procedure: procedure}
}

type unimplementedError struct {
	procedure string
}

func (e *unimplementedError) Error() string {
	return e.procedure + " is not implemented"
}
