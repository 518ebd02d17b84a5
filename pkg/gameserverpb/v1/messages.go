// Package gameserverv1 holds the request/response message types for the
// game session control surface. These types are hand-maintained in the
// shape protoc-gen-go would produce, without running protoc.
package gameserverv1

import (
	"time"
)

// ConnectionState mirrors internal/session.State as a wire-friendly int32
// enum, shifted so the zero value means "unspecified" rather than a real
// bring-up state.
type ConnectionState int32

const (
	ConnectionState_CONNECTION_STATE_UNSPECIFIED        ConnectionState = 0
	ConnectionState_CONNECTION_STATE_AWAITING_CONNECT    ConnectionState = 1
	ConnectionState_CONNECTION_STATE_AWAITING_AUTH        ConnectionState = 2
	ConnectionState_CONNECTION_STATE_AWAITING_AUTH_TOKEN ConnectionState = 3
	ConnectionState_CONNECTION_STATE_SETUP                ConnectionState = 4
	ConnectionState_CONNECTION_STATE_READY                ConnectionState = 5
	ConnectionState_CONNECTION_STATE_CLOSED               ConnectionState = 6
)

// String returns the proto-style enum name.
func (s ConnectionState) String() string {
	switch s {
	case ConnectionState_CONNECTION_STATE_AWAITING_CONNECT:
		return "CONNECTION_STATE_AWAITING_CONNECT"
	case ConnectionState_CONNECTION_STATE_AWAITING_AUTH:
		return "CONNECTION_STATE_AWAITING_AUTH"
	case ConnectionState_CONNECTION_STATE_AWAITING_AUTH_TOKEN:
		return "CONNECTION_STATE_AWAITING_AUTH_TOKEN"
	case ConnectionState_CONNECTION_STATE_SETUP:
		return "CONNECTION_STATE_SETUP"
	case ConnectionState_CONNECTION_STATE_READY:
		return "CONNECTION_STATE_READY"
	case ConnectionState_CONNECTION_STATE_CLOSED:
		return "CONNECTION_STATE_CLOSED"
	default:
		return "CONNECTION_STATE_UNSPECIFIED"
	}
}

// ConnectionSummary describes one active or recently-closed connection.
type ConnectionSummary struct {
	ConnectionId string          `json:"connection_id"`
	RemoteAddr   string          `json:"remote_addr"`
	Username     string          `json:"username"`
	State        ConnectionState `json:"state"`
	ConnectedAt  time.Time       `json:"connected_at"`
}

func (m *ConnectionSummary) GetConnectionId() string {
	if m == nil {
		return ""
	}
	return m.ConnectionId
}

func (m *ConnectionSummary) GetRemoteAddr() string {
	if m == nil {
		return ""
	}
	return m.RemoteAddr
}

func (m *ConnectionSummary) GetUsername() string {
	if m == nil {
		return ""
	}
	return m.Username
}

func (m *ConnectionSummary) GetState() ConnectionState {
	if m == nil {
		return ConnectionState_CONNECTION_STATE_UNSPECIFIED
	}
	return m.State
}

func (m *ConnectionSummary) GetConnectedAt() time.Time {
	if m == nil {
		return time.Time{}
	}
	return m.ConnectedAt
}

// ListConnectionsRequest has no filtering fields; the handler always
// returns every tracked connection.
type ListConnectionsRequest struct{}

// ListConnectionsResponse carries the full connection snapshot set.
type ListConnectionsResponse struct {
	Connections []*ConnectionSummary `json:"connections"`
}

func (m *ListConnectionsResponse) GetConnections() []*ConnectionSummary {
	if m == nil {
		return nil
	}
	return m.Connections
}

// GetConnectionRequest identifies a single connection by id.
type GetConnectionRequest struct {
	ConnectionId string `json:"connection_id"`
}

func (m *GetConnectionRequest) GetConnectionId() string {
	if m == nil {
		return ""
	}
	return m.ConnectionId
}

// GetConnectionResponse carries the looked-up connection, if found.
type GetConnectionResponse struct {
	Connection *ConnectionSummary `json:"connection"`
}

func (m *GetConnectionResponse) GetConnection() *ConnectionSummary {
	if m == nil {
		return nil
	}
	return m.Connection
}

// WatchConnectionsRequest configures a watch: when IncludeCurrent is set
// the stream first replays the full connection set, then it emits state
// transitions.
type WatchConnectionsRequest struct {
	IncludeCurrent bool `json:"include_current"`
}

func (m *WatchConnectionsRequest) GetIncludeCurrent() bool {
	if m == nil {
		return false
	}
	return m.IncludeCurrent
}

// ConnectionEventType distinguishes connection-added from state-transition events.
type ConnectionEventType int32

const (
	ConnectionEvent_EVENT_TYPE_UNSPECIFIED      ConnectionEventType = 0
	ConnectionEvent_EVENT_TYPE_CONNECTION_ADDED ConnectionEventType = 1
	ConnectionEvent_EVENT_TYPE_STATE_CHANGE      ConnectionEventType = 2
	ConnectionEvent_EVENT_TYPE_CONNECTION_CLOSED ConnectionEventType = 3
)

// ConnectionEvent is one item of the WatchConnections server stream.
type ConnectionEvent struct {
	Type          ConnectionEventType `json:"type"`
	Connection    *ConnectionSummary  `json:"connection"`
	PreviousState ConnectionState     `json:"previous_state"`
	Timestamp     time.Time           `json:"timestamp"`
}

func (m *ConnectionEvent) GetType() ConnectionEventType {
	if m == nil {
		return ConnectionEvent_EVENT_TYPE_UNSPECIFIED
	}
	return m.Type
}

func (m *ConnectionEvent) GetConnection() *ConnectionSummary {
	if m == nil {
		return nil
	}
	return m.Connection
}

func (m *ConnectionEvent) GetPreviousState() ConnectionState {
	if m == nil {
		return ConnectionState_CONNECTION_STATE_UNSPECIFIED
	}
	return m.PreviousState
}

func (m *ConnectionEvent) GetTimestamp() time.Time {
	if m == nil {
		return time.Time{}
	}
	return m.Timestamp
}
