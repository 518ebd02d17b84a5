package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	gameserverv1 "github.com/hytale-oss/gameserver/pkg/gameserverpb/v1"
)

const (
	formatJSON  = "json"
	formatTable = "table"
	valueNA     = "N/A"
)

// errUnsupportedFormat is returned when the requested output format is not supported.
var errUnsupportedFormat = errors.New("unsupported output format")

// formatConnections renders a slice of connections in the requested format.
func formatConnections(conns []*gameserverv1.ConnectionSummary, format string) (string, error) {
	switch format {
	case formatJSON:
		return formatConnectionsJSON(conns)
	case formatTable:
		return formatConnectionsTable(conns), nil
	default:
		return "", fmt.Errorf("%w: %q", errUnsupportedFormat, format)
	}
}

// formatConnectionDetail renders a single connection in the requested format.
func formatConnectionDetail(conn *gameserverv1.ConnectionSummary, format string) (string, error) {
	switch format {
	case formatJSON:
		return formatConnectionJSON(conn)
	case formatTable:
		return formatConnectionTable(conn), nil
	default:
		return "", fmt.Errorf("%w: %q", errUnsupportedFormat, format)
	}
}

// formatEvent renders a connection event in the requested format.
func formatEvent(event *gameserverv1.ConnectionEvent, format string) (string, error) {
	switch format {
	case formatJSON:
		return formatEventJSON(event)
	case formatTable:
		return formatEventTable(event), nil
	default:
		return "", fmt.Errorf("%w: %q", errUnsupportedFormat, format)
	}
}

// --- Table formatters ---

func formatConnectionsTable(conns []*gameserverv1.ConnectionSummary) string {
	var buf strings.Builder
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CONNECTION-ID\tREMOTE-ADDR\tUSERNAME\tSTATE\tCONNECTED-AT")

	for _, c := range conns {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			c.GetConnectionId(),
			c.GetRemoteAddr(),
			usernameOrNA(c.GetUsername()),
			shortState(c.GetState()),
			c.GetConnectedAt().Format(time.RFC3339),
		)
	}

	_ = w.Flush()
	return buf.String()
}

func formatConnectionTable(c *gameserverv1.ConnectionSummary) string {
	var buf strings.Builder
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "Connection ID:\t%s\n", c.GetConnectionId())
	fmt.Fprintf(w, "Remote Address:\t%s\n", c.GetRemoteAddr())
	fmt.Fprintf(w, "Username:\t%s\n", usernameOrNA(c.GetUsername()))
	fmt.Fprintf(w, "State:\t%s\n", shortState(c.GetState()))
	fmt.Fprintf(w, "Connected At:\t%s\n", c.GetConnectedAt().Format(time.RFC3339))

	_ = w.Flush()
	return buf.String()
}

func formatEventTable(event *gameserverv1.ConnectionEvent) string {
	ts := valueNA
	if t := event.GetTimestamp(); !t.IsZero() {
		ts = t.Format(time.RFC3339)
	}

	conn := event.GetConnection()
	connID := valueNA
	state := valueNA

	if conn != nil {
		connID = conn.GetConnectionId()
		state = shortState(conn.GetState())
	}

	return fmt.Sprintf("[%s] %s  conn=%s  state=%s  prev=%s",
		ts,
		shortEventType(event.GetType()),
		connID,
		state,
		shortState(event.GetPreviousState()),
	)
}

// --- JSON formatters ---

func formatConnectionsJSON(conns []*gameserverv1.ConnectionSummary) (string, error) {
	data, err := json.MarshalIndent(connectionsToView(conns), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal connections to JSON: %w", err)
	}
	return string(data), nil
}

func formatConnectionJSON(conn *gameserverv1.ConnectionSummary) (string, error) {
	data, err := json.MarshalIndent(connectionToView(conn), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal connection to JSON: %w", err)
	}
	return string(data), nil
}

func formatEventJSON(event *gameserverv1.ConnectionEvent) (string, error) {
	data, err := json.MarshalIndent(eventToView(event), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal event to JSON: %w", err)
	}
	return string(data), nil
}

// --- View types for clean JSON output ---

type connectionView struct {
	ConnectionID string `json:"connection_id"`
	RemoteAddr   string `json:"remote_addr"`
	Username     string `json:"username,omitempty"`
	State        string `json:"state"`
	ConnectedAt  string `json:"connected_at,omitempty"`
}

type eventView struct {
	Type          string          `json:"type"`
	PreviousState string          `json:"previous_state"`
	Timestamp     string          `json:"timestamp,omitempty"`
	Connection    *connectionView `json:"connection,omitempty"`
}

func connectionToView(c *gameserverv1.ConnectionSummary) *connectionView {
	v := &connectionView{
		ConnectionID: c.GetConnectionId(),
		RemoteAddr:   c.GetRemoteAddr(),
		Username:     c.GetUsername(),
		State:        shortState(c.GetState()),
	}
	if t := c.GetConnectedAt(); !t.IsZero() {
		v.ConnectedAt = t.Format(time.RFC3339)
	}
	return v
}

func connectionsToView(conns []*gameserverv1.ConnectionSummary) []*connectionView {
	views := make([]*connectionView, 0, len(conns))
	for _, c := range conns {
		views = append(views, connectionToView(c))
	}
	return views
}

func eventToView(event *gameserverv1.ConnectionEvent) *eventView {
	v := &eventView{
		Type:          shortEventType(event.GetType()),
		PreviousState: shortState(event.GetPreviousState()),
	}
	if t := event.GetTimestamp(); !t.IsZero() {
		v.Timestamp = t.Format(time.RFC3339)
	}
	if c := event.GetConnection(); c != nil {
		v.Connection = connectionToView(c)
	}
	return v
}

// --- Enum short-name helpers ---

func usernameOrNA(username string) string {
	if username == "" {
		return valueNA
	}
	return username
}

func shortState(s gameserverv1.ConnectionState) string {
	switch s {
	case gameserverv1.ConnectionState_CONNECTION_STATE_AWAITING_CONNECT:
		return "AwaitingConnect"
	case gameserverv1.ConnectionState_CONNECTION_STATE_AWAITING_AUTH:
		return "AwaitingAuth"
	case gameserverv1.ConnectionState_CONNECTION_STATE_AWAITING_AUTH_TOKEN:
		return "AwaitingAuthToken"
	case gameserverv1.ConnectionState_CONNECTION_STATE_SETUP:
		return "Setup"
	case gameserverv1.ConnectionState_CONNECTION_STATE_READY:
		return "Ready"
	case gameserverv1.ConnectionState_CONNECTION_STATE_CLOSED:
		return "Closed"
	default:
		return "Unknown"
	}
}

func shortEventType(t gameserverv1.ConnectionEventType) string {
	switch t {
	case gameserverv1.ConnectionEvent_EVENT_TYPE_CONNECTION_ADDED:
		return "ConnectionAdded"
	case gameserverv1.ConnectionEvent_EVENT_TYPE_STATE_CHANGE:
		return "StateChange"
	case gameserverv1.ConnectionEvent_EVENT_TYPE_CONNECTION_CLOSED:
		return "ConnectionClosed"
	default:
		return "Unknown"
	}
}
