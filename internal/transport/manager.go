package transport

import (
	"log/slog"
	"sync"
	"time"

	"github.com/hytale-oss/gameserver/internal/session"
)

// notifyChSize mirrors the teacher's BFD manager buffer size: large
// enough to absorb a burst of simultaneous transitions without a
// connection goroutine blocking on a slow consumer.
const notifyChSize = 64

// ConnectionSnapshot is a read-only view of one tracked connection.
type ConnectionSnapshot struct {
	ConnID      string
	RemoteAddr  string
	Username    string
	State       session.State
	ConnectedAt time.Time
}

// Manager tracks every connection accepted by a Listener, mirroring the
// teacher's Manager: a registry map under a mutex, plus a notify
// channel for state-change events consumed by the control surface's
// WatchConnections stream. Each event is delivered to one reader of
// StateChanges; it is not copied to every watcher.
type Manager struct {
	mu          sync.RWMutex
	connections map[string]*entry

	notifyCh       chan session.StateChange
	publicNotifyCh chan session.StateChange

	logger *slog.Logger
}

type entry struct {
	conn        *session.Conn
	connectedAt time.Time
}

// NewManager creates an empty connection Manager. Call RunDispatch in its
// own goroutine to forward notifications to StateChanges.
func NewManager(logger *slog.Logger) *Manager {
	return &Manager{
		connections:    make(map[string]*entry),
		notifyCh:       make(chan session.StateChange, notifyChSize),
		publicNotifyCh: make(chan session.StateChange, notifyChSize),
		logger:         logger.With(slog.String("component", "transport.manager")),
	}
}

// Register records a newly accepted connection. Called by Listener once a
// session.Conn has been constructed for an accepted stream.
func (m *Manager) Register(conn *session.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connections[conn.ID()] = &entry{conn: conn, connectedAt: time.Now()}
}

// Unregister removes a connection once it has closed.
func (m *Manager) Unregister(connID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.connections, connID)
}

// Connections returns a snapshot of every currently tracked connection.
func (m *Manager) Connections() []ConnectionSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snaps := make([]ConnectionSnapshot, 0, len(m.connections))
	for id, e := range m.connections {
		snaps = append(snaps, ConnectionSnapshot{
			ConnID:      id,
			RemoteAddr:  e.conn.RemoteAddr(),
			Username:    e.conn.Username(),
			State:       e.conn.State(),
			ConnectedAt: e.connectedAt,
		})
	}
	return snaps
}

// Lookup returns the snapshot for a single connection by id.
func (m *Manager) Lookup(connID string) (ConnectionSnapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.connections[connID]
	if !ok {
		return ConnectionSnapshot{}, false
	}
	return ConnectionSnapshot{
		ConnID:      connID,
		RemoteAddr:  e.conn.RemoteAddr(),
		Username:    e.conn.Username(),
		State:       e.conn.State(),
		ConnectedAt: e.connectedAt,
	}, true
}

// StateChanges returns a read-only channel of connection state
// transitions, intended for the control surface's WatchConnections RPC.
func (m *Manager) StateChanges() <-chan session.StateChange {
	return m.publicNotifyCh
}

// RunDispatch forwards notifications from connection goroutines to the
// public StateChanges channel until done is closed. Must be running for
// WatchConnections to receive any events.
func (m *Manager) RunDispatch(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case sc := <-m.notifyCh:
			select {
			case m.publicNotifyCh <- sc:
			default:
				m.logger.Warn("public notification channel full, dropping state change",
					slog.String("conn_id", sc.ConnID))
			}
		}
	}
}
