package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// -------------------------------------------------------------------------
// Prometheus Metric Constants
// -------------------------------------------------------------------------

const (
	namespace = "gameserver"
	subsystem = "session"
)

// Label names for game server metrics.
const (
	labelDirection = "direction" // "tx" or "rx"
	labelPacket    = "packet"
	labelFromState = "from_state"
	labelToState   = "to_state"
	labelReason    = "reason"
	labelOutcome   = "outcome" // "success" or "failure"
)

// -------------------------------------------------------------------------
// Collector — Prometheus Game Server Metrics
// -------------------------------------------------------------------------

// Collector holds all game server Prometheus metrics.
//
//   - Connections tracks currently active QUIC connections by bring-up state.
//   - Packets tracks per-packet-type TX/RX volume.
//   - PacketsDropped counts frames rejected by the state-machine category
//     filter or a decode error.
//   - StateTransitions records session FSM changes for alerting.
//   - CredentialRefresh and OAuthAcquisitions track the credential manager's
//     background token lifecycle.
type Collector struct {
	// Connections tracks the number of currently active connections, labeled
	// by their current bring-up state.
	Connections *prometheus.GaugeVec

	// Packets counts packets sent/received, labeled by direction and packet name.
	Packets *prometheus.CounterVec

	// PacketsDropped counts packets discarded by the category filter or a
	// decode error, labeled by reason.
	PacketsDropped *prometheus.CounterVec

	// StateTransitions counts session FSM state transitions, labeled with
	// the old state and new state.
	StateTransitions *prometheus.CounterVec

	// CredentialRefresh counts OAuth-token and game-session refresh
	// attempts, labeled by outcome.
	CredentialRefresh *prometheus.CounterVec

	// OAuthAcquisitions counts full OAuth bootstrap acquisitions (browser or
	// device-code flow), labeled by outcome.
	OAuthAcquisitions *prometheus.CounterVec
}

// NewCollector creates a Collector with all game server metrics registered
// against the provided prometheus.Registerer. If reg is nil,
// prometheus.DefaultRegisterer is used.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := newMetrics()

	reg.MustRegister(
		c.Connections,
		c.Packets,
		c.PacketsDropped,
		c.StateTransitions,
		c.CredentialRefresh,
		c.OAuthAcquisitions,
	)

	return c
}

// newMetrics creates all Prometheus metric vectors without registering them.
func newMetrics() *Collector {
	stateLabels := []string{labelFromState}
	packetLabels := []string{labelDirection, labelPacket}
	droppedLabels := []string{labelReason}
	transitionLabels := []string{labelFromState, labelToState}
	outcomeLabels := []string{labelOutcome}

	return &Collector{
		Connections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "connections",
			Help:      "Number of currently active connections, by bring-up state.",
		}, stateLabels),

		Packets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "packets_total",
			Help:      "Total packets sent and received, by direction and packet name.",
		}, packetLabels),

		PacketsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "packets_dropped_total",
			Help:      "Total packets dropped by the category filter or a decode error.",
		}, droppedLabels),

		StateTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "state_transitions_total",
			Help:      "Total session FSM state transitions.",
		}, transitionLabels),

		CredentialRefresh: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "credential",
			Name:      "refresh_total",
			Help:      "Total OAuth-token and game-session refresh attempts, by outcome.",
		}, outcomeLabels),

		OAuthAcquisitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "credential",
			Name:      "oauth_acquisitions_total",
			Help:      "Total OAuth bootstrap acquisitions, by outcome.",
		}, outcomeLabels),
	}
}

// -------------------------------------------------------------------------
// Connection Lifecycle
// -------------------------------------------------------------------------

// RegisterConnection increments the active connections gauge for the given
// bring-up state. Called on connection creation and on every FSM transition
// (paired with UnregisterConnection for the prior state).
func (c *Collector) RegisterConnection(state string) {
	c.Connections.WithLabelValues(state).Inc()
}

// UnregisterConnection decrements the active connections gauge for the
// given bring-up state.
func (c *Collector) UnregisterConnection(state string) {
	c.Connections.WithLabelValues(state).Dec()
}

// -------------------------------------------------------------------------
// Packet Counters
// -------------------------------------------------------------------------

// IncPacketsSent increments the transmitted packet counter for the named packet.
func (c *Collector) IncPacketsSent(packet string) {
	c.Packets.WithLabelValues("tx", packet).Inc()
}

// IncPacketsReceived increments the received packet counter for the named packet.
func (c *Collector) IncPacketsReceived(packet string) {
	c.Packets.WithLabelValues("rx", packet).Inc()
}

// IncPacketsDropped increments the dropped packet counter with the given reason
// (e.g. "category_denied", "decode_error").
func (c *Collector) IncPacketsDropped(reason string) {
	c.PacketsDropped.WithLabelValues(reason).Inc()
}

// -------------------------------------------------------------------------
// State Transitions
// -------------------------------------------------------------------------

// RecordStateTransition increments the state transition counter with the
// old and new state labels.
func (c *Collector) RecordStateTransition(from, to string) {
	c.StateTransitions.WithLabelValues(from, to).Inc()
}

// -------------------------------------------------------------------------
// Credential Manager
// -------------------------------------------------------------------------

// RecordCredentialRefresh records the outcome of an OAuth-token or
// game-session refresh attempt ("success" or "failure").
func (c *Collector) RecordCredentialRefresh(outcome string) {
	c.CredentialRefresh.WithLabelValues(outcome).Inc()
}

// RecordOAuthAcquisition records the outcome of a full OAuth bootstrap
// acquisition ("success" or "failure").
func (c *Collector) RecordOAuthAcquisition(outcome string) {
	c.OAuthAcquisitions.WithLabelValues(outcome).Inc()
}
