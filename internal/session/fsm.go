// Package session implements the per-connection bring-up state machine:
// one task per accepted QUIC bidirectional stream, advancing through
// Connect, authorization-grant exchange, authorization-token exchange,
// world setup, and asset negotiation until the connection is Ready.
package session

import "github.com/hytale-oss/gameserver/internal/packets"

// This file implements the bring-up FSM as a pure function over a
// transition table, mirroring the style of a protocol reception FSM:
// no side effects, no Conn dependency, trivially testable against the
// state table directly.
//
// State diagram:
//
//	AwaitingConnect --Connect--> AwaitingAuth --AuthGrantSent--> AwaitingAuthToken
//	   --AuthToken--> Setup --RequestAssets--> Ready --Disconnect/EOF--> Closed
//
// Any state admits Disconnect/EOF into Closed; no other transition is
// defined for any other (state, event) pair.

// State is one phase of session bring-up. Each state corresponds to a
// fixed set of admitted inbound packet categories.
type State uint8

const (
	StateAwaitingConnect State = iota
	StateAwaitingAuth
	StateAwaitingAuthToken
	StateSetup
	StateReady
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateAwaitingConnect:
		return "AwaitingConnect"
	case StateAwaitingAuth:
		return "AwaitingAuth"
	case StateAwaitingAuthToken:
		return "AwaitingAuthToken"
	case StateSetup:
		return "Setup"
	case StateReady:
		return "Ready"
	case StateClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// AllowedCategories returns the inbound packet categories admitted while
// in state s.
func (s State) AllowedCategories() packets.Category {
	switch s {
	case StateAwaitingConnect:
		return packets.CategoryConnection
	case StateAwaitingAuth, StateAwaitingAuthToken:
		return packets.CategoryConnection | packets.CategoryAuth
	case StateSetup:
		return packets.CategoryConnection | packets.CategoryAuth | packets.CategorySetup
	case StateReady:
		return packets.CategoryConnection | packets.CategoryAuth | packets.CategorySetup | packets.CategoryAssets
	default:
		return 0
	}
}

// Event represents an input that can advance the bring-up FSM.
type Event uint8

const (
	// EventConnect is the Connect packet arriving from the peer.
	EventConnect Event = iota
	// EventAuthGrantSent fires once the server has fetched an
	// authorization grant from the session service and emitted the
	// AuthGrant packet back to the peer.
	EventAuthGrantSent
	// EventAuthToken is the peer's AuthToken packet.
	EventAuthToken
	// EventRequestAssets is the peer's RequestAssets packet, which also
	// concludes the unsolicited WorldSettings push.
	EventRequestAssets
	// EventDisconnect is a Disconnect packet or clean stream EOF.
	EventDisconnect
)

func (e Event) String() string {
	switch e {
	case EventConnect:
		return "Connect"
	case EventAuthGrantSent:
		return "AuthGrantSent"
	case EventAuthToken:
		return "AuthToken"
	case EventRequestAssets:
		return "RequestAssets"
	case EventDisconnect:
		return "Disconnect"
	default:
		return "Unknown"
	}
}

// Action is a side effect the caller must execute after a transition.
// The FSM itself never performs I/O; Conn's packet handlers (onConnect,
// onAuthToken, onRequestAssets) execute these in order against the live
// connection.
type Action uint8

const (
	// ActionFetchAuthGrant calls the session service for an
	// authorization grant using the peer's identity token.
	ActionFetchAuthGrant Action = iota + 1
	// ActionEmitAuthGrant sends the AuthGrant packet to the peer.
	ActionEmitAuthGrant
	// ActionFetchAuthToken exchanges the peer's authorization grant and
	// the connection's certificate fingerprint for a server access token.
	ActionFetchAuthToken
	// ActionEmitServerAuthToken sends the ServerAuthToken packet.
	ActionEmitServerAuthToken
	// ActionEmitWorldSettings sends the unsolicited WorldSettings packet.
	ActionEmitWorldSettings
	// ActionSendAssetBurst sends the fixed-order asset table init burst
	// followed by WorldLoadProgress and WorldLoadFinished.
	ActionSendAssetBurst
	// ActionClose tears down the connection.
	ActionClose
)

func (a Action) String() string {
	switch a {
	case ActionFetchAuthGrant:
		return "FetchAuthGrant"
	case ActionEmitAuthGrant:
		return "EmitAuthGrant"
	case ActionFetchAuthToken:
		return "FetchAuthToken"
	case ActionEmitServerAuthToken:
		return "EmitServerAuthToken"
	case ActionEmitWorldSettings:
		return "EmitWorldSettings"
	case ActionSendAssetBurst:
		return "SendAssetBurst"
	case ActionClose:
		return "Close"
	default:
		return "Unknown"
	}
}

// stateEvent is the FSM transition table key.
type stateEvent struct {
	state State
	event Event
}

// transition describes the target state and side effects of a single
// FSM edge.
type transition struct {
	newState State
	actions  []Action
}

// Result holds the outcome of applying an event to the FSM.
type Result struct {
	OldState State
	NewState State
	Actions  []Action
	Changed  bool
}

//nolint:gochecknoglobals // transition table is intentionally package-level.
var fsmTable = map[stateEvent]transition{
	{StateAwaitingConnect, EventConnect}: {
		newState: StateAwaitingAuth,
		actions:  []Action{ActionFetchAuthGrant, ActionEmitAuthGrant},
	},
	{StateAwaitingAuth, EventAuthGrantSent}: {
		newState: StateAwaitingAuthToken,
		actions:  nil,
	},
	{StateAwaitingAuthToken, EventAuthToken}: {
		newState: StateSetup,
		actions:  []Action{ActionFetchAuthToken, ActionEmitServerAuthToken, ActionEmitWorldSettings},
	},
	{StateSetup, EventRequestAssets}: {
		newState: StateReady,
		actions:  []Action{ActionSendAssetBurst},
	},
}

// ApplyEvent applies event to currentState and returns the result. Any
// state accepts EventDisconnect, transitioning unconditionally to
// Closed. An (state, event) pair with no table entry and not
// EventDisconnect is a fatal protocol error the caller reports and
// closes the connection for.
func ApplyEvent(currentState State, event Event) Result {
	if event == EventDisconnect {
		return Result{
			OldState: currentState,
			NewState: StateClosed,
			Actions:  []Action{ActionClose},
			Changed:  currentState != StateClosed,
		}
	}

	tr, ok := fsmTable[stateEvent{state: currentState, event: event}]
	if !ok {
		return Result{OldState: currentState, NewState: currentState, Actions: nil, Changed: false}
	}
	return Result{
		OldState: currentState,
		NewState: tr.newState,
		Actions:  tr.actions,
		Changed:  currentState != tr.newState,
	}
}
