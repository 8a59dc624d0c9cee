package bridge

import (
	"github.com/wippyai/script-bridge/identity"
)

// Context is the view of a scripting context the bridge needs: a stable
// identity used to route commands.
type Context interface {
	Identity() identity.ContextID
}

// Handle is a lightweight Context that only carries an identity.
type Handle struct {
	id identity.ContextID
}

// NewHandle returns a handle for the context with the given identity.
func NewHandle(id identity.ContextID) Handle {
	return Handle{id: id}
}

// Identity returns the context identity.
func (h Handle) Identity() identity.ContextID {
	return h.id
}

// State is the lifecycle state of a bridged object.
type State uint32

const (
	StateConstructing State = iota
	StateLive
	StateDisposing
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateConstructing:
		return "constructing"
	case StateLive:
		return "live"
	case StateDisposing:
		return "disposing"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// Trigger records what moved an object out of Live.
type Trigger uint8

const (
	TriggerNone Trigger = iota
	TriggerRelease
	TriggerCollector
	TriggerContext
)

func (t Trigger) String() string {
	switch t {
	case TriggerRelease:
		return "release"
	case TriggerCollector:
		return "collector"
	case TriggerContext:
		return "context"
	default:
		return "none"
	}
}

// EventType identifies an object lifecycle notification.
type EventType uint8

const (
	EventCreated EventType = iota
	EventDisposing
	EventDisposed
)

// Event represents an object lifecycle event.
type Event struct {
	Object  identity.ObjectID
	Context identity.ContextID
	Trigger Trigger
	Type    EventType
}

// Observer receives notifications about object lifecycle events.
// EventCreated and EventDisposing arrive on the goroutine that caused them,
// which may be the collector's cleanup goroutine; EventDisposed arrives on the
// UI thread.
type Observer interface {
	OnObjectEvent(Event)
}
