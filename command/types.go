package command

import (
	"strconv"

	"github.com/wippyai/script-bridge/identity"
)

// Kind identifies what a command asks the UI side to do. Values other than
// the ones declared here are defined by collaborators.
type Kind uint16

const (
	// Dispose releases the native state mirroring a bridged object.
	// It carries no payload.
	Dispose Kind = 1
)

func (k Kind) String() string {
	switch k {
	case Dispose:
		return "dispose"
	default:
		return "kind(" + strconv.FormatUint(uint64(k), 10) + ")"
	}
}

// Command is one unit of work for the UI side of a scripting context.
// Commands are immutable once registered.
type Command struct {
	Payload []byte
	Object  identity.ObjectID
	Context identity.ContextID
	Kind    Kind
}

// EventType identifies a registry notification.
type EventType uint8

const (
	EventQueueCreated EventType = iota
	EventRegistered
	EventDrained
	EventQueueRemoved
)

// Event describes activity on a command queue. Count is the number of
// commands affected and Depth the queue length after the change.
type Event struct {
	Context identity.ContextID
	Count   int
	Depth   int
	Kind    Kind
	Type    EventType
}

// Observer receives notifications about command queue activity.
type Observer interface {
	OnCommandEvent(Event)
}
