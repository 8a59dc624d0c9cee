package resource

import (
	"github.com/wippyai/script-bridge/identity"
)

// Key addresses one native mirror.
type Key struct {
	Object  identity.ObjectID
	Context identity.ContextID
}

// Event types for mirror lifecycle notifications.
type EventType uint8

const (
	EventCreated EventType = iota
	EventDropped
)

// Event represents a mirror lifecycle event.
type Event struct {
	Value any
	Key   Key
	Type  EventType
}

// Observer receives notifications about mirror lifecycle events.
type Observer interface {
	OnResourceEvent(Event)
}

// Dropper is optionally implemented by mirror values that need cleanup.
type Dropper interface {
	Drop()
}
