package taskqueue

// Task is a deferred unit of work. Values it needs are captured by the
// closure; the queue releases its reference once the task has been popped.
type Task func()

// EventType identifies a task queue notification.
type EventType uint8

const (
	EventRegistered EventType = iota
	// EventExecuted is emitted as Drain takes a task off the queue, right
	// before running it.
	EventExecuted
)

// Event describes a change in the task queue. Depth is the number of queued
// tasks when the event is emitted. Events arrive in the order of the changes
// they describe.
type Event struct {
	Depth int
	Type  EventType
}

// Observer receives notifications about task queue activity.
type Observer interface {
	OnTaskEvent(Event)
}
