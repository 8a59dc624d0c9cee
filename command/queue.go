package command

import (
	"sync"

	"github.com/wippyai/script-bridge/identity"
)

// Queue is the FIFO of commands for one scripting context.
type Queue struct {
	registry *Registry
	commands []Command
	mu       sync.Mutex
	context  identity.ContextID
}

// Context returns the identity of the context this queue serves.
func (q *Queue) Context() identity.ContextID {
	return q.context
}

// Register appends a command for obj to the tail of the queue. The payload
// is copied, so the caller may reuse its buffer.
func (q *Queue) Register(obj identity.ObjectID, kind Kind, payload []byte) {
	var p []byte
	if len(payload) > 0 {
		p = make([]byte, len(payload))
		copy(p, payload)
	}

	q.mu.Lock()
	q.commands = append(q.commands, Command{
		Context: q.context,
		Object:  obj,
		Kind:    kind,
		Payload: p,
	})
	depth := len(q.commands)
	q.mu.Unlock()

	q.registry.notify(Event{
		Type:    EventRegistered,
		Context: q.context,
		Kind:    kind,
		Count:   1,
		Depth:   depth,
	})
}

// Drain removes and returns every queued command in registration order.
func (q *Queue) Drain() []Command {
	q.mu.Lock()
	cmds := q.commands
	q.commands = nil
	q.mu.Unlock()

	if len(cmds) > 0 {
		q.registry.notify(Event{
			Type:    EventDrained,
			Context: q.context,
			Count:   len(cmds),
		})
	}
	return cmds
}

// Peek returns a copy of the queued commands without removing them.
func (q *Queue) Peek() []Command {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Command, len(q.commands))
	copy(out, q.commands)
	return out
}

// Len returns the number of queued commands.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.commands)
}
