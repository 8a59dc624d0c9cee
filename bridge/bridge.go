package bridge

import (
	"sync"

	"github.com/wippyai/script-bridge/command"
	"github.com/wippyai/script-bridge/identity"
	"github.com/wippyai/script-bridge/taskqueue"
)

// Bridge owns the shared state that connects engine goroutines to the UI
// thread.
type Bridge struct {
	ids       *identity.Allocator
	tasks     *taskqueue.Queue
	commands  *command.Registry
	observers []Observer
	obsMu     sync.RWMutex
}

// New creates a bridge with a fresh allocator, task queue and registry.
func New() *Bridge {
	return &Bridge{
		ids:      identity.NewAllocator(),
		tasks:    taskqueue.New(),
		commands: command.NewRegistry(),
	}
}

// Allocator returns the object identity allocator.
func (b *Bridge) Allocator() *identity.Allocator {
	return b.ids
}

// Tasks returns the global task queue.
func (b *Bridge) Tasks() *taskqueue.Queue {
	return b.tasks
}

// Commands returns the per-context command registry.
func (b *Bridge) Commands() *command.Registry {
	return b.commands
}

// Post schedules a command for obj in the queue of context ctx. The command
// is appended when the UI thread drains the task queue, which keeps every
// write to a command queue on that thread. The payload is copied.
func (b *Bridge) Post(ctx identity.ContextID, obj identity.ObjectID, kind command.Kind, payload []byte) {
	var p []byte
	if len(payload) > 0 {
		p = make([]byte, len(payload))
		copy(p, payload)
	}
	b.tasks.Register(func() {
		b.commands.Instance(ctx).Register(obj, kind, p)
	})
}

// NewObject creates a Live bridged object owned by ctx.
func (b *Bridge) NewObject(ctx Context) *Object {
	return newObject(b, ctx.Identity())
}

// Subscribe adds an observer for object lifecycle events.
func (b *Bridge) Subscribe(o Observer) {
	b.obsMu.Lock()
	defer b.obsMu.Unlock()
	b.observers = append(b.observers, o)
}

// Unsubscribe removes an observer.
func (b *Bridge) Unsubscribe(o Observer) {
	b.obsMu.Lock()
	defer b.obsMu.Unlock()
	for i, obs := range b.observers {
		if obs == o {
			b.observers = append(b.observers[:i], b.observers[i+1:]...)
			return
		}
	}
}

func (b *Bridge) notify(e Event) {
	b.obsMu.RLock()
	defer b.obsMu.RUnlock()
	for _, o := range b.observers {
		o.OnObjectEvent(e)
	}
}
