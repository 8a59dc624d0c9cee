package command

import (
	"cmp"
	"slices"
	"sync"

	"github.com/wippyai/script-bridge/identity"
)

// Registry maps context identities to their command queues.
type Registry struct {
	queues    map[identity.ContextID]*Queue
	observers []Observer
	mu        sync.Mutex
	obsMu     sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		queues: make(map[identity.ContextID]*Queue),
	}
}

// Instance returns the queue for id, creating and registering it if none
// exists. Concurrent callers with the same id always get the same queue.
func (r *Registry) Instance(id identity.ContextID) *Queue {
	r.mu.Lock()
	q, ok := r.queues[id]
	if !ok {
		q = &Queue{registry: r, context: id}
		r.queues[id] = q
	}
	r.mu.Unlock()

	if !ok {
		r.notify(Event{Type: EventQueueCreated, Context: id})
	}
	return q
}

// Lookup returns the queue for id without creating one.
func (r *Registry) Lookup(id identity.ContextID) (*Queue, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.queues[id]
	return q, ok
}

// Remove unregisters the queue for id and returns it so the caller can
// drain what is left. Holders of the old queue keep a valid reference; a
// later Instance call for id creates a fresh queue.
func (r *Registry) Remove(id identity.ContextID) (*Queue, bool) {
	r.mu.Lock()
	q, ok := r.queues[id]
	if ok {
		delete(r.queues, id)
	}
	r.mu.Unlock()

	if ok {
		r.notify(Event{Type: EventQueueRemoved, Context: id, Depth: q.Len()})
	}
	return q, ok
}

// Snapshot returns the registered queues ordered by context identity.
func (r *Registry) Snapshot() []*Queue {
	r.mu.Lock()
	out := make([]*Queue, 0, len(r.queues))
	for _, q := range r.queues {
		out = append(out, q)
	}
	r.mu.Unlock()

	slices.SortFunc(out, func(a, b *Queue) int {
		return cmp.Compare(a.context, b.context)
	})
	return out
}

// Len returns the number of registered queues.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queues)
}

// Pending returns the total number of queued commands across all contexts.
func (r *Registry) Pending() int {
	total := 0
	for _, q := range r.Snapshot() {
		total += q.Len()
	}
	return total
}

// Subscribe adds an observer for queue events.
func (r *Registry) Subscribe(o Observer) {
	r.obsMu.Lock()
	defer r.obsMu.Unlock()
	r.observers = append(r.observers, o)
}

// Unsubscribe removes an observer.
func (r *Registry) Unsubscribe(o Observer) {
	r.obsMu.Lock()
	defer r.obsMu.Unlock()
	for i, obs := range r.observers {
		if obs == o {
			r.observers = append(r.observers[:i], r.observers[i+1:]...)
			return
		}
	}
}

func (r *Registry) notify(e Event) {
	r.obsMu.RLock()
	defer r.obsMu.RUnlock()
	for _, o := range r.observers {
		o.OnCommandEvent(e)
	}
}
