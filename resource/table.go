package resource

import (
	"cmp"
	"errors"
	"slices"
	"sync"

	"github.com/wippyai/script-bridge/identity"
)

var (
	ErrClosed    = errors.New("resource table closed")
	ErrDuplicate = errors.New("mirror already exists for key")
)

// Table holds native mirrors grouped by context.
type Table struct {
	contexts  map[identity.ContextID]map[identity.ObjectID]any
	observers []Observer
	count     int
	mu        sync.RWMutex
	obsMu     sync.RWMutex
	closed    bool
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		contexts: make(map[identity.ContextID]map[identity.ObjectID]any),
	}
}

// Insert stores value under key.
func (t *Table) Insert(key Key, value any) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrClosed
	}

	objects, ok := t.contexts[key.Context]
	if !ok {
		objects = make(map[identity.ObjectID]any)
		t.contexts[key.Context] = objects
	}
	if _, exists := objects[key.Object]; exists {
		t.mu.Unlock()
		return ErrDuplicate
	}
	objects[key.Object] = value
	t.count++
	t.mu.Unlock()

	t.notify(Event{Type: EventCreated, Key: key, Value: value})
	return nil
}

// Get retrieves a mirror by key.
func (t *Table) Get(key Key) (any, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	objects, ok := t.contexts[key.Context]
	if !ok {
		return nil, false
	}
	value, ok := objects[key.Object]
	return value, ok
}

// Remove drops a mirror and returns (value, true) if it was present.
func (t *Table) Remove(key Key) (any, bool) {
	t.mu.Lock()
	objects, ok := t.contexts[key.Context]
	if !ok {
		t.mu.Unlock()
		return nil, false
	}
	value, ok := objects[key.Object]
	if !ok {
		t.mu.Unlock()
		return nil, false
	}
	delete(objects, key.Object)
	if len(objects) == 0 {
		delete(t.contexts, key.Context)
	}
	t.count--
	t.mu.Unlock()

	t.drop(key, value)
	return value, true
}

// RemoveContext drops every mirror of ctx and returns how many were dropped.
// Mirrors are dropped in object identity order.
func (t *Table) RemoveContext(ctx identity.ContextID) int {
	t.mu.Lock()
	objects := t.contexts[ctx]
	delete(t.contexts, ctx)
	t.count -= len(objects)
	t.mu.Unlock()

	ids := make([]identity.ObjectID, 0, len(objects))
	for id := range objects {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		t.drop(Key{Context: ctx, Object: id}, objects[id])
	}
	return len(ids)
}

// Len returns the number of mirrors.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.count
}

// ContextLen returns the number of mirrors owned by ctx.
func (t *Table) ContextLen(ctx identity.ContextID) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.contexts[ctx])
}

// Contexts returns the identities of contexts that own mirrors, in order.
func (t *Table) Contexts() []identity.ContextID {
	t.mu.RLock()
	out := make([]identity.ContextID, 0, len(t.contexts))
	for ctx := range t.contexts {
		out = append(out, ctx)
	}
	t.mu.RUnlock()

	slices.SortFunc(out, cmp.Compare[identity.ContextID])
	return out
}

// Clear drops all mirrors.
func (t *Table) Clear() {
	for _, ctx := range t.Contexts() {
		t.RemoveContext(ctx)
	}
}

// Close drops all mirrors and rejects further inserts.
func (t *Table) Close() error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()

	t.Clear()
	return nil
}

// Subscribe adds an observer for lifecycle events.
func (t *Table) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Unsubscribe removes an observer.
func (t *Table) Unsubscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	for i, obs := range t.observers {
		if obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

func (t *Table) drop(key Key, value any) {
	if d, ok := value.(Dropper); ok {
		d.Drop()
	}
	t.notify(Event{Type: EventDropped, Key: key, Value: value})
}

func (t *Table) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnResourceEvent(e)
	}
}
