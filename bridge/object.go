package bridge

import (
	"runtime"
	"sync/atomic"

	"github.com/wippyai/script-bridge/command"
	"github.com/wippyai/script-bridge/identity"
)

// Object is the engine-side wrapper of a bridged object.
type Object struct {
	core    *objectCore
	cleanup runtime.Cleanup
}

// objectCore holds everything disposal needs. The collector cleanup keeps a
// reference to the core only, never to the Object, or the Object could not
// become unreachable.
type objectCore struct {
	bridge  *Bridge
	state   atomic.Uint32
	refs    atomic.Int64
	trigger atomic.Uint32
	id      identity.ObjectID
	context identity.ContextID
}

// disposal is the payload carried by a dispose task.
type disposal struct {
	object  identity.ObjectID
	context identity.ContextID
}

func newObject(b *Bridge, ctx identity.ContextID) *Object {
	c := &objectCore{bridge: b, context: ctx}
	c.state.Store(uint32(StateConstructing))
	c.id = b.ids.Next()
	c.refs.Store(1)

	o := &Object{core: c}
	o.cleanup = runtime.AddCleanup(o, func(c *objectCore) {
		c.dispose(TriggerCollector)
	}, c)

	c.state.Store(uint32(StateLive))
	b.notify(Event{Type: EventCreated, Object: c.id, Context: ctx})
	return o
}

// ID returns the object identity.
func (o *Object) ID() identity.ObjectID {
	return o.core.id
}

// Context returns the identity of the owning context, recorded at construction.
func (o *Object) Context() identity.ContextID {
	return o.core.context
}

// State returns the current lifecycle state.
func (o *Object) State() State {
	return State(o.core.state.Load())
}

// Trigger returns what moved the object out of Live, or TriggerNone.
func (o *Object) Trigger() Trigger {
	return Trigger(o.core.trigger.Load())
}

// Refs returns the current reference count.
func (o *Object) Refs() int64 {
	return o.core.refs.Load()
}

// Retain adds a reference. It fails once the count has reached zero.
func (o *Object) Retain() bool {
	for {
		n := o.core.refs.Load()
		if n <= 0 {
			return false
		}
		if o.core.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// Release drops a reference and disposes the object when the count reaches
// zero. It reports whether this call disposed the object.
func (o *Object) Release() bool {
	for {
		n := o.core.refs.Load()
		if n <= 0 {
			return false
		}
		if !o.core.refs.CompareAndSwap(n, n-1) {
			continue
		}
		if n > 1 {
			return false
		}
		o.cleanup.Stop()
		return o.core.dispose(TriggerRelease)
	}
}

// Dispose tears the object down regardless of outstanding references, as
// happens when the hosting context is released. It reports whether this call
// disposed the object.
func (o *Object) Dispose() bool {
	o.cleanup.Stop()
	return o.core.dispose(TriggerContext)
}

// dispose performs the single Live -> Disposing transition and hands the
// dispose command to the UI thread.
func (c *objectCore) dispose(t Trigger) bool {
	if !c.state.CompareAndSwap(uint32(StateLive), uint32(StateDisposing)) {
		return false
	}
	c.trigger.Store(uint32(t))
	c.refs.Store(0)

	b := c.bridge
	d := disposal{object: c.id, context: c.context}
	state := &c.state

	b.notify(Event{Type: EventDisposing, Object: d.object, Context: d.context, Trigger: t})
	b.tasks.Register(func() {
		b.commands.Instance(d.context).Register(d.object, command.Dispose, nil)
		state.Store(uint32(StateDisposed))
		b.notify(Event{Type: EventDisposed, Object: d.object, Context: d.context, Trigger: t})
	})
	return true
}
