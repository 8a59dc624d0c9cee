// Package bridge ties script-visible objects to the native state that mirrors
// them on the UI thread.
//
// A Bridge is the process-wide service object. It owns the identity
// allocator, the global task queue and the per-context command registry, and
// is passed by reference to whoever needs them. Tests build a fresh Bridge
// each.
//
// # Object Lifecycle
//
// Every bridged object goes through four states:
//
//	Constructing -> Live -> Disposing -> Disposed
//
// NewObject allocates an identity, records the identity of the owning
// context and moves the object to Live. The object leaves Live exactly once,
// through whichever of these happens first:
//
//	Release   - the reference count drops to zero
//	collector - the Go garbage collector finds the wrapper unreachable
//	Dispose   - the hosting context tears the object down
//
// The winning path registers one task on the global task queue. When the UI
// thread drains that task, a Dispose command for the object is appended to
// its context's command queue and the object becomes Disposed. Later triggers
// are no-ops, so no object is ever disposed twice.
//
// # Thread Safety
//
// NewObject, Retain, Release, Dispose and Post are safe from any goroutine.
// Draining the task queue is reserved for the UI thread.
package bridge
