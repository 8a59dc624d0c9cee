package identity

import "sync/atomic"

// ObjectID identifies a bridged object within one engine instance.
// Zero is reserved and always invalid.
type ObjectID int64

// ContextID identifies a scripting context.
type ContextID uint32

// Valid reports whether id was produced by an Allocator.
func (id ObjectID) Valid() bool {
	return id > 0
}

// Allocator hands out ObjectIDs. It is safe for concurrent use.
type Allocator struct {
	last atomic.Int64
}

// NewAllocator creates an allocator whose first identity is 1.
func NewAllocator() *Allocator {
	return &Allocator{}
}

// Next returns a fresh identity, strictly greater than every identity
// previously returned by this allocator.
func (a *Allocator) Next() ObjectID {
	return ObjectID(a.last.Add(1))
}

// Last returns the most recently allocated identity, or 0 if none.
func (a *Allocator) Last() ObjectID {
	return ObjectID(a.last.Load())
}
