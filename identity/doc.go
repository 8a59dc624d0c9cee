// Package identity allocates the identities that route bridged objects
// between scripting engine goroutines and the UI thread.
//
// An ObjectID is handed out by an Allocator when a bridged object is
// constructed. Identities are strictly increasing and never reused for the
// lifetime of the allocator, so a disposal command that arrives late can never
// be confused with a newer object. The zero value is reserved and never
// returned by Next.
//
// A ContextID identifies one scripting context. It is owned by whoever creates
// contexts and may be reused once the previous context with that identity has
// been torn down.
package identity
