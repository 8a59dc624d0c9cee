// Package command provides the per-context command queues that carry work
// from the bridge to the UI-side consumer of one scripting context.
//
// A Registry maps each ContextID to exactly one Queue, created on first use.
// Queues are shared by pointer: the registry holds one reference and any
// pending task that captured the queue holds another, so a queue stays valid
// after its scripting context has been destroyed.
//
//	reg := command.NewRegistry()
//	reg.Instance(7).Register(42, command.Dispose, nil)
//
//	for _, cmd := range reg.Instance(7).Drain() {
//	    // tear down native state for cmd.Object
//	}
//
// Commands within one queue keep their registration order. Queues of
// different contexts are independent. The registry never removes a queue on
// its own; reclaiming queues of dead contexts is left to the owner through
// Remove.
package command
