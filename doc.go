// Package scriptbridge moves the teardown of script-visible objects from the
// goroutines of an embedded scripting engine to the single UI thread that
// owns their native state.
//
// When the engine finalizes an event target, either because the script
// released its last reference, the garbage collector reclaimed the wrapper
// or the hosting context went away, the native mirror must not be touched
// from that goroutine. Instead the disposal is captured by value, registered
// on a global task queue, and appended to the destroyed object's
// per-context command queue when the UI thread drains the task queue. The
// UI thread then applies the command to the right context's state.
//
// # Architecture Overview
//
//	scriptbridge/
//	├── identity/        Object and context identities, the object id allocator
//	├── taskqueue/       Global FIFO of deferred tasks, the only hop to the UI thread
//	├── command/         Per-context command queues and the registry that creates them
//	├── bridge/          Bridged objects, their lifecycle and at-most-once disposal
//	├── resource/        UI-side table of native mirrors keyed by context and object
//	├── uithread/        UI loop that drains the queues and dispatches commands
//	├── engine/          wazero host and script modules exposing event targets to scripts
//	├── wat/             WAT compiler for the per-context script modules
//	├── metrics/         Prometheus collector fed by queue and lifecycle events
//	├── workload/        Simulated scripting workload and harness
//	├── config/          bridgectl configuration (viper)
//	├── errors/          Structured error types
//	└── cmd/bridgectl/   CLI: simulate, watch, config
//
// # Quick Start
//
//	b := bridge.New()
//	table := resource.NewTable()
//
//	loop := uithread.New(b)
//	loop.Handle(command.Dispose, uithread.DisposeHandler(table, b.Commands()))
//	go loop.Run(ctx)
//
//	obj := b.NewObject(bridge.NewHandle(7))
//	obj.Release() // a Dispose command for object obj.ID() reaches context 7
//
// # Thread Safety
//
// Objects may be retained, released and disposed from any goroutine, and
// the collector may dispose them from its cleanup goroutine. Task
// registration never blocks on the consumer. Draining the task queue and
// the command queues is reserved to the UI thread.
package scriptbridge
