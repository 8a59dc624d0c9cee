// Package engine hosts scripting contexts on wazero and bridges the event
// targets they create to the UI thread.
//
// Each Context owns two wazero modules. The host module
// "script-bridge/context/<id>" provides the bridge functions; the script
// module "script-bridge/script/<id>" is compiled from WAT, imports them and
// is the only module Call reaches. Host functions:
//
//	Import                 Signature        Effect
//	──────────────────────────────────────────────────────────────────
//	context_id             () -> i32        identity of the context
//	event_target_new       () -> i64        construct an event target
//	event_target_retain    (i64) -> i32     add a reference
//	event_target_release   (i64) -> i32     drop a reference
//	event_target_forget    (i64) -> i32     drop the wrapper without release
//
// Functions taking an identity return 1 on success and 0 when the identity
// is not live in this context. The script module re-exports all five under
// the same names and adds entry points taking a count n:
//
//	churn     create and release n event targets
//	spawn     create n event targets and keep them
//	abandon   create n event targets and forget them
//
// Config.Script adds further functions to every script module.
//
// # Disposal Paths
//
// An event target is disposed exactly once, by whichever happens first:
//
//   - the script releases its last reference
//   - the script forgets the wrapper and the Go collector reclaims it
//   - the context is closed, which disposes everything still live
//
// Construction posts CommandCreateEventTarget so the UI thread can build the
// native mirror; closing a context posts CommandContextDestroyed after the
// disposals of its live objects.
//
// # Thread Safety
//
// Engine is safe for concurrent use. A Context may be driven from several
// goroutines, but the usual arrangement is one goroutine per context, as in
// a scripting engine with one execution thread per context.
package engine
