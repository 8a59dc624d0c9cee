// Package workload drives a simulated scripting workload through the bridge.
//
// A Harness wires the pieces a host application needs: a bridge, a wazero
// backed engine, a UI loop with mirror handlers and a mirror table. Run
// starts one goroutine per scripting context. Each goroutine creates event
// targets through the context's host functions and then lets go of them in
// one of three ways:
//
//	release   event_target_release, disposal triggered by the reference count
//	forget    event_target_forget, disposal left to the garbage collector
//	keep      held until the context closes, disposal forced by the context
//
// Settle waits until every created object has been disposed on the UI
// thread.
package workload
