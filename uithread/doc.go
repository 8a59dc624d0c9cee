// Package uithread implements the UI-side consumer of the bridge: the loop
// that owns native state and performs every write to it.
//
// A Loop drains the global task queue, which appends commands to the
// per-context queues, and then drains those queues in context order,
// dispatching each command to the handler registered for its kind:
//
//	loop := uithread.New(b, uithread.WithInterval(10*time.Millisecond))
//	loop.Handle(command.Dispose, uithread.DisposeHandler(table, b.Commands()))
//
//	go loop.Run(ctx)
//
// Run pins the loop to its OS thread for its whole lifetime and flushes once
// more after ctx is cancelled, so work registered before cancellation is not
// left behind. Tests and embedders that own their own event loop call Flush
// directly instead of Run.
//
// A command without a handler, or a handler that fails, is logged and counted
// but does not stop the loop. Dispose commands for mirrors that no longer
// exist are expected, since a context may be torn down before all of its
// disposals arrive. They are ignored, and the command queue they recreated
// for the destroyed context is removed again.
package uithread
