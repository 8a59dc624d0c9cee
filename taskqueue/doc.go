// Package taskqueue provides the global task queue: the single hop that moves
// work from any goroutine onto the UI thread.
//
// Producers call Register from any goroutine. Register never waits on a
// condition and never rejects a task; the queue grows without bound under
// sustained pressure. There is no backpressure and no cancellation: once
// Register returns, the task will run on a later Drain.
//
//	q := taskqueue.New()
//
//	// engine goroutine
//	q.Register(func() { ... })
//
//	// UI thread
//	for range q.Ready() {
//	    q.Drain()
//	}
//
// Drain must only be called from the UI thread. Tasks run in FIFO order, each
// to completion before the next starts, so side effects of one task are
// visible to the tasks after it. A task that panics is a programming error;
// Drain does not recover.
package taskqueue
