package taskqueue

import "sync"

// Queue is a FIFO of tasks. Register is safe from any goroutine; Drain is
// reserved for the UI thread.
type Queue struct {
	tasks     []Task
	ready     chan struct{}
	observers []Observer
	mu        sync.Mutex
	obsMu     sync.RWMutex
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{
		tasks: make([]Task, 0, 64),
		ready: make(chan struct{}, 1),
	}
}

// Register appends t to the tail of the queue. A nil task is ignored.
func (q *Queue) Register(t Task) {
	if t == nil {
		return
	}

	q.mu.Lock()
	q.tasks = append(q.tasks, t)
	q.notify(Event{Type: EventRegistered, Depth: len(q.tasks)})
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Ready returns a channel that receives a value after tasks have been
// registered. Several registrations may collapse into one signal.
func (q *Queue) Ready() <-chan struct{} {
	return q.ready
}

// Drain runs the tasks queued at the time of the call in FIFO order and
// returns how many ran. Tasks registered while draining wait for the next
// call.
func (q *Queue) Drain() int {
	q.mu.Lock()
	n := len(q.tasks)
	q.mu.Unlock()

	for i := 0; i < n; i++ {
		q.pop()()
	}
	return n
}

// Len returns the number of queued tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Subscribe adds an observer for queue events. Observers are called with
// the queue locked and must not call back into it.
func (q *Queue) Subscribe(o Observer) {
	q.obsMu.Lock()
	defer q.obsMu.Unlock()
	q.observers = append(q.observers, o)
}

// Unsubscribe removes an observer.
func (q *Queue) Unsubscribe(o Observer) {
	q.obsMu.Lock()
	defer q.obsMu.Unlock()
	for i, obs := range q.observers {
		if obs == o {
			q.observers = append(q.observers[:i], q.observers[i+1:]...)
			return
		}
	}
}

// pop removes the head task. Only Drain calls it, and only for tasks it has
// already counted, so the queue is never empty here.
func (q *Queue) pop() Task {
	q.mu.Lock()
	defer q.mu.Unlock()

	t := q.tasks[0]
	q.tasks[0] = nil
	q.tasks = q.tasks[1:]
	q.notify(Event{Type: EventExecuted, Depth: len(q.tasks)})
	return t
}

// notify runs with q.mu held, so observers see depths in the order the
// changes happened.
func (q *Queue) notify(e Event) {
	q.obsMu.RLock()
	defer q.obsMu.RUnlock()
	for _, o := range q.observers {
		o.OnTaskEvent(e)
	}
}
