package taskqueue

import (
	"sync"
	"testing"
)

type recordingObserver struct {
	mu     sync.Mutex
	events []Event
}

func (o *recordingObserver) OnTaskEvent(e Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func TestQueue_FIFO(t *testing.T) {
	q := New()

	var order []int
	for i := 0; i < 10; i++ {
		q.Register(func() { order = append(order, i) })
	}

	if q.Len() != 10 {
		t.Fatalf("Len() = %d, want 10", q.Len())
	}

	if n := q.Drain(); n != 10 {
		t.Fatalf("Drain() = %d, want 10", n)
	}

	for i, v := range order {
		if v != i {
			t.Fatalf("order[%d] = %d, tasks ran out of order: %v", i, v, order)
		}
	}

	if q.Len() != 0 {
		t.Fatalf("Len() after drain = %d", q.Len())
	}
}

func TestQueue_FIFOPerProducer(t *testing.T) {
	const (
		producers = 8
		perProd   = 500
	)

	q := New()

	var wg sync.WaitGroup
	var mu sync.Mutex
	ran := make(map[int][]int)

	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProd; i++ {
				q.Register(func() {
					mu.Lock()
					ran[p] = append(ran[p], i)
					mu.Unlock()
				})
			}
		}(p)
	}
	wg.Wait()

	if n := q.Drain(); n != producers*perProd {
		t.Fatalf("Drain() = %d, want %d", n, producers*perProd)
	}

	for p := 0; p < producers; p++ {
		seq := ran[p]
		if len(seq) != perProd {
			t.Fatalf("producer %d: %d tasks ran, want %d", p, len(seq), perProd)
		}
		for i, v := range seq {
			if v != i {
				t.Fatalf("producer %d: task %d ran at position %d", p, v, i)
			}
		}
	}
}

func TestQueue_TasksRegisteredDuringDrain(t *testing.T) {
	q := New()

	var order []string
	q.Register(func() {
		order = append(order, "a")
		q.Register(func() { order = append(order, "c") })
	})
	q.Register(func() { order = append(order, "b") })

	if n := q.Drain(); n != 2 {
		t.Fatalf("first Drain() = %d, want 2", n)
	}
	if q.Len() != 1 {
		t.Fatalf("task registered during drain should wait, Len() = %d", q.Len())
	}

	if n := q.Drain(); n != 1 {
		t.Fatalf("second Drain() = %d, want 1", n)
	}

	want := []string{"a", "b", "c"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestQueue_SideEffectsVisible(t *testing.T) {
	q := New()

	state := map[string]int{}
	q.Register(func() { state["created"] = 1 })
	q.Register(func() {
		if state["created"] != 1 {
			t.Error("second task did not observe first task's write")
		}
	})
	q.Drain()
}

func TestQueue_NilTaskIgnored(t *testing.T) {
	q := New()
	q.Register(nil)

	if q.Len() != 0 {
		t.Fatalf("nil task was queued, Len() = %d", q.Len())
	}
	if n := q.Drain(); n != 0 {
		t.Fatalf("Drain() = %d, want 0", n)
	}
}

func TestQueue_Ready(t *testing.T) {
	q := New()

	select {
	case <-q.Ready():
		t.Fatal("Ready signalled on empty queue")
	default:
	}

	q.Register(func() {})
	q.Register(func() {})

	select {
	case <-q.Ready():
	default:
		t.Fatal("Ready not signalled after Register")
	}

	// signals collapse, so a second receive must not block forever on
	// a buffered value that is not there
	select {
	case <-q.Ready():
		t.Fatal("expected a single collapsed signal")
	default:
	}
}

func TestQueue_Observer(t *testing.T) {
	q := New()
	obs := &recordingObserver{}
	q.Subscribe(obs)

	q.Register(func() {})
	q.Register(func() {})
	q.Drain()

	want := []Event{
		{Type: EventRegistered, Depth: 1},
		{Type: EventRegistered, Depth: 2},
		{Type: EventExecuted, Depth: 1},
		{Type: EventExecuted, Depth: 0},
	}
	if len(obs.events) != len(want) {
		t.Fatalf("got %d events, want %d: %+v", len(obs.events), len(want), obs.events)
	}
	for i := range want {
		if obs.events[i] != want[i] {
			t.Fatalf("event %d = %+v, want %+v", i, obs.events[i], want[i])
		}
	}

	q.Unsubscribe(obs)
	q.Register(func() {})
	if len(obs.events) != len(want) {
		t.Fatal("observer notified after Unsubscribe")
	}
}

func TestQueue_PanicPropagates(t *testing.T) {
	q := New()
	q.Register(func() { panic("boom") })

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic to propagate out of Drain")
		}
	}()
	q.Drain()
}

func TestQueue_ObserverDepthOrdered(t *testing.T) {
	const (
		producers = 8
		tasks     = 200
	)

	q := New()
	obs := &recordingObserver{}
	q.Subscribe(obs)

	var wg sync.WaitGroup
	for range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range tasks {
				q.Register(func() {})
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	for draining := true; draining; {
		select {
		case <-done:
			draining = false
		default:
		}
		q.Drain()
	}
	q.Drain()

	obs.mu.Lock()
	defer obs.mu.Unlock()

	if len(obs.events) != 2*producers*tasks {
		t.Fatalf("got %d events, want %d", len(obs.events), 2*producers*tasks)
	}
	// Each event moves the depth by exactly one from the previous event.
	prev := 0
	for i, e := range obs.events {
		want := prev + 1
		if e.Type == EventExecuted {
			want = prev - 1
		}
		if e.Depth != want {
			t.Fatalf("event %d = %+v after depth %d, want depth %d", i, e, prev, want)
		}
		prev = e.Depth
	}
	if last := obs.events[len(obs.events)-1]; last.Depth != q.Len() {
		t.Fatalf("last reported depth %d, Len() = %d", last.Depth, q.Len())
	}
}
