package workload

import (
	"sync/atomic"

	"github.com/wippyai/script-bridge/bridge"
)

// Counts is a point-in-time view of a Tracker.
type Counts struct {
	Created   uint64
	Disposing uint64
	Disposed  uint64
	Release   uint64
	Collector uint64
	Context   uint64
}

// Outstanding is the number of created objects whose disposal has not yet
// reached the UI thread.
func (c Counts) Outstanding() uint64 {
	// Counters are loaded one at a time, so a disposal can be seen before
	// its creation.
	if c.Disposed > c.Created {
		return 0
	}
	return c.Created - c.Disposed
}

// Tracker counts object lifecycle events. It implements bridge.Observer.
type Tracker struct {
	created   atomic.Uint64
	disposing atomic.Uint64
	disposed  atomic.Uint64
	triggers  [4]atomic.Uint64
}

// NewTracker creates a tracker subscribed to b.
func NewTracker(b *bridge.Bridge) *Tracker {
	t := &Tracker{}
	b.Subscribe(t)
	return t
}

// OnObjectEvent implements bridge.Observer.
func (t *Tracker) OnObjectEvent(e bridge.Event) {
	switch e.Type {
	case bridge.EventCreated:
		t.created.Add(1)
	case bridge.EventDisposing:
		t.disposing.Add(1)
		if int(e.Trigger) < len(t.triggers) {
			t.triggers[e.Trigger].Add(1)
		}
	case bridge.EventDisposed:
		t.disposed.Add(1)
	}
}

// Counts returns the current counters.
func (t *Tracker) Counts() Counts {
	return Counts{
		Created:   t.created.Load(),
		Disposing: t.disposing.Load(),
		Disposed:  t.disposed.Load(),
		Release:   t.triggers[bridge.TriggerRelease].Load(),
		Collector: t.triggers[bridge.TriggerCollector].Load(),
		Context:   t.triggers[bridge.TriggerContext].Load(),
	}
}
