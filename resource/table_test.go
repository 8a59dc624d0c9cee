package resource

import (
	"errors"
	"testing"
)

type testObserver struct {
	events []Event
}

func (o *testObserver) OnResourceEvent(e Event) {
	o.events = append(o.events, e)
}

type dropCounter struct {
	count int
}

func (d *dropCounter) Drop() {
	d.count++
}

func TestTable_Basic(t *testing.T) {
	table := NewTable()
	key := Key{Context: 7, Object: 1}

	// Insert
	if err := table.Insert(key, "target"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	// Get
	val, ok := table.Get(key)
	if !ok {
		t.Fatal("Get failed")
	}
	if val != "target" {
		t.Fatalf("Expected 'target', got %v", val)
	}

	// Same object id in another context is a different mirror
	if _, ok := table.Get(Key{Context: 8, Object: 1}); ok {
		t.Fatal("Get found a mirror in the wrong context")
	}

	// Remove
	val, ok = table.Remove(key)
	if !ok {
		t.Fatal("Remove failed")
	}
	if val != "target" {
		t.Fatalf("Expected 'target', got %v", val)
	}

	if table.Len() != 0 {
		t.Fatal("Expected Len() == 0 after Remove")
	}
	if len(table.Contexts()) != 0 {
		t.Fatal("empty context should be forgotten")
	}
}

func TestTable_Duplicate(t *testing.T) {
	table := NewTable()
	key := Key{Context: 1, Object: 1}

	if err := table.Insert(key, "a"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := table.Insert(key, "b"); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	val, _ := table.Get(key)
	if val != "a" {
		t.Fatalf("duplicate insert replaced value: %v", val)
	}
}

func TestTable_RemoveStaleKey(t *testing.T) {
	table := NewTable()

	if _, ok := table.Remove(Key{Context: 3, Object: 9}); ok {
		t.Fatal("Remove of unknown context should report false")
	}

	table.Insert(Key{Context: 3, Object: 1}, "x")
	if _, ok := table.Remove(Key{Context: 3, Object: 9}); ok {
		t.Fatal("Remove of unknown object should report false")
	}
	if table.Len() != 1 {
		t.Fatal("stale Remove changed the table")
	}
}

func TestTable_RemoveContext(t *testing.T) {
	table := NewTable()
	obs := &testObserver{}
	table.Subscribe(obs)

	table.Insert(Key{Context: 1, Object: 3}, "c")
	table.Insert(Key{Context: 1, Object: 1}, "a")
	table.Insert(Key{Context: 2, Object: 2}, "b")

	if table.ContextLen(1) != 2 {
		t.Fatalf("ContextLen(1) = %d, want 2", table.ContextLen(1))
	}

	obs.events = nil
	if n := table.RemoveContext(1); n != 2 {
		t.Fatalf("RemoveContext returned %d, want 2", n)
	}

	if len(obs.events) != 2 {
		t.Fatalf("expected 2 drop events, got %d", len(obs.events))
	}
	if obs.events[0].Key.Object != 1 || obs.events[1].Key.Object != 3 {
		t.Fatal("mirrors not dropped in identity order")
	}

	if table.Len() != 1 || table.ContextLen(1) != 0 {
		t.Fatal("context mirrors not removed")
	}
	if n := table.RemoveContext(1); n != 0 {
		t.Fatalf("second RemoveContext returned %d", n)
	}
}

func TestTable_Observer(t *testing.T) {
	table := NewTable()
	obs := &testObserver{}
	table.Subscribe(obs)
	key := Key{Context: 1, Object: 5}

	// Insert should trigger EventCreated
	table.Insert(key, "test")
	if len(obs.events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(obs.events))
	}
	if obs.events[0].Type != EventCreated {
		t.Fatal("Expected EventCreated")
	}
	if obs.events[0].Key != key {
		t.Fatal("Wrong key in event")
	}

	// Remove should trigger EventDropped
	table.Remove(key)
	if len(obs.events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(obs.events))
	}
	if obs.events[1].Type != EventDropped {
		t.Fatal("Expected EventDropped")
	}

	// Unsubscribe
	table.Unsubscribe(obs)
	table.Insert(Key{Context: 1, Object: 6}, "test2")
	if len(obs.events) != 2 {
		t.Fatal("Should not receive events after Unsubscribe")
	}
}

func TestTable_Contexts(t *testing.T) {
	table := NewTable()
	table.Insert(Key{Context: 9, Object: 1}, "a")
	table.Insert(Key{Context: 2, Object: 1}, "b")
	table.Insert(Key{Context: 5, Object: 1}, "c")

	got := table.Contexts()
	want := []uint32{2, 5, 9}
	if len(got) != len(want) {
		t.Fatalf("Contexts() = %v", got)
	}
	for i := range want {
		if uint32(got[i]) != want[i] {
			t.Fatalf("Contexts() = %v, want %v", got, want)
		}
	}
}

func TestTable_Clear(t *testing.T) {
	table := NewTable()

	table.Insert(Key{Context: 1, Object: 1}, "a")
	table.Insert(Key{Context: 1, Object: 2}, "b")
	table.Insert(Key{Context: 2, Object: 3}, "c")

	if table.Len() != 3 {
		t.Fatal("Expected Len() == 3")
	}

	table.Clear()

	if table.Len() != 0 {
		t.Fatal("Expected Len() == 0 after Clear")
	}
}

func TestTable_Close(t *testing.T) {
	table := NewTable()
	d := &dropCounter{}

	table.Insert(Key{Context: 1, Object: 1}, d)

	if err := table.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if d.count != 1 {
		t.Fatalf("Expected Drop() on Close, called %d times", d.count)
	}

	// Insert should fail after Close
	if err := table.Insert(Key{Context: 1, Object: 2}, "c"); !errors.Is(err, ErrClosed) {
		t.Fatalf("Expected ErrClosed, got %v", err)
	}
}

func TestTable_DropperInterface(t *testing.T) {
	table := NewTable()
	d := &dropCounter{}
	key := Key{Context: 4, Object: 4}

	table.Insert(key, d)
	table.Remove(key)
	table.Remove(key)

	if d.count != 1 {
		t.Fatalf("Expected Drop() to be called once, called %d times", d.count)
	}
}
