package identity

import (
	"sync"
	"testing"
)

func TestAllocator_Sequential(t *testing.T) {
	a := NewAllocator()

	if a.Last() != 0 {
		t.Fatalf("fresh allocator Last() = %d, want 0", a.Last())
	}

	prev := ObjectID(0)
	for i := 0; i < 100; i++ {
		id := a.Next()
		if !id.Valid() {
			t.Fatalf("Next returned invalid id %d", id)
		}
		if id <= prev {
			t.Fatalf("id %d not greater than previous %d", id, prev)
		}
		prev = id
	}

	if a.Last() != prev {
		t.Fatalf("Last() = %d, want %d", a.Last(), prev)
	}
}

func TestAllocator_ConcurrentUnique(t *testing.T) {
	const (
		goroutines = 16
		perRoutine = 1000
	)

	a := NewAllocator()
	results := make([][]ObjectID, goroutines)

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			ids := make([]ObjectID, 0, perRoutine)
			for i := 0; i < perRoutine; i++ {
				ids = append(ids, a.Next())
			}
			results[g] = ids
		}(g)
	}
	wg.Wait()

	seen := make(map[ObjectID]struct{}, goroutines*perRoutine)
	for _, ids := range results {
		for i, id := range ids {
			if i > 0 && id <= ids[i-1] {
				t.Fatalf("ids not increasing within a goroutine: %d then %d", ids[i-1], id)
			}
			if _, dup := seen[id]; dup {
				t.Fatalf("duplicate id %d", id)
			}
			seen[id] = struct{}{}
		}
	}

	if len(seen) != goroutines*perRoutine {
		t.Fatalf("expected %d ids, got %d", goroutines*perRoutine, len(seen))
	}
	if a.Last() != ObjectID(goroutines*perRoutine) {
		t.Fatalf("Last() = %d, want %d", a.Last(), goroutines*perRoutine)
	}
}

func TestAllocator_Independent(t *testing.T) {
	a := NewAllocator()
	b := NewAllocator()

	a.Next()
	a.Next()

	if got := b.Next(); got != 1 {
		t.Fatalf("second allocator started at %d, want 1", got)
	}
}

func TestObjectID_Valid(t *testing.T) {
	if ObjectID(0).Valid() {
		t.Fatal("zero id should be invalid")
	}
	if ObjectID(-1).Valid() {
		t.Fatal("negative id should be invalid")
	}
	if !ObjectID(1).Valid() {
		t.Fatal("positive id should be valid")
	}
}
