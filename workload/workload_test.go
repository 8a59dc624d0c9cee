package workload

import (
	"context"
	"testing"
	"time"

	"github.com/wippyai/script-bridge/engine"
	"github.com/wippyai/script-bridge/uithread"
)

func newStartedHarness(t *testing.T) *Harness {
	t.Helper()
	ctx := context.Background()
	h := NewHarness(ctx, uithread.WithInterval(time.Millisecond))
	h.Start(ctx)
	t.Cleanup(func() {
		if err := h.Stop(ctx); err != nil {
			t.Errorf("Stop failed: %v", err)
		}
	})
	return h
}

func TestRun_AllObjectsDisposed(t *testing.T) {
	h := newStartedHarness(t)
	ctx := context.Background()

	opts := Options{Contexts: 4, Objects: 200, ReleaseRatio: 0.5, CollectRatio: 0.25, Seed: 7}
	report, err := Run(ctx, h.Engine, opts)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(report.Contexts) != opts.Contexts {
		t.Fatalf("expected %d context reports, got %d", opts.Contexts, len(report.Contexts))
	}
	for i, c := range report.Contexts {
		if c.Created != opts.Objects {
			t.Errorf("context %d created %d objects, want %d", c.Context, c.Created, opts.Objects)
		}
		if c.Released+c.Forgotten+c.Kept != c.Created {
			t.Errorf("context %d: outcomes do not add up: %+v", c.Context, c)
		}
		if i > 0 && report.Contexts[i-1].Context >= c.Context {
			t.Errorf("reports not ordered by context: %d before %d", report.Contexts[i-1].Context, c.Context)
		}
	}

	if err := Settle(ctx, h.Tracker, 10*time.Second); err != nil {
		t.Fatalf("Settle failed: %v", err)
	}

	totals := report.Totals()
	counts := h.Tracker.Counts()
	if counts.Created != uint64(totals.Created) || counts.Disposed != uint64(totals.Created) {
		t.Fatalf("expected %d created and disposed, got %+v", totals.Created, counts)
	}
	if counts.Release != uint64(totals.Released) {
		t.Errorf("release disposals = %d, want %d", counts.Release, totals.Released)
	}
	if counts.Collector != uint64(totals.Forgotten) {
		t.Errorf("collector disposals = %d, want %d", counts.Collector, totals.Forgotten)
	}
	if counts.Context != uint64(totals.Kept) {
		t.Errorf("context disposals = %d, want %d", counts.Context, totals.Kept)
	}
}

func TestRun_MirrorsTornDown(t *testing.T) {
	h := newStartedHarness(t)
	ctx := context.Background()

	_, err := Run(ctx, h.Engine, Options{Contexts: 2, Objects: 50, ReleaseRatio: 1})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if err := Settle(ctx, h.Tracker, 10*time.Second); err != nil {
		t.Fatalf("Settle failed: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for h.Table.Len() != 0 || h.Bridge.Commands().Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("expected empty table and registry, got %d mirrors and %d queues",
				h.Table.Len(), h.Bridge.Commands().Len())
		}
		time.Sleep(5 * time.Millisecond)
	}
	if h.Engine.Len() != 0 {
		t.Fatalf("expected all contexts closed, %d remain", h.Engine.Len())
	}
}

func TestRun_Deterministic(t *testing.T) {
	ctx := context.Background()
	opts := Options{Contexts: 3, Objects: 100, ReleaseRatio: 0.4, CollectRatio: 0.3, Seed: 99}

	outcomes := func() []ContextReport {
		h := NewHarness(ctx)
		defer h.Stop(ctx)
		report, err := Run(ctx, h.Engine, opts)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		return report.Contexts
	}

	a, b := outcomes(), outcomes()
	for i := range a {
		if a[i].Released != b[i].Released || a[i].Forgotten != b[i].Forgotten || a[i].Kept != b[i].Kept {
			t.Fatalf("context %d differs between runs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestRun_NoContexts(t *testing.T) {
	h := NewHarness(context.Background())
	defer h.Stop(context.Background())

	if _, err := Run(context.Background(), h.Engine, Options{}); err == nil {
		t.Fatal("expected error for zero contexts")
	}
}

func TestSettle_Timeout(t *testing.T) {
	ctx := context.Background()
	h := NewHarness(ctx)
	defer h.Stop(ctx)

	sc, err := h.Engine.NewContext(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sc.NewEventTarget(); err != nil {
		t.Fatal(err)
	}

	// The loop is not running, so nothing can settle.
	if err := Settle(ctx, h.Tracker, 30*time.Millisecond); err == nil {
		t.Fatal("expected Settle to time out")
	}
}

func TestHarness_StartTwice(t *testing.T) {
	ctx := context.Background()
	h := NewHarness(ctx)
	h.Start(ctx)
	h.Start(ctx)
	if err := h.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}

func TestTracker_Counts(t *testing.T) {
	c := Counts{Created: 5, Disposed: 3}
	if c.Outstanding() != 2 {
		t.Fatalf("Outstanding = %d, want 2", c.Outstanding())
	}

	// A snapshot can load a disposal before the matching creation.
	skewed := Counts{Created: 3, Disposed: 4}
	if skewed.Outstanding() != 0 {
		t.Fatalf("Outstanding = %d for skewed counts, want 0", skewed.Outstanding())
	}
}

// Scripts drive every disposal path through their host imports, and the UI
// thread applies each object's disposal exactly once.
func TestHarness_ScriptEntryPoints(t *testing.T) {
	const n = 30
	h := newStartedHarness(t)
	ctx := context.Background()

	sc, err := h.Engine.NewContext(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range []string{engine.ScriptSpawn, engine.ScriptChurn, engine.ScriptAbandon} {
		res, err := sc.Call(ctx, entry, n)
		if err != nil {
			t.Fatalf("%s: %v", entry, err)
		}
		if res[0] != n {
			t.Fatalf("%s(%d) = %d", entry, n, res[0])
		}
	}
	if err := sc.Close(ctx); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if err := Settle(ctx, h.Tracker, 10*time.Second); err != nil {
		t.Fatalf("Settle failed: %v", err)
	}

	counts := h.Tracker.Counts()
	if counts.Created != 3*n || counts.Disposing != 3*n || counts.Disposed != 3*n {
		t.Fatalf("counts = %+v, want %d created, disposing and disposed", counts, 3*n)
	}
	if counts.Release != n || counts.Collector != n || counts.Context != n {
		t.Fatalf("trigger split = %+v, want %d each", counts, n)
	}
}
