package workload

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/wippyai/script-bridge/engine"
	"github.com/wippyai/script-bridge/identity"
)

// Options shapes a workload run.
type Options struct {
	// Contexts is the number of scripting contexts run concurrently.
	Contexts int
	// Objects is the number of event targets each context creates.
	Objects int
	// ReleaseRatio is the share of objects explicitly released.
	ReleaseRatio float64
	// CollectRatio is the share of objects forgotten and left to the
	// collector. The rest are kept until the context closes.
	CollectRatio float64
	// Seed makes the release/forget/keep choice reproducible.
	Seed uint64
}

// ContextReport describes what one context did.
type ContextReport struct {
	Context   identity.ContextID
	Created   int
	Released  int
	Forgotten int
	Kept      int
	Duration  time.Duration
}

// Report is the result of Run.
type Report struct {
	Contexts []ContextReport
	Duration time.Duration
}

// Totals sums the per-context reports.
func (r *Report) Totals() ContextReport {
	var t ContextReport
	for _, c := range r.Contexts {
		t.Created += c.Created
		t.Released += c.Released
		t.Forgotten += c.Forgotten
		t.Kept += c.Kept
	}
	t.Duration = r.Duration
	return t
}

type action uint8

const (
	actionRelease action = iota
	actionForget
	actionKeep
)

func (o Options) choose(r *rand.Rand) action {
	p := r.Float64()
	switch {
	case p < o.ReleaseRatio:
		return actionRelease
	case p < o.ReleaseRatio+o.CollectRatio:
		return actionForget
	default:
		return actionKeep
	}
}

// Run executes the workload on eng and closes every context it created.
// Disposals are only enqueued here; use Settle to wait for the UI thread.
func Run(ctx context.Context, eng *engine.Engine, opts Options) (*Report, error) {
	if opts.Contexts < 1 {
		return nil, fmt.Errorf("workload needs at least one context, got %d", opts.Contexts)
	}

	start := time.Now()
	reports := make([]ContextReport, opts.Contexts)
	errs := make([]error, opts.Contexts)

	var wg sync.WaitGroup
	for i := range opts.Contexts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reports[i], errs[i] = runContext(ctx, eng, opts)
		}()
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	slices.SortFunc(reports, func(a, b ContextReport) int {
		return cmp.Compare(a.Context, b.Context)
	})
	return &Report{Contexts: reports, Duration: time.Since(start)}, nil
}

func runContext(ctx context.Context, eng *engine.Engine, opts Options) (ContextReport, error) {
	start := time.Now()

	sc, err := eng.NewContext(ctx)
	if err != nil {
		return ContextReport{}, err
	}
	report := ContextReport{Context: sc.Identity()}
	rng := rand.New(rand.NewPCG(opts.Seed, uint64(report.Context)))

	for range opts.Objects {
		res, err := sc.Call(ctx, engine.FuncNewEventTarget)
		if err != nil {
			sc.Close(ctx)
			return report, fmt.Errorf("context %d: create: %w", report.Context, err)
		}
		id := res[0]
		if id == 0 {
			sc.Close(ctx)
			return report, fmt.Errorf("context %d: create returned no object", report.Context)
		}
		report.Created++

		switch opts.choose(rng) {
		case actionRelease:
			if err := expectOK(sc.Call(ctx, engine.FuncReleaseEventTarget, id)); err != nil {
				sc.Close(ctx)
				return report, fmt.Errorf("context %d: release %d: %w", report.Context, id, err)
			}
			report.Released++
		case actionForget:
			if err := expectOK(sc.Call(ctx, engine.FuncForgetEventTarget, id)); err != nil {
				sc.Close(ctx)
				return report, fmt.Errorf("context %d: forget %d: %w", report.Context, id, err)
			}
			report.Forgotten++
		default:
			report.Kept++
		}
	}

	if err := sc.Close(ctx); err != nil {
		return report, fmt.Errorf("context %d: close: %w", report.Context, err)
	}
	report.Duration = time.Since(start)
	return report, nil
}

// expectOK checks the i32 status a retain, release or forget call returns.
func expectOK(res []uint64, err error) error {
	if err != nil {
		return err
	}
	if len(res) != 1 || res[0] != 1 {
		return errors.New("object not held by the context")
	}
	return nil
}

// Settle runs the collector until every object counted by t has been
// disposed on the UI thread, or until wait elapses. The UI loop must be
// running.
func Settle(ctx context.Context, t *Tracker, wait time.Duration) error {
	deadline := time.NewTimer(wait)
	defer deadline.Stop()
	tick := time.NewTicker(10 * time.Millisecond)
	defer tick.Stop()

	for {
		runtime.GC()
		if t.Counts().Outstanding() == 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return fmt.Errorf("%d objects still awaiting disposal after %s", t.Counts().Outstanding(), wait)
		case <-tick.C:
		}
	}
}
