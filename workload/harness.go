package workload

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/wippyai/script-bridge/bridge"
	"github.com/wippyai/script-bridge/command"
	"github.com/wippyai/script-bridge/engine"
	"github.com/wippyai/script-bridge/identity"
	"github.com/wippyai/script-bridge/resource"
	"github.com/wippyai/script-bridge/uithread"
)

// Mirror is the native state kept on the UI thread for one event target.
type Mirror struct {
	Object  identity.ObjectID
	Context identity.ContextID
	dropped atomic.Bool
}

// Drop implements resource.Dropper.
func (m *Mirror) Drop() {
	m.dropped.Store(true)
}

// Dropped reports whether the mirror has been torn down.
func (m *Mirror) Dropped() bool {
	return m.dropped.Load()
}

// Harness bundles a bridge, engine, UI loop and mirror table.
type Harness struct {
	Bridge  *bridge.Bridge
	Engine  *engine.Engine
	Loop    *uithread.Loop
	Table   *resource.Table
	Tracker *Tracker

	cancel context.CancelFunc
	done   chan error
	mu     sync.Mutex
}

// NewHarness creates a harness. The loop is not started.
func NewHarness(ctx context.Context, opts ...uithread.Option) *Harness {
	b := bridge.New()
	table := resource.NewTable()
	loop := uithread.New(b, opts...)

	loop.Handle(command.Dispose, uithread.DisposeHandler(table, b.Commands()))
	loop.Handle(engine.CommandCreateEventTarget, uithread.CreateHandler(table, func(cmd command.Command) any {
		return &Mirror{Object: cmd.Object, Context: cmd.Context}
	}))
	loop.Handle(engine.CommandContextDestroyed, uithread.ContextHandler(table, b.Commands()))

	return &Harness{
		Bridge:  b,
		Engine:  engine.New(ctx, b),
		Loop:    loop,
		Table:   table,
		Tracker: NewTracker(b),
	}
}

// Start runs the UI loop on its own goroutine. It is a no-op if the loop is
// already started.
func (h *Harness) Start(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		return
	}

	ctx, h.cancel = context.WithCancel(ctx)
	h.done = make(chan error, 1)
	go func() {
		h.done <- h.Loop.Run(ctx)
	}()
}

// Stop stops the UI loop, after its final flush, and closes the engine and
// the mirror table.
func (h *Harness) Stop(ctx context.Context) error {
	h.mu.Lock()
	cancel, done := h.cancel, h.done
	h.cancel = nil
	h.mu.Unlock()

	var loopErr error
	if cancel != nil {
		cancel()
		loopErr = <-done
	}

	if err := h.Engine.Close(ctx); err != nil {
		return err
	}
	if err := h.Table.Close(); err != nil {
		return err
	}
	return loopErr
}
