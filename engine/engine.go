package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/script-bridge/bridge"
	"github.com/wippyai/script-bridge/command"
	"github.com/wippyai/script-bridge/errors"
	"github.com/wippyai/script-bridge/identity"
)

// Command kinds the engine posts besides command.Dispose.
const (
	CommandCreateEventTarget command.Kind = 16
	CommandContextDestroyed  command.Kind = 17
)

// Host function export names.
const (
	FuncContextID          = "context_id"
	FuncNewEventTarget     = "event_target_new"
	FuncRetainEventTarget  = "event_target_retain"
	FuncReleaseEventTarget = "event_target_release"
	FuncForgetEventTarget  = "event_target_forget"
)

// ModulePrefix prefixes the host module name of every context.
const ModulePrefix = "script-bridge/context/"

// Config holds configuration for engine creation
type Config struct {
	// CloseOnContextDone makes host calls observe cancellation of the
	// context.Context they are invoked with.
	CloseOnContextDone bool

	// Script holds extra module fields compiled into every context's script
	// module next to the built-in entry points.
	Script string
}

// Engine creates scripting contexts on a shared wazero runtime.
type Engine struct {
	runtime  wazero.Runtime
	bridge   *bridge.Bridge
	script   string
	contexts map[identity.ContextID]*Context
	nextID   atomic.Uint32
	mu       sync.Mutex
	closed   bool
}

// New creates an engine whose contexts dispose through b.
func New(ctx context.Context, b *bridge.Bridge) *Engine {
	return NewWithConfig(ctx, b, nil)
}

// NewWithConfig creates an engine with custom configuration
func NewWithConfig(ctx context.Context, b *bridge.Bridge, cfg *Config) *Engine {
	runtimeCfg := wazero.NewRuntimeConfig()
	var script string
	if cfg != nil {
		if cfg.CloseOnContextDone {
			runtimeCfg = runtimeCfg.WithCloseOnContextDone(true)
		}
		script = cfg.Script
	}

	return &Engine{
		runtime:  wazero.NewRuntimeWithConfig(ctx, runtimeCfg),
		bridge:   b,
		script:   script,
		contexts: make(map[identity.ContextID]*Context),
	}
}

// Bridge returns the bridge the engine disposes through.
func (e *Engine) Bridge() *bridge.Bridge {
	return e.bridge
}

// NewContext creates a scripting context. It instantiates the context's host
// module and then the script module that imports it.
func (e *Engine) NewContext(ctx context.Context) (*Context, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, errors.Closed(errors.PhaseContext, 0, "engine")
	}
	e.mu.Unlock()

	id := identity.ContextID(e.nextID.Add(1))
	c := &Context{
		engine:  e,
		id:      id,
		objects: make(map[identity.ObjectID]*bridge.Object),
	}

	if err := c.instantiate(ctx, e.runtime, e.script); err != nil {
		return nil, err
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		c.closeModules(ctx)
		return nil, errors.Closed(errors.PhaseContext, uint32(id), "engine")
	}
	e.contexts[id] = c
	e.mu.Unlock()

	Logger().Debug("context created", zap.Uint32("context", uint32(id)))
	return c, nil
}

// Context returns the open context with the given identity.
func (e *Engine) Context(id identity.ContextID) (*Context, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.contexts[id]
	return c, ok
}

// Len returns the number of open contexts.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.contexts)
}

// Close closes every open context and the wazero runtime.
func (e *Engine) Close(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	open := make([]*Context, 0, len(e.contexts))
	for _, c := range e.contexts {
		open = append(open, c)
	}
	e.mu.Unlock()

	var firstErr error
	for _, c := range open {
		if err := c.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := e.runtime.Close(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func (e *Engine) forget(id identity.ContextID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.contexts, id)
}

func moduleName(id identity.ContextID) string {
	return fmt.Sprintf("%s%d", ModulePrefix, id)
}

// i64 and i32 result helpers keep the stack conventions in one place.
func i64Result(stack []uint64, v int64) {
	stack[0] = uint64(v)
}

func boolResult(stack []uint64, ok bool) {
	if ok {
		stack[0] = api.EncodeU32(1)
	} else {
		stack[0] = api.EncodeU32(0)
	}
}
