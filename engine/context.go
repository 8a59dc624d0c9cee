package engine

import (
	"context"
	"slices"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/script-bridge/bridge"
	"github.com/wippyai/script-bridge/errors"
	"github.com/wippyai/script-bridge/identity"
)

// Context is one scripting context. It owns the wrappers of the event
// targets its script holds.
type Context struct {
	engine  *Engine
	host    api.Module
	module  api.Module
	objects map[identity.ObjectID]*bridge.Object
	mu      sync.Mutex
	id      identity.ContextID
	closed  bool
}

// Identity implements bridge.Context.
func (c *Context) Identity() identity.ContextID {
	return c.id
}

// Module returns the script module of the context.
func (c *Context) Module() api.Module {
	return c.module
}

// HostModule returns the module holding the context's host functions. It
// only serves as the script module's import source.
func (c *Context) HostModule() api.Module {
	return c.host
}

// Call invokes a function exported by the context's script module.
func (c *Context) Call(ctx context.Context, name string, params ...uint64) ([]uint64, error) {
	fn := c.module.ExportedFunction(name)
	if fn == nil {
		return nil, errors.New(errors.PhaseHost, errors.KindNotFound).
			Context(uint32(c.id)).
			Detail("no exported function %q", name).
			Build()
	}
	return fn.Call(ctx, params...)
}

// NewEventTarget constructs a bridged event target owned by the context.
func (c *Context) NewEventTarget() (identity.ObjectID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, errors.Closed(errors.PhaseHost, uint32(c.id), "context")
	}

	b := c.engine.bridge
	o := b.NewObject(c)
	c.objects[o.ID()] = o
	b.Post(c.id, o.ID(), CommandCreateEventTarget, nil)
	return o.ID(), nil
}

// Retain adds a reference to a live event target.
func (c *Context) Retain(id identity.ObjectID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	o, ok := c.objects[id]
	if !ok || !o.Retain() {
		return errors.NotFound(errors.PhaseHost, uint32(c.id), int64(id))
	}
	return nil
}

// Release drops a reference. The event target is disposed when its last
// reference goes.
func (c *Context) Release(id identity.ObjectID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	o, ok := c.objects[id]
	if !ok {
		return errors.NotFound(errors.PhaseHost, uint32(c.id), int64(id))
	}
	o.Release()
	if o.State() != bridge.StateLive {
		delete(c.objects, id)
	}
	return nil
}

// Forget drops the context's wrapper without releasing it, leaving disposal
// to the collector.
func (c *Context) Forget(id identity.ObjectID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.objects[id]; !ok {
		return errors.NotFound(errors.PhaseHost, uint32(c.id), int64(id))
	}
	delete(c.objects, id)
	return nil
}

// Live returns the number of event targets the context still holds.
func (c *Context) Live() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.objects)
}

// Closed reports whether Close has been called.
func (c *Context) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Close disposes every event target the context still holds, tells the UI
// thread the context is gone and closes the script and host modules.
func (c *Context) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true

	ids := make([]identity.ObjectID, 0, len(c.objects))
	for id := range c.objects {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	disposed := 0
	for _, id := range ids {
		if c.objects[id].Dispose() {
			disposed++
		}
	}
	c.objects = nil
	c.mu.Unlock()

	c.engine.bridge.Post(c.id, 0, CommandContextDestroyed, nil)
	c.engine.forget(c.id)

	Logger().Debug("context closed",
		zap.Uint32("context", uint32(c.id)),
		zap.Int("disposed", disposed))

	return c.closeModules(ctx)
}

func (c *Context) closeModules(ctx context.Context) error {
	err := c.module.Close(ctx)
	if herr := c.host.Close(ctx); err == nil {
		err = herr
	}
	return err
}

func (c *Context) instantiate(ctx context.Context, r wazero.Runtime, script string) error {
	host, err := c.buildHost(r).Instantiate(ctx)
	if err != nil {
		return errors.New(errors.PhaseRegister, errors.KindInstantiation).
			Context(uint32(c.id)).
			Cause(err).
			Detail("register host functions").
			Build()
	}

	bin, err := compileScript(c.id, script)
	if err != nil {
		host.Close(ctx)
		return errors.Instantiation(uint32(c.id), err)
	}
	compiled, err := r.CompileModule(ctx, bin)
	if err != nil {
		host.Close(ctx)
		return errors.Instantiation(uint32(c.id), err)
	}
	defer compiled.Close(ctx)

	mod, err := r.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(scriptName(c.id)))
	if err != nil {
		host.Close(ctx)
		return errors.Instantiation(uint32(c.id), err)
	}

	c.host = host
	c.module = mod
	return nil
}

func (c *Context) buildHost(r wazero.Runtime) wazero.HostModuleBuilder {
	builder := r.NewHostModuleBuilder(moduleName(c.id))

	builder = builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
			stack[0] = api.EncodeU32(uint32(c.id))
		}), nil, []api.ValueType{api.ValueTypeI32}).
		Export(FuncContextID)

	builder = builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
			id, err := c.NewEventTarget()
			if err != nil {
				Logger().Debug("event_target_new failed", zap.Error(err))
			}
			i64Result(stack, int64(id))
		}), nil, []api.ValueType{api.ValueTypeI64}).
		Export(FuncNewEventTarget)

	builder = builder.NewFunctionBuilder().
		WithGoModuleFunction(c.hostCall(FuncRetainEventTarget, c.Retain),
			[]api.ValueType{api.ValueTypeI64}, []api.ValueType{api.ValueTypeI32}).
		Export(FuncRetainEventTarget)

	builder = builder.NewFunctionBuilder().
		WithGoModuleFunction(c.hostCall(FuncReleaseEventTarget, c.Release),
			[]api.ValueType{api.ValueTypeI64}, []api.ValueType{api.ValueTypeI32}).
		Export(FuncReleaseEventTarget)

	builder = builder.NewFunctionBuilder().
		WithGoModuleFunction(c.hostCall(FuncForgetEventTarget, c.Forget),
			[]api.ValueType{api.ValueTypeI64}, []api.ValueType{api.ValueTypeI32}).
		Export(FuncForgetEventTarget)

	return builder
}

// hostCall adapts an identity-taking method to an (i64) -> i32 host function.
func (c *Context) hostCall(name string, fn func(identity.ObjectID) error) api.GoModuleFunc {
	return func(_ context.Context, _ api.Module, stack []uint64) {
		id := identity.ObjectID(int64(stack[0]))
		err := fn(id)
		if err != nil {
			Logger().Debug(name+" failed", zap.Error(err))
		}
		boolResult(stack, err == nil)
	}
}
