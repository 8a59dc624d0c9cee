package uithread

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/script-bridge/bridge"
	"github.com/wippyai/script-bridge/command"
	"github.com/wippyai/script-bridge/errors"
	"github.com/wippyai/script-bridge/taskqueue"
)

// DefaultInterval is how often Run flushes when no task wakes it earlier.
const DefaultInterval = 16 * time.Millisecond

// Handler applies one command to native state. It runs on the UI thread.
type Handler func(cmd command.Command) error

// Stats counts the work a loop has done.
type Stats struct {
	Flushes  uint64
	Tasks    uint64
	Commands uint64
	Failures uint64
}

// Option configures a Loop.
type Option func(*Loop)

// WithInterval sets the idle flush interval of Run.
func WithInterval(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.interval = d
		}
	}
}

// Loop drains the bridge's queues on the UI thread.
type Loop struct {
	tasks    *taskqueue.Queue
	commands *command.Registry
	handlers map[command.Kind]Handler
	interval time.Duration
	flushes  atomic.Uint64
	ran      atomic.Uint64
	handled  atomic.Uint64
	failures atomic.Uint64
	running  atomic.Bool
	mu       sync.RWMutex
}

// New creates a loop over the queues of b.
func New(b *bridge.Bridge, opts ...Option) *Loop {
	l := &Loop{
		tasks:    b.Tasks(),
		commands: b.Commands(),
		handlers: make(map[command.Kind]Handler),
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Handle registers h for commands of the given kind, replacing any previous
// handler.
func (l *Loop) Handle(kind command.Kind, h Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handlers[kind] = h
}

// Flush drains the task queue, then every command queue, and returns the
// number of tasks and commands processed. It must run on the UI thread.
func (l *Loop) Flush() (tasks, commands int) {
	tasks = l.tasks.Drain()

	for _, q := range l.commands.Snapshot() {
		for _, cmd := range q.Drain() {
			l.dispatch(cmd)
			commands++
		}
	}

	l.flushes.Add(1)
	l.ran.Add(uint64(tasks))
	l.handled.Add(uint64(commands))
	return tasks, commands
}

// Run flushes whenever tasks are registered or the interval elapses, until
// ctx is cancelled. Only one Run may be active per loop.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return errors.InvalidInput(errors.PhaseDispatch, "loop is already running")
	}
	defer l.running.Store(false)

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	Logger().Debug("ui loop started", zap.Duration("interval", l.interval))

	for {
		select {
		case <-ctx.Done():
			tasks, commands := l.Flush()
			Logger().Debug("ui loop stopped",
				zap.Int("finalTasks", tasks),
				zap.Int("finalCommands", commands))
			return nil
		case <-l.tasks.Ready():
			l.Flush()
		case <-ticker.C:
			l.Flush()
		}
	}
}

// Stats returns a snapshot of the loop counters.
func (l *Loop) Stats() Stats {
	return Stats{
		Flushes:  l.flushes.Load(),
		Tasks:    l.ran.Load(),
		Commands: l.handled.Load(),
		Failures: l.failures.Load(),
	}
}

func (l *Loop) dispatch(cmd command.Command) {
	l.mu.RLock()
	h, ok := l.handlers[cmd.Kind]
	l.mu.RUnlock()

	if !ok {
		l.failures.Add(1)
		err := errors.Unsupported(errors.PhaseDispatch, "no handler for command "+cmd.Kind.String())
		err.Context = uint32(cmd.Context)
		err.Object = int64(cmd.Object)
		err.Value = cmd.Kind
		Logger().Warn("dropping command", zap.Error(err))
		return
	}

	if err := h(cmd); err != nil {
		l.failures.Add(1)
		Logger().Warn("command handler failed",
			zap.Uint32("context", uint32(cmd.Context)),
			zap.Int64("object", int64(cmd.Object)),
			zap.Stringer("kind", cmd.Kind),
			zap.Error(err))
	}
}
