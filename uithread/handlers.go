package uithread

import (
	"go.uber.org/zap"

	"github.com/wippyai/script-bridge/command"
	"github.com/wippyai/script-bridge/errors"
	"github.com/wippyai/script-bridge/resource"
)

// DisposeHandler removes the mirror named by a dispose command. A missing
// mirror means its context was already torn down, and is not an error. The
// late disposal recreated the context's command queue, so an empty queue of
// a context with no mirrors left is removed from registry again.
func DisposeHandler(table *resource.Table, registry *command.Registry) Handler {
	return func(cmd command.Command) error {
		key := resource.Key{Context: cmd.Context, Object: cmd.Object}
		if _, ok := table.Remove(key); ok {
			return nil
		}

		Logger().Debug("dispose for unknown mirror",
			zap.Uint32("context", uint32(cmd.Context)),
			zap.Int64("object", int64(cmd.Object)))

		if table.ContextLen(cmd.Context) > 0 {
			return nil
		}
		if q, ok := registry.Lookup(cmd.Context); ok && q.Len() == 0 {
			registry.Remove(cmd.Context)
		}
		return nil
	}
}

// CreateHandler inserts the mirror built by factory for each command.
func CreateHandler(table *resource.Table, factory func(command.Command) any) Handler {
	return func(cmd command.Command) error {
		key := resource.Key{Context: cmd.Context, Object: cmd.Object}
		if err := table.Insert(key, factory(cmd)); err != nil {
			return errors.New(errors.PhaseDispatch, errors.KindInvalidInput).
				Context(uint32(cmd.Context)).
				Object(int64(cmd.Object)).
				Cause(err).
				Detail("create mirror").
				Build()
		}
		return nil
	}
}

// ContextHandler drops every mirror and the command queue of a context that
// has been destroyed.
func ContextHandler(table *resource.Table, registry *command.Registry) Handler {
	return func(cmd command.Command) error {
		dropped := table.RemoveContext(cmd.Context)
		registry.Remove(cmd.Context)
		Logger().Debug("context released",
			zap.Uint32("context", uint32(cmd.Context)),
			zap.Int("mirrors", dropped))
		return nil
	}
}
