package errors

import (
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseRegister Phase = "register" // host function registration
	PhaseDispatch Phase = "dispatch" // UI-side command handling
	PhaseHost     Phase = "host"     // engine host functions
	PhaseContext  Phase = "context"  // scripting context lifecycle
	PhaseConfig   Phase = "config"   // configuration loading
)

// Kind categorizes the error
type Kind string

const (
	KindNotFound      Kind = "not_found"
	KindClosed        Kind = "closed"
	KindUnsupported   Kind = "unsupported"
	KindInvalidInput  Kind = "invalid_input"
	KindInstantiation Kind = "instantiation"
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Value   any
	Cause   error
	Phase   Phase
	Kind    Kind
	Detail  string
	Context uint32
	Object  int64
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Context != 0 || e.Object != 0 {
		b.WriteString(" at context ")
		b.WriteString(strconv.FormatUint(uint64(e.Context), 10))
		if e.Object != 0 {
			b.WriteString(" object ")
			b.WriteString(strconv.FormatInt(e.Object, 10))
		}
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Context sets the scripting context identity
func (b *Builder) Context(id uint32) *Builder {
	b.err.Context = id
	return b
}

// Object sets the bridged object identity
func (b *Builder) Object(id int64) *Builder {
	b.err.Object = id
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// NotFound creates an unknown object error
func NotFound(phase Phase, contextID uint32, objectID int64) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindNotFound,
		Context: contextID,
		Object:  objectID,
		Detail:  "no live object with this identity",
	}
}

// Closed creates an error for operations on a closed context or engine
func Closed(phase Phase, contextID uint32, what string) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindClosed,
		Context: contextID,
		Detail:  what + " is closed",
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Instantiation creates an instantiation error for scripting contexts
func Instantiation(contextID uint32, cause error) *Error {
	return &Error{
		Phase:   PhaseContext,
		Kind:    KindInstantiation,
		Context: contextID,
		Detail:  "instantiate script module",
		Cause:   cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
