// Package errors provides structured error types for the script bridge.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type carries the context and object identities involved,
// a human-readable detail and an optional cause.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDispatch, errors.KindUnsupported).
//		Context(7).
//		Object(42).
//		Detail("no handler for command kind %d", kind).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.NotFound(errors.PhaseHost, 7, 42)
//	err := errors.InvalidInput(errors.PhaseConfig, "loop.interval must be positive")
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
