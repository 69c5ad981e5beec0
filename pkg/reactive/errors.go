package reactive

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
)

// ErrInvalidPath is returned when a watch path contains segments that are
// not plain dotted identifiers (see NewPathWatcher).
var ErrInvalidPath = errors.New("vireo: invalid watch path")

// ErrReadOnly is returned by mutation helpers that refuse to touch a
// read-only target.
var ErrReadOnly = errors.New("vireo: target is read-only")

// PanicError wraps a recovered panic value together with the stack that
// produced it, so error handlers can log where a watcher blew up.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in reactive computation: %v", e.Value)
}

// errorHandler receives errors recovered from user-supplied code: watcher
// getters and callbacks, NextTick callbacks, lifecycle hooks. The context
// string identifies the call site ("watcher getter", "nextTick", ...).
var errorHandler atomic.Pointer[func(err error, context string)]

// warnHandler receives non-fatal diagnostics (duplicate keys, runaway
// watchers, rejected root mutations).
var warnHandler atomic.Pointer[func(msg string)]

// SetErrorHandler installs a sink for errors recovered from user code.
// Passing nil restores the default, which logs via slog. The handler must
// not panic; a panicking handler takes down the flush.
func SetErrorHandler(fn func(err error, context string)) {
	if fn == nil {
		errorHandler.Store(nil)
		return
	}
	errorHandler.Store(&fn)
}

// SetWarnHandler installs a sink for diagnostics. Passing nil restores
// the default slog-based handler.
func SetWarnHandler(fn func(msg string)) {
	if fn == nil {
		warnHandler.Store(nil)
		return
	}
	warnHandler.Store(&fn)
}

// handleError routes an error from user code to the installed handler.
// Errors never propagate out of the scheduler: one broken watcher must
// not prevent the rest of the queue from flushing.
func handleError(err error, context string) {
	if h := errorHandler.Load(); h != nil {
		(*h)(err, context)
		return
	}
	var pe *PanicError
	if errors.As(err, &pe) {
		slog.Error("unhandled error in reactive computation",
			"context", context, "err", err, "stack", string(pe.Stack))
		return
	}
	slog.Error("unhandled error in reactive computation", "context", context, "err", err)
}

// warn emits a diagnostic through the installed warn handler.
func warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if h := warnHandler.Load(); h != nil {
		(*h)(msg)
		return
	}
	slog.Warn(msg)
}

// ReportError routes an error from an embedding layer (component
// lifecycle hooks, live session handlers) through the same sink watcher
// errors use, so one installed handler sees everything.
func ReportError(err error, context string) {
	handleError(err, context)
}

// Warn emits a diagnostic through the installed warn handler. Embedding
// layers share the sink so tests capture every diagnostic in one place.
func Warn(format string, args ...any) {
	warn(format, args...)
}

// SafeCall invokes fn and routes any panic to the error handler instead
// of unwinding. Embedding layers wrap lifecycle-style callbacks in it.
func SafeCall(fn func(), context string) {
	safeCall(fn, context)
}

// recoverToError converts a recovered panic value into an error carrying
// the stack trace.
func recoverToError(r any) error {
	if err, ok := r.(error); ok {
		return &PanicError{Value: err, Stack: debug.Stack()}
	}
	return &PanicError{Value: r, Stack: debug.Stack()}
}

// safeCall invokes fn and routes any panic to the error handler instead
// of unwinding. Used for user-supplied callbacks.
func safeCall(fn func(), context string) {
	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			handleError(recoverToError(r), context)
		}
	}()
	fn()
}
