package reactive

import (
	"sync/atomic"
	"time"
)

// asyncMode controls whether the scheduler defers flushes to the task
// loop (true, the default) or flushes synchronously as soon as a watcher
// is queued (false). Synchronous mode exists for tests and for embedders
// that drive their own event loop.
var asyncMode atomic.Bool

// debugMode enables the instrumentation hooks and extra diagnostics.
var debugMode atomic.Bool

func init() {
	asyncMode.Store(true)
}

// SetAsync switches the scheduler between deferred (true) and
// synchronous (false) flushing. Intended to be set once at startup or in
// test setup, not toggled while flushes are in flight.
func SetAsync(on bool) { asyncMode.Store(on) }

// IsAsync reports whether the scheduler defers flushes to the task loop.
func IsAsync() bool { return asyncMode.Load() }

// SetDebug enables instrumentation hooks and extra diagnostics.
func SetDebug(on bool) { debugMode.Store(on) }

// IsDebug reports whether debug instrumentation is enabled.
func IsDebug() bool { return debugMode.Load() }

// DevHooks receives instrumentation callbacks from the reactive core.
// All fields are optional. Hooks run inline on the hot path; keep them
// cheap. They fire only when debug mode is enabled, except the flush
// hooks which always fire so metrics stay accurate in production.
type DevHooks struct {
	// OnTrack fires when a watcher records a dependency.
	OnTrack func(dep *Dep, w *Watcher)

	// OnTrigger fires when a dep notifies a subscriber.
	OnTrigger func(dep *Dep, w *Watcher)

	// OnFlushStart fires when a scheduler flush begins, with the number
	// of watchers queued at that moment.
	OnFlushStart func(queued int)

	// OnFlushEnd fires when a flush completes, with the number of
	// watcher runs performed and the wall time spent.
	OnFlushEnd func(ran int, elapsed time.Duration)

	// OnRunaway fires when a watcher exceeds the re-trigger threshold
	// during a single flush and is abandoned for that flush.
	OnRunaway func(w *Watcher)
}

var devHooks atomic.Pointer[DevHooks]

// SetDevHooks installs instrumentation callbacks. Passing nil removes
// the current hooks.
func SetDevHooks(h *DevHooks) { devHooks.Store(h) }

func currentHooks() *DevHooks { return devHooks.Load() }
