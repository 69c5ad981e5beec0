package reactive

import "sync"

// nextTickState accumulates callbacks for the next task-loop drain.
// Callbacks registered while a drain is pending join the same batch, so
// a storm of NextTick calls costs one loop task.
var nextTickState struct {
	mu        sync.Mutex
	callbacks []func()
	pending   bool
}

// NextTick runs fn on the task loop after the pending scheduler flush
// (if any) completes. Because the scheduler defers its own flush through
// the same mechanism, a callback registered after a state write observes
// the post-flush world: watchers have run and patches have been applied.
func NextTick(fn func()) {
	nextTickState.mu.Lock()
	nextTickState.callbacks = append(nextTickState.callbacks, fn)
	schedule := !nextTickState.pending
	if schedule {
		nextTickState.pending = true
	}
	nextTickState.mu.Unlock()

	if schedule {
		loop.post(flushNextTickCallbacks)
	}
}

func flushNextTickCallbacks() {
	nextTickState.mu.Lock()
	cbs := nextTickState.callbacks
	nextTickState.callbacks = nil
	nextTickState.pending = false
	nextTickState.mu.Unlock()

	for _, cb := range cbs {
		safeCall(cb, "nextTick")
	}
}
