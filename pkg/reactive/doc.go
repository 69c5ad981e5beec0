// Package reactive implements Vireo's dependency-tracking core: observed
// state containers, watchers, and the batching scheduler that drives
// re-computation.
//
// State lives in Object and List wrappers. Reads performed while a Watcher
// is evaluating are recorded as dependencies; writes notify exactly the
// watchers that recorded the touched field. Notifications are coalesced
// through a global scheduler that flushes on the runtime task loop (or
// inline when async mode is disabled, which tests rely on for determinism).
//
// Basic usage:
//
//	state := reactive.NewObject(map[string]any{"count": 0})
//	w := reactive.NewWatcher(func() any {
//		return state.Get("count")
//	}, func(newVal, oldVal any) {
//		fmt.Println("count:", newVal)
//	})
//	state.Set("count", 1) // watcher callback fires on the next flush
//	defer w.Teardown()
//
// Concurrency model: tracking state is per-goroutine, shared structures
// (Dep subscriber lists, the scheduler queue, Object/List storage) are
// internally locked. A single watcher must not be evaluated from two
// goroutines at once; the scheduler guarantees this for queued watchers by
// running the whole flush on one goroutine.
package reactive
