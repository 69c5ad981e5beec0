package reactive

import (
	"runtime"
	"sync"
)

// trackState holds the per-goroutine tracking state. Each goroutine gets
// its own state so concurrent sessions can evaluate watchers without
// stepping on each other's dependency collection.
type trackState struct {
	// targets is the stack of watchers currently evaluating. The top
	// entry collects dependencies; a nil top entry means tracking is
	// explicitly suspended (see Untracked).
	targets []*Watcher

	// observing gates conversion of plain containers into reactive
	// wrappers. Defaults to true.
	observing bool

	// batchDepth tracks nested Batch() calls. While > 0, synchronous
	// flushing is suppressed until the outermost batch ends.
	batchDepth int
}

// trackStates stores per-goroutine tracking state, keyed by goroutine ID.
var trackStates sync.Map

// getGoroutineID returns a unique identifier for the current goroutine.
// This uses the runtime stack to extract the goroutine ID.
// Note: This is an implementation detail and should not be relied upon externally.
func getGoroutineID() uint64 {
	// Use a buffer to read the stack
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	// The stack starts with "goroutine <id> "
	// Parse the ID from the stack trace
	var id uint64
	for i := 10; i < n; i++ { // Skip "goroutine "
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

// getTrackState returns the tracking state for the current goroutine,
// creating it on first use.
func getTrackState() *trackState {
	gid := getGoroutineID()

	if st, ok := trackStates.Load(gid); ok {
		return st.(*trackState)
	}

	st := &trackState{observing: true}
	trackStates.Store(gid, st)
	return st
}

// pushTarget makes w the active watcher for dependency collection on
// this goroutine. Pass nil to suspend tracking. Every pushTarget must be
// paired with a popTarget.
func pushTarget(w *Watcher) {
	st := getTrackState()
	st.targets = append(st.targets, w)
}

// popTarget restores the previous active watcher.
func popTarget() {
	st := getTrackState()
	if n := len(st.targets); n > 0 {
		st.targets[n-1] = nil
		st.targets = st.targets[:n-1]
	}
}

// activeWatcher returns the watcher currently collecting dependencies on
// this goroutine, or nil when no tracking is active.
func activeWatcher() *Watcher {
	st := getTrackState()
	if n := len(st.targets); n > 0 {
		return st.targets[n-1]
	}
	return nil
}

// Tracking reports whether a watcher is currently collecting
// dependencies on this goroutine. Computed properties use it to decide
// whether to re-export their deps to an outer watcher.
func Tracking() bool {
	return activeWatcher() != nil
}

// Untracked runs fn with dependency tracking suspended. Reads inside fn
// do not register on the surrounding watcher. Writes still notify.
func Untracked(fn func()) {
	pushTarget(nil)
	defer popTarget()
	fn()
}

// shouldObserve reports whether plain containers encountered during
// writes should be converted to reactive wrappers on this goroutine.
func shouldObserve() bool {
	return getTrackState().observing
}

// toggleObserving sets the conversion gate and returns the previous
// value so callers can restore it.
func toggleObserving(on bool) bool {
	st := getTrackState()
	old := st.observing
	st.observing = on
	return old
}
