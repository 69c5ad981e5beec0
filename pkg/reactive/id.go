package reactive

import "sync/atomic"

// globalIDCounter is the source of unique IDs for deps and watchers.
// Watcher IDs double as scheduling priority: lower ID means created
// earlier, flushed earlier.
var globalIDCounter uint64

// nextID returns the next unique ID. IDs are monotonically increasing
// and never reused.
func nextID() uint64 {
	return atomic.AddUint64(&globalIDCounter, 1)
}
