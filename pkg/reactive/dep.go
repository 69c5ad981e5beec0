package reactive

import (
	"sort"
	"sync"
)

// Dep is a subscriber registry. Every reactive field owns one, and every
// Observer owns one for container-level changes (added/removed keys,
// list mutations). Watchers subscribe to the deps of the values they
// read; writes notify through the dep.
type Dep struct {
	id uint64

	mu sync.Mutex

	// subs holds the subscribed watchers. Unsubscription nils the slot
	// instead of splicing so it stays O(1); nil slots are compacted in
	// bulk after each scheduler flush.
	subs []*Watcher

	// cleanupQueued is set once the dep has a nil slot and is waiting
	// for the post-flush compaction sweep.
	cleanupQueued bool
}

func newDep() *Dep {
	return &Dep{id: nextID()}
}

// ID returns the dep's unique identity. Watchers dedup subscriptions by
// this value.
func (d *Dep) ID() uint64 { return d.id }

// AddSub subscribes a watcher. Callers are expected to have deduplicated
// already (Watcher.addDep checks its own id set before calling), so no
// scan happens here.
func (d *Dep) AddSub(w *Watcher) {
	d.mu.Lock()
	d.subs = append(d.subs, w)
	d.mu.Unlock()
}

// RemoveSub unsubscribes a watcher by nulling its slot. The slot is
// reclaimed by the global compaction sweep at the end of the next flush,
// keeping teardown cheap even for deps with many subscribers.
func (d *Dep) RemoveSub(w *Watcher) {
	d.mu.Lock()
	for i, sub := range d.subs {
		if sub == w {
			d.subs[i] = nil
			break
		}
	}
	queue := !d.cleanupQueued
	if queue {
		d.cleanupQueued = true
	}
	d.mu.Unlock()

	if queue {
		queueDepCleanup(d)
	}
}

// Depend records this dep on the watcher currently evaluating, if any.
// Reads call this; it is a no-op outside watcher evaluation.
func (d *Dep) Depend() {
	w := activeWatcher()
	if w == nil {
		return
	}
	w.addDep(d)
	if IsDebug() {
		if h := currentHooks(); h != nil && h.OnTrack != nil {
			h.OnTrack(d, w)
		}
	}
}

// Notify schedules every live subscriber for re-evaluation. In
// synchronous mode subscribers are notified in ascending watcher-ID
// order so parents run before children even without the scheduler's
// sort pass.
func (d *Dep) Notify() {
	d.mu.Lock()
	subs := make([]*Watcher, 0, len(d.subs))
	for _, sub := range d.subs {
		if sub != nil {
			subs = append(subs, sub)
		}
	}
	d.mu.Unlock()

	if !IsAsync() {
		sort.Slice(subs, func(i, j int) bool { return subs[i].id < subs[j].id })
	}

	hooks := currentHooks()
	debug := IsDebug()
	for _, sub := range subs {
		if debug && hooks != nil && hooks.OnTrigger != nil {
			hooks.OnTrigger(d, sub)
		}
		sub.update()
	}
}

// subCount reports live (non-nil) subscribers. Test helper.
func (d *Dep) subCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, sub := range d.subs {
		if sub != nil {
			n++
		}
	}
	return n
}

// slotCount reports total slots including nil ones. Test helper for the
// compaction sweep.
func (d *Dep) slotCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.subs)
}

// pendingCleanup collects deps that have nil slots awaiting compaction.
var pendingCleanup struct {
	mu   sync.Mutex
	deps []*Dep
}

func queueDepCleanup(d *Dep) {
	pendingCleanup.mu.Lock()
	pendingCleanup.deps = append(pendingCleanup.deps, d)
	pendingCleanup.mu.Unlock()
}

// cleanupDeps compacts the subscriber lists of every dep that lost a
// subscriber since the last sweep. Runs after each scheduler flush.
func cleanupDeps() {
	pendingCleanup.mu.Lock()
	deps := pendingCleanup.deps
	pendingCleanup.deps = nil
	pendingCleanup.mu.Unlock()

	for _, d := range deps {
		d.mu.Lock()
		live := d.subs[:0]
		for _, sub := range d.subs {
			if sub != nil {
				live = append(live, sub)
			}
		}
		// Zero the tail so dropped watchers are collectable.
		for i := len(live); i < len(d.subs); i++ {
			d.subs[i] = nil
		}
		d.subs = live
		d.cleanupQueued = false
		d.mu.Unlock()
	}
}
