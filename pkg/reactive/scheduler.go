package reactive

import (
	"sort"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
)

// maxUpdateCount is how many times a single watcher may be re-queued
// within one flush before it is considered runaway and abandoned for the
// remainder of that flush.
const maxUpdateCount = 100

// Activatable receives the deferred activation notification for
// components that were woken inside a patch and must run their hook
// after the whole flush settles.
type Activatable interface {
	FlushActivated()
}

// schedulerState is the process-wide flush queue. Exactly one flush runs
// at a time; in async mode it runs on the task loop, in sync mode on
// whichever goroutine triggered it.
type schedulerState struct {
	mu        sync.Mutex
	queue     []*Watcher
	has       mapset.Set[uint64]
	circular  map[uint64]int
	activated []Activatable
	waiting   bool
	flushing  bool
	index     int
}

var sched = &schedulerState{
	has:      mapset.NewThreadUnsafeSet[uint64](),
	circular: make(map[uint64]int),
}

// flushLess is the flush ordering: ascending ID within each category,
// post-category watchers after all others. The flush sort and the
// mid-flush splice must agree on it.
func flushLess(a, b *Watcher) bool {
	if a.post != b.post {
		return !a.post
	}
	return a.id < b.id
}

// queueWatcher enqueues w for the next flush, deduplicating by ID. When
// a flush is already running, the watcher is spliced into the live queue
// at its flush position so ordering still holds; a watcher whose
// position has already been passed runs before the flush ends.
func queueWatcher(w *Watcher) {
	sched.mu.Lock()

	id := w.id
	if sched.has.Contains(id) {
		sched.mu.Unlock()
		return
	}
	sched.has.Add(id)

	if !sched.flushing {
		sched.queue = append(sched.queue, w)
	} else {
		i := len(sched.queue) - 1
		for i > sched.index && flushLess(w, sched.queue[i]) {
			i--
		}
		sched.queue = append(sched.queue, nil)
		copy(sched.queue[i+2:], sched.queue[i+1:])
		sched.queue[i+1] = w
	}

	if sched.waiting {
		sched.mu.Unlock()
		return
	}
	sched.waiting = true
	sched.mu.Unlock()

	if !IsAsync() {
		// Inside a Batch the flush is deferred to the batch end.
		if getTrackState().batchDepth > 0 {
			return
		}
		flushSchedulerQueue()
		return
	}
	NextTick(flushSchedulerQueue)
}

// QueueActivated defers an activation notification to the end of the
// current flush. Activations queued outside a flush fire on the next
// one.
func QueueActivated(a Activatable) {
	sched.mu.Lock()
	sched.activated = append(sched.activated, a)
	sched.mu.Unlock()
}

// flushSchedulerQueue runs every queued watcher in priority order:
// ascending ID within each category, post-category watchers after all
// others. Parents therefore run before children, user watchers before
// the render watchers that consume their effects.
func flushSchedulerQueue() {
	start := time.Now()

	sched.mu.Lock()
	sched.flushing = true
	sort.SliceStable(sched.queue, func(i, j int) bool {
		return flushLess(sched.queue[i], sched.queue[j])
	})
	queued := len(sched.queue)
	sched.mu.Unlock()

	if h := currentHooks(); h != nil && h.OnFlushStart != nil {
		h.OnFlushStart(queued)
	}

	ran := 0
	sched.mu.Lock()
	// len is re-read every iteration: watchers queued during the flush
	// splice into the live queue and run in this same pass.
	for sched.index = 0; sched.index < len(sched.queue); sched.index++ {
		w := sched.queue[sched.index]
		sched.has.Remove(w.id)
		sched.mu.Unlock()

		if w.before != nil {
			w.before()
		}
		w.run()
		ran++

		sched.mu.Lock()
		// The watcher re-queued itself during its own run. Count it,
		// and past the threshold drop it for the rest of this flush so
		// one runaway loop cannot starve every other watcher.
		if sched.has.Contains(w.id) {
			sched.circular[w.id]++
			if sched.circular[w.id] > maxUpdateCount {
				sched.removeQueuedLocked(w.id)
				sched.has.Remove(w.id)
				sched.mu.Unlock()

				warn("vireo: possible infinite update loop in watcher %q; suppressing further runs this flush", w.expression)
				if h := currentHooks(); h != nil && h.OnRunaway != nil {
					h.OnRunaway(w)
				}

				sched.mu.Lock()
			}
		}
	}

	flushed := make([]*Watcher, len(sched.queue))
	copy(flushed, sched.queue)
	activated := sched.activated
	sched.activated = nil

	sched.queue = sched.queue[:0]
	sched.has.Clear()
	clear(sched.circular)
	sched.waiting = false
	sched.flushing = false
	sched.index = 0
	sched.mu.Unlock()

	callActivatedHooks(activated)
	callPostFlushHooks(flushed)
	cleanupDeps()

	if h := currentHooks(); h != nil && h.OnFlushEnd != nil {
		h.OnFlushEnd(ran, time.Since(start))
	}
}

// removeQueuedLocked splices the pending entry for id out of the live
// queue. Caller holds sched.mu.
func (s *schedulerState) removeQueuedLocked(id uint64) {
	for i := s.index + 1; i < len(s.queue); i++ {
		if s.queue[i].id == id {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			return
		}
	}
}

// callActivatedHooks fires deferred activations in queue order.
func callActivatedHooks(activated []Activatable) {
	for _, a := range activated {
		a := a
		safeCall(func() { a.FlushActivated() }, "activated hook")
	}
}

// callPostFlushHooks fires post-flush hooks in reverse queue order, so
// children report before their parents.
func callPostFlushHooks(flushed []*Watcher) {
	for i := len(flushed) - 1; i >= 0; i-- {
		if fn := flushed[i].postFlush; fn != nil {
			safeCall(fn, "post-flush hook")
		}
	}
}

// flushPendingSync runs a deferred synchronous flush if one is waiting.
// Called when the outermost Batch ends.
func flushPendingSync() {
	if IsAsync() {
		return
	}
	sched.mu.Lock()
	pending := sched.waiting && !sched.flushing && len(sched.queue) > 0
	sched.mu.Unlock()
	if pending {
		flushSchedulerQueue()
	}
}
