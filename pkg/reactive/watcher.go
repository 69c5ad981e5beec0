package reactive

import (
	"strconv"
	"sync"
	"sync/atomic"

	mapset "github.com/deckarep/golang-set/v2"
)

// watcherOptions configures Watcher construction.
type watcherOptions struct {
	deep       bool
	user       bool
	lazy       bool
	sync       bool
	post       bool
	before     func()
	onStop     func()
	postFlush  func()
	expression string
}

// WatcherOption configures a Watcher.
type WatcherOption func(*watcherOptions)

// Deep makes the watcher traverse its value after every evaluation, so
// it re-runs on mutations anywhere inside nested containers.
func Deep() WatcherOption {
	return func(o *watcherOptions) { o.deep = true }
}

// User marks the getter and callback as application code: panics in
// either are recovered and routed to the error handler instead of
// unwinding into the runtime.
func User() WatcherOption {
	return func(o *watcherOptions) { o.user = true }
}

// Lazy defers evaluation until the value is requested. Dependency
// changes only mark the watcher dirty. This is the computed-property
// mode.
func Lazy() WatcherOption {
	return func(o *watcherOptions) { o.lazy = true }
}

// Sync makes the watcher run immediately on notification instead of
// going through the scheduler queue.
func Sync() WatcherOption {
	return func(o *watcherOptions) { o.sync = true }
}

// Post assigns the watcher to the post category: it flushes after every
// non-post watcher regardless of creation order. Watchers that need to
// observe the re-rendered tree (focus management, measurements) use it.
func Post() WatcherOption {
	return func(o *watcherOptions) { o.post = true }
}

// WithBefore installs a hook that runs right before each scheduled run.
// Component render watchers use it for the beforeUpdate lifecycle.
func WithBefore(fn func()) WatcherOption {
	return func(o *watcherOptions) { o.before = fn }
}

// WithOnStop installs a hook that runs once when the watcher is torn
// down.
func WithOnStop(fn func()) WatcherOption {
	return func(o *watcherOptions) { o.onStop = fn }
}

// WithPostFlush installs a hook the scheduler calls after the flush in
// which this watcher ran completes. Hooks run in reverse queue order,
// so child components settle before their parents report updated.
func WithPostFlush(fn func()) WatcherOption {
	return func(o *watcherOptions) { o.postFlush = fn }
}

// WithExpression attaches a label used in diagnostics.
func WithExpression(expr string) WatcherOption {
	return func(o *watcherOptions) { o.expression = expr }
}

// Watcher evaluates a getter, records every dep the evaluation touched,
// and re-evaluates when any of them notifies. The callback receives the
// new and previous value when they differ (or unconditionally for
// container values, whose interior can change without their identity
// changing).
type Watcher struct {
	id         uint64
	expression string

	getter func() any
	cb     func(newVal, oldVal any)

	valueMu sync.Mutex
	value   any

	// Two generations of deps. Each evaluation collects into newDeps,
	// then cleanupDeps swaps generations and unsubscribes from deps the
	// new evaluation no longer touched. addDep dedups against both
	// generations so a dep read twice subscribes once.
	depMu     sync.Mutex
	deps      []*Dep
	newDeps   []*Dep
	depIDs    mapset.Set[uint64]
	newDepIDs mapset.Set[uint64]

	deep bool
	user bool
	lazy bool
	sync bool
	post bool

	dirty  atomic.Bool
	active atomic.Bool

	before    func()
	onStop    func()
	postFlush func()
}

// NewWatcher creates a watcher over getter and evaluates it immediately
// unless Lazy is given. The callback may be nil for watchers that exist
// only to drive side effects from their getter (render watchers).
func NewWatcher(getter func() any, cb func(newVal, oldVal any), opts ...WatcherOption) *Watcher {
	var cfg watcherOptions
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.expression == "" {
		cfg.expression = "fn"
	}

	w := &Watcher{
		id:         nextID(),
		expression: cfg.expression,
		getter:     getter,
		cb:         cb,
		depIDs:     mapset.NewThreadUnsafeSet[uint64](),
		newDepIDs:  mapset.NewThreadUnsafeSet[uint64](),
		deep:       cfg.deep,
		user:       cfg.user,
		lazy:       cfg.lazy,
		sync:       cfg.sync,
		post:       cfg.post,
		before:     cfg.before,
		onStop:     cfg.onStop,
		postFlush:  cfg.postFlush,
	}
	w.active.Store(true)
	w.dirty.Store(cfg.lazy)

	if !cfg.lazy {
		w.setValue(w.get())
	}
	return w
}

// NewPathWatcher watches a dotted path into root. Invalid paths warn and
// produce a watcher whose value is always nil, matching the forgiving
// behavior expected of declarative watch blocks.
func NewPathWatcher(root *Object, path string, cb func(newVal, oldVal any), opts ...WatcherOption) *Watcher {
	g := parsePath(path)
	if g == nil {
		warn("vireo: failed to watch path %q: only dotted paths are supported", path)
		g = func(*Object) any { return nil }
	}
	opts = append(opts, WithExpression(path))
	return NewWatcher(func() any { return g(root) }, cb, opts...)
}

// ID returns the watcher's unique identity, which doubles as its flush
// priority.
func (w *Watcher) ID() uint64 { return w.id }

// Expression returns the diagnostic label.
func (w *Watcher) Expression() string { return w.expression }

// Active reports whether the watcher has not been torn down.
func (w *Watcher) Active() bool { return w.active.Load() }

// Value returns the last evaluated value.
func (w *Watcher) Value() any {
	w.valueMu.Lock()
	defer w.valueMu.Unlock()
	return w.value
}

func (w *Watcher) setValue(v any) {
	w.valueMu.Lock()
	w.value = v
	w.valueMu.Unlock()
}

// Dirty reports whether a lazy watcher needs re-evaluation.
func (w *Watcher) Dirty() bool { return w.dirty.Load() }

// get evaluates the getter with this watcher installed as the tracking
// target, then swaps dependency generations. Deep watchers traverse the
// result while still tracking, so the whole subtree registers.
func (w *Watcher) get() any {
	pushTarget(w)
	var value any
	defer func() {
		if w.deep {
			traverse(value)
		}
		popTarget()
		w.cleanupDeps()
	}()

	if w.user {
		func() {
			defer func() {
				if r := recover(); r != nil {
					handleError(recoverToError(r), "getter for watcher "+strconv.Quote(w.expression))
				}
			}()
			value = w.getter()
		}()
		return value
	}

	value = w.getter()
	return value
}

// addDep records d as a dependency of the current evaluation. A dep seen
// for the first time ever also gains w as a subscriber; a dep carried
// over from the previous evaluation is only re-recorded, keeping
// subscription churn at zero for stable dependency sets.
func (w *Watcher) addDep(d *Dep) {
	w.depMu.Lock()
	defer w.depMu.Unlock()

	id := d.id
	if w.newDepIDs.Contains(id) {
		return
	}
	w.newDepIDs.Add(id)
	w.newDeps = append(w.newDeps, d)
	if !w.depIDs.Contains(id) {
		d.AddSub(w)
	}
}

// cleanupDeps unsubscribes from deps the latest evaluation no longer
// touched and promotes the new generation to current.
func (w *Watcher) cleanupDeps() {
	w.depMu.Lock()
	defer w.depMu.Unlock()

	for i := len(w.deps) - 1; i >= 0; i-- {
		d := w.deps[i]
		if !w.newDepIDs.Contains(d.id) {
			d.RemoveSub(w)
		}
	}

	w.deps, w.newDeps = w.newDeps, w.deps[:0]
	w.depIDs, w.newDepIDs = w.newDepIDs, w.depIDs
	w.newDepIDs.Clear()
}

// update reacts to a dep notification. Lazy watchers only go dirty, sync
// watchers run inline, everything else queues for the next flush.
func (w *Watcher) update() {
	if w.lazy {
		w.dirty.Store(true)
		return
	}
	if w.sync {
		w.run()
		return
	}
	queueWatcher(w)
}

// run re-evaluates and fires the callback when the value changed.
// Container values and deep watchers fire unconditionally, since their
// contents can change under an unchanged identity.
func (w *Watcher) run() {
	if !w.active.Load() {
		return
	}

	value := w.get()

	w.valueMu.Lock()
	old := w.value
	changed := !sameValue(value, old) || isContainer(value) || w.deep
	if changed {
		w.value = value
	}
	w.valueMu.Unlock()

	if changed {
		w.invokeCallback(value, old)
	}
}

func (w *Watcher) invokeCallback(value, old any) {
	if w.cb == nil {
		return
	}
	if w.user {
		defer func() {
			if r := recover(); r != nil {
				handleError(recoverToError(r), "callback for watcher "+strconv.Quote(w.expression))
			}
		}()
	}
	w.cb(value, old)
}

// Evaluate computes a lazy watcher's value and clears the dirty flag.
// Computed properties call this on read when dirty.
func (w *Watcher) Evaluate() {
	w.setValue(w.get())
	w.dirty.Store(false)
}

// DependAll re-registers every dep of this watcher on the watcher
// currently evaluating. Computed reads call this so the outer watcher
// subscribes to the computed's sources.
func (w *Watcher) DependAll() {
	w.depMu.Lock()
	deps := make([]*Dep, len(w.deps))
	copy(deps, w.deps)
	w.depMu.Unlock()

	for i := len(deps) - 1; i >= 0; i-- {
		deps[i].Depend()
	}
}

// Trigger schedules a re-run as if a dependency had notified, honoring
// the watcher's lazy/sync/queued mode. Component ForceUpdate goes
// through this.
func (w *Watcher) Trigger() {
	w.update()
}

// Teardown permanently deactivates the watcher and unsubscribes it from
// every dep. Safe to call more than once.
func (w *Watcher) Teardown() {
	if !w.active.CompareAndSwap(true, false) {
		return
	}

	w.depMu.Lock()
	deps := w.deps
	w.deps = nil
	w.newDeps = nil
	w.depMu.Unlock()

	for i := len(deps) - 1; i >= 0; i-- {
		deps[i].RemoveSub(w)
	}

	if w.onStop != nil {
		safeCall(w.onStop, "onStop for watcher "+strconv.Quote(w.expression))
	}
}

// depCount reports current dependency count. Test helper.
func (w *Watcher) depCount() int {
	w.depMu.Lock()
	defer w.depMu.Unlock()
	return len(w.deps)
}
