package reactive

import (
	"sort"
	"sync"
)

// List is a reactive sequence. Every mutating method notifies the
// container-level dep after the mutation lands, and methods that insert
// values (Push, Unshift, Splice, Set) convert the inserted values to
// reactive form first. There is no way to mutate the backing storage
// without notifying.
type List struct {
	ob *Observer

	mu    sync.RWMutex
	items []any
}

// NewList converts items into a reactive List. The seed slice is not
// retained; elements are converted recursively unless Shallow is given.
func NewList(items []any, opts ...Option) *List {
	var cfg containerOptions
	for _, opt := range opts {
		opt(&cfg)
	}

	l := &List{
		ob:    newObserver(cfg.shallow),
		items: make([]any, len(items)),
	}
	for i, v := range items {
		l.items[i] = l.observeElem(v)
	}
	return l
}

// Observer returns the container-level observer.
func (l *List) Observer() *Observer { return l.ob }

func (l *List) observeElem(v any) any {
	if l.ob.shallow {
		return v
	}
	stored, _ := Observe(v)
	return stored
}

// Get returns the element at index i, or nil when out of range. Element
// reads do not track by themselves; iterate via Len/Slice (which track
// the list's structure) or read fields of element Objects (which track
// their own deps).
func (l *List) Get(i int) any {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i < 0 || i >= len(l.items) {
		return nil
	}
	return l.items[i]
}

// Len reports the element count, tracking the list's structure.
func (l *List) Len() int {
	if activeWatcher() != nil {
		l.ob.dep.Depend()
	}
	l.mu.RLock()
	n := len(l.items)
	l.mu.RUnlock()
	return n
}

// Slice returns a snapshot copy of the elements, tracking the list's
// structure and the observers of nested containers the way a deep read
// would.
func (l *List) Slice() []any {
	if activeWatcher() != nil {
		l.ob.dep.Depend()
		dependList(l)
	}
	l.mu.RLock()
	out := make([]any, len(l.items))
	copy(out, l.items)
	l.mu.RUnlock()
	return out
}

// Set writes index i, growing the list when i is past the end. The
// written value is converted to reactive form and structural subscribers
// are notified. Negative indexes are ignored with a warning.
func (l *List) Set(i int, v any) {
	if i < 0 {
		warn("vireo: list index %d out of range", i)
		return
	}

	l.mu.Lock()
	for len(l.items) <= i {
		l.items = append(l.items, nil)
	}
	l.items[i] = l.observeElem(v)
	l.mu.Unlock()

	l.ob.dep.Notify()
}

// Push appends values to the end.
func (l *List) Push(values ...any) {
	l.mu.Lock()
	for _, v := range values {
		l.items = append(l.items, l.observeElem(v))
	}
	l.mu.Unlock()

	l.ob.dep.Notify()
}

// Pop removes and returns the last element, or nil when empty. Notifies
// either way; callers that got a notification saw the method run.
func (l *List) Pop() any {
	l.mu.Lock()
	var v any
	if n := len(l.items); n > 0 {
		v = l.items[n-1]
		l.items[n-1] = nil
		l.items = l.items[:n-1]
	}
	l.mu.Unlock()

	l.ob.dep.Notify()
	return v
}

// Shift removes and returns the first element, or nil when empty.
func (l *List) Shift() any {
	l.mu.Lock()
	var v any
	if len(l.items) > 0 {
		v = l.items[0]
		l.items = append(l.items[:0], l.items[1:]...)
	}
	l.mu.Unlock()

	l.ob.dep.Notify()
	return v
}

// Unshift prepends values to the front.
func (l *List) Unshift(values ...any) {
	if len(values) == 0 {
		l.ob.dep.Notify()
		return
	}

	l.mu.Lock()
	converted := make([]any, len(values), len(values)+len(l.items))
	for i, v := range values {
		converted[i] = l.observeElem(v)
	}
	l.items = append(converted, l.items...)
	l.mu.Unlock()

	l.ob.dep.Notify()
}

// Splice removes deleteCount elements starting at start, inserts values
// in their place, and returns the removed elements. Start is clamped to
// the list bounds; negative start counts from the end.
func (l *List) Splice(start, deleteCount int, values ...any) []any {
	l.mu.Lock()
	n := len(l.items)
	if start < 0 {
		start += n
	}
	if start < 0 {
		start = 0
	}
	if start > n {
		start = n
	}
	if deleteCount < 0 {
		deleteCount = 0
	}
	if deleteCount > n-start {
		deleteCount = n - start
	}

	removed := make([]any, deleteCount)
	copy(removed, l.items[start:start+deleteCount])

	converted := make([]any, len(values))
	for i, v := range values {
		converted[i] = l.observeElem(v)
	}

	next := make([]any, 0, n-deleteCount+len(converted))
	next = append(next, l.items[:start]...)
	next = append(next, converted...)
	next = append(next, l.items[start+deleteCount:]...)
	l.items = next
	l.mu.Unlock()

	l.ob.dep.Notify()
	return removed
}

// Sort reorders the elements with a stable sort and notifies.
func (l *List) Sort(less func(a, b any) bool) {
	l.mu.Lock()
	sort.SliceStable(l.items, func(i, j int) bool {
		return less(l.items[i], l.items[j])
	})
	l.mu.Unlock()

	l.ob.dep.Notify()
}

// Reverse reverses the elements in place and notifies.
func (l *List) Reverse() {
	l.mu.Lock()
	for i, j := 0, len(l.items)-1; i < j; i, j = i+1, j-1 {
		l.items[i], l.items[j] = l.items[j], l.items[i]
	}
	l.mu.Unlock()

	l.ob.dep.Notify()
}

// snapshot returns the backing elements without tracking. Internal
// reads (traverse, dependList) use it to avoid re-entering tracking.
func (l *List) snapshot() []any {
	l.mu.RLock()
	out := make([]any, len(l.items))
	copy(out, l.items)
	l.mu.RUnlock()
	return out
}

// dependList registers the observers of every nested container in l on
// the evaluating watcher. Reading a list through a field getter calls
// this so that structural changes deep inside nested lists re-run the
// reader even though element reads themselves do not track.
func dependList(l *List) {
	for _, e := range l.snapshot() {
		if ob := ObserverOf(e); ob != nil {
			ob.dep.Depend()
		}
		if nested, ok := e.(*List); ok {
			dependList(nested)
		}
	}
}
