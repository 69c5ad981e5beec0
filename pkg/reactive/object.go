package reactive

import (
	"sort"
	"sync"
)

// containerOptions configures Object and List construction.
type containerOptions struct {
	shallow      bool
	readonly     bool
	onInvalidSet func(key string)
}

// Option configures reactive container construction.
type Option func(*containerOptions)

// Shallow makes the container observe only its own structure. Nested
// maps and slices are stored as-is instead of being converted.
func Shallow() Option {
	return func(c *containerOptions) { c.shallow = true }
}

// ReadOnly rejects ad-hoc key injection and deletion with a warning.
// Existing fields can still be written, but the write fires the
// OnInvalidSet hook, which is how prop containers surface "mutating a
// prop directly" diagnostics.
func ReadOnly() Option {
	return func(c *containerOptions) { c.readonly = true }
}

// OnInvalidSet installs a diagnostic hook that fires before any write to
// an existing field. The write still proceeds.
func OnInvalidSet(fn func(key string)) Option {
	return func(c *containerOptions) { c.onInvalidSet = fn }
}

// field is one reactive slot on an Object.
type field struct {
	dep *Dep

	value any

	// childOb is the Observer of value when value is itself a reactive
	// container. Readers of this field also depend on it, so structural
	// changes inside the child re-run them.
	childOb *Observer

	shallow bool
}

// Object is a reactive string-keyed record. Reads register dependencies
// on the evaluating watcher, writes notify exactly the watchers that
// read the touched field. Nested maps and slices are converted to
// Object and List on the way in.
//
// Writers are expected to be cooperative: the wrapper is safe for
// concurrent readers, but two goroutines racing writes to the same field
// get no ordering guarantees beyond the usual last-write-wins.
type Object struct {
	ob *Observer

	mu     sync.RWMutex
	fields map[string]*field

	// order keeps deterministic key iteration. Construction sorts the
	// seed map's keys; later additions append.
	order []string

	readonly     bool
	onInvalidSet func(key string)
}

// NewObject converts m into a reactive Object. The seed map is not
// retained; nested containers are converted recursively unless Shallow
// is given.
func NewObject(m map[string]any, opts ...Option) *Object {
	var cfg containerOptions
	for _, opt := range opts {
		opt(&cfg)
	}

	o := &Object{
		ob:           newObserver(cfg.shallow),
		fields:       make(map[string]*field, len(m)),
		readonly:     cfg.readonly,
		onInvalidSet: cfg.onInvalidSet,
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		o.defineLocked(k, m[k])
	}
	return o
}

// Observer returns the container-level observer.
func (o *Object) Observer() *Observer { return o.ob }

// defineLocked creates a reactive field. Caller holds o.mu (or has
// exclusive access during construction).
func (o *Object) defineLocked(key string, v any) {
	f := &field{dep: newDep(), shallow: o.ob.shallow}
	f.value, f.childOb = observeField(v, f.shallow)
	o.fields[key] = f
	o.order = append(o.order, key)
}

// observeField prepares a value for storage in a field. Deep fields
// convert plain containers; shallow fields only pick up an Observer the
// value already carries.
func observeField(v any, shallow bool) (any, *Observer) {
	if shallow {
		return v, ObserverOf(v)
	}
	return Observe(v)
}

// Get returns the value of key, registering a dependency on the
// evaluating watcher. Reading an absent key returns nil and records
// nothing; watchers that need to see later injection of the key should
// read through Keys or Has, which track the object's structure.
func (o *Object) Get(key string) any {
	o.mu.RLock()
	f := o.fields[key]
	var v any
	var childOb *Observer
	if f != nil {
		v = f.value
		childOb = f.childOb
	}
	o.mu.RUnlock()

	if f == nil {
		return nil
	}
	if activeWatcher() != nil {
		f.dep.Depend()
		if childOb != nil {
			childOb.dep.Depend()
			if l, ok := v.(*List); ok {
				dependList(l)
			}
		}
	}
	return v
}

// Set writes key. Writing an existing field compares against the current
// value first (NaN-safe) and does nothing when unchanged. Writing a new
// key defines a reactive field and notifies structural subscribers,
// unless the object is read-only or is currently root state of a
// component, both of which warn and drop the write.
func (o *Object) Set(key string, v any) {
	o.mu.RLock()
	f := o.fields[key]
	var same bool
	if f != nil {
		same = sameValue(f.value, v)
	}
	o.mu.RUnlock()

	if f == nil {
		o.setNew(key, v)
		return
	}
	if same {
		return
	}
	if o.onInvalidSet != nil {
		o.onInvalidSet(key)
	}

	o.mu.Lock()
	f.value, f.childOb = observeField(v, f.shallow)
	o.mu.Unlock()

	f.dep.Notify()
}

// setNew handles first-time writes to a key.
func (o *Object) setNew(key string, v any) {
	if o.readonly {
		warn("vireo: set ignored on read-only object (key %q)", key)
		return
	}
	if o.ob.RootCount() > 0 {
		warn("vireo: avoid adding reactive fields to root state at runtime (key %q); declare it when the state is created", key)
		return
	}

	o.mu.Lock()
	if _, exists := o.fields[key]; exists {
		// Raced another definition; retry as a plain write.
		o.mu.Unlock()
		o.Set(key, v)
		return
	}
	o.defineLocked(key, v)
	o.mu.Unlock()

	o.ob.dep.Notify()
}

// Delete removes key and notifies structural subscribers. Deleting from
// read-only objects or root state warns and does nothing, as does
// deleting an absent key.
func (o *Object) Delete(key string) {
	if o.readonly {
		warn("vireo: delete ignored on read-only object (key %q)", key)
		return
	}
	if o.ob.RootCount() > 0 {
		warn("vireo: avoid deleting fields from root state at runtime (key %q); set it to nil instead", key)
		return
	}

	o.mu.Lock()
	if _, exists := o.fields[key]; !exists {
		o.mu.Unlock()
		return
	}
	delete(o.fields, key)
	for i, k := range o.order {
		if k == key {
			o.order = append(o.order[:i], o.order[i+1:]...)
			break
		}
	}
	o.mu.Unlock()

	o.ob.dep.Notify()
}

// Has reports whether key exists, tracking the object's structure so
// watchers re-run when the key is injected or deleted.
func (o *Object) Has(key string) bool {
	if activeWatcher() != nil {
		o.ob.dep.Depend()
	}
	o.mu.RLock()
	_, ok := o.fields[key]
	o.mu.RUnlock()
	return ok
}

// Keys returns the field names in deterministic order, tracking the
// object's structure.
func (o *Object) Keys() []string {
	if activeWatcher() != nil {
		o.ob.dep.Depend()
	}
	o.mu.RLock()
	keys := make([]string, len(o.order))
	copy(keys, o.order)
	o.mu.RUnlock()
	return keys
}

// Len reports the number of fields, tracking the object's structure.
func (o *Object) Len() int {
	if activeWatcher() != nil {
		o.ob.dep.Depend()
	}
	o.mu.RLock()
	n := len(o.fields)
	o.mu.RUnlock()
	return n
}

// fieldDep exposes a field's dep for tests.
func (o *Object) fieldDep(key string) *Dep {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if f := o.fields[key]; f != nil {
		return f.dep
	}
	return nil
}
