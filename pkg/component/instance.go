package component

import (
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/vireo-ui/vireo/pkg/reactive"
	"github.com/vireo-ui/vireo/pkg/vdom"
)

var instanceUID atomic.Uint64

// Instance is a mounted component: reactive state, its watchers, its
// rendered tree and its place in the component hierarchy.
type Instance struct {
	uid    uint64
	opts   *Options
	parent *Instance

	children []*Instance

	data  *reactive.Object
	props *reactive.Object

	// Static name sets, fixed at creation. Root lookups go through
	// these instead of Has so reads of one source never pick up
	// structural deps on another.
	dataKeys map[string]bool
	propKeys map[string]bool

	// updatingProps silences the prop-mutation warning while the parent
	// reconciles props during its own patch.
	updatingProps bool

	computed map[string]*reactive.Watcher
	watchers []*reactive.Watcher

	renderWatcher atomic.Pointer[reactive.Watcher]
	forcePending  atomic.Bool

	listeners    map[string][]*listenerEntry
	nextListener uint64

	slots map[string][]*vdom.VNode
	refs  map[string]vdom.Node

	keepAliveCaches map[string]*KeepAliveCache

	patcher     *vdom.Patcher
	placeholder *vdom.VNode
	vnode       *vdom.VNode
	elm         vdom.Node

	mounted        bool
	beingDestroyed bool
	destroyed      bool
	inactive       bool
	directInactive bool
	everActivated  bool
}

type listenerEntry struct {
	id       uint64
	fn       any
	once     bool
	external bool
}

// newInstance builds and initializes an instance but does not render.
// b carries the props, listeners and slots from the parent's call site;
// nil for roots.
func newInstance(opts *Options, parent *Instance, p *vdom.Patcher, b *binding) *Instance {
	i := &Instance{
		uid:     instanceUID.Add(1),
		opts:    opts,
		parent:  parent,
		patcher: p,
	}
	if parent != nil {
		parent.children = append(parent.children, i)
	}
	if opts.Render == nil {
		reactive.Warn("vireo: component %q has no render function; it mounts as an empty comment", i.Name())
	}

	if b != nil {
		i.slots = b.slots
		i.setExternalListeners(b.listeners)
	}

	i.callHook(opts.BeforeCreate, "beforeCreate")

	var givenProps map[string]any
	if b != nil {
		givenProps = b.props
	}
	i.initProps(givenProps)
	i.initData()
	i.initComputed()
	i.initWatch()

	i.callHook(opts.Created, "created")
	return i
}

// UID returns the instance's creation-ordered identity.
func (i *Instance) UID() uint64 { return i.uid }

// Name returns the component name, or "anonymous" for unnamed options.
func (i *Instance) Name() string {
	if i.opts.Name != "" {
		return i.opts.Name
	}
	return "anonymous"
}

// Parent returns the owning instance, nil for roots.
func (i *Instance) Parent() *Instance { return i.parent }

// Children returns the currently attached child instances.
func (i *Instance) Children() []*Instance {
	out := make([]*Instance, len(i.children))
	copy(out, i.children)
	return out
}

// Data returns the instance's own reactive state.
func (i *Instance) Data() *reactive.Object { return i.data }

// Props returns the parent-owned reactive props.
func (i *Instance) Props() *reactive.Object { return i.props }

// Destroyed reports whether Destroy has completed.
func (i *Instance) Destroyed() bool { return i.destroyed }

func (i *Instance) removeChild(c *Instance) {
	for idx, child := range i.children {
		if child == c {
			i.children = append(i.children[:idx], i.children[idx+1:]...)
			return
		}
	}
}

func (i *Instance) callHook(fn func(*Instance), name string) {
	if fn == nil {
		return
	}
	reactive.SafeCall(func() { fn(i) }, name+" hook of "+strconv.Quote(i.Name()))
}

// ============================================================================
// State setup
// ============================================================================

func (i *Instance) initProps(given map[string]any) {
	declared := i.opts.Props
	i.propKeys = make(map[string]bool, len(declared))
	seed := make(map[string]any, len(declared))
	for _, name := range declared {
		if i.propKeys[name] {
			reactive.Warn("vireo: component %q declares prop %q twice", i.Name(), name)
			continue
		}
		i.propKeys[name] = true
		seed[name] = given[name]
	}

	i.props = reactive.NewObject(seed,
		reactive.Shallow(),
		reactive.ReadOnly(),
		reactive.OnInvalidSet(func(key string) {
			if !i.updatingProps {
				reactive.Warn("vireo: component %q mutated prop %q directly; the parent's next render will overwrite it", i.Name(), key)
			}
		}),
	)
}

func (i *Instance) initData() {
	raw := map[string]any{}
	if i.opts.Data != nil {
		reactive.SafeCall(func() {
			if m := i.opts.Data(i); m != nil {
				raw = m
			}
		}, "data function of "+strconv.Quote(i.Name()))
	}

	i.dataKeys = make(map[string]bool, len(raw))
	for key := range raw {
		if i.propKeys[key] {
			reactive.Warn("vireo: data key %q on %q is shadowed by the prop of the same name", key, i.Name())
		}
		i.dataKeys[key] = true
	}

	i.data = reactive.NewObject(raw)
	i.data.Observer().MarkRoot()
}

func (i *Instance) initComputed() {
	defs := i.opts.Computed
	if len(defs) == 0 {
		return
	}
	i.computed = make(map[string]*reactive.Watcher, len(defs))

	// Sorted so watcher ids, and with them flush order, are stable from
	// run to run.
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if i.propKeys[name] || i.dataKeys[name] {
			reactive.Warn("vireo: computed %q on %q is shadowed by a prop or data key of the same name", name, i.Name())
		}
		fn := defs[name]
		w := reactive.NewWatcher(func() any { return fn(i) }, nil,
			reactive.Lazy(),
			reactive.WithExpression(i.Name()+"."+name),
		)
		i.computed[name] = w
		i.watchers = append(i.watchers, w)
	}
}

func (i *Instance) initWatch() {
	specs := i.opts.Watch
	if len(specs) == 0 {
		return
	}
	paths := make([]string, 0, len(specs))
	for path := range specs {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		spec := specs[path]
		if spec.Handler == nil {
			reactive.Warn("vireo: watch %q on %q has no handler", path, i.Name())
			continue
		}
		handler := spec.Handler
		i.addWatcher(path, func(newVal, oldVal any) { handler(i, newVal, oldVal) }, spec)
	}
}

func (i *Instance) addWatcher(path string, cb func(newVal, oldVal any), spec WatchSpec) *reactive.Watcher {
	wopts := []reactive.WatcherOption{
		reactive.User(),
		reactive.WithExpression(i.Name() + " watch " + strconv.Quote(path)),
	}
	if spec.Deep {
		wopts = append(wopts, reactive.Deep())
	}
	if spec.Sync {
		wopts = append(wopts, reactive.Sync())
	}
	if spec.Post {
		wopts = append(wopts, reactive.Post())
	}

	w := reactive.NewWatcher(func() any { return i.Get(path) }, cb, wopts...)
	i.watchers = append(i.watchers, w)

	if spec.Immediate {
		reactive.SafeCall(func() { cb(w.Value(), nil) }, "immediate watch "+strconv.Quote(path)+" of "+strconv.Quote(i.Name()))
	}
	return w
}

// WatchOption configures a watcher added at runtime through Watch.
type WatchOption func(*WatchSpec)

// WatchDeep re-runs the handler on nested mutations.
func WatchDeep() WatchOption { return func(s *WatchSpec) { s.Deep = true } }

// WatchImmediate fires the handler once at registration.
func WatchImmediate() WatchOption { return func(s *WatchSpec) { s.Immediate = true } }

// WatchSync runs the handler inline instead of through the scheduler.
func WatchSync() WatchOption { return func(s *WatchSpec) { s.Sync = true } }

// WatchPost defers the handler until after render watchers.
func WatchPost() WatchOption { return func(s *WatchSpec) { s.Post = true } }

// Watch observes path and calls handler with the new and previous value
// on change. The returned function stops the watcher.
func (i *Instance) Watch(path string, handler func(newVal, oldVal any), opts ...WatchOption) (unwatch func()) {
	var spec WatchSpec
	for _, opt := range opts {
		opt(&spec)
	}
	w := i.addWatcher(path, handler, spec)
	return func() {
		w.Teardown()
		for idx, ww := range i.watchers {
			if ww == w {
				i.watchers = append(i.watchers[:idx], i.watchers[idx+1:]...)
				return
			}
		}
	}
}

// ============================================================================
// State access
// ============================================================================

func (i *Instance) resolveRoot(name string) (any, bool) {
	if i.propKeys[name] {
		return i.props.Get(name), true
	}
	if i.dataKeys[name] {
		return i.data.Get(name), true
	}
	if _, ok := i.computed[name]; ok {
		return i.Computed(name), true
	}
	return nil, false
}

// Get resolves a dotted path against props, data and computed values.
// Reads register dependencies on the evaluating watcher like any other
// reactive read. Unknown roots warn and return nil; a path that runs
// into a non-container mid-way returns nil silently, so watchers over
// not-yet-populated paths stay quiet until the data appears.
func (i *Instance) Get(path string) any {
	head, rest, _ := strings.Cut(path, ".")
	v, ok := i.resolveRoot(head)
	if !ok {
		reactive.Warn("vireo: component %q has no prop, data key or computed named %q", i.Name(), head)
		return nil
	}
	for rest != "" {
		var seg string
		seg, rest, _ = strings.Cut(rest, ".")
		switch cur := v.(type) {
		case *reactive.Object:
			v = cur.Get(seg)
		case *reactive.List:
			idx, err := strconv.Atoi(seg)
			if err != nil {
				return nil
			}
			// Len tracks the list's structure, so watchers re-run when
			// the index appears or its element is replaced.
			if idx < 0 || idx >= cur.Len() {
				return nil
			}
			v = cur.Get(idx)
		default:
			return nil
		}
	}
	return v
}

// GetString is Get with a string assertion, returning "" for anything
// else.
func (i *Instance) GetString(path string) string {
	s, _ := i.Get(path).(string)
	return s
}

// GetInt is Get with an int assertion, returning 0 for anything else.
func (i *Instance) GetInt(path string) int {
	n, _ := i.Get(path).(int)
	return n
}

// GetBool is Get with a bool assertion, returning false for anything
// else.
func (i *Instance) GetBool(path string) bool {
	b, _ := i.Get(path).(bool)
	return b
}

// Set writes a dotted path. Top-level writes go to the prop or data key
// of that name; writing a prop warns, since the parent owns it. Deeper
// writes resolve the containing Object or List through Get.
func (i *Instance) Set(path string, value any) {
	dot := strings.LastIndex(path, ".")
	if dot < 0 {
		i.setRoot(path, value)
		return
	}

	container := i.Get(path[:dot])
	last := path[dot+1:]
	switch c := container.(type) {
	case *reactive.Object:
		c.Set(last, value)
	case *reactive.List:
		idx, err := strconv.Atoi(last)
		if err != nil {
			reactive.Warn("vireo: list path %q needs a numeric index, got %q", path, last)
			return
		}
		c.Set(idx, value)
	default:
		reactive.Warn("vireo: cannot set %q on %q: parent path is not a container", path, i.Name())
	}
}

func (i *Instance) setRoot(name string, value any) {
	if i.propKeys[name] {
		i.props.Set(name, value)
		return
	}
	if _, ok := i.computed[name]; ok && !i.dataKeys[name] {
		reactive.Warn("vireo: computed %q on %q has no setter", name, i.Name())
		return
	}
	// Unknown keys fall through to data, whose root-state guard rejects
	// runtime injection with its own warning.
	i.data.Set(name, value)
}

// Computed returns the named derived value, recomputing it only when a
// dependency changed since the last read. Reading inside a watcher
// subscribes that watcher to the computed's own dependencies.
func (i *Instance) Computed(name string) any {
	w, ok := i.computed[name]
	if !ok {
		reactive.Warn("vireo: component %q has no computed named %q", i.Name(), name)
		return nil
	}
	if w.Dirty() {
		w.Evaluate()
	}
	if reactive.Tracking() {
		w.DependAll()
	}
	return w.Value()
}

// Method returns the named method bound to this instance, or a warning
// no-op when it does not exist.
func (i *Instance) Method(name string) func(args ...any) any {
	fn, ok := i.opts.Methods[name]
	if !ok {
		reactive.Warn("vireo: component %q has no method named %q", i.Name(), name)
		return func(...any) any { return nil }
	}
	return func(args ...any) any { return fn(i, args...) }
}

// Call invokes the named method with args.
func (i *Instance) Call(name string, args ...any) any {
	return i.Method(name)(args...)
}

// ============================================================================
// Events
// ============================================================================

// Emit fires the named event on every listener: the ones the parent
// bound at the call site and the ones added through On. Listener panics
// are contained and reported.
func (i *Instance) Emit(event string, args ...any) {
	entries := i.listeners[event]
	if len(entries) == 0 {
		return
	}
	fire := make([]*listenerEntry, len(entries))
	copy(fire, entries)

	for _, e := range fire {
		if e.once {
			i.dropListener(event, e.id)
		}
		invokeHandler(e.fn, args, "listener for "+strconv.Quote(event)+" on "+strconv.Quote(i.Name()))
	}
}

// On adds a listener for event. The returned function removes it.
func (i *Instance) On(event string, fn any) (off func()) {
	return i.addListener(event, fn, false)
}

// Once adds a listener that removes itself after its first call.
func (i *Instance) Once(event string, fn any) (off func()) {
	return i.addListener(event, fn, true)
}

func (i *Instance) addListener(event string, fn any, once bool) func() {
	if i.listeners == nil {
		i.listeners = make(map[string][]*listenerEntry)
	}
	i.nextListener++
	id := i.nextListener
	i.listeners[event] = append(i.listeners[event], &listenerEntry{id: id, fn: fn, once: once})
	return func() { i.dropListener(event, id) }
}

func (i *Instance) dropListener(event string, id uint64) {
	entries := i.listeners[event]
	for idx, e := range entries {
		if e.id == id {
			i.listeners[event] = append(entries[:idx], entries[idx+1:]...)
			return
		}
	}
}

// setExternalListeners replaces the parent-bound listener set, keeping
// the ones added through On.
func (i *Instance) setExternalListeners(m map[string]any) {
	if i.listeners == nil {
		if len(m) == 0 {
			return
		}
		i.listeners = make(map[string][]*listenerEntry)
	}
	for event, entries := range i.listeners {
		kept := entries[:0]
		for _, e := range entries {
			if !e.external {
				kept = append(kept, e)
			}
		}
		if len(kept) == 0 {
			delete(i.listeners, event)
		} else {
			i.listeners[event] = kept
		}
	}
	for event, fn := range m {
		i.nextListener++
		i.listeners[event] = append(i.listeners[event], &listenerEntry{id: i.nextListener, fn: fn, external: true})
	}
}

// invokeHandler calls an event handler of any supported shape. Handlers
// take no arguments, a single value, or the full argument list.
func invokeHandler(fn any, args []any, context string) {
	reactive.SafeCall(func() {
		switch h := fn.(type) {
		case func():
			h()
		case func(any):
			var first any
			if len(args) > 0 {
				first = args[0]
			}
			h(first)
		case func(...any):
			h(args...)
		default:
			reactive.Warn("vireo: unsupported handler type %T for %s", fn, context)
		}
	}, context)
}

// ============================================================================
// Refs and slots
// ============================================================================

// CaptureRef returns a ref attribute that records the created backend
// node under name, and forgets it again when the node is destroyed.
//
//	vdom.Input(vdom.Type("text"), i.CaptureRef("query"))
func (i *Instance) CaptureRef(name string) vdom.Attr {
	return vdom.Attr{Key: "ref", Value: func(n vdom.Node, removed bool) {
		if removed {
			if i.refs[name] == n {
				delete(i.refs, name)
			}
			return
		}
		if i.refs == nil {
			i.refs = make(map[string]vdom.Node)
		}
		i.refs[name] = n
	}}
}

// Ref returns the backend node captured under name.
func (i *Instance) Ref(name string) (vdom.Node, bool) {
	n, ok := i.refs[name]
	return n, ok
}

// Slot returns the children the parent passed under name. The empty
// name is the default slot.
func (i *Instance) Slot(name string) []*vdom.VNode {
	if name == "" {
		name = "default"
	}
	return i.slots[name]
}

// DefaultSlot returns the unnamed slot content.
func (i *Instance) DefaultSlot() []*vdom.VNode { return i.Slot("default") }

// HasSlot reports whether the parent passed content under name.
func (i *Instance) HasSlot(name string) bool {
	if name == "" {
		name = "default"
	}
	return len(i.slots[name]) > 0
}

// ============================================================================
// Keep-alive activation
// ============================================================================

// KeepAlive returns this instance's named cache, creating it with the
// given capacity on first use. Later calls ignore max. Render functions
// wrap child vnodes in it to preserve their instances across branch
// switches:
//
//	i.KeepAlive("tabs", 3).Wrap(i.H(currentTab))
func (i *Instance) KeepAlive(site string, max int) *KeepAliveCache {
	if c, ok := i.keepAliveCaches[site]; ok {
		return c
	}
	if i.keepAliveCaches == nil {
		i.keepAliveCaches = make(map[string]*KeepAliveCache)
	}
	c := NewKeepAlive(max)
	i.keepAliveCaches[site] = c
	return c
}

func (i *Instance) queueActivation() {
	i.inactive = false
	reactive.QueueActivated(i)
}

// FlushActivated is called by the scheduler at the end of the flush in
// which this instance was re-inserted from a keep-alive cache.
func (i *Instance) FlushActivated() {
	i.inactive = true
	i.activate(true)
}

func (i *Instance) inInactiveTree() bool {
	for p := i.parent; p != nil; p = p.parent {
		if p.inactive {
			return true
		}
	}
	return false
}

func (i *Instance) activate(direct bool) {
	if direct {
		i.directInactive = false
		if i.inInactiveTree() {
			return
		}
	} else if i.directInactive {
		return
	}
	if i.inactive || !i.everActivated {
		i.inactive = false
		i.everActivated = true
		for _, c := range i.children {
			c.activate(false)
		}
		i.callHook(i.opts.Activated, "activated")
	}
}

func (i *Instance) deactivate(direct bool) {
	if direct {
		i.directInactive = true
		if i.inInactiveTree() {
			return
		}
	}
	if !i.inactive {
		i.inactive = true
		for _, c := range i.children {
			c.deactivate(false)
		}
		i.callHook(i.opts.Deactivated, "deactivated")
	}
}

// ============================================================================
// Teardown
// ============================================================================

// Destroy unmounts the instance: lifecycle hooks fire, every watcher is
// torn down, the rendered tree is removed, and child instances destroy
// recursively through their placeholder hooks. Safe to call again.
func (i *Instance) Destroy() {
	if i.beingDestroyed {
		return
	}
	i.callHook(i.opts.BeforeDestroy, "beforeDestroy")
	i.beingDestroyed = true

	if i.parent != nil && !i.parent.beingDestroyed {
		i.parent.removeChild(i)
	}

	if w := i.renderWatcher.Load(); w != nil {
		w.Teardown()
	}
	for _, w := range i.watchers {
		w.Teardown()
	}
	if i.data != nil {
		i.data.Observer().UnmarkRoot()
	}

	i.destroyed = true
	if i.vnode != nil {
		i.patcher.Patch(i.vnode, nil)
		i.vnode = nil
	}
	for _, c := range i.keepAliveCaches {
		c.destroyAll()
	}

	i.callHook(i.opts.Destroyed, "destroyed")

	i.listeners = nil
	i.refs = nil
	i.slots = nil
	i.placeholder = nil
	i.elm = nil
}
