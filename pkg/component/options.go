package component

import (
	"sync"

	"github.com/vireo-ui/vireo/pkg/reactive"
	"github.com/vireo-ui/vireo/pkg/vdom"
)

// Options declares a component kind. One Options value can back any
// number of instances; everything per-instance comes out of Data.
type Options struct {
	// Name identifies the component in registries, diagnostics, and as
	// the placeholder tag inside parent vnode trees.
	Name string

	// Props lists the property names this component accepts from its
	// parent. Every declared prop exists on the instance from creation,
	// whether or not the parent supplied a value.
	Props []string

	// Data builds the instance's own reactive state. Called once per
	// instance, after props are available.
	Data func(i *Instance) map[string]any

	// Computed declares derived values. Each is backed by a lazy
	// watcher, so it recomputes only when a dependency changed since
	// the last read.
	Computed map[string]func(i *Instance) any

	// Methods are invoked through Instance.Call and Instance.Method.
	Methods map[string]func(i *Instance, args ...any) any

	// Watch declares observers over dotted instance paths ("user.name",
	// "items.0.done"). The first path segment resolves against props,
	// data and computed, in that order.
	Watch map[string]WatchSpec

	// Render produces the instance's vnode tree. An instance without a
	// render function mounts as an empty comment node.
	Render func(i *Instance) *vdom.VNode

	// Components are locally visible child definitions, consulted by
	// Instance.H before the global registry. Values must be *Options or
	// *AsyncFactory.
	Components map[string]any

	// Lifecycle hooks, all optional. Mounted fires after the instance's
	// tree is attached; for children that means after the whole parent
	// patch, children before parents. Activated and Deactivated fire
	// only for instances cached in a KeepAliveCache.
	BeforeCreate  func(i *Instance)
	Created       func(i *Instance)
	BeforeMount   func(i *Instance)
	Mounted       func(i *Instance)
	BeforeUpdate  func(i *Instance)
	Updated       func(i *Instance)
	BeforeDestroy func(i *Instance)
	Destroyed     func(i *Instance)
	Activated     func(i *Instance)
	Deactivated   func(i *Instance)
}

// WatchSpec configures one declarative watcher.
type WatchSpec struct {
	// Handler receives the new and previous value.
	Handler func(i *Instance, newVal, oldVal any)

	// Deep re-runs the handler on mutations anywhere under the watched
	// value, not just when its identity changes.
	Deep bool

	// Immediate fires the handler once at setup with the current value
	// and a nil previous value.
	Immediate bool

	// Sync runs the handler inline on mutation instead of on the next
	// scheduler flush.
	Sync bool

	// Post defers the handler until after the render watchers in the
	// same flush, so it observes the re-rendered tree.
	Post bool
}

var registry struct {
	mu   sync.RWMutex
	defs map[string]any
}

// Register makes opts resolvable by name from any Instance.H call.
// Registering a name again replaces the previous definition; instances
// already mounted keep the options they were created with.
func Register(opts *Options) {
	if opts == nil || opts.Name == "" {
		reactive.Warn("vireo: Register needs options with a Name")
		return
	}
	registry.mu.Lock()
	if registry.defs == nil {
		registry.defs = make(map[string]any)
	}
	registry.defs[opts.Name] = opts
	registry.mu.Unlock()
}

// RegisterAsync makes an async factory resolvable by name.
func RegisterAsync(name string, f *AsyncFactory) {
	if name == "" || f == nil {
		reactive.Warn("vireo: RegisterAsync needs a name and a factory")
		return
	}
	registry.mu.Lock()
	if registry.defs == nil {
		registry.defs = make(map[string]any)
	}
	registry.defs[name] = f
	registry.mu.Unlock()
}

// Lookup returns the registered definition for name, an *Options or
// *AsyncFactory.
func Lookup(name string) (any, bool) {
	registry.mu.RLock()
	def, ok := registry.defs[name]
	registry.mu.RUnlock()
	return def, ok
}
