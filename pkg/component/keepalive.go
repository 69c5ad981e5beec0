package component

import (
	"github.com/vireo-ui/vireo/pkg/reactive"
	"github.com/vireo-ui/vireo/pkg/vdom"
)

// KeepAliveCache retains component instances across renders that drop
// them from the tree. A wrapped vnode whose component leaves the tree
// is deactivated instead of destroyed, keeping its state and detached
// nodes; when a later render produces the same component again, the
// live instance is re-adopted and re-inserted. Entries are keyed by
// component name plus vnode key and evicted least-recently-rendered
// first once the cache exceeds its capacity.
type KeepAliveCache struct {
	max   int
	order []string
	live  map[string]*vdom.VNode
}

// NewKeepAlive builds a cache holding up to max instances. A max of
// zero or less means unbounded. Most callers want the per-instance
// caches from Instance.KeepAlive instead, which survive re-renders.
func NewKeepAlive(max int) *KeepAliveCache {
	return &KeepAliveCache{max: max, live: make(map[string]*vdom.VNode)}
}

// Len reports how many instances the cache currently retains.
func (c *KeepAliveCache) Len() int { return len(c.live) }

// Wrap marks a component vnode as cached and re-attaches the retained
// instance when one exists for its key. Non-component vnodes pass
// through untouched; async placeholders do too, silently, since they
// become components once their factory settles.
func (c *KeepAliveCache) Wrap(v *vdom.VNode) *vdom.VNode {
	if v == nil {
		return nil
	}
	if v.Data == nil || v.Data.Hook == nil || v.Data.Hook.Init == nil {
		if v.Kind == vdom.KindElement {
			reactive.Warn("vireo: KeepAlive wraps component vnodes; element %q passes through", v.Tag)
		}
		return v
	}

	key := cacheKey(v)
	if prev, ok := c.live[key]; ok {
		if inst, ok := prev.Instance.(*Instance); ok && inst != nil && !inst.destroyed {
			v.Instance = inst
		}
		c.touch(key)
	} else {
		c.order = append(c.order, key)
		c.prune()
	}
	c.live[key] = v
	v.Data.KeepAlive = true
	return v
}

func cacheKey(v *vdom.VNode) string {
	if v.Key == "" {
		return v.Tag
	}
	return v.Tag + "::" + v.Key
}

func (c *KeepAliveCache) touch(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			c.order = append(c.order, key)
			return
		}
	}
	c.order = append(c.order, key)
}

// prune evicts from the least recently rendered end. The entry just
// added sits at the other end, so the active branch is never evicted
// by its own render.
func (c *KeepAliveCache) prune() {
	if c.max <= 0 {
		return
	}
	for len(c.order) > c.max {
		evict := c.order[0]
		c.order = c.order[1:]
		if prev, ok := c.live[evict]; ok {
			delete(c.live, evict)
			destroyCached(prev)
		}
	}
}

func (c *KeepAliveCache) destroyAll() {
	for _, key := range c.order {
		if v, ok := c.live[key]; ok {
			destroyCached(v)
		}
	}
	c.order = nil
	c.live = make(map[string]*vdom.VNode)
}

func destroyCached(v *vdom.VNode) {
	if inst, ok := v.Instance.(*Instance); ok && inst != nil {
		inst.Destroy()
	}
}
