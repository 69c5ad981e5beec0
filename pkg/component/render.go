package component

import (
	"fmt"
	"strconv"

	"github.com/vireo-ui/vireo/pkg/reactive"
	"github.com/vireo-ui/vireo/pkg/vdom"
)

// Mount creates a root instance for opts and renders it through p. The
// first tree is patched in before Mount returns; the caller attaches
// Elm to its document. Later state changes re-render through the
// scheduler.
func Mount(opts *Options, p *vdom.Patcher) *Instance {
	i := newInstance(opts, nil, p, nil)
	i.mount()
	i.mounted = true
	i.callHook(opts.Mounted, "mounted")
	return i
}

// mount creates the render watcher, which evaluates immediately and
// performs the first patch. Children reach here from their placeholder
// Init hook; their mounted flag and hook fire later, from the Insert
// hook, once the whole parent tree is attached.
func (i *Instance) mount() {
	i.callHook(i.opts.BeforeMount, "beforeMount")

	w := reactive.NewWatcher(
		func() any {
			i.update(i.renderTree())
			return nil
		},
		nil,
		reactive.WithBefore(func() {
			if i.mounted && !i.destroyed {
				i.callHook(i.opts.BeforeUpdate, "beforeUpdate")
			}
		}),
		reactive.WithPostFlush(func() {
			if i.mounted && !i.destroyed {
				i.callHook(i.opts.Updated, "updated")
			}
		}),
		reactive.WithExpression(i.Name()+" render"),
	)
	i.renderWatcher.Store(w)
	// A force requested while the watcher was still being built (an
	// async factory settling mid-render) lands here.
	if i.forcePending.Swap(false) {
		w.Trigger()
	}
}

// update patches the previous tree into next and keeps the placeholder
// in the parent's tree pointing at the current root node.
func (i *Instance) update(next *vdom.VNode) {
	prev := i.vnode
	i.vnode = next
	i.elm = i.patcher.Patch(prev, next)
	i.syncPlaceholderElm()
}

// syncPlaceholderElm propagates the mounted root node upward. When a
// component's whole render is another component, the chain of
// placeholders above shares one backend node.
func (i *Instance) syncPlaceholderElm() {
	ph := i.placeholder
	if ph == nil {
		return
	}
	ph.Elm = i.elm
	if i.parent != nil && i.parent.vnode == ph {
		i.parent.elm = i.elm
		i.parent.syncPlaceholderElm()
	}
}

// renderTree runs the render function with panic containment. A panic
// is reported and the previous tree is kept, so one bad render does not
// tear the UI down.
func (i *Instance) renderTree() *vdom.VNode {
	var out *vdom.VNode
	func() {
		defer func() {
			if r := recover(); r != nil {
				reactive.ReportError(fmt.Errorf("%v", r), "render of "+strconv.Quote(i.Name()))
				out = i.vnode
			}
		}()
		if i.opts.Render != nil {
			out = i.opts.Render(i)
		}
	}()
	if out == nil {
		out = vdom.Comment("")
	}
	out.Ctx = i
	return out
}

// Elm returns the backend node of the rendered root.
func (i *Instance) Elm() vdom.Node { return i.elm }

// VNode returns the currently rendered tree.
func (i *Instance) VNode() *vdom.VNode { return i.vnode }

// ForceUpdate schedules a re-render without a dependency change, the
// escape hatch for state the reactive layer cannot see. Safe from any
// goroutine.
func (i *Instance) ForceUpdate() {
	if w := i.renderWatcher.Load(); w != nil {
		w.Trigger()
		return
	}
	i.forcePending.Store(true)
}

// NextTick runs fn after the pending flush, when the tree reflects
// every state change made so far.
func (i *Instance) NextTick(fn func()) {
	reactive.NextTick(fn)
}
