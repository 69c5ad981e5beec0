package component

import (
	"fmt"

	"github.com/vireo-ui/vireo/pkg/reactive"
	"github.com/vireo-ui/vireo/pkg/vdom"
)

// NamedSlot carries children for a named slot of a child component.
// Build one with Slot.
type NamedSlot struct {
	Name     string
	Children []*vdom.VNode
}

// Slot groups children under a slot name for a child invocation:
//
//	i.H("card", component.Slot("header", vdom.Text("Hi")), body...)
func Slot(name string, children ...any) NamedSlot {
	if name == "" {
		name = "default"
	}
	return NamedSlot{Name: name, Children: vdom.Normalize(children...)}
}

// binding is everything a parent hands a child at one call site.
type binding struct {
	props     map[string]any
	listeners map[string]any
	slots     map[string][]*vdom.VNode
}

// H builds a child component vnode. def is a registered name, an
// *Options, or an *AsyncFactory. Args follow the element factories:
// vdom.Attr values become props when declared (undeclared ones fall
// through to the child's root element), vdom.EventHandler values become
// Emit listeners, NamedSlot values fill named slots, and remaining
// children fill the default slot.
func (i *Instance) H(def any, args ...any) *vdom.VNode {
	opts, factory := i.resolveDef(def)
	if factory != nil {
		return asyncVNode(factory, i, args)
	}
	if opts == nil {
		name := fmt.Sprintf("%v", def)
		reactive.Warn("vireo: component %q renders unknown component %q", i.Name(), name)
		return vdom.Comment("unknown component " + name)
	}
	return componentVNode(opts, i, args)
}

func (i *Instance) resolveDef(def any) (*Options, *AsyncFactory) {
	switch d := def.(type) {
	case *Options:
		return d, nil
	case *AsyncFactory:
		return nil, d
	case string:
		if local, ok := i.opts.Components[d]; ok {
			return castDef(local)
		}
		if global, ok := Lookup(d); ok {
			return castDef(global)
		}
	}
	return nil, nil
}

func castDef(def any) (*Options, *AsyncFactory) {
	switch d := def.(type) {
	case *Options:
		return d, nil
	case *AsyncFactory:
		return nil, d
	default:
		return nil, nil
	}
}

// componentVNode builds the placeholder vnode for one child call site:
// an element node carrying the component hooks, with its children kept
// empty so the patcher never walks into slot content that belongs to
// the child's own tree.
func componentVNode(opts *Options, parent *Instance, args []any) *vdom.VNode {
	b := &binding{}
	var key string
	var onRef func(vdom.Node, bool)
	var attrs map[string]any
	var directives []vdom.Directive
	var children []any

	declared := make(map[string]bool, len(opts.Props))
	for _, name := range opts.Props {
		declared[name] = true
	}

	var consume func(arg any)
	consume = func(arg any) {
		switch v := arg.(type) {
		case nil:
		case vdom.Attr:
			switch {
			case v.Key == "key":
				if s, ok := v.Value.(string); ok {
					key = s
				}
			case v.Key == "ref":
				if fn, ok := v.Value.(func(vdom.Node, bool)); ok {
					onRef = fn
				}
			case v.Key == "directive":
				if d, ok := v.Value.(vdom.Directive); ok {
					directives = append(directives, d)
				}
			case declared[v.Key]:
				if b.props == nil {
					b.props = make(map[string]any)
				}
				b.props[v.Key] = v.Value
			default:
				if attrs == nil {
					attrs = make(map[string]any)
				}
				attrs[v.Key] = v.Value
			}
		case []vdom.Attr:
			for _, a := range v {
				consume(a)
			}
		case vdom.EventHandler:
			if v.Event == "" || v.Handler == nil {
				return
			}
			if b.listeners == nil {
				b.listeners = make(map[string]any)
			}
			b.listeners[v.Event] = v.Handler
		case NamedSlot:
			if b.slots == nil {
				b.slots = make(map[string][]*vdom.VNode)
			}
			b.slots[v.Name] = append(b.slots[v.Name], v.Children...)
		default:
			children = append(children, arg)
		}
	}
	for _, arg := range args {
		consume(arg)
	}

	if len(children) > 0 {
		if b.slots == nil {
			b.slots = make(map[string][]*vdom.VNode)
		}
		b.slots["default"] = append(b.slots["default"], vdom.Normalize(children...)...)
	}

	data := &vdom.NodeData{
		Attrs:      attrs,
		OnRef:      onRef,
		Directives: directives,
		Hook:       componentHooks(opts, parent, b),
	}
	v := vdom.New(opts.Name, data, nil)
	v.Key = key
	v.Ctx = parent
	return v
}

// componentHooks wires the patch lifecycle of one placeholder to the
// child instance behind it.
func componentHooks(opts *Options, parent *Instance, b *binding) *vdom.Hooks {
	return &vdom.Hooks{
		Init: func(v *vdom.VNode) {
			if inst, ok := v.Instance.(*Instance); ok && !inst.destroyed && v.Data.KeepAlive {
				// Cache hit: re-adopt the live instance and its tree.
				inst.placeholder = v
				inst.updateBinding(b)
				v.Elm = inst.elm
				return
			}
			inst := newInstance(opts, parent, parent.patcher, b)
			v.Instance = inst
			inst.placeholder = v
			inst.mount()
			v.Elm = inst.elm
		},

		Prepatch: func(old, v *vdom.VNode) {
			inst, ok := old.Instance.(*Instance)
			if !ok || inst == nil {
				return
			}
			v.Instance = inst
			inst.placeholder = v
			inst.updateBinding(b)
		},

		Insert: func(v *vdom.VNode) {
			inst, ok := v.Instance.(*Instance)
			if !ok {
				return
			}
			if !inst.mounted {
				inst.mounted = true
				inst.callHook(inst.opts.Mounted, "mounted")
			}
			if v.Data.KeepAlive {
				// During an update the activated hook must wait for the
				// whole flush; on first mount the subtree activates now.
				if parent.mounted {
					inst.queueActivation()
				} else {
					inst.activate(true)
				}
			}
		},

		Destroy: func(v *vdom.VNode) {
			inst, ok := v.Instance.(*Instance)
			if !ok || inst == nil || inst.beingDestroyed {
				return
			}
			if v.Data.KeepAlive {
				inst.deactivate(true)
			} else {
				inst.Destroy()
			}
		},
	}
}

// updateBinding reconciles a new call-site binding into the instance:
// props flow into the reactive props object (notifying only real
// changes), listeners are replaced, and new slot content forces a
// re-render, since slot vnodes are rebuilt by every parent render.
func (i *Instance) updateBinding(b *binding) {
	i.updatingProps = true
	for _, name := range i.opts.Props {
		i.props.Set(name, b.props[name])
	}
	i.updatingProps = false

	i.setExternalListeners(b.listeners)

	if len(i.slots) > 0 || len(b.slots) > 0 {
		i.slots = b.slots
		i.ForceUpdate()
	}
}
