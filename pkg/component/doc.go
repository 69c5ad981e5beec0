// Package component ties the reactive engine to the virtual DOM: an
// Options value declares state, derived values, a render function and
// lifecycle hooks, and Mount turns it into a live Instance whose tree
// re-renders through the scheduler whenever the state it read changes.
//
// # Declaring a component
//
//	counter := &component.Options{
//	    Name: "counter",
//	    Data: func(i *component.Instance) map[string]any {
//	        return map[string]any{"count": 0}
//	    },
//	    Render: func(i *component.Instance) *vdom.VNode {
//	        return vdom.Button(
//	            vdom.OnClick(func() { i.Set("count", i.Get("count").(int)+1) }),
//	            vdom.Textf("clicked %v times", i.Get("count")),
//	        )
//	    },
//	}
//	root := component.Mount(counter, patcher)
//
// # Composition
//
// Children are rendered with Instance.H, which accepts a registered
// name, an *Options, or an *AsyncFactory. Declared props flow down and
// stay owned by the parent; events flow up through Emit; undeclared
// attributes fall through to the child's root element. Slot content is
// passed as ordinary children and rendered wherever the child places
// its DefaultSlot.
//
// Instances are owned by the runtime task loop. Mutating state from
// other goroutines is safe (the reactive layer locks), but Instance
// methods other than Emit, ForceUpdate and NextTick should run on the
// loop, the way event handlers already do.
package component
