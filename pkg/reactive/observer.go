package reactive

import "sync/atomic"

// Observer is attached to every reactive container (Object or List). It
// carries the container-level dep, which fires on structural changes:
// keys added or removed, list mutations. Field-level deps live on the
// fields themselves.
type Observer struct {
	dep *Dep

	// rootCount counts how many component roots use this container as
	// their root state. Ad-hoc key injection is rejected on roots; new
	// root-level state should be declared up front.
	rootCount int32

	// shallow observers do not convert nested containers.
	shallow bool
}

func newObserver(shallow bool) *Observer {
	return &Observer{dep: newDep(), shallow: shallow}
}

// Dep returns the container-level dep.
func (ob *Observer) Dep() *Dep { return ob.dep }

// MarkRoot records that this container is the root state of a component.
func (ob *Observer) MarkRoot() { atomic.AddInt32(&ob.rootCount, 1) }

// UnmarkRoot reverses MarkRoot when the component is destroyed.
func (ob *Observer) UnmarkRoot() { atomic.AddInt32(&ob.rootCount, -1) }

// RootCount reports how many component roots currently hold this
// container as root state.
func (ob *Observer) RootCount() int { return int(atomic.LoadInt32(&ob.rootCount)) }

// ObserverOf returns the Observer attached to v, or nil when v is not a
// reactive container.
func ObserverOf(v any) *Observer {
	switch c := v.(type) {
	case *Object:
		if c != nil {
			return c.ob
		}
	case *List:
		if c != nil {
			return c.ob
		}
	}
	return nil
}

// Observe returns v in reactive form together with its Observer. Values
// that already are reactive containers pass through untouched. Plain
// maps and slices are converted to Object and List wrappers, unless
// conversion is gated off on this goroutine (see toggleObserving), in
// which case they pass through with a nil Observer. All other values
// pass through with a nil Observer.
func Observe(v any) (any, *Observer) {
	switch c := v.(type) {
	case *Object:
		if c == nil {
			return nil, nil
		}
		return c, c.ob
	case *List:
		if c == nil {
			return nil, nil
		}
		return c, c.ob
	case map[string]any:
		if !shouldObserve() {
			return v, nil
		}
		o := NewObject(c)
		return o, o.ob
	case []any:
		if !shouldObserve() {
			return v, nil
		}
		l := NewList(c)
		return l, l.ob
	}
	return v, nil
}
