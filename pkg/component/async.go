package component

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vireo-ui/vireo/pkg/reactive"
	"github.com/vireo-ui/vireo/pkg/vdom"
)

type asyncState uint8

const (
	asyncPending asyncState = iota
	asyncResolved
	asyncFailed
)

// AsyncFactory produces component options on demand. The first render
// that needs the component starts the factory; until it settles, call
// sites render a comment placeholder (or Loading, once Delay passes).
// When the factory settles, every instance that rendered a placeholder
// re-renders, and reconciliation swaps the real component in.
//
// Configure the exported fields before the factory's first render;
// they are read once. Settlement always lands on the runtime task
// loop, so resolve and reject may be called from any goroutine.
type AsyncFactory struct {
	// Loading renders in place of the placeholder once Delay has passed
	// without resolution. Nil keeps the bare placeholder.
	Loading *Options

	// Error renders when the factory rejects or times out. Nil keeps a
	// comment placeholder.
	Error *Options

	// Delay is how long to wait before showing Loading.
	Delay time.Duration

	// Timeout rejects the factory when it has not settled in time.
	// Zero means wait forever.
	Timeout time.Duration

	start func(resolve func(*Options), reject func(error))

	mu         sync.Mutex
	state      asyncState
	resolved   *Options
	err        error
	started    bool
	loadingDue bool
	owners     map[*Instance]struct{}
}

// NewAsync builds a factory around start, which receives resolve and
// reject callbacks and is invoked once, lazily. The loading delay
// defaults to 200ms.
func NewAsync(start func(resolve func(*Options), reject func(error))) *AsyncFactory {
	return &AsyncFactory{
		start:  start,
		Delay:  200 * time.Millisecond,
		owners: make(map[*Instance]struct{}),
	}
}

// Resolved returns the settled options, if any.
func (f *AsyncFactory) Resolved() (*Options, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resolved, f.state == asyncResolved
}

// Err returns the rejection error, if the factory failed.
func (f *AsyncFactory) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// ensure registers owner for re-render on settlement, starts the
// factory on first need, and reports the current display state.
func (f *AsyncFactory) ensure(owner *Instance) (opts *Options, failed, loading bool) {
	f.mu.Lock()
	if f.state == asyncPending && owner != nil {
		if f.owners == nil {
			f.owners = make(map[*Instance]struct{})
		}
		f.owners[owner] = struct{}{}
	}
	start := !f.started && f.state == asyncPending
	if start {
		f.started = true
	}
	f.mu.Unlock()

	if start {
		f.begin()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	switch f.state {
	case asyncResolved:
		return f.resolved, false, false
	case asyncFailed:
		return nil, true, false
	default:
		return nil, false, f.loadingDue && f.Loading != nil
	}
}

func (f *AsyncFactory) begin() {
	if f.Loading != nil {
		if f.Delay <= 0 {
			f.mu.Lock()
			f.loadingDue = true
			f.mu.Unlock()
		} else {
			time.AfterFunc(f.Delay, func() {
				f.mu.Lock()
				pending := f.state == asyncPending
				f.loadingDue = true
				f.mu.Unlock()
				if pending {
					f.notifyOwners(false)
				}
			})
		}
	}
	if f.Timeout > 0 {
		timeout := f.Timeout
		time.AfterFunc(timeout, func() {
			f.fail(fmt.Errorf("timed out after %s", timeout))
		})
	}

	if f.start == nil {
		f.fail(errors.New("factory has no start function"))
		return
	}
	reactive.SafeCall(func() { f.start(f.finish, f.fail) }, "async component factory")
}

func (f *AsyncFactory) finish(opts *Options) {
	if opts == nil {
		f.fail(errors.New("factory resolved with nil options"))
		return
	}
	reactive.PostTask(func() {
		f.mu.Lock()
		if f.state != asyncPending {
			f.mu.Unlock()
			return
		}
		f.state = asyncResolved
		f.resolved = opts
		f.mu.Unlock()
		f.notifyOwners(true)
	})
}

func (f *AsyncFactory) fail(err error) {
	reactive.PostTask(func() {
		f.mu.Lock()
		if f.state != asyncPending {
			f.mu.Unlock()
			return
		}
		f.state = asyncFailed
		f.err = err
		f.mu.Unlock()
		reactive.Warn("vireo: async component failed: %v", err)
		f.notifyOwners(true)
	})
}

// notifyOwners force-renders every instance holding a placeholder for
// this factory, so reconciliation can swap in the settled state.
func (f *AsyncFactory) notifyOwners(clear bool) {
	f.mu.Lock()
	owners := make([]*Instance, 0, len(f.owners))
	for o := range f.owners {
		owners = append(owners, o)
	}
	if clear {
		f.owners = make(map[*Instance]struct{})
	}
	f.mu.Unlock()

	for _, o := range owners {
		o.ForceUpdate()
	}
}

// asyncVNode renders a factory-backed call site for its current state.
func asyncVNode(f *AsyncFactory, parent *Instance, args []any) *vdom.VNode {
	opts, failed, loading := f.ensure(parent)
	switch {
	case opts != nil:
		v := componentVNode(opts, parent, args)
		v.AsyncFactory = f
		return v

	case failed:
		if f.Error != nil {
			v := componentVNode(f.Error, parent, nil)
			v.AsyncFactory = f
			v.AsyncFailed = true
			return v
		}
		ph := vdom.Comment("async component failed")
		ph.AsyncFactory = f
		ph.AsyncFailed = true
		return ph

	case loading:
		v := componentVNode(f.Loading, parent, nil)
		v.AsyncFactory = f
		return v

	default:
		ph := vdom.Comment("")
		ph.AsyncFactory = f
		ph.IsAsyncPlaceholder = true
		return ph
	}
}
