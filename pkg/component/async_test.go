package component

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vireo-ui/vireo/pkg/reactive"
	"github.com/vireo-ui/vireo/pkg/vdom"
)

// drainLoop waits until every task queued on the runtime loop so far has
// run, including the flushes they trigger.
func drainLoop(t *testing.T) {
	t.Helper()
	done := make(chan struct{})
	reactive.PostTask(func() { close(done) })
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task loop did not drain in time")
	}
}

func TestAsyncResolveSwapsIn(t *testing.T) {
	var resolve func(*Options)
	f := NewAsync(func(res func(*Options), rej func(error)) {
		resolve = res
	})
	host := &Options{
		Name: "async-host",
		Render: func(i *Instance) *vdom.VNode {
			return vdom.Div(i.H(f))
		},
	}
	doc, _ := testMount(t, host)

	if got, want := doc.Body.InnerHTML(), "<div><!----></div>"; got != want {
		t.Fatalf("pending InnerHTML() = %q, want %q", got, want)
	}
	if _, ok := f.Resolved(); ok {
		t.Fatal("factory reports resolved before resolve was called")
	}

	resolve(&Options{
		Name: "async-panel",
		Render: func(i *Instance) *vdom.VNode {
			return vdom.Span(vdom.Text("loaded"))
		},
	})
	drainLoop(t)

	if got, want := doc.Body.InnerHTML(), "<div><span>loaded</span></div>"; got != want {
		t.Errorf("resolved InnerHTML() = %q, want %q", got, want)
	}
	if _, ok := f.Resolved(); !ok {
		t.Error("factory does not report resolved")
	}
}

func TestAsyncResolvedFactoryMountsDirectly(t *testing.T) {
	f := NewAsync(func(res func(*Options), rej func(error)) {
		res(&Options{
			Name: "eager-panel",
			Render: func(i *Instance) *vdom.VNode {
				return vdom.Span(vdom.Text("ready"))
			},
		})
	})
	host := &Options{
		Name: "eager-host",
		Render: func(i *Instance) *vdom.VNode {
			return vdom.Div(i.H(f))
		},
	}

	// Even a synchronous resolve settles through the task loop, so the
	// first paint shows the placeholder.
	doc, _ := testMount(t, host)
	if got, want := doc.Body.InnerHTML(), "<div><!----></div>"; got != want {
		t.Fatalf("first paint InnerHTML() = %q, want %q", got, want)
	}
	drainLoop(t)
	if got, want := doc.Body.InnerHTML(), "<div><span>ready</span></div>"; got != want {
		t.Fatalf("settled InnerHTML() = %q, want %q", got, want)
	}

	// A second mount of the settled factory skips the placeholder.
	doc2, _ := testMount(t, host)
	if got, want := doc2.Body.InnerHTML(), "<div><span>ready</span></div>"; got != want {
		t.Errorf("second mount InnerHTML() = %q, want %q", got, want)
	}
}

func TestAsyncLoadingComponent(t *testing.T) {
	spinnerGone := false
	var resolve func(*Options)
	f := NewAsync(func(res func(*Options), rej func(error)) {
		resolve = res
	})
	f.Delay = 0
	f.Loading = &Options{
		Name:      "async-spinner",
		Destroyed: func(*Instance) { spinnerGone = true },
		Render: func(i *Instance) *vdom.VNode {
			return vdom.Span(vdom.Class("spinner"), vdom.Text("loading"))
		},
	}
	host := &Options{
		Name: "loading-host",
		Render: func(i *Instance) *vdom.VNode {
			return vdom.Div(i.H(f))
		},
	}
	doc, _ := testMount(t, host)

	want := `<div><span class="spinner">loading</span></div>`
	if got := doc.Body.InnerHTML(); got != want {
		t.Fatalf("loading InnerHTML() = %q, want %q", got, want)
	}

	resolve(&Options{
		Name: "loaded-panel",
		Render: func(i *Instance) *vdom.VNode {
			return vdom.Span(vdom.Text("ready"))
		},
	})
	drainLoop(t)

	if got, want := doc.Body.InnerHTML(), "<div><span>ready</span></div>"; got != want {
		t.Errorf("resolved InnerHTML() = %q, want %q", got, want)
	}
	if !spinnerGone {
		t.Error("loading component was not destroyed after resolve")
	}
}

func TestAsyncErrorComponent(t *testing.T) {
	warns := captureWarns(t)
	var reject func(error)
	f := NewAsync(func(res func(*Options), rej func(error)) {
		reject = rej
	})
	f.Error = &Options{
		Name: "async-fallback",
		Render: func(i *Instance) *vdom.VNode {
			return vdom.Span(vdom.Class("error"), vdom.Text("failed"))
		},
	}
	host := &Options{
		Name: "failing-host",
		Render: func(i *Instance) *vdom.VNode {
			return vdom.Div(i.H(f))
		},
	}
	doc, _ := testMount(t, host)

	reject(errors.New("fetch exploded"))
	drainLoop(t)

	want := `<div><span class="error">failed</span></div>`
	if got := doc.Body.InnerHTML(); got != want {
		t.Errorf("failed InnerHTML() = %q, want %q", got, want)
	}
	if err := f.Err(); err == nil || !strings.Contains(err.Error(), "fetch exploded") {
		t.Errorf("Err() = %v, want the rejection error", err)
	}
	found := false
	for _, msg := range warns.list() {
		if strings.Contains(msg, "async component failed") {
			found = true
		}
	}
	if !found {
		t.Errorf("warns = %v, want an async failure warning", warns.list())
	}
}

func TestAsyncTimeout(t *testing.T) {
	captureWarns(t)
	errShown := make(chan struct{})
	f := NewAsync(func(res func(*Options), rej func(error)) {})
	f.Timeout = 5 * time.Millisecond
	f.Error = &Options{
		Name:    "timeout-fallback",
		Mounted: func(*Instance) { close(errShown) },
		Render: func(i *Instance) *vdom.VNode {
			return vdom.Span(vdom.Text("timed out"))
		},
	}
	host := &Options{
		Name: "slow-host",
		Render: func(i *Instance) *vdom.VNode {
			return vdom.Div(i.H(f))
		},
	}
	doc, _ := testMount(t, host)

	select {
	case <-errShown:
	case <-time.After(2 * time.Second):
		t.Fatal("error component did not mount after timeout")
	}
	drainLoop(t)

	if got, want := doc.Body.InnerHTML(), "<div><span>timed out</span></div>"; got != want {
		t.Errorf("InnerHTML() = %q, want %q", got, want)
	}
	if err := f.Err(); err == nil || !strings.Contains(err.Error(), "timed out after") {
		t.Errorf("Err() = %v, want a timeout error", err)
	}
}
