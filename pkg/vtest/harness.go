package vtest

import (
	"testing"
	"time"

	"github.com/vireo-ui/vireo/pkg/component"
	"github.com/vireo-ui/vireo/pkg/dom"
	"github.com/vireo-ui/vireo/pkg/reactive"
	"github.com/vireo-ui/vireo/pkg/vdom"
)

// Harness is a component mounted on an in-memory document, with
// helpers to dispatch events and observe the tree. Everything that
// mutates component state runs on the runtime task loop, matching the
// confinement the live server imposes.
type Harness struct {
	t    *testing.T
	doc  *dom.Document
	inst *component.Instance
}

// New mounts opts and registers teardown with t.Cleanup.
func New(t *testing.T, opts *component.Options) *Harness {
	t.Helper()
	h := &Harness{t: t, doc: dom.NewDocument()}

	p := vdom.NewPatcher(dom.NewBackend())
	RunOnLoop(func() {
		h.inst = component.Mount(opts, p)
		if elm, ok := h.inst.Elm().(dom.Node); ok {
			h.doc.Body.Append(elm)
		}
	})
	if h.inst == nil {
		t.Fatal("vtest: mount produced no instance")
	}
	t.Cleanup(func() {
		RunOnLoop(func() { h.inst.Destroy() })
	})
	return h
}

// Instance returns the mounted root component.
func (h *Harness) Instance() *component.Instance { return h.inst }

// Document returns the backing document.
func (h *Harness) Document() *dom.Document { return h.doc }

// HTML returns the document body's current markup.
func (h *Harness) HTML() string {
	var html string
	RunOnLoop(func() { html = h.doc.Body.InnerHTML() })
	return html
}

// Text returns the document body's concatenated text content.
func (h *Harness) Text() string {
	var text string
	RunOnLoop(func() { text = h.doc.Body.TextContent() })
	return text
}

// ByTag returns the first element with the given tag, failing the test
// when none exists.
func (h *Harness) ByTag(tag string) *dom.Element {
	h.t.Helper()
	var el *dom.Element
	RunOnLoop(func() { el = h.doc.Body.ByTag(tag) })
	if el == nil {
		h.t.Fatalf("vtest: no <%s> element in document", tag)
	}
	return el
}

// Find returns the first element matching pred, or nil.
func (h *Harness) Find(pred func(*dom.Element) bool) *dom.Element {
	var el *dom.Element
	RunOnLoop(func() { el = h.doc.Body.Query(pred) })
	return el
}

// Set writes a dotted path on the instance and flushes.
func (h *Harness) Set(path string, value any) {
	RunOnLoop(func() { h.inst.Set(path, value) })
	h.Flush()
}

// Click dispatches a click event to el's registered listener and
// flushes the resulting re-render.
func (h *Harness) Click(el *dom.Element) {
	h.t.Helper()
	h.Trigger(el, "click", nil)
}

// Input dispatches an input event carrying value.
func (h *Harness) Input(el *dom.Element, value string) {
	h.t.Helper()
	h.Trigger(el, "input", value)
}

// Trigger invokes the listener registered on el for event. Payload is
// handed to single-argument listeners.
func (h *Harness) Trigger(el *dom.Element, event string, payload any) {
	h.t.Helper()
	var ok bool
	RunOnLoop(func() {
		handler := el.Listener(event)
		if handler == nil {
			return
		}
		ok = true
		switch fn := handler.(type) {
		case func():
			fn()
		case func(any):
			fn(payload)
		default:
			ok = false
		}
	})
	if !ok {
		h.t.Fatalf("vtest: no usable %q listener on <%s>", event, el.TagName())
	}
	h.Flush()
}

// Flush waits until pending scheduler flushes and their follow-on work
// settle.
func (h *Harness) Flush() {
	h.t.Helper()
	Flush(h.t)
}

// RunOnLoop executes fn on the runtime task loop and waits for it.
func RunOnLoop(fn func()) {
	done := make(chan struct{})
	reactive.PostTask(func() {
		fn()
		close(done)
	})
	<-done
}

// Flush drains the task loop until chained scheduler work settles. A
// stalled loop fails the test rather than hanging it.
func Flush(t *testing.T) {
	t.Helper()
	for i := 0; i < 4; i++ {
		done := make(chan struct{})
		reactive.NextTick(func() { close(done) })
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("vtest: task loop stalled")
		}
	}
}
