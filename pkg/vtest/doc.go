// Package vtest provides testing helpers for Vireo components.
//
// The package reduces boilerplate in three places: rendering a vnode
// tree to HTML for string assertions, mounting a component against an
// in-memory document and driving it through events and flushes, and
// counting the backend operations a patch performs.
//
// # Render Assertions
//
//	vtest.ExpectContains(t, comp.Render(inst), "Welcome")
//	vtest.ExpectAttribute(t, node, "class", "btn-primary")
//
// # Mounted Components
//
//	h := vtest.New(t, counterOptions())
//	h.Click(h.ByTag("button"))
//	h.Flush()
//	if got := h.Text(); got != "1" { ... }
//
// All state mutation and event dispatch run on the runtime task loop,
// the same confinement the live server uses, so harness tests exercise
// the real flush path.
//
// # Operation Counting
//
//	cb := vtest.NewCountingBackend(nil)
//	p := vdom.NewPatcher(cb)
//	p.Patch(old, next)
//	if cb.Creates != 0 || cb.Moves != 4 { ... }
package vtest
