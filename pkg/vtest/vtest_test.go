package vtest

import (
	"strings"
	"testing"

	"github.com/vireo-ui/vireo/pkg/component"
	"github.com/vireo-ui/vireo/pkg/dom"
	"github.com/vireo-ui/vireo/pkg/vdom"
)

func counterOptions() *component.Options {
	return &component.Options{
		Name: "counter",
		Data: func(i *component.Instance) map[string]any {
			return map[string]any{"count": 0}
		},
		Render: func(i *component.Instance) *vdom.VNode {
			return vdom.Div(
				vdom.Button(
					vdom.OnClick(func() { i.Set("count", i.GetInt("count")+1) }),
					vdom.Text("+"),
				),
				vdom.Span(vdom.Textf("%d", i.GetInt("count"))),
			)
		},
	}
}

func TestRenderToString(t *testing.T) {
	node := vdom.Div(vdom.Class("box"), vdom.Text("hello"))
	html := RenderToString(node)
	if html != `<div class="box">hello</div>` {
		t.Fatalf("RenderToString()=%q", html)
	}
}

func TestExpectHelpers(t *testing.T) {
	node := vdom.Button(vdom.Class("btn-primary"), vdom.Text("Save"))
	ExpectContains(t, node, "Save")
	ExpectNotContains(t, node, "Delete")
	ExpectElement(t, node, "button")
	ExpectAttribute(t, node, "class", "btn-primary")
}

func TestHarness_ClickUpdatesTree(t *testing.T) {
	h := New(t, counterOptions())

	if got := h.Text(); got != "+0" {
		t.Fatalf("initial Text()=%q, want \"+0\"", got)
	}

	h.Click(h.ByTag("button"))
	if got := h.Text(); got != "+1" {
		t.Fatalf("Text() after click=%q, want \"+1\"", got)
	}

	h.Click(h.ByTag("button"))
	if got := h.Text(); got != "+2" {
		t.Fatalf("Text() after second click=%q, want \"+2\"", got)
	}
}

func TestHarness_SetFlushesRender(t *testing.T) {
	h := New(t, counterOptions())

	h.Set("count", 40)
	if !strings.Contains(h.HTML(), ">40</span>") {
		t.Fatalf("HTML()=%q, want count 40 rendered", h.HTML())
	}
}

func TestHarness_Find(t *testing.T) {
	h := New(t, counterOptions())

	btn := h.Find(func(e *dom.Element) bool { return e.TagName() == "button" })
	if btn == nil {
		t.Fatal("Find returned nil for existing button")
	}
	missing := h.Find(func(e *dom.Element) bool { return e.TagName() == "table" })
	if missing != nil {
		t.Fatal("Find returned element for absent tag")
	}
}

func TestCountingBackend_KeyedReversalMovesOnly(t *testing.T) {
	cb := NewCountingBackend(nil)
	p := vdom.NewPatcher(cb)

	old := vdom.Ul(
		vdom.Li(vdom.Key("a"), vdom.Text("a")),
		vdom.Li(vdom.Key("b"), vdom.Text("b")),
		vdom.Li(vdom.Key("c"), vdom.Text("c")),
		vdom.Li(vdom.Key("d"), vdom.Text("d")),
	)
	p.Patch(nil, old)
	cb.Reset()

	next := vdom.Ul(
		vdom.Li(vdom.Key("d"), vdom.Text("d")),
		vdom.Li(vdom.Key("c"), vdom.Text("c")),
		vdom.Li(vdom.Key("b"), vdom.Text("b")),
		vdom.Li(vdom.Key("a"), vdom.Text("a")),
	)
	p.Patch(old, next)

	if cb.Creates != 0 {
		t.Errorf("Creates=%d on pure reversal, want 0", cb.Creates)
	}
	if cb.Removes != 0 {
		t.Errorf("Removes=%d on pure reversal, want 0", cb.Removes)
	}
	if cb.Moves == 0 {
		t.Error("Moves=0 on reversal, want reordering moves")
	}
}
