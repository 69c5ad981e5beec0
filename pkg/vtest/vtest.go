package vtest

import (
	"strings"
	"testing"

	"github.com/vireo-ui/vireo/pkg/dom"
	"github.com/vireo-ui/vireo/pkg/render"
	"github.com/vireo-ui/vireo/pkg/vdom"
)

// RenderToString renders a vnode tree and returns the HTML string. A
// render failure returns "".
//
// Example:
//
//	html := vtest.RenderToString(opts.Render(inst))
//	if !strings.Contains(html, "expected text") {
//	    t.Error("missing expected text")
//	}
func RenderToString(node *vdom.VNode) string {
	r := render.NewRenderer(render.RendererConfig{})
	html, err := r.RenderToString(node)
	if err != nil {
		return ""
	}
	return html
}

// ExpectContains asserts that rendered output contains expected.
func ExpectContains(t *testing.T, node *vdom.VNode, expected string) {
	t.Helper()
	html := RenderToString(node)
	if !strings.Contains(html, expected) {
		t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts that rendered output does not contain
// unexpected.
func ExpectNotContains(t *testing.T, node *vdom.VNode, unexpected string) {
	t.Helper()
	html := RenderToString(node)
	if strings.Contains(html, unexpected) {
		t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// ExpectElement asserts that rendered output contains a specific tag.
func ExpectElement(t *testing.T, node *vdom.VNode, tag string) {
	t.Helper()
	html := RenderToString(node)
	if !strings.Contains(html, "<"+tag) {
		t.Errorf("expected rendered output to contain <%s> element, got:\n%s", tag, truncate(html, 500))
	}
}

// ExpectAttribute asserts that rendered output contains an attribute
// with the given value.
func ExpectAttribute(t *testing.T, node *vdom.VNode, attr, value string) {
	t.Helper()
	html := RenderToString(node)
	needle := attr + `="` + value + `"`
	if !strings.Contains(html, needle) {
		t.Errorf("expected attribute %s=%q not found, got:\n%s", attr, value, truncate(html, 500))
	}
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// CountingBackend wraps a vdom.Backend and tallies the structural
// operations flowing through it, so tests can assert on the shape of a
// patch (moves vs. creates) and not just its result.
type CountingBackend struct {
	vdom.Backend

	Creates int // elements, text and comment nodes created
	Inserts int // InsertBefore/AppendChild of a node not yet placed
	Moves   int // InsertBefore/AppendChild of an already-placed node
	Removes int
	SetAttr int
	Texts   int

	placed map[vdom.Node]bool
}

// NewCountingBackend wraps b, which defaults to an in-memory document
// backend when nil.
func NewCountingBackend(b vdom.Backend) *CountingBackend {
	if b == nil {
		b = dom.NewBackend()
	}
	return &CountingBackend{Backend: b, placed: make(map[vdom.Node]bool)}
}

// Reset zeroes the counters but keeps placement knowledge.
func (c *CountingBackend) Reset() {
	c.Creates, c.Inserts, c.Moves, c.Removes, c.SetAttr, c.Texts = 0, 0, 0, 0, 0, 0
}

func (c *CountingBackend) CreateElement(tag string, v *vdom.VNode) vdom.Node {
	c.Creates++
	return c.Backend.CreateElement(tag, v)
}

func (c *CountingBackend) CreateText(text string) vdom.Node {
	c.Creates++
	return c.Backend.CreateText(text)
}

func (c *CountingBackend) CreateComment(text string) vdom.Node {
	c.Creates++
	return c.Backend.CreateComment(text)
}

func (c *CountingBackend) InsertBefore(parent, node, ref vdom.Node) {
	if c.placed[node] {
		c.Moves++
	} else {
		c.Inserts++
		c.placed[node] = true
	}
	c.Backend.InsertBefore(parent, node, ref)
}

func (c *CountingBackend) AppendChild(parent, child vdom.Node) {
	if c.placed[child] {
		c.Moves++
	} else {
		c.Inserts++
		c.placed[child] = true
	}
	c.Backend.AppendChild(parent, child)
}

func (c *CountingBackend) RemoveChild(parent, child vdom.Node) {
	c.Removes++
	delete(c.placed, child)
	c.Backend.RemoveChild(parent, child)
}

func (c *CountingBackend) SetAttribute(node vdom.Node, key, value string) {
	c.SetAttr++
	c.Backend.SetAttribute(node, key, value)
}

func (c *CountingBackend) SetText(node vdom.Node, text string) {
	c.Texts++
	c.Backend.SetText(node, text)
}
