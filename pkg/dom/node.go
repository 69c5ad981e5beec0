package dom

import (
	"strings"
)

// Node is implemented by the three in-memory node types: *Element,
// *Text and *Comment.
type Node interface {
	// Parent returns the containing element, or nil at the root.
	Parent() *Element

	setParent(*Element)
	serialize(b *strings.Builder)
}

// ============================================================================
// Element
// ============================================================================

// Element is an in-memory element node.
type Element struct {
	tag       string
	parent    *Element
	attrs     map[string]string
	attrOrder []string
	listeners map[string]any
	children  []Node
}

// NewElement builds a detached element. Most elements are created by
// the backend during a patch; this is for tests and document roots.
func NewElement(tag string) *Element {
	return &Element{tag: tag}
}

// TagName returns the element's tag.
func (e *Element) TagName() string { return e.tag }

// Parent returns the containing element.
func (e *Element) Parent() *Element { return e.parent }

func (e *Element) setParent(p *Element) { e.parent = p }

// Attr returns the attribute value and whether it is present.
func (e *Element) Attr(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

// AttrNames returns the attribute names in the order they were first set.
func (e *Element) AttrNames() []string {
	out := make([]string, len(e.attrOrder))
	copy(out, e.attrOrder)
	return out
}

func (e *Element) setAttr(name, value string) {
	if e.attrs == nil {
		e.attrs = make(map[string]string)
	}
	if _, exists := e.attrs[name]; !exists {
		e.attrOrder = append(e.attrOrder, name)
	}
	e.attrs[name] = value
}

func (e *Element) removeAttr(name string) {
	if _, exists := e.attrs[name]; !exists {
		return
	}
	delete(e.attrs, name)
	for i, n := range e.attrOrder {
		if n == name {
			e.attrOrder = append(e.attrOrder[:i], e.attrOrder[i+1:]...)
			break
		}
	}
}

// Listener returns the handler registered for an event, or nil.
func (e *Element) Listener(event string) any {
	return e.listeners[event]
}

// ListenerNames returns the registered event names, sorted.
func (e *Element) ListenerNames() []string {
	out := make([]string, 0, len(e.listeners))
	for name := range e.listeners {
		out = append(out, name)
	}
	sortStrings(out)
	return out
}

func (e *Element) setListener(event string, handler any) {
	if e.listeners == nil {
		e.listeners = make(map[string]any)
	}
	e.listeners[event] = handler
}

func (e *Element) removeListener(event string) {
	delete(e.listeners, event)
}

// Children returns the child nodes in order.
func (e *Element) Children() []Node {
	out := make([]Node, len(e.children))
	copy(out, e.children)
	return out
}

// ChildCount returns the number of child nodes.
func (e *Element) ChildCount() int { return len(e.children) }

// Child returns the i-th child node, or nil when out of range.
func (e *Element) Child(i int) Node {
	if i < 0 || i >= len(e.children) {
		return nil
	}
	return e.children[i]
}

// Append attaches child as the last child, detaching it from any
// previous parent first.
func (e *Element) Append(child Node) {
	e.insertBefore(child, nil)
}

// insertBefore moves child into e's child list before ref. A nil ref
// appends. A ref that is not a child of e also appends; the patcher
// never produces that, but a stale handle should not corrupt the tree.
func (e *Element) insertBefore(child, ref Node) {
	detach(child)
	idx := len(e.children)
	if ref != nil {
		if i := e.indexOf(ref); i >= 0 {
			idx = i
		}
	}
	e.children = append(e.children, nil)
	copy(e.children[idx+1:], e.children[idx:])
	e.children[idx] = child
	child.setParent(e)
}

func (e *Element) removeChild(child Node) {
	if i := e.indexOf(child); i >= 0 {
		e.children = append(e.children[:i], e.children[i+1:]...)
		child.setParent(nil)
	}
}

func (e *Element) indexOf(n Node) int {
	for i, c := range e.children {
		if c == n {
			return i
		}
	}
	return -1
}

func (e *Element) nextSibling() Node {
	if e.parent == nil {
		return nil
	}
	return e.parent.siblingAfter(e)
}

func (e *Element) siblingAfter(n Node) Node {
	i := e.indexOf(n)
	if i < 0 || i+1 >= len(e.children) {
		return nil
	}
	return e.children[i+1]
}

// setText replaces the element's content with a single text node, or
// clears it when text is empty.
func (e *Element) setText(text string) {
	for _, c := range e.children {
		c.setParent(nil)
	}
	e.children = nil
	if text != "" {
		t := &Text{text: text}
		e.children = []Node{t}
		t.parent = e
	}
}

// TextContent returns the concatenated text of the subtree.
func (e *Element) TextContent() string {
	var b strings.Builder
	e.collectText(&b)
	return b.String()
}

func (e *Element) collectText(b *strings.Builder) {
	for _, c := range e.children {
		switch n := c.(type) {
		case *Text:
			b.WriteString(n.text)
		case *Element:
			n.collectText(b)
		}
	}
}

// Query walks the subtree depth-first and returns the first element for
// which pred returns true, or nil.
func (e *Element) Query(pred func(*Element) bool) *Element {
	if pred(e) {
		return e
	}
	for _, c := range e.children {
		if el, ok := c.(*Element); ok {
			if found := el.Query(pred); found != nil {
				return found
			}
		}
	}
	return nil
}

// QueryAll collects every element in the subtree, in document order,
// for which pred returns true.
func (e *Element) QueryAll(pred func(*Element) bool) []*Element {
	var out []*Element
	e.queryAll(pred, &out)
	return out
}

func (e *Element) queryAll(pred func(*Element) bool, out *[]*Element) {
	if pred(e) {
		*out = append(*out, e)
	}
	for _, c := range e.children {
		if el, ok := c.(*Element); ok {
			el.queryAll(pred, out)
		}
	}
}

// ByTag returns the first descendant (or self) with the given tag.
func (e *Element) ByTag(tag string) *Element {
	return e.Query(func(el *Element) bool { return el.tag == tag })
}

// ByID returns the first descendant (or self) whose id attribute
// matches.
func (e *Element) ByID(id string) *Element {
	return e.Query(func(el *Element) bool {
		v, ok := el.attrs["id"]
		return ok && v == id
	})
}

// ============================================================================
// Text and Comment
// ============================================================================

// Text is an in-memory text node.
type Text struct {
	parent *Element
	text   string
}

// Data returns the node's text.
func (t *Text) Data() string { return t.text }

// Parent returns the containing element.
func (t *Text) Parent() *Element { return t.parent }

func (t *Text) setParent(p *Element) { t.parent = p }

// Comment is an in-memory comment node.
type Comment struct {
	parent *Element
	text   string
}

// Data returns the comment's text.
func (c *Comment) Data() string { return c.text }

// Parent returns the containing element.
func (c *Comment) Parent() *Element { return c.parent }

func (c *Comment) setParent(p *Element) { c.parent = p }

func detach(n Node) {
	if p := n.Parent(); p != nil {
		p.removeChild(n)
	}
}

// ============================================================================
// Document
// ============================================================================

// Document is the root of an in-memory tree. Body is where patched
// trees get attached.
type Document struct {
	Body *Element
}

// NewDocument builds an empty document.
func NewDocument() *Document {
	return &Document{Body: NewElement("body")}
}
