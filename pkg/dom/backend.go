package dom

import (
	"sort"

	"github.com/vireo-ui/vireo/pkg/vdom"
)

// Backend adapts the in-memory tree to vdom.Backend. It is stateless;
// one Backend can serve any number of documents.
type Backend struct{}

// NewBackend returns a Backend for use with vdom.NewPatcher.
func NewBackend() *Backend { return &Backend{} }

var _ vdom.Backend = (*Backend)(nil)

func (b *Backend) CreateElement(tag string, v *vdom.VNode) vdom.Node {
	return NewElement(tag)
}

func (b *Backend) CreateText(text string) vdom.Node {
	return &Text{text: text}
}

func (b *Backend) CreateComment(text string) vdom.Node {
	return &Comment{text: text}
}

func (b *Backend) InsertBefore(parent, node, ref vdom.Node) {
	p, ok := parent.(*Element)
	if !ok {
		return
	}
	var r Node
	if ref != nil {
		r = ref.(Node)
	}
	p.insertBefore(node.(Node), r)
}

func (b *Backend) AppendChild(parent, child vdom.Node) {
	if p, ok := parent.(*Element); ok {
		p.insertBefore(child.(Node), nil)
	}
}

func (b *Backend) RemoveChild(parent, child vdom.Node) {
	if p, ok := parent.(*Element); ok {
		p.removeChild(child.(Node))
	}
}

func (b *Backend) ParentNode(node vdom.Node) vdom.Node {
	n, ok := node.(Node)
	if !ok {
		return nil
	}
	if p := n.Parent(); p != nil {
		return p
	}
	return nil
}

func (b *Backend) NextSibling(node vdom.Node) vdom.Node {
	n, ok := node.(Node)
	if !ok {
		return nil
	}
	p := n.Parent()
	if p == nil {
		return nil
	}
	if next := p.siblingAfter(n); next != nil {
		return next
	}
	return nil
}

func (b *Backend) TagName(node vdom.Node) string {
	if e, ok := node.(*Element); ok {
		return e.tag
	}
	return ""
}

func (b *Backend) SetText(node vdom.Node, text string) {
	switch n := node.(type) {
	case *Text:
		n.text = text
	case *Comment:
		n.text = text
	case *Element:
		n.setText(text)
	}
}

func (b *Backend) SetAttribute(node vdom.Node, key, value string) {
	if e, ok := node.(*Element); ok {
		e.setAttr(key, value)
	}
}

func (b *Backend) RemoveAttribute(node vdom.Node, key string) {
	if e, ok := node.(*Element); ok {
		e.removeAttr(key)
	}
}

func (b *Backend) SetListener(node vdom.Node, event string, handler any) {
	if e, ok := node.(*Element); ok {
		e.setListener(event, handler)
	}
}

func (b *Backend) RemoveListener(node vdom.Node, event string) {
	if e, ok := node.(*Element); ok {
		e.removeListener(event)
	}
}

func sortStrings(s []string) { sort.Strings(s) }
