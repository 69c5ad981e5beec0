package vdom

// Backend is the target a Patcher drives. The patch algorithms never
// touch real nodes directly; every structural or attribute change goes
// through one of these operations. pkg/dom implements an in-memory
// document, pkg/live implements a recording backend that turns the same
// operations into wire patches.
type Backend interface {
	// Node creation. The vnode is passed alongside the tag so backends
	// that assign identities (hydration IDs) can inspect it.
	CreateElement(tag string, v *VNode) Node
	CreateText(text string) Node
	CreateComment(text string) Node

	// Tree structure. A nil ref means append.
	InsertBefore(parent, node, ref Node)
	AppendChild(parent, child Node)
	RemoveChild(parent, child Node)
	ParentNode(node Node) Node
	NextSibling(node Node) Node
	TagName(node Node) string

	// Content and attributes.
	SetText(node Node, text string)
	SetAttribute(node Node, key, value string)
	RemoveAttribute(node Node, key string)

	// Event listeners. Handlers are opaque to the vdom; backends store
	// or register them however their event delivery works.
	SetListener(node Node, event string, handler any)
	RemoveListener(node Node, event string)
}
