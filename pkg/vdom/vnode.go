package vdom

// Kind is the node type discriminator. The set is closed: every consumer
// switches over exactly these three.
type Kind uint8

const (
	KindElement Kind = iota // <div>, <button>, etc.
	KindText                // Plain text node
	KindComment             // Placeholder node (empty branches, async components)
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindComment:
		return "Comment"
	default:
		return "Unknown"
	}
}

// Node is an opaque handle to whatever the Backend created for a vnode.
// Algorithms never inspect it; they hand it back to Backend operations.
type Node any

// VNode is the virtual DOM node.
type VNode struct {
	Kind     Kind
	Tag      string    // Element tag name (e.g. "div")
	Data     *NodeData // Attributes, handlers, hooks; nil for bare nodes
	Children []*VNode
	Text     string // For KindText and KindComment
	Key      string // Reconciliation key
	NS       string // Element namespace ("svg", "math"); backends read it at create time

	// Elm is the backend node this vnode is mounted as. Set by the
	// patcher; carried across patches so unchanged nodes keep their
	// backend identity.
	Elm Node

	// Ctx is the rendering context that produced this vnode, when one
	// exists. Component instances stamp it so event and slot resolution
	// can find their way back.
	Ctx any

	// Component instance mounted at this vnode, if any. Owned by the
	// component layer; the patcher only moves it between trees.
	Instance any

	// Static subtree flags. A static root is created once; later
	// renders hand the patcher a clone, which short-circuits to reusing
	// the mounted subtree.
	IsStatic bool
	IsOnce   bool
	IsCloned bool

	// Async component bookkeeping. Placeholders are comment nodes that
	// reserve the spot until the factory resolves; the factory value
	// itself is compared by identity during reconciliation, so it must
	// be stored as a pointer, never a bare func.
	AsyncFactory       any
	IsAsyncPlaceholder bool
	AsyncFailed        bool
}

// NodeData carries everything about a node that is not structure.
type NodeData struct {
	// Attrs holds attribute values. Values convert to strings when
	// applied; bool false removes the attribute.
	Attrs map[string]any

	// On maps event names ("click") to handlers. Handler invocation is
	// the embedder's business; the vdom only installs and removes them
	// through the Backend.
	On map[string]any

	// Hook carries patch-time lifecycle callbacks. The component layer
	// installs these on component placeholder nodes.
	Hook *Hooks

	// KeepAlive marks a component placeholder whose instance is cached
	// by its owner. Removal deactivates the instance instead of
	// destroying it; the hooks on the placeholder decide which.
	KeepAlive bool

	// Directives are applied through the patcher's directive registry.
	Directives []Directive

	// OnRef, when set, receives the backend node after the vnode is
	// created (removed=false) and again when it is destroyed
	// (removed=true). The component layer uses it for ref capture.
	OnRef func(n Node, removed bool)
}

// Hooks are patch-time lifecycle callbacks carried on a vnode.
type Hooks struct {
	// Init fires when the patcher meets the vnode for the first time,
	// before any backend node exists. Component mounting happens here.
	Init func(v *VNode)

	// Prepatch fires when an existing vnode is about to be patched into
	// a new one of the same identity.
	Prepatch func(old, new *VNode)

	// Insert fires after the vnode's subtree is attached, once the
	// whole patch completes.
	Insert func(v *VNode)

	// Destroy fires when the vnode is removed from the tree.
	Destroy func(v *VNode)
}

// Directive is a declarative behavior attached to an element.
type Directive struct {
	Name      string
	Value     any
	Arg       string
	Modifiers map[string]bool
}

// DirectiveDef implements a named directive. Any of the callbacks may be
// nil.
type DirectiveDef struct {
	Bind   func(n Node, d Directive)
	Update func(n Node, old, new Directive)
	Unbind func(n Node, d Directive)
}

// textInputTypes are the input types that can be patched into each other
// without replacing the element.
var textInputTypes = map[string]bool{
	"text":     true,
	"number":   true,
	"password": true,
	"search":   true,
	"email":    true,
	"tel":      true,
	"url":      true,
}

// SameVNode reports whether old and new represent the same logical node,
// so the patcher updates in place instead of replacing. Identity is key
// plus async factory plus shape: tag, kind, data-definedness, and for
// inputs a compatible type attribute. An async placeholder also matches
// the resolved node of the same factory unless resolution failed.
func SameVNode(a, b *VNode) bool {
	if a.Key != b.Key {
		return false
	}
	if a.AsyncFactory != b.AsyncFactory {
		return false
	}
	if a.Tag == b.Tag &&
		a.Kind == b.Kind &&
		(a.Data == nil) == (b.Data == nil) &&
		sameInputType(a, b) {
		return true
	}
	return a.IsAsyncPlaceholder && !b.AsyncFailed
}

func sameInputType(a, b *VNode) bool {
	if a.Tag != "input" {
		return true
	}
	typeA := inputType(a)
	typeB := inputType(b)
	return typeA == typeB || (textInputTypes[typeA] && textInputTypes[typeB])
}

func inputType(v *VNode) string {
	if v.Data == nil || v.Data.Attrs == nil {
		return ""
	}
	if t, ok := v.Data.Attrs["type"].(string); ok {
		return t
	}
	return ""
}

// CloneVNode makes a shallow copy sharing children and data, marked as a
// clone. Re-rendering components clone their cached static subtrees so
// the patcher can recognize them and reuse the mounted nodes.
func CloneVNode(v *VNode) *VNode {
	cloned := *v
	cloned.IsCloned = true
	return &cloned
}

// MarkStatic flags v and every descendant as static. Trees built once
// and never changed (headers, icons, boilerplate) skip diffing entirely
// after the first patch.
func MarkStatic(v *VNode) *VNode {
	if v == nil {
		return nil
	}
	v.IsStatic = true
	for _, c := range v.Children {
		MarkStatic(c)
	}
	return v
}

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// EventHandler represents an event handler binding.
type EventHandler struct {
	Event   string // "click", "input", etc.
	Handler any    // Function to call
}
