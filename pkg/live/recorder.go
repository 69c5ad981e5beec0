package live

import (
	"strconv"
	"strings"

	"github.com/vireo-ui/vireo/pkg/dom"
	"github.com/vireo-ui/vireo/pkg/protocol"
	"github.com/vireo-ui/vireo/pkg/vdom"
)

// Recorder is a vdom.Backend that maintains a server-side document and
// records every mutation of the attached tree as wire patches.
//
// Elements get a hydration ID ("v1", "v2", ...) at creation, carried in
// a data-hid attribute so it survives serialization; the client indexes
// its DOM by the same attribute. The document body is the session root
// and is addressed by the empty ID.
//
// Mutations inside detached subtrees record nothing. The patcher builds
// new trees bottom-up and attaches them last, so a fresh subtree
// arrives as a single InsertBefore patch carrying its rendered HTML
// rather than as one patch per node.
//
// A Recorder is not safe for concurrent use. Sessions confine it to the
// run loop.
type Recorder struct {
	doc      *dom.Document
	base     *dom.Backend
	nextHID  uint64
	patches  []protocol.Patch
	byHID    map[string]*dom.Element
	onRecord func()
}

var _ vdom.Backend = (*Recorder)(nil)

// NewRecorder builds a recorder over doc.
func NewRecorder(doc *dom.Document) *Recorder {
	return &Recorder{
		doc:   doc,
		base:  dom.NewBackend(),
		byHID: map[string]*dom.Element{"": doc.Body},
	}
}

// Document returns the document this recorder mutates.
func (r *Recorder) Document() *dom.Document { return r.doc }

// OnRecord registers fn to run whenever the patch buffer goes from
// empty to non-empty. Sessions use it to arm a flush after the current
// scheduler pass.
func (r *Recorder) OnRecord(fn func()) { r.onRecord = fn }

// Drain returns the recorded patches and resets the buffer.
func (r *Recorder) Drain() []protocol.Patch {
	p := r.patches
	r.patches = nil
	return p
}

// Pending returns the number of undrained patches.
func (r *Recorder) Pending() int { return len(r.patches) }

// Lookup resolves a hydration ID to its element. The empty ID resolves
// to the document body. Removed elements resolve to nil.
func (r *Recorder) Lookup(hid string) *dom.Element { return r.byHID[hid] }

func (r *Recorder) record(p protocol.Patch) {
	wasEmpty := len(r.patches) == 0
	r.patches = append(r.patches, p)
	if wasEmpty && r.onRecord != nil {
		r.onRecord()
	}
}

// attached reports whether n is reachable from the document body.
func (r *Recorder) attached(n dom.Node) bool {
	if e, ok := n.(*dom.Element); ok && e == r.doc.Body {
		return true
	}
	for e := n.Parent(); e != nil; e = e.Parent() {
		if e == r.doc.Body {
			return true
		}
	}
	return false
}

// hidOf returns an element's hydration ID, empty for the body.
func (r *Recorder) hidOf(e *dom.Element) string {
	if e == r.doc.Body {
		return ""
	}
	hid, _ := e.Attr("data-hid")
	return hid
}

func childIndex(parent *dom.Element, n dom.Node) int {
	for i := 0; i < parent.ChildCount(); i++ {
		if parent.Child(i) == n {
			return i
		}
	}
	return -1
}

// unindex forgets the hydration IDs of a removed subtree so stale
// client events cannot resolve to it.
func (r *Recorder) unindex(n dom.Node) {
	el, ok := n.(*dom.Element)
	if !ok {
		return
	}
	for _, e := range el.QueryAll(func(*dom.Element) bool { return true }) {
		if hid, ok := e.Attr("data-hid"); ok && r.byHID[hid] == e {
			delete(r.byHID, hid)
		}
	}
}

// ============================================================================
// vdom.Backend
// ============================================================================

func (r *Recorder) CreateElement(tag string, v *vdom.VNode) vdom.Node {
	node := r.base.CreateElement(tag, v)
	el := node.(*dom.Element)
	r.nextHID++
	hid := "v" + strconv.FormatUint(r.nextHID, 10)
	r.base.SetAttribute(node, "data-hid", hid)
	r.byHID[hid] = el
	return node
}

func (r *Recorder) CreateText(text string) vdom.Node {
	return r.base.CreateText(text)
}

func (r *Recorder) CreateComment(text string) vdom.Node {
	return r.base.CreateComment(text)
}

func (r *Recorder) InsertBefore(parent, node, ref vdom.Node) {
	pe, okP := parent.(*dom.Element)
	dn, okN := node.(dom.Node)
	if !okP || !okN {
		r.base.InsertBefore(parent, node, ref)
		return
	}

	parentAttached := r.attached(pe)
	nodeAttached := r.attached(dn)

	// The old slot is measured with the node still in it; insertBefore
	// detaches before inserting.
	var fromParent *dom.Element
	fromIndex := -1
	if old := dn.Parent(); old != nil {
		fromParent = old
		fromIndex = childIndex(old, dn)
	}
	toIndex := pe.ChildCount()
	if ref != nil {
		if rn, ok := ref.(dom.Node); ok {
			if i := childIndex(pe, rn); i >= 0 {
				toIndex = i
			}
		}
	}

	r.base.InsertBefore(parent, node, ref)

	switch {
	case parentAttached && nodeAttached:
		if _, isElem := dn.(*dom.Element); isElem {
			r.record(protocol.NewMoveNodePatch(r.hidOf(fromParent), fromIndex, r.hidOf(pe), toIndex))
		} else {
			// Text and comment slots have no identity of their own, so
			// a move becomes remove plus insert. The landing index is
			// measured after the mutation, the tree state the client
			// has once its remove applied.
			r.record(protocol.NewRemoveNodePatch(r.hidOf(fromParent), fromIndex))
			r.record(protocol.NewInsertBeforePatch(r.hidOf(pe), childIndex(pe, dn), dom.MarkupOf(dn)))
		}

	case parentAttached:
		// A detached subtree entering the attached tree arrives as one
		// rendered fragment, hydration IDs included.
		r.record(protocol.NewInsertBeforePatch(r.hidOf(pe), childIndex(pe, dn), dom.MarkupOf(dn)))

	case nodeAttached:
		// Leaving the attached tree reads as a removal.
		r.record(protocol.NewRemoveNodePatch(r.hidOf(fromParent), fromIndex))
	}
}

func (r *Recorder) AppendChild(parent, child vdom.Node) {
	r.InsertBefore(parent, child, nil)
}

func (r *Recorder) RemoveChild(parent, child vdom.Node) {
	pe, okP := parent.(*dom.Element)
	cn, okC := child.(dom.Node)
	if !okP || !okC {
		r.base.RemoveChild(parent, child)
		return
	}

	idx := childIndex(pe, cn)
	wasAttached := r.attached(cn)
	r.base.RemoveChild(parent, child)

	if wasAttached && idx >= 0 {
		r.record(protocol.NewRemoveNodePatch(r.hidOf(pe), idx))
	}
	r.unindex(cn)
}

func (r *Recorder) ParentNode(node vdom.Node) vdom.Node {
	return r.base.ParentNode(node)
}

func (r *Recorder) NextSibling(node vdom.Node) vdom.Node {
	return r.base.NextSibling(node)
}

func (r *Recorder) TagName(node vdom.Node) string {
	return r.base.TagName(node)
}

func (r *Recorder) SetText(node vdom.Node, text string) {
	switch n := node.(type) {
	case *dom.Text, *dom.Comment:
		dn := node.(dom.Node)
		parent := dn.Parent()
		idx := -1
		if parent != nil {
			idx = childIndex(parent, dn)
		}
		r.base.SetText(node, text)
		if parent != nil && idx >= 0 && r.attached(parent) {
			r.record(protocol.NewSetTextPatch(r.hidOf(parent), idx, text))
		}

	case *dom.Element:
		r.setElementText(n, text)
	}
}

// setElementText mirrors the in-memory semantics, replacing the
// element's content with a single text node, onto the wire. The patcher
// only ever calls this with empty text, to clear; the other shapes are
// covered for direct backend use.
func (r *Recorder) setElementText(el *dom.Element, text string) {
	attached := r.attached(el)
	count := el.ChildCount()
	hid := r.hidOf(el)

	if attached {
		switch {
		case count == 1 && text != "":
			if _, isText := el.Child(0).(*dom.Text); isText {
				r.record(protocol.NewSetTextPatch(hid, 0, text))
			} else {
				r.record(protocol.NewReplaceNodePatch(hid, 0, dom.MarkupOf(r.textNode(text))))
			}
		default:
			for i := 0; i < count; i++ {
				r.record(protocol.NewRemoveNodePatch(hid, 0))
			}
			if text != "" {
				r.record(protocol.NewInsertBeforePatch(hid, 0, dom.MarkupOf(r.textNode(text))))
			}
		}
	}

	for i := 0; i < count; i++ {
		r.unindex(el.Child(i))
	}
	r.base.SetText(el, text)
}

func (r *Recorder) textNode(text string) dom.Node {
	return r.base.CreateText(text).(dom.Node)
}

// Form control values and checked state patch as DOM properties, not
// attributes: rewriting the attribute would not move a control the user
// has already typed into.
func isFormControl(tag string) bool {
	return tag == "input" || tag == "textarea" || tag == "select"
}

func (r *Recorder) SetAttribute(node vdom.Node, key, value string) {
	r.base.SetAttribute(node, key, value)
	el, ok := node.(*dom.Element)
	if !ok || !r.attached(el) {
		return
	}
	hid := r.hidOf(el)
	switch {
	case key == "value" && isFormControl(el.TagName()):
		r.record(protocol.NewSetValuePatch(hid, value))
	case key == "checked" && el.TagName() == "input":
		r.record(protocol.NewSetCheckedPatch(hid, true))
	default:
		r.record(protocol.NewSetAttrPatch(hid, key, value))
	}
}

func (r *Recorder) RemoveAttribute(node vdom.Node, key string) {
	r.base.RemoveAttribute(node, key)
	el, ok := node.(*dom.Element)
	if !ok || !r.attached(el) {
		return
	}
	hid := r.hidOf(el)
	switch {
	case key == "value" && isFormControl(el.TagName()):
		r.record(protocol.NewSetValuePatch(hid, ""))
	case key == "checked" && el.TagName() == "input":
		r.record(protocol.NewSetCheckedPatch(hid, false))
	default:
		r.record(protocol.NewRemoveAttrPatch(hid, key))
	}
}

func (r *Recorder) SetListener(node vdom.Node, event string, handler any) {
	r.base.SetListener(node, event, handler)
	if el, ok := node.(*dom.Element); ok {
		r.syncListenerAttr(el)
	}
}

func (r *Recorder) RemoveListener(node vdom.Node, event string) {
	r.base.RemoveListener(node, event)
	if el, ok := node.(*dom.Element); ok {
		r.syncListenerAttr(el)
	}
}

// syncListenerAttr mirrors the registered event names into a data-on
// attribute so the client knows which events to forward. Re-registering
// the same handlers every render is the patcher's normal behavior; only
// a changed name set records a patch.
func (r *Recorder) syncListenerAttr(el *dom.Element) {
	want := strings.Join(el.ListenerNames(), " ")
	cur, _ := el.Attr("data-on")
	if want == cur {
		return
	}
	if want == "" {
		r.RemoveAttribute(el, "data-on")
		return
	}
	r.SetAttribute(el, "data-on", want)
}

// ============================================================================
// Imperative patches
// ============================================================================

// Focus records a focus patch for an attached element.
func (r *Recorder) Focus(el *dom.Element) {
	if r.attached(el) {
		r.record(protocol.NewFocusPatch(r.hidOf(el)))
	}
}

// Blur records a blur patch for an attached element.
func (r *Recorder) Blur(el *dom.Element) {
	if r.attached(el) {
		r.record(protocol.NewBlurPatch(r.hidOf(el)))
	}
}
