package vdom

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
)

// ============================================================================
// Patcher
// ============================================================================

// PatcherOption configures a Patcher.
type PatcherOption func(*Patcher)

// WithDirectiveDef registers a directive definition under the given
// name. Vnodes carrying a Directive with that name have the definition's
// Bind, Update and Unbind callbacks invoked as the element is created,
// patched and destroyed.
func WithDirectiveDef(name string, def DirectiveDef) PatcherOption {
	return func(p *Patcher) {
		p.directives[name] = def
	}
}

// WithWarnHandler routes patcher warnings (duplicate keys, unknown
// directives) to fn instead of the default no-op.
func WithWarnHandler(fn func(msg string)) PatcherOption {
	return func(p *Patcher) {
		p.warn = fn
	}
}

// Patcher diffs vnode trees and applies the minimal set of Backend
// operations to make the target match. A Patcher holds no tree state of
// its own; callers keep the previously rendered vnode and pass it in as
// the old tree on the next patch.
type Patcher struct {
	backend    Backend
	directives map[string]DirectiveDef
	warn       func(msg string)
}

// NewPatcher builds a Patcher that drives the given backend.
func NewPatcher(b Backend, opts ...PatcherOption) *Patcher {
	p := &Patcher{
		backend:    b,
		directives: make(map[string]DirectiveDef),
		warn:       func(string) {},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Patcher) warnf(format string, args ...any) {
	p.warn(fmt.Sprintf(format, args...))
}

// ============================================================================
// Entry point
// ============================================================================

// Patch reconciles the backend tree rendered from old to match vnode.
//
// A nil old mounts vnode from scratch; the caller attaches the returned
// root node to its document. A nil vnode tears down old. When both are
// non-nil and the roots match per SameVNode the trees are diffed in
// place; otherwise the old root is replaced wholesale.
//
// Insert hooks queued during the patch fire after the whole tree is in
// place, children before parents.
func (p *Patcher) Patch(old, vnode *VNode) Node {
	if vnode == nil {
		if old != nil {
			p.removeNode(old.Elm)
			p.invokeDestroyHook(old)
		}
		return nil
	}

	var inserted []*VNode

	switch {
	case old == nil:
		p.createElm(vnode, &inserted, nil, nil)

	case SameVNode(old, vnode):
		p.patchVnode(old, vnode, &inserted, false)

	default:
		oldElm := old.Elm
		parent := p.backend.ParentNode(oldElm)
		p.createElm(vnode, &inserted, parent, p.backend.NextSibling(oldElm))
		if parent != nil {
			p.removeVnodes([]*VNode{old}, 0, 0)
		} else {
			p.invokeDestroyHook(old)
		}
	}

	p.invokeInsertHooks(inserted)
	return vnode.Elm
}

// ============================================================================
// Creation
// ============================================================================

// createElm realizes vnode as a backend node and, when parent is
// non-nil, inserts it before ref (appending when ref is nil). Insert
// hooks are collected into inserted rather than fired immediately.
func (p *Patcher) createElm(vnode *VNode, inserted *[]*VNode, parent, ref Node) {
	if p.createComponent(vnode, inserted, parent, ref) {
		return
	}

	switch vnode.Kind {
	case KindElement:
		vnode.Elm = p.backend.CreateElement(vnode.Tag, vnode)
		p.createChildren(vnode, inserted)
		p.invokeCreateHooks(vnode, inserted)
	case KindText:
		vnode.Elm = p.backend.CreateText(vnode.Text)
	case KindComment:
		vnode.Elm = p.backend.CreateComment(vnode.Text)
	}

	p.insert(parent, vnode.Elm, ref)
}

// createComponent handles vnodes that carry an init hook. The hook is
// expected to mount a child tree and set vnode.Elm and vnode.Instance;
// the patcher then only inserts the mounted root. Returns false when
// vnode is not a component placeholder, or when init declined to mount
// (async components awaiting resolution leave Instance nil and are
// realized via their placeholder vnode instead).
func (p *Patcher) createComponent(vnode *VNode, inserted *[]*VNode, parent, ref Node) bool {
	if vnode.Data == nil || vnode.Data.Hook == nil || vnode.Data.Hook.Init == nil {
		return false
	}
	vnode.Data.Hook.Init(vnode)
	if vnode.Instance == nil {
		return false
	}
	// Attributes and directives on the placeholder land on the mounted
	// root element, so undeclared attributes fall through to the child.
	p.updateAttrs(nil, vnode)
	p.updateDirectives(nil, vnode)
	if vnode.Data.Hook.Insert != nil {
		*inserted = append(*inserted, vnode)
	}
	p.applyRef(vnode, false)
	p.insert(parent, vnode.Elm, ref)
	return true
}

func (p *Patcher) createChildren(vnode *VNode, inserted *[]*VNode) {
	if len(vnode.Children) == 0 {
		return
	}
	p.checkDuplicateKeys(vnode.Children)
	for _, child := range vnode.Children {
		if child == nil {
			continue
		}
		p.createElm(child, inserted, vnode.Elm, nil)
	}
}

// invokeCreateHooks applies the data modules to a freshly created
// element and queues its insert hook.
func (p *Patcher) invokeCreateHooks(vnode *VNode, inserted *[]*VNode) {
	if vnode.Data == nil {
		return
	}
	p.updateAttrs(nil, vnode)
	p.updateListeners(nil, vnode)
	p.updateDirectives(nil, vnode)
	p.applyRef(vnode, false)
	if vnode.Data.Hook != nil && vnode.Data.Hook.Insert != nil {
		*inserted = append(*inserted, vnode)
	}
}

func (p *Patcher) insert(parent, node, ref Node) {
	if parent == nil || node == nil {
		return
	}
	if ref != nil {
		p.backend.InsertBefore(parent, node, ref)
	} else {
		p.backend.AppendChild(parent, node)
	}
}

// ============================================================================
// In-place patching
// ============================================================================

func (p *Patcher) patchVnode(old, vnode *VNode, inserted *[]*VNode, removeOnly bool) {
	if old == vnode {
		return
	}

	elm := old.Elm
	vnode.Elm = elm

	if old.IsAsyncPlaceholder {
		// The factory resolved between renders. The new vnode is the
		// real thing; swap it in for the placeholder comment.
		if vnode.IsAsyncPlaceholder {
			return
		}
		parent := p.backend.ParentNode(elm)
		p.createElm(vnode, inserted, parent, p.backend.NextSibling(elm))
		p.removeNode(elm)
		return
	}

	// Static trees are reused wholesale. This only applies to cloned
	// vnodes; a re-rendered static tree means the render function
	// itself changed and the tree must be re-walked.
	if vnode.IsStatic && old.IsStatic && vnode.Key == old.Key &&
		(vnode.IsCloned || vnode.IsOnce) {
		vnode.Instance = old.Instance
		return
	}

	if vnode.Data != nil && vnode.Data.Hook != nil && vnode.Data.Hook.Prepatch != nil {
		vnode.Data.Hook.Prepatch(old, vnode)
	}

	if vnode.Kind == KindElement && (vnode.Data != nil || old.Data != nil) {
		p.updateAttrs(old, vnode)
		p.updateListeners(old, vnode)
		p.updateDirectives(old, vnode)
	}

	if vnode.Kind == KindText || vnode.Kind == KindComment {
		if old.Text != vnode.Text {
			p.backend.SetText(elm, vnode.Text)
		}
		return
	}

	switch {
	case len(old.Children) > 0 && len(vnode.Children) > 0:
		p.updateChildren(elm, old.Children, vnode.Children, inserted, removeOnly)
	case len(vnode.Children) > 0:
		p.checkDuplicateKeys(vnode.Children)
		if old.Text != "" {
			p.backend.SetText(elm, "")
		}
		p.addVnodes(elm, nil, vnode.Children, 0, len(vnode.Children)-1, inserted)
	case len(old.Children) > 0:
		p.removeVnodes(old.Children, 0, len(old.Children)-1)
	case old.Text != "":
		p.backend.SetText(elm, "")
	}
}

// updateChildren reconciles two child lists with the four-pointer sweep:
// matching head/head, tail/tail, head/tail and tail/head pairs are
// patched (and moved for the crossed cases) before falling back to a
// key-indexed lookup for whatever is left in the middle. Old slots
// consumed by the keyed lookup are nilled and skipped when a pointer
// reaches them.
func (p *Patcher) updateChildren(parentElm Node, oldCh, newCh []*VNode, inserted *[]*VNode, removeOnly bool) {
	oldStartIdx, newStartIdx := 0, 0
	oldEndIdx := len(oldCh) - 1
	newEndIdx := len(newCh) - 1
	oldStartVnode, oldEndVnode := oldCh[0], oldCh[oldEndIdx]
	newStartVnode, newEndVnode := newCh[0], newCh[newEndIdx]

	var oldKeyToIdx map[string]int

	// removeOnly suppresses moves so removal transitions keep their
	// relative positions while they play out.
	canMove := !removeOnly

	p.checkDuplicateKeys(newCh)

	for oldStartIdx <= oldEndIdx && newStartIdx <= newEndIdx {
		switch {
		case oldStartVnode == nil:
			oldStartIdx++
			if oldStartIdx <= oldEndIdx {
				oldStartVnode = oldCh[oldStartIdx]
			}

		case oldEndVnode == nil:
			oldEndIdx--
			if oldEndIdx >= oldStartIdx {
				oldEndVnode = oldCh[oldEndIdx]
			}

		case SameVNode(oldStartVnode, newStartVnode):
			p.patchVnode(oldStartVnode, newStartVnode, inserted, removeOnly)
			oldStartIdx++
			newStartIdx++
			if oldStartIdx <= oldEndIdx {
				oldStartVnode = oldCh[oldStartIdx]
			}
			if newStartIdx <= newEndIdx {
				newStartVnode = newCh[newStartIdx]
			}

		case SameVNode(oldEndVnode, newEndVnode):
			p.patchVnode(oldEndVnode, newEndVnode, inserted, removeOnly)
			oldEndIdx--
			newEndIdx--
			if oldEndIdx >= oldStartIdx {
				oldEndVnode = oldCh[oldEndIdx]
			}
			if newEndIdx >= newStartIdx {
				newEndVnode = newCh[newEndIdx]
			}

		case SameVNode(oldStartVnode, newEndVnode):
			// Old head moved to the tail.
			p.patchVnode(oldStartVnode, newEndVnode, inserted, removeOnly)
			if canMove {
				p.backend.InsertBefore(parentElm, oldStartVnode.Elm, p.backend.NextSibling(oldEndVnode.Elm))
			}
			oldStartIdx++
			newEndIdx--
			if oldStartIdx <= oldEndIdx {
				oldStartVnode = oldCh[oldStartIdx]
			}
			if newEndIdx >= newStartIdx {
				newEndVnode = newCh[newEndIdx]
			}

		case SameVNode(oldEndVnode, newStartVnode):
			// Old tail moved to the head.
			p.patchVnode(oldEndVnode, newStartVnode, inserted, removeOnly)
			if canMove {
				p.backend.InsertBefore(parentElm, oldEndVnode.Elm, oldStartVnode.Elm)
			}
			oldEndIdx--
			newStartIdx++
			if oldEndIdx >= oldStartIdx {
				oldEndVnode = oldCh[oldEndIdx]
			}
			if newStartIdx <= newEndIdx {
				newStartVnode = newCh[newStartIdx]
			}

		default:
			if oldKeyToIdx == nil {
				oldKeyToIdx = createKeyToOldIdx(oldCh, oldStartIdx, oldEndIdx)
			}
			idxInOld := -1
			if newStartVnode.Key != "" {
				if i, ok := oldKeyToIdx[newStartVnode.Key]; ok {
					idxInOld = i
				}
			} else {
				idxInOld = findIdxInOld(newStartVnode, oldCh, oldStartIdx, oldEndIdx)
			}

			if idxInOld < 0 {
				p.createElm(newStartVnode, inserted, parentElm, oldStartVnode.Elm)
			} else {
				vnodeToMove := oldCh[idxInOld]
				if vnodeToMove == nil {
					// An earlier duplicate key already claimed this
					// slot; first match wins, the rest mount fresh.
					p.createElm(newStartVnode, inserted, parentElm, oldStartVnode.Elm)
				} else if SameVNode(vnodeToMove, newStartVnode) {
					p.patchVnode(vnodeToMove, newStartVnode, inserted, removeOnly)
					oldCh[idxInOld] = nil
					if canMove {
						p.backend.InsertBefore(parentElm, vnodeToMove.Elm, oldStartVnode.Elm)
					}
				} else {
					// Same key, different element. Treat as new.
					p.createElm(newStartVnode, inserted, parentElm, oldStartVnode.Elm)
				}
			}
			newStartIdx++
			if newStartIdx <= newEndIdx {
				newStartVnode = newCh[newStartIdx]
			}
		}
	}

	if oldStartIdx > oldEndIdx {
		var ref Node
		if newEndIdx+1 < len(newCh) {
			ref = newCh[newEndIdx+1].Elm
		}
		p.addVnodes(parentElm, ref, newCh, newStartIdx, newEndIdx, inserted)
	} else if newStartIdx > newEndIdx {
		p.removeVnodes(oldCh, oldStartIdx, oldEndIdx)
	}
}

// createKeyToOldIdx indexes the keyed children in [begin, end].
func createKeyToOldIdx(children []*VNode, begin, end int) map[string]int {
	m := make(map[string]int)
	for i := begin; i <= end; i++ {
		if c := children[i]; c != nil && c.Key != "" {
			m[c.Key] = i
		}
	}
	return m
}

// findIdxInOld scans [begin, end) for an unkeyed child matching node.
// The end slot is excluded: the tail/head case already compared it.
func findIdxInOld(node *VNode, oldCh []*VNode, begin, end int) int {
	for i := begin; i < end; i++ {
		if c := oldCh[i]; c != nil && SameVNode(c, node) {
			return i
		}
	}
	return -1
}

func (p *Patcher) checkDuplicateKeys(children []*VNode) {
	seen := mapset.NewThreadUnsafeSet[string]()
	for _, c := range children {
		if c == nil || c.Key == "" {
			continue
		}
		if seen.Contains(c.Key) {
			p.warnf("duplicate key %q in child list; keyed matching may misbehave", c.Key)
			continue
		}
		seen.Add(c.Key)
	}
}

// ============================================================================
// Bulk add / remove
// ============================================================================

func (p *Patcher) addVnodes(parentElm Node, ref Node, vnodes []*VNode, start, end int, inserted *[]*VNode) {
	for i := start; i <= end; i++ {
		if vnodes[i] == nil {
			continue
		}
		p.createElm(vnodes[i], inserted, parentElm, ref)
	}
}

func (p *Patcher) removeVnodes(vnodes []*VNode, start, end int) {
	for i := start; i <= end; i++ {
		ch := vnodes[i]
		if ch == nil {
			continue
		}
		p.removeNode(ch.Elm)
		if ch.Kind == KindElement {
			p.invokeDestroyHook(ch)
		}
	}
}

func (p *Patcher) removeNode(el Node) {
	if el == nil {
		return
	}
	if parent := p.backend.ParentNode(el); parent != nil {
		p.backend.RemoveChild(parent, el)
	}
}

// ============================================================================
// Hooks
// ============================================================================

// invokeDestroyHook tears a subtree down depth-first from the root:
// destroy hook, then directive unbinds and ref release, then children.
func (p *Patcher) invokeDestroyHook(vnode *VNode) {
	if vnode == nil {
		return
	}
	if vnode.Data != nil {
		if vnode.Data.Hook != nil && vnode.Data.Hook.Destroy != nil {
			vnode.Data.Hook.Destroy(vnode)
		}
		p.unbindDirectives(vnode)
		p.applyRef(vnode, true)
	}
	for _, child := range vnode.Children {
		p.invokeDestroyHook(child)
	}
}

func (p *Patcher) invokeInsertHooks(inserted []*VNode) {
	for _, vnode := range inserted {
		vnode.Data.Hook.Insert(vnode)
	}
}
