// Package dom provides an in-memory document tree that implements
// vdom.Backend. It is the canonical target for server-held UI state and
// for tests that assert on what a patch actually did to the tree.
//
// A Document owns a single Body element; Patcher output is attached
// under it:
//
//	doc := dom.NewDocument()
//	p := vdom.NewPatcher(dom.NewBackend())
//	root := p.Patch(nil, tree)
//	doc.Body.Append(root)
//
// Elements remember their attributes in set order, so OuterHTML output
// is deterministic and safe to compare in tests.
package dom
