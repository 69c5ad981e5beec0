// Package vdom provides Vireo's virtual DOM: the VNode tree, the
// element factory API, and the patch engine that reconciles an old tree
// against a new one through a pluggable Backend.
//
// # Core Types
//
// VNode represents elements, text, and comment placeholders. NodeData
// carries attributes, event handlers, directives, and patch-time hooks.
// Backend abstracts the target the patcher drives: an in-memory document
// for tests and server rendering, or a recording backend that turns
// operations into wire patches for live sessions.
//
// # Element API
//
// Elements are created using variadic factory functions:
//
//	Div(Class("card"), ID("main"),
//	    H1(Text("Title")),
//	    P(Text("Content")),
//	    OnClick(handler),
//	)
//
// # Patching
//
// A Patcher compares the previous rendered tree with the next one and
// applies the minimal set of backend operations. Keyed children are
// reconciled with a four-pointer scan that recognizes appends, prepends,
// reversals, and keyed moves without rebuilding untouched nodes.
package vdom
