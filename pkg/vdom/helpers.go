package vdom

// Conditional render helpers. They all produce nil for the false
// branch; Normalize drops nils, so an empty branch simply renders
// nothing.

// If returns node when condition holds.
func If(condition bool, node *VNode) *VNode {
	if condition {
		return node
	}
	return nil
}

// IfElse picks between two nodes.
func IfElse(condition bool, ifTrue, ifFalse *VNode) *VNode {
	if condition {
		return ifTrue
	}
	return ifFalse
}

// When is If with the node built lazily: fn runs only when condition
// holds, so the false branch pays nothing.
func When(condition bool, fn func() *VNode) *VNode {
	if condition {
		return fn()
	}
	return nil
}

// Unless returns node when condition does not hold.
func Unless(condition bool, node *VNode) *VNode {
	if !condition {
		return node
	}
	return nil
}

// Case is one arm of a Switch.
type Case[T comparable] struct {
	Value     T
	Node      *VNode
	IsDefault bool
}

// Case_ builds a Switch arm. The underscore avoids the keyword.
func Case_[T comparable](value T, node *VNode) Case[T] {
	return Case[T]{Value: value, Node: node}
}

// Default builds the fallback arm of a Switch.
func Default[T comparable](node *VNode) Case[T] {
	return Case[T]{Node: node, IsDefault: true}
}

// Switch returns the node of the first arm matching value, the default
// arm when none does, or nil.
func Switch[T comparable](value T, cases ...Case[T]) *VNode {
	for _, c := range cases {
		if !c.IsDefault && c.Value == value {
			return c.Node
		}
	}
	for _, c := range cases {
		if c.IsDefault {
			return c.Node
		}
	}
	return nil
}

// Range maps items to vnodes, skipping entries fn declines.
func Range[T any](items []T, fn func(item T, index int) *VNode) []*VNode {
	out := make([]*VNode, 0, len(items))
	for i, item := range items {
		if node := fn(item, i); node != nil {
			out = append(out, node)
		}
	}
	return out
}

// Repeat builds n vnodes by index.
func Repeat(n int, fn func(i int) *VNode) []*VNode {
	if n <= 0 {
		return nil
	}
	out := make([]*VNode, 0, n)
	for i := 0; i < n; i++ {
		if node := fn(i); node != nil {
			out = append(out, node)
		}
	}
	return out
}

// Nothing renders nothing. It reads better than a bare nil in a
// branch.
func Nothing() *VNode {
	return nil
}

// Either returns first unless it is nil.
func Either(first, second *VNode) *VNode {
	if first != nil {
		return first
	}
	return second
}
