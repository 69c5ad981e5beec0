package vdom

import (
	"fmt"
	"strconv"
)

// New creates an element vnode. Most code goes through the tag factories
// in elements.go; New is the escape hatch for dynamic tags and for
// layers (components, directives) that build nodes programmatically.
func New(tag string, data *NodeData, children []*VNode) *VNode {
	return &VNode{
		Kind:     KindElement,
		Tag:      tag,
		Data:     data,
		Children: children,
	}
}

// Text creates a text node.
func Text(content string) *VNode {
	return &VNode{
		Kind: KindText,
		Text: content,
	}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *VNode {
	return Text(fmt.Sprintf(format, args...))
}

// Comment creates a comment placeholder node. Empty render branches and
// unresolved async components occupy their spot with one of these.
func Comment(text string) *VNode {
	return &VNode{
		Kind: KindComment,
		Text: text,
	}
}

// Normalize turns a heterogeneous child list into a flat []*VNode:
// nils disappear, nested slices flatten recursively, scalars become text
// nodes, and adjacent text nodes merge into one. Render functions that
// interleave loops and conditionals produce exactly this kind of input.
func Normalize(children ...any) []*VNode {
	out := make([]*VNode, 0, len(children))
	return appendNormalized(out, children)
}

func appendNormalized(out []*VNode, children []any) []*VNode {
	for _, child := range children {
		switch v := child.(type) {
		case nil:
			continue
		case *VNode:
			if v == nil {
				continue
			}
			out = appendMerging(out, v)
		case []*VNode:
			for _, c := range v {
				if c != nil {
					out = appendMerging(out, c)
				}
			}
		case []any:
			out = appendNormalized(out, v)
		case string:
			out = appendMerging(out, Text(v))
		case int:
			out = appendMerging(out, Text(strconv.Itoa(v)))
		case int64:
			out = appendMerging(out, Text(strconv.FormatInt(v, 10)))
		case float64:
			out = appendMerging(out, Text(strconv.FormatFloat(v, 'f', -1, 64)))
		case bool:
			out = appendMerging(out, Text(strconv.FormatBool(v)))
		case fmt.Stringer:
			out = appendMerging(out, Text(v.String()))
		default:
			out = appendMerging(out, Text(fmt.Sprintf("%v", v)))
		}
	}
	return out
}

// appendMerging appends node, merging it into the previous entry when
// both are plain text.
func appendMerging(out []*VNode, node *VNode) []*VNode {
	if node.Kind == KindText && len(out) > 0 {
		last := out[len(out)-1]
		if last.Kind == KindText && last.Data == nil && node.Data == nil {
			merged := Text(last.Text + node.Text)
			out[len(out)-1] = merged
			return out
		}
	}
	return append(out, node)
}

// Flatten concatenates pre-normalized child slices one level deep,
// dropping nils. Use when children are already vnodes and only the
// nesting produced by helper calls needs removing.
func Flatten(groups ...[]*VNode) []*VNode {
	n := 0
	for _, g := range groups {
		n += len(g)
	}
	out := make([]*VNode, 0, n)
	for _, g := range groups {
		for _, c := range g {
			if c != nil {
				out = append(out, c)
			}
		}
	}
	return out
}
