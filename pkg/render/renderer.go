package render

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/vireo-ui/vireo/pkg/vdom"
)

// RendererConfig configures the HTML renderer.
type RendererConfig struct {
	// Pretty enables pretty-printed HTML output with indentation.
	// Meant for development and golden files; it inflates output size.
	Pretty bool

	// Indent is the string used for each indentation level in pretty mode.
	// Defaults to two spaces if not specified.
	Indent string
}

// Renderer serializes VNode trees to HTML. A Renderer carries no
// per-render state and is safe to share across goroutines.
type Renderer struct {
	config RendererConfig
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	if config.Indent == "" {
		config.Indent = "  "
	}
	return &Renderer{config: config}
}

// RenderToString renders a VNode tree to an HTML string.
func (r *Renderer) RenderToString(node *vdom.VNode) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter streams a VNode tree to the given writer.
func (r *Renderer) RenderToWriter(w io.Writer, node *vdom.VNode) error {
	return r.renderNode(w, node, 0)
}

// treeHolder is the surface of a mounted component instance the renderer
// needs: the vnode tree it last rendered. Declared here rather than
// importing the component package, which sits above this one.
type treeHolder interface {
	VNode() *vdom.VNode
}

// renderNode dispatches rendering based on node kind. depth < 0 means
// the node sits inside inline content and pretty formatting is off for
// it and its subtree.
func (r *Renderer) renderNode(w io.Writer, node *vdom.VNode, depth int) error {
	if node == nil {
		return nil
	}

	switch node.Kind {
	case vdom.KindElement:
		if node.Data != nil && node.Data.Hook != nil {
			return r.renderPlaceholder(w, node, depth)
		}
		return r.renderElement(w, node, depth)
	case vdom.KindText:
		return r.renderText(w, node, depth)
	case vdom.KindComment:
		return r.renderComment(w, node.Text, depth)
	default:
		return fmt.Errorf("unknown node kind: %d", node.Kind)
	}
}

// renderPlaceholder renders a component call site. A mounted placeholder
// serializes as the tree its instance last rendered. A placeholder that
// never went through a patcher has no tree behind it and serializes as
// an empty comment, the same thing a pending async component shows.
func (r *Renderer) renderPlaceholder(w io.Writer, node *vdom.VNode, depth int) error {
	if h, ok := node.Instance.(treeHolder); ok {
		if tree := h.VNode(); tree != nil {
			return r.renderNode(w, tree, depth)
		}
	}
	return r.renderComment(w, "", depth)
}

// renderElement renders an HTML element with its attributes and children.
func (r *Renderer) renderElement(w io.Writer, node *vdom.VNode, depth int) error {
	pretty := r.config.Pretty && depth >= 0
	if pretty {
		if err := r.writeIndent(w, depth); err != nil {
			return err
		}
	}

	// Opening tag
	if _, err := io.WriteString(w, "<"+node.Tag); err != nil {
		return err
	}
	if err := r.renderAttributes(w, node); err != nil {
		return err
	}
	if _, err := w.Write([]byte{'>'}); err != nil {
		return err
	}

	// Void elements have no children and no closing tag.
	if isVoidElement(node.Tag) {
		if pretty {
			if _, err := w.Write([]byte{'\n'}); err != nil {
				return err
			}
		}
		return nil
	}

	if pretty && hasBlockContent(node) {
		if _, err := w.Write([]byte{'\n'}); err != nil {
			return err
		}
		for _, child := range node.Children {
			if err := r.renderNode(w, child, depth+1); err != nil {
				return err
			}
		}
		if err := r.writeIndent(w, depth); err != nil {
			return err
		}
	} else {
		for _, child := range node.Children {
			if err := r.renderNode(w, child, -1); err != nil {
				return err
			}
		}
	}

	// Closing tag
	if _, err := io.WriteString(w, "</"+node.Tag+">"); err != nil {
		return err
	}
	if pretty {
		if _, err := w.Write([]byte{'\n'}); err != nil {
			return err
		}
	}
	return nil
}

// renderText renders a text node with HTML escaping.
func (r *Renderer) renderText(w io.Writer, node *vdom.VNode, depth int) error {
	pretty := r.config.Pretty && depth >= 0
	if pretty {
		if err := r.writeIndent(w, depth); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, escapeHTML(node.Text)); err != nil {
		return err
	}
	if pretty {
		_, err := w.Write([]byte{'\n'})
		return err
	}
	return nil
}

// renderComment renders a comment node. The text is written verbatim,
// matching how the in-memory backend serializes comments.
func (r *Renderer) renderComment(w io.Writer, text string, depth int) error {
	pretty := r.config.Pretty && depth >= 0
	if pretty {
		if err := r.writeIndent(w, depth); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, "<!--"+text+"-->"); err != nil {
		return err
	}
	if pretty {
		_, err := w.Write([]byte{'\n'})
		return err
	}
	return nil
}

// renderAttributes renders an element's attributes in sorted key order,
// so output is deterministic and agrees with the order the patcher
// applies attributes in.
func (r *Renderer) renderAttributes(w io.Writer, node *vdom.VNode) error {
	if node.Data == nil || len(node.Data.Attrs) == 0 {
		return nil
	}

	keys := make([]string, 0, len(node.Data.Attrs))
	for key := range node.Data.Attrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := node.Data.Attrs[key]

		// Boolean attributes render as a bare name when true and
		// disappear when false.
		if isBooleanAttr(key) {
			if boolValue, ok := value.(bool); ok {
				if boolValue {
					if _, err := io.WriteString(w, " "+key); err != nil {
						return err
					}
				}
				continue
			}
		}

		strValue := attrToString(value)
		if strValue == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, ` %s="%s"`, key, escapeAttr(strValue)); err != nil {
			return err
		}
	}
	return nil
}

// hasBlockContent reports whether an element's children go on their own
// lines in pretty mode. Inline elements, and elements holding only text,
// comments, or inline children, stay on one line.
func hasBlockContent(node *vdom.VNode) bool {
	if len(node.Children) == 0 || isInlineElement(node.Tag) {
		return false
	}
	for _, child := range node.Children {
		if child == nil {
			continue
		}
		if child.Kind == vdom.KindElement && !isInlineElement(child.Tag) {
			return true
		}
	}
	return false
}

// attrToString converts an attribute value to a string. The formatting
// matches what the patcher sends to backends, so server rendered markup
// and patched markup agree.
func attrToString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// writeIndent writes indentation for pretty printing.
func (r *Renderer) writeIndent(w io.Writer, depth int) error {
	for i := 0; i < depth; i++ {
		if _, err := io.WriteString(w, r.config.Indent); err != nil {
			return err
		}
	}
	return nil
}
