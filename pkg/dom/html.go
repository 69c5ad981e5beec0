package dom

import "strings"

// OuterHTML serializes the element and its subtree. Attributes appear
// in first-set order, so output is stable across runs.
func (e *Element) OuterHTML() string {
	var b strings.Builder
	e.serialize(&b)
	return b.String()
}

// InnerHTML serializes only the element's children.
func (e *Element) InnerHTML() string {
	var b strings.Builder
	for _, c := range e.children {
		c.serialize(&b)
	}
	return b.String()
}

// HTML serializes the whole document body.
func (d *Document) HTML() string {
	return d.Body.OuterHTML()
}

// MarkupOf serializes any node: OuterHTML for elements, escaped data
// for text nodes, comment syntax for comments.
func MarkupOf(n Node) string {
	var b strings.Builder
	n.serialize(&b)
	return b.String()
}

func (e *Element) serialize(b *strings.Builder) {
	b.WriteByte('<')
	b.WriteString(e.tag)
	for _, name := range e.attrOrder {
		b.WriteByte(' ')
		b.WriteString(name)
		b.WriteString(`="`)
		b.WriteString(escapeAttr(e.attrs[name]))
		b.WriteByte('"')
	}
	b.WriteByte('>')
	if voidTags[e.tag] {
		return
	}
	for _, c := range e.children {
		c.serialize(b)
	}
	b.WriteString("</")
	b.WriteString(e.tag)
	b.WriteByte('>')
}

func (t *Text) serialize(b *strings.Builder) {
	b.WriteString(escapeText(t.text))
}

func (c *Comment) serialize(b *strings.Builder) {
	b.WriteString("<!--")
	b.WriteString(c.text)
	b.WriteString("-->")
}

var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true,
	"embed": true, "hr": true, "img": true, "input": true,
	"link": true, "meta": true, "param": true, "source": true,
	"track": true, "wbr": true,
}

func escapeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func escapeAttr(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '"':
			b.WriteString("&quot;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
