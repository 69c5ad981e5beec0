package render

import "strings"

// escapeHTML entity-encodes the characters with markup meaning so text
// can sit inside element content.
func escapeHTML(s string) string { return escape(s, false) }

// escapeAttr is escapeHTML for attribute values, which additionally
// entity-encode tabs and line breaks: a raw newline inside a quoted
// value breaks attribute parsing.
func escapeAttr(s string) string { return escape(s, true) }

func escape(s string, attr bool) string {
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
		case '"':
			b.WriteString("&quot;")
		case '\'':
			b.WriteString("&#39;")
		case '\n':
			if attr {
				b.WriteString("&#10;")
			} else {
				b.WriteRune(r)
			}
		case '\r':
			if attr {
				b.WriteString("&#13;")
			} else {
				b.WriteRune(r)
			}
		case '\t':
			if attr {
				b.WriteString("&#9;")
			} else {
				b.WriteRune(r)
			}
		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}
