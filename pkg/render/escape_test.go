package render

import "testing"

func TestEscapeHTML(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"Hello, World!", "Hello, World!"},
		{"Tom & Jerry", "Tom &amp; Jerry"},
		{"a < b", "a &lt; b"},
		{"a > b", "a &gt; b"},
		{`say "hello"`, "say &quot;hello&quot;"},
		{"it's fine", "it&#39;s fine"},
		{"<script>alert('x')</script>", "&lt;script&gt;alert(&#39;x&#39;)&lt;/script&gt;"},
		{`<a href="q?a=1&b=2">link</a>`, `&lt;a href=&quot;q?a=1&amp;b=2&quot;&gt;link&lt;/a&gt;`},
		{"Hello 世界 🌍", "Hello 世界 🌍"},
		// Content escaping leaves whitespace alone.
		{"a\n\r\tb", "a\n\r\tb"},
	}
	for _, tt := range tests {
		if got := escapeHTML(tt.in); got != tt.want {
			t.Errorf("escapeHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEscapeAttr(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"hello", "hello"},
		{"a&b", "a&amp;b"},
		{`value="test"`, "value=&quot;test&quot;"},
		{"line1\nline2", "line1&#10;line2"},
		{"line1\rline2", "line1&#13;line2"},
		{"col1\tcol2", "col1&#9;col2"},
		{"a\n\r\tb", "a&#10;&#13;&#9;b"},
		{`<>&"'` + "\n\r\t", "&lt;&gt;&amp;&quot;&#39;&#10;&#13;&#9;"},
	}
	for _, tt := range tests {
		if got := escapeAttr(tt.in); got != tt.want {
			t.Errorf("escapeAttr(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func BenchmarkEscapeHTML(b *testing.B) {
	b.Run("plain", func(b *testing.B) {
		s := "Hello, World! This is a plain text string without special characters."
		for i := 0; i < b.N; i++ {
			escapeHTML(s)
		}
	})
	b.Run("special", func(b *testing.B) {
		s := `<script>alert("x")</script> & more content here`
		for i := 0; i < b.N; i++ {
			escapeHTML(s)
		}
	})
}

func BenchmarkEscapeAttr(b *testing.B) {
	b.Run("plain", func(b *testing.B) {
		s := "simple-value"
		for i := 0; i < b.N; i++ {
			escapeAttr(s)
		}
	})
	b.Run("special", func(b *testing.B) {
		s := "value=\"test\" with 'quotes' & a\nbreak and a\ttab"
		for i := 0; i < b.N; i++ {
			escapeAttr(s)
		}
	})
}
