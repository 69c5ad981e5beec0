package render

import (
	"strings"
	"testing"
)

// extractAttrValue pulls the quoted value of attr out of rendered
// markup, failing the test when the attribute is missing or unquoted.
func extractAttrValue(t *testing.T, s string, attr string) string {
	t.Helper()

	needle := attr + "="
	idx := strings.Index(s, needle)
	if idx == -1 {
		t.Fatalf("no %s attribute in %q", attr, s)
	}

	rest := s[idx+len(needle):]
	if rest == "" || (rest[0] != '"' && rest[0] != '\'') {
		t.Fatalf("%s attribute not quoted in %q", attr, s)
	}

	quote := rest[0]
	end := strings.IndexByte(rest[1:], quote)
	if end == -1 {
		t.Fatalf("%s attribute unterminated in %q", attr, s)
	}
	return rest[1 : 1+end]
}
