package reactive

import (
	"strconv"
	"strings"
	"unicode"
)

// parsePath compiles a dotted path like "user.address.city" into a
// getter over an Object tree. Numeric segments index into Lists. Returns
// nil when the path contains characters outside letters, digits, '_',
// '$' and '.'; anything fancier than a dotted path should be a getter
// function instead.
func parsePath(path string) func(root *Object) any {
	for _, r := range path {
		if r == '.' || r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		return nil
	}

	segments := strings.Split(path, ".")
	return func(root *Object) any {
		var cur any = root
		for _, seg := range segments {
			if cur == nil {
				return nil
			}
			switch c := cur.(type) {
			case *Object:
				cur = c.Get(seg)
			case *List:
				i, err := strconv.Atoi(seg)
				if err != nil {
					return nil
				}
				cur = c.Get(i)
			default:
				// Path dead-ends in a scalar.
				return nil
			}
		}
		return cur
	}
}
