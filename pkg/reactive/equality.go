package reactive

import (
	"math"
	"reflect"
)

// sameValue reports whether a write with value b over current value a is
// a no-op. It is == with two amendments: NaN equals NaN (so a field
// holding NaN is not treated as changing on every write), and
// uncomparable containers (maps, slices, funcs) compare by identity
// instead of panicking.
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		if !ok {
			return false
		}
		if math.IsNaN(av) && math.IsNaN(bv) {
			return true
		}
		return av == bv
	case float32:
		bv, ok := b.(float32)
		if !ok {
			return false
		}
		if math.IsNaN(float64(av)) && math.IsNaN(float64(bv)) {
			return true
		}
		return av == bv
	}

	ta := reflect.TypeOf(a)
	tb := reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		return a == b
	}

	// Uncomparable kinds: identity of the underlying data.
	switch ta.Kind() {
	case reflect.Map, reflect.Slice, reflect.Func:
		return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
	}
	return false
}

// isContainer reports whether v is a value whose contents can change
// without its identity changing. Watcher callbacks fire even on
// identical old/new for containers, since interior mutation is invisible
// to sameValue.
func isContainer(v any) bool {
	switch v.(type) {
	case *Object, *List, map[string]any, []any:
		return true
	}
	return false
}
