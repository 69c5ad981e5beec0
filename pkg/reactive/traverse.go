package reactive

import mapset "github.com/deckarep/golang-set/v2"

// traverse performs a deep read of every reactive value reachable from
// v, so the evaluating watcher depends on the entire subtree. Deep
// watchers call this after their getter runs. Cycles are cut by dep ID.
func traverse(v any) {
	seen := mapset.NewThreadUnsafeSet[uint64]()
	traverseValue(v, seen)
}

func traverseValue(val any, seen mapset.Set[uint64]) {
	switch v := val.(type) {
	case *Object:
		if v == nil {
			return
		}
		id := v.ob.dep.id
		if seen.Contains(id) {
			return
		}
		seen.Add(id)
		// Keys tracks the object's structure; Get fires each field
		// getter, registering the field deps along the way.
		for _, k := range v.Keys() {
			traverseValue(v.Get(k), seen)
		}
	case *List:
		if v == nil {
			return
		}
		id := v.ob.dep.id
		if seen.Contains(id) {
			return
		}
		seen.Add(id)
		// Len tracks the list's structure.
		n := v.Len()
		for i := 0; i < n; i++ {
			traverseValue(v.Get(i), seen)
		}
	}
}
