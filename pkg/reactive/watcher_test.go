package reactive

import (
	"strings"
	"testing"
)

func TestWatcherCallbackValues(t *testing.T) {
	syncMode(t)

	o := NewObject(map[string]any{"n": 1})
	var gotNew, gotOld any
	w := NewWatcher(func() any {
		return o.Get("n")
	}, func(newVal, oldVal any) {
		gotNew, gotOld = newVal, oldVal
	})
	defer w.Teardown()

	o.Set("n", 2)
	if gotNew != 2 || gotOld != 1 {
		t.Errorf("expected callback (2, 1), got (%v, %v)", gotNew, gotOld)
	}
}

func TestWatcherPrunesStaleDeps(t *testing.T) {
	syncMode(t)

	o := NewObject(map[string]any{"useA": true, "a": 1, "b": 2})
	runs := 0
	w := NewWatcher(func() any {
		if o.Get("useA").(bool) {
			return o.Get("a")
		}
		return o.Get("b")
	}, func(newVal, oldVal any) {
		runs++
	})
	defer w.Teardown()

	// While on the A branch, b is invisible.
	o.Set("b", 20)
	if runs != 0 {
		t.Errorf("write to unread branch re-ran watcher %d times", runs)
	}

	o.Set("useA", false)
	if runs != 1 {
		t.Fatalf("expected branch switch to run watcher, got %d", runs)
	}

	// After the switch, a must be pruned.
	o.Set("a", 10)
	if runs != 1 {
		t.Errorf("write to pruned dep re-ran watcher, runs = %d", runs)
	}
	o.Set("b", 30)
	if runs != 2 {
		t.Errorf("expected watcher to follow the new branch, runs = %d", runs)
	}
}

func TestWatcherStableDepsDoNotChurn(t *testing.T) {
	syncMode(t)

	o := NewObject(map[string]any{"n": 0})
	w := NewWatcher(func() any {
		// Read twice; the dep must register once.
		o.Get("n")
		return o.Get("n")
	}, nil)
	defer w.Teardown()

	if got := w.depCount(); got != 1 {
		t.Fatalf("expected 1 dep after double read, got %d", got)
	}

	dep := o.fieldDep("n")
	o.Set("n", 1)
	if got := dep.subCount(); got != 1 {
		t.Errorf("expected 1 live subscriber after re-run, got %d", got)
	}
	if got := dep.slotCount(); got != 1 {
		t.Errorf("stable re-run should not churn subscription slots, got %d", got)
	}
}

func TestWatcherDeep(t *testing.T) {
	syncMode(t)

	o := NewObject(map[string]any{
		"tree": map[string]any{"leaf": map[string]any{"n": 1}},
	})
	runs := 0
	w := NewWatcher(func() any {
		return o.Get("tree")
	}, func(newVal, oldVal any) {
		runs++
	}, Deep())
	defer w.Teardown()

	leaf := o.Get("tree").(*Object).Get("leaf").(*Object)
	leaf.Set("n", 2)
	if runs != 1 {
		t.Errorf("expected deep watcher to see nested write, got %d runs", runs)
	}
}

func TestWatcherShallowMissesNestedWrite(t *testing.T) {
	syncMode(t)

	o := NewObject(map[string]any{"tree": map[string]any{"n": 1}})
	runs := 0
	w := NewWatcher(func() any {
		return o.Get("tree")
	}, func(newVal, oldVal any) {
		runs++
	})
	defer w.Teardown()

	// Without Deep the getter only registered the field and the
	// container observer; a field write inside the child is invisible.
	o.Get("tree").(*Object).Set("n", 2)
	if runs != 0 {
		t.Errorf("non-deep watcher saw nested write, runs = %d", runs)
	}
}

func TestLazyWatcherEvaluatesOnDemand(t *testing.T) {
	syncMode(t)

	o := NewObject(map[string]any{"n": 2})
	calls := 0
	c := NewWatcher(func() any {
		calls++
		return o.Get("n").(int) * 2
	}, nil, Lazy())

	if calls != 0 {
		t.Fatalf("lazy watcher evaluated at creation, calls = %d", calls)
	}
	if !c.Dirty() {
		t.Fatal("lazy watcher should start dirty")
	}

	c.Evaluate()
	if got := c.Value(); got != 4 {
		t.Errorf("expected 4, got %v", got)
	}
	if calls != 1 || c.Dirty() {
		t.Errorf("expected 1 call and clean state, got calls=%d dirty=%v", calls, c.Dirty())
	}

	// A source write only marks dirty; no recompute until read.
	o.Set("n", 3)
	if calls != 1 {
		t.Errorf("lazy watcher recomputed eagerly, calls = %d", calls)
	}
	if !c.Dirty() {
		t.Error("expected dirty after source write")
	}
	c.Evaluate()
	if got := c.Value(); got != 6 {
		t.Errorf("expected 6, got %v", got)
	}
}

func TestLazyWatcherDependAll(t *testing.T) {
	syncMode(t)

	o := NewObject(map[string]any{"n": 1})
	double := NewWatcher(func() any {
		return o.Get("n").(int) * 2
	}, nil, Lazy())
	defer double.Teardown()

	runs := 0
	outer := NewWatcher(func() any {
		if double.Dirty() {
			double.Evaluate()
		}
		if Tracking() {
			double.DependAll()
		}
		return double.Value()
	}, func(newVal, oldVal any) {
		runs++
	})
	defer outer.Teardown()

	if got := outer.Value(); got != 2 {
		t.Fatalf("expected initial value 2, got %v", got)
	}

	// The outer watcher never read o directly, but DependAll re-exported
	// the computed's sources, so the write reaches it.
	o.Set("n", 5)
	if runs != 1 {
		t.Fatalf("expected outer watcher to run, got %d", runs)
	}
	if got := outer.Value(); got != 10 {
		t.Errorf("expected 10, got %v", got)
	}
}

func TestSyncWatcherRunsInline(t *testing.T) {
	// Async mode on purpose: sync watchers bypass the queue entirely.
	o := NewObject(map[string]any{"n": 1})
	runs := 0
	w := NewWatcher(func() any {
		return o.Get("n")
	}, func(newVal, oldVal any) {
		runs++
	}, Sync())
	defer w.Teardown()

	o.Set("n", 2)
	if runs != 1 {
		t.Errorf("expected sync watcher to run inline, got %d", runs)
	}
}

func TestWatcherTeardown(t *testing.T) {
	syncMode(t)

	o := NewObject(map[string]any{"n": 1})
	runs := 0
	stops := 0
	w := NewWatcher(func() any {
		return o.Get("n")
	}, func(newVal, oldVal any) {
		runs++
	}, WithOnStop(func() { stops++ }))

	dep := o.fieldDep("n")
	w.Teardown()
	w.Teardown()

	if stops != 1 {
		t.Errorf("expected onStop to fire once, got %d", stops)
	}
	if dep.subCount() != 0 {
		t.Errorf("expected no live subscribers after teardown, got %d", dep.subCount())
	}

	o.Set("n", 2)
	if runs != 0 {
		t.Errorf("torn-down watcher ran %d times", runs)
	}
}

func TestUserWatcherPanicsAreContained(t *testing.T) {
	syncMode(t)

	var errs []string
	SetErrorHandler(func(err error, context string) {
		errs = append(errs, context)
	})
	t.Cleanup(func() { SetErrorHandler(nil) })

	o := NewObject(map[string]any{"boom": false, "n": 1})
	w := NewWatcher(func() any {
		if o.Get("boom").(bool) {
			panic("getter exploded")
		}
		return o.Get("n")
	}, func(newVal, oldVal any) {}, User())
	defer w.Teardown()

	healthyRuns := 0
	w2 := NewWatcher(func() any {
		return o.Get("boom")
	}, func(newVal, oldVal any) {
		healthyRuns++
	})
	defer w2.Teardown()

	o.Set("boom", true)

	if len(errs) != 1 || !strings.Contains(errs[0], "getter") {
		t.Errorf("expected one contained getter error, got %v", errs)
	}
	if healthyRuns != 1 {
		t.Errorf("healthy watcher should flush despite the panic, got %d runs", healthyRuns)
	}
}

func TestPathWatcher(t *testing.T) {
	syncMode(t)

	o := NewObject(map[string]any{
		"user":  map[string]any{"name": "ada"},
		"items": []any{"a", "b"},
	})

	var gotNew any
	w := NewPathWatcher(o, "user.name", func(newVal, oldVal any) {
		gotNew = newVal
	})
	defer w.Teardown()

	if got := w.Value(); got != "ada" {
		t.Fatalf("expected initial path value %q, got %v", "ada", got)
	}

	o.Get("user").(*Object).Set("name", "grace")
	if gotNew != "grace" {
		t.Errorf("expected path watcher to fire with %q, got %v", "grace", gotNew)
	}

	// Numeric segments index lists.
	w2 := NewPathWatcher(o, "items.1", nil)
	defer w2.Teardown()
	if got := w2.Value(); got != "b" {
		t.Errorf("expected items.1 to be %q, got %v", "b", got)
	}
}

func TestPathWatcherInvalidPath(t *testing.T) {
	warns := captureWarns(t)

	o := NewObject(map[string]any{"a": 1})
	w := NewPathWatcher(o, "a[0]", nil)
	defer w.Teardown()

	if got := w.Value(); got != nil {
		t.Errorf("expected nil value for invalid path, got %v", got)
	}
	if len(*warns) != 1 || !strings.Contains((*warns)[0], "a[0]") {
		t.Errorf("expected invalid-path warning, got %v", *warns)
	}
}

func TestUntracked(t *testing.T) {
	syncMode(t)

	o := NewObject(map[string]any{"a": 1, "b": 2})
	runs := 0
	w := NewWatcher(func() any {
		var b any
		Untracked(func() {
			b = o.Get("b")
		})
		return o.Get("a").(int) + b.(int)
	}, func(newVal, oldVal any) {
		runs++
	})
	defer w.Teardown()

	o.Set("b", 20)
	if runs != 0 {
		t.Errorf("untracked read registered a dep, runs = %d", runs)
	}
	o.Set("a", 10)
	if runs != 1 {
		t.Errorf("expected tracked read to register, runs = %d", runs)
	}
	if got := w.Value(); got != 30 {
		t.Errorf("expected 30, got %v", got)
	}
}
