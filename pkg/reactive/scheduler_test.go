package reactive

import (
	"strings"
	"testing"
)

func TestBatchCoalescesWrites(t *testing.T) {
	syncMode(t)

	o := NewObject(map[string]any{"a": 1, "b": 2})
	runs := 0
	w := NewWatcher(func() any {
		return o.Get("a").(int) + o.Get("b").(int)
	}, func(newVal, oldVal any) {
		runs++
	})
	defer w.Teardown()

	Batch(func() {
		o.Set("a", 10)
		o.Set("b", 20)
		o.Set("a", 11)
	})

	if runs != 1 {
		t.Errorf("expected 1 run for a batch of 3 writes, got %d", runs)
	}
	if got := w.Value(); got != 31 {
		t.Errorf("expected final value 31, got %v", got)
	}
}

func TestBatchNests(t *testing.T) {
	syncMode(t)

	o := NewObject(map[string]any{"n": 0})
	runs := 0
	w := NewWatcher(func() any {
		return o.Get("n")
	}, func(newVal, oldVal any) {
		runs++
	})
	defer w.Teardown()

	Batch(func() {
		o.Set("n", 1)
		Batch(func() {
			o.Set("n", 2)
		})
		// Inner batch end must not flush while the outer is open.
		if runs != 0 {
			t.Errorf("inner batch flushed early, runs = %d", runs)
		}
		o.Set("n", 3)
	})

	if runs != 1 {
		t.Errorf("expected 1 run after outermost batch, got %d", runs)
	}
}

func TestFlushOrderByCreation(t *testing.T) {
	syncMode(t)

	o := NewObject(map[string]any{"x": 0})
	var order []string

	w1 := NewWatcher(func() any { return o.Get("x") }, func(_, _ any) { order = append(order, "first") })
	defer w1.Teardown()
	w2 := NewWatcher(func() any { return o.Get("x") }, func(_, _ any) { order = append(order, "second") })
	defer w2.Teardown()
	w3 := NewWatcher(func() any { return o.Get("x") }, func(_, _ any) { order = append(order, "third") })
	defer w3.Teardown()

	Batch(func() { o.Set("x", 1) })

	want := "first,second,third"
	if got := strings.Join(order, ","); got != want {
		t.Errorf("expected flush order %s, got %s", want, got)
	}
}

func TestPostWatchersFlushLast(t *testing.T) {
	syncMode(t)

	o := NewObject(map[string]any{"x": 0})
	var order []string

	render := NewWatcher(func() any { return o.Get("x") }, func(_, _ any) { order = append(order, "render") }, Post())
	defer render.Teardown()
	user := NewWatcher(func() any { return o.Get("x") }, func(_, _ any) { order = append(order, "user") })
	defer user.Teardown()

	Batch(func() { o.Set("x", 1) })

	// The render watcher was created first (lower ID) but flushes after
	// every non-post watcher.
	want := "user,render"
	if got := strings.Join(order, ","); got != want {
		t.Errorf("expected flush order %s, got %s", want, got)
	}
}

func TestMidFlushInsertionKeepsOrder(t *testing.T) {
	syncMode(t)

	o := NewObject(map[string]any{"a": 0, "b": 0, "c": 0})
	var order []string

	// Created in ID order: wa < wb < wc.
	wa := NewWatcher(func() any { return o.Get("a") }, func(_, _ any) {
		order = append(order, "a")
		// Queue wb while the flush is running.
		o.Set("b", o.Get("b").(int)+1)
	})
	defer wa.Teardown()
	wb := NewWatcher(func() any { return o.Get("b") }, func(_, _ any) { order = append(order, "b") })
	defer wb.Teardown()
	wc := NewWatcher(func() any { return o.Get("c") }, func(_, _ any) { order = append(order, "c") })
	defer wc.Teardown()

	Batch(func() {
		o.Set("a", 1)
		o.Set("c", 1)
	})

	// wb was inserted mid-flush and must run in ID position, before wc.
	want := "a,b,c"
	if got := strings.Join(order, ","); got != want {
		t.Errorf("expected flush order %s, got %s", want, got)
	}
}

func TestMidFlushInsertionKeepsPostLast(t *testing.T) {
	syncMode(t)

	o := NewObject(map[string]any{"x": 0, "y": 0})
	var order []string

	// The post watcher is created first, so every later watcher has a
	// higher ID than it.
	render := NewWatcher(func() any { return o.Get("x") }, func(_, _ any) { order = append(order, "render") }, Post())
	defer render.Teardown()
	user1 := NewWatcher(func() any { return o.Get("x") }, func(_, _ any) {
		order = append(order, "user1")
		// Queue user2 while the flush is running.
		o.Set("y", o.Get("y").(int)+1)
	})
	defer user1.Teardown()
	user2 := NewWatcher(func() any { return o.Get("y") }, func(_, _ any) { order = append(order, "user2") })
	defer user2.Teardown()

	Batch(func() { o.Set("x", 1) })

	// user2 outranks render by ID but is not a post watcher, so the
	// mid-flush splice must still place it before the post segment.
	want := "user1,user2,render"
	if got := strings.Join(order, ","); got != want {
		t.Errorf("expected flush order %s, got %s", want, got)
	}
}

func TestRunawayWatcherIsAbandoned(t *testing.T) {
	syncMode(t)
	warns := captureWarns(t)

	o := NewObject(map[string]any{"n": 0})
	runs := 0
	w := NewWatcher(func() any {
		return o.Get("n")
	}, func(newVal, oldVal any) {
		runs++
		// Self-perpetuating write: every run re-queues the watcher.
		o.Set("n", newVal.(int)+1)
	})
	defer w.Teardown()

	o.Set("n", 1)

	if runs != maxUpdateCount+1 {
		t.Errorf("expected %d runs before abandonment, got %d", maxUpdateCount+1, runs)
	}
	if got := o.Get("n"); got != maxUpdateCount+2 {
		t.Errorf("expected final value %d, got %v", maxUpdateCount+2, got)
	}
	found := false
	for _, msg := range *warns {
		if strings.Contains(msg, "infinite update loop") {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("expected a runaway warning, got %v", *warns)
	}
}

func TestRunawayDoesNotStarveOthers(t *testing.T) {
	syncMode(t)
	captureWarns(t)

	o := NewObject(map[string]any{"n": 0, "m": 0})
	w := NewWatcher(func() any {
		return o.Get("n")
	}, func(newVal, oldVal any) {
		o.Set("n", newVal.(int)+1)
	})
	defer w.Teardown()

	otherRuns := 0
	other := NewWatcher(func() any { return o.Get("m") }, func(_, _ any) { otherRuns++ })
	defer other.Teardown()

	Batch(func() {
		o.Set("n", 1)
		o.Set("m", 1)
	})

	if otherRuns != 1 {
		t.Errorf("expected the healthy watcher to run despite the runaway, got %d", otherRuns)
	}
}

func TestPostFlushHooksRunInReverse(t *testing.T) {
	syncMode(t)

	o := NewObject(map[string]any{"x": 0})
	var order []string

	parent := NewWatcher(func() any { return o.Get("x") }, nil,
		WithPostFlush(func() { order = append(order, "parent-updated") }))
	defer parent.Teardown()
	child := NewWatcher(func() any { return o.Get("x") }, nil,
		WithPostFlush(func() { order = append(order, "child-updated") }))
	defer child.Teardown()

	Batch(func() { o.Set("x", 1) })

	// Reverse queue order: the child (queued later) reports first.
	want := "child-updated,parent-updated"
	if got := strings.Join(order, ","); got != want {
		t.Errorf("expected post-flush order %s, got %s", want, got)
	}
}

type testActivatable struct {
	fired *[]string
	name  string
}

func (a *testActivatable) FlushActivated() {
	*a.fired = append(*a.fired, a.name)
}

func TestActivatedHooksDeferToFlushEnd(t *testing.T) {
	syncMode(t)

	o := NewObject(map[string]any{"x": 0})
	var events []string

	w := NewWatcher(func() any { return o.Get("x") }, func(_, _ any) {
		events = append(events, "run")
		QueueActivated(&testActivatable{fired: &events, name: "activated"})
	})
	defer w.Teardown()

	Batch(func() { o.Set("x", 1) })

	want := "run,activated"
	if got := strings.Join(events, ","); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestCompactionSweepsNullSlots(t *testing.T) {
	syncMode(t)

	o := NewObject(map[string]any{"x": 0})
	dep := o.fieldDep("x")

	keeper := NewWatcher(func() any { return o.Get("x") }, nil)
	defer keeper.Teardown()

	var stale []*Watcher
	for i := 0; i < 5; i++ {
		stale = append(stale, NewWatcher(func() any { return o.Get("x") }, nil))
	}
	for _, w := range stale {
		w.Teardown()
	}

	// Teardown nulls the slots but leaves them in place.
	if got := dep.slotCount(); got != 6 {
		t.Fatalf("expected 6 slots before sweep, got %d", got)
	}
	if got := dep.subCount(); got != 1 {
		t.Fatalf("expected 1 live subscriber, got %d", got)
	}

	// Any flush runs the global sweep.
	o.Set("x", 1)
	if got := dep.slotCount(); got != 1 {
		t.Errorf("expected 1 slot after sweep, got %d", got)
	}
}
