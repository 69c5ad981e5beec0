package reactive

import "sync"

// taskLoop runs deferred work on one long-lived goroutine, giving the
// runtime its equivalent of a browser microtask queue: flushes, NextTick
// callbacks, and session event handlers all serialize here, so none of
// them ever observe a half-applied flush.
type taskLoop struct {
	mu    sync.Mutex
	tasks []func()

	startOnce sync.Once
	wake      chan struct{}
}

var loop taskLoop

func (l *taskLoop) post(fn func()) {
	l.startOnce.Do(func() {
		l.wake = make(chan struct{}, 1)
		go l.run()
	})

	l.mu.Lock()
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *taskLoop) run() {
	for range l.wake {
		for {
			l.mu.Lock()
			tasks := l.tasks
			l.tasks = nil
			l.mu.Unlock()

			if len(tasks) == 0 {
				break
			}
			for _, fn := range tasks {
				safeCall(fn, "task loop")
			}
		}
	}
}

// PostTask schedules fn onto the runtime task loop. Work posted here is
// serialized with scheduler flushes and NextTick callbacks; servers
// dispatch UI event handlers through PostTask so state mutation, flush,
// and patch emission never interleave across sessions.
func PostTask(fn func()) {
	loop.post(fn)
}
