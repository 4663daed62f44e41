// Package schedule provides cancellable one-shot tasks tied to an owner's
// lifetime. The sync core has exactly two timers - the failed-placeholder
// removal delay and the merge engine's insert delay - and both must die
// deterministically when their owning session is torn down, instead of
// firing into a store that no longer matters.
package schedule

import (
	"sync"
	"time"
)

// TaskSet owns a group of pending timers. StopAll cancels everything still
// pending; tasks that already fired are unaffected.
type TaskSet struct {
	mu      sync.Mutex
	pending map[*time.Timer]struct{}
	stopped bool
}

// NewTaskSet returns an empty task set.
func NewTaskSet() *TaskSet {
	return &TaskSet{pending: make(map[*time.Timer]struct{})}
}

// After runs fn once d elapses, unless the set is stopped first. Calling
// After on a stopped set is a no-op.
func (ts *TaskSet) After(d time.Duration, fn func()) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ts.stopped {
		return
	}
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		ts.mu.Lock()
		_, live := ts.pending[t]
		delete(ts.pending, t)
		stopped := ts.stopped
		ts.mu.Unlock()
		// A timer that lost the race with StopAll must not run.
		if !live || stopped {
			return
		}
		fn()
	})
	ts.pending[t] = struct{}{}
}

// Pending reports how many tasks have not yet fired.
func (ts *TaskSet) Pending() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return len(ts.pending)
}

// StopAll cancels every pending task and rejects future ones.
func (ts *TaskSet) StopAll() {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.stopped = true
	for t := range ts.pending {
		t.Stop()
		delete(ts.pending, t)
	}
}
