// Package idle implements the deadline-bounded idle-callback scheduler: a
// two-list (pending/runnable) state machine whose invocation tasks run on
// the shared task queue and time-slice cooperatively against a
// host-supplied deadline.
package idle

import (
	"sync"
	"time"

	"github.com/chrisuehlinger/vibewindow/task"
)

// Handler is an idle callback. It receives a deadline accessor bound to
// the idle period it runs in. A returned error is reported to the
// top-level error sink and does not abort the scheduler.
type Handler func(deadline Deadline) error

// Deadline lets a running callback check how much idle time remains.
type Deadline struct {
	now      func() time.Time
	deadline time.Time
}

// TimeRemaining returns the time left before the idle period's deadline,
// or zero if the deadline has passed.
func (d Deadline) TimeRemaining() time.Duration {
	remaining := d.deadline.Sub(d.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// DidTimeout reports whether the callback was forced to run because its
// timeout expired. The timeout option is accepted but never enforced, so
// this is always false.
func (d Deadline) DidTimeout() bool {
	return false
}

// callback is a registered idle callback. It lives in exactly one of the
// pending or runnable lists until it is invoked or cancelled.
type callback struct {
	handle  uint32
	handler Handler
	timeout time.Duration // accepted via options, not enforced
}

// Options configures a Scheduler. Zero-value fields fall back to the wall
// clock, a 50ms deadline slice, and a discarding error reporter.
type Options struct {
	// Now is the clock used for deadlines.
	Now func() time.Time

	// DeadlineSlice is how far past "now" the host places each idle
	// period's deadline.
	DeadlineSlice time.Duration

	// Report receives uncaught handler errors.
	Report func(error)
}

// Scheduler runs idle callbacks for one window. All methods are safe for
// use from the task-processing thread; handle allocation is per instance,
// so windows do not interfere with each other.
type Scheduler struct {
	mu       sync.Mutex
	queue    *task.Queue
	now      func() time.Time
	slice    time.Duration
	report   func(error)
	next     uint32
	pending  []*callback
	runnable []*callback
}

// NewScheduler creates an idle scheduler that enqueues its invocation
// tasks on queue.
func NewScheduler(queue *task.Queue, opts Options) *Scheduler {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DeadlineSlice <= 0 {
		opts.DeadlineSlice = 50 * time.Millisecond
	}
	if opts.Report == nil {
		opts.Report = func(error) {}
	}
	return &Scheduler{
		queue:  queue,
		now:    opts.Now,
		slice:  opts.DeadlineSlice,
		report: opts.Report,
	}
}

// Register appends handler to the pending list and returns its handle.
// Handles increase monotonically and are never reused within a
// scheduler's lifetime. timeout is recorded but best-effort only: it does
// not force invocation.
func (s *Scheduler) Register(handler Handler, timeout time.Duration) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.next++
	s.pending = append(s.pending, &callback{
		handle:  s.next,
		handler: handler,
		timeout: timeout,
	})
	return s.next
}

// Cancel removes the callback with the given handle from whichever list
// currently holds it. No-op if the handle already fired or never existed.
func (s *Scheduler) Cancel(handle uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if removed, rest := removeHandle(s.pending, handle); removed {
		s.pending = rest
		return
	}
	if removed, rest := removeHandle(s.runnable, handle); removed {
		s.runnable = rest
	}
}

func removeHandle(list []*callback, handle uint32) (bool, []*callback) {
	for i, cb := range list {
		if cb.handle == handle {
			return true, append(list[:i], list[i+1:]...)
		}
	}
	return false, list
}

// StartIdlePeriod moves every pending callback to the runnable list and,
// if there is anything to run, queues one invocation task. Called by the
// host when it detects spare time; calling it with nothing registered is
// free, which keeps a quiet loop from spinning.
func (s *Scheduler) StartIdlePeriod() {
	s.mu.Lock()
	s.runnable = append(s.runnable, s.pending...)
	s.pending = nil
	empty := len(s.runnable) == 0
	s.mu.Unlock()

	if empty {
		return
	}
	s.queue.Enqueue(task.SourceIdleTask, s.invoke)
}

// invoke is the invocation task: it runs runnable callbacks until the
// deadline is exceeded or the list drains, then re-queues itself if work
// remains.
func (s *Scheduler) invoke() {
	deadline := s.now().Add(s.slice)
	accessor := Deadline{now: s.now, deadline: deadline}

	for s.now().Before(deadline) {
		s.mu.Lock()
		if len(s.runnable) == 0 {
			s.mu.Unlock()
			return
		}
		cb := s.runnable[0]
		s.runnable = s.runnable[1:]
		s.mu.Unlock()

		if err := cb.handler(accessor); err != nil {
			s.report(err)
		}
	}

	s.mu.Lock()
	remaining := len(s.runnable)
	s.mu.Unlock()
	if remaining > 0 {
		s.queue.Enqueue(task.SourceIdleTask, s.invoke)
	}
}

// PendingCount returns how many callbacks await the next idle period.
func (s *Scheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// RunnableCount returns how many callbacks are eligible right now.
func (s *Scheduler) RunnableCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.runnable)
}
