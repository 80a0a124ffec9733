package idle

import (
	"errors"
	"testing"
	"time"

	"github.com/chrisuehlinger/vibewindow/task"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestScheduler(q *task.Queue, clock *fakeClock) *Scheduler {
	return NewScheduler(q, Options{
		Now:           clock.now,
		DeadlineSlice: 50 * time.Millisecond,
	})
}

func drainIdleLane(q *task.Queue) {
	for q.RunOne(task.SourceIdleTask) {
	}
}

func TestRegisterReturnsMonotonicHandles(t *testing.T) {
	s := newTestScheduler(task.NewQueue(), &fakeClock{})

	h1 := s.Register(func(Deadline) error { return nil }, 0)
	h2 := s.Register(func(Deadline) error { return nil }, 0)
	s.Cancel(h1)
	h3 := s.Register(func(Deadline) error { return nil }, 0)

	if !(h1 < h2 && h2 < h3) {
		t.Errorf("Handles must strictly increase even across cancellations: %d %d %d", h1, h2, h3)
	}
}

func TestIdlePeriodDrainsInRegistrationOrder(t *testing.T) {
	q := task.NewQueue()
	s := newTestScheduler(q, &fakeClock{t: time.Unix(0, 0)})

	var got []int
	for i := 0; i < 3; i++ {
		i := i
		s.Register(func(Deadline) error {
			got = append(got, i)
			return nil
		}, 0)
	}

	s.StartIdlePeriod()
	drainIdleLane(q)

	if len(got) != 3 {
		t.Fatalf("Expected 3 invocations, got %d", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("Expected registration order, got %v", got)
		}
	}

	// A second idle period with nothing registered queues nothing.
	s.StartIdlePeriod()
	if q.HasPending() {
		t.Error("Empty runnable list must not enqueue an invocation task")
	}
}

func TestCallbacksRunExactlyOnce(t *testing.T) {
	q := task.NewQueue()
	s := newTestScheduler(q, &fakeClock{t: time.Unix(0, 0)})

	runs := 0
	s.Register(func(Deadline) error { runs++; return nil }, 0)

	s.StartIdlePeriod()
	drainIdleLane(q)
	s.StartIdlePeriod()
	drainIdleLane(q)

	if runs != 1 {
		t.Errorf("Expected exactly one invocation, got %d", runs)
	}
}

func TestCancelPendingBeforeIdlePeriod(t *testing.T) {
	q := task.NewQueue()
	s := newTestScheduler(q, &fakeClock{t: time.Unix(0, 0)})

	ran := false
	h := s.Register(func(Deadline) error { ran = true; return nil }, 0)
	other := 0
	s.Register(func(Deadline) error { other++; return nil }, 0)

	s.Cancel(h)
	s.StartIdlePeriod()
	drainIdleLane(q)

	if ran {
		t.Error("Cancelled pending callback must never run")
	}
	if other != 1 {
		t.Errorf("Other callback should still run once, got %d", other)
	}
}

func TestCancelRunnableMidDrain(t *testing.T) {
	q := task.NewQueue()
	s := newTestScheduler(q, &fakeClock{t: time.Unix(0, 0)})

	var victim uint32
	ran := []string{}
	s.Register(func(Deadline) error {
		ran = append(ran, "first")
		s.Cancel(victim)
		return nil
	}, 0)
	victim = s.Register(func(Deadline) error {
		ran = append(ran, "victim")
		return nil
	}, 0)
	s.Register(func(Deadline) error {
		ran = append(ran, "last")
		return nil
	}, 0)

	s.StartIdlePeriod()
	drainIdleLane(q)

	if len(ran) != 2 || ran[0] != "first" || ran[1] != "last" {
		t.Errorf("Expected [first last], got %v", ran)
	}
}

func TestCancelUnknownHandleIsNoop(t *testing.T) {
	s := newTestScheduler(task.NewQueue(), &fakeClock{})
	s.Cancel(9999) // must not panic or error
}

func TestDeadlineExceededRequeuesInvocationTask(t *testing.T) {
	q := task.NewQueue()
	clock := &fakeClock{t: time.Unix(0, 0)}
	s := newTestScheduler(q, clock)

	var got []int
	for i := 0; i < 3; i++ {
		i := i
		s.Register(func(d Deadline) error {
			got = append(got, i)
			// Burn through the whole idle period.
			clock.advance(100 * time.Millisecond)
			return nil
		}, 0)
	}

	s.StartIdlePeriod()

	// Each invocation task should manage exactly one callback before its
	// deadline passes, then re-queue itself.
	steps := 0
	for q.RunOne(task.SourceIdleTask) {
		steps++
	}

	if steps != 3 {
		t.Errorf("Expected 3 invocation tasks, got %d", steps)
	}
	if len(got) != 3 {
		t.Errorf("Expected all 3 callbacks invoked, got %v", got)
	}
}

func TestDeadlineAccessor(t *testing.T) {
	q := task.NewQueue()
	clock := &fakeClock{t: time.Unix(0, 0)}
	s := newTestScheduler(q, clock)

	var remaining time.Duration
	var timedOut bool
	s.Register(func(d Deadline) error {
		clock.advance(20 * time.Millisecond)
		remaining = d.TimeRemaining()
		timedOut = d.DidTimeout()
		return nil
	}, 0)

	s.StartIdlePeriod()
	drainIdleLane(q)

	if remaining != 30*time.Millisecond {
		t.Errorf("Expected 30ms remaining, got %v", remaining)
	}
	if timedOut {
		t.Error("DidTimeout must report false; the timeout option is best-effort only")
	}
}

func TestHandlerErrorIsReportedAndIsolated(t *testing.T) {
	q := task.NewQueue()
	var reported []error
	s := NewScheduler(q, Options{
		Now:    (&fakeClock{t: time.Unix(0, 0)}).now,
		Report: func(err error) { reported = append(reported, err) },
	})

	boom := errors.New("boom")
	s.Register(func(Deadline) error { return boom }, 0)
	survived := false
	s.Register(func(Deadline) error { survived = true; return nil }, 0)

	s.StartIdlePeriod()
	drainIdleLane(q)

	if len(reported) != 1 || !errors.Is(reported[0], boom) {
		t.Errorf("Expected boom reported once, got %v", reported)
	}
	if !survived {
		t.Error("A failing handler must not drop its siblings")
	}
}

func TestRegisterDuringInvocationWaitsForNextPeriod(t *testing.T) {
	q := task.NewQueue()
	s := newTestScheduler(q, &fakeClock{t: time.Unix(0, 0)})

	rescheduled := false
	s.Register(func(Deadline) error {
		s.Register(func(Deadline) error {
			rescheduled = true
			return nil
		}, 0)
		return nil
	}, 0)

	s.StartIdlePeriod()
	drainIdleLane(q)
	if rescheduled {
		t.Error("Callback registered during invocation must wait for the next idle period")
	}

	s.StartIdlePeriod()
	drainIdleLane(q)
	if !rescheduled {
		t.Error("Re-registered callback should run in the following idle period")
	}
}
