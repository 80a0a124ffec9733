package js

import (
	"sync"
	"time"

	"github.com/dop251/goja"

	"github.com/chrisuehlinger/vibewindow/task"
)

// timer represents a scheduled timer (setTimeout or setInterval).
type timer struct {
	id       int
	callback goja.Callable
	args     []goja.Value
	dueTime  time.Time
	interval time.Duration // 0 for setTimeout, >0 for setInterval
	cleared  bool
}

// timerManager manages setTimeout and setInterval timers. Due timers are
// not invoked in place: process enqueues them on the shared task queue
// under the timer source, so they interleave with posted messages and
// idle work on one loop.
type timerManager struct {
	timers map[int]*timer
	nextID int
	queue  *task.Queue
	now    func() time.Time
	mu     sync.Mutex
}

func newTimerManager(queue *task.Queue, now func() time.Time) *timerManager {
	return &timerManager{
		timers: make(map[int]*timer),
		nextID: 1,
		queue:  queue,
		now:    now,
	}
}

// setTimeout schedules a one-time callback.
func (tm *timerManager) setTimeout(callback goja.Callable, delay time.Duration, args []goja.Value) int {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	id := tm.nextID
	tm.nextID++

	tm.timers[id] = &timer{
		id:       id,
		callback: callback,
		args:     args,
		dueTime:  tm.now().Add(delay),
		interval: 0,
	}

	return id
}

// setInterval schedules a recurring callback.
func (tm *timerManager) setInterval(callback goja.Callable, interval time.Duration, args []goja.Value) int {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	id := tm.nextID
	tm.nextID++

	tm.timers[id] = &timer{
		id:       id,
		callback: callback,
		args:     args,
		dueTime:  tm.now().Add(interval),
		interval: interval,
	}

	return id
}

// clearTimer clears a timer by ID. Clearing also marks the timer so that
// an already-enqueued invocation task becomes a no-op.
func (tm *timerManager) clearTimer(id int) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if t, ok := tm.timers[id]; ok {
		t.cleared = true
		delete(tm.timers, id)
	}
}

// process enqueues an invocation task for every due timer. Intervals are
// rescheduled immediately so a slow drain cannot starve them.
func (tm *timerManager) process(invoke func(goja.Callable, []goja.Value)) {
	tm.mu.Lock()
	now := tm.now()
	var due []*timer
	for _, t := range tm.timers {
		if !t.cleared && !t.dueTime.After(now) {
			due = append(due, t)
		}
	}
	for _, t := range due {
		if t.interval > 0 {
			t.dueTime = now.Add(t.interval)
		} else {
			delete(tm.timers, t.id)
		}
	}
	tm.mu.Unlock()

	for _, t := range due {
		t := t
		tm.queue.Enqueue(task.SourceTimer, func() {
			tm.mu.Lock()
			cleared := t.cleared
			tm.mu.Unlock()
			if cleared {
				return
			}
			invoke(t.callback, t.args)
		})
	}
}

// hasPending returns true if there are any pending timers.
func (tm *timerManager) hasPending() bool {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return len(tm.timers) > 0
}

// nextDueIn returns the time until the next timer is due. Zero means a
// timer is already due or none are pending.
func (tm *timerManager) nextDueIn() time.Duration {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if len(tm.timers) == 0 {
		return 0
	}

	now := tm.now()
	var min time.Duration = -1
	for _, t := range tm.timers {
		d := t.dueTime.Sub(now)
		if d <= 0 {
			return 0
		}
		if min < 0 || d < min {
			min = d
		}
	}
	return min
}
