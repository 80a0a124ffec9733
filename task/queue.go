// Package task implements the shared task queue a window's deferred work
// is scheduled onto, and the pump that drains it. The queue is ordered per
// source: tasks from the same source run in FIFO insertion order, while
// tasks from different sources interleave at the drainer's discretion.
package task

import (
	"sync"
)

// Source is the logical lane a task belongs to. Per-lane FIFO order is
// guaranteed; cross-lane order is not.
type Source int

const (
	SourcePostedMessage Source = iota
	SourceTimer
	SourceIdleTask
	numSources
)

func (s Source) String() string {
	switch s {
	case SourcePostedMessage:
		return "posted-message"
	case SourceTimer:
		return "timer"
	case SourceIdleTask:
		return "idle-task"
	}
	return "unknown"
}

// pendingTask is a queued unit of work. Owned exclusively by the queue;
// it is dropped after execution or a Clear.
type pendingTask struct {
	source Source
	action func()
	order  uint64
}

// Queue is a multi-source FIFO task queue. One queue is shared by every
// window on a host loop, so all mutation is mutex-guarded; draining and
// mutation are expected to happen on the same logical thread.
type Queue struct {
	mu        sync.Mutex
	lanes     [numSources][]*pendingTask
	nextOrder uint64
	rotation  int
}

// NewQueue creates an empty task queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue appends an action to the given source's lane. It never blocks.
func (q *Queue) Enqueue(source Source, action func()) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.nextOrder++
	q.lanes[source] = append(q.lanes[source], &pendingTask{
		source: source,
		action: action,
		order:  q.nextOrder,
	})
}

// pop removes and returns the front task of the given lane, or nil.
func (q *Queue) pop(source Source) *pendingTask {
	q.mu.Lock()
	defer q.mu.Unlock()

	lane := q.lanes[source]
	if len(lane) == 0 {
		return nil
	}
	t := lane[0]
	q.lanes[source] = lane[1:]
	return t
}

// RunOne executes the front task of the given source's lane. Returns
// false if the lane was empty. The task runs outside the queue lock.
func (q *Queue) RunOne(source Source) bool {
	t := q.pop(source)
	if t == nil {
		return false
	}
	t.action()
	return true
}

// RunNext executes one task, choosing lanes round-robin so no source can
// starve the others. Returns false if every lane was empty.
func (q *Queue) RunNext() bool {
	q.mu.Lock()
	var t *pendingTask
	for i := 0; i < int(numSources); i++ {
		s := Source((q.rotation + i) % int(numSources))
		if lane := q.lanes[s]; len(lane) > 0 {
			t = lane[0]
			q.lanes[s] = lane[1:]
			q.rotation = (int(s) + 1) % int(numSources)
			break
		}
	}
	q.mu.Unlock()

	if t == nil {
		return false
	}
	t.action()
	return true
}

// HasPending reports whether any lane has queued tasks.
func (q *Queue) HasPending() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, lane := range q.lanes {
		if len(lane) > 0 {
			return true
		}
	}
	return false
}

// Len returns the total number of queued tasks across all lanes.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, lane := range q.lanes {
		n += len(lane)
	}
	return n
}

// LaneLen returns the number of queued tasks for one source.
func (q *Queue) LaneLen(source Source) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.lanes[source])
}

// Clear removes all pending tasks without running them.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range q.lanes {
		q.lanes[i] = nil
	}
}
