package task

import (
	"testing"
	"time"
)

func TestQueueFIFOWithinSource(t *testing.T) {
	q := NewQueue()
	var got []int
	for i := 0; i < 5; i++ {
		i := i
		q.Enqueue(SourcePostedMessage, func() { got = append(got, i) })
	}

	for q.RunOne(SourcePostedMessage) {
	}

	for i, v := range got {
		if v != i {
			t.Fatalf("Expected FIFO order, got %v", got)
		}
	}
	if len(got) != 5 {
		t.Fatalf("Expected 5 tasks run, got %d", len(got))
	}
}

func TestQueueRunOneEmptyLane(t *testing.T) {
	q := NewQueue()
	q.Enqueue(SourceTimer, func() {})

	if q.RunOne(SourceIdleTask) {
		t.Error("RunOne on an empty lane should return false")
	}
	if !q.RunOne(SourceTimer) {
		t.Error("RunOne on a populated lane should return true")
	}
}

func TestQueueRoundRobinPreservesPerLaneOrder(t *testing.T) {
	q := NewQueue()
	var messages, timers []int
	for i := 0; i < 3; i++ {
		i := i
		q.Enqueue(SourcePostedMessage, func() { messages = append(messages, i) })
		q.Enqueue(SourceTimer, func() { timers = append(timers, i) })
	}

	for q.RunNext() {
	}

	for i := 0; i < 3; i++ {
		if messages[i] != i {
			t.Fatalf("Message lane out of order: %v", messages)
		}
		if timers[i] != i {
			t.Fatalf("Timer lane out of order: %v", timers)
		}
	}
}

func TestQueueTasksMayEnqueueMoreTasks(t *testing.T) {
	q := NewQueue()
	ran := 0
	q.Enqueue(SourceIdleTask, func() {
		ran++
		q.Enqueue(SourceIdleTask, func() { ran++ })
	})

	for q.RunNext() {
	}
	if ran != 2 {
		t.Errorf("Expected 2 tasks run, got %d", ran)
	}
}

func TestQueueClear(t *testing.T) {
	q := NewQueue()
	q.Enqueue(SourceTimer, func() { t.Error("Cleared task must not run") })
	q.Clear()
	if q.HasPending() {
		t.Error("Queue should be empty after Clear")
	}
	if q.RunNext() {
		t.Error("RunNext should find nothing after Clear")
	}
}

func TestPumpStepDrainsAndFiresFrames(t *testing.T) {
	q := NewQueue()
	now := time.Unix(0, 0)
	frames := 0
	ran := false

	p := NewPump(q, PumpOptions{
		FrameInterval: 16 * time.Millisecond,
		Now:           func() time.Time { return now },
		OnFrame:       func(time.Time) { frames++ },
	})

	q.Enqueue(SourcePostedMessage, func() { ran = true })

	now = now.Add(20 * time.Millisecond)
	if !p.Step() {
		t.Error("Step should report work done")
	}
	if !ran {
		t.Error("Queued task should have run")
	}
	if frames != 1 {
		t.Errorf("Expected 1 frame, got %d", frames)
	}

	// Within the frame interval: no new frame, no work.
	now = now.Add(time.Millisecond)
	if p.Step() {
		t.Error("Step should report no work")
	}
	if frames != 1 {
		t.Errorf("Expected still 1 frame, got %d", frames)
	}
}

func TestPumpIdleOnlyWhenQueueQuiet(t *testing.T) {
	q := NewQueue()
	idles := 0
	p := NewPump(q, PumpOptions{
		MaxPerDrain: 1,
		OnIdle:      func() { idles++ },
	})

	q.Enqueue(SourceTimer, func() {})
	q.Enqueue(SourceTimer, func() {})

	p.Step() // drains one of two; queue still busy
	if idles != 0 {
		t.Errorf("Idle period must not open while tasks remain, got %d", idles)
	}

	p.Step() // drains the last one
	if idles != 1 {
		t.Errorf("Expected idle period after queue went quiet, got %d", idles)
	}
}

func TestPumpDrainAll(t *testing.T) {
	q := NewQueue()
	ran := 0
	for i := 0; i < 10; i++ {
		q.Enqueue(SourceTimer, func() { ran++ })
	}
	NewPump(q, PumpOptions{}).DrainAll()
	if ran != 10 {
		t.Errorf("Expected 10 tasks run, got %d", ran)
	}
}
