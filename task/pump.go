package task

import (
	"context"
	"time"
)

// Pump drives a queue the way a host main loop does: each step drains a
// bounded batch of tasks, fires a frame tick when the frame interval has
// elapsed, and opens an idle period when the queue has gone quiet. The
// frame and idle hooks are supplied by the host that owns the windows.
type Pump struct {
	queue *Queue
	now   func() time.Time

	frameInterval time.Duration
	maxPerDrain   int

	onFrame func(now time.Time)
	onIdle  func()

	lastFrame time.Time
}

// PumpOptions configures a Pump. Zero-value fields fall back to defaults
// (16ms frames, 64 tasks per drain, wall clock).
type PumpOptions struct {
	FrameInterval time.Duration
	MaxPerDrain   int
	Now           func() time.Time
	OnFrame       func(now time.Time)
	OnIdle        func()
}

// NewPump creates a pump over the given queue.
func NewPump(queue *Queue, opts PumpOptions) *Pump {
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = 16 * time.Millisecond
	}
	if opts.MaxPerDrain <= 0 {
		opts.MaxPerDrain = 64
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Pump{
		queue:         queue,
		now:           opts.Now,
		frameInterval: opts.FrameInterval,
		maxPerDrain:   opts.MaxPerDrain,
		onFrame:       opts.OnFrame,
		onIdle:        opts.OnIdle,
	}
}

// Step runs one pump iteration. Returns true if it did any work (ran a
// task or fired a frame), so callers can decide when the loop is idle.
func (p *Pump) Step() bool {
	worked := false

	for i := 0; i < p.maxPerDrain; i++ {
		if !p.queue.RunNext() {
			break
		}
		worked = true
	}

	now := p.now()
	if p.onFrame != nil && now.Sub(p.lastFrame) >= p.frameInterval {
		p.lastFrame = now
		p.onFrame(now)
		worked = true
	}

	// Idle periods open only when the queue is quiet, otherwise posted
	// work would never see spare time.
	if p.onIdle != nil && !p.queue.HasPending() {
		p.onIdle()
	}

	return worked
}

// Run steps the pump until ctx is cancelled, sleeping briefly between
// steps that found no work.
func (p *Pump) Run(ctx context.Context) {
	for ctx.Err() == nil {
		if !p.Step() && !p.queue.HasPending() {
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Millisecond):
			}
		}
	}
}

// DrainAll runs queued tasks until the queue is empty, without frame
// ticks or idle periods. Intended for tests and teardown.
func (p *Pump) DrainAll() {
	for p.queue.RunNext() {
	}
}
