// Package window ties the schedulers together behind the window façade:
// a Host owns the shared task queue and the windows on it; each Window
// exposes open/postMessage/requestIdleCallback/requestAnimationFrame and
// the geometry getters to its callers.
package window

import (
	"sync"
	"time"

	"github.com/chrisuehlinger/vibewindow/config"
	"github.com/chrisuehlinger/vibewindow/logger"
	"github.com/chrisuehlinger/vibewindow/messaging"
	"github.com/chrisuehlinger/vibewindow/task"
	"github.com/chrisuehlinger/vibewindow/transfer"
)

// NavigateFunc performs a navigation of win to url on behalf of the
// navigation machinery this module does not own.
type NavigateFunc func(win *Window, url string) error

// HostOptions configures a Host. Zero-value fields fall back to the
// default policy, a nop logger, the default clone engine, the wall
// clock, and a navigation that swaps in a fresh document for the URL.
type HostOptions struct {
	Policy   config.Policy
	Logger   logger.Logger
	Engine   transfer.Engine
	Now      func() time.Time
	Navigate NavigateFunc
}

// Host is the main-loop side of a group of windows: one shared task
// queue, one pump, one error sink. Multiple windows' tasks land on the
// one queue, which serializes them.
type Host struct {
	mu          sync.Mutex
	queue       *task.Queue
	pump        *task.Pump
	policy      config.Policy
	log         logger.Logger
	engine      transfer.Engine
	messenger   *messaging.Messenger
	now         func() time.Time
	navigate    NavigateFunc
	start       time.Time
	windows     []*Window
	nextContext uint64
	terminating bool
}

// NewHost creates a host loop with no windows.
func NewHost(opts HostOptions) *Host {
	if opts.Policy == (config.Policy{}) {
		opts.Policy = config.Default()
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop{}
	}
	if opts.Engine == nil {
		opts.Engine = transfer.NewCloneEngine()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	h := &Host{
		queue:     task.NewQueue(),
		policy:    opts.Policy,
		log:       opts.Logger,
		engine:    opts.Engine,
		messenger: messaging.NewMessenger(opts.Engine),
		now:       opts.Now,
		navigate:  opts.Navigate,
	}
	h.start = h.now()
	if h.navigate == nil {
		h.navigate = h.defaultNavigate
	}

	h.pump = task.NewPump(h.queue, task.PumpOptions{
		FrameInterval: time.Duration(h.policy.FrameIntervalMS) * time.Millisecond,
		MaxPerDrain:   h.policy.MaxTasksPerDrain,
		Now:           h.now,
		OnFrame:       h.runFrameCallbacks,
		OnIdle:        h.startIdlePeriods,
	})
	return h
}

// Queue returns the shared task queue.
func (h *Host) Queue() *task.Queue {
	return h.queue
}

// Pump returns the host loop driver.
func (h *Host) Pump() *task.Pump {
	return h.pump
}

// ReportError surfaces an uncaught handler error to the error sink.
func (h *Host) ReportError(err error) {
	h.log.Error("uncaught error in callback: %v", err)
}

// Terminate marks the host as shutting down and discards pending tasks.
// open() returns null while termination is in progress.
func (h *Host) Terminate() {
	h.mu.Lock()
	h.terminating = true
	h.mu.Unlock()
	h.queue.Clear()
}

// Terminating reports whether Terminate has been called.
func (h *Host) Terminating() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.terminating
}

// Windows returns a snapshot of the windows on this host.
func (h *Host) Windows() []*Window {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*Window(nil), h.windows...)
}

// FindNamed returns the window with the given name, or nil.
func (h *Host) FindNamed(name string) *Window {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, w := range h.windows {
		if w.Name() == name {
			return w
		}
	}
	return nil
}

// runFrameCallbacks is the per-frame pump hook: every window's animation
// frame driver runs with the same timestamp.
func (h *Host) runFrameCallbacks(now time.Time) {
	ts := float64(now.Sub(h.start)) / float64(time.Millisecond)
	for _, w := range h.Windows() {
		w.frames.Run(ts)
	}
}

// startIdlePeriods is the quiet-queue pump hook.
func (h *Host) startIdlePeriods() {
	for _, w := range h.Windows() {
		w.idle.StartIdlePeriod()
	}
}

// defaultNavigate swaps in a fresh document for the URL. Real embedders
// replace this with their navigation machinery via HostOptions.
func (h *Host) defaultNavigate(win *Window, url string) error {
	doc, err := NewDocument(url, "")
	if err != nil {
		return err
	}
	win.SetDocument(doc)
	return nil
}
