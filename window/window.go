package window

import (
	"sync"
	"time"

	"golang.org/x/net/html"

	"github.com/chrisuehlinger/vibewindow/frame"
	"github.com/chrisuehlinger/vibewindow/idle"
	"github.com/chrisuehlinger/vibewindow/messaging"
	"github.com/chrisuehlinger/vibewindow/origin"
	"github.com/chrisuehlinger/vibewindow/task"
	"github.com/chrisuehlinger/vibewindow/transfer"
)

// Window is one script-visible window on a host loop. Registration calls
// mutate local state synchronously and return a handle; invocation
// happens later, driven by the host's queue drain or frame pump.
type Window struct {
	mu       sync.Mutex
	host     *Host
	id       uint64
	name     string
	document *Document
	geometry Geometry
	opener   *Window
	popup    bool

	idle   *idle.Scheduler
	frames *frame.Driver
	events *messaging.EventTarget
}

// NewWindow creates a window on this host, starting at about:blank. A
// nil document means about:blank.
func (h *Host) NewWindow(name string, doc *Document) *Window {
	if doc == nil {
		doc = AboutBlank()
	}

	h.mu.Lock()
	h.nextContext++
	w := &Window{
		host:     h,
		id:       h.nextContext,
		name:     name,
		document: doc,
		geometry: DefaultGeometry(),
	}
	h.windows = append(h.windows, w)
	h.mu.Unlock()

	w.idle = idle.NewScheduler(h.queue, idle.Options{
		Now:           h.now,
		DeadlineSlice: time.Duration(h.policy.IdleDeadlineMS) * time.Millisecond,
		Report:        h.ReportError,
	})
	w.frames = frame.NewDriver(h.ReportError)
	w.events = messaging.NewEventTarget(h.ReportError)
	return w
}

// ContextID implements messaging.ContextRef: a stable identity for this
// window that survives navigation.
func (w *Window) ContextID() uint64 {
	return w.id
}

// Host returns the host loop this window lives on.
func (w *Window) Host() *Host {
	return w.host
}

// Queue returns the shared task queue (messaging.Target).
func (w *Window) Queue() *task.Queue {
	return w.host.queue
}

// Name returns the window's target name.
func (w *Window) Name() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.name
}

// SetName renames the window.
func (w *Window) SetName(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.name = name
}

// Document returns the window's active document.
func (w *Window) Document() *Document {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.document
}

// SetDocument replaces the active document, as navigation does. Messages
// posted before the swap are origin-checked against the new document at
// delivery time.
func (w *Window) SetDocument(doc *Document) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.document = doc
}

// NamedItem looks up a window named property: the first element in the
// active document exposed under name.
func (w *Window) NamedItem(name string) *html.Node {
	return w.Document().NamedItem(name)
}

// DocumentOrigin returns the current document's origin
// (messaging.Target).
func (w *Window) DocumentOrigin() origin.Origin {
	return w.Document().Origin()
}

// MessageEvents returns the window's message-event target
// (messaging.Target).
func (w *Window) MessageEvents() *messaging.EventTarget {
	return w.events
}

// Opener returns the window that opened this one, or nil when there is
// none or it was suppressed with noopener.
func (w *Window) Opener() *Window {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.opener
}

// IsPopup reports whether the window was opened with popup intent.
func (w *Window) IsPopup() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.popup
}

// SetGeometry attaches a geometry supplier (the rendering side).
func (w *Window) SetGeometry(g Geometry) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.geometry = g
}

func (w *Window) geo() Geometry {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.geometry
}

// Viewport and screen getters, backed by the attached Geometry.

func (w *Window) InnerWidth() int  { width, _ := w.geo().InnerSize(); return width }
func (w *Window) InnerHeight() int { _, height := w.geo().InnerSize(); return height }
func (w *Window) OuterWidth() int  { width, _ := w.geo().OuterSize(); return width }
func (w *Window) OuterHeight() int { _, height := w.geo().OuterSize(); return height }
func (w *Window) ScrollX() float64 { x, _ := w.geo().ScrollOffset(); return x }
func (w *Window) ScrollY() float64 { _, y := w.geo().ScrollOffset(); return y }
func (w *Window) ScreenX() int     { x, _ := w.geo().ScreenPosition(); return x }
func (w *Window) ScreenY() int     { _, y := w.geo().ScreenPosition(); return y }

func (w *Window) DevicePixelRatio() float64 {
	return w.geo().DevicePixelRatio()
}

// PostMessageOptions is the dictionary form of PostMessage.
type PostMessageOptions struct {
	TargetOrigin string
	Transfer     []transfer.Transferable
}

// PostMessage posts a message to this window from the given sender
// window. Serialization and origin resolution happen before it returns;
// delivery happens later on the host loop. The call never blocks on
// delivery.
func (w *Window) PostMessage(from *Window, message interface{}, targetOrigin string, transferList []transfer.Transferable) error {
	return w.host.messenger.Post(messaging.Sender{
		Origin:  from.DocumentOrigin(),
		Context: from,
	}, w, message, targetOrigin, transferList)
}

// PostMessageWithOptions is the options-dictionary entry point. An empty
// TargetOrigin means "/" (the sender's own origin).
func (w *Window) PostMessageWithOptions(from *Window, message interface{}, opts PostMessageOptions) error {
	targetOrigin := opts.TargetOrigin
	if targetOrigin == "" {
		targetOrigin = "/"
	}
	return w.PostMessage(from, message, targetOrigin, opts.Transfer)
}

// OnMessage registers a listener for delivered messages and returns its
// id.
func (w *Window) OnMessage(listener messaging.Listener) int {
	return w.events.AddListener(messaging.EventMessage, listener)
}

// OnMessageError registers a listener for failed deliveries and returns
// its id.
func (w *Window) OnMessageError(listener messaging.Listener) int {
	return w.events.AddListener(messaging.EventMessageError, listener)
}

// IdleRequestOptions carries the requestIdleCallback options. Timeout is
// accepted for compatibility but scheduling stays best-effort: it never
// forces an invocation.
type IdleRequestOptions struct {
	Timeout time.Duration
}

// RequestIdleCallback registers an idle callback and returns its handle.
func (w *Window) RequestIdleCallback(handler idle.Handler, opts IdleRequestOptions) uint32 {
	return w.idle.Register(handler, opts.Timeout)
}

// CancelIdleCallback cancels a not-yet-invoked idle callback. No-op for
// unknown or already-fired handles.
func (w *Window) CancelIdleCallback(handle uint32) {
	w.idle.Cancel(handle)
}

// RequestAnimationFrame registers a callback for the next frame tick and
// returns its handle.
func (w *Window) RequestAnimationFrame(cb frame.Callback) int32 {
	return w.frames.Add(cb)
}

// CancelAnimationFrame cancels a not-yet-invoked frame callback. No-op
// for unknown or already-fired handles.
func (w *Window) CancelAnimationFrame(handle int32) {
	w.frames.Remove(handle)
}

// IdleScheduler exposes the idle scheduler to the host pump and tests.
func (w *Window) IdleScheduler() *idle.Scheduler {
	return w.idle
}

// FrameDriver exposes the frame driver to the host pump and tests.
func (w *Window) FrameDriver() *frame.Driver {
	return w.frames
}
