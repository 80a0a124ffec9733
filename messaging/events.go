package messaging

import (
	"sync"

	"github.com/chrisuehlinger/vibewindow/transfer"
)

// EventType distinguishes successful deliveries from deserialization
// failures.
type EventType string

const (
	EventMessage      EventType = "message"
	EventMessageError EventType = "messageerror"
)

// ContextRef identifies the sending context. The scheduler never holds a
// long-lived owning reference to engine objects, only this identity.
type ContextRef interface {
	ContextID() uint64
}

// Event is a delivered message event. Data and Ports are only populated
// for EventMessage.
type Event struct {
	Type   EventType
	Origin string // serialization of the sender's origin
	Source ContextRef
	Data   interface{}
	Ports  []transfer.Transferable // transferred objects, in transfer-list order
}

// Listener handles a delivered event. A returned error is reported to the
// error sink and does not affect other listeners.
type Listener func(Event) error

type listenerEntry struct {
	id       int
	listener Listener
}

// EventTarget manages message-event listeners for one window.
type EventTarget struct {
	mu        sync.RWMutex
	listeners map[EventType][]listenerEntry
	nextID    int
	report    func(error)
}

// NewEventTarget creates an empty event target. report receives listener
// errors; nil means discard.
func NewEventTarget(report func(error)) *EventTarget {
	if report == nil {
		report = func(error) {}
	}
	return &EventTarget{
		listeners: make(map[EventType][]listenerEntry),
		report:    report,
	}
}

// AddListener registers a listener and returns its id for removal.
func (et *EventTarget) AddListener(eventType EventType, listener Listener) int {
	et.mu.Lock()
	defer et.mu.Unlock()

	et.nextID++
	et.listeners[eventType] = append(et.listeners[eventType], listenerEntry{
		id:       et.nextID,
		listener: listener,
	})
	return et.nextID
}

// RemoveListener unregisters the listener with the given id.
func (et *EventTarget) RemoveListener(eventType EventType, id int) {
	et.mu.Lock()
	defer et.mu.Unlock()

	listeners := et.listeners[eventType]
	for i, l := range listeners {
		if l.id == id {
			et.listeners[eventType] = append(listeners[:i], listeners[i+1:]...)
			return
		}
	}
}

// Dispatch delivers event to every listener registered for its type, in
// registration order. Listener errors are reported and isolated.
func (et *EventTarget) Dispatch(event Event) {
	et.mu.RLock()
	listeners := make([]listenerEntry, len(et.listeners[event.Type]))
	copy(listeners, et.listeners[event.Type])
	et.mu.RUnlock()

	for _, l := range listeners {
		if err := l.listener(event); err != nil {
			et.report(err)
		}
	}
}
