package messaging

import (
	"errors"
	"testing"
)

func TestEventTargetAddRemove(t *testing.T) {
	et := NewEventTarget(nil)

	calls := 0
	id := et.AddListener(EventMessage, func(Event) error {
		calls++
		return nil
	})

	et.Dispatch(Event{Type: EventMessage})
	et.RemoveListener(EventMessage, id)
	et.Dispatch(Event{Type: EventMessage})

	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestEventTargetTypeIsolation(t *testing.T) {
	et := NewEventTarget(nil)

	messages, errs := 0, 0
	et.AddListener(EventMessage, func(Event) error { messages++; return nil })
	et.AddListener(EventMessageError, func(Event) error { errs++; return nil })

	et.Dispatch(Event{Type: EventMessageError})

	if messages != 0 || errs != 1 {
		t.Errorf("Expected only the messageerror listener to fire, got %d/%d", messages, errs)
	}
}

func TestEventTargetListenerErrorsIsolated(t *testing.T) {
	var reported []error
	et := NewEventTarget(func(err error) { reported = append(reported, err) })

	boom := errors.New("boom")
	et.AddListener(EventMessage, func(Event) error { return boom })
	survived := false
	et.AddListener(EventMessage, func(Event) error { survived = true; return nil })

	et.Dispatch(Event{Type: EventMessage})

	if len(reported) != 1 || !errors.Is(reported[0], boom) {
		t.Errorf("Expected boom reported once, got %v", reported)
	}
	if !survived {
		t.Error("A failing listener must not drop its siblings")
	}
}
