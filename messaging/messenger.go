// Package messaging implements asynchronous cross-context message
// delivery: synchronous target-origin resolution and serialization at the
// call site, a delivery task on the receiver's queue, and an origin
// re-check plus event dispatch at delivery time.
package messaging

import (
	"fmt"

	"github.com/chrisuehlinger/vibewindow/domerror"
	"github.com/chrisuehlinger/vibewindow/origin"
	"github.com/chrisuehlinger/vibewindow/task"
	"github.com/chrisuehlinger/vibewindow/transfer"
)

// Target is the receiving side of a posted message. DocumentOrigin is
// consulted at delivery time, not send time, so a navigation in between
// changes the outcome.
type Target interface {
	Queue() *task.Queue
	DocumentOrigin() origin.Origin
	MessageEvents() *EventTarget
}

// Sender is a snapshot of the sending context, captured synchronously at
// the call site.
type Sender struct {
	Origin  origin.Origin
	Context ContextRef
}

// envelope pairs a serialized payload with everything the delivery task
// needs. It is constructed at call time and consumed exactly once.
type envelope struct {
	payload      *transfer.Blob
	targetOrigin TargetOrigin
	senderOrigin origin.Origin
	source       ContextRef
}

// Messenger posts messages between contexts using a transfer engine.
type Messenger struct {
	engine transfer.Engine
}

// NewMessenger creates a messenger over the given engine. A nil engine
// falls back to the default clone engine.
func NewMessenger(engine transfer.Engine) *Messenger {
	if engine == nil {
		engine = transfer.NewCloneEngine()
	}
	return &Messenger{engine: engine}
}

// Post runs the window post-message steps: resolve targetOrigin against
// the sender, serialize message with its transfer list, and queue a
// delivery task on the target's queue. It returns before delivery and
// never blocks on it. On error nothing is scheduled.
func (m *Messenger) Post(sender Sender, target Target, message interface{}, targetOrigin string, transferList []transfer.Transferable) error {
	resolved, err := ResolveTargetOrigin(targetOrigin, sender.Origin)
	if err != nil {
		return err
	}

	blob, err := m.engine.Serialize(message, transferList)
	if err != nil {
		return domerror.Serialization(fmt.Sprintf("message could not be serialized: %v", err))
	}

	env := &envelope{
		payload:      blob,
		targetOrigin: resolved,
		senderOrigin: sender.Origin,
		source:       sender.Context,
	}
	target.Queue().Enqueue(task.SourcePostedMessage, func() {
		m.deliver(env, target)
	})
	return nil
}

// deliver is the delivery task. Single attempt, never retried.
func (m *Messenger) deliver(env *envelope, target Target) {
	// The origin gate uses the target's current document, which may have
	// navigated since the message was sent.
	if !env.targetOrigin.IsAny() && !target.DocumentOrigin().IsSameOrigin(env.targetOrigin.Origin()) {
		return
	}

	senderOrigin := env.senderOrigin.Serialize()

	data, transferred, err := m.engine.Deserialize(env.payload)
	if err != nil {
		target.MessageEvents().Dispatch(Event{
			Type:   EventMessageError,
			Origin: senderOrigin,
			Source: env.source,
		})
		return
	}

	target.MessageEvents().Dispatch(Event{
		Type:   EventMessage,
		Origin: senderOrigin,
		Source: env.source,
		Data:   data,
		Ports:  transferred,
	})
}
