// Package transfer defines the serialization capability used for
// cross-context messaging: an opaque serialize/deserialize engine that can
// move ownership of a bounded set of transferable objects between
// contexts. The engine is a collaborator of the messenger; callers only
// see the Engine interface and the Blob it produces.
package transfer

import (
	"errors"
	"fmt"
	"sync"
)

// ErrDetached is returned when a transfer list contains an object whose
// ownership has already been moved away.
var ErrDetached = errors.New("transfer: object is already detached")

// Transferable is a value whose ownership can be moved (not copied)
// between contexts during serialization.
type Transferable interface {
	// Detach moves ownership away from the current context. Fails with
	// ErrDetached if ownership was already moved.
	Detach() error

	// Detached reports whether ownership has been moved away.
	Detached() bool
}

// Blob is an opaque serialized payload plus the receiver-side ends of the
// transferred objects, in transfer-list order. A Blob is consumed exactly
// once by deserialization.
type Blob struct {
	Data  []byte
	Ports []*Port
}

// Engine serializes values for delivery into another context.
type Engine interface {
	// Serialize clones value into a Blob, detaching every object in
	// transferList. On failure nothing is detached and no Blob exists.
	Serialize(value interface{}, transferList []Transferable) (*Blob, error)

	// Deserialize reconstructs the value and the ordered transferred
	// objects from a Blob.
	Deserialize(blob *Blob) (interface{}, []Transferable, error)
}

// Port is the one transferable the default engine understands: a
// detachable channel endpoint. Transferring a Port detaches the sender's
// end and produces a fresh receiver-side end in the Blob.
type Port struct {
	mu       sync.Mutex
	detached bool
}

// NewPort creates an attached Port.
func NewPort() *Port {
	return &Port{}
}

// Detach moves ownership away from this context.
func (p *Port) Detach() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.detached {
		return ErrDetached
	}
	p.detached = true
	return nil
}

// Detached reports whether the port has been detached.
func (p *Port) Detached() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.detached
}

// errNotTransferable marks values in a transfer list the engine cannot
// move.
func errNotTransferable(v Transferable) error {
	return fmt.Errorf("transfer: %T is not transferable by this engine", v)
}
