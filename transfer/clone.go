package transfer

import (
	"encoding/json"
	"fmt"
)

// CloneEngine is the default Engine. It clones values through JSON, which
// rejects cyclic and non-serializable values the way a structured-clone
// implementation rejects them, and it transfers Ports.
type CloneEngine struct{}

// NewCloneEngine creates the default engine.
func NewCloneEngine() *CloneEngine {
	return &CloneEngine{}
}

// Serialize clones value and detaches every object in transferList.
// Validation happens before any detach, so a failed call leaves the
// transfer list untouched.
func (e *CloneEngine) Serialize(value interface{}, transferList []Transferable) (*Blob, error) {
	for _, t := range transferList {
		if _, ok := t.(*Port); !ok {
			return nil, errNotTransferable(t)
		}
		if t.Detached() {
			return nil, ErrDetached
		}
	}

	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("transfer: value is not cloneable: %w", err)
	}

	blob := &Blob{Data: data}
	for _, t := range transferList {
		if err := t.Detach(); err != nil {
			return nil, err
		}
		// Ownership moves into the blob as a fresh receiver-side end.
		blob.Ports = append(blob.Ports, NewPort())
	}
	return blob, nil
}

// Deserialize reconstructs the value and hands out the transferred ports
// in their original order.
func (e *CloneEngine) Deserialize(blob *Blob) (interface{}, []Transferable, error) {
	var value interface{}
	if err := json.Unmarshal(blob.Data, &value); err != nil {
		return nil, nil, fmt.Errorf("transfer: payload is not deserializable: %w", err)
	}

	transferred := make([]Transferable, len(blob.Ports))
	for i, p := range blob.Ports {
		transferred[i] = p
	}
	return value, transferred, nil
}
