package messaging

import (
	"fmt"

	"github.com/chrisuehlinger/vibewindow/domerror"
	"github.com/chrisuehlinger/vibewindow/origin"
)

// TargetOrigin restricts who may receive a posted message: any origin, or
// exactly one. The "/" shorthand resolves to the sender's origin at call
// time, so it is always an exact restriction by the time it is stored.
type TargetOrigin struct {
	any    bool
	origin origin.Origin
}

// AnyOrigin returns the wildcard restriction.
func AnyOrigin() TargetOrigin {
	return TargetOrigin{any: true}
}

// ExactOrigin returns a restriction to exactly o.
func ExactOrigin(o origin.Origin) TargetOrigin {
	return TargetOrigin{origin: o}
}

// IsAny reports whether the restriction is the wildcard.
func (t TargetOrigin) IsAny() bool {
	return t.any
}

// Origin returns the exact origin. Only meaningful when IsAny is false.
func (t TargetOrigin) Origin() origin.Origin {
	return t.origin
}

func (t TargetOrigin) String() string {
	if t.any {
		return "*"
	}
	return t.origin.Serialize()
}

// ResolveTargetOrigin resolves a targetOrigin argument against the
// sender's origin: "/" means the sender's own origin (captured now, not
// at delivery time), "*" means any, and anything else must parse as a
// URL whose origin becomes the restriction.
func ResolveTargetOrigin(raw string, sender origin.Origin) (TargetOrigin, error) {
	switch raw {
	case "/":
		return ExactOrigin(sender), nil
	case "*":
		return AnyOrigin(), nil
	}
	o, err := origin.Parse(raw)
	if err != nil {
		return TargetOrigin{}, domerror.InvalidTargetOrigin(fmt.Sprintf("invalid URL for targetOrigin: %q", raw))
	}
	return ExactOrigin(o), nil
}
