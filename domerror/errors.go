// Package domerror defines the typed failures the window surface raises
// at call sites, named after the DOM exceptions they correspond to.
package domerror

import "fmt"

// Error is a typed exception with a name and message.
type Error struct {
	Name    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Name, e.Message)
}

// Is matches errors by name, so errors.Is works against the sentinel
// constructors below regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Name == e.Name
}

// Error names raised by this module.
const (
	NameInvalidURL          = "SyntaxError.InvalidURL"
	NameInvalidTargetOrigin = "SyntaxError.InvalidTargetOrigin"
	NameSerialization       = "DataCloneError"
)

// InvalidURL creates the error for a malformed navigation target.
func InvalidURL(message string) *Error {
	return &Error{Name: NameInvalidURL, Message: message}
}

// InvalidTargetOrigin creates the error for a malformed message-origin
// string.
func InvalidTargetOrigin(message string) *Error {
	return &Error{Name: NameInvalidTargetOrigin, Message: message}
}

// Serialization creates the error for a payload that is not cloneable or
// transferable.
func Serialization(message string) *Error {
	return &Error{Name: NameSerialization, Message: message}
}
