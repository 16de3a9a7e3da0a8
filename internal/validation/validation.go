// Package validation carries user-facing input errors.
package validation

import "fmt"

// Error reports a rejected input field. It never accompanies a mutation.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// New returns a validation error for field.
func New(field, message string) *Error {
	return &Error{Field: field, Message: message}
}
