package seo

import (
	"errors"
	"fmt"
)

// ErrProfileIncomplete is returned by NewEmitter when the business profile
// lacks identity fields every document depends on.
var ErrProfileIncomplete = errors.New("seo: business profile incomplete")

// MissingFieldError reports a required field that was absent or empty. No
// document is emitted when it is returned.
type MissingFieldError struct {
	Schema string
	Field  string
}

// Error implements the error interface.
func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("seo: %s: missing required field %q", e.Schema, e.Field)
}

// InvalidValueError reports a field whose value breaks its contract, such as a
// negative price or a modification date before publication.
type InvalidValueError struct {
	Schema string
	Field  string
	Value  any
	Reason string
}

// Error implements the error interface.
func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("seo: %s: invalid %s %v: %s", e.Schema, e.Field, e.Value, e.Reason)
}

// SchemaError reports a document that does not satisfy the required-field
// schema of its @type.
type SchemaError struct {
	Type string
	Err  error
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("seo: %s document failed schema validation", e.Type)
	}
	return fmt.Sprintf("seo: %s document failed schema validation: %v", e.Type, e.Err)
}

// Unwrap exposes the underlying validator error.
func (e *SchemaError) Unwrap() error {
	return e.Err
}
