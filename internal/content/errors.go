package content

import (
	"fmt"
	"strings"

	"finitefield.org/contractor-site/internal/platform/validation"
)

// UnknownSlugError is returned when a lookup or reference names a record that
// does not exist.
type UnknownSlugError struct {
	Kind Kind
	Slug string
	// Ref is set when the slug was referenced from another record.
	Ref string
}

// Error implements the error interface.
func (e *UnknownSlugError) Error() string {
	if e.Ref != "" {
		return fmt.Sprintf("content: %s references unknown %s %q", e.Ref, e.Kind, e.Slug)
	}
	return fmt.Sprintf("content: unknown %s %q", e.Kind, e.Slug)
}

// DuplicateSlugError is returned when a table declares the same slug twice.
type DuplicateSlugError struct {
	Kind Kind
	Slug string
}

// Error implements the error interface.
func (e *DuplicateSlugError) Error() string {
	return fmt.Sprintf("content: duplicate %s slug %q", e.Kind, e.Slug)
}

// RecordError reports a record whose fields failed validation.
type RecordError struct {
	Kind     Kind
	Slug     string
	Problems []validation.FieldError
}

// Error implements the error interface.
func (e *RecordError) Error() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = p.Message
	}
	name := e.Slug
	if name == "" {
		name = "(no slug)"
	}
	return fmt.Sprintf("content: invalid %s %s: %s", e.Kind, name, strings.Join(parts, "; "))
}
