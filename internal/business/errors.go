package business

import (
	"fmt"
	"strings"

	"finitefield.org/contractor-site/internal/platform/validation"
)

// ProfileError reports the profile fields that failed validation.
type ProfileError struct {
	Problems []validation.FieldError
}

// Error implements the error interface.
func (e *ProfileError) Error() string {
	if e == nil || len(e.Problems) == 0 {
		return "business: invalid profile"
	}
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = p.Message
	}
	return fmt.Sprintf("business: invalid profile: %s", strings.Join(parts, "; "))
}

// Fields lists the offending yaml keys in validation order.
func (e *ProfileError) Fields() []string {
	if e == nil {
		return nil
	}
	out := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		out = append(out, p.Field)
	}
	return out
}

func newProfileError(problems []validation.FieldError) *ProfileError {
	return &ProfileError{Problems: problems}
}
