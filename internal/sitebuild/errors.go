package sitebuild

import (
	"errors"
	"fmt"
	"strings"

	"finitefield.org/contractor-site/internal/assembler"
	"finitefield.org/contractor-site/internal/content"
	"finitefield.org/contractor-site/internal/platform/paths"
)

var (
	errAssemblerRequired = errors.New("sitebuild: assembler is not configured")
	errRendererRequired  = errors.New("sitebuild: renderer is not configured")
	errOutputDirRequired = errors.New("sitebuild: output directory is required")
)

// PageError reports a page that could not be generated. Ref is the page path
// when it is known and a description of the binding otherwise.
type PageError struct {
	Ref string
	Err error
}

// Error implements the error interface.
func (e *PageError) Error() string {
	return fmt.Sprintf("page %s: %v", e.Ref, e.Err)
}

// Unwrap exposes the underlying failure.
func (e *PageError) Unwrap() error { return e.Err }

// bindingRef names a binding by its canonical path, or by its slugs when no
// path can be built from them.
func bindingRef(b assembler.Binding) string {
	params := paths.Params{
		City:    content.NormalizeSlug(b.City),
		Service: content.NormalizeSlug(b.Service),
		Article: content.NormalizeSlug(b.Article),
	}
	if p, err := paths.Build(b.Kind, params); err == nil {
		return p
	}
	parts := []string{string(b.Kind)}
	if b.City != "" {
		parts = append(parts, "city="+b.City)
	}
	if b.Service != "" {
		parts = append(parts, "service="+b.Service)
	}
	if b.Article != "" {
		parts = append(parts, "article="+b.Article)
	}
	return strings.Join(parts, " ")
}
