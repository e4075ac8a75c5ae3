package assembler

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"

	"finitefield.org/contractor-site/internal/format"
)

// Renderer executes the page layout over a parsed template set.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses every *.tmpl file in fsys. The set must define "layout".
func NewRenderer(fsys fs.FS, labels Labels) (*Renderer, error) {
	if labels == nil {
		return nil, fmt.Errorf("assembler: renderer requires labels")
	}
	funcs := template.FuncMap{
		"t":        labels.T,
		"tf":       labels.Tf,
		"date":     format.Date,
		"currency": format.Currency,
		"tel": func(phone string) template.URL {
			return template.URL("tel:" + strings.ReplaceAll(phone, " ", ""))
		},
	}
	tmpl, err := template.New("site").Funcs(funcs).ParseFS(fsys, "*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("assembler: parse templates: %w", err)
	}
	if tmpl.Lookup("layout") == nil {
		return nil, fmt.Errorf("assembler: templates do not define \"layout\"")
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render writes the page HTML to w.
func (r *Renderer) Render(w io.Writer, page Page) error {
	if err := r.tmpl.ExecuteTemplate(w, "layout", page); err != nil {
		return fmt.Errorf("assembler: render %s: %w", page.Path, err)
	}
	return nil
}

// RenderBytes renders into a buffer so callers can audit before writing.
func (r *Renderer) RenderBytes(page Page) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, page); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
