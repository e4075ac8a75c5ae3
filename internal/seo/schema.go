package seo

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFiles embed.FS

const schemaBaseURL = "file:///schemas/"

var (
	schemasOnce sync.Once
	schemas     map[string]*jsonschema.Schema
	schemasErr  error
)

// compileSchemas compiles one schema per @type from the embedded files. A
// schema file is named after the @type it constrains.
func compileSchemas() (map[string]*jsonschema.Schema, error) {
	schemasOnce.Do(func() {
		names, err := fs.Glob(schemaFiles, "schemas/*.json")
		if err != nil {
			schemasErr = err
			return
		}
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		for _, name := range names {
			data, err := schemaFiles.ReadFile(name)
			if err != nil {
				schemasErr = err
				return
			}
			if err := c.AddResource(schemaBaseURL+path.Base(name), bytes.NewReader(data)); err != nil {
				schemasErr = fmt.Errorf("seo: add schema %s: %w", name, err)
				return
			}
		}
		out := make(map[string]*jsonschema.Schema, len(names))
		for _, name := range names {
			base := path.Base(name)
			compiled, err := c.Compile(schemaBaseURL + base)
			if err != nil {
				schemasErr = fmt.Errorf("seo: compile schema %s: %w", name, err)
				return
			}
			out[strings.TrimSuffix(base, ".json")] = compiled
		}
		schemas = out
	})
	return schemas, schemasErr
}

// Validate checks doc against the required-field schema of its @type.
func Validate(doc Document) error {
	typ := doc.Type()
	if typ == "" {
		return &SchemaError{Type: "unknown", Err: errors.New("document has no @type")}
	}
	compiled, err := compileSchemas()
	if err != nil {
		return err
	}
	schema, ok := compiled[typ]
	if !ok {
		return &SchemaError{Type: typ, Err: errors.New("no schema registered for type")}
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return &SchemaError{Type: typ, Err: err}
	}
	// Validation works on generic JSON values, not the typed maps the emitters build.
	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return &SchemaError{Type: typ, Err: err}
	}
	if err := schema.Validate(instance); err != nil {
		return &SchemaError{Type: typ, Err: err}
	}
	return nil
}

// Encode returns the compact JSON form of doc. Output is byte-identical for
// equal documents.
func Encode(doc Document) ([]byte, error) {
	if doc == nil {
		return nil, errors.New("seo: encode nil document")
	}
	return json.Marshal(doc)
}

// Script wraps doc in an embeddable JSON-LD script element. encoding/json
// escapes <, > and & so the payload cannot close the element early.
func Script(doc Document) (template.HTML, error) {
	b, err := Encode(doc)
	if err != nil {
		return "", err
	}
	return template.HTML(`<script type="application/ld+json">` + string(b) + `</script>`), nil
}
