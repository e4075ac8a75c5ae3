// Package business holds the contractor's identity record. It is loaded once
// at start-up and read by every emitter; no setters exist after construction.
package business

import (
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"finitefield.org/contractor-site/internal/format"
	"finitefield.org/contractor-site/internal/platform/validation"
)

// Profile is the business identity reused across all structured data.
type Profile struct {
	Name         string   `yaml:"name" validate:"required"`
	LegalName    string   `yaml:"legal_name"`
	URL          string   `yaml:"url" validate:"required,http_url"`
	Phone        string   `yaml:"phone" validate:"required,e164"`
	PhoneDisplay string   `yaml:"phone_display"`
	License      string   `yaml:"license" validate:"required"`
	Email        string   `yaml:"email" validate:"omitempty,email"`
	Logo         string   `yaml:"logo" validate:"omitempty,url"`
	PriceRange   string   `yaml:"price_range"`
	Address      Address  `yaml:"address"`
	Geo          *Geo     `yaml:"geo"`
	Categories   []string `yaml:"categories" validate:"dive,required"`
	OpeningHours []string `yaml:"opening_hours"`
	SameAs       []string `yaml:"same_as" validate:"dive,url"`
}

// Address is the postal address of the business office.
type Address struct {
	Street     string `yaml:"street"`
	Locality   string `yaml:"locality" validate:"required"`
	Region     string `yaml:"region" validate:"required"`
	PostalCode string `yaml:"postal_code"`
	Country    string `yaml:"country"`
}

// Geo holds office coordinates.
type Geo struct {
	Latitude  float64 `yaml:"latitude" validate:"latitude"`
	Longitude float64 `yaml:"longitude" validate:"longitude"`
}

// Registry owns the validated profile.
type Registry struct {
	profile Profile
}

// New validates p and returns a registry holding a private copy of it.
func New(p Profile) (*Registry, error) {
	p = normalize(p)
	errs := validation.Struct(p)
	if !hasField(errs, "url") {
		if problem, ok := checkOrigin(p.URL); !ok {
			errs = append(errs, problem)
		}
	}
	if len(errs) > 0 {
		return nil, newProfileError(errs)
	}
	return &Registry{profile: clone(p)}, nil
}

// Load reads a YAML profile from disk.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("business: read %s: %w", path, err)
	}
	return parse(data, path)
}

// LoadFS reads a YAML profile from fsys.
func LoadFS(fsys fs.FS, name string) (*Registry, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("business: read %s: %w", name, err)
	}
	return parse(data, name)
}

func parse(data []byte, name string) (*Registry, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("business: parse %s: %w", name, err)
	}
	return New(p)
}

// Get returns a deep copy of the profile.
func (r *Registry) Get() Profile {
	return clone(r.profile)
}

func normalize(p Profile) Profile {
	p.Name = strings.TrimSpace(p.Name)
	p.LegalName = strings.TrimSpace(p.LegalName)
	p.URL = strings.TrimRight(strings.TrimSpace(p.URL), "/")
	p.Phone = normalizePhone(p.Phone)
	p.License = strings.TrimSpace(p.License)
	p.Email = strings.TrimSpace(p.Email)
	if strings.TrimSpace(p.PhoneDisplay) == "" && p.Phone != "" {
		p.PhoneDisplay = format.Phone(p.Phone)
	}
	if p.Address.Country == "" {
		p.Address.Country = "US"
	}
	return p
}

// checkOrigin rejects a site URL carrying a path, query or fragment. Pages are
// served from the root of the origin and on-page links are root-relative.
func checkOrigin(raw string) (validation.FieldError, bool) {
	u, err := url.Parse(raw)
	if err == nil && strings.Trim(u.Path, "/") == "" && u.RawQuery == "" && u.Fragment == "" {
		return validation.FieldError{}, true
	}
	return validation.FieldError{
		Field:   "url",
		Tag:     "origin",
		Message: "url must be a site origin without a path",
	}, false
}

func hasField(errs []validation.FieldError, field string) bool {
	for _, e := range errs {
		if e.Field == field {
			return true
		}
	}
	return false
}

// normalizePhone reduces a North American number to E.164. Other inputs are
// only trimmed, so the e164 rule reports them.
func normalizePhone(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	digits := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] >= '0' && raw[i] <= '9' {
			digits = append(digits, raw[i])
		}
	}
	switch {
	case len(digits) == 10:
		return "+1" + string(digits)
	case len(digits) == 11 && digits[0] == '1':
		return "+" + string(digits)
	case strings.HasPrefix(raw, "+"):
		return "+" + string(digits)
	}
	return raw
}

func clone(p Profile) Profile {
	out := p
	out.Categories = append([]string(nil), p.Categories...)
	out.OpeningHours = append([]string(nil), p.OpeningHours...)
	out.SameAs = append([]string(nil), p.SameAs...)
	if p.Geo != nil {
		geo := *p.Geo
		out.Geo = &geo
	}
	return out
}
