// Package content models the locations, services and articles the site is
// generated from, and the registry that indexes them by slug.
package content

import (
	"html/template"
	"time"
)

// Kind names a record table.
type Kind string

const (
	KindLocation Kind = "location"
	KindService  Kind = "service"
	KindArticle  Kind = "article"
)

// DefaultCurrency applies to services without an explicit currency.
const DefaultCurrency = "USD"

// Location is a city the contractor serves.
type Location struct {
	Slug        string       `yaml:"slug" validate:"required,slug"`
	Name        string       `yaml:"name" validate:"required"`
	Region      string       `yaml:"region"`
	County      string       `yaml:"county"`
	Coordinates *Coordinates `yaml:"coordinates"`
	// Services lists the service slugs offered in the city. Empty means all.
	Services []string `yaml:"services" validate:"dive,required"`
	Priority int      `yaml:"priority"`
	Summary  string   `yaml:"summary"`
}

// Coordinates is a WGS84 point.
type Coordinates struct {
	Latitude  float64 `yaml:"latitude" validate:"latitude"`
	Longitude float64 `yaml:"longitude" validate:"longitude"`
}

// Service is a line of work offered by the contractor.
type Service struct {
	Slug          string   `yaml:"slug" validate:"required,slug"`
	Name          string   `yaml:"name" validate:"required"`
	Category      string   `yaml:"category"`
	Description   string   `yaml:"description"`
	MinPrice      *float64 `yaml:"min_price" validate:"omitempty,gte=0"`
	PriceCurrency string   `yaml:"price_currency" validate:"omitempty,iso4217"`
	Priority      int      `yaml:"priority"`
	FAQs          []FAQ    `yaml:"faqs" validate:"dive"`
}

// FAQ is a question and answer pair.
type FAQ struct {
	Question string `yaml:"question" validate:"required"`
	Answer   string `yaml:"answer" validate:"required"`
}

// BreadcrumbItem is one step of a breadcrumb trail. Href is a canonical
// root-relative path.
type BreadcrumbItem struct {
	Name string
	Href string
}

// Article is a resource page rendered from markdown.
type Article struct {
	Slug          string `validate:"required,slug"`
	Headline      string `validate:"required"`
	Description   string
	Author        string
	Image         string `validate:"omitempty,url"`
	DatePublished time.Time
	DateModified  time.Time
	// Service optionally ties the article to a service slug.
	Service string
	FAQs    []FAQ `validate:"dive"`
	Body    template.HTML
}

func cloneLocation(l Location) Location {
	out := l
	out.Services = append([]string(nil), l.Services...)
	if l.Coordinates != nil {
		c := *l.Coordinates
		out.Coordinates = &c
	}
	return out
}

func cloneService(s Service) Service {
	out := s
	if s.MinPrice != nil {
		v := *s.MinPrice
		out.MinPrice = &v
	}
	out.FAQs = append([]FAQ(nil), s.FAQs...)
	return out
}

func cloneArticle(a Article) Article {
	out := a
	out.FAQs = append([]FAQ(nil), a.FAQs...)
	return out
}
