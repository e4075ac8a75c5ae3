package content

import (
	"strings"

	"finitefield.org/contractor-site/internal/platform/validation"
)

// Registry indexes locations, services and articles by slug. Records are kept
// in declaration order; the registry is read-only after construction and safe
// for concurrent use.
type Registry struct {
	locations []Location
	services  []Service
	articles  []Article

	locationIndex map[string]int
	serviceIndex  map[string]int
	articleIndex  map[string]int
}

// NewRegistry validates the tables and builds the slug indexes. Slugs are
// normalised; duplicates, invalid records and references to unknown services
// are rejected.
func NewRegistry(locations []Location, services []Service, articles []Article) (*Registry, error) {
	r := &Registry{
		locations:     make([]Location, 0, len(locations)),
		services:      make([]Service, 0, len(services)),
		articles:      make([]Article, 0, len(articles)),
		locationIndex: make(map[string]int, len(locations)),
		serviceIndex:  make(map[string]int, len(services)),
		articleIndex:  make(map[string]int, len(articles)),
	}

	for _, s := range services {
		s = cloneService(s)
		s.Slug = NormalizeSlug(s.Slug)
		s.Name = strings.TrimSpace(s.Name)
		s.PriceCurrency = strings.ToUpper(strings.TrimSpace(s.PriceCurrency))
		if s.PriceCurrency == "" {
			s.PriceCurrency = DefaultCurrency
		}
		if errs := validation.Struct(s); len(errs) > 0 {
			return nil, &RecordError{Kind: KindService, Slug: s.Slug, Problems: errs}
		}
		if _, dup := r.serviceIndex[s.Slug]; dup {
			return nil, &DuplicateSlugError{Kind: KindService, Slug: s.Slug}
		}
		r.serviceIndex[s.Slug] = len(r.services)
		r.services = append(r.services, s)
	}

	for _, l := range locations {
		l = cloneLocation(l)
		l.Slug = NormalizeSlug(l.Slug)
		l.Name = strings.TrimSpace(l.Name)
		for i, ref := range l.Services {
			l.Services[i] = NormalizeSlug(ref)
		}
		if errs := validation.Struct(l); len(errs) > 0 {
			return nil, &RecordError{Kind: KindLocation, Slug: l.Slug, Problems: errs}
		}
		if _, dup := r.locationIndex[l.Slug]; dup {
			return nil, &DuplicateSlugError{Kind: KindLocation, Slug: l.Slug}
		}
		for _, ref := range l.Services {
			if _, ok := r.serviceIndex[ref]; !ok {
				return nil, &UnknownSlugError{Kind: KindService, Slug: ref, Ref: "location " + l.Slug}
			}
		}
		r.locationIndex[l.Slug] = len(r.locations)
		r.locations = append(r.locations, l)
	}

	for _, a := range articles {
		a = cloneArticle(a)
		a.Slug = NormalizeSlug(a.Slug)
		a.Service = NormalizeSlug(a.Service)
		if errs := validation.Struct(a); len(errs) > 0 {
			return nil, &RecordError{Kind: KindArticle, Slug: a.Slug, Problems: errs}
		}
		if a.DatePublished.IsZero() {
			return nil, &RecordError{Kind: KindArticle, Slug: a.Slug, Problems: []validation.FieldError{{
				Field: "date_published", Tag: "required", Message: "date_published is a required field",
			}}}
		}
		if _, dup := r.articleIndex[a.Slug]; dup {
			return nil, &DuplicateSlugError{Kind: KindArticle, Slug: a.Slug}
		}
		if a.Service != "" {
			if _, ok := r.serviceIndex[a.Service]; !ok {
				return nil, &UnknownSlugError{Kind: KindService, Slug: a.Service, Ref: "article " + a.Slug}
			}
		}
		r.articleIndex[a.Slug] = len(r.articles)
		r.articles = append(r.articles, a)
	}

	return r, nil
}

// Location looks up a city by slug.
func (r *Registry) Location(slug string) (Location, error) {
	idx, ok := r.locationIndex[NormalizeSlug(slug)]
	if !ok {
		return Location{}, &UnknownSlugError{Kind: KindLocation, Slug: slug}
	}
	return cloneLocation(r.locations[idx]), nil
}

// Service looks up a service by slug.
func (r *Registry) Service(slug string) (Service, error) {
	idx, ok := r.serviceIndex[NormalizeSlug(slug)]
	if !ok {
		return Service{}, &UnknownSlugError{Kind: KindService, Slug: slug}
	}
	return cloneService(r.services[idx]), nil
}

// Article looks up an article by slug.
func (r *Registry) Article(slug string) (Article, error) {
	idx, ok := r.articleIndex[NormalizeSlug(slug)]
	if !ok {
		return Article{}, &UnknownSlugError{Kind: KindArticle, Slug: slug}
	}
	return cloneArticle(r.articles[idx]), nil
}

// Locations returns every city in declaration order.
func (r *Registry) Locations() []Location {
	out := make([]Location, len(r.locations))
	for i, l := range r.locations {
		out[i] = cloneLocation(l)
	}
	return out
}

// Services returns every service in declaration order.
func (r *Registry) Services() []Service {
	out := make([]Service, len(r.services))
	for i, s := range r.services {
		out[i] = cloneService(s)
	}
	return out
}

// Articles returns every article in declaration order.
func (r *Registry) Articles() []Article {
	out := make([]Article, len(r.articles))
	for i, a := range r.articles {
		out[i] = cloneArticle(a)
	}
	return out
}

// ArticlesFor returns the articles tied to a service, in declaration order.
func (r *Registry) ArticlesFor(service string) []Article {
	slug := NormalizeSlug(service)
	var out []Article
	for _, a := range r.articles {
		if a.Service != "" && a.Service == slug {
			out = append(out, cloneArticle(a))
		}
	}
	return out
}

// Offers reports whether service is offered in city.
func (r *Registry) Offers(city, service string) (bool, error) {
	loc, ok := r.locationIndex[NormalizeSlug(city)]
	if !ok {
		return false, &UnknownSlugError{Kind: KindLocation, Slug: city}
	}
	svc := NormalizeSlug(service)
	if _, ok := r.serviceIndex[svc]; !ok {
		return false, &UnknownSlugError{Kind: KindService, Slug: service}
	}
	return offers(r.locations[loc], svc), nil
}

func offers(l Location, service string) bool {
	if len(l.Services) == 0 {
		return true
	}
	for _, s := range l.Services {
		if s == service {
			return true
		}
	}
	return false
}
