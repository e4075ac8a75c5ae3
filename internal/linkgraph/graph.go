// Package linkgraph computes the internal cross-links between city, service
// and city×service pages.
//
// Ordering rule: results are sorted by ascending Priority, ties broken by the
// registry's declaration order. The same rule applies to every function.
package linkgraph

import (
	"sort"

	"finitefield.org/contractor-site/internal/content"
	"finitefield.org/contractor-site/internal/nav"
	"finitefield.org/contractor-site/internal/platform/paths"
)

// DefaultLimit caps related and nearby lists.
const DefaultLimit = 6

// Graph answers link queries over a registry. It is read-only and safe for
// concurrent use.
type Graph struct {
	registry *content.Registry
	limit    int

	locations []content.Location
	services  []content.Service
}

// Option configures a Graph.
type Option func(*Graph)

// WithLimit caps related and nearby lists at n. Non-positive values keep the
// default.
func WithLimit(n int) Option {
	return func(g *Graph) {
		if n > 0 {
			g.limit = n
		}
	}
}

// New builds a graph over registry with the records pre-sorted by the
// ordering rule.
func New(registry *content.Registry, opts ...Option) *Graph {
	g := &Graph{registry: registry, limit: DefaultLimit}
	for _, opt := range opts {
		opt(g)
	}
	g.locations = registry.Locations()
	sort.SliceStable(g.locations, func(i, j int) bool { return g.locations[i].Priority < g.locations[j].Priority })
	g.services = registry.Services()
	sort.SliceStable(g.services, func(i, j int) bool { return g.services[i].Priority < g.services[j].Priority })
	return g
}

// Limit returns the configured cap.
func (g *Graph) Limit() int { return g.limit }

// RelatedServices returns the other services offered in city, excluding
// service, capped at the limit. When either table holds a single record the
// result is empty.
func (g *Graph) RelatedServices(city, service string) ([]content.Service, error) {
	loc, svc, err := g.resolve(city, service)
	if err != nil {
		return nil, err
	}
	if g.sparse() {
		return []content.Service{}, nil
	}
	out := make([]content.Service, 0, g.limit)
	for _, s := range g.services {
		if len(out) == g.limit {
			break
		}
		if s.Slug == svc.Slug || !g.offered(loc, s.Slug) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// NearbyLocations returns the other cities offering service, excluding city,
// capped at the limit. When either table holds a single record the result is
// empty.
func (g *Graph) NearbyLocations(city, service string) ([]content.Location, error) {
	loc, svc, err := g.resolve(city, service)
	if err != nil {
		return nil, err
	}
	if g.sparse() {
		return []content.Location{}, nil
	}
	out := make([]content.Location, 0, g.limit)
	for _, l := range g.locations {
		if len(out) == g.limit {
			break
		}
		if l.Slug == loc.Slug || !g.offered(l, svc.Slug) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

// LocationsOffering returns every city offering service, uncapped, for the
// service hub page.
func (g *Graph) LocationsOffering(service string) ([]content.Location, error) {
	svc, err := g.registry.Service(service)
	if err != nil {
		return nil, err
	}
	out := make([]content.Location, 0, len(g.locations))
	for _, l := range g.locations {
		if g.offered(l, svc.Slug) {
			out = append(out, l)
		}
	}
	return out, nil
}

// ServicesIn returns every service offered in city, uncapped, for the city
// hub page.
func (g *Graph) ServicesIn(city string) ([]content.Service, error) {
	loc, err := g.registry.Location(city)
	if err != nil {
		return nil, err
	}
	out := make([]content.Service, 0, len(g.services))
	for _, s := range g.services {
		if g.offered(loc, s.Slug) {
			out = append(out, s)
		}
	}
	return out, nil
}

// Locations returns every city in graph order.
func (g *Graph) Locations() []content.Location {
	return append([]content.Location(nil), g.locations...)
}

// Services returns every service in graph order.
func (g *Graph) Services() []content.Service {
	return append([]content.Service(nil), g.services...)
}

func (g *Graph) resolve(city, service string) (content.Location, content.Service, error) {
	loc, err := g.registry.Location(city)
	if err != nil {
		return content.Location{}, content.Service{}, err
	}
	svc, err := g.registry.Service(service)
	if err != nil {
		return content.Location{}, content.Service{}, err
	}
	return loc, svc, nil
}

func (g *Graph) sparse() bool {
	return len(g.locations) <= 1 || len(g.services) <= 1
}

func (g *Graph) offered(l content.Location, service string) bool {
	ok, err := g.registry.Offers(l.Slug, service)
	return err == nil && ok
}

// ServiceLinks points at the city×service page of each service in city.
func ServiceLinks(city content.Location, services []content.Service) ([]nav.Link, error) {
	links := make([]nav.Link, 0, len(services))
	for _, s := range services {
		href, err := paths.Build(paths.KindLocationService, paths.Params{City: city.Slug, Service: s.Slug})
		if err != nil {
			return nil, err
		}
		links = append(links, nav.Link{Name: s.Name, Href: href})
	}
	return links, nil
}

// LocationLinks points at the city×service page of service in each city.
func LocationLinks(locations []content.Location, service content.Service) ([]nav.Link, error) {
	links := make([]nav.Link, 0, len(locations))
	for _, l := range locations {
		href, err := paths.Build(paths.KindLocationService, paths.Params{City: l.Slug, Service: service.Slug})
		if err != nil {
			return nil, err
		}
		links = append(links, nav.Link{Name: l.Name, Href: href})
	}
	return links, nil
}

// CityLinks points at the hub page of each city.
func CityLinks(locations []content.Location) ([]nav.Link, error) {
	links := make([]nav.Link, 0, len(locations))
	for _, l := range locations {
		href, err := paths.Build(paths.KindLocation, paths.Params{City: l.Slug})
		if err != nil {
			return nil, err
		}
		links = append(links, nav.Link{Name: l.Name, Href: href})
	}
	return links, nil
}

// ServiceHubLinks points at the hub page of each service.
func ServiceHubLinks(services []content.Service) ([]nav.Link, error) {
	links := make([]nav.Link, 0, len(services))
	for _, s := range services {
		href, err := paths.Build(paths.KindService, paths.Params{Service: s.Slug})
		if err != nil {
			return nil, err
		}
		links = append(links, nav.Link{Name: s.Name, Href: href})
	}
	return links, nil
}
