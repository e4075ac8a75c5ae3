package nav

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"finitefield.org/contractor-site/internal/content"
	"finitefield.org/contractor-site/internal/platform/paths"
)

// Item represents a top-level navigation item.
type Item struct {
	Path     string // e.g. "/services/"
	LabelKey string // i18n key, e.g. "nav.services"
}

// RenderedItem is a view model for templates.
type RenderedItem struct {
	Href     string
	LabelKey string
	Active   bool
}

// Crumb is an on-page breadcrumb anchor.
type Crumb struct {
	Href     string
	Label    string
	Position int
	Active   bool
}

// Link is a plain internal anchor used by related/nearby lists.
type Link struct {
	Name string
	Href string
}

// Main is the primary navigation definition.
var Main = []Item{
	{Path: "/services/", LabelKey: "nav.services"},
	{Path: "/service-areas/", LabelKey: "nav.locations"},
	{Path: "/resources/", LabelKey: "nav.resources"},
}

// Label keys for the fixed breadcrumb roots.
const (
	LabelHome      = "nav.home"
	LabelServices  = "nav.services"
	LabelLocations = "nav.locations"
	LabelResources = "nav.resources"
)

// Build renders navigation items with active state given the current path.
func Build(currentPath string) []RenderedItem {
	currentPath = paths.Canonical(currentPath)
	items := make([]RenderedItem, 0, len(Main))
	for _, it := range Main {
		items = append(items, RenderedItem{
			Href:     it.Path,
			LabelKey: it.LabelKey,
			Active:   isActive(it.Path, currentPath),
		})
	}
	return items
}

func isActive(itemPath, currentPath string) bool {
	if itemPath == "/" {
		return currentPath == "/"
	}
	return strings.HasPrefix(currentPath, itemPath)
}

// Subject carries the records a page is about.
type Subject struct {
	City    *content.Location
	Service *content.Service
	Article *content.Article
}

// Trail returns the standard breadcrumb trail for a page kind. label
// translates the fixed root keys; nil or untranslated keys fall back to a
// title-cased path segment.
func Trail(kind paths.Kind, subject Subject, label func(key string) string) ([]content.BreadcrumbItem, error) {
	home := content.BreadcrumbItem{Name: resolve(label, LabelHome, "home"), Href: "/"}
	services := content.BreadcrumbItem{Name: resolve(label, LabelServices, "services"), Href: paths.MustBuild(paths.KindServiceIndex, paths.Params{})}
	locations := content.BreadcrumbItem{Name: resolve(label, LabelLocations, "service-areas"), Href: paths.MustBuild(paths.KindLocationIndex, paths.Params{})}
	resources := content.BreadcrumbItem{Name: resolve(label, LabelResources, "resources"), Href: paths.MustBuild(paths.KindArticleIndex, paths.Params{})}

	switch kind {
	case paths.KindHome:
		return []content.BreadcrumbItem{home}, nil
	case paths.KindServiceIndex:
		return []content.BreadcrumbItem{home, services}, nil
	case paths.KindLocationIndex:
		return []content.BreadcrumbItem{home, locations}, nil
	case paths.KindArticleIndex:
		return []content.BreadcrumbItem{home, resources}, nil
	case paths.KindService:
		if subject.Service == nil {
			return nil, fmt.Errorf("nav: %s trail requires a service", kind)
		}
		href, err := paths.Build(kind, paths.Params{Service: subject.Service.Slug})
		if err != nil {
			return nil, err
		}
		return []content.BreadcrumbItem{home, services, {Name: subject.Service.Name, Href: href}}, nil
	case paths.KindLocation:
		if subject.City == nil {
			return nil, fmt.Errorf("nav: %s trail requires a city", kind)
		}
		href, err := paths.Build(kind, paths.Params{City: subject.City.Slug})
		if err != nil {
			return nil, err
		}
		return []content.BreadcrumbItem{home, locations, {Name: subject.City.Name, Href: href}}, nil
	case paths.KindLocationService:
		if subject.City == nil || subject.Service == nil {
			return nil, fmt.Errorf("nav: %s trail requires a city and a service", kind)
		}
		cityHref, err := paths.Build(paths.KindLocation, paths.Params{City: subject.City.Slug})
		if err != nil {
			return nil, err
		}
		href, err := paths.Build(kind, paths.Params{City: subject.City.Slug, Service: subject.Service.Slug})
		if err != nil {
			return nil, err
		}
		return []content.BreadcrumbItem{
			home,
			locations,
			{Name: subject.City.Name, Href: cityHref},
			{Name: subject.Service.Name, Href: href},
		}, nil
	case paths.KindArticle:
		if subject.Article == nil {
			return nil, fmt.Errorf("nav: %s trail requires an article", kind)
		}
		href, err := paths.Build(kind, paths.Params{Article: subject.Article.Slug})
		if err != nil {
			return nil, err
		}
		return []content.BreadcrumbItem{home, resources, {Name: subject.Article.Headline, Href: href}}, nil
	}
	return nil, fmt.Errorf("nav: unsupported page kind %q", kind)
}

// Breadcrumbs turns breadcrumb items into on-page anchors. Hrefs go through
// the same canonicalisation as the BreadcrumbList item URLs, one anchor per
// item in the same order; the last anchor is active.
func Breadcrumbs(items []content.BreadcrumbItem) []Crumb {
	crumbs := make([]Crumb, 0, len(items))
	for i, it := range items {
		crumbs = append(crumbs, Crumb{
			Href:     paths.Canonical(it.Href),
			Label:    strings.TrimSpace(it.Name),
			Position: i + 1,
			Active:   i == len(items)-1,
		})
	}
	return crumbs
}

func resolve(label func(string) string, key, segment string) string {
	if label != nil {
		if v := label(key); v != "" && v != key {
			return v
		}
	}
	return titleFromSegment(segment)
}

func titleFromSegment(seg string) string {
	s := strings.ReplaceAll(seg, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	// Casers keep state, so one is built per call.
	return cases.Title(language.English).String(s)
}
