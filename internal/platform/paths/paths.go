package paths

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// Kind identifies a page type in the site matrix.
type Kind string

const (
	KindHome            Kind = "home"
	KindServiceIndex    Kind = "service-index"
	KindService         Kind = "service"
	KindLocationIndex   Kind = "location-index"
	KindLocation        Kind = "location"
	KindLocationService Kind = "location-service"
	KindArticleIndex    Kind = "article-index"
	KindArticle         Kind = "article"
)

const (
	servicesRoot  = "services"
	locationsRoot = "service-areas"
	articlesRoot  = "resources"
)

// Params provide the slugs required to compose a page path.
type Params struct {
	City    string
	Service string
	Article string
}

// Builder composes the canonical path for a page kind.
type Builder func(Params) (string, error)

var builders = map[Kind]Builder{
	KindHome:            func(Params) (string, error) { return "/", nil },
	KindServiceIndex:    func(Params) (string, error) { return join(servicesRoot), nil },
	KindLocationIndex:   func(Params) (string, error) { return join(locationsRoot), nil },
	KindArticleIndex:    func(Params) (string, error) { return join(articlesRoot), nil },
	KindService:         buildServicePath,
	KindLocation:        buildLocationPath,
	KindLocationService: buildLocationServicePath,
	KindArticle:         buildArticlePath,
}

// Build resolves the canonical root-relative path for the given kind. Every path it
// returns starts and ends with a slash.
func Build(kind Kind, params Params) (string, error) {
	builder, ok := builders[kind]
	if !ok {
		return "", fmt.Errorf("paths: unsupported page kind %q", kind)
	}
	return builder(params)
}

// MustBuild is Build for callers whose slugs come from a validated registry.
func MustBuild(kind Kind, params Params) string {
	p, err := Build(kind, params)
	if err != nil {
		panic(err)
	}
	return p
}

// Canonical normalises a root-relative path to the trailing-slash convention.
func Canonical(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || p == "/" {
		return "/"
	}
	cleaned := path.Clean("/" + strings.TrimLeft(p, "/"))
	if cleaned == "/" {
		return "/"
	}
	return cleaned + "/"
}

// Absolute joins the site origin with a canonical path.
func Absolute(base, p string) (string, error) {
	base = strings.TrimSpace(base)
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("paths: parse base url %q: %w", base, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("paths: base url %q must be absolute http(s)", base)
	}
	if u.Host == "" {
		return "", fmt.Errorf("paths: base url %q has no host", base)
	}
	return strings.TrimRight(u.Scheme+"://"+u.Host+strings.TrimRight(u.Path, "/"), "/") + Canonical(p), nil
}

func buildServicePath(params Params) (string, error) {
	service, err := validateSegment("service", params.Service)
	if err != nil {
		return "", err
	}
	return join(servicesRoot, service), nil
}

func buildLocationPath(params Params) (string, error) {
	city, err := validateSegment("city", params.City)
	if err != nil {
		return "", err
	}
	return join(locationsRoot, city), nil
}

func buildLocationServicePath(params Params) (string, error) {
	city, err := validateSegment("city", params.City)
	if err != nil {
		return "", err
	}
	service, err := validateSegment("service", params.Service)
	if err != nil {
		return "", err
	}
	return join(locationsRoot, city, service), nil
}

func buildArticlePath(params Params) (string, error) {
	article, err := validateSegment("article", params.Article)
	if err != nil {
		return "", err
	}
	return join(articlesRoot, article), nil
}

func join(segments ...string) string {
	return "/" + strings.Join(segments, "/") + "/"
}

func validateSegment(name, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("paths: %s is required", name)
	}
	if strings.ContainsAny(value, "/\\") {
		return "", fmt.Errorf("paths: %s contains invalid path characters", name)
	}
	if strings.Contains(value, "..") {
		return "", fmt.Errorf("paths: %s contains invalid traversal sequence", name)
	}
	return value, nil
}
