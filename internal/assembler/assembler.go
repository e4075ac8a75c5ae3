// Package assembler turns page bindings into page view models: structured
// data, breadcrumbs, navigation and internal links.
package assembler

import (
	"errors"
	"fmt"
	"html/template"
	"strings"

	"finitefield.org/contractor-site/internal/business"
	"finitefield.org/contractor-site/internal/content"
	"finitefield.org/contractor-site/internal/format"
	"finitefield.org/contractor-site/internal/i18n"
	"finitefield.org/contractor-site/internal/linkgraph"
	"finitefield.org/contractor-site/internal/nav"
	"finitefield.org/contractor-site/internal/platform/paths"
	"finitefield.org/contractor-site/internal/seo"
	"finitefield.org/contractor-site/locales"
)

const defaultLang = "en"

// Labels translates UI chrome keys.
type Labels interface {
	T(key string) string
	Tf(key string, args ...any) string
}

// Deps groups constructor parameters for the assembler.
type Deps struct {
	Profile  business.Profile
	Registry *content.Registry
	Emitter  *seo.Emitter
	Graph    *linkgraph.Graph
	Labels   Labels
	Lang     string
}

var (
	// ErrRegistryMissing indicates the content registry was not supplied.
	ErrRegistryMissing = errors.New("assembler: content registry is not configured")
	// ErrEmitterMissing indicates the schema emitter was not supplied.
	ErrEmitterMissing = errors.New("assembler: schema emitter is not configured")
	// ErrGraphMissing indicates the relationship graph was not supplied.
	ErrGraphMissing = errors.New("assembler: link graph is not configured")
)

// Binding describes one page: its kind, the slugs it is about, and optional
// per-page overrides. Empty overrides fall back to the registry records.
type Binding struct {
	Kind    paths.Kind
	City    string
	Service string
	Article string

	Title       string
	Description string
	FAQs        []content.FAQ
	Breadcrumbs []content.BreadcrumbItem
	Body        template.HTML
}

// Page is the view model handed to templates.
type Page struct {
	Kind paths.Kind
	Path string
	Lang string

	Meta      seo.Meta
	Documents []seo.Document
	JSONLD    []template.HTML

	Breadcrumbs     []nav.Crumb
	BreadcrumbItems []content.BreadcrumbItem
	Nav             []nav.RenderedItem

	Heading   string
	Intro     string
	PriceNote string
	Body      template.HTML
	FAQs      []content.FAQ

	RelatedHeading string
	Related        []nav.Link
	NearbyHeading  string
	Nearby         []nav.Link
	ArticleLinks   []nav.Link

	Business business.Profile
	City     *content.Location
	Service  *content.Service
	Article  *content.Article
}

// Assembler builds pages. It holds only read-only collaborators and is safe
// for concurrent use.
type Assembler struct {
	profile  business.Profile
	registry *content.Registry
	emitter  *seo.Emitter
	graph    *linkgraph.Graph
	labels   Labels
	lang     string
}

// New validates deps and returns an assembler.
func New(deps Deps) (*Assembler, error) {
	if deps.Registry == nil {
		return nil, ErrRegistryMissing
	}
	if deps.Emitter == nil {
		return nil, ErrEmitterMissing
	}
	if deps.Graph == nil {
		return nil, ErrGraphMissing
	}
	lang := strings.TrimSpace(deps.Lang)
	if lang == "" {
		lang = defaultLang
	}
	labels := deps.Labels
	if labels == nil {
		bundle, err := i18n.LoadFS(locales.FS, defaultLang, nil)
		if err != nil {
			return nil, fmt.Errorf("assembler: load default labels: %w", err)
		}
		labels = bundle.For(lang)
	}
	return &Assembler{
		profile:  deps.Profile,
		registry: deps.Registry,
		emitter:  deps.Emitter,
		graph:    deps.Graph,
		labels:   labels,
		lang:     lang,
	}, nil
}

// Bindings returns the full page matrix: hubs, every service, every city,
// every offered city×service pair and every article.
func (a *Assembler) Bindings() []Binding {
	services := a.registry.Services()
	locations := a.registry.Locations()
	articles := a.registry.Articles()

	out := make([]Binding, 0, 4+len(services)+len(locations)*(1+len(services))+len(articles))
	out = append(out, Binding{Kind: paths.KindHome}, Binding{Kind: paths.KindServiceIndex})
	for _, s := range services {
		out = append(out, Binding{Kind: paths.KindService, Service: s.Slug})
	}
	out = append(out, Binding{Kind: paths.KindLocationIndex})
	for _, l := range locations {
		out = append(out, Binding{Kind: paths.KindLocation, City: l.Slug})
		for _, s := range services {
			if ok, err := a.registry.Offers(l.Slug, s.Slug); err == nil && ok {
				out = append(out, Binding{Kind: paths.KindLocationService, City: l.Slug, Service: s.Slug})
			}
		}
	}
	out = append(out, Binding{Kind: paths.KindArticleIndex})
	for _, art := range articles {
		out = append(out, Binding{Kind: paths.KindArticle, Article: art.Slug})
	}
	return out
}

// Assemble builds the page for b. Any emitter or graph error fails the page.
func (a *Assembler) Assemble(b Binding) (Page, error) {
	page := Page{Kind: b.Kind, Lang: a.lang, Business: a.profile}
	if err := a.resolveRecords(b, &page); err != nil {
		return Page{}, err
	}

	// Resolved records carry normalised slugs, so "Brandon" maps to /service-areas/brandon/.
	path, err := paths.Build(b.Kind, recordParams(page))
	if err != nil {
		return Page{}, fmt.Errorf("assembler: %w", err)
	}
	page.Path = path
	page.Nav = nav.Build(path)

	items := b.Breadcrumbs
	if len(items) == 0 {
		items, err = nav.Trail(b.Kind, nav.Subject{City: page.City, Service: page.Service, Article: page.Article}, a.labels.T)
		if err != nil {
			return Page{}, fmt.Errorf("assembler: %w", err)
		}
	}
	page.BreadcrumbItems = append([]content.BreadcrumbItem(nil), items...)
	page.Breadcrumbs = nav.Breadcrumbs(items)

	a.fillCopy(b, &page)

	docs, err := a.documents(b, &page, items)
	if err != nil {
		return Page{}, fmt.Errorf("assembler: %s: %w", path, err)
	}
	page.Documents = docs
	for _, doc := range docs {
		script, err := seo.Script(doc)
		if err != nil {
			return Page{}, fmt.Errorf("assembler: %s: %w", path, err)
		}
		page.JSONLD = append(page.JSONLD, script)
	}

	if err := a.links(&page); err != nil {
		return Page{}, fmt.Errorf("assembler: %s: %w", path, err)
	}

	image := a.profile.Logo
	if page.Article != nil && page.Article.Image != "" {
		image = page.Article.Image
	}
	page.Meta = seo.NewMeta(page.Meta.Title, page.Meta.Description, a.emitter.URL(path), image, a.profile.Name)
	if page.Kind == paths.KindArticle {
		page.Meta.OG.Type = "article"
	}
	return page, nil
}

func (a *Assembler) resolveRecords(b Binding, page *Page) error {
	switch b.Kind {
	case paths.KindService, paths.KindLocationService:
		svc, err := a.registry.Service(b.Service)
		if err != nil {
			return err
		}
		page.Service = &svc
	}
	switch b.Kind {
	case paths.KindLocation, paths.KindLocationService:
		loc, err := a.registry.Location(b.City)
		if err != nil {
			return err
		}
		page.City = &loc
	}
	if b.Kind == paths.KindLocationService {
		ok, err := a.registry.Offers(page.City.Slug, page.Service.Slug)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("assembler: %s is not offered in %s", page.Service.Slug, page.City.Slug)
		}
	}
	if b.Kind == paths.KindArticle {
		art, err := a.registry.Article(b.Article)
		if err != nil {
			return err
		}
		page.Article = &art
	}
	return nil
}

func recordParams(page Page) paths.Params {
	var params paths.Params
	if page.City != nil {
		params.City = page.City.Slug
	}
	if page.Service != nil {
		params.Service = page.Service.Slug
	}
	if page.Article != nil {
		params.Article = page.Article.Slug
	}
	return params
}

// fillCopy sets the heading, title, description, body and FAQs.
func (a *Assembler) fillCopy(b Binding, page *Page) {
	name := a.profile.Name
	l := a.labels
	var title, desc string
	switch b.Kind {
	case paths.KindHome:
		page.Heading = name
		title = l.Tf("title.home", name)
		desc = l.Tf("desc.home", name, a.profile.Address.Locality)
	case paths.KindServiceIndex:
		page.Heading = l.T(nav.LabelServices)
		title = l.Tf("title.services", name)
		desc = l.Tf("desc.services", name)
	case paths.KindService:
		page.Heading = page.Service.Name
		page.Intro = page.Service.Description
		page.FAQs = page.Service.FAQs
		title = l.Tf("title.service", page.Service.Name, name)
		desc = firstNonEmpty(page.Service.Description, l.Tf("desc.service", page.Service.Name, name))
	case paths.KindLocationIndex:
		page.Heading = l.T(nav.LabelLocations)
		title = l.Tf("title.locations", name)
		desc = l.Tf("desc.locations", name)
	case paths.KindLocation:
		page.Heading = page.City.Name
		page.Intro = page.City.Summary
		title = l.Tf("title.location", page.City.Name, name)
		desc = firstNonEmpty(page.City.Summary, l.Tf("desc.location", name, page.City.Name))
	case paths.KindLocationService:
		page.Heading = page.Service.Name + " in " + page.City.Name
		page.Intro = page.Service.Description
		page.FAQs = page.Service.FAQs
		title = l.Tf("title.location_service", page.Service.Name, page.City.Name, name)
		desc = l.Tf("desc.location_service", page.Service.Name, page.City.Name, name)
	case paths.KindArticleIndex:
		page.Heading = l.T(nav.LabelResources)
		title = l.Tf("title.resources", name)
		desc = l.Tf("desc.resources", name)
	case paths.KindArticle:
		page.Heading = page.Article.Headline
		page.Intro = page.Article.Description
		page.Body = page.Article.Body
		page.FAQs = page.Article.FAQs
		title = l.Tf("title.article", page.Article.Headline, name)
		desc = page.Article.Description
	}
	if page.Service != nil && page.Service.MinPrice != nil {
		page.PriceNote = l.Tf("page.starting_at", format.Currency(*page.Service.MinPrice, page.Service.PriceCurrency))
	}
	if len(b.FAQs) > 0 {
		page.FAQs = append(append([]content.FAQ(nil), page.FAQs...), b.FAQs...)
	}
	if b.Body != "" {
		page.Body = b.Body
	}
	page.Meta.Title = firstNonEmpty(b.Title, title)
	page.Meta.Description = firstNonEmpty(b.Description, desc)
}

// documents runs the emitters for the page kind. The FAQ document is omitted
// when the page has no questions.
func (a *Assembler) documents(b Binding, page *Page, items []content.BreadcrumbItem) ([]seo.Document, error) {
	var docs []seo.Document
	add := func(doc seo.Document, err error) error {
		if err != nil {
			return err
		}
		if doc != nil {
			docs = append(docs, doc)
		}
		return nil
	}

	var err error
	switch b.Kind {
	case paths.KindHome:
		if err = add(a.emitter.Organization()); err == nil {
			if err = add(a.emitter.WebSite()); err == nil {
				err = add(a.emitter.LocalBusiness(nil, nil))
			}
		}
	case paths.KindService:
		if err = add(a.emitter.LocalBusiness(nil, page.Service)); err == nil {
			err = add(a.emitter.Service(serviceParams(page.Service, "", page.Path)))
		}
	case paths.KindLocation:
		err = add(a.emitter.LocalBusiness(page.City, nil))
	case paths.KindLocationService:
		if err = add(a.emitter.LocalBusiness(page.City, page.Service)); err == nil {
			err = add(a.emitter.Service(serviceParams(page.Service, page.City.Name, page.Path)))
		}
	case paths.KindArticle:
		err = add(a.emitter.Article(seo.ArticleParams{
			Headline:      page.Article.Headline,
			Description:   page.Article.Description,
			DatePublished: page.Article.DatePublished,
			DateModified:  page.Article.DateModified,
			Slug:          page.Article.Slug,
			Author:        page.Article.Author,
			Image:         page.Article.Image,
		}))
	}
	if err != nil {
		return nil, err
	}
	if err := add(a.emitter.FAQ(page.FAQs)); err != nil {
		return nil, err
	}
	if err := add(a.emitter.Breadcrumb(items)); err != nil {
		return nil, err
	}
	return docs, nil
}

func serviceParams(s *content.Service, city, path string) seo.ServiceParams {
	return seo.ServiceParams{
		Name:        s.Name,
		Description: s.Description,
		Category:    s.Category,
		City:        city,
		Path:        path,
		MinPrice:    s.MinPrice,
		Currency:    s.PriceCurrency,
	}
}

// links fills the related, nearby and article lists from the graph.
func (a *Assembler) links(page *Page) error {
	l := a.labels
	var err error
	switch page.Kind {
	case paths.KindHome:
		page.RelatedHeading = l.T(nav.LabelServices)
		if page.Related, err = linkgraph.ServiceHubLinks(a.graph.Services()); err != nil {
			return err
		}
		page.NearbyHeading = l.T(nav.LabelLocations)
		page.Nearby, err = linkgraph.CityLinks(a.graph.Locations())
	case paths.KindServiceIndex:
		page.Related, err = linkgraph.ServiceHubLinks(a.graph.Services())
	case paths.KindLocationIndex:
		page.Nearby, err = linkgraph.CityLinks(a.graph.Locations())
	case paths.KindArticleIndex:
		page.ArticleLinks, err = articleLinks(a.registry.Articles())
	case paths.KindService:
		var cities []content.Location
		if cities, err = a.graph.LocationsOffering(page.Service.Slug); err != nil {
			return err
		}
		page.NearbyHeading = l.Tf("page.cities_served", page.Service.Name)
		if page.Nearby, err = linkgraph.LocationLinks(cities, *page.Service); err != nil {
			return err
		}
		page.ArticleLinks, err = articleLinks(a.registry.ArticlesFor(page.Service.Slug))
	case paths.KindLocation:
		var services []content.Service
		if services, err = a.graph.ServicesIn(page.City.Slug); err != nil {
			return err
		}
		page.RelatedHeading = l.Tf("page.services_offered", page.City.Name)
		page.Related, err = linkgraph.ServiceLinks(*page.City, services)
	case paths.KindLocationService:
		var related []content.Service
		if related, err = a.graph.RelatedServices(page.City.Slug, page.Service.Slug); err != nil {
			return err
		}
		page.RelatedHeading = l.Tf("page.related_services", page.City.Name)
		if page.Related, err = linkgraph.ServiceLinks(*page.City, related); err != nil {
			return err
		}
		var nearby []content.Location
		if nearby, err = a.graph.NearbyLocations(page.City.Slug, page.Service.Slug); err != nil {
			return err
		}
		page.NearbyHeading = l.Tf("page.nearby_locations", page.Service.Name)
		if page.Nearby, err = linkgraph.LocationLinks(nearby, *page.Service); err != nil {
			return err
		}
		page.ArticleLinks, err = articleLinks(a.registry.ArticlesFor(page.Service.Slug))
	case paths.KindArticle:
		if page.Article.Service != "" {
			var svc content.Service
			if svc, err = a.registry.Service(page.Article.Service); err != nil {
				return err
			}
			page.RelatedHeading = l.T(nav.LabelServices)
			page.Related, err = linkgraph.ServiceHubLinks([]content.Service{svc})
		}
	}
	return err
}

func articleLinks(articles []content.Article) ([]nav.Link, error) {
	links := make([]nav.Link, 0, len(articles))
	for _, art := range articles {
		href, err := paths.Build(paths.KindArticle, paths.Params{Article: art.Slug})
		if err != nil {
			return nil, err
		}
		links = append(links, nav.Link{Name: art.Headline, Href: href})
	}
	return links, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
