package seo

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"finitefield.org/contractor-site/internal/business"
	"finitefield.org/contractor-site/internal/content"
	"finitefield.org/contractor-site/internal/platform/paths"
)

// Context is the JSON-LD vocabulary every document declares.
const Context = "https://schema.org"

// BusinessType is the LocalBusiness subtype used for the contractor.
const BusinessType = "GeneralContractor"

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Document is a JSON-LD object. encoding/json writes map keys in sorted order,
// so encoding a Document is deterministic.
type Document map[string]any

// Type returns the document's @type, or "" when unset.
func (d Document) Type() string {
	t, _ := d["@type"].(string)
	return t
}

// Emitter maps the business profile and page parameters onto JSON-LD
// documents. It holds no mutable state and is safe for concurrent use.
type Emitter struct {
	profile business.Profile
	origin  string
}

// NewEmitter captures a copy of the profile. The profile must carry the
// identity fields every document references.
func NewEmitter(profile business.Profile) (*Emitter, error) {
	switch {
	case strings.TrimSpace(profile.Name) == "":
		return nil, fmt.Errorf("%w: %w", ErrProfileIncomplete, &MissingFieldError{Schema: BusinessType, Field: "name"})
	case strings.TrimSpace(profile.Phone) == "":
		return nil, fmt.Errorf("%w: %w", ErrProfileIncomplete, &MissingFieldError{Schema: BusinessType, Field: "telephone"})
	case strings.TrimSpace(profile.License) == "":
		return nil, fmt.Errorf("%w: %w", ErrProfileIncomplete, &MissingFieldError{Schema: BusinessType, Field: "hasCredential"})
	}
	origin, err := paths.Absolute(profile.URL, "/")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProfileIncomplete, err)
	}
	return &Emitter{profile: profile, origin: strings.TrimSuffix(origin, "/")}, nil
}

// URL resolves a root-relative path against the business origin.
func (e *Emitter) URL(p string) string {
	return e.origin + paths.Canonical(p)
}

func (e *Emitter) businessID() string {
	return e.origin + "/#business"
}

// identity is the compact reference used for provider and publisher.
func (e *Emitter) identity() map[string]any {
	return map[string]any{
		"@type":     BusinessType,
		"@id":       e.businessID(),
		"name":      e.profile.Name,
		"telephone": e.profile.Phone,
		"url":       e.URL("/"),
	}
}

// LocalBusiness returns the contractor's LocalBusiness document. When a city
// or service is given, the name, url and areaServed describe that page.
func (e *Emitter) LocalBusiness(city *content.Location, service *content.Service) (Document, error) {
	p := e.profile
	name := p.Name
	params := paths.Params{}
	kind := paths.KindHome
	switch {
	case city != nil && service != nil:
		name = fmt.Sprintf("%s - %s in %s", p.Name, service.Name, city.Name)
		params = paths.Params{City: city.Slug, Service: service.Slug}
		kind = paths.KindLocationService
	case city != nil:
		name = fmt.Sprintf("%s - %s", p.Name, city.Name)
		params = paths.Params{City: city.Slug}
		kind = paths.KindLocation
	case service != nil:
		name = fmt.Sprintf("%s - %s", p.Name, service.Name)
		params = paths.Params{Service: service.Slug}
		kind = paths.KindService
	}
	pagePath, err := paths.Build(kind, params)
	if err != nil {
		return nil, &InvalidValueError{Schema: BusinessType, Field: "url", Value: params, Reason: err.Error()}
	}

	address := map[string]any{
		"@type":           "PostalAddress",
		"addressLocality": p.Address.Locality,
		"addressRegion":   p.Address.Region,
		"addressCountry":  p.Address.Country,
	}
	if p.Address.Street != "" {
		address["streetAddress"] = p.Address.Street
	}
	if p.Address.PostalCode != "" {
		address["postalCode"] = p.Address.PostalCode
	}

	doc := Document{
		"@context":  Context,
		"@type":     BusinessType,
		"@id":       e.URL(pagePath) + "#business",
		"name":      name,
		"telephone": p.Phone,
		"url":       e.URL(pagePath),
		"address":   address,
		"hasCredential": map[string]any{
			"@type":              "EducationalOccupationalCredential",
			"credentialCategory": "license",
			"name":               p.License,
		},
	}
	if pagePath != "/" {
		doc["parentOrganization"] = map[string]any{"@id": e.businessID()}
	}
	if city != nil {
		cityPath, err := paths.Build(paths.KindLocation, paths.Params{City: city.Slug})
		if err != nil {
			return nil, &InvalidValueError{Schema: BusinessType, Field: "areaServed", Value: city.Slug, Reason: err.Error()}
		}
		area := map[string]any{
			"@type": "City",
			"name":  city.Name,
			"url":   e.URL(cityPath),
		}
		if region := firstNonEmpty(city.Region, p.Address.Region); region != "" {
			area["containedInPlace"] = map[string]any{"@type": "State", "name": region}
		}
		doc["areaServed"] = area
	} else {
		doc["areaServed"] = map[string]any{"@type": "State", "name": p.Address.Region}
	}
	if p.Geo != nil {
		doc["geo"] = map[string]any{
			"@type":     "GeoCoordinates",
			"latitude":  p.Geo.Latitude,
			"longitude": p.Geo.Longitude,
		}
	}
	if service != nil {
		doc["knowsAbout"] = []string{service.Name}
	} else if len(p.Categories) > 0 {
		doc["knowsAbout"] = append([]string(nil), p.Categories...)
	}
	if p.LegalName != "" {
		doc["legalName"] = p.LegalName
	}
	if p.Email != "" {
		doc["email"] = p.Email
	}
	if p.Logo != "" {
		doc["logo"] = p.Logo
		doc["image"] = p.Logo
	}
	if p.PriceRange != "" {
		doc["priceRange"] = p.PriceRange
	}
	if len(p.OpeningHours) > 0 {
		doc["openingHours"] = append([]string(nil), p.OpeningHours...)
	}
	if len(p.SameAs) > 0 {
		doc["sameAs"] = append([]string(nil), p.SameAs...)
	}
	return finish(doc)
}

// ServiceParams are the page inputs of a Service document. City is the
// display name of the served city; Path is the page's root-relative path.
type ServiceParams struct {
	Name        string
	Description string
	Category    string
	City        string
	Path        string
	MinPrice    *float64
	Currency    string
}

// Service returns a Service document provided by the business. The offers
// block is present only when MinPrice is set.
func (e *Emitter) Service(params ServiceParams) (Document, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, &MissingFieldError{Schema: "Service", Field: "name"}
	}
	doc := Document{
		"@context":    Context,
		"@type":       "Service",
		"name":        name,
		"serviceType": name,
		"provider":    e.identity(),
	}
	if v := strings.TrimSpace(params.Description); v != "" {
		doc["description"] = v
	}
	if v := strings.TrimSpace(params.Category); v != "" {
		doc["category"] = v
	}
	if v := strings.TrimSpace(params.City); v != "" {
		doc["areaServed"] = v
	}
	if params.Path != "" {
		doc["url"] = e.URL(params.Path)
	}
	if params.MinPrice != nil {
		price := *params.MinPrice
		if math.IsNaN(price) || math.IsInf(price, 0) {
			return nil, &InvalidValueError{Schema: "Service", Field: "minPrice", Value: price, Reason: "must be a finite number"}
		}
		if price < 0 {
			return nil, &InvalidValueError{Schema: "Service", Field: "minPrice", Value: price, Reason: "must not be negative"}
		}
		currency := strings.ToUpper(strings.TrimSpace(params.Currency))
		if currency == "" {
			currency = content.DefaultCurrency
		}
		if !currencyPattern.MatchString(currency) {
			return nil, &InvalidValueError{Schema: "Service", Field: "priceCurrency", Value: params.Currency, Reason: "must be an ISO 4217 code"}
		}
		doc["offers"] = map[string]any{
			"@type":         "Offer",
			"priceCurrency": currency,
			"priceSpecification": map[string]any{
				"@type":         "PriceSpecification",
				"minPrice":      price,
				"priceCurrency": currency,
			},
		}
	}
	return finish(doc)
}

// ArticleParams are the page inputs of an Article document.
type ArticleParams struct {
	Headline      string
	Description   string
	DatePublished time.Time
	DateModified  time.Time
	Slug          string
	Author        string
	Image         string
}

// Article returns an Article document published by the business. A zero
// DateModified defaults to DatePublished.
func (e *Emitter) Article(params ArticleParams) (Document, error) {
	headline := strings.TrimSpace(params.Headline)
	if headline == "" {
		return nil, &MissingFieldError{Schema: "Article", Field: "headline"}
	}
	if params.DatePublished.IsZero() {
		return nil, &MissingFieldError{Schema: "Article", Field: "datePublished"}
	}
	modified := params.DateModified
	if modified.IsZero() {
		modified = params.DatePublished
	}
	if modified.Before(params.DatePublished) {
		return nil, &InvalidValueError{
			Schema: "Article",
			Field:  "dateModified",
			Value:  isoDate(modified),
			Reason: "must not be before datePublished " + isoDate(params.DatePublished),
		}
	}

	publisher := e.identity()
	if e.profile.Logo != "" {
		publisher["logo"] = map[string]any{"@type": "ImageObject", "url": e.profile.Logo}
	}
	doc := Document{
		"@context":      Context,
		"@type":         "Article",
		"headline":      headline,
		"datePublished": isoDate(params.DatePublished),
		"dateModified":  isoDate(modified),
		"publisher":     publisher,
	}
	if v := strings.TrimSpace(params.Description); v != "" {
		doc["description"] = v
	}
	if v := strings.TrimSpace(params.Author); v != "" {
		doc["author"] = map[string]any{"@type": "Person", "name": v}
	} else {
		doc["author"] = map[string]any{"@type": "Organization", "name": e.profile.Name, "url": e.URL("/")}
	}
	if v := strings.TrimSpace(params.Image); v != "" {
		doc["image"] = v
	}
	if params.Slug != "" {
		articlePath, err := paths.Build(paths.KindArticle, paths.Params{Article: params.Slug})
		if err != nil {
			return nil, &InvalidValueError{Schema: "Article", Field: "mainEntityOfPage", Value: params.Slug, Reason: err.Error()}
		}
		doc["url"] = e.URL(articlePath)
		doc["mainEntityOfPage"] = map[string]any{"@type": "WebPage", "@id": e.URL(articlePath)}
	}
	return finish(doc)
}

// FAQ returns an FAQPage whose mainEntity mirrors faqs in order. Empty input
// yields a nil document and no error: an empty FAQPage is never emitted.
func (e *Emitter) FAQ(faqs []content.FAQ) (Document, error) {
	if len(faqs) == 0 {
		return nil, nil
	}
	entities := make([]map[string]any, 0, len(faqs))
	for i, faq := range faqs {
		question := strings.TrimSpace(faq.Question)
		answer := strings.TrimSpace(faq.Answer)
		if question == "" {
			return nil, &MissingFieldError{Schema: "FAQPage", Field: fmt.Sprintf("mainEntity[%d].name", i)}
		}
		if answer == "" {
			return nil, &MissingFieldError{Schema: "FAQPage", Field: fmt.Sprintf("mainEntity[%d].acceptedAnswer.text", i)}
		}
		entities = append(entities, map[string]any{
			"@type": "Question",
			"name":  question,
			"acceptedAnswer": map[string]any{
				"@type": "Answer",
				"text":  answer,
			},
		})
	}
	return finish(Document{
		"@context":   Context,
		"@type":      "FAQPage",
		"mainEntity": entities,
	})
}

// Breadcrumb returns a BreadcrumbList with positions 1..N in input order. Each
// item URL is the absolute form of the canonical href.
func (e *Emitter) Breadcrumb(items []content.BreadcrumbItem) (Document, error) {
	if len(items) == 0 {
		return nil, &MissingFieldError{Schema: "BreadcrumbList", Field: "itemListElement"}
	}
	elements := make([]map[string]any, 0, len(items))
	for i, it := range items {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			return nil, &MissingFieldError{Schema: "BreadcrumbList", Field: fmt.Sprintf("itemListElement[%d].name", i)}
		}
		if strings.TrimSpace(it.Href) == "" {
			return nil, &MissingFieldError{Schema: "BreadcrumbList", Field: fmt.Sprintf("itemListElement[%d].item", i)}
		}
		if strings.ContainsAny(it.Href, "?#") {
			return nil, &InvalidValueError{
				Schema: "BreadcrumbList",
				Field:  fmt.Sprintf("itemListElement[%d].item", i),
				Value:  it.Href,
				Reason: "must be a path without query or fragment",
			}
		}
		elements = append(elements, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     name,
			"item":     e.URL(it.Href),
		})
	}
	return finish(Document{
		"@context":        Context,
		"@type":           "BreadcrumbList",
		"itemListElement": elements,
	})
}

// Organization returns the site-wide Organization document.
func (e *Emitter) Organization() (Document, error) {
	p := e.profile
	doc := Document{
		"@context":  Context,
		"@type":     "Organization",
		"@id":       e.origin + "/#organization",
		"name":      p.Name,
		"url":       e.URL("/"),
		"telephone": p.Phone,
		"contactPoint": map[string]any{
			"@type":       "ContactPoint",
			"telephone":   p.Phone,
			"contactType": "customer service",
			"areaServed":  p.Address.Country,
		},
	}
	if p.LegalName != "" {
		doc["legalName"] = p.LegalName
	}
	if p.Logo != "" {
		doc["logo"] = p.Logo
	}
	if len(p.SameAs) > 0 {
		doc["sameAs"] = append([]string(nil), p.SameAs...)
	}
	return finish(doc)
}

// WebSite returns the WebSite document for the home page.
func (e *Emitter) WebSite() (Document, error) {
	return finish(Document{
		"@context":  Context,
		"@type":     "WebSite",
		"name":      e.profile.Name,
		"url":       e.URL("/"),
		"publisher": map[string]any{"@id": e.origin + "/#organization"},
	})
}

func finish(doc Document) (Document, error) {
	if err := Validate(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// isoDate renders a date-only value when the clock part is zero.
func isoDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.RFC3339)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
