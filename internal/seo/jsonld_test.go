package seo

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"finitefield.org/contractor-site/internal/business"
	"finitefield.org/contractor-site/internal/content"
)

func testProfile() business.Profile {
	return business.Profile{
		Name:         "Gulf Coast Builders",
		URL:          "https://www.gulfcoastbuilders.example",
		Phone:        "+18135550142",
		PhoneDisplay: "(813) 555-0142",
		License:      "CGC1520000",
		Address: business.Address{
			Street:     "100 Main St",
			Locality:   "Brandon",
			Region:     "FL",
			PostalCode: "33510",
			Country:    "US",
		},
		Geo:        &business.Geo{Latitude: 27.9378, Longitude: -82.2859},
		Categories: []string{"Commercial Construction", "Industrial Construction"},
	}
}

func newTestEmitter(t *testing.T) *Emitter {
	t.Helper()
	e, err := NewEmitter(testProfile())
	require.NoError(t, err)
	return e
}

// decode round-trips doc through JSON so assertions see what a crawler sees.
func decode(t *testing.T, doc Document) map[string]any {
	t.Helper()
	raw, err := Encode(doc)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func price(v float64) *float64 { return &v }

func TestServiceWithCityAndMinPrice(t *testing.T) {
	e := newTestEmitter(t)

	doc, err := e.Service(ServiceParams{
		Name:        "Commercial Construction",
		Description: "desc",
		City:        "Brandon",
		MinPrice:    price(500000),
	})
	require.NoError(t, err)

	got := decode(t, doc)
	require.Equal(t, "Service", got["@type"])
	require.Equal(t, "https://schema.org", got["@context"])
	require.Equal(t, "Brandon", got["areaServed"])
	provider := got["provider"].(map[string]any)
	require.Equal(t, "Gulf Coast Builders", provider["name"])

	offers := got["offers"].(map[string]any)
	require.Equal(t, "Offer", offers["@type"])
	spec := offers["priceSpecification"].(map[string]any)
	require.Equal(t, float64(500000), spec["minPrice"])
	require.Equal(t, "USD", spec["priceCurrency"])

	raw, err := Encode(doc)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"minPrice":500000`)
}

func TestServiceWithoutOptionalFields(t *testing.T) {
	e := newTestEmitter(t)

	doc, err := e.Service(ServiceParams{Name: "Disaster Recovery"})
	require.NoError(t, err)

	got := decode(t, doc)
	require.NotContains(t, got, "offers")
	require.NotContains(t, got, "areaServed")
}

func TestServiceRejectsInvalidInput(t *testing.T) {
	e := newTestEmitter(t)

	_, err := e.Service(ServiceParams{Name: "Commercial Construction", MinPrice: price(-1)})
	var invalid *InvalidValueError
	require.ErrorAs(t, err, &invalid)
	require.Equal(t, "minPrice", invalid.Field)

	_, err = e.Service(ServiceParams{Name: "Commercial Construction", MinPrice: price(10), Currency: "dollars"})
	require.ErrorAs(t, err, &invalid)
	require.Equal(t, "priceCurrency", invalid.Field)

	_, err = e.Service(ServiceParams{Name: "  "})
	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, "name", missing.Field)
}

func TestLocalBusinessForCityAndService(t *testing.T) {
	e := newTestEmitter(t)
	city := &content.Location{Slug: "brandon", Name: "Brandon", Region: "FL"}
	service := &content.Service{Slug: "commercial-construction", Name: "Commercial Construction"}

	doc, err := e.LocalBusiness(city, service)
	require.NoError(t, err)

	got := decode(t, doc)
	require.Equal(t, BusinessType, got["@type"])
	require.Equal(t, "Gulf Coast Builders - Commercial Construction in Brandon", got["name"])
	require.Equal(t, "https://www.gulfcoastbuilders.example/service-areas/brandon/commercial-construction/", got["url"])
	area := got["areaServed"].(map[string]any)
	require.Equal(t, "City", area["@type"])
	require.Equal(t, "Brandon", area["name"])
	require.Equal(t, "https://www.gulfcoastbuilders.example/service-areas/brandon/", area["url"])
	require.Equal(t, "PostalAddress", got["address"].(map[string]any)["@type"])
	require.Equal(t, "GeoCoordinates", got["geo"].(map[string]any)["@type"])
	require.Equal(t, "CGC1520000", got["hasCredential"].(map[string]any)["name"])
}

func TestLocalBusinessWithoutPageParameters(t *testing.T) {
	e := newTestEmitter(t)

	doc, err := e.LocalBusiness(nil, nil)
	require.NoError(t, err)

	got := decode(t, doc)
	require.Equal(t, "Gulf Coast Builders", got["name"])
	require.Equal(t, "https://www.gulfcoastbuilders.example/", got["url"])
	require.Equal(t, "State", got["areaServed"].(map[string]any)["@type"])
	require.NotContains(t, got, "parentOrganization")
	require.Len(t, got["knowsAbout"], 2)
}

func TestFAQPreservesOrder(t *testing.T) {
	e := newTestEmitter(t)
	faqs := []content.FAQ{
		{Question: "Do you pull permits?", Answer: "Yes, for every project."},
		{Question: "Are you licensed?", Answer: "Florida CGC1520000."},
		{Question: "Do you work weekends?", Answer: "During storm recovery."},
	}

	doc, err := e.FAQ(faqs)
	require.NoError(t, err)

	entities := decode(t, doc)["mainEntity"].([]any)
	require.Len(t, entities, len(faqs))
	for i, raw := range entities {
		entity := raw.(map[string]any)
		require.Equal(t, "Question", entity["@type"])
		require.Equal(t, faqs[i].Question, entity["name"])
		answer := entity["acceptedAnswer"].(map[string]any)
		require.Equal(t, "Answer", answer["@type"])
		require.Equal(t, faqs[i].Answer, answer["text"])
	}
}

func TestFAQEmptyEmitsNothing(t *testing.T) {
	e := newTestEmitter(t)

	doc, err := e.FAQ(nil)
	require.NoError(t, err)
	require.Nil(t, doc)

	doc, err = e.FAQ([]content.FAQ{})
	require.NoError(t, err)
	require.Nil(t, doc)
}

func TestFAQRejectsBlankAnswer(t *testing.T) {
	e := newTestEmitter(t)

	_, err := e.FAQ([]content.FAQ{{Question: "Q1", Answer: "A1"}, {Question: "Q2"}})
	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, "FAQPage", missing.Schema)
	require.Equal(t, "mainEntity[1].acceptedAnswer.text", missing.Field)
}

func TestBreadcrumbPositions(t *testing.T) {
	e := newTestEmitter(t)
	items := []content.BreadcrumbItem{
		{Name: "Home", Href: "/"},
		{Name: "Service Areas", Href: "/service-areas/"},
		{Name: "Brandon", Href: "/service-areas/brandon/"},
		{Name: "Commercial Construction", Href: "/service-areas/brandon/commercial-construction"},
	}

	doc, err := e.Breadcrumb(items)
	require.NoError(t, err)

	elements := decode(t, doc)["itemListElement"].([]any)
	require.Len(t, elements, len(items))
	for i, raw := range elements {
		el := raw.(map[string]any)
		require.Equal(t, "ListItem", el["@type"])
		require.Equal(t, float64(i+1), el["position"])
		require.Equal(t, items[i].Name, el["name"])
		require.True(t, strings.HasSuffix(el["item"].(string), "/"))
	}
	last := elements[3].(map[string]any)
	require.Equal(t, "https://www.gulfcoastbuilders.example/service-areas/brandon/commercial-construction/", last["item"])
}

func TestBreadcrumbRequiresItems(t *testing.T) {
	e := newTestEmitter(t)

	_, err := e.Breadcrumb(nil)
	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)

	_, err = e.Breadcrumb([]content.BreadcrumbItem{{Name: "Home"}})
	require.ErrorAs(t, err, &missing)
	require.Equal(t, "itemListElement[0].item", missing.Field)
}

func TestBreadcrumbRejectsQueryAndFragment(t *testing.T) {
	e := newTestEmitter(t)

	for _, href := range []string{"/services/?x=1", "/services/#faq"} {
		_, err := e.Breadcrumb([]content.BreadcrumbItem{
			{Name: "Home", Href: "/"},
			{Name: "Services", Href: href},
		})
		var invalid *InvalidValueError
		require.ErrorAs(t, err, &invalid, href)
		require.Equal(t, "itemListElement[1].item", invalid.Field)
		require.Equal(t, href, invalid.Value)
	}
}

func TestArticleDates(t *testing.T) {
	e := newTestEmitter(t)
	published := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	doc, err := e.Article(ArticleParams{
		Headline:      "Preparing a Warehouse for Hurricane Season",
		Description:   "A checklist.",
		DatePublished: published,
		Slug:          "hurricane-prep",
	})
	require.NoError(t, err)

	got := decode(t, doc)
	require.Equal(t, "2024-05-01", got["datePublished"])
	require.Equal(t, "2024-05-01", got["dateModified"])
	require.Equal(t, "Organization", got["author"].(map[string]any)["@type"])
	require.Equal(t, "https://www.gulfcoastbuilders.example/resources/hurricane-prep/", got["mainEntityOfPage"].(map[string]any)["@id"])

	doc, err = e.Article(ArticleParams{
		Headline:      "Roof Inspections",
		DatePublished: published,
		DateModified:  time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC),
		Author:        "Dana Reyes",
	})
	require.NoError(t, err)
	got = decode(t, doc)
	require.Equal(t, "2024-06-15T09:30:00Z", got["dateModified"])
	require.Equal(t, "Person", got["author"].(map[string]any)["@type"])
	require.NotContains(t, got, "mainEntityOfPage")
}

func TestArticleRejectsInvalidInput(t *testing.T) {
	e := newTestEmitter(t)
	published := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	_, err := e.Article(ArticleParams{DatePublished: published})
	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, "headline", missing.Field)

	_, err = e.Article(ArticleParams{Headline: "Roof Inspections"})
	require.ErrorAs(t, err, &missing)
	require.Equal(t, "datePublished", missing.Field)

	_, err = e.Article(ArticleParams{
		Headline:      "Roof Inspections",
		DatePublished: published,
		DateModified:  published.AddDate(0, 0, -1),
	})
	var invalid *InvalidValueError
	require.ErrorAs(t, err, &invalid)
	require.Equal(t, "dateModified", invalid.Field)
}

func TestHomeDocuments(t *testing.T) {
	e := newTestEmitter(t)

	org, err := e.Organization()
	require.NoError(t, err)
	require.Equal(t, "Organization", org.Type())

	site, err := e.WebSite()
	require.NoError(t, err)
	require.Equal(t, "https://www.gulfcoastbuilders.example/", decode(t, site)["url"])
}

func TestEmittersAreDeterministic(t *testing.T) {
	e := newTestEmitter(t)
	city := &content.Location{Slug: "ruskin", Name: "Ruskin"}
	service := &content.Service{Slug: "disaster-recovery", Name: "Disaster Recovery"}

	build := func() [][]byte {
		lb, err := e.LocalBusiness(city, service)
		require.NoError(t, err)
		svc, err := e.Service(ServiceParams{Name: service.Name, City: city.Name, MinPrice: price(1500), Path: "/services/disaster-recovery/"})
		require.NoError(t, err)
		faq, err := e.FAQ([]content.FAQ{{Question: "Q", Answer: "A"}})
		require.NoError(t, err)
		var out [][]byte
		for _, doc := range []Document{lb, svc, faq} {
			raw, err := Encode(doc)
			require.NoError(t, err)
			out = append(out, raw)
		}
		return out
	}

	require.Equal(t, build(), build())
}

func TestNewEmitterRequiresIdentity(t *testing.T) {
	p := testProfile()
	p.License = ""

	_, err := NewEmitter(p)
	require.True(t, errors.Is(err, ErrProfileIncomplete))
	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)

	p = testProfile()
	p.URL = "gulfcoastbuilders.example"
	_, err = NewEmitter(p)
	require.ErrorIs(t, err, ErrProfileIncomplete)
}
