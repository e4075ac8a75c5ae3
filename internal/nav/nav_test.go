package nav

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"finitefield.org/contractor-site/internal/business"
	"finitefield.org/contractor-site/internal/content"
	"finitefield.org/contractor-site/internal/platform/paths"
	"finitefield.org/contractor-site/internal/seo"
)

var (
	brandon    = &content.Location{Slug: "brandon", Name: "Brandon"}
	commercial = &content.Service{Slug: "commercial-construction", Name: "Commercial Construction"}
)

func TestBuildMarksActiveSection(t *testing.T) {
	items := Build("/service-areas/brandon/commercial-construction")
	var active []string
	for _, it := range items {
		if it.Active {
			active = append(active, it.Href)
		}
	}
	if diff := cmp.Diff([]string{"/service-areas/"}, active); diff != "" {
		t.Fatalf("active items mismatch (-want +got):\n%s", diff)
	}

	for _, it := range Build("/") {
		if it.Active {
			t.Fatalf("no section should be active on the home page, got %s", it.Href)
		}
	}
}

func TestTrailLocationService(t *testing.T) {
	trail, err := Trail(paths.KindLocationService, Subject{City: brandon, Service: commercial}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []content.BreadcrumbItem{
		{Name: "Home", Href: "/"},
		{Name: "Service Areas", Href: "/service-areas/"},
		{Name: "Brandon", Href: "/service-areas/brandon/"},
		{Name: "Commercial Construction", Href: "/service-areas/brandon/commercial-construction/"},
	}
	if diff := cmp.Diff(want, trail); diff != "" {
		t.Fatalf("trail mismatch (-want +got):\n%s", diff)
	}
}

func TestTrailUsesLabels(t *testing.T) {
	labels := map[string]string{LabelHome: "Start", LabelServices: "What We Build"}
	label := func(key string) string { return labels[key] }

	trail, err := Trail(paths.KindService, Subject{Service: commercial}, label)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trail[0].Name != "Start" || trail[1].Name != "What We Build" {
		t.Fatalf("labels not applied: %+v", trail)
	}
}

func TestTrailRequiresSubject(t *testing.T) {
	if _, err := Trail(paths.KindLocation, Subject{}, nil); err == nil {
		t.Fatalf("expected error for missing city")
	}
	if _, err := Trail(paths.Kind("gallery"), Subject{}, nil); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestBreadcrumbsMatchStructuredData(t *testing.T) {
	emitter, err := seo.NewEmitter(business.Profile{
		Name:    "Gulf Coast Builders",
		URL:     "https://www.gulfcoastbuilders.example",
		Phone:   "+18135550142",
		License: "CGC1520000",
	})
	if err != nil {
		t.Fatalf("emitter: %v", err)
	}

	items := []content.BreadcrumbItem{
		{Name: "Home", Href: "/"},
		{Name: "Services", Href: "services"},
		{Name: "Disaster Recovery", Href: "/services/disaster-recovery"},
	}
	crumbs := Breadcrumbs(items)
	doc, err := emitter.Breadcrumb(items)
	if err != nil {
		t.Fatalf("breadcrumb: %v", err)
	}

	elements := doc["itemListElement"].([]map[string]any)
	if len(elements) != len(crumbs) {
		t.Fatalf("expected %d elements, got %d", len(crumbs), len(elements))
	}
	for i, crumb := range crumbs {
		item := elements[i]["item"].(string)
		if got := strings.TrimPrefix(item, "https://www.gulfcoastbuilders.example"); got != crumb.Href {
			t.Fatalf("item %d: structured data href %s != anchor href %s", i, got, crumb.Href)
		}
		if elements[i]["position"] != crumb.Position {
			t.Fatalf("item %d: position mismatch", i)
		}
	}
	if !crumbs[len(crumbs)-1].Active || crumbs[0].Active {
		t.Fatalf("only the last crumb should be active: %+v", crumbs)
	}
}
