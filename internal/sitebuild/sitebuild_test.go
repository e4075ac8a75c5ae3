package sitebuild

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"finitefield.org/contractor-site/internal/assembler"
	"finitefield.org/contractor-site/internal/business"
	"finitefield.org/contractor-site/internal/content"
	"finitefield.org/contractor-site/internal/i18n"
	"finitefield.org/contractor-site/internal/linkgraph"
	"finitefield.org/contractor-site/internal/seo"
	"finitefield.org/contractor-site/locales"
	"finitefield.org/contractor-site/templates"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newBuilder(t *testing.T, services []content.Service) *Builder {
	t.Helper()
	profiles, err := business.New(business.Profile{
		Name:    "Gulf Coast Builders",
		URL:     "https://www.gulfcoastbuilders.example",
		Phone:   "(813) 555-0142",
		License: "CGC1520000",
		Address: business.Address{Locality: "Brandon", Region: "FL"},
	})
	require.NoError(t, err)

	registry, err := content.NewRegistry(
		[]content.Location{
			{Slug: "brandon", Name: "Brandon"},
			{Slug: "ruskin", Name: "Ruskin"},
			{Slug: "lakeland", Name: "Lakeland"},
		},
		services,
		[]content.Article{{
			Slug:          "permit-checklist",
			Headline:      "Commercial Permit Checklist",
			DatePublished: time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
			DateModified:  time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
			Body:          "<p>Start early.</p>",
		}},
	)
	require.NoError(t, err)

	emitter, err := seo.NewEmitter(profiles.Get())
	require.NoError(t, err)
	a, err := assembler.New(assembler.Deps{
		Profile:  profiles.Get(),
		Registry: registry,
		Emitter:  emitter,
		Graph:    linkgraph.New(registry),
	})
	require.NoError(t, err)

	bundle, err := i18n.LoadFS(locales.FS, "en", nil)
	require.NoError(t, err)
	r, err := assembler.NewRenderer(templates.FS, bundle.For("en"))
	require.NoError(t, err)

	b, err := New(Deps{
		Assembler:   a,
		Renderer:    r,
		Clock:       func() time.Time { return fixedNow },
		IDGenerator: func() string { return "01JNBUILD0000000000000000" },
	})
	require.NoError(t, err)
	return b
}

func defaultServices() []content.Service {
	return []content.Service{
		{Slug: "commercial-construction", Name: "Commercial Construction"},
		{Slug: "disaster-recovery", Name: "Disaster Recovery"},
		{Slug: "industrial-construction", Name: "Industrial Construction"},
	}
}

// 1 home + 1 services hub + 3 services + 1 areas hub + 3 cities + 9 pairs +
// 1 resources hub + 1 article
const expectedPages = 20

func TestBuildWritesEveryPage(t *testing.T) {
	out := t.TempDir()
	b := newBuilder(t, defaultServices())

	manifest, err := b.Build(context.Background(), Options{OutputDir: out, Workers: 3})
	require.NoError(t, err)
	require.Equal(t, "01JNBUILD0000000000000000", manifest.BuildID)
	require.Equal(t, fixedNow, manifest.GeneratedAt)
	require.Len(t, manifest.Pages, expectedPages)
	written, unchanged := manifest.Counts()
	require.Equal(t, expectedPages, written)
	require.Zero(t, unchanged)

	for _, p := range manifest.Pages {
		data, err := os.ReadFile(filepath.Join(out, filepath.FromSlash(p.Path), "index.html"))
		require.NoError(t, err, p.Path)
		require.Equal(t, p.Digest, digest(data))
	}

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromFile(filepath.Join(out, "sitemap.xml")))
	urls := doc.Root().SelectElements("url")
	require.Len(t, urls, expectedPages)
	require.Equal(t, "https://www.gulfcoastbuilders.example/", urls[0].SelectElement("loc").Text())

	var articleLastMod string
	for _, u := range urls {
		if u.SelectElement("loc").Text() == "https://www.gulfcoastbuilders.example/resources/permit-checklist/" {
			articleLastMod = u.SelectElement("lastmod").Text()
		}
	}
	require.Equal(t, "2024-06-03", articleLastMod)

	stored, err := ReadManifest(out)
	require.NoError(t, err)
	require.Equal(t, manifest.BuildID, stored.BuildID)
	require.Equal(t, manifest.Pages, stored.Pages)
}

func TestBuildSkipsUnchangedPages(t *testing.T) {
	out := t.TempDir()
	b := newBuilder(t, defaultServices())

	_, err := b.Build(context.Background(), Options{OutputDir: out})
	require.NoError(t, err)

	tampered := filepath.Join(out, "services", "disaster-recovery", "index.html")
	require.NoError(t, os.WriteFile(tampered, []byte("stale"), 0o644))

	manifest, err := b.Build(context.Background(), Options{OutputDir: out})
	require.NoError(t, err)
	written, unchanged := manifest.Counts()
	require.Equal(t, 1, written)
	require.Equal(t, expectedPages-1, unchanged)

	data, err := os.ReadFile(tampered)
	require.NoError(t, err)
	require.NotEqual(t, "stale", string(data))
}

func TestBuildDryRunWritesNothing(t *testing.T) {
	out := t.TempDir()
	b := newBuilder(t, defaultServices())

	manifest, err := b.Build(context.Background(), Options{OutputDir: out, DryRun: true})
	require.NoError(t, err)
	require.True(t, manifest.DryRun)
	require.Len(t, manifest.Pages, expectedPages)
	for _, p := range manifest.Pages {
		require.Equal(t, StatusChecked, p.Status)
	}

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestBuildReportsEveryFailingPage(t *testing.T) {
	out := t.TempDir()
	services := defaultServices()
	// A blank answer passes record validation but not the FAQPage emitter.
	services[1].FAQs = []content.FAQ{{Question: "Are you available after storms?", Answer: "   "}}
	b := newBuilder(t, services)

	manifest, err := b.Build(context.Background(), Options{OutputDir: out, Workers: 2})
	require.Error(t, err)

	// The service page plus one page per city.
	require.Len(t, multierr.Errors(errors.Unwrap(err)), 4)
	var pageErr *PageError
	require.ErrorAs(t, err, &pageErr)
	var missing *seo.MissingFieldError
	require.ErrorAs(t, err, &missing)

	require.Len(t, manifest.Pages, expectedPages-4)
	_, statErr := os.Stat(filepath.Join(out, "services", "disaster-recovery", "index.html"))
	require.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(filepath.Join(out, "services", "commercial-construction", "index.html"))
	require.NoError(t, statErr)
	_, statErr = os.Stat(filepath.Join(out, "sitemap.xml"))
	require.True(t, os.IsNotExist(statErr))
}

func TestBuildHonoursCancellation(t *testing.T) {
	b := newBuilder(t, defaultServices())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.Build(ctx, Options{OutputDir: t.TempDir()})
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(Deps{})
	require.ErrorIs(t, err, errAssemblerRequired)

	_, err = (&Builder{}).Build(context.Background(), Options{})
	require.ErrorIs(t, err, errOutputDirRequired)
}
