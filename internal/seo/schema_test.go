package seo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateRejectsIncompleteDocuments(t *testing.T) {
	cases := []struct {
		name string
		doc  Document
	}{
		{
			name: "faq without entities",
			doc:  Document{"@context": Context, "@type": "FAQPage", "mainEntity": []any{}},
		},
		{
			name: "service without provider",
			doc:  Document{"@context": Context, "@type": "Service", "name": "Roofing"},
		},
		{
			name: "breadcrumb with relative item",
			doc: Document{"@context": Context, "@type": "BreadcrumbList", "itemListElement": []map[string]any{
				{"@type": "ListItem", "position": 1, "name": "Home", "item": "/"},
			}},
		},
		{
			name: "negative min price",
			doc: Document{"@context": Context, "@type": "Service", "name": "Roofing",
				"provider": map[string]any{"@type": BusinessType, "name": "Gulf Coast Builders"},
				"offers": map[string]any{"@type": "Offer", "priceSpecification": map[string]any{
					"@type": "PriceSpecification", "minPrice": -5, "priceCurrency": "USD",
				}},
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.doc)
			var schemaErr *SchemaError
			require.ErrorAs(t, err, &schemaErr)
			require.Equal(t, tc.doc.Type(), schemaErr.Type)
		})
	}
}

func TestValidateAcceptsTypedGoValues(t *testing.T) {
	doc := Document{"@context": Context, "@type": "BreadcrumbList", "itemListElement": []map[string]any{
		{"@type": "ListItem", "position": 1, "name": "Home", "item": "https://example.com/"},
		{"@type": "ListItem", "position": 2, "name": "Services", "item": "https://example.com/services/"},
	}}
	require.NoError(t, Validate(doc))
}

func TestValidateUnknownType(t *testing.T) {
	var schemaErr *SchemaError
	require.ErrorAs(t, Validate(Document{"@type": "Product"}), &schemaErr)
	require.ErrorAs(t, Validate(Document{"name": "x"}), &schemaErr)
}

func TestScriptEscapesMarkup(t *testing.T) {
	doc := Document{"@context": Context, "@type": "WebSite", "name": "</script><b>", "url": "https://example.com/"}

	out, err := Script(doc)
	require.NoError(t, err)

	html := string(out)
	require.True(t, strings.HasPrefix(html, `<script type="application/ld+json">{`))
	require.True(t, strings.HasSuffix(html, `}</script>`))
	require.Equal(t, 1, strings.Count(html, "</script>"))
	require.Contains(t, html, `\u003c/script\u003e`)
}

func TestEncodeNil(t *testing.T) {
	_, err := Encode(nil)
	require.Error(t, err)
}

func TestNewMetaTruncatesDescription(t *testing.T) {
	long := strings.Repeat("storm ready construction ", 20)
	meta := NewMeta("Brandon", long, "https://example.com/service-areas/brandon/", "", "Gulf Coast Builders")

	require.LessOrEqual(t, len([]rune(meta.Description)), descriptionLimit)
	require.True(t, strings.HasSuffix(meta.Description, "…"))
	require.Equal(t, meta.Canonical, meta.OG.URL)
	require.Equal(t, "summary", meta.Twitter.Card)
}
