package assembler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// AuditError lists the mismatches found in a rendered page.
type AuditError struct {
	Path     string
	Problems []string
}

// Error implements the error interface.
func (e *AuditError) Error() string {
	return fmt.Sprintf("assembler: audit %s: %s", e.Path, strings.Join(e.Problems, "; "))
}

const (
	jsonLDSelector     = `script[type="application/ld+json"]`
	breadcrumbSelector = "nav.breadcrumbs a"
)

// Audit parses rendered HTML and checks it against the page model: every
// JSON-LD script parses, the script count matches the page, and the
// breadcrumb anchors equal the BreadcrumbList items one for one.
func Audit(rendered []byte, page Page) error {
	root, err := html.Parse(bytes.NewReader(rendered))
	if err != nil {
		return &AuditError{Path: page.Path, Problems: []string{"html: " + err.Error()}}
	}
	doc := goquery.NewDocumentFromNode(root)

	var problems []string
	var breadcrumbItems []string
	scripts := doc.Find(jsonLDSelector)
	if scripts.Length() != len(page.JSONLD) {
		problems = append(problems, fmt.Sprintf("expected %d JSON-LD scripts, found %d", len(page.JSONLD), scripts.Length()))
	}
	scripts.Each(func(i int, s *goquery.Selection) {
		var payload struct {
			Type            string `json:"@type"`
			ItemListElement []struct {
				Position int    `json:"position"`
				Item     string `json:"item"`
			} `json:"itemListElement"`
		}
		if err := json.Unmarshal([]byte(s.Text()), &payload); err != nil {
			problems = append(problems, fmt.Sprintf("JSON-LD script %d does not parse: %v", i, err))
			return
		}
		if payload.Type != "BreadcrumbList" {
			return
		}
		for j, el := range payload.ItemListElement {
			if el.Position != j+1 {
				problems = append(problems, fmt.Sprintf("breadcrumb item %d has position %d", j, el.Position))
			}
			u, err := url.Parse(el.Item)
			if err != nil {
				problems = append(problems, fmt.Sprintf("breadcrumb item %d url %q: %v", j, el.Item, err))
				continue
			}
			breadcrumbItems = append(breadcrumbItems, u.Path)
		}
	})

	var anchors []string
	doc.Find(breadcrumbSelector).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		anchors = append(anchors, href)
	})
	if len(anchors) != len(breadcrumbItems) {
		problems = append(problems, fmt.Sprintf("%d breadcrumb anchors but %d BreadcrumbList items", len(anchors), len(breadcrumbItems)))
	} else {
		for i := range anchors {
			if anchors[i] != breadcrumbItems[i] {
				problems = append(problems, fmt.Sprintf("breadcrumb %d: anchor %q != structured data %q", i+1, anchors[i], breadcrumbItems[i]))
			}
		}
	}

	if len(problems) > 0 {
		return &AuditError{Path: page.Path, Problems: problems}
	}
	return nil
}
