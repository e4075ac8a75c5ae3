package sitebuild

import (
	"time"

	"github.com/beevik/etree"
)

const (
	sitemapFile      = "sitemap.xml"
	sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"
)

type sitemapEntry struct {
	Loc     string
	LastMod time.Time
}

// renderSitemap builds a urlset in page order. lastmod is only set for pages
// that carry a date.
func renderSitemap(entries []sitemapEntry) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	urlset := doc.CreateElement("urlset")
	urlset.CreateAttr("xmlns", sitemapNamespace)
	for _, e := range entries {
		if e.Loc == "" {
			continue
		}
		u := urlset.CreateElement("url")
		u.CreateElement("loc").SetText(e.Loc)
		if !e.LastMod.IsZero() {
			u.CreateElement("lastmod").SetText(e.LastMod.Format("2006-01-02"))
		}
	}
	doc.Indent(2)
	return doc.WriteToBytes()
}
