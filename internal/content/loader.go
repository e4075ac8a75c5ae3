package content

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/relvacode/iso8601"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"gopkg.in/yaml.v3"
)

// File names inside the content directory.
const (
	LocationsFile = "locations.yaml"
	ServicesFile  = "services.yaml"
	ArticlesDir   = "articles"
)

var (
	markdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Typographer),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
	articleHTMLPolicy = newArticleHTMLPolicy()
)

type articleFrontMatter struct {
	Slug          string `yaml:"slug"`
	Title         string `yaml:"title"`
	Headline      string `yaml:"headline"`
	Description   string `yaml:"description"`
	Author        string `yaml:"author"`
	Image         string `yaml:"image"`
	DatePublished string `yaml:"date_published"`
	DateModified  string `yaml:"date_modified"`
	Service       string `yaml:"service"`
	FAQs          []FAQ  `yaml:"faqs"`
}

// Load reads locations.yaml, services.yaml and articles/*.md from fsys and
// builds a registry. A missing articles directory is not an error.
func Load(fsys fs.FS) (*Registry, error) {
	var locations []Location
	if err := readYAML(fsys, LocationsFile, &locations); err != nil {
		return nil, err
	}
	var services []Service
	if err := readYAML(fsys, ServicesFile, &services); err != nil {
		return nil, err
	}
	articles, err := readArticles(fsys)
	if err != nil {
		return nil, err
	}
	return NewRegistry(locations, services, articles)
}

func readYAML(fsys fs.FS, name string, out any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("content: read %s: %w", name, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("content: parse %s: %w", name, err)
	}
	return nil
}

func readArticles(fsys fs.FS) ([]Article, error) {
	matches, err := fs.Glob(fsys, path.Join(ArticlesDir, "*.md"))
	if err != nil {
		return nil, fmt.Errorf("content: list articles: %w", err)
	}
	articles := make([]Article, 0, len(matches))
	for _, name := range matches {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("content: read %s: %w", name, err)
		}
		article, err := parseArticle(name, data)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}
	return articles, nil
}

func parseArticle(name string, data []byte) (Article, error) {
	fm, body := splitFrontMatter(string(data))
	front := articleFrontMatter{}
	if strings.TrimSpace(fm) != "" {
		if err := yaml.Unmarshal([]byte(fm), &front); err != nil {
			return Article{}, fmt.Errorf("content: parse front matter %s: %w", name, err)
		}
	}

	slug := strings.TrimSpace(front.Slug)
	if slug == "" {
		slug = strings.TrimSuffix(path.Base(name), ".md")
	}
	published, err := parseDate(front.DatePublished)
	if err != nil {
		return Article{}, fmt.Errorf("content: %s date_published: %w", name, err)
	}
	modified, err := parseDate(front.DateModified)
	if err != nil {
		return Article{}, fmt.Errorf("content: %s date_modified: %w", name, err)
	}
	html, err := renderMarkdown(body)
	if err != nil {
		return Article{}, fmt.Errorf("content: render %s: %w", name, err)
	}

	headline := firstNonEmpty(front.Headline, front.Title)
	if headline == "" {
		headline = PrettifySlug(NormalizeSlug(slug))
	}
	return Article{
		Slug:          slug,
		Headline:      headline,
		Description:   strings.TrimSpace(front.Description),
		Author:        strings.TrimSpace(front.Author),
		Image:         strings.TrimSpace(front.Image),
		DatePublished: published,
		DateModified:  modified,
		Service:       strings.TrimSpace(front.Service),
		FAQs:          front.FAQs,
		Body:          html,
	}, nil
}

func splitFrontMatter(input string) (string, string) {
	input = strings.TrimLeft(input, "\ufeff")
	lines := strings.Split(input, "\n")
	if strings.TrimSpace(lines[0]) != "---" {
		return "", input
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			fm := strings.Join(lines[1:i], "\n")
			body := strings.Join(lines[i+1:], "\n")
			return fm, strings.TrimLeft(body, "\n\r")
		}
	}
	return "", input
}

// parseDate accepts ISO 8601 timestamps and plain dates. Empty input yields
// the zero time.
func parseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := iso8601.ParseString(v); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognised date %q", v)
	}
	return t, nil
}

func renderMarkdown(body string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(body), &buf); err != nil {
		return "", err
	}
	sanitized := strings.TrimSpace(articleHTMLPolicy.Sanitize(buf.String()))
	return template.HTML(sanitized), nil
}

func newArticleHTMLPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("figure", "figcaption")
	policy.AllowAttrs("id").OnElements("h2", "h3", "h4")
	policy.AllowAttrs("loading").OnElements("img")
	policy.RequireNoFollowOnLinks(true)
	return policy
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
