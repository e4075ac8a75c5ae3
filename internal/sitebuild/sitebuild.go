// Package sitebuild generates every page of the site in parallel and writes
// the HTML, sitemap and build manifest to an output directory.
package sitebuild

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"finitefield.org/contractor-site/internal/assembler"
	"finitefield.org/contractor-site/internal/platform/observability"
)

const (
	defaultWorkers = 4
	indexFile      = "index.html"
)

// Page statuses recorded in the manifest.
const (
	StatusWritten   = "written"
	StatusUnchanged = "unchanged"
	StatusChecked   = "checked"
)

// Deps groups constructor parameters for the builder.
type Deps struct {
	Assembler   *assembler.Assembler
	Renderer    *assembler.Renderer
	Metrics     *observability.BuildMetrics
	Clock       func() time.Time
	IDGenerator func() string
}

// Options tunes a single build.
type Options struct {
	OutputDir string
	Workers   int
	// DryRun assembles, renders and audits every page without touching disk.
	DryRun bool
}

// Builder runs batch builds. It is safe to reuse across builds.
type Builder struct {
	assembler *assembler.Assembler
	renderer  *assembler.Renderer
	metrics   *observability.BuildMetrics
	now       func() time.Time
	newID     func() string
}

// New validates deps and returns a builder.
func New(deps Deps) (*Builder, error) {
	if deps.Assembler == nil {
		return nil, errAssemblerRequired
	}
	if deps.Renderer == nil {
		return nil, errRendererRequired
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}
	return &Builder{
		assembler: deps.Assembler,
		renderer:  deps.Renderer,
		metrics:   deps.Metrics,
		now:       func() time.Time { return clock().UTC() },
		newID:     idGen,
	}, nil
}

type pageResult struct {
	entry   ManifestPage
	loc     string
	lastMod time.Time
}

// Build generates every page binding. Page failures do not stop the other
// pages; they are collected and returned together, and neither the sitemap
// nor the manifest is written when any page failed. Cancelling ctx stops the
// build.
func (b *Builder) Build(ctx context.Context, opts Options) (manifest Manifest, err error) {
	if !opts.DryRun && opts.OutputDir == "" {
		return Manifest{}, errOutputDirRequired
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	ctx, span := observability.StartSpan(ctx, "sitebuild.Build",
		attribute.Int("workers", workers),
		attribute.Bool("dry_run", opts.DryRun))
	defer func() { observability.EndSpan(span, err) }()

	logger := observability.FromContext(ctx).Named("sitebuild")
	started := b.now()

	bindings := b.assembler.Bindings()
	results := make([]*pageResult, len(bindings))

	var (
		mu       sync.Mutex
		pageErrs error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, binding := range bindings {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := b.page(gctx, binding, opts)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				mu.Lock()
				pageErrs = multierr.Append(pageErrs, err)
				mu.Unlock()
				return nil
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Manifest{}, fmt.Errorf("sitebuild: build interrupted: %w", err)
	}

	manifest = Manifest{
		BuildID:     b.newID(),
		GeneratedAt: started,
		DryRun:      opts.DryRun,
	}
	var entries []sitemapEntry
	for _, res := range results {
		if res == nil {
			continue
		}
		manifest.Pages = append(manifest.Pages, res.entry)
		entries = append(entries, sitemapEntry{Loc: res.loc, LastMod: res.lastMod})
	}

	if pageErrs != nil {
		failed := len(multierr.Errors(pageErrs))
		logger.Error("build failed",
			zap.Int("pages", len(bindings)),
			zap.Int("failed", failed),
			zap.Error(pageErrs))
		return manifest, fmt.Errorf("sitebuild: %d of %d pages failed: %w", failed, len(bindings), pageErrs)
	}

	if !opts.DryRun {
		if err := ctx.Err(); err != nil {
			return Manifest{}, fmt.Errorf("sitebuild: build interrupted: %w", err)
		}
		sitemap, err := renderSitemap(entries)
		if err != nil {
			return manifest, fmt.Errorf("sitebuild: sitemap: %w", err)
		}
		if _, err := writeIfChanged(filepath.Join(opts.OutputDir, sitemapFile), sitemap); err != nil {
			return manifest, fmt.Errorf("sitebuild: sitemap: %w", err)
		}
		if err := writeManifest(filepath.Join(opts.OutputDir, manifestFile), manifest); err != nil {
			return manifest, fmt.Errorf("sitebuild: manifest: %w", err)
		}
	}

	written, unchanged := manifest.Counts()
	logger.Info("build complete",
		zap.String("build_id", manifest.BuildID),
		zap.Int("pages", len(manifest.Pages)),
		zap.Int("written", written),
		zap.Int("unchanged", unchanged),
		zap.Bool("dry_run", opts.DryRun),
		zap.Duration("elapsed", b.now().Sub(started)))
	return manifest, nil
}

// page assembles, renders, audits and writes a single binding.
func (b *Builder) page(ctx context.Context, binding assembler.Binding, opts Options) (res *pageResult, err error) {
	kind := string(binding.Kind)
	ctx, span := observability.StartSpan(ctx, "sitebuild.page", attribute.String("page.kind", kind))
	defer func() {
		observability.EndSpan(span, err)
		if err != nil {
			b.metrics.PageFailed(ctx, kind)
		}
	}()

	page, err := b.assembler.Assemble(binding)
	if err != nil {
		return nil, &PageError{Ref: bindingRef(binding), Err: err}
	}
	span.SetAttributes(attribute.String("page.path", page.Path))

	html, err := b.renderer.RenderBytes(page)
	if err != nil {
		return nil, &PageError{Ref: page.Path, Err: err}
	}
	if err := assembler.Audit(html, page); err != nil {
		return nil, &PageError{Ref: page.Path, Err: err}
	}

	res = &pageResult{
		entry: ManifestPage{
			Path:   page.Path,
			Kind:   kind,
			Digest: digest(html),
			Bytes:  len(html),
			Status: StatusChecked,
		},
		loc: page.Meta.Canonical,
	}
	if page.Article != nil {
		res.lastMod = page.Article.DateModified
		if res.lastMod.IsZero() {
			res.lastMod = page.Article.DatePublished
		}
	}

	logger := observability.FromContext(ctx).Named("sitebuild")
	if opts.DryRun {
		logger.Debug("page checked", observability.PageFields(ctx, page.Path, kind)...)
		return res, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	target := filepath.Join(opts.OutputDir, filepath.FromSlash(page.Path), indexFile)
	changed, err := writeIfChanged(target, html)
	if err != nil {
		return nil, &PageError{Ref: page.Path, Err: err}
	}
	if changed {
		res.entry.Status = StatusWritten
		b.metrics.PageWritten(ctx, kind)
		logger.Debug("page written", observability.PageFields(ctx, page.Path, kind)...)
	} else {
		res.entry.Status = StatusUnchanged
		b.metrics.PageSkipped(ctx, kind)
		logger.Debug("page unchanged", observability.PageFields(ctx, page.Path, kind)...)
	}
	return res, nil
}

func digest(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

// writeIfChanged writes data to path unless the file already holds the same
// bytes. It reports whether the file was written.
func writeIfChanged(path string, data []byte) (bool, error) {
	existing, err := os.ReadFile(path)
	switch {
	case err == nil:
		if xxhash.Sum64(existing) == xxhash.Sum64(data) && len(existing) == len(data) {
			return false, nil
		}
	case !errors.Is(err, os.ErrNotExist):
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}
