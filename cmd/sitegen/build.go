package main

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/multierr"

	"finitefield.org/contractor-site/internal/platform/config"
	"finitefield.org/contractor-site/internal/platform/observability"
	"finitefield.org/contractor-site/internal/sitebuild"
)

// Run executes the build command.
func (c *BuildCmd) Run(deps *Dependencies) error {
	cfg := deps.Config
	if c.Content != "" {
		cfg.Content.Dir = c.Content
	}
	if c.Out != "" {
		cfg.Output.Dir = c.Out
	}
	if c.Workers > 0 {
		cfg.Build.Workers = c.Workers
	}

	manifest, err := runBuild(deps, cfg, c.DryRun)
	if err != nil {
		return err
	}

	if c.DryRun {
		fmt.Fprintf(deps.Stdout, "checked %d pages (dry run)\n", len(manifest.Pages))
		return nil
	}
	written, unchanged := manifest.Counts()
	fmt.Fprintf(deps.Stdout, "built %d pages into %s (%d written, %d unchanged)\n", len(manifest.Pages), cfg.Output.Dir, written, unchanged)
	fmt.Fprintf(deps.Stdout, "build id %s\n", manifest.BuildID)
	return nil
}

func runBuild(deps *Dependencies, cfg config.Config, dryRun bool) (sitebuild.Manifest, error) {
	s, err := loadSite(cfg)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return sitebuild.Manifest{}, err
	}
	metrics, err := observability.NewBuildMetrics()
	if err != nil {
		return sitebuild.Manifest{}, fmt.Errorf("failed to register metrics: %w", err)
	}
	builder, err := sitebuild.New(sitebuild.Deps{
		Assembler: s.assembler,
		Renderer:  s.renderer,
		Metrics:   metrics,
	})
	if err != nil {
		return sitebuild.Manifest{}, err
	}

	manifest, err := builder.Build(deps.Ctx, sitebuild.Options{
		OutputDir: cfg.Output.Dir,
		Workers:   cfg.Build.Workers,
		DryRun:    dryRun,
	})
	if err != nil {
		reportPageErrors(deps.Stderr, err)
		return manifest, err
	}
	return manifest, nil
}

// reportPageErrors prints one line per failed page.
func reportPageErrors(w io.Writer, err error) {
	for _, e := range multierr.Errors(errors.Unwrap(err)) {
		var pageErr *sitebuild.PageError
		if errors.As(e, &pageErr) {
			fmt.Fprintf(w, "error: %v\n", pageErr)
		}
	}
}
