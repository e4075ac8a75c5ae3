package main

import (
	"context"
	"io"

	"finitefield.org/contractor-site/internal/platform/config"
)

// Dependencies holds configuration and writers for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Config config.Config
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	EnvFile  string `name:"env-file" help:"Read configuration overrides from this .env file"`
	LogLevel string `name:"log-level" help:"Log level: debug, info, warn or error (overrides SITE_LOG_LEVEL)"`

	Build BuildCmd `cmd:"" help:"Generate every page into the output directory"`
	Check CheckCmd `cmd:"" help:"Validate content and every page without writing"`
	Links LinksCmd `cmd:"" help:"Show related services and nearby locations for a city page"`
}

// BuildCmd is the "build" subcommand.
type BuildCmd struct {
	Content string `short:"c" help:"Content directory (overrides SITE_CONTENT_DIR)"`
	Out     string `short:"o" help:"Output directory (overrides SITE_OUTPUT_DIR)"`
	Workers int    `short:"w" help:"Parallel page workers (overrides SITE_WORKERS)"`
	DryRun  bool   `name:"dry-run" help:"Render and audit pages without writing"`
}

// CheckCmd is the "check" subcommand.
type CheckCmd struct {
	Content string `short:"c" help:"Content directory (overrides SITE_CONTENT_DIR)"`
}

// LinksCmd is the "links" subcommand.
type LinksCmd struct {
	City    string `arg:"" help:"City slug"`
	Service string `arg:"" help:"Service slug"`
	Content string `short:"c" help:"Content directory (overrides SITE_CONTENT_DIR)"`
	Limit   int    `short:"n" help:"Maximum links per list (overrides SITE_LINK_LIMIT)"`
}
