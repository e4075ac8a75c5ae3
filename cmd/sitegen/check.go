package main

import (
	"fmt"
)

// Run executes the check command: every page is assembled, rendered and
// audited, and nothing is written.
func (c *CheckCmd) Run(deps *Dependencies) error {
	cfg := deps.Config
	if c.Content != "" {
		cfg.Content.Dir = c.Content
	}

	manifest, err := runBuild(deps, cfg, true)
	if err != nil {
		return err
	}
	fmt.Fprintf(deps.Stdout, "ok: %d pages checked in %s\n", len(manifest.Pages), cfg.Content.Dir)
	return nil
}
