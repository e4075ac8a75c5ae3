package main

import (
	"fmt"
	"os"

	"finitefield.org/contractor-site/internal/assembler"
	"finitefield.org/contractor-site/internal/business"
	"finitefield.org/contractor-site/internal/content"
	"finitefield.org/contractor-site/internal/i18n"
	"finitefield.org/contractor-site/internal/linkgraph"
	"finitefield.org/contractor-site/internal/platform/config"
	"finitefield.org/contractor-site/internal/seo"
	"finitefield.org/contractor-site/locales"
	"finitefield.org/contractor-site/templates"
)

const fallbackLang = "en"

// site is the wired pipeline for one content directory.
type site struct {
	registry  *content.Registry
	graph     *linkgraph.Graph
	assembler *assembler.Assembler
	renderer  *assembler.Renderer
}

func loadSite(cfg config.Config) (*site, error) {
	profiles, err := business.Load(cfg.Content.BusinessPath())
	if err != nil {
		return nil, err
	}
	profile := profiles.Get()

	registry, err := content.Load(os.DirFS(cfg.Content.Dir))
	if err != nil {
		return nil, err
	}
	emitter, err := seo.NewEmitter(profile)
	if err != nil {
		return nil, err
	}
	graph := linkgraph.New(registry, linkgraph.WithLimit(cfg.Build.LinkLimit))

	bundle, err := i18n.LoadFS(locales.FS, fallbackLang, []string{fallbackLang, cfg.Content.Lang})
	if err != nil {
		return nil, fmt.Errorf("load labels: %w", err)
	}
	labels := bundle.For(cfg.Content.Lang)

	a, err := assembler.New(assembler.Deps{
		Profile:  profile,
		Registry: registry,
		Emitter:  emitter,
		Graph:    graph,
		Labels:   labels,
		Lang:     labels.Lang(),
	})
	if err != nil {
		return nil, err
	}
	r, err := assembler.NewRenderer(templates.FS, labels)
	if err != nil {
		return nil, err
	}
	return &site{registry: registry, graph: graph, assembler: a, renderer: r}, nil
}
