package main

import (
	"fmt"
	"io"

	"finitefield.org/contractor-site/internal/linkgraph"
	"finitefield.org/contractor-site/internal/nav"
)

// Run executes the links command.
func (c *LinksCmd) Run(deps *Dependencies) error {
	cfg := deps.Config
	if c.Content != "" {
		cfg.Content.Dir = c.Content
	}
	if c.Limit > 0 {
		cfg.Build.LinkLimit = c.Limit
	}

	s, err := loadSite(cfg)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}

	city, err := s.registry.Location(c.City)
	if err != nil {
		return err
	}
	service, err := s.registry.Service(c.Service)
	if err != nil {
		return err
	}

	related, err := s.graph.RelatedServices(city.Slug, service.Slug)
	if err != nil {
		return err
	}
	relatedLinks, err := linkgraph.ServiceLinks(city, related)
	if err != nil {
		return err
	}
	nearby, err := s.graph.NearbyLocations(city.Slug, service.Slug)
	if err != nil {
		return err
	}
	nearbyLinks, err := linkgraph.LocationLinks(nearby, service)
	if err != nil {
		return err
	}

	printLinks(deps.Stdout, fmt.Sprintf("Related services in %s", city.Name), relatedLinks)
	printLinks(deps.Stdout, fmt.Sprintf("%s in nearby cities", service.Name), nearbyLinks)
	return nil
}

func printLinks(w io.Writer, heading string, links []nav.Link) {
	fmt.Fprintf(w, "%s:\n", heading)
	if len(links) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	for _, l := range links {
		fmt.Fprintf(w, "  %-28s %s\n", l.Name, l.Href)
	}
}
