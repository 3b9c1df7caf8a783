package main

import (
	"context"
	"io"

	"github.com/clinscrape/clinscrape"
	"github.com/clinscrape/clinscrape/crawl"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer

	// Targets is the merged target table: builtin sites plus config file
	// entries.
	Targets []*clinscrape.Target

	Runs    clinscrape.RunService
	Crawler *crawl.Crawler

	// ProviderName and Model identify the LLM used, recorded on each run.
	ProviderName string
	Model        string

	// SnapshotDir, when set, enables per-target page snapshot writing.
	SnapshotDir string
}

// Target returns the target with the given key from the table.
func (d *Dependencies) Target(key string) (*clinscrape.Target, error) {
	for _, t := range d.Targets {
		if t.Key == key {
			return t, nil
		}
	}
	return nil, clinscrape.Errorf(clinscrape.ENOTFOUND, "unknown target %q", key)
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Scrape  ScrapeCmd  `cmd:"" help:"Scrape clinic sites and extract products"`
	Targets TargetsCmd `cmd:"" help:"List configured scrape targets"`
	Runs    RunsCmd    `cmd:"" help:"Inspect past scrape runs"`
}

// ScrapeCmd is the "scrape" subcommand.
type ScrapeCmd struct {
	Keys        []string `arg:"" optional:"" name:"target" help:"Target keys to scrape (default: all)"`
	Provider    string   `help:"LLM provider: gemini or anthropic"`
	Model       string   `help:"Override the provider's default model"`
	Out         string   `short:"o" help:"Directory for exported results"`
	Format      string   `enum:"json,csv,both" default:"both" help:"Export format"`
	Snapshots   string   `help:"Directory for page snapshots"`
	NoRender    bool     `help:"Fetch pages over plain HTTP instead of a browser"`
	Concurrency int      `short:"c" help:"Concurrent unit limit"`
}

// TargetsCmd is the "targets" subcommand.
type TargetsCmd struct{}

// RunsCmd groups the run inspection subcommands.
type RunsCmd struct {
	List RunsListCmd `cmd:"" default:"1" help:"List past runs"`
	Show RunsShowCmd `cmd:"" help:"Show one run and its products"`
}

// RunsListCmd is the "runs list" subcommand.
type RunsListCmd struct {
	Target string `help:"Filter by target key"`
	Limit  int    `default:"20" help:"Maximum runs to show"`
}

// RunsShowCmd is the "runs show" subcommand.
type RunsShowCmd struct {
	ID   string `arg:"" help:"Run ID"`
	JSON bool   `help:"Print products as JSON"`
}
