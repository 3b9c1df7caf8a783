package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/clinscrape/clinscrape"
	"github.com/clinscrape/clinscrape/crawl"
	"github.com/clinscrape/clinscrape/fs"
)

const runDurationPrecision = 100 * time.Millisecond

// Run executes the scrape command: one full scrape per selected target, each
// recorded as a run and optionally exported.
func (c *ScrapeCmd) Run(deps *Dependencies) error {
	targets, err := c.selectTargets(deps)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", clinscrape.ErrorMessage(err))
		return err
	}

	if c.Concurrency > 0 {
		deps.Crawler.Concurrency = c.Concurrency
	}

	if c.Out != "" {
		if err := os.MkdirAll(c.Out, 0o755); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %v\n", err)
			return err
		}
	}

	start := time.Now()
	var totals struct {
		ok, failed, products, treatments int
	}
	var firstErr error
	for _, target := range targets {
		run, err := c.scrapeOne(deps, target)
		if err != nil {
			totals.failed++
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		totals.ok++
		totals.products += run.Products
		totals.treatments += run.Treatments
	}

	if len(targets) > 1 {
		fmt.Fprintf(deps.Stdout, "Done: %d sites ok, %d failed, %d products (%d treatments) in %s\n",
			totals.ok, totals.failed, totals.products, totals.treatments,
			time.Since(start).Round(runDurationPrecision))
	}
	return firstErr
}

// selectTargets resolves the requested keys against the target table, or
// returns the whole table when no keys were given.
func (c *ScrapeCmd) selectTargets(deps *Dependencies) ([]*clinscrape.Target, error) {
	if len(c.Keys) == 0 {
		return deps.Targets, nil
	}
	targets := make([]*clinscrape.Target, 0, len(c.Keys))
	for _, key := range c.Keys {
		t, err := deps.Target(key)
		if err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, nil
}

func (c *ScrapeCmd) scrapeOne(deps *Dependencies, target *clinscrape.Target) (*clinscrape.Run, error) {
	fmt.Fprintf(deps.Stdout, "Scraping %s (%s)\n", target.SiteName, target.Key)

	snapshotDir := c.Snapshots
	if snapshotDir == "" {
		snapshotDir = deps.SnapshotDir
	}
	if snapshotDir != "" {
		deps.Crawler.Snapshots = fs.NewSnapshotStore(snapshotDir, target.Key)
	}

	progress := func(event crawl.ProgressEvent) {
		switch event.Type {
		case crawl.ProgressStarted:
			if event.Total > 0 {
				fmt.Fprintf(deps.Stdout, "  Found %d URLs\n", event.Total)
			}
		case crawl.ProgressCompleted:
			if event.Total > 0 {
				fmt.Fprintf(deps.Stdout, "\r  [%d/%d]", event.Completed, event.Total)
			}
		case crawl.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  skip %s: %v\n", event.Unit, event.Error)
		case crawl.ProgressFinished:
			if event.Total > 0 {
				fmt.Fprintln(deps.Stdout)
			}
		}
	}

	result, err := deps.Crawler.ScrapeTarget(deps.Ctx, target, progress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error scraping %s: %s\n", target.Key, clinscrape.ErrorMessage(err))
		return nil, err
	}

	run := &clinscrape.Run{
		TargetKey: target.Key,
		SiteName:  target.SiteName,
		Provider:  deps.ProviderName,
		Model:     deps.Model,
		Products:  len(result.Products),
		Pages:     result.Units,
		Failed:    result.Failed,
		Duration:  result.Duration,
	}
	for _, p := range result.Products {
		run.Treatments += len(p.Treatments)
	}
	if deps.Runs != nil {
		if err := deps.Runs.CreateRun(deps.Ctx, run, result.Products); err != nil {
			fmt.Fprintf(deps.Stderr, "error saving run for %s: %s\n", target.Key, clinscrape.ErrorMessage(err))
			return nil, err
		}
	}

	fmt.Fprintf(deps.Stdout, "  %d products (%d treatments) from %d units in %s",
		run.Products, run.Treatments, result.Units, result.Duration.Round(runDurationPrecision))
	if result.Failed > 0 {
		fmt.Fprintf(deps.Stdout, ", %d failed", result.Failed)
	}
	fmt.Fprintln(deps.Stdout)

	if c.Out != "" {
		if err := c.export(run, result.Products); err != nil {
			fmt.Fprintf(deps.Stderr, "error exporting %s: %v\n", target.Key, err)
			return nil, err
		}
	}
	return run, nil
}

// export writes the run and its products to the output directory. JSON files
// carry the run metadata envelope; CSV is the flat per-treatment table.
func (c *ScrapeCmd) export(run *clinscrape.Run, products []*clinscrape.Product) error {
	if c.Format == "json" || c.Format == "both" {
		if err := fs.WriteRunJSON(filepath.Join(c.Out, run.TargetKey+".json"), run, products); err != nil {
			return err
		}
	}
	if c.Format == "csv" || c.Format == "both" {
		if err := fs.WriteProductsCSV(filepath.Join(c.Out, run.TargetKey+".csv"), products); err != nil {
			return err
		}
	}
	return nil
}
