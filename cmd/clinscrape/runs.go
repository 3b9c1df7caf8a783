package main

import (
	"encoding/json"
	"fmt"

	"github.com/clinscrape/clinscrape"
)

// Run executes the "runs list" command.
func (c *RunsListCmd) Run(deps *Dependencies) error {
	filter := clinscrape.RunFilter{Limit: c.Limit}
	if c.Target != "" {
		filter.TargetKey = &c.Target
	}

	runs, err := deps.Runs.FindRuns(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", clinscrape.ErrorMessage(err))
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(deps.Stdout, "No runs found. Use 'clinscrape scrape' to start one.")
		return nil
	}

	for _, r := range runs {
		fmt.Fprintf(deps.Stdout, "%s  %s  %-12s %3d products  %3d units  %s\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04"), r.TargetKey, r.Products, r.Pages, r.Duration.Round(runDurationPrecision))
	}
	return nil
}

// Run executes the "runs show" command.
func (c *RunsShowCmd) Run(deps *Dependencies) error {
	products, err := deps.Runs.FindProductsByRun(deps.Ctx, c.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", clinscrape.ErrorMessage(err))
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(products)
	}

	for _, p := range products {
		fmt.Fprintf(deps.Stdout, "%s  %s", p.ClinicName, p.Name)
		if p.EventPrice != nil {
			fmt.Fprintf(deps.Stdout, "  %d KRW", *p.EventPrice)
		}
		fmt.Fprintln(deps.Stdout)
		for _, t := range p.Treatments {
			fmt.Fprintf(deps.Stdout, "  - %s", t.Name)
			if t.Type != "" {
				fmt.Fprintf(deps.Stdout, " (%s)", t.Type)
			}
			fmt.Fprintln(deps.Stdout)
		}
	}
	return nil
}
