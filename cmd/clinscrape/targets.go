package main

import (
	"fmt"
)

// Run executes the targets command.
func (c *TargetsCmd) Run(deps *Dependencies) error {
	if len(deps.Targets) == 0 {
		fmt.Fprintln(deps.Stdout, "No targets configured.")
		return nil
	}
	for _, t := range deps.Targets {
		fmt.Fprintf(deps.Stdout, "%-12s %-8s %s\n", t.Key, t.Strategy, t.BaseURL)
	}
	return nil
}
