package main

import (
	"fmt"

	"github.com/SirWilliamIII/wanderer"
	"github.com/SirWilliamIII/wanderer/classify"
)

// Run executes the stats command.
func (c *StatsCmd) Run(deps *Dependencies) error {
	categories := classify.NewDefault().Categories()
	if c.Category != "" {
		categories = []wanderer.Category{wanderer.Category(c.Category)}
	}

	total := 0
	for _, category := range categories {
		for _, mode := range []wanderer.Mode{wanderer.ModeWander, wanderer.ModeStrict} {
			n, err := deps.Documents.CountByCategoryAndMode(deps.Ctx, category, mode)
			if err != nil {
				fmt.Fprintf(deps.Stderr, "error: %s\n", wanderer.ErrorMessage(err))
				return err
			}
			if n == 0 {
				continue
			}
			fmt.Fprintf(deps.Stdout, "%-16s %-7s %d\n", category, mode, n)
			total += n
		}
	}

	if total == 0 {
		fmt.Fprintln(deps.Stdout, "No documents found. Use 'wanderer crawl' to collect some.")
		return nil
	}
	fmt.Fprintf(deps.Stdout, "%-16s %-7s %d\n", "total", "", total)
	return nil
}
