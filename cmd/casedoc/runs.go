package main

import (
	"fmt"

	"github.com/fwojciec/casedoc"
	"github.com/fwojciec/casedoc/crawl"
)

// Run executes the runs command.
func (c *RunsCmd) Run(deps *Dependencies) error {
	runs, err := deps.Runs.FindRuns(deps.Ctx, casedoc.RunFilter{Limit: c.Limit})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", casedoc.ErrorMessage(err))
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(deps.Stdout, "No runs found. Use 'casedoc run' to start one.")
		return nil
	}

	for _, r := range runs {
		status := "incomplete"
		if r.Summary != nil {
			status = crawl.FormatSummary(r.Summary)
		}
		fmt.Fprintf(deps.Stdout, "%s  %s  %q  %s\n", r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.Request.Query, status)
	}

	return nil
}
