package main

import (
	"fmt"

	"github.com/fwojciec/casedoc"
)

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	if _, err := deps.Runs.FindRunByID(deps.Ctx, c.RunID); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", casedoc.ErrorMessage(err))
		return err
	}

	results, err := deps.Search.Search(deps.Ctx, c.Query, casedoc.SearchOptions{
		RunID: c.RunID,
		Terms: c.Term,
		Limit: c.Limit,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", casedoc.ErrorMessage(err))
		return err
	}

	if len(results) == 0 {
		fmt.Fprintln(deps.Stdout, "No matching passages.")
		return nil
	}

	fmt.Fprintln(deps.Stdout, casedoc.FormatResults(results))
	return nil
}
