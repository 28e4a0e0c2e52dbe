package main

import (
	"fmt"

	"github.com/fwojciec/casedoc"
)

// Run executes the ask command.
func (c *AskCmd) Run(deps *Dependencies) error {
	if _, err := deps.Runs.FindRunByID(deps.Ctx, c.RunID); err != nil {
		if casedoc.ErrorCode(err) == casedoc.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: run %q not found. Use 'casedoc runs' to see available runs.\n", c.RunID)
			return err
		}
		fmt.Fprintf(deps.Stderr, "error: %s\n", casedoc.ErrorMessage(err))
		return err
	}

	answer, err := deps.Asker.Ask(deps.Ctx, c.RunID, c.Question)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", casedoc.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, answer)
	return nil
}
