package main

import (
	"fmt"

	"github.com/fwojciec/casedoc"
)

// Run executes the failures command.
func (c *FailuresCmd) Run(deps *Dependencies) error {
	failures, err := deps.Failures.FindFailures(deps.Ctx, c.RunID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", casedoc.ErrorMessage(err))
		return err
	}

	if len(failures) == 0 {
		fmt.Fprintln(deps.Stdout, "No failures recorded.")
		return nil
	}

	for _, f := range failures {
		fmt.Fprintf(deps.Stdout, "%s  %-14s  %s  %s  %s\n",
			f.Timestamp.Format("15:04:05"), f.ErrorKind, f.CaseNumber, f.DocumentName, f.Message)
		fmt.Fprintf(deps.Stdout, "    %s\n", f.DocumentURL)
	}

	return nil
}
