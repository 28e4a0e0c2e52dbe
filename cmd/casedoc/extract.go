package main

import (
	"fmt"

	"github.com/fwojciec/casedoc"
)

// Run executes the extract command.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	viewer, err := deps.Viewers.NewViewer(deps.Ctx)
	if err != nil {
		fmt.Fprintln(deps.Stderr, "Hint: Chrome or Chromium must be installed")
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}
	defer viewer.Close()

	result := deps.Extractor.ExtractDocument(deps.Ctx, viewer, casedoc.DocumentRef{
		CaseNumber:  c.Case,
		ViewerURL:   c.URL,
		DisplayName: c.URL,
	})
	if !result.Success {
		fmt.Fprintf(deps.Stderr, "error: %s: %s\n", result.ErrorKind(), casedoc.ErrorMessage(result.Err))
		return result.Err
	}

	fmt.Fprintf(deps.Stderr, "viewer: %s, %d/%d pages", result.Document.ViewerType, result.PagesExtracted, result.TotalPages)
	if result.Degraded {
		fmt.Fprint(deps.Stderr, " (degraded)")
	}
	fmt.Fprintln(deps.Stderr)

	fmt.Fprintln(deps.Stdout, result.RawText)
	return nil
}
