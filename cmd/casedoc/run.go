package main

import (
	"fmt"

	"github.com/fwojciec/casedoc"
	"github.com/fwojciec/casedoc/crawl"
)

// Run executes the run command.
func (c *RunCmd) Run(deps *Dependencies) error {
	utilities, err := parseUtilities(c.Utility)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", casedoc.ErrorMessage(err))
		return err
	}

	req := casedoc.RunRequest{
		Query:     c.Query,
		Utilities: utilities,
		Range:     casedoc.DateRange{Start: c.From, End: c.To},
		Workers:   c.Workers,
	}

	progress := func(p casedoc.Progress) {
		fmt.Fprintf(deps.Stderr, "  %s\n", crawl.FormatProgress(p))
	}

	run, err := deps.Crawler.Crawl(deps.Ctx, req, progress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", casedoc.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Run %s\n", run.ID)
	if run.Summary != nil {
		fmt.Fprintf(deps.Stdout, "  %s\n", crawl.FormatSummary(run.Summary))
		if run.Summary.DocumentsFailed > 0 {
			fmt.Fprintf(deps.Stdout, "  See failures with 'casedoc failures %s'\n", run.ID)
		}
	}
	return nil
}

// parseUtilities maps utility flag values onto utility types. An empty list
// selects every utility.
func parseUtilities(values []string) ([]casedoc.UtilityType, error) {
	var utilities []casedoc.UtilityType
	for _, v := range values {
		switch casedoc.UtilityType(v) {
		case casedoc.UtilityElectric, casedoc.UtilityNaturalGas:
			utilities = append(utilities, casedoc.UtilityType(v))
		case "gas":
			utilities = append(utilities, casedoc.UtilityNaturalGas)
		default:
			return nil, casedoc.Errorf(casedoc.EINVALID, "unknown utility %q: use electric or natural_gas", v)
		}
	}
	return utilities, nil
}
