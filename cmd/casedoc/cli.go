package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/casedoc"
)

// Crawler executes discovery, extraction and indexing runs.
type Crawler interface {
	Crawl(ctx context.Context, req casedoc.RunRequest, progress casedoc.ProgressFunc) (*casedoc.Run, error)
}

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Runs     casedoc.RunService
	Chunks   casedoc.ChunkService
	Failures casedoc.FailureService
	Search   casedoc.SearchService

	// Command-specific, wired only for the commands that need them.
	Crawler   Crawler
	Asker     casedoc.Asker
	Viewers   casedoc.ViewerFactory
	Extractor casedoc.DocumentExtractor
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Log debug output to stderr"`

	Run      RunCmd      `cmd:"" help:"Discover, extract and index the documents of matching cases"`
	Search   SearchCmd   `cmd:"" help:"Rank a run's passages against a query"`
	Ask      AskCmd      `cmd:"" help:"Ask a question answered from a run's passages"`
	Runs     RunsCmd     `cmd:"" help:"List recorded runs"`
	Failures FailuresCmd `cmd:"" help:"List the documents that failed in a run"`
	Extract  ExtractCmd  `cmd:"" help:"Extract a single document viewer and print its text"`
}

// RunCmd is the "run" subcommand.
type RunCmd struct {
	Query         string        `arg:"" help:"Text matched against case descriptions"`
	Utility       []string      `short:"u" name:"utility" help:"Utility type to scan: electric or natural_gas (repeatable, default both)"`
	From          time.Time     `format:"2006-01-02" help:"Earliest filing date (YYYY-MM-DD)"`
	To            time.Time     `format:"2006-01-02" help:"Latest filing date (YYYY-MM-DD)"`
	Workers       int           `short:"w" default:"3" help:"Concurrent browser sessions per case"`
	MissThreshold int           `default:"5" help:"Stop a listing after this many consecutive out-of-range matches (0 disables)"`
	Fetcher       string        `default:"auto" enum:"auto,http,browser" help:"How listing pages are loaded: auto, http or browser"`
	Timeout       time.Duration `default:"30s" help:"Per-operation browser timeout"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	RunID string   `arg:"" help:"Run ID"`
	Query string   `arg:"" help:"Search query"`
	Limit int      `short:"n" default:"10" help:"Maximum passages to show"`
	Term  []string `short:"t" name:"term" help:"Explicit search term replacing the query terms (repeatable)"`
}

// AskCmd is the "ask" subcommand.
type AskCmd struct {
	RunID    string `arg:"" help:"Run ID"`
	Question string `arg:"" help:"Question to answer from the run's documents"`
}

// RunsCmd is the "runs" subcommand.
type RunsCmd struct {
	Limit int `short:"n" default:"20" help:"Maximum runs to show"`
}

// FailuresCmd is the "failures" subcommand.
type FailuresCmd struct {
	RunID string `arg:"" help:"Run ID"`
}

// ExtractCmd is the "extract" subcommand.
type ExtractCmd struct {
	URL     string        `arg:"" help:"Document viewer URL"`
	Case    string        `help:"Case number recorded with the document"`
	Timeout time.Duration `default:"30s" help:"Per-operation browser timeout"`
}
