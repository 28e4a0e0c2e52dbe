// Package crawl orchestrates a run: it discovers cases, extracts their
// documents through the worker pool, and records failures, artifacts and
// indexed chunks.
package crawl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/casedoc"
	"github.com/fwojciec/casedoc/pool"
)

// DefaultReportInterval is how often progress snapshots are pushed.
const DefaultReportInterval = 2 * time.Second

// Crawler runs discovery, extraction and indexing for one request.
type Crawler struct {
	Scanner   casedoc.CaseScanner
	Documents casedoc.DocumentSource
	Pool      *pool.Pool
	Indexer   casedoc.ChunkIndexer
	Runs      casedoc.RunService
	Chunks    casedoc.ChunkService
	Failures  casedoc.FailureService

	// Optional.
	Artifacts    casedoc.ArtifactStore
	TokenCounter casedoc.TokenCounter

	ReportInterval time.Duration
	Logger         *slog.Logger
	Now            func() time.Time
}

// caseWork is a discovered case and its documents.
type caseWork struct {
	c    *casedoc.Case
	docs []casedoc.DocumentRef
}

// Crawl executes a run and returns it with its summary. Per-document,
// per-case and per-view failures are counted and logged, never returned; a
// run that finds nothing is an empty, successful run. Errors are returned
// only for invalid requests, storage failures on the run record, and
// cancellation during discovery.
//
// The progress callback, if provided, receives snapshots every
// ReportInterval while documents are extracted, and a final snapshot.
func (c *Crawler) Crawl(ctx context.Context, req casedoc.RunRequest, progress casedoc.ProgressFunc) (*casedoc.Run, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	start := c.now()

	run := &casedoc.Run{Request: req, CreatedAt: start}
	if err := c.Runs.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	log := c.logger().With("run", run.ID)

	cases, err := c.Scanner.Scan(ctx, req.ScanRequest())
	if err != nil {
		return nil, fmt.Errorf("scan listings: %w", err)
	}
	log.Info("cases discovered", "count", len(cases))

	summary := &casedoc.RunSummary{CasesFound: len(cases)}

	// Enumerate every case first so progress has a real total.
	var work []caseWork
	for _, cs := range cases {
		docs, err := c.Documents.FindDocuments(ctx, cs)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("find documents: %w", ctx.Err())
			}
			log.Warn("document index failed", "case", cs.CaseNumber, "error", err)
			continue
		}
		summary.DocumentsFound += len(docs)
		work = append(work, caseWork{c: cs, docs: docs})
	}

	tracker := pool.NewTracker(summary.DocumentsFound, pool.WithClock(c.now))
	defer tracker.Close()
	stopReporting := c.startReporting(ctx, tracker, progress)

	p := *c.Pool
	p.Tracker = tracker
	if req.Workers > 0 {
		p.Workers = req.Workers
	}

	for _, w := range work {
		if ctx.Err() != nil {
			break
		}
		for _, r := range p.Extract(ctx, w.c, w.docs) {
			c.handleResult(ctx, run.ID, w.c, r, summary)
		}
	}

	stopReporting()
	if progress != nil {
		progress(tracker.Snapshot())
	}

	summary.ElapsedSeconds = c.now().Sub(start).Seconds()
	if err := c.Runs.CompleteRun(ctx, run.ID, summary); err != nil {
		return nil, fmt.Errorf("complete run: %w", err)
	}
	completed := c.now()
	run.Summary = summary
	run.CompletedAt = &completed

	log.Info("run complete",
		"cases", summary.CasesFound,
		"extracted", summary.DocumentsExtracted,
		"failed", summary.DocumentsFailed,
		"chunks", summary.ChunksIndexed)
	return run, nil
}

// startReporting pushes tracker snapshots to progress until the returned
// function is called. The function waits for the reporter to exit so no
// snapshot is delivered after it returns.
func (c *Crawler) startReporting(ctx context.Context, tracker *pool.Tracker, progress casedoc.ProgressFunc) func() {
	if progress == nil {
		return func() {}
	}
	interval := c.ReportInterval
	if interval <= 0 {
		interval = DefaultReportInterval
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		tracker.Report(ctx, interval, progress)
	}()
	return func() {
		cancel()
		<-done
	}
}

// handleResult records one extraction result into the run.
func (c *Crawler) handleResult(ctx context.Context, runID string, cs *casedoc.Case, r *casedoc.ExtractionResult, summary *casedoc.RunSummary) {
	log := c.logger().With("run", runID, "case", cs.CaseNumber, "document", r.Document.DisplayName)

	if !r.Success {
		summary.DocumentsFailed++
		log.Warn("extraction failed", "kind", r.ErrorKind(), "error", casedoc.ErrorMessage(r.Err), "worker", r.WorkerID)
		if err := c.Failures.CreateFailure(ctx, casedoc.NewFailureRecord(runID, r, c.now())); err != nil {
			log.Error("record failure", "error", err)
		}
		return
	}

	summary.DocumentsExtracted++
	if r.Degraded {
		summary.DocumentsDegraded++
	}

	c.saveArtifact(ctx, log, r)

	chunks, err := c.Indexer.Index(r, cs.Company)
	if err != nil {
		summary.DocumentsSkipped++
		log.Warn("document not indexed", "error", err)
		return
	}
	for _, ch := range chunks {
		ch.RunID = runID
	}
	if err := c.Chunks.CreateChunks(ctx, chunks); err != nil {
		summary.DocumentsSkipped++
		log.Error("store chunks", "error", err)
		return
	}
	summary.ChunksIndexed += len(chunks)

	if c.TokenCounter != nil {
		if tokens, err := c.TokenCounter.CountTokens(ctx, r.RawText); err == nil {
			summary.Tokens += tokens
		} else {
			log.Debug("count tokens", "error", err)
		}
	}
}

func (c *Crawler) saveArtifact(ctx context.Context, log *slog.Logger, r *casedoc.ExtractionResult) {
	if c.Artifacts == nil {
		return
	}
	err := c.Artifacts.Save(ctx, &casedoc.Artifact{
		CaseNumber:   r.Document.CaseNumber,
		DocumentName: r.Document.DisplayName,
		SourceURL:    r.Document.ViewerURL,
		Text:         r.RawText,
	})
	switch {
	case err == nil:
	case casedoc.ErrorCode(err) == casedoc.ECONFLICT:
		log.Debug("artifact already stored")
	default:
		log.Warn("save artifact", "error", err)
	}
}

func (c *Crawler) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func (c *Crawler) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c.Logger
}
