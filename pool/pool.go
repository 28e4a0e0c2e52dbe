// Package pool runs document extraction across a bounded set of workers,
// each owning an independent browser session.
package pool

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"time"

	"github.com/fwojciec/casedoc"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the worker count used when none is configured.
const DefaultWorkers = 3

// DefaultStagger is the start delay between consecutive workers.
const DefaultStagger = 2 * time.Second

// Pool extracts the documents of a case concurrently.
//
// Documents are partitioned into contiguous chunks of ceil(len/Workers), one
// per worker. Workers start Stagger apart, open their own viewer and process
// their chunk serially. A worker that cannot open a viewer, or that panics,
// records its remaining documents as failed.
type Pool struct {
	Factory   casedoc.ViewerFactory
	Extractor casedoc.DocumentExtractor
	Limiter   casedoc.DomainLimiter // optional
	Tracker   *Tracker              // optional
	Workers   int
	Stagger   time.Duration
	Logger    *slog.Logger
}

// Partition splits docs into contiguous chunks of ceil(len/workers) documents.
// It returns at most workers chunks.
func Partition(docs []casedoc.DocumentRef, workers int) [][]casedoc.DocumentRef {
	if len(docs) == 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	size := (len(docs) + workers - 1) / workers

	var parts [][]casedoc.DocumentRef
	for start := 0; start < len(docs); start += size {
		end := min(start+size, len(docs))
		parts = append(parts, docs[start:end])
	}
	return parts
}

// Extract extracts every document of c and returns one result per document,
// in input order. It never fails: every document gets a result.
func (p *Pool) Extract(ctx context.Context, c *casedoc.Case, docs []casedoc.DocumentRef) []*casedoc.ExtractionResult {
	results := make([]*casedoc.ExtractionResult, len(docs))
	if len(docs) == 0 {
		return results
	}

	workers := p.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if p.Tracker != nil {
		p.Tracker.StartCase(c.CaseNumber, len(docs))
	}

	var g errgroup.Group
	offset := 0
	for i, part := range Partition(docs, workers) {
		w := worker{
			id:      i + 1,
			pool:    p,
			docs:    part,
			results: results[offset : offset+len(part)],
			logger:  p.logger().With("case", c.CaseNumber, "worker", i+1),
		}
		offset += len(part)
		delay := time.Duration(i) * p.Stagger
		g.Go(func() error {
			w.run(ctx, delay)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (p *Pool) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return p.Logger
}

// worker processes one chunk. It writes only its own slice of results.
type worker struct {
	id      int
	pool    *Pool
	docs    []casedoc.DocumentRef
	results []*casedoc.ExtractionResult
	logger  *slog.Logger
	next    int
}

func (w *worker) run(ctx context.Context, delay time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("worker panicked", "recovered", r, "remaining", len(w.docs)-w.next)
			w.failRemaining(casedoc.Errorf(casedoc.EINTERNAL, "worker panic: %v", r))
		}
	}()

	if err := sleep(ctx, delay); err != nil {
		w.failRemaining(contextError(err))
		return
	}

	t := w.pool.Tracker
	if t != nil {
		t.WorkerStarted()
		defer t.WorkerStopped()
	}

	v, err := w.pool.Factory.NewViewer(ctx)
	if err != nil {
		w.logger.Error("open viewer", "error", err)
		w.failRemaining(casedoc.Errorf(casedoc.EINTERNAL, "open viewer: %v", err))
		return
	}
	defer func() {
		if err := v.Close(); err != nil {
			w.logger.Warn("close viewer", "error", err)
		}
	}()

	for w.next < len(w.docs) {
		ref := w.docs[w.next]

		if err := ctx.Err(); err != nil {
			w.failRemaining(contextError(err))
			return
		}
		if l := w.pool.Limiter; l != nil {
			if err := l.Wait(ctx, host(ref.ViewerURL)); err != nil {
				w.failRemaining(contextError(err))
				return
			}
		}

		r := w.pool.Extractor.ExtractDocument(ctx, v, ref)
		r.WorkerID = w.id
		w.finish(r)
	}
}

func (w *worker) finish(r *casedoc.ExtractionResult) {
	w.results[w.next] = r
	w.next++
	if w.pool.Tracker != nil {
		w.pool.Tracker.Record(r)
	}
}

// failRemaining records every unprocessed document of the chunk as failed.
func (w *worker) failRemaining(err error) {
	for w.next < len(w.docs) {
		w.finish(&casedoc.ExtractionResult{
			Document: w.docs[w.next],
			Err:      err,
			WorkerID: w.id,
		})
	}
}

func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return casedoc.Errorf(casedoc.ETIMEOUT, "run deadline exceeded")
	}
	return casedoc.Errorf(casedoc.EINTERNAL, "extraction aborted: %v", err)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func host(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Host
}
