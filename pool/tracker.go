package pool

import (
	"context"
	"sync"
	"time"

	"github.com/fwojciec/casedoc"
)

type eventKind int

const (
	eventStartCase eventKind = iota
	eventWorkerStarted
	eventWorkerStopped
	eventResult
)

type event struct {
	kind       eventKind
	caseNumber string
	n          int
	success    bool
}

// Tracker aggregates progress reported concurrently by workers. All counters
// are owned by a single goroutine and reached only through channels.
type Tracker struct {
	events    chan event
	snapshots chan chan casedoc.Progress
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
	now       func() time.Time

	// Written by the owner goroutine before stopped is closed.
	final casedoc.Progress
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithClock sets the time source used for elapsed time and throughput.
func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) {
		t.now = now
	}
}

// NewTracker starts a tracker expecting total documents. Close must be
// called to release its goroutine.
func NewTracker(total int, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		events:    make(chan event),
		snapshots: make(chan chan casedoc.Progress),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	go t.run(total)
	return t
}

// StartCase marks caseNumber as the case being extracted with docs documents.
func (t *Tracker) StartCase(caseNumber string, docs int) {
	t.send(event{kind: eventStartCase, caseNumber: caseNumber, n: docs})
}

// WorkerStarted counts one more active worker.
func (t *Tracker) WorkerStarted() { t.send(event{kind: eventWorkerStarted}) }

// WorkerStopped counts one fewer active worker.
func (t *Tracker) WorkerStopped() { t.send(event{kind: eventWorkerStopped}) }

// Record counts one finished document.
func (t *Tracker) Record(r *casedoc.ExtractionResult) {
	t.send(event{kind: eventResult, success: r.Success})
}

// Snapshot returns the current progress. After Close it returns the final
// progress.
func (t *Tracker) Snapshot() casedoc.Progress {
	reply := make(chan casedoc.Progress, 1)
	select {
	case t.snapshots <- reply:
		return <-reply
	case <-t.stopped:
		return t.final
	}
}

// Report calls fn with a snapshot every interval until ctx is done or the
// tracker is closed.
func (t *Tracker) Report(ctx context.Context, interval time.Duration, fn casedoc.ProgressFunc) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.stopped:
			return
		case <-ticker.C:
			fn(t.Snapshot())
		}
	}
}

// Close stops the tracker. Events sent after Close are dropped.
func (t *Tracker) Close() {
	t.closeOnce.Do(func() { close(t.done) })
	<-t.stopped
}

func (t *Tracker) send(e event) {
	select {
	case t.events <- e:
	case <-t.done:
	}
}

// counters is the state owned by the tracker goroutine.
type counters struct {
	start       time.Time
	total       int
	extracted   int
	failed      int
	active      int
	currentCase string
	caseDone    int
	caseTotal   int
}

func (t *Tracker) run(total int) {
	c := counters{start: t.now(), total: total}
	for {
		select {
		case e := <-t.events:
			c.apply(e)
		case reply := <-t.snapshots:
			reply <- c.progress(t.now())
		case <-t.done:
			t.final = c.progress(t.now())
			close(t.stopped)
			return
		}
	}
}

func (c *counters) apply(e event) {
	switch e.kind {
	case eventStartCase:
		c.currentCase = e.caseNumber
		c.caseDone = 0
		c.caseTotal = e.n
	case eventWorkerStarted:
		c.active++
	case eventWorkerStopped:
		if c.active > 0 {
			c.active--
		}
	case eventResult:
		if e.success {
			c.extracted++
		} else {
			c.failed++
		}
		c.caseDone++
	}
}

func (c *counters) progress(now time.Time) casedoc.Progress {
	elapsed := now.Sub(c.start)
	processed := c.extracted + c.failed

	p := casedoc.Progress{
		Extracted:     c.extracted,
		Failed:        c.failed,
		Total:         c.total,
		ActiveWorkers: c.active,
		CurrentCase:   c.currentCase,
		CaseDone:      c.caseDone,
		CaseTotal:     c.caseTotal,
		Elapsed:       elapsed,
	}
	if c.total > 0 {
		p.Percent = float64(processed) / float64(c.total) * 100
	}
	if minutes := elapsed.Minutes(); minutes > 0 && processed > 0 {
		p.DocsPerMinute = float64(processed) / minutes
		if remaining := c.total - processed; remaining > 0 {
			p.ETASeconds = float64(remaining) / p.DocsPerMinute * 60
		}
	}
	return p
}
