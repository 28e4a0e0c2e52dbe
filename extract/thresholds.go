// Package extract recovers page-numbered text from document viewers.
// It provides one page extraction strategy per viewer family and a Processor
// that navigates, classifies and dispatches a document to its strategy.
package extract

import (
	"context"
	"time"
)

// Thresholds centralizes the tuning constants of the extraction strategies.
// The defaults were tuned against real viewer latency; a re-tune should
// change DefaultThresholds, not the strategies.
type Thresholds struct {
	// SmallDocumentPages is the largest page count extracted page by page.
	// Jumping to every page is reliable but slow; above this size the
	// strategies switch to sectioned stepping or bulk loading.
	SmallDocumentPages int

	// MaxSections bounds how many sections a large text-layer document is
	// split into. Each section starts with a page jump, which resynchronizes
	// the viewer if stepping drifted.
	MaxSections int

	// ProgressEvery is the page interval between progress log lines.
	ProgressEvery int

	// MinPageChars is the shortest page text kept. Shorter pages are blank
	// pages or running headers.
	MinPageChars int

	// MinSuccessRatio is the fraction of expected pages below which an
	// extraction is degraded (and marked-content viewers get a lazy-load pass).
	MinSuccessRatio float64

	// PagesPerScrollPass and MaxScrollPasses size the bulk pass of lazy-loading
	// frames: one scroll pass per PagesPerScrollPass pages, capped.
	PagesPerScrollPass int
	MaxScrollPasses    int

	// MaxConsecutiveErrors stops page stepping after this many viewer
	// operations fail in a row. Pages recovered so far are kept.
	MaxConsecutiveErrors int

	// Settle delays after viewer interactions.
	ToggleWait       time.Duration
	PageJumpWait     time.Duration
	PageStepWait     time.Duration
	LazyLoadWait     time.Duration
	ScrollSettleWait time.Duration
}

// DefaultThresholds returns the tuned production thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SmallDocumentPages:   50,
		MaxSections:          10,
		ProgressEvery:        25,
		MinPageChars:         10,
		MinSuccessRatio:      0.8,
		PagesPerScrollPass:   25,
		MaxScrollPasses:      20,
		MaxConsecutiveErrors: 3,
		ToggleWait:           time.Second,
		PageJumpWait:         800 * time.Millisecond,
		PageStepWait:         300 * time.Millisecond,
		LazyLoadWait:         2 * time.Second,
		ScrollSettleWait:     1500 * time.Millisecond,
	}
}

// wait blocks for d or until ctx is done. A zero duration returns at once.
func wait(ctx context.Context, d time.Duration) error {
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
