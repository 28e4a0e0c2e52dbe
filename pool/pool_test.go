package pool_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/casedoc"
	"github.com/fwojciec/casedoc/mock"
	"github.com/fwojciec/casedoc/pool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCase = &casedoc.Case{CaseNumber: "ABC-E-24-01", Company: "Test Utility"}

func docs(n int) []casedoc.DocumentRef {
	refs := make([]casedoc.DocumentRef, n)
	for i := range refs {
		refs[i] = casedoc.DocumentRef{
			CaseNumber:  testCase.CaseNumber,
			ViewerURL:   fmt.Sprintf("https://puc.example.gov/viewer?doc=%d", i+1),
			DisplayName: fmt.Sprintf("Document %d", i+1),
		}
	}
	return refs
}

func newViewer(closed *atomic.Int32) *mock.Viewer {
	return &mock.Viewer{
		CloseFn: func() error {
			closed.Add(1)
			return nil
		},
	}
}

func succeed(_ context.Context, _ casedoc.Viewer, ref casedoc.DocumentRef) *casedoc.ExtractionResult {
	return &casedoc.ExtractionResult{Document: ref, Success: true, PagesExtracted: 1, RawText: "=== Page 1 ===\ntext"}
}

func TestPartition(t *testing.T) {
	t.Parallel()

	t.Run("splits into ceil sized chunks", func(t *testing.T) {
		t.Parallel()

		parts := pool.Partition(docs(7), 3)

		require.Len(t, parts, 3)
		assert.Len(t, parts[0], 3)
		assert.Len(t, parts[1], 3)
		assert.Len(t, parts[2], 1)
		assert.Equal(t, "Document 4", parts[1][0].DisplayName)
	})

	t.Run("never exceeds the worker count", func(t *testing.T) {
		t.Parallel()

		for n := 1; n <= 20; n++ {
			for w := 1; w <= 6; w++ {
				parts := pool.Partition(docs(n), w)
				assert.LessOrEqual(t, len(parts), w)

				total := 0
				for _, p := range parts {
					total += len(p)
				}
				assert.Equal(t, n, total)
			}
		}
	})

	t.Run("fewer documents than workers", func(t *testing.T) {
		t.Parallel()

		parts := pool.Partition(docs(2), 5)

		assert.Len(t, parts, 2)
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()

		assert.Nil(t, pool.Partition(nil, 3))
	})
}

func TestPool_Extract(t *testing.T) {
	t.Parallel()

	t.Run("extracts every document with one viewer per worker", func(t *testing.T) {
		t.Parallel()

		var opened, closed atomic.Int32
		var mu sync.Mutex
		viewerOf := make(map[string]casedoc.Viewer)

		p := &pool.Pool{
			Factory: &mock.ViewerFactory{
				NewViewerFn: func(_ context.Context) (casedoc.Viewer, error) {
					opened.Add(1)
					return newViewer(&closed), nil
				},
			},
			Extractor: &mock.DocumentExtractor{
				ExtractDocumentFn: func(ctx context.Context, v casedoc.Viewer, ref casedoc.DocumentRef) *casedoc.ExtractionResult {
					mu.Lock()
					viewerOf[ref.ViewerURL] = v
					mu.Unlock()
					return succeed(ctx, v, ref)
				},
			},
			Workers: 3,
		}

		input := docs(7)
		results := p.Extract(context.Background(), testCase, input)

		require.Len(t, results, 7)
		for i, r := range results {
			assert.True(t, r.Success)
			assert.Equal(t, input[i], r.Document)
		}
		assert.Equal(t, 1, results[0].WorkerID)
		assert.Equal(t, 2, results[3].WorkerID)
		assert.Equal(t, 3, results[6].WorkerID)
		assert.Equal(t, int32(3), opened.Load())
		assert.Equal(t, int32(3), closed.Load())

		// Documents of one chunk share a viewer; chunks do not.
		assert.Same(t, viewerOf[input[0].ViewerURL], viewerOf[input[2].ViewerURL])
		assert.NotSame(t, viewerOf[input[0].ViewerURL], viewerOf[input[3].ViewerURL])
	})

	t.Run("returns empty results for no documents", func(t *testing.T) {
		t.Parallel()

		p := &pool.Pool{Workers: 2}

		assert.Empty(t, p.Extract(context.Background(), testCase, nil))
	})

	t.Run("per-document failure does not affect siblings", func(t *testing.T) {
		t.Parallel()

		var closed atomic.Int32
		p := &pool.Pool{
			Factory: &mock.ViewerFactory{
				NewViewerFn: func(_ context.Context) (casedoc.Viewer, error) { return newViewer(&closed), nil },
			},
			Extractor: &mock.DocumentExtractor{
				ExtractDocumentFn: func(ctx context.Context, v casedoc.Viewer, ref casedoc.DocumentRef) *casedoc.ExtractionResult {
					if ref.DisplayName == "Document 2" {
						return &casedoc.ExtractionResult{Document: ref, Err: casedoc.Errorf(casedoc.EUNKNOWNVIEWER, "unknown")}
					}
					return succeed(ctx, v, ref)
				},
			},
			Workers: 1,
		}

		results := p.Extract(context.Background(), testCase, docs(3))

		assert.True(t, results[0].Success)
		assert.Equal(t, casedoc.EUNKNOWNVIEWER, results[1].ErrorKind())
		assert.True(t, results[2].Success)
	})

	t.Run("worker without a viewer fails its whole chunk", func(t *testing.T) {
		t.Parallel()

		var calls, closed atomic.Int32
		p := &pool.Pool{
			Factory: &mock.ViewerFactory{
				NewViewerFn: func(_ context.Context) (casedoc.Viewer, error) {
					if calls.Add(1) == 1 {
						return nil, errors.New("browser failed to launch")
					}
					return newViewer(&closed), nil
				},
			},
			Extractor: &mock.DocumentExtractor{ExtractDocumentFn: succeed},
			Workers:   2,
			Stagger:   20 * time.Millisecond,
		}

		results := p.Extract(context.Background(), testCase, docs(4))

		require.Len(t, results, 4)
		assert.Equal(t, casedoc.EINTERNAL, results[0].ErrorKind())
		assert.Equal(t, casedoc.EINTERNAL, results[1].ErrorKind())
		assert.Equal(t, 1, results[1].WorkerID)
		assert.True(t, results[2].Success)
		assert.True(t, results[3].Success)
	})

	t.Run("panicking worker records remaining documents as failed", func(t *testing.T) {
		t.Parallel()

		var closed atomic.Int32
		p := &pool.Pool{
			Factory: &mock.ViewerFactory{
				NewViewerFn: func(_ context.Context) (casedoc.Viewer, error) { return newViewer(&closed), nil },
			},
			Extractor: &mock.DocumentExtractor{
				ExtractDocumentFn: func(ctx context.Context, v casedoc.Viewer, ref casedoc.DocumentRef) *casedoc.ExtractionResult {
					if ref.DisplayName == "Document 2" {
						panic("renderer crashed")
					}
					return succeed(ctx, v, ref)
				},
			},
			Workers: 2,
		}

		results := p.Extract(context.Background(), testCase, docs(6))

		require.Len(t, results, 6)
		assert.True(t, results[0].Success)
		assert.Equal(t, casedoc.EINTERNAL, results[1].ErrorKind())
		assert.Contains(t, casedoc.ErrorMessage(results[1].Err), "renderer crashed")
		assert.Equal(t, casedoc.EINTERNAL, results[2].ErrorKind())
		for _, r := range results[3:] {
			assert.True(t, r.Success)
		}
		assert.Equal(t, int32(2), closed.Load())
	})

	t.Run("waits on the limiter per document host", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		var domains []string
		var closed atomic.Int32
		p := &pool.Pool{
			Factory: &mock.ViewerFactory{
				NewViewerFn: func(_ context.Context) (casedoc.Viewer, error) { return newViewer(&closed), nil },
			},
			Extractor: &mock.DocumentExtractor{ExtractDocumentFn: succeed},
			Limiter: &mock.DomainLimiter{
				WaitFn: func(_ context.Context, domain string) error {
					mu.Lock()
					defer mu.Unlock()
					domains = append(domains, domain)
					return nil
				},
			},
			Workers: 2,
		}

		p.Extract(context.Background(), testCase, docs(3))

		assert.Equal(t, []string{"puc.example.gov", "puc.example.gov", "puc.example.gov"}, domains)
	})

	t.Run("canceled context fails unstarted documents", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		var closed atomic.Int32
		p := &pool.Pool{
			Factory: &mock.ViewerFactory{
				NewViewerFn: func(_ context.Context) (casedoc.Viewer, error) { return newViewer(&closed), nil },
			},
			Extractor: &mock.DocumentExtractor{
				ExtractDocumentFn: func(ctx context.Context, v casedoc.Viewer, ref casedoc.DocumentRef) *casedoc.ExtractionResult {
					cancel()
					return succeed(ctx, v, ref)
				},
			},
			Workers: 1,
		}

		results := p.Extract(ctx, testCase, docs(3))

		assert.True(t, results[0].Success)
		assert.Equal(t, casedoc.EINTERNAL, results[1].ErrorKind())
		assert.Equal(t, casedoc.EINTERNAL, results[2].ErrorKind())
	})

	t.Run("reports to the tracker", func(t *testing.T) {
		t.Parallel()

		tracker := pool.NewTracker(3)
		defer tracker.Close()

		var closed atomic.Int32
		p := &pool.Pool{
			Factory: &mock.ViewerFactory{
				NewViewerFn: func(_ context.Context) (casedoc.Viewer, error) { return newViewer(&closed), nil },
			},
			Extractor: &mock.DocumentExtractor{
				ExtractDocumentFn: func(ctx context.Context, v casedoc.Viewer, ref casedoc.DocumentRef) *casedoc.ExtractionResult {
					if ref.DisplayName == "Document 3" {
						return &casedoc.ExtractionResult{Document: ref, Err: casedoc.Errorf(casedoc.ENOCONTENT, "empty")}
					}
					return succeed(ctx, v, ref)
				},
			},
			Tracker: tracker,
			Workers: 2,
		}

		p.Extract(context.Background(), testCase, docs(3))
		snap := tracker.Snapshot()

		assert.Equal(t, 2, snap.Extracted)
		assert.Equal(t, 1, snap.Failed)
		assert.Equal(t, 3, snap.Total)
		assert.Equal(t, "ABC-E-24-01", snap.CurrentCase)
		assert.Equal(t, 3, snap.CaseDone)
		assert.Equal(t, 0, snap.ActiveWorkers)
		assert.InDelta(t, 100.0, snap.Percent, 0.001)
	})
}
