package crawl_test

import (
	"testing"

	"github.com/fwojciec/casedoc"
	"github.com/fwojciec/casedoc/crawl"
	"github.com/stretchr/testify/assert"
)

func TestTruncateURL(t *testing.T) {
	t.Parallel()

	t.Run("returns URL unchanged when shorter than max", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "https://x.com", crawl.TruncateURL("https://x.com", 50))
	})

	t.Run("truncates with ellipsis when longer than max", func(t *testing.T) {
		t.Parallel()
		url := "https://puc.example.gov/viewer?doc=17"
		result := crawl.TruncateURL(url, 20)
		assert.Equal(t, "...gov/viewer?doc=17", result)
		assert.Len(t, result, 20)
	})

	t.Run("returns empty string when maxLen is not positive", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, crawl.TruncateURL("https://example.com", 0))
		assert.Empty(t, crawl.TruncateURL("https://example.com", -1))
	})

	t.Run("returns prefix of URL when maxLen is very small", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "htt", crawl.TruncateURL("https://example.com", 3))
		assert.Equal(t, "a", crawl.TruncateURL("a", 2))
	})
}

func TestFormatTokens(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "~500 tokens", crawl.FormatTokens(500))
	assert.Equal(t, "~10k tokens", crawl.FormatTokens(10000))
	assert.Equal(t, "~2k tokens", crawl.FormatTokens(1500))
}

func TestComputeHash(t *testing.T) {
	t.Parallel()

	assert.Equal(t, crawl.ComputeHash("page text"), crawl.ComputeHash("page text"))
	assert.NotEqual(t, crawl.ComputeHash("content a"), crawl.ComputeHash("content b"))
	assert.Regexp(t, `^[0-9a-f]+$`, crawl.ComputeHash("test"))
}

func TestFormatProgress(t *testing.T) {
	t.Parallel()

	t.Run("before throughput is known", func(t *testing.T) {
		t.Parallel()

		got := crawl.FormatProgress(casedoc.Progress{Total: 10, ActiveWorkers: 3})

		assert.Equal(t, "[0%] 0/10 docs | 3 workers", got)
	})

	t.Run("with failures, ETA and current case", func(t *testing.T) {
		t.Parallel()

		got := crawl.FormatProgress(casedoc.Progress{
			Percent:       40,
			Extracted:     3,
			Failed:        1,
			Total:         10,
			DocsPerMinute: 2,
			ETASeconds:    180,
			ActiveWorkers: 2,
			CurrentCase:   "ABC-E-24-01",
			CaseDone:      4,
			CaseTotal:     9,
		})

		assert.Equal(t, "[40%] 4/10 docs (1 failed) | 2.0 docs/min | ETA 3m0s | 2 workers | ABC-E-24-01 4/9", got)
	})
}

func TestFormatSummary(t *testing.T) {
	t.Parallel()

	got := crawl.FormatSummary(&casedoc.RunSummary{
		CasesFound:         1,
		DocumentsFound:     3,
		DocumentsExtracted: 2,
		DocumentsDegraded:  1,
		DocumentsFailed:    1,
		ChunksIndexed:      12,
		Tokens:             1500,
		ElapsedSeconds:     42,
	})

	assert.Equal(t, "1 cases, 2/3 documents extracted (1 degraded, 1 failed, 0 skipped), 12 chunks, ~2k tokens in 42s", got)
}
