package casedoc_test

import (
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/casedoc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPages_SplitPages(t *testing.T) {
	t.Parallel()

	t.Run("round-trips page text", func(t *testing.T) {
		t.Parallel()

		pages := []casedoc.PageText{
			{Number: 1, Text: "First page."},
			{Number: 2, Text: "Second page.\n\nWith a paragraph."},
			{Number: 7, Text: "Seventh page."},
		}

		raw := casedoc.FormatPages(pages)

		assert.Equal(t, pages, casedoc.SplitPages(raw))
	})

	t.Run("returns nil without markers", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, casedoc.SplitPages("plain text without page markers"))
	})

	t.Run("omits empty pages", func(t *testing.T) {
		t.Parallel()

		raw := "=== Page 1 ===\n\n\n=== Page 2 ===\nContent"

		pages := casedoc.SplitPages(raw)

		require.Len(t, pages, 1)
		assert.Equal(t, 2, pages[0].Number)
	})
}

func TestNewFailureRecord(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	result := &casedoc.ExtractionResult{
		Document: casedoc.DocumentRef{
			CaseNumber:  "ABC-E-24-01",
			ViewerURL:   "https://example.com/view/1",
			DisplayName: "Direct Testimony",
		},
		Err:      casedoc.Errorf(casedoc.EUNKNOWNVIEWER, "no known viewer signature"),
		WorkerID: 2,
	}

	rec := casedoc.NewFailureRecord("run-1", result, now)

	assert.Equal(t, "run-1", rec.RunID)
	assert.Equal(t, "ABC-E-24-01", rec.CaseNumber)
	assert.Equal(t, "Direct Testimony", rec.DocumentName)
	assert.Equal(t, "https://example.com/view/1", rec.DocumentURL)
	assert.Equal(t, casedoc.EUNKNOWNVIEWER, rec.ErrorKind)
	assert.Equal(t, 2, rec.WorkerID)
	assert.Equal(t, now, rec.Timestamp)
}

func TestExtractionResult_ErrorKind(t *testing.T) {
	t.Parallel()

	ok := &casedoc.ExtractionResult{Success: true}
	assert.Empty(t, ok.ErrorKind())

	failed := &casedoc.ExtractionResult{Err: errors.New("browser crashed")}
	assert.Equal(t, casedoc.EINTERNAL, failed.ErrorKind())
}
