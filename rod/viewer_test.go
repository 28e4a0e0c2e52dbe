//go:build integration

package rod_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fwojciec/casedoc"
	"github.com/fwojciec/casedoc/extract"
	"github.com/fwojciec/casedoc/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const viewerPage = `<!DOCTYPE html>
<html>
<head><title>Viewer</title></head>
<body style="height: 5000px">
<input id="pageNumber" type="number" value="1">
<div id="status">idle</div>
<button id="next" onclick="document.getElementById('status').textContent = 'clicked'">Next</button>
<div id="viewer">
  <div class="page" data-page-number="1"><div class="textLayer">Direct Testimony of Jane Doe on behalf of Test Utility.</div></div>
  <div class="page" data-page-number="2"><div class="textLayer">The requested return on equity is 10.5 percent.</div></div>
</div>
<iframe id="documentFrame" srcdoc="<p id='inner'>Embedded exhibit text</p>"></iframe>
<script>
document.getElementById('pageNumber').addEventListener('keydown', function (e) {
  if (e.key === 'Enter') { document.getElementById('status').textContent = 'page ' + this.value; }
});
</script>
</body>
</html>`

func newViewerServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(viewerPage))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestViewer(t *testing.T, timeout time.Duration) casedoc.Viewer {
	t.Helper()
	v, err := rod.NewViewerFactory(timeout).NewViewer(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = v.Close() })
	return v
}

func TestViewer_Operations(t *testing.T) {
	t.Parallel()

	srv := newViewerServer(t)
	v := newTestViewer(t, 10*time.Second)
	ctx := context.Background()

	require.NoError(t, v.Navigate(ctx, srv.URL))

	t.Run("reads the top document", func(t *testing.T) {
		html, err := v.HTML(ctx)
		require.NoError(t, err)
		assert.Contains(t, html, "return on equity")
	})

	t.Run("reads an iframe document", func(t *testing.T) {
		html, err := v.FrameHTML(ctx, "#documentFrame")
		require.NoError(t, err)
		assert.Contains(t, html, "Embedded exhibit text")
	})

	t.Run("clicks controls", func(t *testing.T) {
		require.NoError(t, v.Click(ctx, "", "#next"))
		html, err := v.HTML(ctx)
		require.NoError(t, err)
		assert.Contains(t, html, `<div id="status">clicked</div>`)
	})

	t.Run("jumps to a page through the page input", func(t *testing.T) {
		require.NoError(t, v.JumpToPage(ctx, "#pageNumber", 2))
		html, err := v.HTML(ctx)
		require.NoError(t, err)
		assert.Contains(t, html, `<div id="status">page 2</div>`)
	})

	t.Run("scrolls", func(t *testing.T) {
		require.NoError(t, v.Scroll(ctx, "", 1))
		require.NoError(t, v.Scroll(ctx, "", 0))
	})
}

func TestViewer_WaitFor_TimesOut(t *testing.T) {
	t.Parallel()

	srv := newViewerServer(t)
	v := newTestViewer(t, 200*time.Millisecond)
	ctx := context.Background()
	require.NoError(t, v.Navigate(ctx, srv.URL))

	err := v.WaitFor(ctx, "#never-rendered")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestViewer_Close_Idempotent(t *testing.T) {
	t.Parallel()

	v, err := rod.NewViewerFactory(0).NewViewer(context.Background())
	require.NoError(t, err)

	require.NoError(t, v.Close())
	require.NoError(t, v.Close())
}

func TestViewer_ExtractsTextLayerDocument(t *testing.T) {
	t.Parallel()

	srv := newViewerServer(t)
	v := newTestViewer(t, 10*time.Second)
	processor := extract.NewProcessor(extract.DefaultThresholds(), nil)

	result := processor.ExtractDocument(context.Background(), v, casedoc.DocumentRef{
		CaseNumber:  "ABC-E-24-01",
		ViewerURL:   srv.URL,
		DisplayName: "Direct Testimony",
	})

	require.True(t, result.Success, "extraction failed: %v", result.Err)
	assert.Equal(t, casedoc.ViewerTextLayer, result.Document.ViewerType)
	assert.Contains(t, result.RawText, "10.5 percent")
}
