package goquery_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/fwojciec/casedoc"
	"github.com/fwojciec/casedoc/goquery"
	"github.com/stretchr/testify/assert"
)

// Ensure Detector implements casedoc.ViewerDetector at compile time.
var _ casedoc.ViewerDetector = (*goquery.Detector)(nil)

func markedContentViewer(fragments int) string {
	var sb strings.Builder
	sb.WriteString(`<html><body><div id="viewer"><div class="page" data-page-number="1">`)
	for i := 0; i < fragments; i++ {
		fmt.Fprintf(&sb, `<span class="markedContent"><span>word %d</span></span>`, i)
	}
	sb.WriteString(`</div></div></body></html>`)
	return sb.String()
}

func TestDetector_Detect(t *testing.T) {
	t.Parallel()

	t.Run("detects image text layer from page images with text layers", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><div id="viewer">
<div class="page" data-page-number="1"><img src="p1.png"><div class="textLayer"><span>Page one</span></div></div>
<div class="page" data-page-number="2"><img src="p2.png"><div class="textLayer"><span>Page two</span></div></div>
<div class="page" data-page-number="3"></div>
</div></body></html>`

		d := goquery.NewDetector()

		assert.Equal(t, casedoc.ViewerImageTextLayer, d.Detect(html))
	})

	t.Run("image text layer wins over marked content", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><div id="viewer">
<div class="page" data-page-number="1"><img src="p1.png"><div class="textLayer">` +
			strings.Repeat(`<span class="markedContent"><span>x</span></span>`, 30) +
			`</div></div></div></body></html>`

		d := goquery.NewDetector()

		assert.Equal(t, casedoc.ViewerImageTextLayer, d.Detect(html))
	})

	t.Run("sparse page images are not an image text layer", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<div class="page" data-page-number="1"><img src="p1.png"><div class="textLayer"><span>one</span></div></div>
<div class="page" data-page-number="2"></div>
<div class="page" data-page-number="3"></div>
</body></html>`

		d := goquery.NewDetector()

		assert.Equal(t, casedoc.ViewerTextLayer, d.Detect(html))
	})

	t.Run("detects marked content from viewer root with many fragments", func(t *testing.T) {
		t.Parallel()

		d := goquery.NewDetector()

		assert.Equal(t, casedoc.ViewerMarkedContent, d.Detect(markedContentViewer(goquery.MinMarkedContentFragments)))
	})

	t.Run("few marked content fragments are not a marked content viewer", func(t *testing.T) {
		t.Parallel()

		d := goquery.NewDetector()

		assert.Equal(t, casedoc.ViewerUnknown, d.Detect(markedContentViewer(3)))
	})

	t.Run("detects text layer without marked content", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><div class="textLayer"><span>Some text</span></div></body></html>`

		d := goquery.NewDetector()

		assert.Equal(t, casedoc.ViewerTextLayer, d.Detect(html))
	})

	t.Run("detects lazy frame from embedded viewer iframe", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><iframe id="documentFrame" src="/doc/viewer?id=7"></iframe></body></html>`

		d := goquery.NewDetector()

		assert.Equal(t, casedoc.ViewerLazyFrame, d.Detect(html))
	})

	t.Run("returns unknown for unrecognized page", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><h1>Document unavailable</h1><p>Try again later.</p></body></html>`

		d := goquery.NewDetector()

		assert.Equal(t, casedoc.ViewerUnknown, d.Detect(html))
	})

	t.Run("returns unknown for empty input", func(t *testing.T) {
		t.Parallel()

		d := goquery.NewDetector()

		assert.Equal(t, casedoc.ViewerUnknown, d.Detect(""))
	})
}

func TestHasPlainTextToggle(t *testing.T) {
	t.Parallel()

	t.Run("finds toggle by id", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><button id="plainTextToggle">Plain text</button></body></html>`

		assert.True(t, goquery.HasPlainTextToggle(html))
	})

	t.Run("finds toggle by data action", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><a href="#" data-action="plain-text">View as text</a></body></html>`

		assert.True(t, goquery.HasPlainTextToggle(html))
	})

	t.Run("no toggle", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><div class="textLayer">text</div></body></html>`

		assert.False(t, goquery.HasPlainTextToggle(html))
	})
}
