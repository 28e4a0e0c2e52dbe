// Package goquery inspects rendered HTML with goquery: it classifies document
// viewers, scrapes page text out of viewer text layers, and parses case
// listing and case detail pages.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/casedoc"
)

// Viewer structure selectors. The extract package drives the browser with
// the same selectors the detector and scrapers read.
const (
	PageSelector            = ".page[data-page-number]"
	TextLayerSelector       = ".textLayer"
	MarkedContentSelector   = ".markedContent"
	ViewerRootSelector      = "#viewer, .pdfViewer"
	ViewerFrameSelector     = "iframe#documentFrame, iframe.document-viewer, iframe[src*='viewer']"
	PlainTextToggleSelector = "#plainTextToggle, a.plain-text, [data-action='plain-text']"
	PageNumberInputSelector = "#pageNumber"
	NextPageSelector        = "#next, button.next-page, [data-action='next-page']"
	PageCountSelector       = "[data-total-pages], #numPages, .page-count"

	// ViewerReadySelector matches any structure a known viewer renders.
	ViewerReadySelector = ".page, .textLayer, .markedContent, iframe"
)

// MinMarkedContentFragments is how many marked-content fragments a viewer
// root must hold before it is treated as a marked-content renderer. A handful
// of fragments also appears in text-layer viewers that tag headings.
const MinMarkedContentFragments = 20

// Ensure Detector implements casedoc.ViewerDetector at compile time.
var _ casedoc.ViewerDetector = (*Detector)(nil)

// Detector classifies document viewers from their rendered HTML.
// Signatures are checked in priority order because richer viewers also carry
// the structures of simpler ones.
type Detector struct{}

// NewDetector creates a new Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect analyzes HTML and returns the viewer type.
// Returns ViewerUnknown if no signature matches.
func (d *Detector) Detect(html string) casedoc.ViewerType {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return casedoc.ViewerUnknown
	}

	// Page images carrying a text layer
	if d.hasDenseImageTextLayer(doc) {
		return casedoc.ViewerImageTextLayer
	}

	// Viewer root holding many small marked-content fragments
	if d.hasSelector(doc, ViewerRootSelector) &&
		doc.Find(MarkedContentSelector).Length() >= MinMarkedContentFragments {
		return casedoc.ViewerMarkedContent
	}

	// Text layer without page images or marked content
	if d.hasSelector(doc, TextLayerSelector) && !d.hasSelector(doc, MarkedContentSelector) {
		return casedoc.ViewerTextLayer
	}

	// Embedded sub-document viewer
	if d.hasSelector(doc, ViewerFrameSelector) {
		return casedoc.ViewerLazyFrame
	}

	return casedoc.ViewerUnknown
}

// hasDenseImageTextLayer reports whether at least half of the rendered page
// containers hold both a page image and a text layer.
func (d *Detector) hasDenseImageTextLayer(doc *goquery.Document) bool {
	pages := doc.Find(".page")
	if pages.Length() == 0 {
		return false
	}

	withBoth := 0
	pages.Each(func(_ int, s *goquery.Selection) {
		if s.Find("img").Length() > 0 && s.Find(TextLayerSelector).Length() > 0 {
			withBoth++
		}
	})

	return withBoth > 0 && withBoth*2 >= pages.Length()
}

// hasSelector checks if the document contains at least one element matching the selector.
func (d *Detector) hasSelector(doc *goquery.Document, selector string) bool {
	return doc.Find(selector).Length() > 0
}

// HasPlainTextToggle reports whether the viewer offers a "switch to plain
// text" control. It must be used before detection since the rendered
// structure changes once it is clicked.
func HasPlainTextToggle(html string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}
	return doc.Find(PlainTextToggleSelector).Length() > 0
}
