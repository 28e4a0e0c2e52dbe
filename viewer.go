package casedoc

import "context"

// ViewerType identifies the rendering technology of a document viewer and
// therefore the extraction strategy that applies to it.
type ViewerType string

// Known viewer types.
const (
	ViewerUnknown        ViewerType = ""
	ViewerImageTextLayer ViewerType = "image_text_layer"
	ViewerMarkedContent  ViewerType = "marked_content"
	ViewerTextLayer      ViewerType = "text_layer"
	ViewerLazyFrame      ViewerType = "lazy_frame"
)

// Viewer is a handle on one browser tab showing a document viewer.
// Every method is a suspension point bounded by the implementation's
// per-operation timeout. A Viewer is owned by a single worker and is not
// safe for concurrent use.
type Viewer interface {
	// Navigate loads the URL and waits for the page load event.
	Navigate(ctx context.Context, url string) error

	// HTML returns the current rendered DOM of the top document.
	HTML(ctx context.Context) (string, error)

	// FrameHTML returns the rendered DOM of the iframe matching frameSelector.
	FrameHTML(ctx context.Context, frameSelector string) (string, error)

	// WaitFor blocks until an element matching selector exists.
	WaitFor(ctx context.Context, selector string) error

	// Click clicks the first element matching selector. An empty frameSelector
	// targets the top document.
	Click(ctx context.Context, frameSelector, selector string) error

	// JumpToPage types a page number into the numeric page input matching
	// selector and submits it.
	JumpToPage(ctx context.Context, selector string, page int) error

	// Scroll scrolls the document (or the iframe matching frameSelector) to
	// the given fraction of its height: 0 is the top, 1 the bottom.
	Scroll(ctx context.Context, frameSelector string, fraction float64) error

	// Close releases the tab and any browser owned by the viewer.
	Close() error
}

// ViewerFactory opens independent viewers. Each viewer returned must be
// isolated from the others so that a crash or hang in one does not affect
// its siblings.
type ViewerFactory interface {
	NewViewer(ctx context.Context) (Viewer, error)
}

// ViewerDetector classifies a rendered viewer page.
type ViewerDetector interface {
	// Detect returns ViewerUnknown when no known signature matches.
	Detect(html string) ViewerType
}

// PageText is the recovered text of one document page.
type PageText struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// PageSet is the outcome of a page extraction strategy. Pages are sorted by
// page number. Degraded is set when fewer pages than expected were recovered.
type PageSet struct {
	Pages      []PageText `json:"pages"`
	TotalPages int        `json:"totalPages"`
	Degraded   bool       `json:"degraded"`
}

// PageExtractor recovers page-numbered text from a viewer that has already
// been navigated to. Errors returned are always *Error values carrying one of
// the extraction codes.
type PageExtractor interface {
	ExtractPages(ctx context.Context, v Viewer) (*PageSet, error)
}

// DocumentExtractor turns a document reference into an extraction result.
// It never returns an error: failures are classified inside the result.
type DocumentExtractor interface {
	ExtractDocument(ctx context.Context, v Viewer, ref DocumentRef) *ExtractionResult
}
