package mock

import (
	"context"

	"github.com/fwojciec/casedoc"
)

var _ casedoc.Viewer = (*Viewer)(nil)

// Viewer is a mock implementation of casedoc.Viewer.
type Viewer struct {
	NavigateFn   func(ctx context.Context, url string) error
	HTMLFn       func(ctx context.Context) (string, error)
	FrameHTMLFn  func(ctx context.Context, frameSelector string) (string, error)
	WaitForFn    func(ctx context.Context, selector string) error
	ClickFn      func(ctx context.Context, frameSelector, selector string) error
	JumpToPageFn func(ctx context.Context, selector string, page int) error
	ScrollFn     func(ctx context.Context, frameSelector string, fraction float64) error
	CloseFn      func() error
}

func (v *Viewer) Navigate(ctx context.Context, url string) error {
	return v.NavigateFn(ctx, url)
}

func (v *Viewer) HTML(ctx context.Context) (string, error) {
	return v.HTMLFn(ctx)
}

func (v *Viewer) FrameHTML(ctx context.Context, frameSelector string) (string, error) {
	return v.FrameHTMLFn(ctx, frameSelector)
}

func (v *Viewer) WaitFor(ctx context.Context, selector string) error {
	return v.WaitForFn(ctx, selector)
}

func (v *Viewer) Click(ctx context.Context, frameSelector, selector string) error {
	return v.ClickFn(ctx, frameSelector, selector)
}

func (v *Viewer) JumpToPage(ctx context.Context, selector string, page int) error {
	return v.JumpToPageFn(ctx, selector, page)
}

func (v *Viewer) Scroll(ctx context.Context, frameSelector string, fraction float64) error {
	return v.ScrollFn(ctx, frameSelector, fraction)
}

func (v *Viewer) Close() error {
	return v.CloseFn()
}

var _ casedoc.ViewerFactory = (*ViewerFactory)(nil)

// ViewerFactory is a mock implementation of casedoc.ViewerFactory.
type ViewerFactory struct {
	NewViewerFn func(ctx context.Context) (casedoc.Viewer, error)
}

func (f *ViewerFactory) NewViewer(ctx context.Context) (casedoc.Viewer, error) {
	return f.NewViewerFn(ctx)
}

var _ casedoc.ViewerDetector = (*ViewerDetector)(nil)

// ViewerDetector is a mock implementation of casedoc.ViewerDetector.
type ViewerDetector struct {
	DetectFn func(html string) casedoc.ViewerType
}

func (d *ViewerDetector) Detect(html string) casedoc.ViewerType {
	return d.DetectFn(html)
}
