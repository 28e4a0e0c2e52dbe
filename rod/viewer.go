package rod

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/fwojciec/casedoc"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultOperationTimeout bounds each viewer operation.
const DefaultOperationTimeout = 30 * time.Second

// Ensure ViewerFactory implements casedoc.ViewerFactory at compile time.
var _ casedoc.ViewerFactory = (*ViewerFactory)(nil)

// ViewerFactory opens each viewer in its own browser process so a crashed
// or hung viewer cannot affect the other workers.
type ViewerFactory struct {
	// Timeout bounds each viewer operation. Defaults to DefaultOperationTimeout.
	Timeout time.Duration
}

// NewViewerFactory creates a ViewerFactory with the given per-operation
// timeout. A zero timeout uses DefaultOperationTimeout.
func NewViewerFactory(timeout time.Duration) *ViewerFactory {
	return &ViewerFactory{Timeout: timeout}
}

// NewViewer launches a browser and opens a blank tab in it.
func (f *ViewerFactory) NewViewer(ctx context.Context) (casedoc.Viewer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	browser, lnchr, err := launch()
	if err != nil {
		return nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = browser.Close()
		lnchr.Kill()
		return nil, fmt.Errorf("opening page: %w", err)
	}

	v := NewViewer(page, f.Timeout)
	v.browser = browser
	v.launcher = lnchr
	return v, nil
}

// Ensure Viewer implements casedoc.Viewer at compile time.
var _ casedoc.Viewer = (*Viewer)(nil)

// Viewer implements casedoc.Viewer on one rod page. Every operation runs
// under the caller's context and the viewer's per-operation timeout;
// returned errors wrap context.DeadlineExceeded when the timeout expires.
type Viewer struct {
	page     *rod.Page
	browser  *rod.Browser
	launcher *launcher.Launcher
	timeout  time.Duration

	closeOnce sync.Once
	closeErr  error
}

// NewViewer wraps an existing page. The caller keeps ownership of the
// page's browser unless the viewer is given one to close.
func NewViewer(page *rod.Page, timeout time.Duration) *Viewer {
	if timeout <= 0 {
		timeout = DefaultOperationTimeout
	}
	return &Viewer{page: page, timeout: timeout}
}

func (v *Viewer) bound(ctx context.Context) *rod.Page {
	return v.page.Context(ctx).Timeout(v.timeout)
}

// root returns the top document, or the document of the iframe matching
// frameSelector.
func (v *Viewer) root(p *rod.Page, frameSelector string) (*rod.Page, error) {
	if frameSelector == "" {
		return p, nil
	}
	el, err := p.Element(frameSelector)
	if err != nil {
		return nil, fmt.Errorf("finding frame %q: %w", frameSelector, err)
	}
	frame, err := el.Frame()
	if err != nil {
		return nil, fmt.Errorf("entering frame %q: %w", frameSelector, err)
	}
	return frame, nil
}

// Navigate loads the URL and waits for the load event.
func (v *Viewer) Navigate(ctx context.Context, url string) error {
	p := v.bound(ctx)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("waiting for %s: %w", url, err)
	}
	return nil
}

// HTML returns the rendered DOM of the top document.
func (v *Viewer) HTML(ctx context.Context) (string, error) {
	html, err := v.bound(ctx).HTML()
	if err != nil {
		return "", fmt.Errorf("reading page: %w", err)
	}
	return html, nil
}

// FrameHTML returns the rendered DOM of the iframe matching frameSelector.
func (v *Viewer) FrameHTML(ctx context.Context, frameSelector string) (string, error) {
	frame, err := v.root(v.bound(ctx), frameSelector)
	if err != nil {
		return "", err
	}
	html, err := frame.HTML()
	if err != nil {
		return "", fmt.Errorf("reading frame %q: %w", frameSelector, err)
	}
	return html, nil
}

// WaitFor blocks until an element matching selector exists.
func (v *Viewer) WaitFor(ctx context.Context, selector string) error {
	if _, err := v.bound(ctx).Element(selector); err != nil {
		return fmt.Errorf("waiting for %q: %w", selector, err)
	}
	return nil
}

// Click clicks the first element matching selector.
func (v *Viewer) Click(ctx context.Context, frameSelector, selector string) error {
	root, err := v.root(v.bound(ctx), frameSelector)
	if err != nil {
		return err
	}
	el, err := root.Element(selector)
	if err != nil {
		return fmt.Errorf("finding %q: %w", selector, err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("clicking %q: %w", selector, err)
	}
	return nil
}

// JumpToPage replaces the value of the page input matching selector and
// presses Enter.
func (v *Viewer) JumpToPage(ctx context.Context, selector string, page int) error {
	el, err := v.bound(ctx).Element(selector)
	if err != nil {
		return fmt.Errorf("finding page input %q: %w", selector, err)
	}
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("selecting page input: %w", err)
	}
	if err := el.Input(strconv.Itoa(page)); err != nil {
		return fmt.Errorf("typing page %d: %w", page, err)
	}
	if err := el.Type(input.Enter); err != nil {
		return fmt.Errorf("submitting page %d: %w", page, err)
	}
	return nil
}

const scrollJS = `(fraction) => {
	const el = document.scrollingElement || document.documentElement;
	el.scrollTop = (el.scrollHeight - el.clientHeight) * fraction;
}`

// Scroll scrolls the document, or the iframe matching frameSelector, to a
// fraction of its height.
func (v *Viewer) Scroll(ctx context.Context, frameSelector string, fraction float64) error {
	root, err := v.root(v.bound(ctx), frameSelector)
	if err != nil {
		return err
	}
	fraction = min(max(fraction, 0), 1)
	if _, err := root.Eval(scrollJS, fraction); err != nil {
		return fmt.Errorf("scrolling to %.2f: %w", fraction, err)
	}
	return nil
}

// Close closes the tab and, for factory-made viewers, the browser process.
// Close is safe to call multiple times.
func (v *Viewer) Close() error {
	v.closeOnce.Do(func() {
		v.closeErr = v.page.Close()
		if v.browser != nil {
			if err := v.browser.Close(); err != nil && v.closeErr == nil {
				v.closeErr = err
			}
		}
		if v.launcher != nil {
			v.launcher.Kill()
		}
	})
	return v.closeErr
}

// LauncherPID returns the process ID of the viewer's own browser launcher, or
// zero for a viewer wrapping a caller-owned page.
func (v *Viewer) LauncherPID() int {
	if v.launcher == nil {
		return 0
	}
	return v.launcher.PID()
}
