package rod

import (
	"fmt"
	"sync"

	"github.com/fwojciec/casedoc"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultMaxPages is the default number of pages a browser serves before it
// is recycled. Listing and detail pages are small, so the listing browser is
// recycled less often than a document viewer would need.
const DefaultMaxPages = 75

// instance is one launched browser process and the pages it has served.
type instance struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	served   int
	open     int
}

func (in *instance) close() error {
	err := in.browser.Close()
	in.launcher.Kill()
	return err
}

// BrowserManager hands out pages from a headless Chrome process and replaces
// the process after it has served maxPages pages, because Chrome's memory
// baseline keeps growing under load even when pages are closed.
//
// A replaced browser is retired rather than closed: pages already open on it
// keep working and the process is shut down when the last of them is released.
//
// BrowserManager is safe for concurrent use.
type BrowserManager struct {
	mu       sync.Mutex
	current  *instance
	retired  []*instance
	maxPages int
	closed   bool

	// launch starts a browser process. Replaced in tests.
	launch func() (*rod.Browser, *launcher.Launcher, error)
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager)

// WithMaxPages sets how many pages a browser serves before it is recycled.
// Values below one are ignored.
func WithMaxPages(n int) ManagerOption {
	return func(bm *BrowserManager) {
		if n > 0 {
			bm.maxPages = n
		}
	}
}

// NewBrowserManager launches a headless browser. Close must be called when
// the manager is no longer needed.
func NewBrowserManager(opts ...ManagerOption) (*BrowserManager, error) {
	bm := &BrowserManager{
		maxPages: DefaultMaxPages,
		launch:   launch,
	}
	for _, opt := range opts {
		opt(bm)
	}

	browser, lnchr, err := bm.launch()
	if err != nil {
		return nil, err
	}
	bm.current = &instance{browser: browser, launcher: lnchr}
	return bm, nil
}

// Page opens a blank page. The returned release func closes the page and
// must be called exactly once.
//
// Returns EINVALID after Close.
func (bm *BrowserManager) Page() (*rod.Page, func(), error) {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return nil, nil, casedoc.Errorf(casedoc.EINVALID, "browser manager is closed")
	}
	if bm.current.served >= bm.maxPages {
		bm.recycle()
	}

	in := bm.current
	page, err := in.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, nil, fmt.Errorf("opening page: %w", err)
	}
	in.served++
	in.open++

	var once sync.Once
	release := func() {
		once.Do(func() {
			_ = page.Close()
			bm.release(in)
		})
	}
	return page, release, nil
}

// release records that a page of in was closed and shuts down in once it is
// retired and idle.
func (bm *BrowserManager) release(in *instance) {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	in.open--
	if in == bm.current || in.open > 0 {
		return
	}
	for i, r := range bm.retired {
		if r == in {
			bm.retired = append(bm.retired[:i], bm.retired[i+1:]...)
			_ = in.close()
			return
		}
	}
}

// recycle swaps in a fresh browser. If the launch fails the current browser
// keeps serving and its count is reset so the launch is not retried on every
// page. Must be called with mu held.
func (bm *BrowserManager) recycle() {
	browser, lnchr, err := bm.launch()
	if err != nil {
		bm.current.served = 0
		return
	}

	old := bm.current
	bm.current = &instance{browser: browser, launcher: lnchr}
	if old.open == 0 {
		_ = old.close()
		return
	}
	bm.retired = append(bm.retired, old)
}

// Close shuts down every browser process, including retired ones with pages
// still open. Close is safe to call multiple times.
func (bm *BrowserManager) Close() error {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return nil
	}
	bm.closed = true

	err := bm.current.close()
	for _, r := range bm.retired {
		_ = r.close()
	}
	bm.retired = nil
	return err
}

// Generation reports how many browsers have been launched and not yet shut
// down, counting the current one.
func (bm *BrowserManager) Generation() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.closed {
		return 0
	}
	return 1 + len(bm.retired)
}

// LauncherPID returns the process ID of the current browser launcher.
func (bm *BrowserManager) LauncherPID() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.closed {
		return 0
	}
	return bm.current.launcher.PID()
}

// launch starts a headless browser process with stability flags and
// connects to it.
func launch() (*rod.Browser, *launcher.Launcher, error) {
	lnchr := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		Leakless(true).
		Headless(true)

	u, err := lnchr.Launch()
	if err != nil {
		return nil, nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		lnchr.Kill()
		return nil, nil, fmt.Errorf("connecting to browser: %w", err)
	}

	return browser, lnchr, nil
}
