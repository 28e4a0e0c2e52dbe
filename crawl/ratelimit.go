package crawl

import (
	"context"
	"strings"
	"sync"

	"github.com/fwojciec/casedoc"
	"golang.org/x/time/rate"
)

var _ casedoc.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter spaces out page loads per host with token buckets. The
// listing scanner and every extraction worker share one limiter, so the
// commission site sees at most rps loads per second in total no matter how
// many browsers are open.
type DomainLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*rate.Limiter
	overrides map[string]float64
	rps       float64
}

// NewDomainLimiter creates a DomainLimiter allowing rps requests per second
// to each host, with no bursting.
func NewDomainLimiter(rps float64) *DomainLimiter {
	return &DomainLimiter{
		limiters:  make(map[string]*rate.Limiter),
		overrides: make(map[string]float64),
		rps:       rps,
	}
}

// SetLimit overrides the rate for one host. It applies to limiters created
// after the call and to the host's existing limiter.
func (d *DomainLimiter) SetLimit(domain string, rps float64) {
	domain = normalizeDomain(domain)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.overrides[domain] = rps
	if l, ok := d.limiters[domain]; ok {
		l.SetLimit(rate.Limit(rps))
	}
}

// Wait blocks until the host's limiter allows a request. Host names are
// compared case-insensitively and without a "www." prefix.
// Returns an error if the context is canceled before the wait completes.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	domain = normalizeDomain(domain)

	d.mu.Lock()
	limiter, ok := d.limiters[domain]
	if !ok {
		rps, overridden := d.overrides[domain]
		if !overridden {
			rps = d.rps
		}
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
		d.limiters[domain] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}

func normalizeDomain(domain string) string {
	return strings.TrimPrefix(strings.ToLower(domain), "www.")
}
