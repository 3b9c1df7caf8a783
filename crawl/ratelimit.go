package crawl

import (
	"context"
	"sync"
	"time"

	"github.com/clinscrape/clinscrape"
	"golang.org/x/time/rate"
)

var _ clinscrape.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter provides per-domain rate limiting using token buckets.
// Each domain gets its own limiter, so concurrent requests to different
// clinics proceed while requests within one clinic are spaced out.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	interval time.Duration
}

// NewDomainLimiter creates a DomainLimiter enforcing a minimum interval
// between requests to the same domain, with a burst of 1 (no bursting).
func NewDomainLimiter(interval time.Duration) *DomainLimiter {
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		interval: interval,
	}
}

// SetDomainInterval overrides the request interval for one domain, replacing
// the default. An existing limiter for the domain is retuned in place.
// Intervals <= 0 are ignored.
func (d *DomainLimiter) SetDomainInterval(domain string, interval time.Duration) {
	if interval <= 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if limiter, ok := d.limiters[domain]; ok {
		limiter.SetLimit(rate.Every(interval))
		return
	}
	d.limiters[domain] = rate.NewLimiter(rate.Every(interval), 1)
}

// Wait blocks until the rate limit allows a request to the domain.
// Returns an error if the context is canceled before the wait completes.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	d.mu.Lock()
	limiter, ok := d.limiters[domain]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(d.interval), 1)
		d.limiters[domain] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}
