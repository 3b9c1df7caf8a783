package clinscrape

import (
	"context"
	"time"
)

// DiscoveredURL represents a candidate URL with its priority score.
// Higher scores are crawled first.
type DiscoveredURL struct {
	URL   string
	Score int
	// Text is the visible link text for anchors, empty otherwise.
	Text string
	// Source identifies where the candidate came from: "sitemap", "anchor",
	// "script", "form", "attr", "static".
	Source string
}

// URLFrontier manages a crawl queue with deduplication.
// The orchestrator exclusively owns the frontier.
type URLFrontier interface {
	// Push adds a URL to the frontier.
	// Returns false if the URL has already been seen.
	Push(u DiscoveredURL) bool

	// Pop returns the next URL by score.
	// Returns false if the frontier is empty.
	Pop() (DiscoveredURL, bool)

	// Len returns the number of URLs in the queue.
	Len() int

	// Seen returns true if the URL has been processed or queued.
	Seen(url string) bool
}

// LinkExtractor collects candidate URLs from rendered or static HTML:
// anchor hrefs, keyword-bearing script string literals, form actions, and
// data-*/onclick attributes carrying navigation intent. Relative URLs are
// normalized against baseURL. Candidates are returned unscored.
type LinkExtractor interface {
	ExtractLinks(html string, baseURL string) ([]DiscoveredURL, error)
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error

	// SetDomainInterval overrides the minimum request interval for one
	// domain. Intervals <= 0 are ignored.
	SetDomainInterval(domain string, interval time.Duration)
}
