package clinscrape

import "context"

// SitemapService discovers URLs from website sitemaps.
type SitemapService interface {
	// DiscoverURLs probes a fixed ordered list of conventional sitemap paths
	// relative to baseURL and parses the first one that responds, resolving
	// nested sitemap-index documents recursively. The total number of
	// collected URLs is capped to bound memory and time.
	DiscoverURLs(ctx context.Context, baseURL string) ([]string, error)
}
