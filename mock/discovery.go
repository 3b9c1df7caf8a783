package mock

import (
	"context"
	"time"

	"github.com/clinscrape/clinscrape"
)

var _ clinscrape.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of clinscrape.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, baseURL string) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string) ([]string, error) {
	return s.DiscoverURLsFn(ctx, baseURL)
}

var _ clinscrape.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor is a mock implementation of clinscrape.LinkExtractor.
type LinkExtractor struct {
	ExtractLinksFn func(html string, baseURL string) ([]clinscrape.DiscoveredURL, error)
}

func (e *LinkExtractor) ExtractLinks(html string, baseURL string) ([]clinscrape.DiscoveredURL, error) {
	return e.ExtractLinksFn(html, baseURL)
}

var _ clinscrape.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of clinscrape.DomainLimiter.
type DomainLimiter struct {
	WaitFn              func(ctx context.Context, domain string) error
	SetDomainIntervalFn func(domain string, interval time.Duration)
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	if l.WaitFn == nil {
		return nil
	}
	return l.WaitFn(ctx, domain)
}

func (l *DomainLimiter) SetDomainInterval(domain string, interval time.Duration) {
	if l.SetDomainIntervalFn == nil {
		return
	}
	l.SetDomainIntervalFn(domain, interval)
}
