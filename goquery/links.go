// Package goquery extracts candidate navigation URLs from clinic pages.
// Clinic sites frequently hide category navigation behind onclick handlers,
// data attributes, and script-built routes rather than plain anchors, so the
// extractor looks beyond hrefs.
package goquery

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/clinscrape/clinscrape"
)

// Ensure LinkExtractor implements clinscrape.LinkExtractor at compile time.
var _ clinscrape.LinkExtractor = (*LinkExtractor)(nil)

// scriptPathPattern matches string literals inside inline scripts that look
// like navigable paths carrying treatment/booking intent.
var scriptPathPattern = regexp.MustCompile(`["'](/[A-Za-z0-9_\-/.?=&%]*(?:treatment|service|product|price|event|reservation|category|menu)[A-Za-z0-9_\-/.?=&%]*)["']`)

// navAttrPattern pulls a path out of onclick/data attribute values such as
// location.href='/ko/products' or data-url="/events/list".
var navAttrPattern = regexp.MustCompile(`['"(]\s*(/[A-Za-z0-9_\-/.?=&%]+)\s*['")]`)

// LinkExtractor collects candidate URLs from HTML: anchor hrefs, inline
// script string literals, form actions, and data-*/onclick attributes with
// navigation intent. Candidates are unscored; the crawl package ranks them.
type LinkExtractor struct{}

// NewLinkExtractor creates a new LinkExtractor.
func NewLinkExtractor() *LinkExtractor {
	return &LinkExtractor{}
}

// ExtractLinks parses HTML and returns candidate URLs resolved against
// baseURL. External hosts are filtered out and duplicates removed, keeping
// the first occurrence (anchors win since they are collected first and carry
// link text for scoring).
func (e *LinkExtractor) ExtractLinks(html string, baseURL string) ([]clinscrape.DiscoveredURL, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, clinscrape.Errorf(clinscrape.EINVALID, "invalid base URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, clinscrape.Errorf(clinscrape.EINVALID, "failed to parse HTML: %v", err)
	}

	seen := make(map[string]bool)
	var links []clinscrape.DiscoveredURL

	add := func(raw, text, source string) {
		if raw == "" || isNonHTTPLink(raw) {
			return
		}
		resolved := resolveURL(base, raw)
		if resolved == "" || !isSameHost(base, resolved) {
			return
		}
		if seen[resolved] {
			return
		}
		seen[resolved] = true
		links = append(links, clinscrape.DiscoveredURL{
			URL:    resolved,
			Text:   strings.TrimSpace(text),
			Source: source,
		})
	}

	// Anchors first: they carry visible text used by the scorer.
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		add(href, sel.Text(), "anchor")
	})

	// Form actions (search/booking forms often point at category listings).
	doc.Find("form[action]").Each(func(_ int, sel *goquery.Selection) {
		action, _ := sel.Attr("action")
		add(action, "", "form")
	})

	// onclick and data-* attributes with embedded paths.
	doc.Find("[onclick], [data-href], [data-url], [data-link]").Each(func(_ int, sel *goquery.Selection) {
		for _, attr := range []string{"data-href", "data-url", "data-link"} {
			if v, ok := sel.Attr(attr); ok {
				add(v, sel.Text(), "attr")
			}
		}
		if v, ok := sel.Attr("onclick"); ok {
			for _, m := range navAttrPattern.FindAllStringSubmatch(v, -1) {
				add(m[1], sel.Text(), "attr")
			}
		}
	})

	// Keyword-bearing string literals in inline scripts (SPA route tables).
	doc.Find("script").Each(func(_ int, sel *goquery.Selection) {
		for _, m := range scriptPathPattern.FindAllStringSubmatch(sel.Text(), -1) {
			add(m[1], "", "script")
		}
	})

	return links, nil
}

// resolveURL resolves a relative URL against a base URL.
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

// isSameHost checks if the resolved URL has the same host as the base URL.
func isSameHost(base *url.URL, resolved string) bool {
	u, err := url.Parse(resolved)
	if err != nil {
		return false
	}
	return u.Host == base.Host
}

// isNonHTTPLink reports whether href uses a scheme that can't be crawled.
func isNonHTTPLink(href string) bool {
	lower := strings.ToLower(strings.TrimSpace(href))
	for _, prefix := range []string{"javascript:", "mailto:", "tel:", "sms:", "data:", "#"} {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}
