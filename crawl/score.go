package crawl

import (
	"net/url"
	"sort"
	"strings"

	"github.com/clinscrape/clinscrape"
)

// Scoring weights. Keyword hits dominate; query parameters often encode a
// category listing; deep paths are usually galleries or board posts.
const (
	keywordWeight         = 10
	priorityKeywordWeight = 15
	queryParamBonus       = 5
	depthPenaltyPerLevel  = 2
)

// DefaultTopURLs bounds how many scored candidates survive a single page's
// link extraction before merging into the frontier.
const DefaultTopURLs = 50

// treatmentKeywords is the generic bilingual list of treatment, pricing, and
// clinic terms that make a URL worth visiting. Korean first, since the sites
// are Korean clinics; English covers their translated sections.
var treatmentKeywords = []string{
	"시술", "치료", "이벤트", "가격", "비용", "예약", "상담",
	"보톡스", "필러", "리프팅", "레이저", "스킨", "피부", "제모", "미백",
	"주사", "성형", "울쎄라", "슈링크",
	"treatment", "procedure", "service", "product", "price", "pricing",
	"event", "promotion", "reservation", "booking", "category", "menu",
	"botox", "filler", "lifting", "laser", "skin", "derma", "clinic",
}

// genericExcludeKeywords drop a URL outright regardless of score.
var genericExcludeKeywords = []string{
	"blog", "news", "notice", "press", "admin", "login", "logout",
	"signup", "join", "privacy", "terms", "policy", "recruit", "sitemap",
	"board", "community", "review",
}

// staticAssetExtensions are never pages.
var staticAssetExtensions = []string{
	".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg", ".ico",
	".css", ".js", ".json", ".xml", ".pdf", ".zip", ".woff", ".woff2", ".mp4",
}

// ScoreURLs scores candidate URLs by treatment/pricing relevance and returns
// the top n, deduplicated keeping the highest score per URL. Target-specific
// priority keywords add extra weight and target exclude keywords drop URLs,
// both on top of the generic lists. Candidates matching exclude patterns or
// static-asset extensions are dropped regardless of score.
func ScoreURLs(candidates []clinscrape.DiscoveredURL, target *clinscrape.Target, n int) []clinscrape.DiscoveredURL {
	if n <= 0 {
		n = DefaultTopURLs
	}

	best := make(map[string]clinscrape.DiscoveredURL)
	for _, c := range candidates {
		if excluded(c.URL, target) {
			continue
		}
		c.Score = score(c, target)
		if prev, ok := best[c.URL]; !ok || c.Score > prev.Score {
			best[c.URL] = c
		}
	}

	out := make([]clinscrape.DiscoveredURL, 0, len(best))
	for _, c := range best {
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].URL < out[j].URL
	})

	if len(out) > n {
		out = out[:n]
	}
	return out
}

// score computes the priority of one candidate. Keywords are matched against
// the URL path and, for anchors, the visible link text.
func score(c clinscrape.DiscoveredURL, target *clinscrape.Target) int {
	u, err := url.Parse(c.URL)
	if err != nil {
		return 0
	}

	haystack := strings.ToLower(u.Path)
	if c.Text != "" {
		haystack += " " + strings.ToLower(c.Text)
	}

	var s int
	for _, kw := range treatmentKeywords {
		if strings.Contains(haystack, kw) {
			s += keywordWeight
		}
	}
	if target != nil {
		for _, kw := range target.PriorityKeywords {
			if strings.Contains(haystack, strings.ToLower(kw)) {
				s += priorityKeywordWeight
			}
		}
	}

	if u.RawQuery != "" {
		s += queryParamBonus
	}

	s -= pathDepth(u.Path) * depthPenaltyPerLevel
	return s
}

// excluded reports whether the URL matches a generic or target-specific
// exclude pattern, or points at a static asset.
func excluded(rawURL string, target *clinscrape.Target) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	path := strings.ToLower(u.Path)

	for _, ext := range staticAssetExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	for _, kw := range genericExcludeKeywords {
		if strings.Contains(path, kw) {
			return true
		}
	}
	if target != nil {
		lower := strings.ToLower(rawURL)
		for _, kw := range target.ExcludeKeywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				return true
			}
		}
	}
	return false
}

// pathDepth counts non-empty path segments.
func pathDepth(path string) int {
	depth := 0
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			depth++
		}
	}
	return depth
}
