// Package crawl orchestrates clinic site scraping. It coordinates URL
// discovery, rendering, SPA interaction, content extraction, and LLM product
// extraction, and folds the results into a deduplicated product set.
package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/clinscrape/clinscrape"
	"golang.org/x/sync/errgroup"
)

// Orchestrator defaults, overridable per Crawler and per Target.
const (
	DefaultConcurrency = 4
	DefaultMaxUnits    = 60
	DefaultMaxDuration = 20 * time.Minute
)

// Frontier sizing for a single target run.
const (
	frontierExpectedURLs      = 10000
	frontierFalsePositiveRate = 0.01
)

// staticSeedScore ranks explicitly configured URLs above anything discovered.
const staticSeedScore = 100

// Crawler orchestrates the scraping of clinic sites.
type Crawler struct {
	Sitemaps    clinscrape.SitemapService
	Fetcher     clinscrape.Fetcher
	Sessions    clinscrape.SessionOpener
	Links       clinscrape.LinkExtractor
	Extractor   clinscrape.Extractor
	Converter   clinscrape.Converter
	Products    clinscrape.ProductExtractor
	Snapshots   clinscrape.SnapshotStore
	RateLimiter clinscrape.DomainLimiter
	Logger      *slog.Logger

	// Concurrency bounds a batch of fetch-and-extract work. It also bounds
	// simultaneous LLM calls, the scarcer resource.
	Concurrency int
	RetryDelays []time.Duration
	// MaxUnits and MaxDuration are fallbacks for targets that don't set
	// their own ceilings.
	MaxUnits    int
	MaxDuration time.Duration
}

// Result holds the outcome of scraping one target.
type Result struct {
	Products []*clinscrape.Product
	// Units is the number of processed units: pages for URL strategies,
	// content states for the SPA strategy.
	Units    int
	Failed   int
	Failures []UnitError
	Duration time.Duration
}

// UnitError records one failed unit of work without aborting the run.
type UnitError struct {
	// Unit is the URL, or "url#step-N" for an SPA content state.
	Unit    string
	Err     error
	Elapsed time.Duration
}

// ProgressEvent reports progress during a scrape.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	// Total is the number of known units at start; zero when the unit count
	// is open-ended (SPA interaction, link-following).
	Total int
	Unit  string
	// NewProducts is how many genuinely new product keys this unit added.
	NewProducts int
	Error       error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting scrape progress.
type ProgressFunc func(event ProgressEvent)

// unitResult holds the outcome of processing a single unit of work.
type unitResult struct {
	unit       string
	step       int
	title      string
	markdown   string
	duplicate  bool
	discovered []clinscrape.DiscoveredURL
	products   []*clinscrape.Product
	err        error
	elapsed    time.Duration
}

// runState is the mutable per-run accumulator. Workers only touch it through
// the mutex-guarded methods; everything else happens on the coordinator.
type runState struct {
	mu           sync.Mutex
	result       Result
	seenKeys     map[clinscrape.ProductKey]bool
	fingerprints fingerprintSet
	completed    int
}

func newRunState() *runState {
	return &runState{
		seenKeys:     make(map[clinscrape.ProductKey]bool),
		fingerprints: make(fingerprintSet),
	}
}

// seenFingerprint records a content fingerprint and reports whether it was
// already seen this run.
func (r *runState) seenFingerprint(fp string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fingerprints.seen(fp)
}

// fold merges products into the accumulated set keyed by (clinic, product),
// returning how many were genuinely new.
func (r *runState) fold(products []*clinscrape.Product) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	added := 0
	for _, p := range products {
		key := p.Key()
		if r.seenKeys[key] {
			continue
		}
		r.seenKeys[key] = true
		r.result.Products = append(r.result.Products, p)
		added++
	}
	return added
}

// ScrapeTarget runs the full scrape state machine for one target: discover,
// fetch, extract, dedup, terminate. Individual units never abort the run;
// their errors are captured in the result. The returned error is reserved for
// setup failures (invalid target, discovery failure, session open failure).
func (c *Crawler) ScrapeTarget(ctx context.Context, target *clinscrape.Target, progress ProgressFunc) (*Result, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}

	if c.RateLimiter != nil && target.RateDelay > 0 {
		if base, err := url.Parse(target.BaseURL); err == nil {
			c.RateLimiter.SetDomainInterval(base.Host, target.RateDelay)
		}
	}

	maxDuration := target.MaxDuration
	if maxDuration <= 0 {
		maxDuration = c.MaxDuration
	}
	if maxDuration <= 0 {
		maxDuration = DefaultMaxDuration
	}
	ctx, cancel := context.WithTimeout(ctx, maxDuration)
	defer cancel()

	maxUnits := target.MaxPages
	if maxUnits <= 0 {
		maxUnits = c.MaxUnits
	}
	if maxUnits <= 0 {
		maxUnits = DefaultMaxUnits
	}

	run := newRunState()
	start := time.Now()

	var err error
	if target.Strategy == clinscrape.SourceSPA {
		err = c.scrapeSPA(ctx, target, maxUnits, run, progress)
	} else {
		err = c.crawlURLs(ctx, target, maxUnits, run, progress)
	}

	run.result.Duration = time.Since(start)

	if c.Snapshots != nil {
		if err != nil {
			_ = c.Snapshots.Abort()
		} else if cerr := c.Snapshots.Commit(); cerr != nil && c.Logger != nil {
			c.Logger.Warn("snapshot commit failed", "target", target.Key, "err", cerr)
		}
	}
	if err != nil {
		return nil, err
	}

	if progress != nil {
		progress(ProgressEvent{
			Type:      ProgressFinished,
			Completed: run.completed,
			Total:     run.result.Units,
		})
	}
	return &run.result, nil
}

// crawlURLs implements the sitemap and static strategies: seed a frontier,
// then process scored URLs in awaited batches until a termination condition
// triggers (unit ceiling, deadline, empty frontier).
func (c *Crawler) crawlURLs(ctx context.Context, target *clinscrape.Target, maxUnits int, run *runState, progress ProgressFunc) error {
	base, err := url.Parse(target.BaseURL)
	if err != nil {
		return clinscrape.Errorf(clinscrape.EINVALID, "invalid base URL: %v", err)
	}

	frontier := NewFrontier(frontierExpectedURLs, frontierFalsePositiveRate)

	var total int
	switch target.Strategy {
	case clinscrape.SourceSitemap:
		urls, err := c.Sitemaps.DiscoverURLs(ctx, target.BaseURL)
		if err != nil {
			return fmt.Errorf("sitemap discovery: %w", err)
		}
		candidates := make([]clinscrape.DiscoveredURL, len(urls))
		for i, u := range urls {
			candidates[i] = clinscrape.DiscoveredURL{URL: u, Source: "sitemap"}
		}
		seeds := ScoreURLs(candidates, target, maxUnits)
		for _, s := range seeds {
			frontier.Push(s)
		}
		total = len(seeds)
		// No sitemap or everything filtered out: fall back to following
		// links from the entry page.
		if total == 0 {
			frontier.Push(clinscrape.DiscoveredURL{URL: target.EntryURL(), Score: staticSeedScore, Source: "static"})
		}
	case clinscrape.SourceStatic:
		for _, u := range target.StaticURLs {
			frontier.Push(clinscrape.DiscoveredURL{URL: u, Score: staticSeedScore, Source: "static"})
		}
		total = len(target.StaticURLs)
	}

	if progress != nil {
		progress(ProgressEvent{Type: ProgressStarted, Total: total})
	}

	concurrency := c.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	for run.result.Units < maxUnits && ctx.Err() == nil {
		batch := popBatch(frontier, min(concurrency, maxUnits-run.result.Units))
		if len(batch) == 0 {
			break
		}

		// Dispatch the batch together and await it jointly before forming
		// the next one.
		results := make([]*unitResult, len(batch))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(concurrency)
		for i, u := range batch {
			g.Go(func() error {
				results[i] = c.processPage(gctx, run, u)
				return nil
			})
		}
		_ = g.Wait()

		for _, res := range results {
			c.handleUnit(ctx, target, base, frontier, run, res, total, progress)
		}
	}

	return nil
}

// popBatch pops up to n URLs off the frontier.
func popBatch(frontier *Frontier, n int) []clinscrape.DiscoveredURL {
	var batch []clinscrape.DiscoveredURL
	for len(batch) < n {
		u, ok := frontier.Pop()
		if !ok {
			break
		}
		batch = append(batch, u)
	}
	return batch
}

// processPage runs the per-URL pipeline: rate limit, fetch with retry,
// fingerprint gate, link extraction, content extraction, LLM extraction.
// Errors are captured in the result, never propagated.
func (c *Crawler) processPage(ctx context.Context, run *runState, u clinscrape.DiscoveredURL) *unitResult {
	res := &unitResult{unit: u.URL}
	start := time.Now()
	defer func() { res.elapsed = time.Since(start) }()

	pageURL, err := url.Parse(u.URL)
	if err != nil {
		res.err = err
		return res
	}
	if c.RateLimiter != nil {
		if err := c.RateLimiter.Wait(ctx, pageURL.Host); err != nil {
			res.err = err
			return res
		}
	}

	delays := c.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	html, err := FetchWithRetryDelays(ctx, u.URL, c.Fetcher.Fetch, c.Logger, delays)
	if err != nil {
		res.err = err
		return res
	}

	// Dedup gate: an already-seen content state means the URL is an alias of
	// a processed page, so skip the expensive extraction work.
	if run.seenFingerprint(Fingerprint(html)) {
		res.duplicate = true
		return res
	}

	if c.Links != nil {
		if links, err := c.Links.ExtractLinks(html, u.URL); err == nil {
			res.discovered = links
		}
	}

	extracted, err := c.Extractor.Extract(html)
	if err != nil {
		res.err = err
		return res
	}
	markdown, err := c.Converter.Convert(extracted.ContentHTML)
	if err != nil {
		res.err = err
		return res
	}
	res.title = extracted.Title
	res.markdown = markdown

	products, err := c.Products.ExtractProducts(ctx, markdown, u.URL)
	if err != nil {
		res.err = err
		return res
	}
	res.products = products
	return res
}

// handleUnit folds one completed unit into the run on the coordinator
// goroutine: frontier growth, dedup, snapshots, progress reporting.
func (c *Crawler) handleUnit(ctx context.Context, target *clinscrape.Target, base *url.URL, frontier *Frontier, run *runState, res *unitResult, total int, progress ProgressFunc) {
	run.result.Units++
	run.completed++

	if frontier != nil && len(res.discovered) > 0 {
		sameHost := res.discovered[:0]
		for _, d := range res.discovered {
			if du, err := url.Parse(d.URL); err == nil && du.Host == base.Host {
				sameHost = append(sameHost, d)
			}
		}
		for _, d := range ScoreURLs(sameHost, target, DefaultTopURLs) {
			frontier.Push(d)
		}
	}

	if res.err != nil {
		run.result.Failed++
		run.result.Failures = append(run.result.Failures, UnitError{
			Unit:    res.unit,
			Err:     res.err,
			Elapsed: res.elapsed,
		})
		if c.Logger != nil {
			c.Logger.Warn("unit failed", "unit", res.unit, "elapsed", res.elapsed, "err", res.err)
		}
		if progress != nil {
			progress(ProgressEvent{
				Type:      ProgressFailed,
				Completed: run.completed,
				Total:     total,
				Unit:      res.unit,
				Error:     res.err,
			})
		}
		return
	}

	if res.duplicate {
		return
	}

	if c.Snapshots != nil && res.markdown != "" {
		snap := &clinscrape.Snapshot{
			URL:     res.unit,
			Step:    res.step,
			Title:   res.title,
			Content: res.markdown,
		}
		if err := c.Snapshots.Save(ctx, snap); err != nil && c.Logger != nil {
			c.Logger.Warn("snapshot save failed", "unit", res.unit, "err", err)
		}
	}

	for _, p := range res.products {
		if p.SourceChannel == "" {
			p.SourceChannel = target.SiteName
		}
	}
	added := run.fold(res.products)
	if progress != nil {
		progress(ProgressEvent{
			Type:        ProgressCompleted,
			Completed:   run.completed,
			Total:       total,
			Unit:        res.unit,
			NewProducts: added,
		})
	}
}

// contentState is one distinct rendered state collected during SPA
// interaction, extracted later as an independent batch.
type contentState struct {
	step int
	html string
}

// scrapeSPA implements the SPA strategy: a sequential browser interaction
// phase collecting distinct content states, followed by parallel extraction
// of the collected snapshots. The interaction loop stops on the unit
// ceiling, the deadline, NoMoreElements, or a repeated content fingerprint.
func (c *Crawler) scrapeSPA(ctx context.Context, target *clinscrape.Target, maxUnits int, run *runState, progress ProgressFunc) error {
	if c.Sessions == nil {
		return clinscrape.Errorf(clinscrape.EINVALID, "SPA target %q requires a session opener", target.Key)
	}

	entryURL := target.EntryURL()
	session, err := c.Sessions.Open(ctx, entryURL, target.SPA)
	if err != nil {
		return fmt.Errorf("opening session: %w", err)
	}
	defer session.Close()

	if progress != nil {
		progress(ProgressEvent{Type: ProgressStarted})
	}

	maxInteractions := target.SPA.MaxInteractions
	if maxInteractions <= 0 || maxInteractions > maxUnits {
		maxInteractions = maxUnits
	}

	var states []contentState

	html, err := session.HTML(ctx)
	if err != nil {
		return fmt.Errorf("initial snapshot: %w", err)
	}
	run.seenFingerprint(Fingerprint(html))
	states = append(states, contentState{step: 0, html: html})

	tried := make(clinscrape.TriedSet)
	for step := 1; len(states) <= maxInteractions && ctx.Err() == nil; step++ {
		sig, err := session.Interact(ctx, tried)
		if err == clinscrape.ErrNoMoreElements {
			break
		}
		if err != nil {
			// A failed interaction step is a failed unit, not a failed run.
			run.result.Failed++
			run.result.Failures = append(run.result.Failures, UnitError{
				Unit: fmt.Sprintf("%s#step-%d", entryURL, step),
				Err:  err,
			})
			break
		}
		tried[sig] = true

		html, err := session.HTML(ctx)
		if err != nil {
			run.result.Failed++
			run.result.Failures = append(run.result.Failures, UnitError{
				Unit: fmt.Sprintf("%s#step-%d", entryURL, step),
				Err:  err,
			})
			break
		}

		// A repeated content state means interactions have cycled; stop
		// collecting.
		if run.seenFingerprint(Fingerprint(html)) {
			break
		}
		states = append(states, contentState{step: step, html: html})
	}

	// Interaction is sequential, but the collected snapshots have no
	// dependency on further page state, so extract them in parallel.
	concurrency := c.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]*unitResult, len(states))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, st := range states {
		g.Go(func() error {
			results[i] = c.extractState(gctx, entryURL, st)
			return nil
		})
	}
	_ = g.Wait()

	for _, res := range results {
		c.handleUnit(ctx, target, nil, nil, run, res, len(states), progress)
	}
	return nil
}

// extractState runs the extraction pipeline over one collected SPA content
// state.
func (c *Crawler) extractState(ctx context.Context, entryURL string, st contentState) *unitResult {
	res := &unitResult{
		unit: fmt.Sprintf("%s#step-%d", entryURL, st.step),
		step: st.step,
	}
	start := time.Now()
	defer func() { res.elapsed = time.Since(start) }()

	extracted, err := c.Extractor.Extract(st.html)
	if err != nil {
		res.err = err
		return res
	}
	markdown, err := c.Converter.Convert(extracted.ContentHTML)
	if err != nil {
		res.err = err
		return res
	}
	res.title = extracted.Title
	res.markdown = markdown

	products, err := c.Products.ExtractProducts(ctx, markdown, entryURL)
	if err != nil {
		res.err = err
		return res
	}
	res.products = products
	return res
}
