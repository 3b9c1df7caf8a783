package rod

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/clinscrape/clinscrape"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultStepWait is how long a page settles after an interaction when the
// target config does not specify a step wait.
const DefaultStepWait = 2 * time.Second

// signatureTextLen bounds the element text included in an interaction
// signature. Enough to tell "더보기" buttons apart without making long menu
// labels blow up the tried set.
const signatureTextLen = 40

// loadMorePattern matches "load more"/pagination intent in visible element
// text, in both Korean and English.
var loadMorePattern = regexp.MustCompile(`(?i)(더\s*보기|load\s*more|view\s*more|show\s*more|\bmore\b|다음|next)`)

// candidateClass is one entry of the fixed interaction priority list.
// Classes are tried in order; within a class, candidates are picked randomly
// to avoid deterministic starvation on repeated identical-looking elements.
type candidateClass struct {
	name       string
	selector   string
	textFilter *regexp.Regexp
}

// genericClasses is the fixed priority list tried after any site-specific
// selectors: data-attribute-tagged menu elements first, then known
// category/menu class patterns, tab/slider navigation, text-matched
// load-more controls, and finally anything clickable.
var genericClasses = []candidateClass{
	{name: "data-attr", selector: "[data-menu], [data-category], [data-tab], [data-filter], [data-toggle]"},
	{name: "menu-class", selector: ".category a, .category button, .menu a, .menu-item, .lnb a, .gnb a, .snb a, .tab-menu a, .tab-menu li"},
	{name: "tab-slider", selector: "[role=tab], .tab, .swiper-slide, .slick-slide"},
	{name: "load-more", selector: "a, button", textFilter: loadMorePattern},
	{name: "generic", selector: "a, button, [role=button], [onclick]"},
}

// Ensure Opener implements clinscrape.SessionOpener at compile time.
var _ clinscrape.SessionOpener = (*Opener)(nil)

// Opener opens interactive browser sessions for SPA targets.
type Opener struct {
	bm     *BrowserManager
	settle time.Duration
	logger *slog.Logger
}

// OpenerOption configures an Opener.
type OpenerOption func(*Opener)

// WithOpenerSettleDelay overrides the post-navigation settle delay.
func WithOpenerSettleDelay(d time.Duration) OpenerOption {
	return func(o *Opener) {
		o.settle = d
	}
}

// WithOpenerLogger sets the logger used for interaction debug output.
func WithOpenerLogger(logger *slog.Logger) OpenerOption {
	return func(o *Opener) {
		o.logger = logger
	}
}

// NewOpener creates a new Opener backed by a recycling browser manager.
// Close must be called when the Opener is no longer needed.
func NewOpener(opts ...OpenerOption) (*Opener, error) {
	bm, err := NewBrowserManager()
	if err != nil {
		return nil, err
	}

	o := &Opener{bm: bm, settle: DefaultSettleDelay, logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Open navigates a fresh page to url and waits for it to settle.
// The caller owns the returned session and must close it.
func (o *Opener) Open(ctx context.Context, url string, cfg *clinscrape.SPAConfig) (clinscrape.Session, error) {
	page, err := o.bm.Browser().Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, err
	}

	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		page.Close()
		return nil, err
	}
	if err := settlePage(ctx, page, o.settle); err != nil {
		page.Close()
		return nil, err
	}

	// The configured wait selector narrows the content wait to something the
	// site is known to render; missing it is not fatal.
	if cfg != nil && cfg.WaitSelector != "" {
		if _, err := page.Timeout(contentWaitTimeout).Element(cfg.WaitSelector); err != nil {
			o.logger.Debug("wait selector not found", "selector", cfg.WaitSelector, "url", url)
		}
	}

	stepWait := DefaultStepWait
	var siteSelectors []string
	scroll := false
	if cfg != nil {
		if cfg.StepWait > 0 {
			stepWait = cfg.StepWait
		}
		siteSelectors = cfg.ClickSelectors
		scroll = cfg.EnableScroll
	}

	o.bm.IncrementPageCount()

	return &Session{
		page:          page,
		logger:        o.logger,
		stepWait:      stepWait,
		siteSelectors: siteSelectors,
		enableScroll:  scroll,
	}, nil
}

// Close releases the underlying browser.
func (o *Opener) Close() error {
	return o.bm.Close()
}

// Ensure Session implements clinscrape.Session at compile time.
var _ clinscrape.Session = (*Session)(nil)

// Session is a live browser page driven through SPA interactions.
// Sessions are not safe for concurrent use: one page, one interaction at a
// time.
type Session struct {
	page          *rod.Page
	logger        *slog.Logger
	stepWait      time.Duration
	siteSelectors []string
	enableScroll  bool
	scrolls       int
}

// HTML returns the current rendered HTML of the page.
func (s *Session) HTML(ctx context.Context) (string, error) {
	return s.page.Context(ctx).HTML()
}

// Interact performs one UI interaction from the prioritized selector
// classes, skipping elements whose signature is already in tried.
// Returns the signature of the element interacted with; the caller records
// it in tried only because the interaction succeeded. Falls back to
// scrolling to the bottom of the page when enabled, which always succeeds.
// Returns clinscrape.ErrNoMoreElements when nothing remains.
func (s *Session) Interact(ctx context.Context, tried clinscrape.TriedSet) (string, error) {
	page := s.page.Context(ctx)

	for _, class := range s.classes() {
		candidates := s.collect(page, class, tried)
		if len(candidates) == 0 {
			continue
		}

		rand.Shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})

		for _, c := range candidates {
			if err := clickWithFallback(page, c.el); err != nil {
				// Click failures are never fatal; the element may be
				// transiently occluded, so its signature stays retryable.
				s.logger.Debug("click failed", "class", class.name, "signature", c.sig, "err", err)
				continue
			}
			s.logger.Debug("interaction", "class", class.name, "signature", c.sig)
			s.settleStep(ctx)
			return c.sig, nil
		}
	}

	if s.enableScroll {
		if _, err := page.Eval(`() => window.scrollTo(0, document.body.scrollHeight)`); err == nil {
			s.scrolls++
			s.settleStep(ctx)
			return fmt.Sprintf("scroll:%d", s.scrolls), nil
		}
	}

	return "", clinscrape.ErrNoMoreElements
}

// Close releases the page.
func (s *Session) Close() error {
	return s.page.Close()
}

// classes returns the interaction priority list with site-specific
// selectors prepended.
func (s *Session) classes() []candidateClass {
	classes := make([]candidateClass, 0, len(s.siteSelectors)+len(genericClasses))
	for _, sel := range s.siteSelectors {
		classes = append(classes, candidateClass{name: "site", selector: sel})
	}
	return append(classes, genericClasses...)
}

// candidate pairs an element with its computed signature.
type candidate struct {
	el  *rod.Element
	sig string
}

// collect enumerates elements matching the class selector and filters to
// those that are visible, enabled, match the class text filter, and have
// not been tried.
func (s *Session) collect(page *rod.Page, class candidateClass, tried clinscrape.TriedSet) []candidate {
	els, err := page.Elements(class.selector)
	if err != nil {
		return nil
	}

	var out []candidate
	for _, el := range els {
		info, err := describeElement(el)
		if err != nil {
			continue
		}
		if info.disabled {
			continue
		}
		if class.textFilter != nil && !class.textFilter.MatchString(info.text) {
			continue
		}
		if visible, err := el.Visible(); err != nil || !visible {
			continue
		}
		sig := info.signature()
		if tried[sig] {
			continue
		}
		out = append(out, candidate{el: el, sig: sig})
	}
	return out
}

// settleStep lets the page react to an interaction.
func (s *Session) settleStep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(s.stepWait):
	}
}

// elementInfo holds the attributes that make up an interaction signature.
type elementInfo struct {
	tag      string
	text     string
	class    string
	id       string
	href     string
	data     map[string]string
	disabled bool
}

// signature identifies the logical element: tag, truncated text, class, id,
// href and sorted data attributes. Two DOM nodes that present identically
// get the same signature, which is the point.
func (i *elementInfo) signature() string {
	keys := make([]string, 0, len(i.data))
	for k := range i.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(i.tag)
	b.WriteByte('|')
	b.WriteString(i.text)
	b.WriteByte('|')
	b.WriteString(i.class)
	b.WriteByte('|')
	b.WriteString(i.id)
	b.WriteByte('|')
	b.WriteString(i.href)
	for _, k := range keys {
		b.WriteByte('|')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(i.data[k])
	}
	return b.String()
}

// describeElement reads the signature attributes in a single script call.
func describeElement(el *rod.Element) (*elementInfo, error) {
	obj, err := el.Eval(`() => {
		const data = {};
		for (const a of this.attributes) {
			if (a.name.startsWith('data-')) data[a.name] = a.value;
		}
		return {
			tag: this.tagName.toLowerCase(),
			text: (this.innerText || '').trim(),
			cls: this.className || '',
			id: this.id || '',
			href: this.getAttribute('href') || '',
			data: data,
			disabled: !!this.disabled,
		};
	}`)
	if err != nil {
		return nil, err
	}

	v := obj.Value
	info := &elementInfo{
		tag:      v.Get("tag").Str(),
		text:     v.Get("text").Str(),
		class:    v.Get("cls").Str(),
		id:       v.Get("id").Str(),
		href:     v.Get("href").Str(),
		data:     make(map[string]string),
		disabled: v.Get("disabled").Bool(),
	}
	info.text = truncateSignatureText(info.text)
	for k, val := range v.Get("data").Map() {
		info.data[k] = val.Str()
	}
	return info, nil
}

// truncateSignatureText cuts element text to at most signatureTextLen bytes
// without splitting a UTF-8 sequence.
func truncateSignatureText(text string) string {
	if len(text) <= signatureTextLen {
		return text
	}
	cut := signatureTextLen
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

// clickWithFallback attempts a direct click, then a raw mouse click through
// the element's midpoint (bypassing occlusion checks), then a script-based
// click dispatch. Any successful path counts as success.
func clickWithFallback(page *rod.Page, el *rod.Element) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("click panicked: %v", r)
		}
	}()

	if err = el.Click(proto.InputMouseButtonLeft, 1); err == nil {
		return nil
	}

	if shape, serr := el.Shape(); serr == nil {
		if pt := shape.OnePointInside(); pt != nil {
			if merr := page.Mouse.MoveTo(*pt); merr == nil {
				if cerr := page.Mouse.Click(proto.InputMouseButtonLeft, 1); cerr == nil {
					return nil
				}
			}
		}
	}

	if _, eerr := el.Eval(`() => this.click()`); eerr == nil {
		return nil
	}

	return err
}
