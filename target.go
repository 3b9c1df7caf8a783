package clinscrape

import "time"

// SourceStrategy selects how URLs or content states are discovered for a site.
type SourceStrategy string

// Supported source strategies.
const (
	// SourceSitemap probes conventional sitemap paths and crawls the result.
	SourceSitemap SourceStrategy = "sitemap"
	// SourceStatic crawls a fixed list of configured URLs, optionally
	// expanding the frontier with scored links found on those pages.
	SourceStatic SourceStrategy = "static"
	// SourceSPA drives browser interactions against a single entry page.
	SourceSPA SourceStrategy = "spa"
)

// SPAConfig holds parameters for the SPA interaction strategy.
type SPAConfig struct {
	// WaitSelector, when set, is waited for (non-fatally) after navigation
	// before the first content snapshot.
	WaitSelector string `yaml:"wait_selector"`

	// ClickSelectors are site-specific selector candidates tried before the
	// generic priority classes, in order.
	ClickSelectors []string `yaml:"click_selectors"`

	// EnableScroll allows scrolling to the bottom of the page as the
	// lowest-priority interaction.
	EnableScroll bool `yaml:"enable_scroll"`

	// StepWait is how long to let the page settle after each interaction.
	StepWait time.Duration `yaml:"step_wait"`

	// MaxInteractions bounds the number of interaction steps per session.
	MaxInteractions int `yaml:"max_interactions"`
}

// Target describes how to reach and scrape one clinic site. Targets are
// built at startup from the builtin table or a config file and never mutated
// during a scrape.
type Target struct {
	// Key is the short identifier used on the command line.
	Key string `yaml:"key"`

	// SiteName is the human-readable clinic/site label, also used as the
	// source channel on extracted products.
	SiteName string `yaml:"site_name"`

	BaseURL  string         `yaml:"base_url"`
	Strategy SourceStrategy `yaml:"strategy"`

	// StaticURLs is the fixed URL list for SourceStatic, or the single entry
	// page for SourceSPA when it differs from BaseURL.
	StaticURLs []string `yaml:"static_urls"`

	// RateDelay is the minimum delay between requests to this site.
	RateDelay time.Duration `yaml:"rate_delay"`

	SPA *SPAConfig `yaml:"spa"`

	// PriorityKeywords boost URL scores in addition to the generic bilingual
	// keyword list; ExcludeKeywords drop matching URLs outright.
	PriorityKeywords []string `yaml:"priority_keywords"`
	ExcludeKeywords  []string `yaml:"exclude_keywords"`

	// MaxPages bounds processed units (pages or interactions). Zero means
	// the orchestrator default.
	MaxPages int `yaml:"max_pages"`

	// MaxDuration bounds wall-clock time for the whole target. Zero means
	// the orchestrator default.
	MaxDuration time.Duration `yaml:"max_duration"`
}

// Validate returns an error if the target contains invalid fields.
func (t *Target) Validate() error {
	if t.Key == "" {
		return Errorf(EINVALID, "target key required")
	}
	if t.SiteName == "" {
		return Errorf(EINVALID, "target site name required")
	}
	if t.BaseURL == "" {
		return Errorf(EINVALID, "target base URL required")
	}
	switch t.Strategy {
	case SourceSitemap:
	case SourceStatic:
		if len(t.StaticURLs) == 0 {
			return Errorf(EINVALID, "static target %q has no URLs", t.Key)
		}
	case SourceSPA:
		if t.SPA == nil {
			return Errorf(EINVALID, "SPA target %q has no SPA config", t.Key)
		}
	default:
		return Errorf(EINVALID, "unknown source strategy %q", t.Strategy)
	}
	return nil
}

// EntryURL returns the URL the scrape starts from: the first static URL if
// configured, otherwise the base URL.
func (t *Target) EntryURL() string {
	if len(t.StaticURLs) > 0 {
		return t.StaticURLs[0]
	}
	return t.BaseURL
}
