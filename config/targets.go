package config

import (
	"time"

	"github.com/clinscrape/clinscrape"
)

// BuiltinTargets returns the builtin table of known clinic sites. Each entry
// encodes how that site is best scraped: sitemap crawl, fixed URL list, or
// browser interaction for script-rendered pages.
func BuiltinTargets() []*clinscrape.Target {
	return []*clinscrape.Target{
		{
			Key:      "ppeum",
			SiteName: "Ppeum Clinic",
			BaseURL:  "https://global.ppeum.com",
			Strategy: clinscrape.SourceSPA,
			SPA: &clinscrape.SPAConfig{
				WaitSelector: ".event_list",
				ClickSelectors: []string{
					".category_tab a",
					".event_tab li",
				},
				EnableScroll:    true,
				StepWait:        2 * time.Second,
				MaxInteractions: 30,
			},
			PriorityKeywords: []string{"event", "이벤트"},
			RateDelay:        time.Second,
		},
		{
			Key:              "xenia",
			SiteName:         "Xenia Clinic",
			BaseURL:          "https://xenia.clinic",
			Strategy:         clinscrape.SourceSitemap,
			PriorityKeywords: []string{"price", "treatment", "시술"},
			ExcludeKeywords:  []string{"recruit", "column"},
			RateDelay:        time.Second,
		},
		{
			Key:              "oracle",
			SiteName:         "Oracle Clinic",
			BaseURL:          "https://oracleclinic.com",
			Strategy:         clinscrape.SourceSitemap,
			PriorityKeywords: []string{"program", "이벤트"},
			RateDelay:        2 * time.Second,
		},
		{
			Key:      "tlclinic",
			SiteName: "TL Clinic",
			BaseURL:  "https://tl-clinic.com",
			Strategy: clinscrape.SourceStatic,
			StaticURLs: []string{
				"https://tl-clinic.com/price",
				"https://tl-clinic.com/event",
			},
			RateDelay: time.Second,
		},
		{
			Key:              "banobagi",
			SiteName:         "Banobagi Plastic Surgery",
			BaseURL:          "https://banobagi.com",
			Strategy:         clinscrape.SourceSitemap,
			PriorityKeywords: []string{"petit", "skin", "event"},
			RateDelay:        2 * time.Second,
		},
	}
}
