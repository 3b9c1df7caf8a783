package extract

import (
	"net/url"
	"strings"
)

// knownSites maps registered domains to their human-readable clinic labels.
// Looked up with and without a www prefix and against parent domains, so
// global.ppeum.com resolves through ppeum.com.
var knownSites = map[string]string{
	"ppeum.com":        "Ppeum Clinic",
	"xenia.clinic":     "Xenia Clinic",
	"oracleclinic.com": "Oracle Clinic",
	"tl-clinic.com":    "TL Plastic Surgery",
	"banobagi.com":     "Banobagi",
}

// ClinicNameFromURL derives a clinic label from a page URL when the model
// omits clinic_name: known sites from the static table, otherwise the
// title-cased first domain label.
func ClinicNameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.ToLower(strings.TrimPrefix(u.Hostname(), "www."))

	// Walk up the domain: global.ppeum.com, ppeum.com.
	labels := strings.Split(host, ".")
	for i := 0; i < len(labels)-1; i++ {
		if name, ok := knownSites[strings.Join(labels[i:], ".")]; ok {
			return name
		}
	}

	first := labels[0]
	if first == "" {
		return ""
	}
	return strings.ToUpper(first[:1]) + first[1:]
}
