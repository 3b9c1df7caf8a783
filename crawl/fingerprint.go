package crawl

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// fingerprintPrefix bounds how much of the HTML feeds the fingerprint.
// Clinic pages differ early (menus, headings, product lists render near the
// top), so hashing a prefix is enough to tell content states apart without
// paying for multi-megabyte documents.
const fingerprintPrefix = 64 * 1024

// Fingerprint computes a cheap content signature of rendered HTML.
// It is a dedup gate within a single scrape session, nothing more: collisions
// are acceptable, the value is never persisted.
func Fingerprint(html string) string {
	if len(html) > fingerprintPrefix {
		html = html[:fingerprintPrefix]
	}
	return fmt.Sprintf("%016x", xxhash.Sum64String(html))
}

// fingerprintSet tracks content states already processed in a session.
type fingerprintSet map[string]bool

// seen records the fingerprint and reports whether it was already present.
func (s fingerprintSet) seen(fp string) bool {
	if s[fp] {
		return true
	}
	s[fp] = true
	return false
}
