package clinscrape

import "context"

// ErrNoMoreElements is returned by Session.Interact when no untried clickable
// element remains and the scroll fallback is unavailable. The orchestrator
// treats it as the end of the interaction loop for that page.
var ErrNoMoreElements = Errorf(ENOTFOUND, "no interactable elements remain")

// TriedSet records signatures of interactions already performed in a session.
// A signature is added only after a successful interaction, so transiently
// occluded elements stay retryable.
type TriedSet map[string]bool

// Session is a live browser page used by the SPA interaction strategy.
// A session is inherently sequential: one page, one interaction at a time.
type Session interface {
	// HTML returns the current rendered HTML of the page.
	HTML(ctx context.Context) (string, error)

	// Interact selects and performs one UI interaction from a prioritized
	// list of selector classes, skipping elements whose signature is in
	// tried, and returns the signature of the element it acted on.
	// Scrolling to the bottom of the page is the final fallback when
	// enabled. Returns ErrNoMoreElements when nothing remains.
	Interact(ctx context.Context, tried TriedSet) (signature string, err error)

	// Close releases the page. Safe to call on every exit path.
	Close() error
}

// SessionOpener opens interactive browser sessions for SPA targets.
type SessionOpener interface {
	// Open navigates a fresh page to url and waits for it to settle
	// according to cfg. The caller owns the returned session.
	Open(ctx context.Context, url string, cfg *SPAConfig) (Session, error)

	// Close releases the underlying browser.
	Close() error
}
