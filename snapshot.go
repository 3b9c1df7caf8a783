package clinscrape

import "context"

// Snapshot is one distinct rendered content state captured during a scrape,
// kept for offline diagnosis of extraction problems.
type Snapshot struct {
	URL string
	// Step is the interaction step the state was captured at; zero for the
	// initial render and for non-SPA fetches.
	Step    int
	Title   string
	Content string // Markdown
}

// SnapshotStore persists snapshots with atomic semantics.
// Save writes to a temporary location; Commit makes changes permanent;
// Abort discards pending changes.
type SnapshotStore interface {
	Save(ctx context.Context, snap *Snapshot) error
	Commit() error
	Abort() error
}
