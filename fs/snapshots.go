// Package fs provides file-based persistence: page snapshots captured during
// a scrape and product exports.
package fs

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/clinscrape/clinscrape"
)

// Ensure SnapshotStore implements clinscrape.SnapshotStore at compile time.
var _ clinscrape.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore saves page snapshots as markdown files with atomic update
// semantics: snapshots are written to a temporary directory and moved into
// place on Commit, so a crashed run never leaves a half-written snapshot set.
type SnapshotStore struct {
	baseDir string
	name    string
}

// NewSnapshotStore creates a SnapshotStore.
// baseDir is the parent directory, name the output directory name. Files are
// saved to baseDir/name.tmp and moved to baseDir/name on Commit.
func NewSnapshotStore(baseDir, name string) *SnapshotStore {
	return &SnapshotStore{baseDir: baseDir, name: name}
}

func (s *SnapshotStore) tempDir() string {
	return filepath.Join(s.baseDir, s.name+".tmp")
}

func (s *SnapshotStore) finalDir() string {
	return filepath.Join(s.baseDir, s.name)
}

// Save writes one snapshot into the pending temporary directory.
func (s *SnapshotStore) Save(ctx context.Context, snap *clinscrape.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	relPath, err := SnapshotPath(snap)
	if err != nil {
		return err
	}

	fullPath := filepath.Join(s.tempDir(), relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(fullPath, []byte(FormatSnapshot(snap)), 0644)
}

// Commit atomically replaces the final directory with the pending one.
func (s *SnapshotStore) Commit() error {
	if _, err := os.Stat(s.tempDir()); os.IsNotExist(err) {
		return nil // nothing was saved
	}
	if err := os.RemoveAll(s.finalDir()); err != nil {
		return err
	}
	return os.Rename(s.tempDir(), s.finalDir())
}

// Abort discards pending snapshots.
func (s *SnapshotStore) Abort() error {
	return os.RemoveAll(s.tempDir())
}

// SnapshotPath converts a snapshot to a relative markdown file path.
// Example: https://x.clinic/ko/lifting at step 3 → ko/lifting.step-3.md
func SnapshotPath(snap *clinscrape.Snapshot) (string, error) {
	u, err := url.Parse(snap.URL)
	if err != nil {
		return "", err
	}

	path := strings.TrimPrefix(u.Path, "/")
	switch {
	case path == "":
		path = "index"
	case strings.HasSuffix(path, "/"):
		path += "index"
	}

	if snap.Step > 0 {
		return fmt.Sprintf("%s.step-%d.md", path, snap.Step), nil
	}
	return path + ".md", nil
}

// FormatSnapshot renders a snapshot with YAML frontmatter.
func FormatSnapshot(snap *clinscrape.Snapshot) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("source: ")
	b.WriteString(snap.URL)
	fmt.Fprintf(&b, "\nstep: %d", snap.Step)
	b.WriteString("\ntitle: ")
	b.WriteString(snap.Title)
	b.WriteString("\ncaptured: ")
	b.WriteString(time.Now().Format("2006-01-02"))
	b.WriteString("\n---\n\n")
	b.WriteString(snap.Content)
	return b.String()
}
