package clinscrape

import (
	"context"
	"time"
)

// Run records one completed scrape of one target.
type Run struct {
	ID         string        `json:"id"`
	TargetKey  string        `json:"targetKey"`
	SiteName   string        `json:"siteName"`
	Provider   string        `json:"provider"`
	Model      string        `json:"model"`
	Products   int           `json:"products"`
	Treatments int           `json:"treatments"`
	Pages      int           `json:"pages"`
	Failed     int           `json:"failed"`
	StartedAt  time.Time     `json:"startedAt"`
	Duration   time.Duration `json:"duration"`
}

// Validate returns an error if the run contains invalid fields.
func (r *Run) Validate() error {
	if r.TargetKey == "" {
		return Errorf(EINVALID, "run target key required")
	}
	if r.SiteName == "" {
		return Errorf(EINVALID, "run site name required")
	}
	return nil
}

// RunService persists scrape runs and their products.
type RunService interface {
	// CreateRun stores a run together with its extracted products.
	CreateRun(ctx context.Context, run *Run, products []*Product) error

	// FindRuns retrieves runs, most recent first.
	FindRuns(ctx context.Context, filter RunFilter) ([]*Run, error)

	// FindProductsByRun retrieves the products stored for a run.
	// Returns ENOTFOUND if the run does not exist.
	FindProductsByRun(ctx context.Context, runID string) ([]*Product, error)
}

// RunFilter represents a filter for FindRuns.
type RunFilter struct {
	TargetKey *string `json:"targetKey"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
