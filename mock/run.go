package mock

import (
	"context"

	"github.com/clinscrape/clinscrape"
)

var _ clinscrape.RunService = (*RunService)(nil)

// RunService is a mock implementation of clinscrape.RunService.
type RunService struct {
	CreateRunFn         func(ctx context.Context, run *clinscrape.Run, products []*clinscrape.Product) error
	FindRunsFn          func(ctx context.Context, filter clinscrape.RunFilter) ([]*clinscrape.Run, error)
	FindProductsByRunFn func(ctx context.Context, runID string) ([]*clinscrape.Product, error)
}

func (s *RunService) CreateRun(ctx context.Context, run *clinscrape.Run, products []*clinscrape.Product) error {
	return s.CreateRunFn(ctx, run, products)
}

func (s *RunService) FindRuns(ctx context.Context, filter clinscrape.RunFilter) ([]*clinscrape.Run, error) {
	return s.FindRunsFn(ctx, filter)
}

func (s *RunService) FindProductsByRun(ctx context.Context, runID string) ([]*clinscrape.Product, error) {
	return s.FindProductsByRunFn(ctx, runID)
}
