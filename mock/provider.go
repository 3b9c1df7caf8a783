package mock

import (
	"context"

	"github.com/clinscrape/clinscrape"
)

var _ clinscrape.LLMProvider = (*LLMProvider)(nil)

// LLMProvider is a mock implementation of clinscrape.LLMProvider.
type LLMProvider struct {
	GenerateFn func(ctx context.Context, prompt string) (string, error)
	ModelFn    func() string
}

func (p *LLMProvider) Generate(ctx context.Context, prompt string) (string, error) {
	return p.GenerateFn(ctx, prompt)
}

func (p *LLMProvider) Model() string {
	if p.ModelFn == nil {
		return "mock-model"
	}
	return p.ModelFn()
}
