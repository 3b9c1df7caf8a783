package mock

import (
	"context"

	"github.com/clinscrape/clinscrape"
)

var _ clinscrape.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of clinscrape.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*clinscrape.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*clinscrape.ExtractResult, error) {
	return e.ExtractFn(html)
}

var _ clinscrape.Converter = (*Converter)(nil)

// Converter is a mock implementation of clinscrape.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}

var _ clinscrape.ProductExtractor = (*ProductExtractor)(nil)

// ProductExtractor is a mock implementation of clinscrape.ProductExtractor.
type ProductExtractor struct {
	ExtractProductsFn func(ctx context.Context, text string, sourceURL string) ([]*clinscrape.Product, error)
}

func (e *ProductExtractor) ExtractProducts(ctx context.Context, text string, sourceURL string) ([]*clinscrape.Product, error) {
	return e.ExtractProductsFn(ctx, text, sourceURL)
}
