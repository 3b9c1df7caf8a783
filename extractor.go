package clinscrape

import "context"

// ExtractResult holds the extracted content from an HTML page.
type ExtractResult struct {
	// Title is the page title extracted from metadata.
	Title string

	// ContentHTML is the main content as clean HTML.
	// Boilerplate (script, style, nav, footer, header) has been removed.
	ContentHTML string
}

// Extractor extracts main content from HTML pages, removing boilerplate.
type Extractor interface {
	// Extract processes raw HTML and returns the main content.
	Extract(html string) (*ExtractResult, error)
}

// Converter converts clean HTML content into text suitable for LLM input.
type Converter interface {
	// Convert transforms HTML content into Markdown.
	Convert(html string) (string, error)
}

// ProductExtractor turns normalized page text into typed product records
// using an LLM call.
type ProductExtractor interface {
	// ExtractProducts prompts the model with the page text and parses its
	// response into products. Input below the minimum meaningful length is
	// skipped and returns an empty slice with a nil error. A non-nil error
	// indicates a provider failure after retries were exhausted; parse
	// failures are absorbed and reported as an empty slice.
	ExtractProducts(ctx context.Context, text string, sourceURL string) ([]*Product, error)
}
