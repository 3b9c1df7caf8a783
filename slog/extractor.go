package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/clinscrape/clinscrape"
)

// Ensure LoggingProductExtractor implements clinscrape.ProductExtractor.
var _ clinscrape.ProductExtractor = (*LoggingProductExtractor)(nil)

// LoggingProductExtractor wraps a ProductExtractor with debug logging.
// LLM calls are the slowest and most expensive unit of work, so every one is
// worth a log line.
type LoggingProductExtractor struct {
	next   clinscrape.ProductExtractor
	logger *slog.Logger
}

// NewLoggingProductExtractor creates a new LoggingProductExtractor.
func NewLoggingProductExtractor(next clinscrape.ProductExtractor, logger *slog.Logger) *LoggingProductExtractor {
	return &LoggingProductExtractor{next: next, logger: logger}
}

// ExtractProducts delegates to the wrapped extractor and logs the operation.
func (e *LoggingProductExtractor) ExtractProducts(ctx context.Context, text string, sourceURL string) (products []*clinscrape.Product, err error) {
	defer func(begin time.Time) {
		e.logger.Info("product extraction",
			"url", sourceURL,
			"chars", len(text),
			"products", len(products),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.ExtractProducts(ctx, text, sourceURL)
}
