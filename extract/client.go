// Package extract turns normalized clinic page text into typed product
// records through an LLM provider, with rate limiting, bounded retries, and
// defensive response parsing.
package extract

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/clinscrape/clinscrape"
	"golang.org/x/time/rate"
)

// Input handling defaults.
const (
	// MinInputLength is the minimum meaningful page text; anything shorter
	// is skipped without a provider call.
	MinInputLength = 100

	// DefaultMaxInputChars bounds the page text included in the prompt.
	DefaultMaxInputChars = 30000

	// DefaultRequestsPerMinute is the provider call budget.
	DefaultRequestsPerMinute = 10
)

// Retry policy for rate-limited provider calls.
const (
	maxRetries            = 3
	defaultRetryBaseDelay = 2 * time.Second
)

// rateLimitSignals are substrings in provider error messages that indicate a
// retryable rate-limit condition. Anything else aborts immediately: a
// deterministic prompt or input problem will not get better on retry.
var rateLimitSignals = []string{
	"429",
	"rate limit",
	"too many requests",
	"quota",
	"exceeded",
	"resource_exhausted",
}

// Ensure Client implements clinscrape.ProductExtractor at compile time.
var _ clinscrape.ProductExtractor = (*Client)(nil)

// Client is an LLM-backed product extractor. It is safe for concurrent use;
// the internal limiter serializes provider calls to the configured budget.
type Client struct {
	provider   clinscrape.LLMProvider
	logger     *slog.Logger
	limiter    *rate.Limiter
	maxChars   int
	retryDelay time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets the logger for retry and parse-failure diagnostics.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// WithMaxInputChars overrides the per-call input character budget.
func WithMaxInputChars(n int) ClientOption {
	return func(c *Client) { c.maxChars = n }
}

// WithRequestsPerMinute overrides the provider call budget.
func WithRequestsPerMinute(rpm int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1)
	}
}

// WithRetryBaseDelay overrides the base backoff delay. Useful in tests.
func WithRetryBaseDelay(d time.Duration) ClientOption {
	return func(c *Client) { c.retryDelay = d }
}

// NewClient creates a Client over the given provider.
func NewClient(provider clinscrape.LLMProvider, opts ...ClientOption) *Client {
	c := &Client{
		provider:   provider,
		logger:     slog.Default(),
		limiter:    rate.NewLimiter(rate.Every(time.Minute/DefaultRequestsPerMinute), 1),
		maxChars:   DefaultMaxInputChars,
		retryDelay: defaultRetryBaseDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ExtractProducts prompts the model with the page text and parses the
// response into products. Text below MinInputLength returns an empty slice
// immediately. Parse failures are absorbed (logged, empty slice); a non-nil
// error means the provider failed and retries, if applicable, were
// exhausted.
func (c *Client) ExtractProducts(ctx context.Context, text string, sourceURL string) ([]*clinscrape.Product, error) {
	text = strings.TrimSpace(text)
	if len(text) < MinInputLength {
		return []*clinscrape.Product{}, nil
	}

	prompt := BuildPrompt(Truncate(text, c.maxChars))

	raw, err := c.generateWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	parsed, err := parseResponse(raw)
	if err != nil {
		// The orchestrator's unit loop, not this call, decides whether the
		// page is attempted again; log the raw response for diagnosis.
		c.logger.Warn("unparseable extraction response",
			"url", sourceURL,
			"model", c.provider.Model(),
			"err", err,
			"response", Truncate(raw, 2000),
		)
		return []*clinscrape.Product{}, nil
	}

	return mapPayload(parsed, sourceURL), nil
}

// generateWithRetry enforces the inter-request budget and retries only on
// rate-limit-signaled errors, with exponential backoff.
func (c *Client) generateWithRetry(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}

		resp, err := c.provider.Generate(ctx, prompt)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !isRateLimited(err) || attempt == maxRetries {
			return "", err
		}

		delay := c.retryDelay * (1 << attempt)
		c.logger.Warn("provider rate limited, backing off",
			"model", c.provider.Model(),
			"attempt", attempt+1,
			"delay", delay,
		)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}
	return "", lastErr
}

// isRateLimited reports whether the error signals rate limiting, either by
// application code or by keywords in the message.
func isRateLimited(err error) bool {
	if clinscrape.ErrorCode(err) == clinscrape.ERATELIMIT {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, signal := range rateLimitSignals {
		if strings.Contains(msg, signal) {
			return true
		}
	}
	return false
}
