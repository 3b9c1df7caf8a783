// Package anthropic implements the LLM provider interface using the
// Anthropic Messages API over plain HTTP.
package anthropic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/clinscrape/clinscrape"
	"github.com/go-resty/resty/v2"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-3-5-haiku-latest"

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"
	maxTokens      = 8192
	requestTimeout = 2 * time.Minute
)

// Ensure Provider implements clinscrape.LLMProvider at compile time.
var _ clinscrape.LLMProvider = (*Provider)(nil)

// Provider implements clinscrape.LLMProvider against the Messages API.
type Provider struct {
	client *resty.Client
	model  string
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithBaseURL overrides the API endpoint. Used for testing.
func WithBaseURL(u string) ProviderOption {
	return func(p *Provider) { p.client.SetBaseURL(u) }
}

// NewProvider creates a Provider with the given API key.
// An empty model selects DefaultModel.
func NewProvider(apiKey, model string, opts ...ProviderOption) *Provider {
	if model == "" {
		model = DefaultModel
	}
	client := resty.New().
		SetBaseURL(defaultBaseURL).
		SetTimeout(requestTimeout).
		SetHeader("x-api-key", apiKey).
		SetHeader("anthropic-version", apiVersion).
		SetHeader("content-type", "application/json")
	p := &Provider{client: client, model: model}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
	Error   *apiError      `json:"error"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Generate sends the prompt and returns the concatenated response text.
// Rate-limit responses surface the HTTP status in the error message so the
// extraction client's retry classifier can recognize them.
func (p *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", clinscrape.Errorf(clinscrape.EINVALID, "prompt required")
	}

	var result messagesResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(messagesRequest{
			Model:     p.model,
			MaxTokens: maxTokens,
			Messages:  []message{{Role: "user", Content: prompt}},
		}).
		SetResult(&result).
		SetError(&result).
		Post("/v1/messages")
	if err != nil {
		return "", err
	}

	if resp.IsError() {
		msg := resp.Status()
		if result.Error != nil {
			msg = fmt.Sprintf("%s: %s (%s)", resp.Status(), result.Error.Message, result.Error.Type)
		}
		code := clinscrape.EUNAVAILABLE
		if resp.StatusCode() == 429 {
			code = clinscrape.ERATELIMIT
		}
		return "", clinscrape.Errorf(code, "anthropic: %s", msg)
	}

	var b strings.Builder
	for _, block := range result.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", clinscrape.Errorf(clinscrape.EINTERNAL, "anthropic returned no text content")
	}
	return b.String(), nil
}

// Model returns the model identifier.
func (p *Provider) Model() string {
	return p.model
}
