// Package gemini implements the LLM provider interface using Google Gemini.
package gemini

import (
	"context"

	"github.com/clinscrape/clinscrape"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Extraction wants determinism, not creativity.
const temperature = float32(0.1)

// Ensure Provider implements clinscrape.LLMProvider at compile time.
var _ clinscrape.LLMProvider = (*Provider)(nil)

// Provider implements clinscrape.LLMProvider using Google Gemini.
type Provider struct {
	client *genai.Client
	model  string
}

// NewProvider creates a Provider over an authenticated genai client.
// An empty model selects DefaultModel.
func NewProvider(client *genai.Client, model string) *Provider {
	if model == "" {
		model = DefaultModel
	}
	return &Provider{client: client, model: model}
}

// Generate sends the prompt and returns the raw response text.
func (p *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", clinscrape.Errorf(clinscrape.EINVALID, "prompt required")
	}

	result, err := p.client.Models.GenerateContent(ctx, p.model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: prompt}},
		}},
		buildConfig(),
	)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", clinscrape.Errorf(clinscrape.EINTERNAL, "gemini returned nil result")
	}

	return result.Text(), nil
}

// Model returns the model identifier.
func (p *Provider) Model() string {
	return p.model
}

// buildConfig returns the GenerateContentConfig for extraction calls.
func buildConfig() *genai.GenerateContentConfig {
	temp := temperature
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You are a precise data extraction system. You respond with exactly the JSON requested and nothing else.",
			}},
		},
		Temperature: &temp,
	}
}
