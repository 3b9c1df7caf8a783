package clinscrape

import "context"

// LLMProvider is the minimal surface of a large-language-model vendor SDK.
// The model is an opaque oracle: the system only prompts it and parses its
// textual response defensively.
type LLMProvider interface {
	// Generate sends the prompt and returns the raw response text.
	Generate(ctx context.Context, prompt string) (string, error)

	// Model returns the model identifier, for run metadata.
	Model() string
}
