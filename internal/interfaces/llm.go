package interfaces

import "context"

// Generator is a language-model backend. GenerateJSON asks the model for a
// single JSON object and returns the raw response text.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}
