package llm

import (
	"context"
	"errors"
)

// Client abstracts text-generation providers. Implementations return the raw
// model text in all cases; parsing never happens at this layer.
type Client interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// GenerateRequest carries a composed prompt and sampling constraints.
type GenerateRequest struct {
	System    string
	Prompt    string
	MaxTokens int
	// JSONMode requests a structured (JSON-biased) response format. When the
	// provider rejects it with a format-related error, implementations fall
	// back to plain text once with identical content constraints.
	JSONMode bool
}

var (
	// ErrGenerationFailed wraps provider errors after the plain-text retry
	// has been exhausted.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrGenerationTimeout marks a provider call that exceeded the bound.
	ErrGenerationTimeout = errors.New("generation timeout")
)
