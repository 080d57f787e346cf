// Package generation is the client for the text-generation collaborator.
// The orchestration layer constructs prompts and hands them to a Generator;
// it never talks to the underlying model API directly.
package generation

import (
	"context"

	"github.com/drishiq/concierge/internal/domain"
)

// Request is one generation call: a model, an ordered input array, and
// sampling parameters.
type Request struct {
	Model       string           `json:"model"`
	Input       []domain.Message `json:"input"`
	Temperature float64          `json:"temperature"`
	MaxTokens   int              `json:"max_tokens,omitempty"`
}

// Generator is the capability the intake components depend on. Generate
// returns the normalized text content; callers treat an error or an empty
// result identically and fall back to lower-fidelity copy.
type Generator interface {
	Generate(ctx context.Context, req *Request) (string, error)
}
