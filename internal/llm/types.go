// Package llm wraps the remote structured-output LLM service behind a
// single provider-agnostic contract: a prompt plus a JSON schema in, a
// parsed, validated object out, with determinism pinned via temperature 0
// (spec §4.3).
package llm

import (
	"context"

	"github.com/evidence-toolkit/evitool/internal/schema"
)

// Provider identifies which backend a Client dispatches to.
type Provider string

const (
	ProviderOpenAIResponses Provider = "openai-responses"
	ProviderOpenAIChat      Provider = "openai-chat"
	ProviderGemini          Provider = "gemini"
)

// Request is one structured-output call: a natural-language prompt plus
// the JSON schema the response must conform to.
type Request struct {
	Prompt      string
	SchemaName  string
	Schema      map[string]interface{}
	Temperature float64
	MaxTokens   int
	PromptHash  string
}

// Result is the outcome of a structured-output call. Raw holds the
// provider's parsed JSON payload; callers unmarshal it into the concrete
// schema type (DocumentAnalysis, ImageAnalysisStructured, ...).
type Result struct {
	Status        schema.LLMStatus
	Raw           []byte
	Model         string
	ModelRevision string
	TokensIn      int
	TokensOut     int
}

// StructuredClient is the contract every provider backend implements.
type StructuredClient interface {
	Complete(ctx context.Context, req Request) (Result, error)
	Provider() Provider
}
