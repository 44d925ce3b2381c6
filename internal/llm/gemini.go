package llm

import (
	"context"
	"fmt"

	"github.com/evidence-toolkit/evitool/internal/schema"
	"google.golang.org/genai"
)

// geminiClient is the third provider option, useful when a case's evidence
// volume makes Gemini's larger context window or pricing preferable.
type geminiClient struct {
	client *genai.Client
	model  string
}

func newGeminiClient(ctx context.Context, apiKey, model string) (*geminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &geminiClient{client: client, model: model}, nil
}

func (c *geminiClient) Provider() Provider { return ProviderGemini }

func (c *geminiClient) Complete(ctx context.Context, req Request) (Result, error) {
	temp := float32(req.Temperature)
	cfg := &genai.GenerateContentConfig{
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
		ResponseSchema:   schemaToGenai(req.Schema),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return Result{}, fmt.Errorf("gemini generate content: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return Result{Status: schema.LLMRefused}, nil
	}

	status := schema.LLMCompleted
	switch resp.Candidates[0].FinishReason {
	case genai.FinishReasonMaxTokens:
		status = schema.LLMIncomplete
	case genai.FinishReasonSafety, genai.FinishReasonRecitation:
		status = schema.LLMRefused
	}

	usage := resp.UsageMetadata
	tokensIn, tokensOut := 0, 0
	if usage != nil {
		tokensIn = int(usage.PromptTokenCount)
		tokensOut = int(usage.CandidatesTokenCount)
	}

	return Result{
		Status:        status,
		Raw:           []byte(resp.Text()),
		Model:         c.model,
		ModelRevision: c.model,
		TokensIn:      tokensIn,
		TokensOut:     tokensOut,
	}, nil
}

// schemaToGenai converts a plain JSON-schema map into genai's typed Schema
// representation for the subset of JSON Schema the analyzers emit (object/
// string/number/boolean/array with required fields).
func schemaToGenai(m map[string]interface{}) *genai.Schema {
	if m == nil {
		return nil
	}
	s := &genai.Schema{}
	if t, ok := m["type"].(string); ok {
		s.Type = genaiType(t)
	}
	if props, ok := m["properties"].(map[string]interface{}); ok {
		s.Properties = map[string]*genai.Schema{}
		for name, raw := range props {
			if sub, ok := raw.(map[string]interface{}); ok {
				s.Properties[name] = schemaToGenai(sub)
			}
		}
	}
	if req, ok := m["required"].([]string); ok {
		s.Required = req
	}
	if items, ok := m["items"].(map[string]interface{}); ok {
		s.Items = schemaToGenai(items)
	}
	return s
}

func genaiType(t string) genai.Type {
	switch t {
	case "object":
		return genai.TypeObject
	case "array":
		return genai.TypeArray
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	default:
		return genai.TypeUnspecified
	}
}
