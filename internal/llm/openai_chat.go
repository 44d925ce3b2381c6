package llm

import (
	"context"
	"fmt"

	"github.com/evidence-toolkit/evitool/internal/schema"
	openaichat "github.com/sashabaranov/go-openai"
)

// openAIChatClient is the simpler classic chat-completions backend,
// selected only when the configured provider is "openai-chat"; NewClient
// never switches to it on its own when another backend fails.
type openAIChatClient struct {
	client *openaichat.Client
	model  string
}

func newOpenAIChatClient(apiKey, model string) *openAIChatClient {
	return &openAIChatClient{
		client: openaichat.NewClient(apiKey),
		model:  model,
	}
}

func (c *openAIChatClient) Provider() Provider { return ProviderOpenAIChat }

func (c *openAIChatClient) Complete(ctx context.Context, req Request) (Result, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openaichat.ChatCompletionRequest{
		Model:       c.model,
		Temperature: float32(req.Temperature),
		Messages: []openaichat.ChatCompletionMessage{
			{Role: openaichat.ChatMessageRoleUser, Content: req.Prompt},
		},
		ResponseFormat: &openaichat.ChatCompletionResponseFormat{
			Type: openaichat.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openaichat.ChatCompletionResponseFormatJSONSchema{
				Name:   req.SchemaName,
				Schema: req.Schema,
				Strict: true,
			},
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("openai chat fallback call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Result{Status: schema.LLMRefused}, nil
	}

	choice := resp.Choices[0]
	status := schema.LLMCompleted
	switch choice.FinishReason {
	case openaichat.FinishReasonLength:
		status = schema.LLMIncomplete
	case openaichat.FinishReasonContentFilter:
		status = schema.LLMRefused
	}

	return Result{
		Status:        status,
		Raw:           []byte(choice.Message.Content),
		Model:         c.model,
		ModelRevision: resp.Model,
		TokensIn:      resp.Usage.PromptTokens,
		TokensOut:     resp.Usage.CompletionTokens,
	}, nil
}
