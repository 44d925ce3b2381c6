package llm

import (
	"context"
	"fmt"

	"github.com/evidence-toolkit/evitool/internal/schema"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// openAIResponsesClient is the primary provider backend: the Responses-
// style structured-output call (prompt + JSON schema in, one fully parsed
// object out) the spec requires, implemented atop openai-go/v3's chat
// completions resource with a JSON-schema response format.
type openAIResponsesClient struct {
	client openai.Client
	model  string
}

func newOpenAIResponsesClient(apiKey, model string) *openAIResponsesClient {
	return &openAIResponsesClient{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (c *openAIResponsesClient) Provider() Provider { return ProviderOpenAIResponses }

func (c *openAIResponsesClient) Complete(ctx context.Context, req Request) (Result, error) {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
		Model:       openai.ChatModel(c.model),
		Temperature: openai.Float(req.Temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   req.SchemaName,
					Schema: req.Schema,
					Strict: openai.Bool(true),
				},
			},
		},
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Result{}, fmt.Errorf("openai responses call: %w", err)
	}
	if len(completion.Choices) == 0 {
		return Result{Status: schema.LLMRefused}, nil
	}

	choice := completion.Choices[0]
	status := schema.LLMCompleted
	switch choice.FinishReason {
	case "length":
		status = schema.LLMIncomplete
	case "content_filter":
		status = schema.LLMRefused
	}

	return Result{
		Status:        status,
		Raw:           []byte(choice.Message.Content),
		Model:         c.model,
		ModelRevision: string(completion.Model),
		TokensIn:      int(completion.Usage.PromptTokens),
		TokensOut:     int(completion.Usage.CompletionTokens),
	}, nil
}
