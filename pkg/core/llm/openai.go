package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"
)

const defaultOpenAIModel = shared.ResponsesModel("gpt-4o-mini")

// OpenAIProvider implements the Provider interface on the OpenAI Responses
// API.
type OpenAIProvider struct {
	client *openai.Client
	model  shared.ResponsesModel
}

var _ Provider = (*OpenAIProvider)(nil)

// NewOpenAIProviderFromEnv builds an OpenAIProvider using the OPENAI_API_KEY
// env var.
func NewOpenAIProviderFromEnv(model string) (*OpenAIProvider, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY: %w", ErrMissingAPIKey)
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	m := defaultOpenAIModel
	if model != "" {
		m = shared.ResponsesModel(model)
	}
	return &OpenAIProvider{client: &client, model: m}, nil
}

// GenerateResponse sends the prompts through the Responses API and returns
// the assistant's answer text.
func (p *OpenAIProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	if p == nil || p.client == nil {
		return "", fmt.Errorf("OpenAIProvider is not initialized")
	}

	model := p.model
	if val, ok := options["model"].(string); ok && val != "" {
		model = shared.ResponsesModel(val)
	}

	input := responses.ResponseInputParam{}
	if systemPrompt != "" {
		input = append(input, responses.ResponseInputItemParamOfMessage(systemPrompt, responses.EasyInputMessageRoleSystem))
	}
	input = append(input, responses.ResponseInputItemParamOfMessage(prompt, responses.EasyInputMessageRoleUser))

	resp, err := p.client.Responses.New(ctx, responses.ResponseNewParams{
		Model: model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: input,
		},
	})
	if err != nil {
		return "", fmt.Errorf("call OpenAI: %w", err)
	}

	return strings.TrimSpace(resp.OutputText()), nil
}
