package translate

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"doc-translator/internal/types"
)

const defaultOpenAIModel = "gpt-4o-mini"

// openaiBackend talks to the OpenAI Chat Completions API.
type openaiBackend struct {
	client openai.Client
	model  string
}

func newOpenAIBackend(apiKey string, opts Options) (*openaiBackend, error) {
	if apiKey == "" {
		return nil, types.NewAppError(types.ErrConfig, "OpenAI API key is required", nil)
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}

	model := opts.Model
	if model == "" {
		model = defaultOpenAIModel
	}

	return &openaiBackend{
		client: openai.NewClient(reqOpts...),
		model:  model,
	}, nil
}

func (b *openaiBackend) Name() string {
	return fmt.Sprintf("openai/%s", b.model)
}

func (b *openaiBackend) Complete(ctx context.Context, system, user string) (string, error) {
	completion, err := b.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Model:       b.model,
		Temperature: openai.Float(0),
	})
	if err != nil {
		return "", fmt.Errorf("openai completion failed: %w", err)
	}
	if completion == nil || len(completion.Choices) == 0 {
		return "", types.NewAppError(types.ErrBadResponse, "empty response from OpenAI", nil)
	}

	text := completion.Choices[0].Message.Content
	if text == "" {
		return "", types.NewAppError(types.ErrBadResponse, "no text in OpenAI response", nil)
	}
	return text, nil
}
