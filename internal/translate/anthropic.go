package translate

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"doc-translator/internal/types"
)

// maxResponseTokens bounds one batch response; batches are sized well below
// this by the chunking limits.
const maxResponseTokens = 8192

// anthropicBackend talks to the Anthropic Messages API.
type anthropicBackend struct {
	client anthropic.Client
	model  anthropic.Model
}

func newAnthropicBackend(apiKey string, opts Options) (*anthropicBackend, error) {
	if apiKey == "" {
		return nil, types.NewAppError(types.ErrConfig, "Anthropic API key is required", nil)
	}

	model := anthropic.Model(opts.Model)
	if opts.Model == "" {
		model = anthropic.ModelClaudeHaiku4_5
	}

	return &anthropicBackend{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}, nil
}

func (b *anthropicBackend) Name() string {
	return fmt.Sprintf("anthropic/%s", b.model)
}

func (b *anthropicBackend) Complete(ctx context.Context, system, user string) (string, error) {
	message, err := b.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     b.model,
		MaxTokens: maxResponseTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
		Temperature: anthropic.Float(0),
	})
	if err != nil {
		return "", fmt.Errorf("anthropic completion failed: %w", err)
	}
	if message == nil || len(message.Content) == 0 {
		return "", types.NewAppError(types.ErrBadResponse, "empty response from Anthropic", nil)
	}

	var text string
	for _, block := range message.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return "", types.NewAppError(types.ErrBadResponse, "no text in Anthropic response", nil)
	}
	return text, nil
}
