package translate

import (
	"context"
	"fmt"

	einoopenai "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/schema"

	"doc-translator/internal/types"
)

// compatBackend talks to any OpenAI-compatible endpoint (Ollama, vLLM, API
// gateways) through the eino chat model. Unlike the hosted providers it
// tolerates an empty API key, which local endpoints usually ignore.
type compatBackend struct {
	model string
	chat  *einoopenai.ChatModel
}

func newCompatBackend(ctx context.Context, apiKey string, opts Options) (*compatBackend, error) {
	if opts.BaseURL == "" {
		return nil, types.NewAppError(types.ErrConfig,
			"compat provider requires a base URL", nil)
	}
	if opts.Model == "" {
		return nil, types.NewAppError(types.ErrConfig,
			"compat provider requires a model name", nil)
	}

	chat, err := einoopenai.NewChatModel(ctx, &einoopenai.ChatModelConfig{
		Model:   opts.Model,
		APIKey:  apiKey,
		BaseURL: opts.BaseURL,
	})
	if err != nil {
		return nil, types.NewAppError(types.ErrConfig, "failed to create compat chat model", err)
	}

	return &compatBackend{model: opts.Model, chat: chat}, nil
}

func (b *compatBackend) Name() string {
	return fmt.Sprintf("compat/%s", b.model)
}

func (b *compatBackend) Complete(ctx context.Context, system, user string) (string, error) {
	msg, err := b.chat.Generate(ctx, []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(user),
	})
	if err != nil {
		return "", fmt.Errorf("compat completion failed: %w", err)
	}
	if msg == nil || msg.Content == "" {
		return "", types.NewAppError(types.ErrBadResponse, "no text in compat response", nil)
	}
	return msg.Content, nil
}
