package translate

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"doc-translator/internal/types"
)

const defaultGeminiModel = "gemini-2.5-flash"

// geminiBackend talks to the Google Gemini API.
type geminiBackend struct {
	client *genai.Client
	model  string
}

func newGeminiBackend(ctx context.Context, apiKey string, opts Options) (*geminiBackend, error) {
	if apiKey == "" {
		return nil, types.NewAppError(types.ErrConfig, "Gemini API key is required", nil)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, types.NewAppError(types.ErrConfig, "failed to create Gemini client", err)
	}

	model := opts.Model
	if model == "" {
		model = defaultGeminiModel
	}

	return &geminiBackend{client: client, model: model}, nil
}

func (b *geminiBackend) Name() string {
	return fmt.Sprintf("gemini/%s", b.model)
}

func (b *geminiBackend) Complete(ctx context.Context, system, user string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(user)}, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromParts(
			[]*genai.Part{genai.NewPartFromText(system)}, genai.RoleUser),
		Temperature: genai.Ptr[float32](0),
	}

	result, err := b.client.Models.GenerateContent(ctx, b.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini completion failed: %w", err)
	}
	if result == nil || len(result.Candidates) == 0 {
		return "", types.NewAppError(types.ErrBadResponse, "empty response from Gemini", nil)
	}

	var text string
	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				text += part.Text
			}
		}
		if text != "" {
			break
		}
	}
	if text == "" {
		return "", types.NewAppError(types.ErrBadResponse, "no text in Gemini response", nil)
	}
	return text, nil
}
