package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

type geminiConfig struct {
	APIKey string `json:"api_key"`
}

type geminiProvider struct {
	client *genai.Client
}

func init() {
	Register("gemini", createGeminiProvider)
}

func createGeminiProvider(args interface{}) (Provider, error) {
	cfg := &geminiConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api_key missing: %w", ErrUnavailable)
	}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &geminiProvider{client: client}, nil
}

func (p *geminiProvider) Name() string {
	return "gemini"
}

func (p *geminiProvider) Embed(ctx context.Context, model string, text string, task EmbedTask) ([]float32, Usage, error) {
	if task == "" {
		task = TaskDocument
	}
	resp, err := p.client.Models.EmbedContent(
		ctx,
		model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: text}}}},
		&genai.EmbedContentConfig{TaskType: string(task)},
	)
	if err != nil {
		return nil, Usage{}, mapGeminiError(err)
	}
	if len(resp.Embeddings) == 0 {
		return nil, Usage{}, fmt.Errorf("no embedding values returned")
	}
	return resp.Embeddings[0].Values, Usage{}, nil
}

func (p *geminiProvider) Generate(ctx context.Context, model string, prompt string) (string, Usage, error) {
	resp, err := p.client.Models.GenerateContent(
		ctx,
		model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		nil,
	)
	if err != nil {
		return "", Usage{}, mapGeminiError(err)
	}
	var usage Usage
	if resp.UsageMetadata != nil {
		usage = Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	return strings.TrimSpace(resp.Text()), usage, nil
}

// mapGeminiError turns a non-2xx SDK error into a ProviderError so the
// caller can tell a remote failure apart from an internal one.
func mapGeminiError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &ProviderError{Provider: "gemini", Status: apiErr.Code, Message: apiErr.Message}
	}
	return err
}
