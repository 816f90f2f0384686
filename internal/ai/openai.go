package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// openAIProvider speaks the OpenAI-compatible REST dialect. With a custom
// base_url it also covers self-hosted backends (vLLM, Ollama, LocalAI).
type openAIConfig struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url"`
}

type openAIProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

type openAIChatRequest struct {
	Model    string          `json:"model"`
	Messages []openAIChatMsg `json:"messages"`
	Stream   bool            `json:"stream"`
}

type openAIChatMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage openAIUsage `json:"usage"`
}

type openAIEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type openAIEmbedResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Usage openAIUsage `json:"usage"`
}

func init() {
	Register("openai", createOpenAIProvider)
}

func createOpenAIProvider(args interface{}) (Provider, error) {
	cfg := &openAIConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	// the hosted API always needs a key; a self-hosted base_url may not
	if apiKey == "" && baseURL == defaultOpenAIBaseURL {
		return nil, fmt.Errorf("openai api_key missing: %w", ErrUnavailable)
	}
	return &openAIProvider{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}, nil
}

func (p *openAIProvider) Name() string {
	return "openai"
}

// Embed ignores the task hint: the embeddings endpoint has no task
// type parameter.
func (p *openAIProvider) Embed(ctx context.Context, model string, text string, task EmbedTask) ([]float32, Usage, error) {
	vecs, usage, err := p.EmbedBatch(ctx, model, []string{text})
	if err != nil {
		return nil, usage, err
	}
	return vecs[0], usage, nil
}

func (p *openAIProvider) EmbedBatch(ctx context.Context, model string, texts []string) ([][]float32, Usage, error) {
	var out openAIEmbedResponse
	if err := p.post(ctx, "/embeddings", openAIEmbedRequest{Model: model, Input: texts}, &out); err != nil {
		return nil, Usage{}, err
	}
	if len(out.Data) != len(texts) {
		return nil, Usage{}, fmt.Errorf("embedding count mismatch: sent %d got %d", len(texts), len(out.Data))
	}
	// collect by index, the API does not guarantee response order
	vecs := make([][]float32, len(texts))
	for _, item := range out.Data {
		if item.Index < 0 || item.Index >= len(vecs) {
			return nil, Usage{}, fmt.Errorf("embedding index out of range: %d", item.Index)
		}
		vecs[item.Index] = item.Embedding
	}
	usage := Usage{PromptTokens: out.Usage.PromptTokens, TotalTokens: out.Usage.TotalTokens}
	return vecs, usage, nil
}

func (p *openAIProvider) Generate(ctx context.Context, model string, prompt string) (string, Usage, error) {
	req := openAIChatRequest{
		Model:    model,
		Messages: []openAIChatMsg{{Role: "user", Content: prompt}},
		Stream:   false,
	}
	var out openAIChatResponse
	if err := p.post(ctx, "/chat/completions", req, &out); err != nil {
		return "", Usage{}, err
	}
	if len(out.Choices) == 0 {
		return "", Usage{}, fmt.Errorf("openai response has no choices")
	}
	usage := Usage{
		PromptTokens:     out.Usage.PromptTokens,
		CompletionTokens: out.Usage.CompletionTokens,
		TotalTokens:      out.Usage.TotalTokens,
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), usage, nil
}

func (p *openAIProvider) post(ctx context.Context, path string, body interface{}, dst interface{}) error {
	endpoint := strings.TrimRight(p.baseURL, "/") + path
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return err
	}
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(resp.Body)
		return &ProviderError{
			Provider: "openai",
			Status:   resp.StatusCode,
			Message:  strings.TrimSpace(string(raw)),
		}
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}
