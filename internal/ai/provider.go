package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Usage is the token accounting reported by a provider for one call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

func (u Usage) Add(o Usage) Usage {
	return Usage{
		PromptTokens:     u.PromptTokens + o.PromptTokens,
		CompletionTokens: u.CompletionTokens + o.CompletionTokens,
		TotalTokens:      u.TotalTokens + o.TotalTokens,
	}
}

// EmbedTask tells providers that distinguish them whether the text being
// embedded is stored content or a search query. Asymmetric task types
// change how some models place queries relative to documents.
type EmbedTask string

const (
	TaskDocument EmbedTask = "RETRIEVAL_DOCUMENT"
	TaskQuery    EmbedTask = "RETRIEVAL_QUERY"
)

// Provider is one concrete remote AI backend. Implementations must not
// leak provider specific request/response shapes to callers.
type Provider interface {
	Name() string
	Embed(ctx context.Context, model string, text string, task EmbedTask) ([]float32, Usage, error)
	Generate(ctx context.Context, model string, prompt string) (string, Usage, error)
}

// BatchEmbedder is implemented by providers whose API accepts several
// inputs in one request. Providers without it get a sequential fallback
// in the Embedder adapter.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, model string, texts []string) ([][]float32, Usage, error)
}

type Factory func(args interface{}) (Provider, error)

var registry = map[string]Factory{}

func Register(name string, factory Factory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registry[key] = factory
}

func NewProvider(name string, args interface{}) (Provider, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	factory := registry[key]
	if factory == nil {
		return nil, fmt.Errorf("unsupported ai provider: %s", name)
	}
	return factory(args)
}

func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return fmt.Errorf("ai provider config is required")
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode ai provider config: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode ai provider config: %w", err)
	}
	return nil
}
