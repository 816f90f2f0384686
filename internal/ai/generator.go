package ai

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Generator produces free text through a configured provider and model.
type Generator struct {
	provider Provider
	model    string
	timeout  time.Duration
}

func NewGenerator(provider Provider, model string, timeout time.Duration) (*Generator, error) {
	if provider == nil {
		return nil, fmt.Errorf("generation provider missing: %w", ErrUnavailable)
	}
	if model == "" {
		return nil, fmt.Errorf("generation model missing: %w", ErrUnavailable)
	}
	return &Generator{provider: provider, model: model, timeout: timeout}, nil
}

func (g *Generator) ModelName() string {
	return g.model
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, Usage, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	text, usage, err := g.provider.Generate(ctx, g.model, prompt)
	if err != nil {
		return "", usage, mapTimeout(err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", usage, fmt.Errorf("empty ai response")
	}
	return text, usage, nil
}
