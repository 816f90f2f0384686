package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	appErr "github.com/talentvec/talentvec/internal/pkg/errors"
)

// MaxEmbedChars is the input cap per embedding request. Longer text is
// truncated from the end rather than rejected.
const MaxEmbedChars = 30000

// DefaultDimensions is used for models missing from the table below.
const DefaultDimensions = 768

var modelDimensions = map[string]int{
	"text-embedding-004":     768,
	"gemini-embedding-001":   3072,
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
	"nomic-embed-text":       768,
	"mxbai-embed-large":      1024,
	"bge-m3":                 1024,
	"all-minilm":             384,
}

// Embedder turns text into vectors through a configured provider and
// model. It owns truncation and batching; retry policy stays with the
// caller.
type Embedder struct {
	provider Provider
	model    string
	timeout  time.Duration
}

func NewEmbedder(provider Provider, model string, timeout time.Duration) (*Embedder, error) {
	if provider == nil {
		return nil, fmt.Errorf("embed provider missing: %w", ErrUnavailable)
	}
	if model == "" {
		return nil, fmt.Errorf("embed model missing: %w", ErrUnavailable)
	}
	return &Embedder{provider: provider, model: model, timeout: timeout}, nil
}

func (e *Embedder) ModelName() string {
	return e.model
}

func (e *Embedder) Dimensions() int {
	if dim, ok := modelDimensions[e.model]; ok {
		return dim
	}
	return DefaultDimensions
}

// Embed embeds stored content with the document task type.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, Usage, error) {
	return e.embed(ctx, text, TaskDocument)
}

// EmbedQuery embeds search text with the query task type. Providers with
// asymmetric embeddings place queries differently from documents; the
// rest ignore the hint.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, Usage, error) {
	return e.embed(ctx, text, TaskQuery)
}

func (e *Embedder) embed(ctx context.Context, text string, task EmbedTask) ([]float32, Usage, error) {
	ctx, cancel := e.bound(ctx)
	defer cancel()
	vec, usage, err := e.provider.Embed(ctx, e.model, truncate(text), task)
	return vec, usage, mapTimeout(err)
}

// EmbedBatch embeds texts preserving input order exactly. Providers with
// batch support get one request per batchSize slice; the rest fall back
// to sequential single calls with the same caller-visible contract.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string, batchSize int) ([][]float32, Usage, error) {
	if len(texts) == 0 {
		return nil, Usage{}, nil
	}
	if batchSize <= 0 {
		batchSize = 16
	}
	clipped := make([]string, len(texts))
	for i, text := range texts {
		clipped[i] = truncate(text)
	}

	var total Usage
	vecs := make([][]float32, 0, len(clipped))
	if batcher, ok := e.provider.(BatchEmbedder); ok {
		for start := 0; start < len(clipped); start += batchSize {
			end := start + batchSize
			if end > len(clipped) {
				end = len(clipped)
			}
			ctx2, cancel := e.bound(ctx)
			part, usage, err := batcher.EmbedBatch(ctx2, e.model, clipped[start:end])
			cancel()
			if err != nil {
				return nil, total, mapTimeout(err)
			}
			vecs = append(vecs, part...)
			total = total.Add(usage)
		}
		return vecs, total, nil
	}
	for _, text := range clipped {
		ctx2, cancel := e.bound(ctx)
		vec, usage, err := e.provider.Embed(ctx2, e.model, text, TaskDocument)
		cancel()
		if err != nil {
			return nil, total, mapTimeout(err)
		}
		vecs = append(vecs, vec)
		total = total.Add(usage)
	}
	return vecs, total, nil
}

func (e *Embedder) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout > 0 {
		return context.WithTimeout(ctx, e.timeout)
	}
	return ctx, func() {}
}

func truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= MaxEmbedChars {
		return text
	}
	return string(runes[:MaxEmbedChars])
}

func mapTimeout(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%v: %w", err, appErr.ErrTimeout)
	}
	return err
}
