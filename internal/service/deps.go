package service

import (
	"context"

	"github.com/talentvec/talentvec/internal/ai"
	"github.com/talentvec/talentvec/internal/model"
	"github.com/talentvec/talentvec/internal/repo"
)

// ChunkStore is the persistence surface the services depend on.
// *repo.ChunkRepo is the production implementation; tests substitute
// in-memory fakes.
type ChunkStore interface {
	InsertBatch(ctx context.Context, chunks []*model.Chunk) error
	DeleteByExtraction(ctx context.Context, ownerID, extractionID string) (int64, error)
	DeleteByDocument(ctx context.Context, ownerID, documentID string) (int64, error)
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
	FindSimilar(ctx context.Context, q repo.FindSimilarQuery) ([]model.ChunkMatch, error)
	ListBySource(ctx context.Context, ownerID, documentID, extractionID string) ([]model.Chunk, error)
}

// Embedder is the slice of *ai.Embedder the services use.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, ai.Usage, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, ai.Usage, error)
	EmbedBatch(ctx context.Context, texts []string, batchSize int) ([][]float32, ai.Usage, error)
	ModelName() string
	Dimensions() int
}

// Generator is the slice of *ai.Generator the answer service uses.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, ai.Usage, error)
}
