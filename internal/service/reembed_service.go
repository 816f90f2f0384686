package service

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/talentvec/talentvec/internal/model"
)

// ReembedStore is the repo slice the re-embed sweep needs.
type ReembedStore interface {
	ListStale(ctx context.Context, modelName string, limit int) ([]model.Chunk, error)
	UpdateEmbedding(ctx context.Context, id string, vec []float32, modelName string) error
}

// ReembedService refreshes vectors that are missing (past partial
// failures) or were produced by a model other than the active one.
// It runs outside the request path, driven by the cron scheduler.
type ReembedService struct {
	store    ReembedStore
	embedder Embedder
	batch    int
}

func NewReembedService(store ReembedStore, embedder Embedder, batch int) *ReembedService {
	if batch <= 0 {
		batch = 50
	}
	return &ReembedService{store: store, embedder: embedder, batch: batch}
}

// ProcessStale re-embeds one bounded batch and reports how many chunks
// were refreshed. Per-chunk failures are logged and skipped; the sweep
// picks them up again on the next run.
func (s *ReembedService) ProcessStale(ctx context.Context) (int, error) {
	logger := logutil.GetLogger(ctx)
	chunks, err := s.store.ListStale(ctx, s.embedder.ModelName(), s.batch)
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		return 0, nil
	}
	updated := 0
	for _, chunk := range chunks {
		vec, _, err := s.embedder.Embed(ctx, chunk.Content)
		if err != nil {
			logger.Warn("re-embed failed", zap.String("chunk_id", chunk.ID), zap.Error(err))
			continue
		}
		if err := s.store.UpdateEmbedding(ctx, chunk.ID, vec, s.embedder.ModelName()); err != nil {
			logger.Warn("re-embed save failed", zap.String("chunk_id", chunk.ID), zap.Error(err))
			continue
		}
		updated++
	}
	logger.Info("re-embed sweep done", zap.Int("stale", len(chunks)), zap.Int("updated", updated))
	return updated, nil
}
