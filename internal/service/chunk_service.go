package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/talentvec/talentvec/internal/ai"
	"github.com/talentvec/talentvec/internal/chunker"
	"github.com/talentvec/talentvec/internal/model"
	appErr "github.com/talentvec/talentvec/internal/pkg/errors"
	"github.com/talentvec/talentvec/internal/pkg/timeutil"
)

type ChunkService struct {
	store     ChunkStore
	embedder  Embedder
	batchSize int
}

func NewChunkService(store ChunkStore, embedder Embedder, batchSize int) *ChunkService {
	if batchSize <= 0 {
		batchSize = 16
	}
	return &ChunkService{store: store, embedder: embedder, batchSize: batchSize}
}

type CreateChunksRequest struct {
	OwnerID             string
	DocumentID          string
	ExtractionID        string
	Resume              *model.ResumeRecord
	IncludeFullDocument *bool
}

type CreatedChunk struct {
	Type       model.SectionType      `json:"type"`
	Title      string                 `json:"title"`
	TextLength int                    `json:"text_length"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

type CreateChunksResult struct {
	TotalChunks int            `json:"total_chunks"`
	SavedToDB   bool           `json:"saved_to_db"`
	ChunkIDs    []string       `json:"chunk_ids,omitempty"`
	Chunks      []CreatedChunk `json:"chunks,omitempty"`
	Usage       ai.Usage       `json:"usage"`
}

// CreateChunks runs the chunk-then-embed-then-persist pipeline for one
// resume. Embedding is best-effort: a chunk whose vector cannot be
// generated is stored without one and the batch still succeeds.
// When the source already has chunks they are deleted first; the batch
// insert is atomic, so the source is never left with a mixed set.
func (s *ChunkService) CreateChunks(ctx context.Context, req CreateChunksRequest) (*CreateChunksResult, error) {
	if req.OwnerID == "" {
		return nil, fmt.Errorf("owner id required: %w", appErr.ErrInvalid)
	}
	if req.Resume == nil {
		return nil, fmt.Errorf("resume payload required: %w", appErr.ErrInvalid)
	}
	logger := logutil.GetLogger(ctx).With(
		zap.String("owner_id", req.OwnerID),
		zap.String("document_id", req.DocumentID),
		zap.String("extraction_id", req.ExtractionID),
	)

	includeFull := true
	if req.IncludeFullDocument != nil {
		includeFull = *req.IncludeFullDocument
	}
	sections := chunker.Chunk(req.Resume, includeFull)
	if len(sections) == 0 {
		logger.Info("resume produced no chunks")
		return &CreateChunksResult{TotalChunks: 0, SavedToDB: false}, nil
	}

	if req.ExtractionID != "" {
		if _, err := s.store.DeleteByExtraction(ctx, req.OwnerID, req.ExtractionID); err != nil {
			return nil, err
		}
	} else if req.DocumentID != "" {
		if _, err := s.store.DeleteByDocument(ctx, req.OwnerID, req.DocumentID); err != nil {
			return nil, err
		}
	}

	texts := make([]string, len(sections))
	for i, section := range sections {
		texts[i] = section.Text
	}
	vectors, usage := s.embedBestEffort(ctx, logger, texts)

	now := timeutil.NowUnix()
	chunks := make([]*model.Chunk, len(sections))
	for i, section := range sections {
		chunk := &model.Chunk{
			ID:           uuid.NewString(),
			OwnerID:      req.OwnerID,
			DocumentID:   req.DocumentID,
			ExtractionID: req.ExtractionID,
			SeqIndex:     i,
			SectionType:  section.Type,
			Title:        section.Title,
			Content:      section.Text,
			Metadata:     section.Metadata,
			Ctime:        now,
		}
		if vectors[i] != nil {
			chunk.Embedding = vectors[i]
			chunk.EmbeddingModel = s.embedder.ModelName()
		}
		chunks[i] = chunk
	}
	if err := s.store.InsertBatch(ctx, chunks); err != nil {
		return nil, err
	}

	result := &CreateChunksResult{
		TotalChunks: len(chunks),
		SavedToDB:   true,
		ChunkIDs:    make([]string, len(chunks)),
		Chunks:      make([]CreatedChunk, len(chunks)),
		Usage:       usage,
	}
	for i, chunk := range chunks {
		result.ChunkIDs[i] = chunk.ID
		result.Chunks[i] = CreatedChunk{
			Type:       chunk.SectionType,
			Title:      chunk.Title,
			TextLength: len(chunk.Content),
			Metadata:   chunk.Metadata,
		}
	}
	logger.Info("chunks created", zap.Int("total", len(chunks)))
	return result, nil
}

// embedBestEffort returns one vector per text, nil where embedding failed.
func (s *ChunkService) embedBestEffort(ctx context.Context, logger *zap.Logger, texts []string) ([][]float32, ai.Usage) {
	vectors, usage, err := s.embedder.EmbedBatch(ctx, texts, s.batchSize)
	if err == nil {
		return vectors, usage
	}
	logger.Warn("batch embedding failed, chunks will be stored without vectors", zap.Error(err))
	vectors = make([][]float32, len(texts))
	if errors.Is(err, ai.ErrUnavailable) || appErr.IsTimeout(err) {
		// the provider will not heal mid-request, skip per-text retries
		return vectors, usage
	}
	for i, text := range texts {
		vec, u, err := s.embedder.Embed(ctx, text)
		if err != nil {
			logger.Warn("embedding failed for chunk", zap.Int("index", i), zap.Error(err))
			continue
		}
		vectors[i] = vec
		usage = usage.Add(u)
	}
	return vectors, usage
}

func (s *ChunkService) DeleteByExtraction(ctx context.Context, ownerID, extractionID string) (int64, error) {
	if ownerID == "" {
		return 0, fmt.Errorf("owner id required: %w", appErr.ErrInvalid)
	}
	if extractionID == "" {
		return 0, fmt.Errorf("extraction id required: %w", appErr.ErrInvalid)
	}
	count, err := s.store.DeleteByExtraction(ctx, ownerID, extractionID)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, appErr.ErrNotFound
	}
	return count, nil
}

func (s *ChunkService) DeleteByDocument(ctx context.Context, ownerID, documentID string) (int64, error) {
	if ownerID == "" {
		return 0, fmt.Errorf("owner id required: %w", appErr.ErrInvalid)
	}
	if documentID == "" {
		return 0, fmt.Errorf("document id required: %w", appErr.ErrInvalid)
	}
	return s.store.DeleteByDocument(ctx, ownerID, documentID)
}

func (s *ChunkService) Stats(ctx context.Context, ownerID string) (int64, error) {
	if ownerID == "" {
		return 0, fmt.Errorf("owner id required: %w", appErr.ErrInvalid)
	}
	return s.store.CountByOwner(ctx, ownerID)
}

// ListBySource fetches a source's chunks in sequence order, including
// ones without a vector.
func (s *ChunkService) ListBySource(ctx context.Context, ownerID, documentID, extractionID string) ([]model.Chunk, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("owner id required: %w", appErr.ErrInvalid)
	}
	if documentID == "" && extractionID == "" {
		return nil, fmt.Errorf("document_id or extraction_id required: %w", appErr.ErrInvalid)
	}
	return s.store.ListBySource(ctx, ownerID, documentID, extractionID)
}
