package service

import (
	"context"
	"fmt"

	"github.com/talentvec/talentvec/internal/ai"
	"github.com/talentvec/talentvec/internal/model"
	"github.com/talentvec/talentvec/internal/repo"
)

type fakeStore struct {
	chunks []*model.Chunk

	similarQueries []repo.FindSimilarQuery
	similarResult  []model.ChunkMatch
	similarErr     error
	insertErr      error
}

func (f *fakeStore) InsertBatch(ctx context.Context, chunks []*model.Chunk) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.chunks = append(f.chunks, chunks...)
	return nil
}

func (f *fakeStore) DeleteByExtraction(ctx context.Context, ownerID, extractionID string) (int64, error) {
	return f.deleteWhere(func(c *model.Chunk) bool {
		return c.OwnerID == ownerID && c.ExtractionID == extractionID
	}), nil
}

func (f *fakeStore) DeleteByDocument(ctx context.Context, ownerID, documentID string) (int64, error) {
	return f.deleteWhere(func(c *model.Chunk) bool {
		return c.OwnerID == ownerID && c.DocumentID == documentID
	}), nil
}

func (f *fakeStore) deleteWhere(match func(*model.Chunk) bool) int64 {
	var kept []*model.Chunk
	var deleted int64
	for _, c := range f.chunks {
		if match(c) {
			deleted++
			continue
		}
		kept = append(kept, c)
	}
	f.chunks = kept
	return deleted
}

func (f *fakeStore) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	var n int64
	for _, c := range f.chunks {
		if c.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) FindSimilar(ctx context.Context, q repo.FindSimilarQuery) ([]model.ChunkMatch, error) {
	f.similarQueries = append(f.similarQueries, q)
	if f.similarErr != nil {
		return nil, f.similarErr
	}
	return f.similarResult, nil
}

func (f *fakeStore) ListBySource(ctx context.Context, ownerID, documentID, extractionID string) ([]model.Chunk, error) {
	var out []model.Chunk
	for _, c := range f.chunks {
		if c.OwnerID != ownerID {
			continue
		}
		if documentID != "" && c.DocumentID != documentID {
			continue
		}
		if extractionID != "" && c.ExtractionID != extractionID {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

type fakeEmbedder struct {
	batchErr   error
	singleErr  error
	embedCount int
	queryCount int
	batchCalls int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, ai.Usage, error) {
	f.embedCount++
	if f.singleErr != nil {
		return nil, ai.Usage{}, f.singleErr
	}
	return []float32{float32(len(text))}, ai.Usage{PromptTokens: 1, TotalTokens: 1}, nil
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, ai.Usage, error) {
	f.queryCount++
	if f.singleErr != nil {
		return nil, ai.Usage{}, f.singleErr
	}
	return []float32{float32(len(text))}, ai.Usage{PromptTokens: 1, TotalTokens: 1}, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string, batchSize int) ([][]float32, ai.Usage, error) {
	f.batchCalls++
	if f.batchErr != nil {
		return nil, ai.Usage{}, f.batchErr
	}
	vecs := make([][]float32, len(texts))
	for i, text := range texts {
		vecs[i] = []float32{float32(len(text))}
	}
	return vecs, ai.Usage{PromptTokens: len(texts), TotalTokens: len(texts)}, nil
}

func (f *fakeEmbedder) ModelName() string { return "fake-embed" }

func (f *fakeEmbedder) Dimensions() int { return 768 }

type fakeGenerator struct {
	prompts []string
	text    string
	err     error
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, ai.Usage, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", ai.Usage{}, f.err
	}
	if f.text == "" {
		return "generated answer", ai.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}, nil
	}
	return f.text, ai.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}, nil
}

var errBoom = fmt.Errorf("boom")
