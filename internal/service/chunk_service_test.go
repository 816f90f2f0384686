package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talentvec/talentvec/internal/ai"
	"github.com/talentvec/talentvec/internal/model"
	appErr "github.com/talentvec/talentvec/internal/pkg/errors"
)

func testResume() *model.ResumeRecord {
	return &model.ResumeRecord{
		Name:   "Somchai Jaidee",
		Skills: []string{"Python", "SQL"},
		Experience: []model.ExperienceEntry{
			{Title: "Engineer", Company: "Acme", StartDate: "2020-01", EndDate: "2022-01"},
		},
	}
}

func TestCreateChunksPersistsInOrder(t *testing.T) {
	store := &fakeStore{}
	svc := NewChunkService(store, &fakeEmbedder{}, 16)

	result, err := svc.CreateChunks(context.Background(), CreateChunksRequest{
		OwnerID:      "u1",
		ExtractionID: "ex1",
		Resume:       testResume(),
	})
	require.NoError(t, err)
	require.True(t, result.SavedToDB)
	require.Equal(t, 4, result.TotalChunks)
	require.Len(t, result.ChunkIDs, 4)
	require.Len(t, store.chunks, 4)

	types := []model.SectionType{
		model.SectionPersonalInfo,
		model.SectionExperience,
		model.SectionSkills,
		model.SectionFullDocument,
	}
	for i, chunk := range store.chunks {
		require.Equal(t, i, chunk.SeqIndex)
		require.Equal(t, types[i], chunk.SectionType)
		require.Equal(t, "u1", chunk.OwnerID)
		require.Equal(t, "ex1", chunk.ExtractionID)
		require.NotEmpty(t, chunk.ID)
		require.NotNil(t, chunk.Embedding)
		require.Equal(t, "fake-embed", chunk.EmbeddingModel)
	}
	require.Equal(t, 4, result.Usage.TotalTokens)
}

func TestCreateChunksValidation(t *testing.T) {
	svc := NewChunkService(&fakeStore{}, &fakeEmbedder{}, 16)

	_, err := svc.CreateChunks(context.Background(), CreateChunksRequest{Resume: testResume()})
	require.ErrorIs(t, err, appErr.ErrInvalid)

	_, err = svc.CreateChunks(context.Background(), CreateChunksRequest{OwnerID: "u1"})
	require.ErrorIs(t, err, appErr.ErrInvalid)
}

func TestCreateChunksEmptyResume(t *testing.T) {
	store := &fakeStore{}
	svc := NewChunkService(store, &fakeEmbedder{}, 16)

	result, err := svc.CreateChunks(context.Background(), CreateChunksRequest{
		OwnerID: "u1",
		Resume:  &model.ResumeRecord{},
	})
	require.NoError(t, err)
	require.Equal(t, 0, result.TotalChunks)
	require.False(t, result.SavedToDB)
	require.Empty(t, store.chunks)
}

func TestCreateChunksSkipFullDocument(t *testing.T) {
	store := &fakeStore{}
	svc := NewChunkService(store, &fakeEmbedder{}, 16)

	no := false
	result, err := svc.CreateChunks(context.Background(), CreateChunksRequest{
		OwnerID: "u1",
		Resume:  testResume(),
		IncludeFullDocument: &no,
	})
	require.NoError(t, err)
	require.Equal(t, 3, result.TotalChunks)
	for _, chunk := range store.chunks {
		require.NotEqual(t, model.SectionFullDocument, chunk.SectionType)
	}
}

func TestCreateChunksSucceedsWithoutVectors(t *testing.T) {
	store := &fakeStore{}
	embedder := &fakeEmbedder{batchErr: ai.ErrUnavailable}
	svc := NewChunkService(store, embedder, 16)

	result, err := svc.CreateChunks(context.Background(), CreateChunksRequest{
		OwnerID:      "u1",
		ExtractionID: "ex1",
		Resume:       testResume(),
	})
	require.NoError(t, err)
	require.True(t, result.SavedToDB)
	require.Equal(t, 4, result.TotalChunks)
	// unavailable provider: no per-chunk retries, rows kept with null vectors
	require.Equal(t, 0, embedder.embedCount)
	for _, chunk := range store.chunks {
		require.Nil(t, chunk.Embedding)
		require.Empty(t, chunk.EmbeddingModel)
	}
}

func TestCreateChunksRetriesPerTextOnBatchFailure(t *testing.T) {
	store := &fakeStore{}
	embedder := &fakeEmbedder{batchErr: errBoom}
	svc := NewChunkService(store, embedder, 16)

	result, err := svc.CreateChunks(context.Background(), CreateChunksRequest{
		OwnerID:      "u1",
		ExtractionID: "ex1",
		Resume:       testResume(),
	})
	require.NoError(t, err)
	require.Equal(t, 4, result.TotalChunks)
	require.Equal(t, 4, embedder.embedCount)
	for _, chunk := range store.chunks {
		require.NotNil(t, chunk.Embedding)
	}
}

func TestCreateChunksReplacesExisting(t *testing.T) {
	store := &fakeStore{}
	svc := NewChunkService(store, &fakeEmbedder{}, 16)

	ctx := context.Background()
	req := CreateChunksRequest{OwnerID: "u1", ExtractionID: "ex1", Resume: testResume()}
	_, err := svc.CreateChunks(ctx, req)
	require.NoError(t, err)
	_, err = svc.CreateChunks(ctx, req)
	require.NoError(t, err)

	count, err := svc.Stats(ctx, "u1")
	require.NoError(t, err)
	require.EqualValues(t, 4, count)
}

func TestDeleteByExtractionNotFound(t *testing.T) {
	svc := NewChunkService(&fakeStore{}, &fakeEmbedder{}, 16)

	_, err := svc.DeleteByExtraction(context.Background(), "u1", "missing")
	require.ErrorIs(t, err, appErr.ErrNotFound)

	_, err = svc.DeleteByExtraction(context.Background(), "u1", "")
	require.ErrorIs(t, err, appErr.ErrInvalid)
}

func TestDeleteByExtractionScopedToOwner(t *testing.T) {
	store := &fakeStore{}
	svc := NewChunkService(store, &fakeEmbedder{}, 16)
	ctx := context.Background()

	_, err := svc.CreateChunks(ctx, CreateChunksRequest{OwnerID: "u1", ExtractionID: "ex1", Resume: testResume()})
	require.NoError(t, err)
	_, err = svc.CreateChunks(ctx, CreateChunksRequest{OwnerID: "u2", ExtractionID: "ex1", Resume: testResume()})
	require.NoError(t, err)

	deleted, err := svc.DeleteByExtraction(ctx, "u1", "ex1")
	require.NoError(t, err)
	require.EqualValues(t, 4, deleted)

	remaining, err := svc.Stats(ctx, "u2")
	require.NoError(t, err)
	require.EqualValues(t, 4, remaining)
}

func TestListBySourceRequiresAnID(t *testing.T) {
	svc := NewChunkService(&fakeStore{}, &fakeEmbedder{}, 16)
	_, err := svc.ListBySource(context.Background(), "u1", "", "")
	require.ErrorIs(t, err, appErr.ErrInvalid)
}

func TestReadAndDeletePathsRequireOwner(t *testing.T) {
	svc := NewChunkService(&fakeStore{}, &fakeEmbedder{}, 16)
	ctx := context.Background()

	_, err := svc.Stats(ctx, "")
	require.ErrorIs(t, err, appErr.ErrInvalid)
	_, err = svc.ListBySource(ctx, "", "doc1", "")
	require.ErrorIs(t, err, appErr.ErrInvalid)
	_, err = svc.DeleteByExtraction(ctx, "", "ex1")
	require.ErrorIs(t, err, appErr.ErrInvalid)
	_, err = svc.DeleteByDocument(ctx, "", "doc1")
	require.ErrorIs(t, err, appErr.ErrInvalid)
}
