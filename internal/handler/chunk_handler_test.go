package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/talentvec/talentvec/internal/ai"
	"github.com/talentvec/talentvec/internal/model"
	"github.com/talentvec/talentvec/internal/pkg/jwt"
	"github.com/talentvec/talentvec/internal/repo"
	"github.com/talentvec/talentvec/internal/service"
)

var testSecret = []byte("test-secret")

type memStore struct {
	chunks []*model.Chunk
}

func (m *memStore) InsertBatch(ctx context.Context, chunks []*model.Chunk) error {
	m.chunks = append(m.chunks, chunks...)
	return nil
}

func (m *memStore) DeleteByExtraction(ctx context.Context, ownerID, extractionID string) (int64, error) {
	var kept []*model.Chunk
	var deleted int64
	for _, c := range m.chunks {
		if c.OwnerID == ownerID && c.ExtractionID == extractionID {
			deleted++
			continue
		}
		kept = append(kept, c)
	}
	m.chunks = kept
	return deleted, nil
}

func (m *memStore) DeleteByDocument(ctx context.Context, ownerID, documentID string) (int64, error) {
	var kept []*model.Chunk
	var deleted int64
	for _, c := range m.chunks {
		if c.OwnerID == ownerID && c.DocumentID == documentID {
			deleted++
			continue
		}
		kept = append(kept, c)
	}
	m.chunks = kept
	return deleted, nil
}

func (m *memStore) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	var n int64
	for _, c := range m.chunks {
		if c.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

func (m *memStore) FindSimilar(ctx context.Context, q repo.FindSimilarQuery) ([]model.ChunkMatch, error) {
	var matches []model.ChunkMatch
	for _, c := range m.chunks {
		if c.Embedding == nil {
			continue
		}
		if q.OwnerID != "" && c.OwnerID != q.OwnerID {
			continue
		}
		if q.SectionType != "" && c.SectionType != q.SectionType {
			continue
		}
		matches = append(matches, model.ChunkMatch{Chunk: *c, Similarity: 0.9})
		if len(matches) == q.Limit {
			break
		}
	}
	return matches, nil
}

func (m *memStore) ListBySource(ctx context.Context, ownerID, documentID, extractionID string) ([]model.Chunk, error) {
	var out []model.Chunk
	for _, c := range m.chunks {
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

type memEmbedder struct{}

func (memEmbedder) Embed(ctx context.Context, text string) ([]float32, ai.Usage, error) {
	return []float32{1}, ai.Usage{TotalTokens: 1}, nil
}

func (memEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, ai.Usage, error) {
	return []float32{1}, ai.Usage{TotalTokens: 1}, nil
}

func (memEmbedder) EmbedBatch(ctx context.Context, texts []string, batchSize int) ([][]float32, ai.Usage, error) {
	vecs := make([][]float32, len(texts))
	for i := range texts {
		vecs[i] = []float32{1}
	}
	return vecs, ai.Usage{TotalTokens: len(texts)}, nil
}

func (memEmbedder) ModelName() string { return "mem-embed" }

func (memEmbedder) Dimensions() int { return 1 }

func testRouter(t *testing.T) (*gin.Engine, *memStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := &memStore{}
	chunkService := service.NewChunkService(store, memEmbedder{}, 16)
	searchService := service.NewSearchService(store, memEmbedder{})
	engine := gin.New()
	api := engine.Group("/api/v1")
	RegisterRoutes(api, RouterDeps{
		Chunks:    NewChunkHandler(chunkService),
		Search:    NewSearchHandler(searchService),
		Answers:   NewAnswerHandler(nil),
		Files:     nil,
		JWTSecret: testSecret,
	})
	return engine, store
}

func authedRequest(t *testing.T, method, path, body string) *http.Request {
	t.Helper()
	token, err := jwt.GenerateToken("u1", testSecret, time.Hour)
	require.NoError(t, err)
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+token)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func TestRoutesRequireAuth(t *testing.T) {
	engine, _ := testRouter(t)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/chunks/stats", nil))
	require.NotContains(t, w.Body.String(), "total_chunks")

	w = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/chunks/stats", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	engine.ServeHTTP(w, req)
	require.NotContains(t, w.Body.String(), "total_chunks")
}

func TestTokenWithoutSubjectCannotSearch(t *testing.T) {
	engine, store := testRouter(t)
	store.chunks = []*model.Chunk{
		{ID: "a1", OwnerID: "alice", SectionType: model.SectionSkills, Content: "golang", Embedding: []float32{1}},
		{ID: "b1", OwnerID: "bob", SectionType: model.SectionSkills, Content: "golang", Embedding: []float32{1}},
	}

	token, err := jwt.GenerateToken("", testSecret, time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/api/v1/chunks/search", strings.NewReader(`{"query": "golang"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	// an ownerless token must never see anyone's chunks
	require.NotContains(t, w.Body.String(), "a1")
	require.NotContains(t, w.Body.String(), "b1")
	require.NotContains(t, w.Body.String(), `"results"`)
}

func TestHealthzIsPublic(t *testing.T) {
	engine, _ := testRouter(t)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/healthz", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "ok")
}

func TestCreateAndSearchChunks(t *testing.T) {
	engine, store := testRouter(t)

	body := `{
		"extraction_id": "ex1",
		"resume": {
			"name": "Somchai Jaidee",
			"skills": ["Python", "SQL"],
			"experience": [{"title": "Engineer", "company": "Acme", "start_date": "2020-01", "end_date": "2022-01"}]
		}
	}`
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, authedRequest(t, "POST", "/api/v1/chunks", body))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"total_chunks":4`)
	require.Contains(t, w.Body.String(), `"saved_to_db":true`)
	require.Len(t, store.chunks, 4)
	for _, c := range store.chunks {
		require.Equal(t, "u1", c.OwnerID)
	}

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, authedRequest(t, "POST", "/api/v1/chunks/search", `{"query": "python developer"}`))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"total":4`)

	// record search only sees the one full-document chunk
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, authedRequest(t, "POST", "/api/v1/search/records", `{"query": "python developer"}`))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"total":1`)
}

func TestSearchRejectsShortQuery(t *testing.T) {
	engine, _ := testRouter(t)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, authedRequest(t, "POST", "/api/v1/chunks/search", `{"query": "a"}`))
	require.NotContains(t, w.Body.String(), `"results"`)
}

func TestDeleteByExtractionEndpoint(t *testing.T) {
	engine, _ := testRouter(t)

	body := `{"extraction_id": "ex1", "resume": {"name": "Somchai Jaidee"}}`
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, authedRequest(t, "POST", "/api/v1/chunks", body))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, authedRequest(t, "DELETE", "/api/v1/chunks/extraction/ex1", ""))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"deleted_count":2`)

	// deleting again reports not found, not success
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, authedRequest(t, "DELETE", "/api/v1/chunks/extraction/ex1", ""))
	require.NotContains(t, w.Body.String(), `"deleted_count"`)
}

func TestAskWithoutGeneratorConfigured(t *testing.T) {
	engine, _ := testRouter(t)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, authedRequest(t, "POST", "/api/v1/ask", `{"question": "who knows Go?"}`))
	require.NotContains(t, w.Body.String(), `"answer"`)
}
