package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/talentvec/talentvec/internal/ai"
	"github.com/talentvec/talentvec/internal/model"
	appErr "github.com/talentvec/talentvec/internal/pkg/errors"
	"github.com/talentvec/talentvec/internal/repo"
)

const (
	chunkQueryMinLen  = 2
	recordQueryMinLen = 3
	chunkLimitCap     = 20
	recordLimitCap    = 50
	defaultLimit      = 10
	defaultThreshold  = 0.5
)

type SearchService struct {
	store    ChunkStore
	embedder Embedder
	// query embeddings are pure functions of (model, text); cache them so
	// repeated searches skip the provider round-trip
	queryCache *expirable.LRU[string, []float32]
}

func NewSearchService(store ChunkStore, embedder Embedder) *SearchService {
	cache := expirable.NewLRU[string, []float32](10000, nil, 2*time.Hour)
	return &SearchService{store: store, embedder: embedder, queryCache: cache}
}

// SearchChunks ranks individual resume sections against a free-text query.
// The returned usage covers the query embedding; it is zero on a cache hit.
func (s *SearchService) SearchChunks(ctx context.Context, ownerID, query string, limit int, minSimilarity float64) ([]model.ChunkMatch, ai.Usage, error) {
	return s.search(ctx, ownerID, query, limit, minSimilarity, "", chunkQueryMinLen, chunkLimitCap)
}

// SearchRecords ranks whole resumes, one vector per record, using the
// trailing full-document chunk as the record representative.
func (s *SearchService) SearchRecords(ctx context.Context, ownerID, query string, limit int, minSimilarity float64) ([]model.ChunkMatch, ai.Usage, error) {
	return s.search(ctx, ownerID, query, limit, minSimilarity, model.SectionFullDocument, recordQueryMinLen, recordLimitCap)
}

func (s *SearchService) search(ctx context.Context, ownerID, query string, limit int, minSimilarity float64, sectionType model.SectionType, minLen, limitCap int) ([]model.ChunkMatch, ai.Usage, error) {
	// an empty owner would drop the scope at the store and rank every
	// owner's chunks, so it is rejected up front
	if ownerID == "" {
		return nil, ai.Usage{}, fmt.Errorf("owner id required: %w", appErr.ErrInvalid)
	}
	if len([]rune(query)) < minLen {
		return nil, ai.Usage{}, fmt.Errorf("query must be at least %d characters: %w", minLen, appErr.ErrInvalid)
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > limitCap {
		limit = limitCap
	}
	if minSimilarity <= 0 {
		minSimilarity = defaultThreshold
	}

	vec, usage, err := s.queryVector(ctx, query)
	if err != nil {
		// configuration and provider failures pass through unchanged so the
		// caller can tell "search unavailable" apart from "no matches"
		return nil, usage, err
	}
	matches, err := s.store.FindSimilar(ctx, repo.FindSimilarQuery{
		Vector:        vec,
		OwnerID:       ownerID,
		SectionType:   sectionType,
		Limit:         limit,
		MinSimilarity: minSimilarity,
	})
	if err != nil {
		return nil, usage, err
	}
	for i := range matches {
		matches[i].Similarity = roundSimilarity(matches[i].Similarity)
	}
	logutil.GetLogger(ctx).Debug("similarity search done",
		zap.String("owner_id", ownerID),
		zap.String("section_type", string(sectionType)),
		zap.Int("matches", len(matches)),
	)
	return matches, usage, nil
}

func (s *SearchService) queryVector(ctx context.Context, query string) ([]float32, ai.Usage, error) {
	key := s.cacheKey(query)
	if vec, ok := s.queryCache.Get(key); ok {
		return vec, ai.Usage{}, nil
	}
	vec, usage, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, usage, err
	}
	s.queryCache.Add(key, vec)
	return vec, usage, nil
}

func (s *SearchService) cacheKey(query string) string {
	sum := sha256.Sum256([]byte(s.embedder.ModelName() + "\x00" + query))
	return hex.EncodeToString(sum[:])
}

// roundSimilarity trims float noise so scores do not pretend to more
// precision than cosine similarity carries.
func roundSimilarity(x float64) float64 {
	return math.Round(x*10000) / 10000
}
