package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/talentvec/talentvec/internal/model"
	"github.com/talentvec/talentvec/internal/pkg/errcode"
	"github.com/talentvec/talentvec/internal/pkg/response"
	"github.com/talentvec/talentvec/internal/service"
)

type SearchHandler struct {
	search *service.SearchService
}

func NewSearchHandler(search *service.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

type searchRequest struct {
	Query     string  `json:"query"`
	Limit     int     `json:"limit"`
	Threshold float64 `json:"threshold"`
}

type chunkResult struct {
	ID           string                 `json:"id"`
	Text         string                 `json:"text"`
	Similarity   float64                `json:"similarity"`
	SectionType  model.SectionType      `json:"section_type"`
	Title        string                 `json:"title"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	ChunkIndex   int                    `json:"chunk_index"`
	DocumentID   string                 `json:"document_id,omitempty"`
	ExtractionID string                 `json:"extraction_id,omitempty"`
	CreatedAt    int64                  `json:"created_at"`
}

func (h *SearchHandler) SearchChunks(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	matches, usage, err := h.search.SearchChunks(c.Request.Context(), getUserID(c), req.Query, req.Limit, req.Threshold)
	if err != nil {
		handleError(c, err)
		return
	}
	results := make([]chunkResult, 0, len(matches))
	for _, match := range matches {
		results = append(results, toChunkResult(match))
	}
	response.Success(c, gin.H{
		"success": true,
		"query":   req.Query,
		"total":   len(results),
		"results": results,
		"usage":   usage,
	})
}

func (h *SearchHandler) SearchRecords(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	matches, usage, err := h.search.SearchRecords(c.Request.Context(), getUserID(c), req.Query, req.Limit, req.Threshold)
	if err != nil {
		handleError(c, err)
		return
	}
	results := make([]chunkResult, 0, len(matches))
	for _, match := range matches {
		results = append(results, toChunkResult(match))
	}
	response.Success(c, gin.H{
		"results": results,
		"total":   len(results),
		"query":   req.Query,
		"usage":   usage,
	})
}

func toChunkResult(match model.ChunkMatch) chunkResult {
	return chunkResult{
		ID:           match.Chunk.ID,
		Text:         match.Chunk.Content,
		Similarity:   match.Similarity,
		SectionType:  match.Chunk.SectionType,
		Title:        match.Chunk.Title,
		Metadata:     match.Chunk.Metadata,
		ChunkIndex:   match.Chunk.SeqIndex,
		DocumentID:   match.Chunk.DocumentID,
		ExtractionID: match.Chunk.ExtractionID,
		CreatedAt:    match.Chunk.Ctime,
	}
}
