package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/talentvec/talentvec/internal/model"
	"github.com/talentvec/talentvec/internal/pkg/errcode"
	"github.com/talentvec/talentvec/internal/pkg/response"
	"github.com/talentvec/talentvec/internal/service"
)

type ChunkHandler struct {
	chunks *service.ChunkService
}

func NewChunkHandler(chunks *service.ChunkService) *ChunkHandler {
	return &ChunkHandler{chunks: chunks}
}

type createChunksRequest struct {
	ExtractionID        string              `json:"extraction_id"`
	DocumentID          string              `json:"document_id"`
	Resume              *model.ResumeRecord `json:"resume"`
	IncludeFullDocument *bool               `json:"include_full_document"`
}

func (h *ChunkHandler) Create(c *gin.Context) {
	var req createChunksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	result, err := h.chunks.CreateChunks(c.Request.Context(), service.CreateChunksRequest{
		OwnerID:             getUserID(c),
		DocumentID:          req.DocumentID,
		ExtractionID:        req.ExtractionID,
		Resume:              req.Resume,
		IncludeFullDocument: req.IncludeFullDocument,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{
		"success":      true,
		"total_chunks": result.TotalChunks,
		"saved_to_db":  result.SavedToDB,
		"chunk_ids":    result.ChunkIDs,
		"chunks":       result.Chunks,
		"usage":        result.Usage,
	})
}

func (h *ChunkHandler) List(c *gin.Context) {
	documentID := c.Query("document_id")
	extractionID := c.Query("extraction_id")
	chunks, err := h.chunks.ListBySource(c.Request.Context(), getUserID(c), documentID, extractionID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"success": true, "total": len(chunks), "chunks": chunks})
}

func (h *ChunkHandler) Stats(c *gin.Context) {
	userID := getUserID(c)
	total, err := h.chunks.Stats(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"success": true, "total_chunks": total, "user_id": userID})
}

func (h *ChunkHandler) DeleteByExtraction(c *gin.Context) {
	extractionID := c.Param("id")
	count, err := h.chunks.DeleteByExtraction(c.Request.Context(), getUserID(c), extractionID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"success": true, "deleted_count": count, "extraction_id": extractionID})
}

func (h *ChunkHandler) DeleteByDocument(c *gin.Context) {
	documentID := c.Param("id")
	count, err := h.chunks.DeleteByDocument(c.Request.Context(), getUserID(c), documentID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"success": true, "deleted_count": count, "document_id": documentID})
}
