package handler

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/talentvec/talentvec/internal/filestore"
	"github.com/talentvec/talentvec/internal/pkg/errcode"
	"github.com/talentvec/talentvec/internal/pkg/response"
	"github.com/talentvec/talentvec/internal/service"
)

const maxUploadBytes = 20 << 20

// FileHandler fronts the opaque blob store. The returned key doubles as
// the document id chunks link back to; deleting a document cascades to
// its chunks.
type FileHandler struct {
	store  filestore.Store
	chunks *service.ChunkService
}

func NewFileHandler(store filestore.Store, chunks *service.ChunkService) *FileHandler {
	return &FileHandler{store: store, chunks: chunks}
}

func (h *FileHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Error(c, errcode.ErrInvalidFile, "file is required")
		return
	}
	defer file.Close()
	if header.Size <= 0 || header.Size > maxUploadBytes {
		response.Error(c, errcode.ErrInvalidFile, "invalid file size")
		return
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	key := uuid.NewString() + ext
	if err := h.store.Save(c.Request.Context(), key, file, header.Size); err != nil {
		logutil.GetLogger(c.Request.Context()).Error("file save failed", zap.String("key", key), zap.Error(err))
		response.Error(c, errcode.ErrUploadFailed, "upload failed")
		return
	}
	response.Success(c, gin.H{
		"success":     true,
		"document_id": key,
		"filename":    header.Filename,
		"size":        header.Size,
	})
}

func (h *FileHandler) Get(c *gin.Context) {
	key := c.Param("key")
	reader, err := h.store.Open(c.Request.Context(), key)
	if err != nil {
		response.Error(c, errcode.ErrNotFound, "file not found")
		return
	}
	defer reader.Close()
	c.Header("Content-Type", "application/octet-stream")
	c.Status(200)
	_, _ = io.Copy(c.Writer, reader)
}

func (h *FileHandler) Delete(c *gin.Context) {
	key := c.Param("key")
	if err := h.store.Delete(c.Request.Context(), key); err != nil {
		handleError(c, err)
		return
	}
	// cascade: no orphaned vectors for a deleted document
	deleted, err := h.chunks.DeleteByDocument(c.Request.Context(), getUserID(c), key)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"success": true, "document_id": key, "deleted_chunks": deleted})
}
