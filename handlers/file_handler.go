package handlers

import (
	"fmt"
	"net/http"

	"diligence-backend/repository"
	"diligence-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// FileHandler serves stored report artifacts
type FileHandler struct {
	fileRepo *repository.ReportFileRepository
	storage  storage.Storage
}

// NewFileHandler creates a new file handler
func NewFileHandler(fileRepo *repository.ReportFileRepository, storage storage.Storage) *FileHandler {
	return &FileHandler{
		fileRepo: fileRepo,
		storage:  storage,
	}
}

// GetFile handles GET /api/files/:id
func (h *FileHandler) GetFile(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid file ID format",
			},
		})
		return
	}

	file, err := h.fileRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "File not found",
			},
		})
		return
	}

	reader, err := h.storage.Download(c.Request.Context(), file.StoragePath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DOWNLOAD_FAILED",
				"message": fmt.Sprintf("Failed to download file: %v", err),
			},
		})
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.DataFromReader(http.StatusOK, downloadLength(file.Size), file.MimeType, reader, nil)
}

// downloadLength maps a stored size to the content length declared on a
// download. Records written before the size was known carry 0; declaring
// that would make clients stop reading, so fall back to chunked transfer.
func downloadLength(size int64) int64 {
	if size <= 0 {
		return -1
	}
	return size
}

// ListActivityFiles handles GET /api/activities/:id/files
func (h *FileHandler) ListActivityFiles(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid activity ID format",
			},
		})
		return
	}

	files, err := h.fileRepo.ListByActivityID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "LIST_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    files,
	})
}
