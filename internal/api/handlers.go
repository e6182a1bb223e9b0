package api

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"pdfpress/internal/storage"
)

// Handler serves the file storage surface over HTTP.
type Handler struct {
	store *storage.Store
}

// RegisterHandlers mounts the storage routes on the engine.
func RegisterHandlers(r *gin.Engine, store *storage.Store) {
	h := &Handler{store: store}

	r.POST("/upload/:job_id", h.upload)
	r.GET("/file/:job_id/original", h.getOriginal)
	r.POST("/file/:job_id/compressed", h.saveCompressed)
	r.GET("/download/:job_id", h.download)
	r.GET("/info/:job_id", h.info)
	r.DELETE("/cleanup/:job_id", h.cleanup)
	r.GET("/health", h.health)
}

func (h *Handler) upload(c *gin.Context) {
	jobID := c.Param("job_id")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload: " + err.Error()})
		return
	}
	defer file.Close()

	record, err := h.store.SaveOriginal(jobID, fileHeader.Filename, fileHeader.Header.Get("Content-Type"), file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job_id":   jobID,
		"filename": record.Filename,
		"size":     record.Size,
		"status":   "uploaded",
	})
}

func (h *Handler) getOriginal(c *gin.Context) {
	path, err := h.store.OriginalPath(c.Param("job_id"))
	if err != nil {
		h.notFoundOrError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"file_path": path})
}

func (h *Handler) saveCompressed(c *gin.Context) {
	jobID := c.Param("job_id")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload: " + err.Error()})
		return
	}
	defer file.Close()

	size, err := h.store.SaveCompressed(jobID, fileHeader.Filename, file)
	if err != nil {
		h.notFoundOrError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job_id":          jobID,
		"compressed_size": size,
		"status":          "saved",
	})
}

func (h *Handler) download(c *gin.Context) {
	path, err := h.store.CompressedPath(c.Param("job_id"))
	if err != nil {
		h.notFoundOrError(c, err)
		return
	}

	c.FileAttachment(path, filepath.Base(path))
}

func (h *Handler) info(c *gin.Context) {
	info, err := h.store.Info(c.Param("job_id"))
	if err != nil {
		h.notFoundOrError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *Handler) cleanup(c *gin.Context) {
	err := h.store.Cleanup(c.Param("job_id"))
	if errors.Is(err, storage.ErrJobNotFound) {
		c.JSON(http.StatusOK, gin.H{"status": "not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleaned up"})
}

func (h *Handler) health(c *gin.Context) {
	_, err := os.Stat(h.store.Dir())
	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"storage_dir":    h.store.Dir(),
		"storage_exists": err == nil,
	})
}

func (h *Handler) notFoundOrError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, storage.ErrJobNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
	case errors.Is(err, storage.ErrFileNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
