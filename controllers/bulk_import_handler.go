package controllers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BulkImportHandler handles CSV product import endpoints.
type BulkImportHandler struct {
	importer  ImportServiceAPI
	cache     *CacheManager
	validator *RequestValidator
	timeout   time.Duration
}

func NewBulkImportHandler(importer ImportServiceAPI, cache *CacheManager, validator *RequestValidator) *BulkImportHandler {
	return &BulkImportHandler{
		importer:  importer,
		cache:     cache,
		validator: validator,
		timeout:   DefaultContextTimeout,
	}
}

// ValidateBulkImport runs the import pipeline without inserting anything and
// reports the row errors, warnings and duplicates it would produce.
func (h *BulkImportHandler) ValidateBulkImport(c *gin.Context) {
	csvText, ok := h.readUpload(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	validation, err := h.importer.ValidateImport(ctx, csvText)
	if err != nil {
		zap.L().Error("Bulk import validation failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, validation)
}

// CreateBulkProducts imports products from an uploaded CSV file.
func (h *BulkImportHandler) CreateBulkProducts(c *gin.Context) {
	csvText, ok := h.readUpload(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	result, err := h.importer.ProcessImport(ctx, csvText)
	if err != nil {
		zap.L().Error("Bulk import failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	if result.Succeeded > 0 {
		if err := h.cache.Invalidate(ctx); err != nil {
			zap.L().Error("Failed to invalidate listing cache after import", zap.Error(err))
		}
	}

	zap.L().Info("Bulk import finished",
		zap.Int("processed", result.Processed),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed),
		zap.Int("duplicates", result.DuplicatesFound),
	)
	c.JSON(http.StatusOK, result)
}

func (h *BulkImportHandler) readUpload(c *gin.Context) (string, bool) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "File upload required"})
		return "", false
	}

	if err := h.validator.ValidateCSVFile(file); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return "", false
	}

	src, err := file.Open()
	if err != nil {
		zap.L().Error("Failed to open uploaded file", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to open file"})
		return "", false
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, MaxUploadSize+1))
	if err != nil {
		zap.L().Error("Failed to read uploaded file", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to read file"})
		return "", false
	}

	return string(data), true
}
