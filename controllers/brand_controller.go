package controllers

import (
	"context"
	"net/http"
	"time"

	"storefront-service/apperrors"
	"storefront-service/models"
	"storefront-service/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BrandController handles brand and store settings endpoints.
type BrandController struct {
	brands    BrandServiceAPI
	settings  SettingsServiceAPI
	validator *RequestValidator
	timeout   time.Duration
}

func NewBrandController(brands BrandServiceAPI, settings SettingsServiceAPI, validator *RequestValidator) *BrandController {
	return &BrandController{
		brands:    brands,
		settings:  settings,
		validator: validator,
		timeout:   DefaultContextTimeout,
	}
}

// GetBrands lists all brands.
func (bc *BrandController) GetBrands(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), bc.timeout)
	defer cancel()

	brands, err := bc.brands.ListBrands(ctx)
	if err != nil {
		zap.L().Error("Failed to list brands", zap.Error(err))
		c.JSON(apperrors.StatusCode(err), gin.H{"error": "Failed to fetch brands"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"brands": brands})
}

// CreateBrand creates a brand.
func (bc *BrandController) CreateBrand(c *gin.Context) {
	var req services.BrandCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid JSON body"})
		return
	}
	if err := bc.validator.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), bc.timeout)
	defer cancel()

	brand, err := bc.brands.CreateBrand(ctx, req)
	if err != nil {
		status := apperrors.StatusCode(err)
		message := err.Error()
		if status >= http.StatusInternalServerError {
			zap.L().Error("Failed to create brand", zap.Error(err))
			message = "Failed to create brand"
		}
		c.JSON(status, gin.H{"success": false, "message": message})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Brand created successfully",
		"brand":   brand,
	})
}

// GetSettings returns the store settings, synthesized defaults included.
func (bc *BrandController) GetSettings(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), bc.timeout)
	defer cancel()

	settings, err := bc.settings.Get(ctx)
	if err != nil {
		zap.L().Error("Failed to fetch settings", zap.Error(err))
		c.JSON(apperrors.StatusCode(err), gin.H{"error": "Failed to fetch settings"})
		return
	}

	c.JSON(http.StatusOK, settings)
}

// UpdateSettings saves the store settings.
func (bc *BrandController) UpdateSettings(c *gin.Context) {
	var settings models.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid JSON body"})
		return
	}
	if settings.DefaultPageSize < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Default page size must be at least 1"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), bc.timeout)
	defer cancel()

	if err := bc.settings.Update(ctx, &settings); err != nil {
		zap.L().Error("Failed to update settings", zap.Error(err))
		c.JSON(apperrors.StatusCode(err), gin.H{"success": false, "message": "Failed to update settings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Settings updated successfully"})
}
