package controllers

import (
	"context"
	"net/http"
	"time"

	"storefront-service/apperrors"
	"storefront-service/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CategoryController handles category tree endpoints.
type CategoryController struct {
	categories CategoryServiceAPI
	cache      *CacheManager
	validator  *RequestValidator
	timeout    time.Duration
}

func NewCategoryController(categories CategoryServiceAPI, cache *CacheManager, validator *RequestValidator) *CategoryController {
	return &CategoryController{
		categories: categories,
		cache:      cache,
		validator:  validator,
		timeout:    DefaultContextTimeout,
	}
}

// GetCategories lists all categories with their effective banner images.
func (cc *CategoryController) GetCategories(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), cc.timeout)
	defer cancel()

	categories, err := cc.categories.ListCategories(ctx)
	if err != nil {
		zap.L().Error("Failed to list categories", zap.Error(err))
		c.JSON(apperrors.StatusCode(err), gin.H{"error": "Failed to fetch categories"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// GetCategoryByID fetches a single category.
func (cc *CategoryController) GetCategoryByID(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID format"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), cc.timeout)
	defer cancel()

	category, err := cc.categories.GetCategory(ctx, id)
	if err != nil {
		status := apperrors.StatusCode(err)
		if status >= http.StatusInternalServerError {
			zap.L().Error("Failed to fetch category", zap.Error(err))
			c.JSON(status, gin.H{"error": "Failed to fetch category"})
			return
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, category)
}

// CreateCategory creates a category, optionally under a parent.
func (cc *CategoryController) CreateCategory(c *gin.Context) {
	var req services.CategoryCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid JSON body"})
		return
	}
	if err := cc.validator.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), cc.timeout)
	defer cancel()

	category, err := cc.categories.CreateCategory(ctx, req)
	if err != nil {
		cc.respondActionError(c, err, "Failed to create category")
		return
	}

	zap.L().Info("Category created", zap.String("id", category.ID.Hex()), zap.String("slug", category.Slug))
	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"message":  "Category created successfully",
		"category": category,
	})
}

// UpdateCategory updates a category and recomputes descendant paths when the
// parent changes.
func (cc *CategoryController) UpdateCategory(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid category ID format"})
		return
	}

	var req services.CategoryCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid JSON body"})
		return
	}
	if err := cc.validator.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), cc.timeout)
	defer cancel()

	category, err := cc.categories.UpdateCategory(ctx, id, req)
	if err != nil {
		cc.respondActionError(c, err, "Failed to update category")
		return
	}

	cc.invalidateListings(ctx)
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Category updated successfully",
		"category": category,
	})
}

// DeleteCategory removes an empty leaf category.
func (cc *CategoryController) DeleteCategory(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid category ID format"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), cc.timeout)
	defer cancel()

	if err := cc.categories.DeleteCategory(ctx, id); err != nil {
		cc.respondActionError(c, err, "Failed to delete category")
		return
	}

	cc.invalidateListings(ctx)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Category deleted successfully"})
}

func (cc *CategoryController) respondActionError(c *gin.Context, err error, fallback string) {
	status := apperrors.StatusCode(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		zap.L().Error(fallback, zap.Error(err))
		message = fallback
	}
	c.JSON(status, gin.H{"success": false, "message": message})
}

func (cc *CategoryController) invalidateListings(ctx context.Context) {
	if err := cc.cache.Invalidate(ctx); err != nil {
		zap.L().Error("Failed to invalidate listing cache", zap.Error(err))
	}
}
