package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"storefront-service/apperrors"
	"storefront-service/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ProductController handles catalog product endpoints for both the public
// storefront and the admin surface.
type ProductController struct {
	products  ProductServiceAPI
	cache     *CacheManager
	validator *RequestValidator
	timeout   time.Duration
}

func NewProductController(products ProductServiceAPI, cache *CacheManager, validator *RequestValidator) *ProductController {
	return &ProductController{
		products:  products,
		cache:     cache,
		validator: validator,
		timeout:   DefaultContextTimeout,
	}
}

// GetProducts lists published products for the storefront with faceted
// filtering, sorting and pagination.
func (pc *ProductController) GetProducts(c *gin.Context) {
	filters, err := pc.validator.ParseListFilters(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	filters.PublishedOnly = true

	ctx, cancel := context.WithTimeout(c.Request.Context(), pc.timeout)
	defer cancel()

	if cached, ok := pc.cache.GetProductList(ctx, filters); ok {
		pc.respondListing(c, cached)
		return
	}

	result, err := pc.products.ListProducts(ctx, filters)
	if err != nil {
		zap.L().Error("Failed to list products", zap.Error(err))
		c.JSON(apperrors.StatusCode(err), gin.H{"error": "Failed to fetch products"})
		return
	}

	pc.cache.SetProductListAsync(filters, result)
	pc.respondListing(c, result)
}

// GetProductsAdmin lists all products, drafts included, for the admin catalog.
func (pc *ProductController) GetProductsAdmin(c *gin.Context) {
	filters, err := pc.validator.ParseListFilters(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), pc.timeout)
	defer cancel()

	result, err := pc.products.ListProducts(ctx, filters)
	if err != nil {
		zap.L().Error("Failed to list products for admin", zap.Error(err))
		c.JSON(apperrors.StatusCode(err), gin.H{"error": "Failed to fetch products"})
		return
	}

	pc.respondListing(c, result)
}

// GetProductByID fetches a single product.
func (pc *ProductController) GetProductByID(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID format"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), pc.timeout)
	defer cancel()

	product, err := pc.products.GetProduct(ctx, id)
	if err != nil {
		pc.respondError(c, err, "Failed to fetch product")
		return
	}

	c.JSON(http.StatusOK, product)
}

// GetProductBySlug fetches a single product by its URL slug.
func (pc *ProductController) GetProductBySlug(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product slug is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), pc.timeout)
	defer cancel()

	product, err := pc.products.GetProductBySlug(ctx, slug)
	if err != nil {
		pc.respondError(c, err, "Failed to fetch product")
		return
	}

	c.JSON(http.StatusOK, product)
}

// CreateProduct creates a new product from the admin form payload.
func (pc *ProductController) CreateProduct(c *gin.Context) {
	var req services.ProductCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid JSON body"})
		return
	}
	if err := pc.validator.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), pc.timeout)
	defer cancel()

	product, err := pc.products.CreateProduct(ctx, req)
	if err != nil {
		pc.respondActionError(c, err, "Failed to create product")
		return
	}

	pc.invalidateListings(ctx)
	zap.L().Info("Product created", zap.String("id", product.ID.Hex()), zap.String("slug", product.Slug))
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Product created successfully",
		"product": product,
	})
}

// UpdateProduct applies a partial update to a product.
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid product ID format"})
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid JSON body"})
		return
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "No update fields provided"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), pc.timeout)
	defer cancel()

	if err := pc.products.UpdateProduct(ctx, id, updates); err != nil {
		pc.respondActionError(c, err, "Failed to update product")
		return
	}

	pc.invalidateListings(ctx)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product updated successfully"})
}

type deleteProductsRequest struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}

// DeleteProducts removes one or more products by ID.
func (pc *ProductController) DeleteProducts(c *gin.Context) {
	var req deleteProductsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Product IDs are required"})
		return
	}

	ids := make([]primitive.ObjectID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid product ID format: " + raw})
			return
		}
		ids = append(ids, id)
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), pc.timeout)
	defer cancel()

	deleted, err := pc.products.DeleteProducts(ctx, ids)
	if err != nil {
		pc.respondActionError(c, err, "Failed to delete products")
		return
	}

	pc.invalidateListings(ctx)
	zap.L().Info("Products deleted", zap.Int64("deleted", deleted), zap.Int("requested", len(ids)))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Products deleted successfully",
		"deleted": deleted,
	})
}

func (pc *ProductController) respondListing(c *gin.Context, result *services.ProductListResult) {
	c.JSON(http.StatusOK, gin.H{
		"products":       result.Products,
		"total_products": result.TotalProducts,
		"total_pages":    result.TotalPages,
		"from":           result.From,
		"to":             result.To,
	})
}

func (pc *ProductController) respondError(c *gin.Context, err error, fallback string) {
	status := apperrors.StatusCode(err)
	if status >= http.StatusInternalServerError {
		zap.L().Error(fallback, zap.Error(err))
		c.JSON(status, gin.H{"error": fallback})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (pc *ProductController) respondActionError(c *gin.Context, err error, fallback string) {
	status := apperrors.StatusCode(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		zap.L().Error(fallback, zap.Error(err))
		message = fallback
	}
	c.JSON(status, gin.H{"success": false, "message": message})
}

func (pc *ProductController) invalidateListings(ctx context.Context) {
	if err := pc.cache.Invalidate(ctx); err != nil {
		zap.L().Error("Failed to invalidate listing cache", zap.Error(err))
	}
}
