package routes

import (
	"net/http"

	"storefront-service/controllers"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires the storefront and admin route groups.
func RegisterRoutes(
	r *gin.Engine,
	products *controllers.ProductController,
	categories *controllers.CategoryController,
	brands *controllers.BrandController,
	imports *controllers.BulkImportHandler,
) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	// Public storefront surface, published products only.
	store := r.Group("/store")
	{
		store.GET("/products", products.GetProducts)
		store.GET("/products/slug/:slug", products.GetProductBySlug)
		store.GET("/products/:id", products.GetProductByID)
		store.GET("/categories", categories.GetCategories)
		store.GET("/brands", brands.GetBrands)
	}

	// Admin catalog surface.
	admin := r.Group("/admin")
	{
		admin.GET("/products", products.GetProductsAdmin)
		admin.GET("/products/:id", products.GetProductByID)
		admin.POST("/products", products.CreateProduct)
		admin.PUT("/products/:id", products.UpdateProduct)
		admin.DELETE("/products", products.DeleteProducts)

		admin.POST("/products/bulk/validate", imports.ValidateBulkImport)
		admin.POST("/products/bulk", imports.CreateBulkProducts)

		admin.GET("/categories", categories.GetCategories)
		admin.GET("/categories/:id", categories.GetCategoryByID)
		admin.POST("/categories", categories.CreateCategory)
		admin.PUT("/categories/:id", categories.UpdateCategory)
		admin.DELETE("/categories/:id", categories.DeleteCategory)

		admin.GET("/brands", brands.GetBrands)
		admin.POST("/brands", brands.CreateBrand)

		admin.GET("/settings", brands.GetSettings)
		admin.PUT("/settings", brands.UpdateSettings)
	}
}
