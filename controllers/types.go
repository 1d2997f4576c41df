package controllers

import (
	"context"
	"time"

	"storefront-service/models"
	"storefront-service/services"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Default configuration values.
const (
	DefaultCacheTTL       = 10 * time.Minute
	DefaultContextTimeout = 30 * time.Second
)

// ProductServiceAPI defines the product operations the controllers depend on.
type ProductServiceAPI interface {
	GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	ListProducts(ctx context.Context, f services.ProductListFilters) (*services.ProductListResult, error)
	CreateProduct(ctx context.Context, req services.ProductCreateRequest) (*models.Product, error)
	UpdateProduct(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	DeleteProducts(ctx context.Context, ids []primitive.ObjectID) (int64, error)
}

// ImportServiceAPI defines the CSV bulk import operations.
type ImportServiceAPI interface {
	ProcessImport(ctx context.Context, csvText string) (*models.BulkImportResult, error)
	ValidateImport(ctx context.Context, csvText string) (*models.BulkImportValidation, error)
}

// CategoryServiceAPI defines the category operations the controllers depend on.
type CategoryServiceAPI interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	CreateCategory(ctx context.Context, req services.CategoryCreateRequest) (*models.Category, error)
	UpdateCategory(ctx context.Context, id primitive.ObjectID, req services.CategoryCreateRequest) (*models.Category, error)
	DeleteCategory(ctx context.Context, id primitive.ObjectID) error
}

// BrandServiceAPI defines the brand operations the controllers depend on.
type BrandServiceAPI interface {
	ListBrands(ctx context.Context) ([]models.Brand, error)
	CreateBrand(ctx context.Context, req services.BrandCreateRequest) (*models.Brand, error)
}

// SettingsServiceAPI defines the settings operations the controllers depend on.
type SettingsServiceAPI interface {
	Get(ctx context.Context) (*models.Settings, error)
	Update(ctx context.Context, settings *models.Settings) error
}
