package repository

import (
	"context"

	"storefront-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductRepo defines the product persistence operations used by the service
// layer. Keeping this an interface lets tests swap in fakes without a
// database.
type ProductRepo interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindOne(ctx context.Context, filter bson.M) (*models.Product, error)
	Find(ctx context.Context, filter bson.M, sort bson.D, skip, limit int64) ([]models.Product, error)
	Count(ctx context.Context, filter bson.M) (int64, error)
	Create(ctx context.Context, product *models.Product) error
	// InsertManyUnordered performs an unordered bulk insert so one document's
	// constraint violation does not abort its siblings. Per-document failures
	// come back keyed by the input slice index.
	InsertManyUnordered(ctx context.Context, products []models.Product) (inserted int, failed map[int]string, err error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M, unset []string) (matched int64, err error)
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
	DeleteMany(ctx context.Context, ids []primitive.ObjectID) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

// CategoryRepo defines the category persistence operations.
type CategoryRepo interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	FindOne(ctx context.Context, filter bson.M) (*models.Category, error)
	FindAll(ctx context.Context) ([]models.Category, error)
	FindChildren(ctx context.Context, parentID primitive.ObjectID) ([]models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
}

// BrandRepo defines the brand persistence operations.
type BrandRepo interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Brand, error)
	FindOne(ctx context.Context, filter bson.M) (*models.Brand, error)
	FindAll(ctx context.Context) ([]models.Brand, error)
	Create(ctx context.Context, brand *models.Brand) error
}

// SettingsRepo reads and writes the single settings document.
type SettingsRepo interface {
	Get(ctx context.Context) (*models.Settings, error)
	Save(ctx context.Context, settings *models.Settings) error
}
