package repository

import (
	"context"

	"storefront-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type BrandRepository struct {
	collection *mongo.Collection
}

func NewBrandRepository(db *mongo.Database) *BrandRepository {
	return &BrandRepository{
		collection: db.Collection("brands"),
	}
}

func (r *BrandRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Brand, error) {
	var brand models.Brand
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&brand)
	if err != nil {
		return nil, err
	}
	return &brand, nil
}

func (r *BrandRepository) FindOne(ctx context.Context, filter bson.M) (*models.Brand, error) {
	var brand models.Brand
	err := r.collection.FindOne(ctx, filter).Decode(&brand)
	if err != nil {
		return nil, err
	}
	return &brand, nil
}

func (r *BrandRepository) FindAll(ctx context.Context) ([]models.Brand, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var brands []models.Brand
	if err = cursor.All(ctx, &brands); err != nil {
		return nil, err
	}
	return brands, nil
}

func (r *BrandRepository) Create(ctx context.Context, brand *models.Brand) error {
	_, err := r.collection.InsertOne(ctx, brand)
	return err
}

var _ BrandRepo = (*BrandRepository)(nil)
