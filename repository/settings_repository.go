package repository

import (
	"context"
	"time"

	"storefront-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SettingsRepository struct {
	collection *mongo.Collection
}

func NewSettingsRepository(db *mongo.Database) *SettingsRepository {
	return &SettingsRepository{
		collection: db.Collection("settings"),
	}
}

// Get returns the single settings document, or mongo.ErrNoDocuments when the
// store has never been configured.
func (r *SettingsRepository) Get(ctx context.Context) (*models.Settings, error) {
	var settings models.Settings
	err := r.collection.FindOne(ctx, bson.M{}).Decode(&settings)
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *SettingsRepository) Save(ctx context.Context, settings *models.Settings) error {
	settings.UpdatedAt = time.Now().UTC()
	filter := bson.M{}
	if !settings.ID.IsZero() {
		filter = bson.M{"_id": settings.ID}
	}
	update := bson.M{"$set": bson.M{
		"default_page_size": settings.DefaultPageSize,
		"site_name":         settings.SiteName,
		"updated_at":        settings.UpdatedAt,
	}}
	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

var _ SettingsRepo = (*SettingsRepository)(nil)
