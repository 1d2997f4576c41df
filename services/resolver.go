package services

import (
	"context"
	"errors"

	"storefront-service/apperrors"
	"storefront-service/models"
	"storefront-service/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ReferenceResolver turns a human reference (ID hex, exact name or slug) into
// the canonical category/brand record. Name matching is case-sensitive.
// Resolution is read-only.
type ReferenceResolver struct {
	categories repository.CategoryRepo
	brands     repository.BrandRepo
}

func NewReferenceResolver(categories repository.CategoryRepo, brands repository.BrandRepo) *ReferenceResolver {
	return &ReferenceResolver{categories: categories, brands: brands}
}

// ResolveCategory returns the category the reference points at, or
// apperrors.ErrNotFound when nothing matches.
func (r *ReferenceResolver) ResolveCategory(ctx context.Context, ref string) (*models.Category, error) {
	if ref == "" {
		return nil, apperrors.NotFoundf("empty category reference")
	}

	if id, err := primitive.ObjectIDFromHex(ref); err == nil {
		cat, err := r.categories.FindByID(ctx, id)
		if err == nil {
			return cat, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, err
		}
		return nil, apperrors.NotFoundf("category %q", ref)
	}

	for _, filter := range []bson.M{{"name": ref}, {"slug": ref}} {
		cat, err := r.categories.FindOne(ctx, filter)
		if err == nil {
			return cat, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, err
		}
	}
	return nil, apperrors.NotFoundf("category %q", ref)
}

// ResolveBrand returns the brand the reference points at, or
// apperrors.ErrNotFound when nothing matches.
func (r *ReferenceResolver) ResolveBrand(ctx context.Context, ref string) (*models.Brand, error) {
	if ref == "" {
		return nil, apperrors.NotFoundf("empty brand reference")
	}

	if id, err := primitive.ObjectIDFromHex(ref); err == nil {
		brand, err := r.brands.FindByID(ctx, id)
		if err == nil {
			return brand, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, err
		}
		return nil, apperrors.NotFoundf("brand %q", ref)
	}

	for _, filter := range []bson.M{{"name": ref}, {"slug": ref}} {
		brand, err := r.brands.FindOne(ctx, filter)
		if err == nil {
			return brand, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, err
		}
	}
	return nil, apperrors.NotFoundf("brand %q", ref)
}

// Hierarchy returns the denormalized ancestor chain stored on products:
// the category's path followed by its own ID.
func Hierarchy(cat *models.Category) []primitive.ObjectID {
	hierarchy := make([]primitive.ObjectID, 0, len(cat.Path)+1)
	hierarchy = append(hierarchy, cat.Path...)
	return append(hierarchy, cat.ID)
}
