package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-service/apperrors"
	"storefront-service/models"
	"storefront-service/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type BrandService struct {
	brands repository.BrandRepo
}

func NewBrandService(brands repository.BrandRepo) *BrandService {
	return &BrandService{brands: brands}
}

func (s *BrandService) ListBrands(ctx context.Context) ([]models.Brand, error) {
	brands, err := s.brands.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if brands == nil {
		brands = []models.Brand{}
	}
	return brands, nil
}

func (s *BrandService) CreateBrand(ctx context.Context, req BrandCreateRequest) (*models.Brand, error) {
	slug := req.Slug
	if slug == "" {
		slug = Slugify(req.Name)
	}

	if _, err := s.brands.FindOne(ctx, bson.M{"slug": slug}); err == nil {
		return nil, fmt.Errorf("%w: brand with slug %q already exists", apperrors.ErrDuplicateProduct, slug)
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	now := time.Now().UTC()
	brand := &models.Brand{
		ID:        primitive.NewObjectID(),
		Name:      req.Name,
		Slug:      slug,
		Logo:      req.Logo,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.brands.Create(ctx, brand); err != nil {
		return nil, err
	}
	return brand, nil
}
