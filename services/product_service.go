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

// Fields admin updates never write directly: the review and order subsystems
// own the aggregates, and the stored reference fields only change through the
// "category"/"brand" update keys so the hierarchy stays consistent.
var protectedProductFields = map[string]bool{
	"_id":                 true,
	"avg_rating":          true,
	"num_reviews":         true,
	"num_sales":           true,
	"rating_distribution": true,
	"reviews":             true,
	"created_at":          true,
	"category_id":         true,
	"category_hierarchy":  true,
	"brand_id":            true,
}

type ProductService struct {
	products     repository.ProductRepo
	resolver     *ReferenceResolver
	queryBuilder *QueryBuilder
	settings     *SettingsService
}

func NewProductService(products repository.ProductRepo, resolver *ReferenceResolver, qb *QueryBuilder, settings *SettingsService) *ProductService {
	return &ProductService{
		products:     products,
		resolver:     resolver,
		queryBuilder: qb,
		settings:     settings,
	}
}

func (s *ProductService) GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.NotFoundf("product %s", id.Hex())
	}
	return product, err
}

func (s *ProductService) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	product, err := s.products.FindOne(ctx, bson.M{"slug": slug})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.NotFoundf("product %q", slug)
	}
	return product, err
}

// ListProducts runs the shared filter pipeline. An unresolvable category or
// brand filter returns an empty page, never an error.
func (s *ProductService) ListProducts(ctx context.Context, f ProductListFilters) (*ProductListResult, error) {
	if f.PageSize <= 0 {
		f.PageSize = s.settings.DefaultPageSize(ctx)
	}
	if f.Page < 1 {
		f.Page = 1
	}

	filter, sort, err := s.queryBuilder.BuildProductQuery(ctx, f)
	if err != nil {
		if errors.Is(err, apperrors.ErrNoResults) {
			return &ProductListResult{Products: []models.Product{}}, nil
		}
		return nil, err
	}

	skip := int64(f.PageSize) * int64(f.Page-1)
	products, err := s.products.Find(ctx, filter, sort, skip, int64(f.PageSize))
	if err != nil {
		return nil, err
	}
	total, err := s.products.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	page := BuildPagination(f.Page, f.PageSize, total, len(products))
	if products == nil {
		products = []models.Product{}
	}
	return &ProductListResult{
		Products:      products,
		TotalProducts: total,
		TotalPages:    page.TotalPages,
		From:          page.From,
		To:            page.To,
	}, nil
}

// CreateProduct validates references, enforces slug uniqueness and persists
// the product with all customer-derived aggregates zeroed.
func (s *ProductService) CreateProduct(ctx context.Context, req ProductCreateRequest) (*models.Product, error) {
	slug := req.Slug
	if slug == "" {
		slug = Slugify(req.Name)
	}

	if _, err := s.products.FindOne(ctx, bson.M{"slug": slug}); err == nil {
		return nil, fmt.Errorf("%w: product with slug %q already exists", apperrors.ErrDuplicateProduct, slug)
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	category, err := s.resolver.ResolveCategory(ctx, req.Category)
	if err != nil {
		return nil, err
	}
	brand, err := s.resolver.ResolveBrand(ctx, req.Brand)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &models.Product{
		ID:                   primitive.NewObjectID(),
		Name:                 req.Name,
		Slug:                 slug,
		SKU:                  req.SKU,
		ModelNumber:          req.ModelNumber,
		Description:          req.Description,
		CategoryID:           &category.ID,
		BrandID:              &brand.ID,
		CategoryHierarchy:    Hierarchy(category),
		Price:                req.Price,
		ListPrice:            req.ListPrice,
		CountInStock:         req.CountInStock,
		Images:               req.Images,
		Tags:                 req.Tags,
		Specifications:       req.Specifications,
		Variants:             req.Variants,
		Dimensions:           req.Dimensions,
		Weight:               req.Weight,
		Material:             req.Material,
		Finish:               req.Finish,
		EnergyRating:         req.EnergyRating,
		EnergyConsumption:    req.EnergyConsumption,
		Capacity:             req.Capacity,
		WarrantyDetails:      req.WarrantyDetails,
		InstallationRequired: req.InstallationRequired,
		IsPublished:          req.IsPublished,
		CreatedAt:            now,
		UpdatedAt:            now,
		// Aggregates stay zero regardless of caller input: the review and
		// order subsystems own them.
		Reviews: []models.Review{},
	}

	if err := s.products.Create(ctx, product); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: product with slug %q already exists", apperrors.ErrDuplicateProduct, slug)
		}
		return nil, err
	}
	return product, nil
}

// UpdateProduct applies a partial update: only keys present in updates are
// touched, and an explicit null unsets the optional field. A category change
// recomputes the stored hierarchy; category "none" clears it.
func (s *ProductService) UpdateProduct(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return apperrors.Validationf("no update fields provided")
	}

	set := bson.M{}
	var unset []string

	for key, value := range updates {
		if protectedProductFields[key] {
			continue
		}
		switch key {
		case "category":
			if err := s.applyCategoryChange(ctx, value, set, &unset); err != nil {
				return err
			}
		case "brand":
			ref, _ := value.(string)
			brand, err := s.resolver.ResolveBrand(ctx, ref)
			if err != nil {
				return err
			}
			set["brand_id"] = brand.ID
		case "slug":
			slug, _ := value.(string)
			if slug == "" {
				return apperrors.Validationf("slug cannot be empty")
			}
			existing, err := s.products.FindOne(ctx, bson.M{"slug": slug})
			if err == nil && existing.ID != id {
				return fmt.Errorf("%w: product with slug %q already exists", apperrors.ErrDuplicateProduct, slug)
			} else if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
				return err
			}
			set["slug"] = slug
		default:
			if value == nil {
				unset = append(unset, key)
			} else {
				set[key] = value
			}
		}
	}

	matched, err := s.products.Update(ctx, id, set, unset)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: slug already in use", apperrors.ErrDuplicateProduct)
		}
		return err
	}
	if matched == 0 {
		return apperrors.NotFoundf("product %s", id.Hex())
	}
	return nil
}

func (s *ProductService) applyCategoryChange(ctx context.Context, value interface{}, set bson.M, unset *[]string) error {
	ref, _ := value.(string)
	if value == nil || ref == "" || ref == "none" {
		set["category_hierarchy"] = []primitive.ObjectID{}
		*unset = append(*unset, "category_id")
		return nil
	}
	category, err := s.resolver.ResolveCategory(ctx, ref)
	if err != nil {
		return err
	}
	set["category_id"] = category.ID
	set["category_hierarchy"] = Hierarchy(category)
	return nil
}

// DeleteProducts removes one or more products and reports how many actually
// went away. Partial success is fine; only zero deletions is a failure.
func (s *ProductService) DeleteProducts(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, apperrors.Validationf("no product ids provided")
	}

	var deleted int64
	var err error
	if len(ids) == 1 {
		deleted, err = s.products.Delete(ctx, ids[0])
	} else {
		deleted, err = s.products.DeleteMany(ctx, ids)
	}
	if err != nil {
		return 0, err
	}
	if deleted == 0 {
		return 0, apperrors.NotFoundf("no matching products")
	}
	return deleted, nil
}
