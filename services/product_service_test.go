package services

import (
	"context"
	"errors"
	"testing"

	"storefront-service/apperrors"
	"storefront-service/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestProductService(products *fakeProductRepo, categories []models.Category, brands []models.Brand) *ProductService {
	resolver := NewReferenceResolver(
		&fakeCategoryRepo{categories: categories},
		&fakeBrandRepo{brands: brands},
	)
	settings := NewSettingsService(&fakeSettingsRepo{}, nil)
	return NewProductService(products, resolver, NewQueryBuilder(resolver), settings)
}

func testRefs() ([]models.Category, []models.Brand) {
	return []models.Category{{ID: primitive.NewObjectID(), Name: "Lighting", Slug: "lighting", Path: []primitive.ObjectID{}}},
		[]models.Brand{{ID: primitive.NewObjectID(), Name: "Acme", Slug: "acme"}}
}

func TestCreateProductZeroesAggregates(t *testing.T) {
	cats, brands := testRefs()
	repo := &fakeProductRepo{}
	svc := newTestProductService(repo, cats, brands)

	product, err := svc.CreateProduct(context.Background(), ProductCreateRequest{
		Name:     "Desk Lamp",
		Category: "Lighting",
		Brand:    "Acme",
		Price:    49.99,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if product.Slug != "desk-lamp" {
		t.Fatalf("slug should derive from name, got %q", product.Slug)
	}
	if product.AvgRating != 0 || product.NumReviews != 0 || product.NumSales != 0 {
		t.Fatalf("aggregates must start at zero: %+v", product)
	}
	if product.Reviews == nil || len(product.Reviews) != 0 {
		t.Fatalf("reviews must start as an empty array, got %v", product.Reviews)
	}
	if len(product.CategoryHierarchy) != 1 || product.CategoryHierarchy[0] != cats[0].ID {
		t.Fatalf("unexpected hierarchy: %v", product.CategoryHierarchy)
	}
	if product.BrandID == nil || *product.BrandID != brands[0].ID {
		t.Fatalf("brand not resolved")
	}
}

func TestCreateProductRejectsDuplicateSlug(t *testing.T) {
	cats, brands := testRefs()
	repo := &fakeProductRepo{products: []models.Product{{ID: primitive.NewObjectID(), Slug: "desk-lamp"}}}
	svc := newTestProductService(repo, cats, brands)

	_, err := svc.CreateProduct(context.Background(), ProductCreateRequest{
		Name: "Desk Lamp", Category: "Lighting", Brand: "Acme",
	})
	if !errors.Is(err, apperrors.ErrDuplicateProduct) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestCreateProductUnknownReference(t *testing.T) {
	cats, brands := testRefs()
	svc := newTestProductService(&fakeProductRepo{}, cats, brands)

	_, err := svc.CreateProduct(context.Background(), ProductCreateRequest{
		Name: "Lamp", Category: "Ghosts", Brand: "Acme",
	})
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found for unknown category, got %v", err)
	}
}

func TestUpdateProductSkipsProtectedFields(t *testing.T) {
	cats, brands := testRefs()
	repo := &fakeProductRepo{updateMatched: 1}
	svc := newTestProductService(repo, cats, brands)

	err := svc.UpdateProduct(context.Background(), primitive.NewObjectID(), map[string]interface{}{
		"name":       "Renamed",
		"avg_rating": 5.0,
		"num_sales":  9999,
		"created_at": "2020-01-01",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastSet["name"] != "Renamed" {
		t.Fatalf("name should be set, got %v", repo.lastSet)
	}
	for _, protected := range []string{"avg_rating", "num_sales", "created_at"} {
		if _, present := repo.lastSet[protected]; present {
			t.Fatalf("protected field %q must not be written", protected)
		}
	}
}

func TestUpdateProductIgnoresRawReferenceKeys(t *testing.T) {
	// A GET/edit/PUT round trip sends the serialized category_id and brand_id
	// back; writing them raw would store hex strings and desync the
	// hierarchy, so only the "category"/"brand" keys may change references.
	cats, brands := testRefs()
	repo := &fakeProductRepo{updateMatched: 1}
	svc := newTestProductService(repo, cats, brands)

	err := svc.UpdateProduct(context.Background(), primitive.NewObjectID(), map[string]interface{}{
		"name":        "Renamed",
		"category_id": primitive.NewObjectID().Hex(),
		"brand_id":    primitive.NewObjectID().Hex(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastSet["name"] != "Renamed" {
		t.Fatalf("name should still be written, got %v", repo.lastSet)
	}
	for _, key := range []string{"category_id", "brand_id", "category_hierarchy"} {
		if _, present := repo.lastSet[key]; present {
			t.Fatalf("raw key %q must not be written", key)
		}
	}
}

func TestUpdateProductNullUnsetsField(t *testing.T) {
	cats, brands := testRefs()
	repo := &fakeProductRepo{updateMatched: 1}
	svc := newTestProductService(repo, cats, brands)

	err := svc.UpdateProduct(context.Background(), primitive.NewObjectID(), map[string]interface{}{
		"energy_rating": nil,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.lastUnset) != 1 || repo.lastUnset[0] != "energy_rating" {
		t.Fatalf("expected energy_rating unset, got %v", repo.lastUnset)
	}
}

func TestUpdateProductCategoryNoneClearsHierarchy(t *testing.T) {
	cats, brands := testRefs()
	repo := &fakeProductRepo{updateMatched: 1}
	svc := newTestProductService(repo, cats, brands)

	err := svc.UpdateProduct(context.Background(), primitive.NewObjectID(), map[string]interface{}{
		"category": "none",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hierarchy, ok := repo.lastSet["category_hierarchy"].([]primitive.ObjectID)
	if !ok || len(hierarchy) != 0 {
		t.Fatalf("hierarchy should be cleared to an empty array, got %v", repo.lastSet["category_hierarchy"])
	}
	if len(repo.lastUnset) != 1 || repo.lastUnset[0] != "category_id" {
		t.Fatalf("category_id should be unset, got %v", repo.lastUnset)
	}
}

func TestUpdateProductCategoryChangeRecomputesHierarchy(t *testing.T) {
	cats, brands := testRefs()
	repo := &fakeProductRepo{updateMatched: 1}
	svc := newTestProductService(repo, cats, brands)

	err := svc.UpdateProduct(context.Background(), primitive.NewObjectID(), map[string]interface{}{
		"category": "lighting",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastSet["category_id"] != cats[0].ID {
		t.Fatalf("category_id not set: %v", repo.lastSet)
	}
	hierarchy := repo.lastSet["category_hierarchy"].([]primitive.ObjectID)
	if len(hierarchy) != 1 || hierarchy[0] != cats[0].ID {
		t.Fatalf("unexpected hierarchy: %v", hierarchy)
	}
}

func TestUpdateProductNotFound(t *testing.T) {
	cats, brands := testRefs()
	repo := &fakeProductRepo{updateMatched: 0}
	svc := newTestProductService(repo, cats, brands)

	err := svc.UpdateProduct(context.Background(), primitive.NewObjectID(), map[string]interface{}{"name": "x"})
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteProductsPartialSuccess(t *testing.T) {
	cats, brands := testRefs()
	repo := &fakeProductRepo{deleteManyCount: 2}
	svc := newTestProductService(repo, cats, brands)

	ids := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()}
	deleted, err := svc.DeleteProducts(context.Background(), ids)
	if err != nil {
		t.Fatalf("deleting 2 of 3 is a success, got %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected 2 deletions, got %d", deleted)
	}
}

func TestDeleteProductsNoneMatched(t *testing.T) {
	cats, brands := testRefs()
	repo := &fakeProductRepo{deleteCount: 0}
	svc := newTestProductService(repo, cats, brands)

	_, err := svc.DeleteProducts(context.Background(), []primitive.ObjectID{primitive.NewObjectID()})
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	_, err = svc.DeleteProducts(context.Background(), nil)
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error for empty id list, got %v", err)
	}
}

func TestListProductsUnknownBrandReturnsEmptyPage(t *testing.T) {
	cats, brands := testRefs()
	repo := &fakeProductRepo{count: 42, findResult: []models.Product{{Name: "should not appear"}}}
	svc := newTestProductService(repo, cats, brands)

	result, err := svc.ListProducts(context.Background(), ProductListFilters{Brand: "ghost-brand", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("unknown brand filter must not fail: %v", err)
	}
	if len(result.Products) != 0 || result.TotalProducts != 0 || result.TotalPages != 0 {
		t.Fatalf("expected empty page, got %+v", result)
	}
}

func TestListProductsPagination(t *testing.T) {
	cats, brands := testRefs()
	repo := &fakeProductRepo{
		count:      25,
		findResult: []models.Product{{Name: "A"}, {Name: "B"}, {Name: "C"}, {Name: "D"}, {Name: "E"}},
	}
	svc := newTestProductService(repo, cats, brands)

	result, err := svc.ListProducts(context.Background(), ProductListFilters{Page: 3, PageSize: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastSkip != 10 || repo.lastLimit != 5 {
		t.Fatalf("unexpected skip/limit: %d/%d", repo.lastSkip, repo.lastLimit)
	}
	if result.TotalPages != 5 || result.From != 11 || result.To != 15 {
		t.Fatalf("unexpected window: %+v", result)
	}
}

func TestListProductsDefaultsPageSizeFromSettings(t *testing.T) {
	cats, brands := testRefs()
	repo := &fakeProductRepo{}
	resolver := NewReferenceResolver(&fakeCategoryRepo{categories: cats}, &fakeBrandRepo{brands: brands})
	settings := NewSettingsService(&fakeSettingsRepo{settings: &models.Settings{DefaultPageSize: 12}}, nil)
	svc := NewProductService(repo, resolver, NewQueryBuilder(resolver), settings)

	if _, err := svc.ListProducts(context.Background(), ProductListFilters{Page: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastLimit != 12 {
		t.Fatalf("page size should come from settings, got %d", repo.lastLimit)
	}

	// No settings document at all falls back to the hardcoded default.
	repo2 := &fakeProductRepo{}
	svc2 := newTestProductService(repo2, cats, brands)
	if _, err := svc2.ListProducts(context.Background(), ProductListFilters{Page: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo2.lastLimit != int64(FallbackPageSize) {
		t.Fatalf("expected fallback page size %d, got %d", FallbackPageSize, repo2.lastLimit)
	}
}
