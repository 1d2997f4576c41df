package services

import (
	"context"

	"storefront-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// In-memory repository fakes shared by the service tests. Lookups behave like
// the Mongo implementations: a miss is mongo.ErrNoDocuments, never nil-nil.

type fakeCategoryRepo struct {
	categories []models.Category
	updates    map[primitive.ObjectID]bson.M
	deleted    []primitive.ObjectID
}

func (f *fakeCategoryRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	for i := range f.categories {
		if f.categories[i].ID == id {
			cat := f.categories[i]
			return &cat, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeCategoryRepo) FindOne(ctx context.Context, filter bson.M) (*models.Category, error) {
	for i := range f.categories {
		if categoryMatches(f.categories[i], filter) {
			cat := f.categories[i]
			return &cat, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeCategoryRepo) FindAll(ctx context.Context) ([]models.Category, error) {
	return append([]models.Category{}, f.categories...), nil
}

func (f *fakeCategoryRepo) FindChildren(ctx context.Context, parentID primitive.ObjectID) ([]models.Category, error) {
	var children []models.Category
	for i := range f.categories {
		if f.categories[i].ParentID != nil && *f.categories[i].ParentID == parentID {
			children = append(children, f.categories[i])
		}
	}
	return children, nil
}

func (f *fakeCategoryRepo) Create(ctx context.Context, category *models.Category) error {
	f.categories = append(f.categories, *category)
	return nil
}

func (f *fakeCategoryRepo) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (int64, error) {
	if f.updates == nil {
		f.updates = make(map[primitive.ObjectID]bson.M)
	}
	merged := f.updates[id]
	if merged == nil {
		merged = bson.M{}
	}
	for k, v := range set {
		merged[k] = v
	}
	f.updates[id] = merged

	for i := range f.categories {
		if f.categories[i].ID != id {
			continue
		}
		if v, ok := set["path"].([]primitive.ObjectID); ok {
			f.categories[i].Path = v
		}
		if v, ok := set["depth"].(int); ok {
			f.categories[i].Depth = v
		}
		if v, ok := set["is_parent"].(bool); ok {
			f.categories[i].IsParent = v
		}
		if v, ok := set["name"].(string); ok {
			f.categories[i].Name = v
		}
		switch v := set["parent_id"].(type) {
		case primitive.ObjectID:
			pid := v
			f.categories[i].ParentID = &pid
		case nil:
			if _, present := set["parent_id"]; present {
				f.categories[i].ParentID = nil
			}
		}
		return 1, nil
	}
	return 0, nil
}

func (f *fakeCategoryRepo) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	for i := range f.categories {
		if f.categories[i].ID == id {
			f.categories = append(f.categories[:i], f.categories[i+1:]...)
			f.deleted = append(f.deleted, id)
			return 1, nil
		}
	}
	return 0, nil
}

func categoryMatches(cat models.Category, filter bson.M) bool {
	for k, v := range filter {
		switch k {
		case "name":
			if cat.Name != v {
				return false
			}
		case "slug":
			if cat.Slug != v {
				return false
			}
		default:
			return false
		}
	}
	return true
}

type fakeBrandRepo struct {
	brands []models.Brand
}

func (f *fakeBrandRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Brand, error) {
	for i := range f.brands {
		if f.brands[i].ID == id {
			brand := f.brands[i]
			return &brand, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeBrandRepo) FindOne(ctx context.Context, filter bson.M) (*models.Brand, error) {
	for i := range f.brands {
		match := true
		for k, v := range filter {
			switch k {
			case "name":
				match = match && f.brands[i].Name == v
			case "slug":
				match = match && f.brands[i].Slug == v
			default:
				match = false
			}
		}
		if match {
			brand := f.brands[i]
			return &brand, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeBrandRepo) FindAll(ctx context.Context) ([]models.Brand, error) {
	return append([]models.Brand{}, f.brands...), nil
}

func (f *fakeBrandRepo) Create(ctx context.Context, brand *models.Brand) error {
	f.brands = append(f.brands, *brand)
	return nil
}

type fakeProductRepo struct {
	products   []models.Product
	findResult []models.Product
	count      int64

	insertFailures map[int]string
	insertErr      error
	insertedBatch  [][]models.Product

	updateMatched int64
	lastSet       bson.M
	lastUnset     []string

	deleteCount     int64
	deleteManyCount int64

	lastFilter bson.M
	lastSort   bson.D
	lastSkip   int64
	lastLimit  int64
}

func (f *fakeProductRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	for i := range f.products {
		if f.products[i].ID == id {
			p := f.products[i]
			return &p, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeProductRepo) FindOne(ctx context.Context, filter bson.M) (*models.Product, error) {
	for i := range f.products {
		if productMatches(f.products[i], filter) {
			p := f.products[i]
			return &p, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeProductRepo) Find(ctx context.Context, filter bson.M, sort bson.D, skip, limit int64) ([]models.Product, error) {
	f.lastFilter = filter
	f.lastSort = sort
	f.lastSkip = skip
	f.lastLimit = limit
	return f.findResult, nil
}

func (f *fakeProductRepo) Count(ctx context.Context, filter bson.M) (int64, error) {
	return f.count, nil
}

func (f *fakeProductRepo) Create(ctx context.Context, product *models.Product) error {
	f.products = append(f.products, *product)
	return nil
}

func (f *fakeProductRepo) InsertManyUnordered(ctx context.Context, products []models.Product) (int, map[int]string, error) {
	if f.insertErr != nil {
		return 0, nil, f.insertErr
	}
	f.insertedBatch = append(f.insertedBatch, products)
	failed := f.insertFailures
	for i := range products {
		if _, bad := failed[i]; !bad {
			f.products = append(f.products, products[i])
		}
	}
	return len(products) - len(failed), failed, nil
}

func (f *fakeProductRepo) Update(ctx context.Context, id primitive.ObjectID, set bson.M, unset []string) (int64, error) {
	f.lastSet = set
	f.lastUnset = unset
	return f.updateMatched, nil
}

func (f *fakeProductRepo) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	return f.deleteCount, nil
}

func (f *fakeProductRepo) DeleteMany(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	return f.deleteManyCount, nil
}

func (f *fakeProductRepo) EnsureIndexes(ctx context.Context) error {
	return nil
}

func productMatches(p models.Product, filter bson.M) bool {
	for k, v := range filter {
		switch k {
		case "slug":
			if p.Slug != v {
				return false
			}
		case "sku":
			if p.SKU != v {
				return false
			}
		case "model_number":
			if p.ModelNumber != v {
				return false
			}
		case "name":
			if p.Name != v {
				return false
			}
		case "brand_id":
			id, ok := v.(primitive.ObjectID)
			if !ok || p.BrandID == nil || *p.BrandID != id {
				return false
			}
		default:
			return false
		}
	}
	return true
}

type fakeSettingsRepo struct {
	settings *models.Settings
	saved    *models.Settings
}

func (f *fakeSettingsRepo) Get(ctx context.Context) (*models.Settings, error) {
	if f.settings == nil {
		return nil, mongo.ErrNoDocuments
	}
	s := *f.settings
	return &s, nil
}

func (f *fakeSettingsRepo) Save(ctx context.Context, settings *models.Settings) error {
	s := *settings
	f.saved = &s
	f.settings = &s
	return nil
}
