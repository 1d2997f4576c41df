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
	"go.uber.org/zap"
)

// maxCategoryDepth is the supported nesting limit: a root plus three levels
// below it. Parent walks are capped at this plus one step; exceeding the cap
// means the parent links form a cycle.
const maxCategoryDepth = 4

type CategoryService struct {
	categories repository.CategoryRepo
	products   repository.ProductRepo
	resolver   *ReferenceResolver
}

func NewCategoryService(categories repository.CategoryRepo, products repository.ProductRepo, resolver *ReferenceResolver) *CategoryService {
	return &CategoryService{categories: categories, products: products, resolver: resolver}
}

// EffectiveBanner returns the banner a category displays: its own if set,
// otherwise the nearest ancestor's, otherwise empty. byID must hold the full
// flat category set.
func EffectiveBanner(byID map[primitive.ObjectID]*models.Category, cat *models.Category) (string, error) {
	current := cat
	for steps := 0; steps <= maxCategoryDepth; steps++ {
		if current.BannerImage != "" {
			return current.BannerImage, nil
		}
		if current.ParentID == nil {
			return "", nil
		}
		parent, ok := byID[*current.ParentID]
		if !ok {
			// Dangling parent reference: treat as root rather than failing
			// the whole listing.
			return "", nil
		}
		current = parent
	}
	return "", fmt.Errorf("%w: category %s", apperrors.ErrCyclicHierarchy, cat.ID.Hex())
}

// ListCategories returns the flat category set, each annotated with its
// effective banner image.
func (s *CategoryService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.categories.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[primitive.ObjectID]*models.Category, len(categories))
	for i := range categories {
		byID[categories[i].ID] = &categories[i]
	}

	for i := range categories {
		banner, err := EffectiveBanner(byID, &categories[i])
		if err != nil {
			return nil, err
		}
		categories[i].EffectiveBannerImage = banner
	}
	return categories, nil
}

func (s *CategoryService) GetCategory(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	cat, err := s.categories.FindByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.NotFoundf("category %s", id.Hex())
	}
	return cat, err
}

// CreateCategory creates a category under the optional parent, computing its
// materialized path and depth.
func (s *CategoryService) CreateCategory(ctx context.Context, req CategoryCreateRequest) (*models.Category, error) {
	slug := req.Slug
	if slug == "" {
		slug = Slugify(req.Name)
	}

	if _, err := s.categories.FindOne(ctx, bson.M{"slug": slug}); err == nil {
		return nil, fmt.Errorf("%w: category with slug %q already exists", apperrors.ErrDuplicateProduct, slug)
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	var parent *models.Category
	if req.Parent != "" && req.Parent != "none" {
		var err error
		parent, err = s.resolver.ResolveCategory(ctx, req.Parent)
		if err != nil {
			return nil, err
		}
	}

	path, depth, err := childPlacement(parent)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	category := &models.Category{
		ID:          primitive.NewObjectID(),
		Name:        req.Name,
		Slug:        slug,
		Path:        path,
		Depth:       depth,
		BannerImage: req.BannerImage,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if parent != nil {
		category.ParentID = &parent.ID
	}

	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}

	if parent != nil && !parent.IsParent {
		if _, err := s.categories.Update(ctx, parent.ID, bson.M{"is_parent": true}); err != nil {
			zap.L().Warn("Failed to flag parent category", zap.String("parent", parent.ID.Hex()), zap.Error(err))
		}
	}
	return category, nil
}

// UpdateCategory applies a partial update. A parent change recomputes the
// materialized path and depth of the category and its whole subtree; moving a
// category under itself or one of its descendants is rejected as a cycle.
func (s *CategoryService) UpdateCategory(ctx context.Context, id primitive.ObjectID, req CategoryCreateRequest) (*models.Category, error) {
	current, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	// Only fields the payload actually carries are written; an omitted field
	// keeps its stored value.
	set := bson.M{}
	if req.Name != "" && req.Name != current.Name {
		set["name"] = req.Name
	}
	if req.BannerImage != "" && req.BannerImage != current.BannerImage {
		set["banner_image"] = req.BannerImage
	}
	if req.Description != "" && req.Description != current.Description {
		set["description"] = req.Description
	}
	if req.Slug != "" && req.Slug != current.Slug {
		set["slug"] = req.Slug
	}

	newParent, parentChanged, err := s.resolveParentChange(ctx, current, req.Parent)
	if err != nil {
		return nil, err
	}

	if parentChanged {
		path, depth, err := childPlacement(newParent)
		if err != nil {
			return nil, err
		}
		if containsID(path, id) {
			return nil, fmt.Errorf("%w: cannot move category %s under its own subtree", apperrors.ErrCyclicHierarchy, id.Hex())
		}
		set["path"] = path
		set["depth"] = depth
		if newParent != nil {
			set["parent_id"] = newParent.ID
		} else {
			set["parent_id"] = nil
		}
	}

	if _, err := s.categories.Update(ctx, id, set); err != nil {
		return nil, err
	}

	if parentChanged {
		newPath := append(append([]primitive.ObjectID{}, set["path"].([]primitive.ObjectID)...), id)
		if err := s.recomputeSubtree(ctx, id, newPath, 1); err != nil {
			return nil, err
		}
		s.refreshParentFlags(ctx, current.ParentID, newParent)
	}

	return s.GetCategory(ctx, id)
}

func (s *CategoryService) resolveParentChange(ctx context.Context, current *models.Category, parentRef string) (*models.Category, bool, error) {
	switch parentRef {
	case "":
		return nil, false, nil
	case "none":
		return nil, current.ParentID != nil, nil
	}
	parent, err := s.resolver.ResolveCategory(ctx, parentRef)
	if err != nil {
		return nil, false, err
	}
	if parent.ID == current.ID {
		return nil, false, fmt.Errorf("%w: category %s cannot be its own parent", apperrors.ErrCyclicHierarchy, current.ID.Hex())
	}
	if current.ParentID != nil && *current.ParentID == parent.ID {
		return parent, false, nil
	}
	return parent, true, nil
}

// recomputeSubtree rewrites path/depth for every descendant after a move. The
// recursion is capped by the supported depth.
func (s *CategoryService) recomputeSubtree(ctx context.Context, parentID primitive.ObjectID, parentAncestry []primitive.ObjectID, level int) error {
	if level > maxCategoryDepth {
		return fmt.Errorf("%w: subtree below %s exceeds supported depth", apperrors.ErrCyclicHierarchy, parentID.Hex())
	}

	children, err := s.categories.FindChildren(ctx, parentID)
	if err != nil {
		return err
	}
	for i := range children {
		child := &children[i]
		set := bson.M{
			"path":  parentAncestry,
			"depth": len(parentAncestry),
		}
		if _, err := s.categories.Update(ctx, child.ID, set); err != nil {
			return err
		}
		childAncestry := append(append([]primitive.ObjectID{}, parentAncestry...), child.ID)
		if err := s.recomputeSubtree(ctx, child.ID, childAncestry, level+1); err != nil {
			return err
		}
	}
	return nil
}

func (s *CategoryService) refreshParentFlags(ctx context.Context, oldParentID *primitive.ObjectID, newParent *models.Category) {
	if newParent != nil && !newParent.IsParent {
		if _, err := s.categories.Update(ctx, newParent.ID, bson.M{"is_parent": true}); err != nil {
			zap.L().Warn("Failed to flag new parent category", zap.Error(err))
		}
	}
	if oldParentID == nil {
		return
	}
	remaining, err := s.categories.FindChildren(ctx, *oldParentID)
	if err != nil {
		zap.L().Warn("Failed to check old parent children", zap.Error(err))
		return
	}
	if len(remaining) == 0 {
		if _, err := s.categories.Update(ctx, *oldParentID, bson.M{"is_parent": false}); err != nil {
			zap.L().Warn("Failed to unflag old parent category", zap.Error(err))
		}
	}
}

// DeleteCategory removes a category that has no children and no products.
func (s *CategoryService) DeleteCategory(ctx context.Context, id primitive.ObjectID) error {
	children, err := s.categories.FindChildren(ctx, id)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return apperrors.Validationf("category has %d subcategories; move or delete them first", len(children))
	}

	count, err := s.products.Count(ctx, bson.M{"category_hierarchy": id})
	if err != nil {
		return err
	}
	if count > 0 {
		return apperrors.Validationf("category has %d associated products", count)
	}

	deleted, err := s.categories.Delete(ctx, id)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return apperrors.NotFoundf("category %s", id.Hex())
	}
	return nil
}

// childPlacement returns the path and depth a child of the given parent gets.
// A nil parent places the category at the root.
func childPlacement(parent *models.Category) ([]primitive.ObjectID, int, error) {
	if parent == nil {
		return []primitive.ObjectID{}, 0, nil
	}
	depth := parent.Depth + 1
	if depth >= maxCategoryDepth {
		return nil, 0, apperrors.Validationf("categories may be nested at most %d levels deep", maxCategoryDepth)
	}
	path := append(append([]primitive.ObjectID{}, parent.Path...), parent.ID)
	return path, depth, nil
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
