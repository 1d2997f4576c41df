package services

import (
	"storefront-service/models"
)

// ProductListFilters carries the UI-facing filter parameters for both the
// admin and storefront listings. The string filters use the "all" sentinel
// (or empty) to mean "no filter".
type ProductListFilters struct {
	Query    string
	Category string
	Brand    string
	Tag      string
	Price    string
	Rating   string
	Stock    string
	Sort     string

	Page     int
	PageSize int

	// PublishedOnly is forced on for the storefront listing.
	PublishedOnly bool
}

// ProductListResult is the page shape every listing operation returns.
type ProductListResult struct {
	Products      []models.Product `json:"products"`
	TotalProducts int64            `json:"total_products"`
	TotalPages    int              `json:"total_pages"`
	From          int              `json:"from"`
	To            int              `json:"to"`
}

// ProductCreateRequest is the admin create payload. Rating and sales
// aggregates are not part of it; they belong to the review and order
// subsystems and start at zero on create.
type ProductCreateRequest struct {
	Name        string `json:"name" validate:"required"`
	Slug        string `json:"slug"`
	SKU         string `json:"sku"`
	ModelNumber string `json:"model_number"`
	Description string `json:"description"`

	Category string `json:"category" validate:"required"`
	Brand    string `json:"brand" validate:"required"`

	Price        float64  `json:"price" validate:"gte=0"`
	ListPrice    float64  `json:"list_price" validate:"gte=0"`
	CountInStock int      `json:"count_in_stock" validate:"gte=0"`
	Images       []string `json:"images"`
	Tags         []string `json:"tags"`

	Specifications []models.Specification `json:"specifications"`
	Variants       []models.Variant       `json:"variants"`
	Dimensions     *models.Dimensions     `json:"dimensions"`
	Weight         *models.Weight         `json:"weight"`

	Material             string `json:"material"`
	Finish               string `json:"finish"`
	EnergyRating         string `json:"energy_rating"`
	EnergyConsumption    string `json:"energy_consumption"`
	Capacity             string `json:"capacity"`
	WarrantyDetails      string `json:"warranty_details"`
	InstallationRequired bool   `json:"installation_required"`

	IsPublished bool `json:"is_published"`
}

// CategoryCreateRequest is the admin payload for creating or updating a
// category. Parent accepts an ID, a name or a slug; empty means a root
// category.
type CategoryCreateRequest struct {
	Name        string `json:"name" validate:"required"`
	Slug        string `json:"slug"`
	Parent      string `json:"parent"`
	BannerImage string `json:"banner_image"`
	Description string `json:"description"`
}

// BrandCreateRequest is the admin payload for creating a brand.
type BrandCreateRequest struct {
	Name string `json:"name" validate:"required"`
	Slug string `json:"slug"`
	Logo string `json:"logo"`
}
