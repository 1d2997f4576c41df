package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Specification is a single title/value row shown on the product detail page.
type Specification struct {
	Title string `json:"title" bson:"title"`
	Value string `json:"value" bson:"value"`
}

// Variant is one sellable attribute combination of a product with its own
// SKU, price and stock.
type Variant struct {
	Attributes   map[string]string `json:"attributes" bson:"attributes"`
	SKU          string            `json:"sku" bson:"sku"`
	Price        float64           `json:"price" bson:"price"`
	CountInStock int               `json:"count_in_stock" bson:"count_in_stock"`
}

// Dimensions in centimetres unless Unit says otherwise.
type Dimensions struct {
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
	Depth  float64 `json:"depth" bson:"depth"`
	Unit   string  `json:"unit,omitempty" bson:"unit,omitempty"`
}

// Weight of the product with its unit.
type Weight struct {
	Value float64 `json:"value" bson:"value"`
	Unit  string  `json:"unit,omitempty" bson:"unit,omitempty"`
}

// Review is a customer review embedded on the product. The review subsystem
// writes these; the catalog admin surface never does.
type Review struct {
	UserID    primitive.ObjectID `json:"user_id" bson:"user_id"`
	Rating    int                `json:"rating" bson:"rating"`
	Title     string             `json:"title,omitempty" bson:"title,omitempty"`
	Comment   string             `json:"comment,omitempty" bson:"comment,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// RatingDistribution is a histogram over star ratings 1..5.
type RatingDistribution struct {
	One   int `json:"1" bson:"1"`
	Two   int `json:"2" bson:"2"`
	Three int `json:"3" bson:"3"`
	Four  int `json:"4" bson:"4"`
	Five  int `json:"5" bson:"5"`
}

type Product struct {
	ID          primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Slug        string             `json:"slug" bson:"slug"`
	SKU         string             `json:"sku,omitempty" bson:"sku,omitempty"`
	ModelNumber string             `json:"model_number,omitempty" bson:"model_number,omitempty"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`

	CategoryID *primitive.ObjectID `json:"category_id,omitempty" bson:"category_id,omitempty"`
	BrandID    *primitive.ObjectID `json:"brand_id,omitempty" bson:"brand_id,omitempty"`
	// CategoryHierarchy is the denormalized ancestor chain (root..self) of the
	// assigned category, kept in sync on every create/update that touches it.
	CategoryHierarchy []primitive.ObjectID `json:"category_hierarchy" bson:"category_hierarchy"`

	Price        float64  `json:"price" bson:"price"`
	ListPrice    float64  `json:"list_price,omitempty" bson:"list_price,omitempty"`
	CountInStock int      `json:"count_in_stock" bson:"count_in_stock"`
	Images       []string `json:"images" bson:"images"`
	Tags         []string `json:"tags,omitempty" bson:"tags,omitempty"`

	Specifications []Specification `json:"specifications,omitempty" bson:"specifications,omitempty"`
	Variants       []Variant       `json:"variants,omitempty" bson:"variants,omitempty"`
	Dimensions     *Dimensions     `json:"dimensions,omitempty" bson:"dimensions,omitempty"`
	Weight         *Weight         `json:"weight,omitempty" bson:"weight,omitempty"`

	Material             string `json:"material,omitempty" bson:"material,omitempty"`
	Finish               string `json:"finish,omitempty" bson:"finish,omitempty"`
	EnergyRating         string `json:"energy_rating,omitempty" bson:"energy_rating,omitempty"`
	EnergyConsumption    string `json:"energy_consumption,omitempty" bson:"energy_consumption,omitempty"`
	Capacity             string `json:"capacity,omitempty" bson:"capacity,omitempty"`
	WarrantyDetails      string `json:"warranty_details,omitempty" bson:"warranty_details,omitempty"`
	InstallationRequired bool   `json:"installation_required,omitempty" bson:"installation_required,omitempty"`

	// Aggregates owned by the review/order subsystems; admin input never sets
	// these.
	AvgRating          float64            `json:"avg_rating" bson:"avg_rating"`
	NumReviews         int                `json:"num_reviews" bson:"num_reviews"`
	NumSales           int                `json:"num_sales" bson:"num_sales"`
	RatingDistribution RatingDistribution `json:"rating_distribution" bson:"rating_distribution"`
	Reviews            []Review           `json:"reviews" bson:"reviews"`

	IsPublished bool      `json:"is_published" bson:"is_published"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}
