package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Category struct {
	ID       primitive.ObjectID  `json:"_id,omitempty" bson:"_id,omitempty"`
	Name     string              `json:"name" bson:"name"`
	Slug     string              `json:"slug" bson:"slug"`
	ParentID *primitive.ObjectID `json:"parent_id,omitempty" bson:"parent_id,omitempty"`
	// Path holds the ancestor IDs from the root down to the immediate parent;
	// len(Path) == Depth. The full ancestry of the category is Path + [ID].
	Path        []primitive.ObjectID `json:"path" bson:"path"`
	Depth       int                  `json:"depth" bson:"depth"`
	IsParent    bool                 `json:"is_parent" bson:"is_parent"`
	BannerImage string               `json:"banner_image,omitempty" bson:"banner_image,omitempty"`
	Description string               `json:"description,omitempty" bson:"description,omitempty"`
	CreatedAt   time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at" bson:"updated_at"`

	// EffectiveBannerImage is computed at read time (own banner, else nearest
	// ancestor's) and never persisted.
	EffectiveBannerImage string `json:"effective_banner_image,omitempty" bson:"-"`
}

type Brand struct {
	ID        primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Slug      string             `json:"slug" bson:"slug"`
	Logo      string             `json:"logo,omitempty" bson:"logo,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// Settings is a single-document collection carrying storefront configuration.
type Settings struct {
	ID              primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	DefaultPageSize int                `json:"default_page_size" bson:"default_page_size"`
	SiteName        string             `json:"site_name,omitempty" bson:"site_name,omitempty"`
	UpdatedAt       time.Time          `json:"updated_at" bson:"updated_at"`
}
