package models

import (
	"time"
)

// Product statuses. A product is visible on the storefront only when 'published'.
const (
	ProductDraft     = "draft"
	ProductPublished = "published"
	ProductArchived  = "archived"
)

// Product is the model for the 'products' table.
// Pointers (not sql.Null*) for nullable columns so the JSON stays clean.
type Product struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Slug        string `json:"slug" db:"slug"`
	Description string `json:"description" db:"description"`
	Category    string `json:"category" db:"category"`

	Price    float64 `json:"price" db:"price"`
	ImageURL *string `json:"imageUrl,omitempty" db:"image_url"`
	Tags     string  `json:"tags" db:"tags"` // comma-separated, e.g. "chocolate,birthday"

	// Popularity is the number of times the product has been ordered.
	Popularity  int     `json:"popularity" db:"popularity"`
	RatingAvg   float64 `json:"ratingAvg" db:"rating_avg"`
	RatingCount int     `json:"ratingCount" db:"rating_count"`

	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
