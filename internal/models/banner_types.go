package models

import (
	"time"
)

// HeroBanner is the model for the 'hero_banners' table.
type HeroBanner struct {
	ID        int64     `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Subtitle  string    `json:"subtitle" db:"subtitle"`
	ImageURL  string    `json:"imageUrl" db:"image_url"`
	LinkURL   *string   `json:"linkUrl,omitempty" db:"link_url"`
	SortOrder int       `json:"sortOrder" db:"sort_order"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
