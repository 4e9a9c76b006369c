package models

import (
	"time"
)

// Review is the model for the 'reviews' table.
// A review is hidden from the storefront until an admin approves it.
type Review struct {
	ID         int64     `json:"id" db:"id"`
	ProductID  int64     `json:"productId" db:"product_id"`
	AuthorName string    `json:"authorName" db:"author_name"`
	Rating     int       `json:"rating" db:"rating"`
	Body       string    `json:"body" db:"body"`
	Approved   bool      `json:"approved" db:"approved"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}
