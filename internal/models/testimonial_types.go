package models

import (
	"time"
)

// Testimonial is the model for the 'testimonials' table.
// Like reviews, gated behind admin approval, but site-wide rather than
// attached to a product.
type Testimonial struct {
	ID         int64     `json:"id" db:"id"`
	AuthorName string    `json:"authorName" db:"author_name"`
	Rating     int       `json:"rating" db:"rating"`
	Body       string    `json:"body" db:"body"`
	Approved   bool      `json:"approved" db:"approved"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}
