package models

import (
	"time"
)

// Custom request statuses.
var RequestStatuses = []string{
	"pending", "processing", "approved", "completed", "rejected",
}

// CustomRequest is the model for the 'custom_requests' table.
// Same canonical root-level contact shape as Order; image_urls is stored
// as a JSON array string.
type CustomRequest struct {
	ID            int64  `json:"id" db:"id"`
	ReferenceCode string `json:"referenceCode" db:"reference_code"`
	UserID        *int64 `json:"userId,omitempty" db:"user_id"`
	IsGuest       bool   `json:"isGuest" db:"is_guest"`

	CustomerName  string `json:"customerName" db:"customer_name"`
	CustomerEmail string `json:"customerEmail" db:"customer_email"`
	CustomerPhone string `json:"customerPhone" db:"customer_phone"`

	Occasion    string  `json:"occasion" db:"occasion"`
	Flavor      string  `json:"flavor" db:"flavor"`
	Size        string  `json:"size" db:"size"`
	Tiers       int     `json:"tiers" db:"tiers"`
	DesignNotes string  `json:"designNotes" db:"design_notes"`
	Budget      float64 `json:"budget" db:"budget"`
	ImageURLs   string  `json:"imageUrls" db:"image_urls"`

	Status      string   `json:"status" db:"status"`
	AdminNotes  *string  `json:"adminNotes,omitempty" db:"admin_notes"`
	QuotedPrice *float64 `json:"quotedPrice,omitempty" db:"quoted_price"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
