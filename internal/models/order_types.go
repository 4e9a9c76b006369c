package models

import (
	"time"
)

// Order statuses. Transitions are unrestricted (any label to any other);
// the status engine only checks membership in this set.
var OrderStatuses = []string{
	"pending", "confirmed", "preparing", "out_for_delivery", "delivered", "cancelled",
}

// Order is the model for the 'orders' table.
// Contact fields live at the root of the row (the canonical shape); guest
// orders carry is_guest = 1 and a NULL user_id until they are claimed.
type Order struct {
	ID            int64  `json:"id" db:"id"`
	ReferenceCode string `json:"referenceCode" db:"reference_code"`
	UserID        *int64 `json:"userId,omitempty" db:"user_id"`
	IsGuest       bool   `json:"isGuest" db:"is_guest"`

	CustomerName  string `json:"customerName" db:"customer_name"`
	CustomerEmail string `json:"customerEmail" db:"customer_email"`
	CustomerPhone string `json:"customerPhone" db:"customer_phone"`

	DeliveryDate    string `json:"deliveryDate" db:"delivery_date"`
	DeliveryWindow  string `json:"deliveryWindow" db:"delivery_window"`
	DeliveryAddress string `json:"deliveryAddress" db:"delivery_address"`

	PaymentMethod string  `json:"paymentMethod" db:"payment_method"`
	PaymentRef    *string `json:"paymentRef,omitempty" db:"payment_ref"`

	Subtotal    float64 `json:"subtotal" db:"subtotal"`
	DeliveryFee float64 `json:"deliveryFee" db:"delivery_fee"`
	Total       float64 `json:"total" db:"total"`

	Status   string        `json:"status" db:"status"`
	Tracking TrackingSteps `json:"tracking"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// TrackingSteps is the boolean-flag record shown on the tracking page.
// Flags are cumulative: a delivered order has every earlier step set too.
type TrackingSteps struct {
	Confirmed      bool `json:"confirmed" db:"tracking_confirmed"`
	Preparing      bool `json:"preparing" db:"tracking_preparing"`
	OutForDelivery bool `json:"outForDelivery" db:"tracking_out_for_delivery"`
	Delivered      bool `json:"delivered" db:"tracking_delivered"`
}

// StepsForStatus derives the cumulative tracking flags for a status label.
func StepsForStatus(status string) TrackingSteps {
	switch status {
	case "confirmed":
		return TrackingSteps{Confirmed: true}
	case "preparing":
		return TrackingSteps{Confirmed: true, Preparing: true}
	case "out_for_delivery":
		return TrackingSteps{Confirmed: true, Preparing: true, OutForDelivery: true}
	case "delivered":
		return TrackingSteps{Confirmed: true, Preparing: true, OutForDelivery: true, Delivered: true}
	default:
		return TrackingSteps{}
	}
}

// OrderItem is the model for the 'order_items' table.
// ProductName is snapshotted at checkout so renames don't rewrite history.
type OrderItem struct {
	ID          int64     `json:"id" db:"id"`
	OrderID     int64     `json:"orderId" db:"order_id"`
	ProductID   int64     `json:"productId" db:"product_id"`
	ProductName string    `json:"productName" db:"product_name"`
	Quantity    int       `json:"quantity" db:"quantity"`
	UnitPrice   float64   `json:"unitPrice" db:"unit_price"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}
