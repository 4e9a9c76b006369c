package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ovenlight/bakery-api/internal/models"
	"github.com/ovenlight/bakery-api/internal/status"
)

//
// --- Checkout & Order Handlers ---
//

// NewReferenceCode generates a human-shareable code like "BK-7F3A2C".
// Derived from a UUID so collisions are practically impossible; the column
// is UNIQUE either way.
func NewReferenceCode() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "BK-" + strings.ToUpper(raw[:6])
}

// CheckoutItemInput is one line of the checkout basket.
type CheckoutItemInput struct {
	ProductID int64 `json:"productId" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

// CheckoutInput defines the JSON for POST /v1/checkout.
// Works for guests and signed-in customers alike; contact fields are
// always required so guest orders stay claimable later.
type CheckoutInput struct {
	Items []CheckoutItemInput `json:"items" binding:"required,min=1,dive"`

	CustomerName  string `json:"customerName" binding:"required"`
	CustomerEmail string `json:"customerEmail" binding:"required,email"`
	CustomerPhone string `json:"customerPhone" binding:"required"`

	DeliveryDate    string `json:"deliveryDate" binding:"required"`
	DeliveryWindow  string `json:"deliveryWindow" binding:"required"`
	DeliveryAddress string `json:"deliveryAddress" binding:"required"`

	PaymentMethod string `json:"paymentMethod" binding:"required,oneof=cod bank_transfer card"`
}

// Checkout is the handler for POST /v1/checkout
func (h *Handlers) Checkout(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input CheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Signed-in customers get the order attached immediately; otherwise it
	// is a guest order matched by contact info later.
	var userID *int64
	if raw, exists := c.Get("userID"); exists {
		id := raw.(int64)
		userID = &id
	}

	// 2. --- Begin Transaction ---
	tx, err := h.DB.BeginTx(c, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback() // Safety net

	// 3. --- Snapshot Products & Calculate Subtotal ---
	type lineItem struct {
		ProductID int64
		Name      string
		Quantity  int
		Price     float64
	}

	var lines []lineItem
	var subtotal float64
	for _, item := range input.Items {
		var name string
		var price float64
		err := tx.QueryRow(
			"SELECT name, price FROM products WHERE id = ? AND status = 'published' FOR UPDATE",
			item.ProductID,
		).Scan(&name, &price)
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Product %d is not available", item.ProductID)})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up product"})
			return
		}
		subtotal += price * float64(item.Quantity)
		lines = append(lines, lineItem{ProductID: item.ProductID, Name: name, Quantity: item.Quantity, Price: price})
	}

	// 4. --- Delivery Fee & Minimum Order from Settings ---
	deliveryFee := h.settingFloat(tx, "delivery_fee", 0)
	minimumOrder := h.settingFloat(tx, "minimum_order", 0)
	if subtotal < minimumOrder {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Minimum order amount is %.2f", minimumOrder)})
		return
	}
	total := subtotal + deliveryFee

	// 5. --- Create Order ---
	now := time.Now()
	referenceCode := NewReferenceCode()
	isGuest := userID == nil

	orderQuery := `
		INSERT INTO orders
		(reference_code, user_id, is_guest, customer_name, customer_email, customer_phone,
		 delivery_date, delivery_window, delivery_address, payment_method,
		 subtotal, delivery_fee, total, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'pending', ?, ?)`

	result, err := tx.Exec(orderQuery,
		referenceCode, userID, isGuest,
		input.CustomerName, input.CustomerEmail, input.CustomerPhone,
		input.DeliveryDate, input.DeliveryWindow, input.DeliveryAddress,
		input.PaymentMethod, subtotal, deliveryFee, total, now, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}
	orderID, err := result.LastInsertId()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get new order ID"})
		return
	}

	// 6. --- Create Order Items & Bump Popularity ---
	itemQuery := `
		INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	popularityQuery := "UPDATE products SET popularity = popularity + ? WHERE id = ?"

	for _, line := range lines {
		if _, err := tx.Exec(itemQuery, orderID, line.ProductID, line.Name, line.Quantity, line.Price, now); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save order item"})
			return
		}
		if _, err := tx.Exec(popularityQuery, line.Quantity, line.ProductID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product popularity"})
			return
		}
	}

	// 7. --- Commit Transaction ---
	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	// 8. --- Send Success Response ---
	c.JSON(http.StatusCreated, gin.H{
		"message":       "Order placed successfully",
		"orderId":       orderID,
		"referenceCode": referenceCode,
		"total":         total,
	})
}

// scanOrder reads one full order row. Keep the column list in sync with
// orderColumns below.
const orderColumns = `
	id, reference_code, user_id, is_guest, customer_name, customer_email, customer_phone,
	delivery_date, delivery_window, delivery_address, payment_method, payment_ref,
	subtotal, delivery_fee, total, status,
	tracking_confirmed, tracking_preparing, tracking_out_for_delivery, tracking_delivered,
	created_at, updated_at`

func scanOrder(row interface{ Scan(...interface{}) error }) (models.Order, error) {
	var o models.Order
	var userID sql.NullInt64
	var paymentRef sql.NullString

	err := row.Scan(
		&o.ID, &o.ReferenceCode, &userID, &o.IsGuest,
		&o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
		&o.DeliveryDate, &o.DeliveryWindow, &o.DeliveryAddress,
		&o.PaymentMethod, &paymentRef,
		&o.Subtotal, &o.DeliveryFee, &o.Total, &o.Status,
		&o.Tracking.Confirmed, &o.Tracking.Preparing, &o.Tracking.OutForDelivery, &o.Tracking.Delivered,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return o, err
	}

	if userID.Valid {
		o.UserID = &userID.Int64
	}
	if paymentRef.Valid {
		o.PaymentRef = &paymentRef.String
	}
	return o, nil
}

// TrackOrder is the handler for GET /v1/orders/track/:code
// Public: anyone holding the reference code can see the tracking steps.
func (h *Handlers) TrackOrder(c *gin.Context) {
	code := c.Param("code")

	query := "SELECT" + orderColumns + " FROM orders WHERE reference_code = ?"
	o, err := scanOrder(h.DB.QueryRow(query, code))
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "No order found for that reference code"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}

	// The public tracking view hides payment and address details.
	c.JSON(http.StatusOK, gin.H{
		"referenceCode": o.ReferenceCode,
		"status":        o.Status,
		"tracking":      o.Tracking,
		"deliveryDate":  o.DeliveryDate,
		"createdAt":     o.CreatedAt,
	})
}

// GetMyOrders is the handler for GET /v1/orders
func (h *Handlers) GetMyOrders(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	query := "SELECT" + orderColumns + " FROM orders WHERE user_id = ? ORDER BY created_at DESC"
	rows, err := h.DB.Query(query, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan order data"})
			return
		}
		orders = append(orders, o)
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
	})
}

// GetOrderDetails is the handler for GET /v1/orders/:id
func (h *Handlers) GetOrderDetails(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)
	orderID := c.Param("id")

	query := "SELECT" + orderColumns + " FROM orders WHERE id = ? AND user_id = ?"
	o, err := scanOrder(h.DB.QueryRow(query, orderID, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}

	items, err := h.fetchOrderItems(o.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order items"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": o,
		"items": items,
	})
}

func (h *Handlers) fetchOrderItems(orderID int64) ([]models.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, product_name, quantity, unit_price, created_at
		FROM order_items
		WHERE order_id = ?`

	rows, err := h.DB.Query(query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.OrderItem{}
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
			&item.Quantity, &item.UnitPrice, &item.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

//
// --- Admin: Order Handlers ---
//

// GetOrders is the handler for GET /v1/admin/orders
// Optional ?status= filter.
func (h *Handlers) GetOrders(c *gin.Context) {
	query := "SELECT" + orderColumns + " FROM orders"
	args := []interface{}{}

	if statusFilter := c.Query("status"); statusFilter != "" {
		query += " WHERE status = ?"
		args = append(args, statusFilter)
	}
	query += " ORDER BY created_at DESC"

	rows, err := h.DB.Query(query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan order data"})
			return
		}
		orders = append(orders, o)
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
	})
}

// GetAdminOrderDetails is the handler for GET /v1/admin/orders/:id
func (h *Handlers) GetAdminOrderDetails(c *gin.Context) {
	orderID := c.Param("id")

	query := "SELECT" + orderColumns + " FROM orders WHERE id = ?"
	o, err := scanOrder(h.DB.QueryRow(query, orderID))
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}

	items, err := h.fetchOrderItems(o.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order items"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": o,
		"items": items,
	})
}

// TransitionInput defines the JSON for the two-step status update handshake.
// The first call (no confirmed/skipMessage) returns a draft WhatsApp message
// and commits nothing; the follow-up carries the edited message + confirmed,
// or skipMessage to commit silently.
type TransitionInput struct {
	Status      string `json:"status" binding:"required"`
	Message     string `json:"message"`
	Confirmed   bool   `json:"confirmed"`
	SkipMessage bool   `json:"skipMessage"`
}

// UpdateOrderStatus is the handler for PATCH /v1/admin/orders/:id/status
func (h *Handlers) UpdateOrderStatus(c *gin.Context) {
	// 1. --- Bind Input ---
	orderID := c.Param("id")

	var input TransitionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. --- Load the Entity Snapshot ---
	var ent status.Entity
	var userID sql.NullInt64
	query := `
		SELECT id, user_id, reference_code, customer_name, customer_phone, status
		FROM orders
		WHERE id = ?`
	err := h.DB.QueryRow(query, orderID).Scan(
		&ent.ID, &userID, &ent.ReferenceCode, &ent.CustomerName, &ent.CustomerPhone, &ent.CurrentStatus,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}
	ent.Kind = status.KindOrder
	if userID.Valid {
		ent.UserID = &userID.Int64
	}

	// 3. --- Run the Transition Engine ---
	h.respondTransition(c, status.Request{
		Entity:      ent,
		NewStatus:   input.Status,
		Message:     input.Message,
		Confirmed:   input.Confirmed,
		SkipMessage: input.SkipMessage,
	})
}

// respondTransition maps an engine result onto the HTTP response. Shared by
// the order and custom request status endpoints.
func (h *Handlers) respondTransition(c *gin.Context, req status.Request) {
	res, err := h.Status.Apply(req)
	if err != nil {
		if errors.Is(err, status.ErrUnknownStatus) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		return
	}

	if !res.Committed {
		// Waiting on operator confirmation.
		c.JSON(http.StatusOK, gin.H{
			"committed": false,
			"draft":     res.Draft,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"committed":        true,
		"status":           req.NewStatus,
		"notificationSent": res.NotificationSent,
		"whatsappLink":     res.WhatsAppLink,
	})
}
