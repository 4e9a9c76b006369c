package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ovenlight/bakery-api/internal/models"
	"github.com/ovenlight/bakery-api/internal/status"
)

//
// --- Custom Cake Request Handlers ---
//

// CustomRequestInput defines the JSON for POST /v1/custom-requests
type CustomRequestInput struct {
	CustomerName  string `json:"customerName" binding:"required"`
	CustomerEmail string `json:"customerEmail" binding:"required,email"`
	CustomerPhone string `json:"customerPhone" binding:"required"`

	Occasion    string   `json:"occasion" binding:"required"`
	Flavor      string   `json:"flavor" binding:"required"`
	Size        string   `json:"size" binding:"required"`
	Tiers       int      `json:"tiers" binding:"required,gte=1,lte=6"`
	DesignNotes string   `json:"designNotes"`
	Budget      float64  `json:"budget" binding:"required,gt=0"`
	ImageURLs   []string `json:"imageUrls"`
}

// CreateCustomRequest is the handler for POST /v1/custom-requests
// Open to guests; the record is matched to an account later by contact info.
func (h *Handlers) CreateCustomRequest(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input CustomRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var userID *int64
	if raw, exists := c.Get("userID"); exists {
		id := raw.(int64)
		userID = &id
	}

	// 2. --- Insert Request ---
	now := time.Now()
	referenceCode := NewReferenceCode()

	query := `
		INSERT INTO custom_requests
		(reference_code, user_id, is_guest, customer_name, customer_email, customer_phone,
		 occasion, flavor, size, tiers, design_notes, budget, image_urls,
		 status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'pending', ?, ?)`

	result, err := h.DB.Exec(query,
		referenceCode, userID, userID == nil,
		input.CustomerName, input.CustomerEmail, input.CustomerPhone,
		input.Occasion, input.Flavor, input.Size, input.Tiers,
		input.DesignNotes, input.Budget, encodeImageURLs(input.ImageURLs),
		now, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create custom request"})
		return
	}
	requestID, _ := result.LastInsertId()

	// 3. --- Send Success Response ---
	c.JSON(http.StatusCreated, gin.H{
		"message":       "Custom cake request submitted. We'll get back to you with a quote!",
		"requestId":     requestID,
		"referenceCode": referenceCode,
	})
}

// encodeImageURLs stores the reference image list as a JSON array string.
func encodeImageURLs(urls []string) string {
	if len(urls) == 0 {
		return "[]"
	}
	encoded, err := json.Marshal(urls)
	if err != nil {
		return "[]"
	}
	return string(encoded)
}

const requestColumns = `
	id, reference_code, user_id, is_guest, customer_name, customer_email, customer_phone,
	occasion, flavor, size, tiers, design_notes, budget, image_urls,
	status, admin_notes, quoted_price, created_at, updated_at`

func scanCustomRequest(row interface{ Scan(...interface{}) error }) (models.CustomRequest, error) {
	var r models.CustomRequest
	var userID sql.NullInt64
	var adminNotes sql.NullString
	var quotedPrice sql.NullFloat64

	err := row.Scan(
		&r.ID, &r.ReferenceCode, &userID, &r.IsGuest,
		&r.CustomerName, &r.CustomerEmail, &r.CustomerPhone,
		&r.Occasion, &r.Flavor, &r.Size, &r.Tiers,
		&r.DesignNotes, &r.Budget, &r.ImageURLs,
		&r.Status, &adminNotes, &quotedPrice, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return r, err
	}

	if userID.Valid {
		r.UserID = &userID.Int64
	}
	if adminNotes.Valid {
		r.AdminNotes = &adminNotes.String
	}
	if quotedPrice.Valid {
		r.QuotedPrice = &quotedPrice.Float64
	}
	return r, nil
}

// GetMyCustomRequests is the handler for GET /v1/custom-requests
func (h *Handlers) GetMyCustomRequests(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	query := "SELECT" + requestColumns + " FROM custom_requests WHERE user_id = ? ORDER BY created_at DESC"
	rows, err := h.DB.Query(query, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch custom requests"})
		return
	}
	defer rows.Close()

	requests := []models.CustomRequest{}
	for rows.Next() {
		r, err := scanCustomRequest(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan custom request"})
			return
		}
		requests = append(requests, r)
	}

	c.JSON(http.StatusOK, gin.H{
		"requests": requests,
	})
}

//
// --- Admin: Custom Request Handlers ---
//

// GetCustomRequests is the handler for GET /v1/admin/custom-requests
// Optional ?status= filter.
func (h *Handlers) GetCustomRequests(c *gin.Context) {
	query := "SELECT" + requestColumns + " FROM custom_requests"
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

	requests := []models.CustomRequest{}
	for rows.Next() {
		r, err := scanCustomRequest(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan custom request"})
			return
		}
		requests = append(requests, r)
	}

	c.JSON(http.StatusOK, gin.H{
		"requests": requests,
	})
}

// UpdateRequestInput defines the JSON for PATCH /v1/admin/custom-requests/:id
// Quote and notes only; status changes go through the status endpoint.
type UpdateRequestInput struct {
	AdminNotes  *string  `json:"adminNotes"`
	QuotedPrice *float64 `json:"quotedPrice" binding:"omitempty,gt=0"`
}

// UpdateCustomRequest is the handler for PATCH /v1/admin/custom-requests/:id
func (h *Handlers) UpdateCustomRequest(c *gin.Context) {
	requestID := c.Param("id")

	var input UpdateRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.AdminNotes == nil && input.QuotedPrice == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}

	query := "UPDATE custom_requests SET updated_at = ?"
	args := []interface{}{time.Now()}
	if input.AdminNotes != nil {
		query += ", admin_notes = ?"
		args = append(args, *input.AdminNotes)
	}
	if input.QuotedPrice != nil {
		query += ", quoted_price = ?"
		args = append(args, *input.QuotedPrice)
	}
	query += " WHERE id = ?"
	args = append(args, requestID)

	result, err := h.DB.Exec(query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update custom request"})
		return
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check affected rows"})
		return
	}
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Custom request not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Custom request updated",
	})
}

// UpdateRequestStatus is the handler for PATCH /v1/admin/custom-requests/:id/status
// Same two-step handshake as order status updates.
func (h *Handlers) UpdateRequestStatus(c *gin.Context) {
	requestID := c.Param("id")

	var input TransitionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Load the entity snapshot, quoted price included so an approval
	// message can carry the quote.
	var ent status.Entity
	var userID sql.NullInt64
	var quotedPrice sql.NullFloat64
	query := `
		SELECT id, user_id, reference_code, customer_name, customer_phone, status, quoted_price
		FROM custom_requests
		WHERE id = ?`
	err := h.DB.QueryRow(query, requestID).Scan(
		&ent.ID, &userID, &ent.ReferenceCode, &ent.CustomerName, &ent.CustomerPhone, &ent.CurrentStatus, &quotedPrice,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Custom request not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch custom request"})
		return
	}
	ent.Kind = status.KindCustomRequest
	if userID.Valid {
		ent.UserID = &userID.Int64
	}
	if quotedPrice.Valid {
		ent.QuotedPrice = &quotedPrice.Float64
	}

	h.respondTransition(c, status.Request{
		Entity:      ent,
		NewStatus:   input.Status,
		Message:     input.Message,
		Confirmed:   input.Confirmed,
		SkipMessage: input.SkipMessage,
	})
}

// DeleteCustomRequest is the handler for DELETE /v1/admin/custom-requests/:id
func (h *Handlers) DeleteCustomRequest(c *gin.Context) {
	requestID := c.Param("id")

	result, err := h.DB.Exec("DELETE FROM custom_requests WHERE id = ?", requestID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete custom request"})
		return
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check affected rows"})
		return
	}
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Custom request not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Custom request deleted",
	})
}
