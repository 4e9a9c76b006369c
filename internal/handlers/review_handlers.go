package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ovenlight/bakery-api/internal/models"
)

//
// --- Review Handlers ---
//

// ReviewInput defines the JSON for POST /v1/products/:slug/reviews
type ReviewInput struct {
	AuthorName string `json:"authorName" binding:"required"`
	Rating     int    `json:"rating" binding:"required,gte=1,lte=5"`
	Body       string `json:"body" binding:"required"`
}

// CreateReview is the handler for POST /v1/products/:slug/reviews
// Reviews land unapproved and stay hidden until an admin approves them.
func (h *Handlers) CreateReview(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. --- Resolve the Product ---
	var productID int64
	err := h.DB.QueryRow("SELECT id FROM products WHERE slug = ? AND status = 'published'", c.Param("slug")).Scan(&productID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up product"})
		return
	}

	// 3. --- Insert Review ---
	query := `
		INSERT INTO reviews (product_id, author_name, rating, body, approved, created_at)
		VALUES (?, ?, ?, ?, 0, ?)`
	if _, err := h.DB.Exec(query, productID, input.AuthorName, input.Rating, input.Body, time.Now()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create review"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Thank you! Your review will appear once approved.",
	})
}

// GetProductReviews is the handler for GET /v1/products/:slug/reviews
// Only approved reviews are visible on the storefront.
func (h *Handlers) GetProductReviews(c *gin.Context) {
	query := `
		SELECT r.id, r.product_id, r.author_name, r.rating, r.body, r.approved, r.created_at
		FROM reviews r
		JOIN products p ON r.product_id = p.id
		WHERE p.slug = ? AND r.approved = 1
		ORDER BY r.created_at DESC`

	rows, err := h.DB.Query(query, c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		var r models.Review
		if err := rows.Scan(&r.ID, &r.ProductID, &r.AuthorName, &r.Rating, &r.Body, &r.Approved, &r.CreatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan review"})
			return
		}
		reviews = append(reviews, r)
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews": reviews,
	})
}

//
// --- Admin: Review Moderation ---
//

// GetReviews is the handler for GET /v1/admin/reviews
// Optional ?approved=true|false filter.
func (h *Handlers) GetReviews(c *gin.Context) {
	query := `
		SELECT id, product_id, author_name, rating, body, approved, created_at
		FROM reviews`
	args := []interface{}{}

	if approvedFilter := c.Query("approved"); approvedFilter != "" {
		query += " WHERE approved = ?"
		args = append(args, approvedFilter == "true")
	}
	query += " ORDER BY created_at DESC"

	rows, err := h.DB.Query(query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		var r models.Review
		if err := rows.Scan(&r.ID, &r.ProductID, &r.AuthorName, &r.Rating, &r.Body, &r.Approved, &r.CreatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan review"})
			return
		}
		reviews = append(reviews, r)
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews": reviews,
	})
}

// ApproveReviewInput toggles a review's visibility.
type ApproveReviewInput struct {
	Approved *bool `json:"approved" binding:"required"`
}

// ApproveReview is the handler for PATCH /v1/admin/reviews/:id
// Approving or un-approving a review also refreshes the product's rating
// aggregates, inside one transaction.
func (h *Handlers) ApproveReview(c *gin.Context) {
	reviewID := c.Param("id")

	var input ApproveReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 1. --- Begin Transaction ---
	tx, err := h.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	// 2. --- Lock the Review & Get Its Product ---
	var productID int64
	err = tx.QueryRow("SELECT product_id FROM reviews WHERE id = ? FOR UPDATE", reviewID).Scan(&productID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch review"})
		return
	}

	// 3. --- Flip the Flag ---
	if _, err := tx.Exec("UPDATE reviews SET approved = ? WHERE id = ?", *input.Approved, reviewID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update review"})
		return
	}

	// 4. --- Refresh Product Aggregates ---
	refreshQuery := `
		UPDATE products p
		SET rating_avg = COALESCE((SELECT AVG(rating) FROM reviews WHERE product_id = p.id AND approved = 1), 0),
		    rating_count = (SELECT COUNT(*) FROM reviews WHERE product_id = p.id AND approved = 1)
		WHERE p.id = ?`
	if _, err := tx.Exec(refreshQuery, productID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh product rating"})
		return
	}

	// 5. --- Commit ---
	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Review updated",
	})
}

// DeleteReview is the handler for DELETE /v1/admin/reviews/:id
func (h *Handlers) DeleteReview(c *gin.Context) {
	reviewID := c.Param("id")

	// Aggregates must survive the delete too.
	tx, err := h.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	var productID int64
	err = tx.QueryRow("SELECT product_id FROM reviews WHERE id = ? FOR UPDATE", reviewID).Scan(&productID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch review"})
		return
	}

	if _, err := tx.Exec("DELETE FROM reviews WHERE id = ?", reviewID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete review"})
		return
	}

	refreshQuery := `
		UPDATE products p
		SET rating_avg = COALESCE((SELECT AVG(rating) FROM reviews WHERE product_id = p.id AND approved = 1), 0),
		    rating_count = (SELECT COUNT(*) FROM reviews WHERE product_id = p.id AND approved = 1)
		WHERE p.id = ?`
	if _, err := tx.Exec(refreshQuery, productID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh product rating"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Review deleted",
	})
}
