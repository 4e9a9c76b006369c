package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ovenlight/bakery-api/internal/models"
)

//
// --- Testimonial Handlers ---
//

// TestimonialInput defines the JSON for POST /v1/testimonials
type TestimonialInput struct {
	AuthorName string `json:"authorName" binding:"required"`
	Rating     int    `json:"rating" binding:"required,gte=1,lte=5"`
	Body       string `json:"body" binding:"required"`
}

// CreateTestimonial is the handler for POST /v1/testimonials
// Same moderation gate as reviews: hidden until approved.
func (h *Handlers) CreateTestimonial(c *gin.Context) {
	var input TestimonialInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	query := `
		INSERT INTO testimonials (author_name, rating, body, approved, created_at)
		VALUES (?, ?, ?, 0, ?)`
	if _, err := h.DB.Exec(query, input.AuthorName, input.Rating, input.Body, time.Now()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create testimonial"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Thank you! Your testimonial will appear once approved.",
	})
}

// GetTestimonials is the handler for GET /v1/testimonials
func (h *Handlers) GetTestimonials(c *gin.Context) {
	query := `
		SELECT id, author_name, rating, body, approved, created_at
		FROM testimonials
		WHERE approved = 1
		ORDER BY created_at DESC`

	rows, err := h.DB.Query(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	testimonials := []models.Testimonial{}
	for rows.Next() {
		var tm models.Testimonial
		if err := rows.Scan(&tm.ID, &tm.AuthorName, &tm.Rating, &tm.Body, &tm.Approved, &tm.CreatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan testimonial"})
			return
		}
		testimonials = append(testimonials, tm)
	}

	c.JSON(http.StatusOK, gin.H{
		"testimonials": testimonials,
	})
}

//
// --- Admin: Testimonial Moderation ---
//

// GetAllTestimonials is the handler for GET /v1/admin/testimonials
func (h *Handlers) GetAllTestimonials(c *gin.Context) {
	query := `
		SELECT id, author_name, rating, body, approved, created_at
		FROM testimonials
		ORDER BY approved ASC, created_at DESC`

	rows, err := h.DB.Query(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	testimonials := []models.Testimonial{}
	for rows.Next() {
		var tm models.Testimonial
		if err := rows.Scan(&tm.ID, &tm.AuthorName, &tm.Rating, &tm.Body, &tm.Approved, &tm.CreatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan testimonial"})
			return
		}
		testimonials = append(testimonials, tm)
	}

	c.JSON(http.StatusOK, gin.H{
		"testimonials": testimonials,
	})
}

// ApproveTestimonial is the handler for PATCH /v1/admin/testimonials/:id
func (h *Handlers) ApproveTestimonial(c *gin.Context) {
	testimonialID := c.Param("id")

	var input ApproveReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.DB.Exec("UPDATE testimonials SET approved = ? WHERE id = ?", *input.Approved, testimonialID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update testimonial"})
		return
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check affected rows"})
		return
	}
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Testimonial not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Testimonial updated",
	})
}

// DeleteTestimonial is the handler for DELETE /v1/admin/testimonials/:id
func (h *Handlers) DeleteTestimonial(c *gin.Context) {
	testimonialID := c.Param("id")

	result, err := h.DB.Exec("DELETE FROM testimonials WHERE id = ?", testimonialID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete testimonial"})
		return
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check affected rows"})
		return
	}
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Testimonial not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Testimonial deleted",
	})
}
