package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ovenlight/bakery-api/internal/models"
)

//
// --- Hero Banner Handlers ---
//

func scanBanner(row interface{ Scan(...interface{}) error }) (models.HeroBanner, error) {
	var b models.HeroBanner
	var linkURL sql.NullString

	err := row.Scan(&b.ID, &b.Title, &b.Subtitle, &b.ImageURL, &linkURL,
		&b.SortOrder, &b.Active, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return b, err
	}
	if linkURL.Valid {
		b.LinkURL = &linkURL.String
	}
	return b, nil
}

const bannerColumns = " id, title, subtitle, image_url, link_url, sort_order, active, created_at, updated_at "

// GetActiveBanners is the handler for GET /v1/banners
func (h *Handlers) GetActiveBanners(c *gin.Context) {
	query := "SELECT" + bannerColumns + "FROM hero_banners WHERE active = 1 ORDER BY sort_order ASC"
	rows, err := h.DB.Query(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	banners := []models.HeroBanner{}
	for rows.Next() {
		b, err := scanBanner(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan banner"})
			return
		}
		banners = append(banners, b)
	}

	c.JSON(http.StatusOK, gin.H{
		"banners": banners,
	})
}

//
// --- Admin: Hero Banner Handlers ---
//

// BannerInput defines the JSON for creating/updating a banner.
type BannerInput struct {
	Title     string `json:"title" binding:"required"`
	Subtitle  string `json:"subtitle"`
	ImageURL  string `json:"imageUrl" binding:"required"`
	LinkURL   string `json:"linkUrl"`
	SortOrder int    `json:"sortOrder"`
	Active    *bool  `json:"active" binding:"required"`
}

// GetAllBanners is the handler for GET /v1/admin/banners
func (h *Handlers) GetAllBanners(c *gin.Context) {
	query := "SELECT" + bannerColumns + "FROM hero_banners ORDER BY sort_order ASC"
	rows, err := h.DB.Query(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	banners := []models.HeroBanner{}
	for rows.Next() {
		b, err := scanBanner(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan banner"})
			return
		}
		banners = append(banners, b)
	}

	c.JSON(http.StatusOK, gin.H{
		"banners": banners,
	})
}

// CreateBanner is the handler for POST /v1/admin/banners
func (h *Handlers) CreateBanner(c *gin.Context) {
	var input BannerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var linkURL sql.NullString
	if input.LinkURL != "" {
		linkURL = sql.NullString{String: input.LinkURL, Valid: true}
	}

	now := time.Now()
	query := `
		INSERT INTO hero_banners (title, subtitle, image_url, link_url, sort_order, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := h.DB.Exec(query, input.Title, input.Subtitle, input.ImageURL, linkURL,
		input.SortOrder, *input.Active, now, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create banner"})
		return
	}
	bannerID, _ := result.LastInsertId()

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Banner created successfully",
		"bannerId": bannerID,
	})
}

// UpdateBanner is the handler for PUT /v1/admin/banners/:id
func (h *Handlers) UpdateBanner(c *gin.Context) {
	bannerID := c.Param("id")

	var input BannerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var linkURL sql.NullString
	if input.LinkURL != "" {
		linkURL = sql.NullString{String: input.LinkURL, Valid: true}
	}

	query := `
		UPDATE hero_banners
		SET title = ?, subtitle = ?, image_url = ?, link_url = ?, sort_order = ?, active = ?, updated_at = ?
		WHERE id = ?`
	result, err := h.DB.Exec(query, input.Title, input.Subtitle, input.ImageURL, linkURL,
		input.SortOrder, *input.Active, time.Now(), bannerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update banner"})
		return
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check affected rows"})
		return
	}
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Banner not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Banner updated successfully",
	})
}

// DeleteBanner is the handler for DELETE /v1/admin/banners/:id
func (h *Handlers) DeleteBanner(c *gin.Context) {
	bannerID := c.Param("id")

	result, err := h.DB.Exec("DELETE FROM hero_banners WHERE id = ?", bannerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete banner"})
		return
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check affected rows"})
		return
	}
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Banner not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Banner deleted successfully",
	})
}
