package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"github.com/ovenlight/bakery-api/internal/catalog"
	"github.com/ovenlight/bakery-api/internal/models"
)

//
// --- Storefront Product Handlers ---
//

const productColumns = `
	id, name, slug, description, category, price, image_url, tags,
	popularity, rating_avg, rating_count, status, created_at, updated_at`

func scanProduct(row interface{ Scan(...interface{}) error }) (models.Product, error) {
	var p models.Product
	var imageURL sql.NullString

	err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.Category,
		&p.Price, &imageURL, &p.Tags,
		&p.Popularity, &p.RatingAvg, &p.RatingCount,
		&p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return p, err
	}
	if imageURL.Valid {
		p.ImageURL = &imageURL.String
	}
	return p, nil
}

func (h *Handlers) fetchProducts(where string, args ...interface{}) ([]models.Product, error) {
	query := "SELECT" + productColumns + " FROM products " + where
	rows, err := h.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// GetProducts is the handler for GET /v1/products
// The full published catalog is fetched once and all narrowing (category,
// price range, text query) plus sorting happens in memory. The storefront
// is a few hundred products at most.
func (h *Handlers) GetProducts(c *gin.Context) {
	// 1. --- Fetch the Published Catalog ---
	products, err := h.fetchProducts("WHERE status = 'published' ORDER BY created_at ASC")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	// 2. --- Build Filter from Query Params ---
	filter := catalog.Filter{
		Category: c.Query("category"),
		Query:    c.Query("q"),
	}
	if raw := c.Query("minPrice"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			filter.MinPrice = &v
		}
	}
	if raw := c.Query("maxPrice"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			filter.MaxPrice = &v
		}
	}

	// 3. --- Apply & Respond ---
	view := catalog.Apply(products, filter, c.Query("sort"))

	c.JSON(http.StatusOK, gin.H{
		"products": view,
		"total":    len(view),
	})
}

// GetProductBySlug is the handler for GET /v1/products/:slug
func (h *Handlers) GetProductBySlug(c *gin.Context) {
	productSlug := c.Param("slug")

	query := "SELECT" + productColumns + " FROM products WHERE slug = ? AND status = 'published'"
	p, err := scanProduct(h.DB.QueryRow(query, productSlug))
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": p,
	})
}

// GetCategories is the handler for GET /v1/categories
// Distinct categories of the published catalog, for the filter bar.
func (h *Handlers) GetCategories(c *gin.Context) {
	rows, err := h.DB.Query("SELECT DISTINCT category FROM products WHERE status = 'published' ORDER BY category ASC")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan category"})
			return
		}
		categories = append(categories, category)
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
	})
}

//
// --- Admin: Product Handlers ---
//

// ProductInput defines the JSON for creating/updating a product.
type ProductInput struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Category    string  `json:"category" binding:"required"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	ImageURL    string  `json:"imageUrl"`
	Tags        string  `json:"tags"`
	Status      string  `json:"status" binding:"required,oneof=draft published archived"`
}

// GetAllProducts is the handler for GET /v1/admin/products
// Unlike the storefront list, drafts and archived products are included.
func (h *Handlers) GetAllProducts(c *gin.Context) {
	products, err := h.fetchProducts("ORDER BY created_at DESC")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
	})
}

// CreateProduct is the handler for POST /v1/admin/products
func (h *Handlers) CreateProduct(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. --- Build a Unique Slug ---
	baseSlug := slug.Make(input.Name)
	productSlug := baseSlug
	for i := 2; ; i++ {
		var exists bool
		if err := h.DB.QueryRow("SELECT EXISTS(SELECT 1 FROM products WHERE slug = ?)", productSlug).Scan(&exists); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check slug"})
			return
		}
		if !exists {
			break
		}
		productSlug = fmt.Sprintf("%s-%d", baseSlug, i)
	}

	// 3. --- Insert Product ---
	now := time.Now()
	var imageURL sql.NullString
	if input.ImageURL != "" {
		imageURL = sql.NullString{String: input.ImageURL, Valid: true}
	}

	query := `
		INSERT INTO products
		(name, slug, description, category, price, image_url, tags,
		 popularity, rating_avg, rating_count, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, 0, 0, ?, ?, ?)`

	result, err := h.DB.Exec(query,
		input.Name, productSlug, input.Description, input.Category,
		input.Price, imageURL, input.Tags, input.Status, now, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}
	productID, _ := result.LastInsertId()

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Product created successfully",
		"productId": productID,
		"slug":      productSlug,
	})
}

// UpdateProduct is the handler for PUT /v1/admin/products/:id
// The slug is intentionally left alone so shared links keep working.
func (h *Handlers) UpdateProduct(c *gin.Context) {
	productID := c.Param("id")

	var input ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var imageURL sql.NullString
	if input.ImageURL != "" {
		imageURL = sql.NullString{String: input.ImageURL, Valid: true}
	}

	query := `
		UPDATE products
		SET name = ?, description = ?, category = ?, price = ?, image_url = ?, tags = ?, status = ?, updated_at = ?
		WHERE id = ?`

	result, err := h.DB.Exec(query,
		input.Name, input.Description, input.Category, input.Price,
		imageURL, input.Tags, input.Status, time.Now(), productID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check affected rows"})
		return
	}
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product updated successfully",
	})
}

// DeleteProduct is the handler for DELETE /v1/admin/products/:id
// Products referenced by order items are archived instead of removed so
// order history keeps its joins.
func (h *Handlers) DeleteProduct(c *gin.Context) {
	productID := c.Param("id")

	var referenced bool
	if err := h.DB.QueryRow("SELECT EXISTS(SELECT 1 FROM order_items WHERE product_id = ?)", productID).Scan(&referenced); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check order history"})
		return
	}

	var result sql.Result
	var err error
	if referenced {
		result, err = h.DB.Exec("UPDATE products SET status = 'archived', updated_at = ? WHERE id = ?", time.Now(), productID)
	} else {
		result, err = h.DB.Exec("DELETE FROM products WHERE id = ?", productID)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check affected rows"})
		return
	}
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	message := "Product deleted successfully"
	if referenced {
		message = "Product archived (it appears in past orders)"
	}
	c.JSON(http.StatusOK, gin.H{
		"message": message,
	})
}
