package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

//
// --- Admin: Dashboard & Role Management ---
//

// GetAdminStats is the handler for GET /v1/admin/stats
// Badge counts for the back-office sidebar.
func (h *Handlers) GetAdminStats(c *gin.Context) {
	stats := gin.H{}

	counters := []struct {
		key   string
		query string
	}{
		{"pendingOrders", "SELECT COUNT(*) FROM orders WHERE status = 'pending'"},
		{"pendingRequests", "SELECT COUNT(*) FROM custom_requests WHERE status = 'pending'"},
		{"pendingReviews", "SELECT COUNT(*) FROM reviews WHERE approved = 0"},
		{"pendingTestimonials", "SELECT COUNT(*) FROM testimonials WHERE approved = 0"},
		{"totalOrders", "SELECT COUNT(*) FROM orders"},
		{"totalCustomers", "SELECT COUNT(*) FROM users WHERE role = 'customer'"},
	}

	for _, counter := range counters {
		var count int64
		if err := h.DB.QueryRow(counter.query).Scan(&count); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
			return
		}
		stats[counter.key] = count
	}

	// Revenue ignores cancelled orders.
	var revenue sql.NullFloat64
	if err := h.DB.QueryRow("SELECT SUM(total) FROM orders WHERE status != 'cancelled'").Scan(&revenue); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute revenue"})
		return
	}
	stats["totalRevenue"] = revenue.Float64

	c.JSON(http.StatusOK, gin.H{
		"stats": stats,
	})
}

// ListAdmins is the handler for GET /v1/superadmin/admins
func (h *Handlers) ListAdmins(c *gin.Context) {
	query := `
		SELECT u.id, u.email, u.full_name, a.created_at
		FROM admins a
		JOIN users u ON a.user_id = u.id
		ORDER BY a.created_at ASC`

	rows, err := h.DB.Query(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	type adminRow struct {
		ID        int64     `json:"id"`
		Email     string    `json:"email"`
		FullName  string    `json:"fullName"`
		GrantedAt time.Time `json:"grantedAt"`
	}

	admins := []adminRow{}
	for rows.Next() {
		var a adminRow
		if err := rows.Scan(&a.ID, &a.Email, &a.FullName, &a.GrantedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan admin row"})
			return
		}
		admins = append(admins, a)
	}

	c.JSON(http.StatusOK, gin.H{
		"admins": admins,
	})
}

// GrantAdminInput identifies the account to promote.
type GrantAdminInput struct {
	Email string `json:"email" binding:"required,email"`
}

// GrantAdmin is the handler for POST /v1/superadmin/admins
func (h *Handlers) GrantAdmin(c *gin.Context) {
	// 1. --- Get Granter & Bind Input ---
	granterRaw, _ := c.Get("userID")
	granterID := granterRaw.(int64)

	var input GrantAdminInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. --- Resolve the Account ---
	var userID int64
	err := h.DB.QueryRow("SELECT id FROM users WHERE email = ?", input.Email).Scan(&userID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "No account with that email"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up account"})
		return
	}

	// 3. --- Grant (idempotent) ---
	var alreadyAdmin bool
	if err := h.DB.QueryRow("SELECT EXISTS(SELECT 1 FROM admins WHERE user_id = ?)", userID).Scan(&alreadyAdmin); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check admin role"})
		return
	}
	if alreadyAdmin {
		c.JSON(http.StatusOK, gin.H{"message": "Account is already an admin"})
		return
	}

	if _, err := h.DB.Exec("INSERT INTO admins (user_id, granted_by, created_at) VALUES (?, ?, ?)", userID, granterID, time.Now()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to grant admin role"})
		return
	}

	// 4. --- Best-effort Notification ---
	if err := h.Notify(userID, "role", "Admin access granted", "You now have access to the bakery back-office.", "/admin"); err != nil {
		h.Logger.Printf("notification write failed for admin grant to user %d: %v", userID, err)
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Admin role granted",
	})
}

// RevokeAdmin is the handler for DELETE /v1/superadmin/admins/:id
func (h *Handlers) RevokeAdmin(c *gin.Context) {
	userID := c.Param("id")

	result, err := h.DB.Exec("DELETE FROM admins WHERE user_id = ?", userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to revoke admin role"})
		return
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check affected rows"})
		return
	}
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "That account is not an admin"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Admin role revoked",
	})
}
