package middleware

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminMiddleware allows only users present in the 'admins' or
// 'super_admins' tables. Must run after AuthMiddleware.
func AdminMiddleware(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID_raw, exists := c.Get("userID")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}
		userID := userID_raw.(int64)

		var isAdmin bool
		err := db.QueryRow("SELECT EXISTS(SELECT 1 FROM admins WHERE user_id = ?) OR EXISTS(SELECT 1 FROM super_admins WHERE user_id = ?)", userID, userID).Scan(&isAdmin)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify admin role"})
			c.Abort()
			return
		}

		if !isAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// SuperAdminMiddleware allows only users present in the 'super_admins' table.
func SuperAdminMiddleware(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID_raw, exists := c.Get("userID")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}
		userID := userID_raw.(int64)

		var isSuper bool
		err := db.QueryRow("SELECT EXISTS(SELECT 1 FROM super_admins WHERE user_id = ?)", userID).Scan(&isSuper)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify super admin role"})
			c.Abort()
			return
		}

		if !isSuper {
			c.JSON(http.StatusForbidden, gin.H{"error": "Super admin access required"})
			c.Abort()
			return
		}

		c.Next()
	}
}
