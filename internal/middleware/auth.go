package middleware

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ovenlight/bakery-api/internal/auth"
)

// AuthMiddleware validates the bearer token and loads the user ID into the
// context. It also enforces maintenance mode: when the 'maintenance_mode'
// setting is "true", only admins may pass.
func AuthMiddleware(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. --- Check Maintenance Mode ---
		var maintenanceMode string
		// Missing setting row just means "off", so the error is ignored.
		_ = db.QueryRow("SELECT setting_value FROM settings WHERE setting_key = 'maintenance_mode'").Scan(&maintenanceMode)

		// 2. --- Get Authorization Header ---
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format (must be Bearer)"})
			c.Abort()
			return
		}
		tokenString := parts[1]

		// 3. --- Validate Token ---
		userID, err := auth.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		// 4. --- Enforce Maintenance Mode ---
		if maintenanceMode == "true" {
			var isAdmin bool
			err := db.QueryRow("SELECT EXISTS(SELECT 1 FROM admins WHERE user_id = ?) OR EXISTS(SELECT 1 FROM super_admins WHERE user_id = ?)", userID, userID).Scan(&isAdmin)
			if err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service unavailable (maintenance check failed)"})
				c.Abort()
				return
			}

			if !isAdmin {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"error": "The bakery is briefly closed for maintenance. Please try again later.",
				})
				c.Abort()
				return
			}
		}

		// 5. --- Success ---
		c.Set("userID", userID)
		c.Next()
	}
}
