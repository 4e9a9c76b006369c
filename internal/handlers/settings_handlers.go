package handlers

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

//
// --- Settings Handlers ---
//

// Querier is the common interface over *sql.DB and *sql.Tx, so setting
// lookups work in or out of a transaction.
type Querier interface {
	QueryRow(query string, args ...interface{}) *sql.Row
}

// publicSettingKeys are the settings the storefront may read without auth.
// Everything else (e.g. maintenance_mode) stays admin-only.
var publicSettingKeys = []string{
	"business_name", "service_area", "delivery_fee", "minimum_order",
	"contact_phone", "whatsapp_number", "currency", "country_code",
}

// settingFloat reads a numeric setting, falling back when the row is
// missing or malformed.
func (h *Handlers) settingFloat(q Querier, key string, fallback float64) float64 {
	var raw string
	if err := q.QueryRow("SELECT setting_value FROM settings WHERE setting_key = ?", key).Scan(&raw); err != nil {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return value
}

func (h *Handlers) fetchSettings(keys []string) (map[string]string, error) {
	settings := map[string]string{}

	var rows *sql.Rows
	var err error
	if keys == nil {
		rows, err = h.DB.Query("SELECT setting_key, setting_value FROM settings")
	} else {
		query := "SELECT setting_key, setting_value FROM settings WHERE setting_key IN (?" // first placeholder
		args := []interface{}{keys[0]}
		for _, key := range keys[1:] {
			query += ", ?"
			args = append(args, key)
		}
		query += ")"
		rows, err = h.DB.Query(query, args...)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		settings[key] = value
	}
	return settings, rows.Err()
}

// GetPublicSettings is the handler for GET /v1/settings
// Storefront-safe subset only.
func (h *Handlers) GetPublicSettings(c *gin.Context) {
	settings, err := h.fetchSettings(publicSettingKeys)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch settings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"settings": settings,
	})
}

// GetSettings is the handler for GET /v1/admin/settings
func (h *Handlers) GetSettings(c *gin.Context) {
	settings, err := h.fetchSettings(nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch settings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"settings": settings,
	})
}

// UpdateSettingsInput is a flat key -> value map.
type UpdateSettingsInput struct {
	Settings map[string]string `json:"settings" binding:"required"`
}

// UpdateSettings is the handler for PATCH /v1/admin/settings
// Upserts every provided key in one transaction.
func (h *Handlers) UpdateSettings(c *gin.Context) {
	var input UpdateSettingsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(input.Settings) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No settings provided"})
		return
	}

	tx, err := h.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	query := `
		INSERT INTO settings (setting_key, setting_value)
		VALUES (?, ?)
		ON DUPLICATE KEY UPDATE setting_value = VALUES(setting_value)`

	for key, value := range input.Settings {
		if _, err := tx.Exec(query, key, value); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update setting " + key})
			return
		}
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Settings updated successfully",
	})
}
