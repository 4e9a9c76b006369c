package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ovenlight/bakery-api/internal/models"
)

//
// --- Notification Handlers ---
//

// Notify creates a notification record. It satisfies the status engine's
// Notifier interface and is deliberately non-transactional: notification
// writes are best-effort side effects that must never block the operation
// that triggered them.
func (h *Handlers) Notify(userID int64, notifType, title, message, link string) error {
	var nullLink sql.NullString
	if link != "" {
		nullLink = sql.NullString{String: link, Valid: true}
	}

	query := `
		INSERT INTO notifications
		(user_id, type, title, message, link, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, 0, ?)`

	_, err := h.DB.Exec(query, userID, notifType, title, message, nullLink, time.Now())
	if err != nil {
		return fmt.Errorf("failed to add notification: %w", err)
	}

	return nil
}

// GetMyNotifications is the handler for GET /v1/notifications
// It retrieves notifications for the logged-in user, unread and newest first.
func (h *Handlers) GetMyNotifications(c *gin.Context) {
	// 1. --- Get User ID ---
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	// 2. --- Query Database ---
	query := `
		SELECT id, user_id, type, title, message, link, is_read, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY is_read ASC, created_at DESC
		LIMIT 50` // Limit to 50 to avoid performance issues

	rows, err := h.DB.Query(query, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	// 3. --- Scan Rows into Slice ---
	var notifications []*models.Notification
	var unread int
	for rows.Next() {
		var notif models.Notification
		if err := rows.Scan(
			&notif.ID,
			&notif.UserID,
			&notif.Type,
			&notif.Title,
			&notif.Message,
			&notif.Link,
			&notif.IsRead,
			&notif.CreatedAt,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan notification row"})
			return
		}
		if !notif.IsRead {
			unread++
		}
		notifications = append(notifications, &notif)
	}

	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating notification rows"})
		return
	}

	if notifications == nil {
		notifications = []*models.Notification{}
	}

	// 4. --- Send Success Response ---
	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"unreadCount":   unread,
	})
}

// MarkNotificationAsRead is the handler for PATCH /v1/notifications/:id/read
func (h *Handlers) MarkNotificationAsRead(c *gin.Context) {
	// 1. --- Get IDs ---
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)
	notificationID := c.Param("id")

	// 2. --- Execute Update ---
	// The user_id guard stops a user flipping someone else's notifications.
	query := `
		UPDATE notifications
		SET is_read = 1
		WHERE id = ? AND user_id = ?`

	result, err := h.DB.Exec(query, notificationID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		return
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check affected rows"})
		return
	}

	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found or you do not have permission to update it"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Notification marked as read",
	})
}

// MarkAllNotificationsRead is the handler for PATCH /v1/notifications/read-all
func (h *Handlers) MarkAllNotificationsRead(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	_, err := h.DB.Exec("UPDATE notifications SET is_read = 1 WHERE user_id = ? AND is_read = 0", userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "All notifications marked as read",
	})
}

// DeleteNotification is the handler for DELETE /v1/notifications/:id
func (h *Handlers) DeleteNotification(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)
	notificationID := c.Param("id")

	result, err := h.DB.Exec("DELETE FROM notifications WHERE id = ? AND user_id = ?", notificationID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete notification"})
		return
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check affected rows"})
		return
	}
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Notification deleted",
	})
}

// DeleteAllNotifications is the handler for DELETE /v1/notifications
func (h *Handlers) DeleteAllNotifications(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	_, err := h.DB.Exec("DELETE FROM notifications WHERE user_id = ?", userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "All notifications deleted",
	})
}

// CleanupReadNotifications deletes read notifications older than 90 days.
// Called by the background worker in main.
func (h *Handlers) CleanupReadNotifications() {
	cutoff := time.Now().AddDate(0, 0, -90)
	result, err := h.DB.Exec("DELETE FROM notifications WHERE is_read = 1 AND created_at < ?", cutoff)
	if err != nil {
		h.Logger.Printf("notification cleanup failed: %v", err)
		return
	}
	if deleted, err := result.RowsAffected(); err == nil && deleted > 0 {
		h.Logger.Printf("notification cleanup removed %d rows", deleted)
	}
}
