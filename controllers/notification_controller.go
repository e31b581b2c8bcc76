package controllers

import (
	"net/http"

	"content-approval-api/config"
	"content-approval-api/models"

	"github.com/gin-gonic/gin"
)

// GetNotifications returns the caller's in-app inbox, newest first.
func GetNotifications(c *gin.Context) {
	userID, _ := c.Get("userID")

	notifications := make([]models.Notification, 0)
	query := config.DB.Where("user_id = ?", userID)

	if c.Query("unread") == "true" {
		query = query.Where("is_read = ?", false)
	}

	if err := query.Order("created_at DESC").Find(&notifications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}

	var unread int64
	config.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&unread)

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"notifications": notifications,
		"unread":        unread,
	})
}

// MarkNotificationRead marks one notification as read.
func MarkNotificationRead(c *gin.Context) {
	userID, _ := c.Get("userID")

	res := config.DB.Model(&models.Notification{}).
		Where("notification_id = ? AND user_id = ?", c.Param("id"), userID).
		Update("is_read", true)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// MarkAllNotificationsRead marks every unread notification as read.
func MarkAllNotificationsRead(c *gin.Context) {
	userID, _ := c.Get("userID")

	if err := config.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
