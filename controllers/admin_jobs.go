package controllers

import (
	"errors"
	"net/http"
	"time"

	"content-approval-api/services"

	"github.com/gin-gonic/gin"
)

// RunDueDateReminders triggers one due-date reminder pass on demand.
// POST /api/v1/admin/jobs/due-date-reminders
func RunDueDateReminders(c *gin.Context) {
	var req struct {
		WindowHours int  `json:"window_hours"`
		DryRun      bool `json:"dry_run"`
	}
	_ = c.ShouldBindJSON(&req)

	summary, err := ReminderService().Run(c.Request.Context(), &services.ReminderJobInput{
		Window:   time.Duration(req.WindowHours) * time.Hour,
		LockName: "content_approval_due_reminders",
		DryRun:   req.DryRun,
	})
	if err != nil {
		if errors.Is(err, services.ErrReminderJobAlreadyRunning) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error":   "Reminder job is already running",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to run reminder job",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"summary": summary,
	})
}
