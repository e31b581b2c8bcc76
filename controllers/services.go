package controllers

import (
	"errors"
	"net/http"

	"content-approval-api/models"
	"content-approval-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var (
	workflowSvc *services.WorkflowService
	viewSvc     *services.ViewService
	reminderSvc *services.ReminderJobService
)

// InitServices wires the controllers to the shared database handle. Must be
// called once after config.InitDB.
func InitServices(db *gorm.DB) {
	store := services.NewGormStore(db)
	workflowSvc = services.NewWorkflowService(store, services.NewLocalObjectStore())
	workflowSvc.SetNotifier(services.NewAuditNotifier(db))
	viewSvc = services.NewViewService(db)
	reminderSvc = services.NewReminderJobService(db)
}

// ReminderService exposes the reminder job for the background loop in main.
func ReminderService() *services.ReminderJobService {
	return reminderSvc
}

// currentActor builds the explicit actor context from the authenticated
// request. AuthMiddleware guarantees both values are present.
func currentActor(c *gin.Context) services.ActorContext {
	userID, _ := c.Get("userID")
	role, _ := c.Get("role")
	return services.ActorContext{
		UserID: userID.(string),
		Role:   role.(models.Role),
	}
}

// respondWorkflowError maps each workflow error kind to its HTTP status.
func respondWorkflowError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch services.KindOf(err) {
	case services.KindNotFound:
		status = http.StatusNotFound
	case services.KindForbidden:
		status = http.StatusForbidden
	case services.KindInvalidTransition:
		status = http.StatusConflict
	case services.KindValidation:
		status = http.StatusBadRequest
	}

	var werr *services.WorkflowError
	message := "Internal server error"
	if errors.As(err, &werr) {
		message = werr.Message
	}

	c.JSON(status, gin.H{
		"success": false,
		"error":   message,
		"kind":    string(services.KindOf(err)),
	})
}
