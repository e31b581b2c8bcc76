package controllers

import (
	"net/http"

	"content-approval-api/models"
	"content-approval-api/services"

	"github.com/gin-gonic/gin"
)

// GetDashboardStats returns status counts scoped to the caller: requesters
// see their own submissions, approvers and admins see everything plus the
// pending review queue.
func GetDashboardStats(c *gin.Context) {
	actor := currentActor(c)

	scope := actor.UserID
	if actor.CanDecide() {
		scope = ""
	}

	counts, err := viewSvc.CountByStatus(c.Request.Context(), scope)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	response := gin.H{
		"success": true,
		"stats":   counts,
	}

	if actor.CanDecide() {
		pending := models.StatusPending
		queue, err := viewSvc.ListSubmissions(c.Request.Context(), services.ListFilter{Status: &pending})
		if err != nil {
			respondWorkflowError(c, err)
			return
		}
		response["pending_queue"] = queue
	} else {
		revision := models.StatusRevisionRequested
		rework, err := viewSvc.ListSubmissions(c.Request.Context(), services.ListFilter{
			Status:      &revision,
			RequesterID: actor.UserID,
		})
		if err != nil {
			respondWorkflowError(c, err)
			return
		}
		response["revision_queue"] = rework
	}

	c.JSON(http.StatusOK, response)
}
