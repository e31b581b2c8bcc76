package controllers

import (
	"net/http"

	"content-approval-api/services"

	"github.com/gin-gonic/gin"
)

// ===================== WORKFLOW ACTIONS =====================
// Every handler here delegates to the workflow engine; no status is ever
// written from a controller.

type decisionRequest struct {
	Comment string `json:"comment"`
}

// ApproveSubmission approves a pending submission. Comment optional.
func ApproveSubmission(c *gin.Context) {
	actor := currentActor(c)

	var req decisionRequest
	_ = c.ShouldBindJSON(&req) // body optional; comment rules enforced by the engine

	sub, entry, err := workflowSvc.Approve(c.Request.Context(), actor, c.Param("id"), req.Comment)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"submission": sub,
		"entry":      entry,
	})
}

// RejectSubmission rejects a pending submission. Comment required.
func RejectSubmission(c *gin.Context) {
	actor := currentActor(c)

	var req decisionRequest
	_ = c.ShouldBindJSON(&req) // body optional; comment rules enforced by the engine

	sub, entry, err := workflowSvc.Reject(c.Request.Context(), actor, c.Param("id"), req.Comment)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"submission": sub,
		"entry":      entry,
	})
}

// RequestRevision sends a pending submission back for rework. Comment
// required.
func RequestRevision(c *gin.Context) {
	actor := currentActor(c)

	var req decisionRequest
	_ = c.ShouldBindJSON(&req) // body optional; comment rules enforced by the engine

	sub, entry, err := workflowSvc.RequestRevision(c.Request.Context(), actor, c.Param("id"), req.Comment)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"submission": sub,
		"entry":      entry,
	})
}

// AddRevisionContent adds a comment and/or files during a revision round.
// Multipart form: comment plus files[].
func AddRevisionContent(c *gin.Context) {
	actor := currentActor(c)

	comment := c.PostForm("comment")

	var files []services.FileInput
	if form, err := c.MultipartForm(); err == nil {
		opened, closers, err := openFileInputs(form.File["files"])
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
			return
		}
		defer closeAll(closers)
		files = opened
	}

	sub, entry, err := workflowSvc.AddRevisionContent(c.Request.Context(), actor, c.Param("id"), comment, files)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"submission": sub,
		"entry":      entry,
	})
}

// ResubmitSubmission returns a revision-requested submission to the pending
// queue. Comment optional.
func ResubmitSubmission(c *gin.Context) {
	actor := currentActor(c)

	var req decisionRequest
	_ = c.ShouldBindJSON(&req) // body optional; comment rules enforced by the engine

	sub, entry, err := workflowSvc.Resubmit(c.Request.Context(), actor, c.Param("id"), req.Comment)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"submission": sub,
		"entry":      entry,
	})
}

// VerifySubmissionHistory folds the audit trail and checks it against the
// stored submission row. Admin integrity tool.
func VerifySubmissionHistory(c *gin.Context) {
	submissionID := c.Param("id")

	entries, err := workflowSvc.History(c.Request.Context(), submissionID)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	replayed, err := services.ReplayStatus(entries)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"consistent": false,
			"error":      err.Error(),
		})
		return
	}

	detail, err := viewSvc.GetSubmissionDetail(c.Request.Context(), submissionID)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	consistent := detail.Status == replayed.Status
	if consistent {
		switch {
		case detail.ApproverID == nil && replayed.ApproverID != nil,
			detail.ApproverID != nil && replayed.ApproverID == nil:
			consistent = false
		case detail.ApproverID != nil && replayed.ApproverID != nil:
			consistent = *detail.ApproverID == *replayed.ApproverID
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"consistent":      consistent,
		"stored_status":   detail.Status,
		"replayed_status": replayed.Status,
		"entries":         len(entries),
	})
}
