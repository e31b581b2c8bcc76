package controllers

import (
	"mime/multipart"
	"net/http"
	"time"

	"content-approval-api/models"
	"content-approval-api/services"

	"github.com/gin-gonic/gin"
)

// ===================== SUBMISSION MANAGEMENT =====================

// GetSubmissions returns the submission list projection. Requesters see
// only their own; approvers and admins see everything, with optional
// status/requester/approver filters.
func GetSubmissions(c *gin.Context) {
	actor := currentActor(c)

	var filter services.ListFilter
	if raw := c.Query("status"); raw != "" {
		status, err := models.ParseStatus(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
			return
		}
		filter.Status = &status
	}

	if actor.CanDecide() {
		filter.RequesterID = c.Query("requester_id")
		filter.ApproverID = c.Query("approver_id")
	} else {
		filter.RequesterID = actor.UserID
	}

	rows, err := viewSvc.ListSubmissions(c.Request.Context(), filter)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"submissions": rows,
		"total":       len(rows),
	})
}

// GetSubmission returns a specific submission with attachments and the
// revision comment thread.
func GetSubmission(c *gin.Context) {
	actor := currentActor(c)
	submissionID := c.Param("id")

	detail, err := viewSvc.GetSubmissionDetail(c.Request.Context(), submissionID)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	// Requesters may only open their own submissions. Report NotFound, not
	// Forbidden, to avoid leaking the existence of other people's work.
	if !actor.CanDecide() && detail.RequesterID != actor.UserID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"submission": detail,
	})
}

// CreateSubmission creates a new submission from a multipart form with
// optional file attachments.
func CreateSubmission(c *gin.Context) {
	actor := currentActor(c)

	title := c.PostForm("title")
	description := c.PostForm("description")

	var dueDate *time.Time
	if raw := c.PostForm("due_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid due_date, expected YYYY-MM-DD"})
			return
		}
		dueDate = &parsed
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form"})
		return
	}

	files, closers, err := openFileInputs(form.File["files"])
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer closeAll(closers)

	sub, entry, err := workflowSvc.Create(c.Request.Context(), actor, services.CreateInput{
		Title:       title,
		Description: description,
		DueDate:     dueDate,
		Files:       files,
	})
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"submission": sub,
		"entry":      entry,
	})
}

// GetSubmissionHistory returns the audit timeline with actor names.
func GetSubmissionHistory(c *gin.Context) {
	actor := currentActor(c)
	submissionID := c.Param("id")

	// Existence and visibility check first; History itself is a plain view.
	detail, err := viewSvc.GetSubmissionDetail(c.Request.Context(), submissionID)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}
	if !actor.CanDecide() && detail.RequesterID != actor.UserID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return
	}

	rows, err := viewSvc.History(c.Request.Context(), submissionID)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"history": rows,
		"total":   len(rows),
	})
}

// openFileInputs adapts multipart headers into workflow file inputs. The
// returned closers must be closed after the workflow call finishes.
func openFileInputs(headers []*multipart.FileHeader) ([]services.FileInput, []multipart.File, error) {
	files := make([]services.FileInput, 0, len(headers))
	closers := make([]multipart.File, 0, len(headers))

	for _, header := range headers {
		src, err := header.Open()
		if err != nil {
			closeAll(closers)
			return nil, nil, err
		}
		closers = append(closers, src)
		files = append(files, services.FileInput{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Reader:      src,
		})
	}
	return files, closers, nil
}

func closeAll(closers []multipart.File) {
	for _, f := range closers {
		f.Close()
	}
}
