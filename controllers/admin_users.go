package controllers

import (
	"net/http"
	"time"

	"content-approval-api/config"
	"content-approval-api/models"
	"content-approval-api/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ===================== USER MANAGEMENT (ADMIN) =====================

// GetUsers lists all user accounts, active and deactivated.
func GetUsers(c *gin.Context) {
	users := make([]models.User, 0)
	if err := config.DB.Order("created_at DESC").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"users":   users,
		"total":   len(users),
	})
}

// CreateUser provisions a new account with a role.
func CreateUser(c *gin.Context) {
	type CreateUserRequest struct {
		Email      string  `json:"email" binding:"required,email"`
		Password   string  `json:"password" binding:"required"`
		FullName   string  `json:"full_name" binding:"required"`
		Role       string  `json:"role" binding:"required"`
		Department *string `json:"department"`
		JobTitle   *string `json:"job_title"`
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role, err := models.ParseRole(req.Role)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		return
	}

	if ok, msg := utils.ValidatePassword(req.Password); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	var existing models.User
	if err := config.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}

	hashed, err := HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	user := models.User{
		UserID:     uuid.NewString(),
		Email:      req.Email,
		Password:   hashed,
		FullName:   utils.SanitizeInput(req.FullName),
		Role:       role,
		Department: req.Department,
		JobTitle:   req.JobTitle,
		IsActive:   true,
		CreatedAt:  time.Now().UTC(),
	}

	if err := config.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"user":    user,
	})
}

// UpdateUser lets an admin edit another account's display attributes.
// Role changes go through UpdateUserRole so the trail of role grants
// stays explicit.
func UpdateUser(c *gin.Context) {
	type AdminUserUpdateRequest struct {
		FullName   *string `json:"full_name"`
		Department *string `json:"department"`
		JobTitle   *string `json:"job_title"`
		Phone      *string `json:"phone"`
	}

	var req AdminUserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := config.DB.Where("user_id = ?", c.Param("id")).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if req.FullName != nil {
		name := utils.SanitizeInput(*req.FullName)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name cannot be empty"})
			return
		}
		user.FullName = name
	}
	if req.Department != nil {
		user.Department = req.Department
	}
	if req.JobTitle != nil {
		user.JobTitle = req.JobTitle
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}

	now := time.Now().UTC()
	user.UpdatedAt = &now

	if err := config.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// UpdateUserRole changes a user's role. Admin only; the role claim in
// outstanding tokens refreshes on next login.
func UpdateUserRole(c *gin.Context) {
	type RoleUpdateRequest struct {
		Role string `json:"role" binding:"required"`
	}

	var req RoleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role, err := models.ParseRole(req.Role)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		return
	}

	var user models.User
	if err := config.DB.Where("user_id = ?", c.Param("id")).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	now := time.Now().UTC()
	user.Role = role
	user.UpdatedAt = &now

	if err := config.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// DeactivateUser soft-deactivates an account. The row stays because
// submissions and audit entries keep referencing it for historical display.
func DeactivateUser(c *gin.Context) {
	setUserActive(c, false)
}

// ActivateUser re-enables a previously deactivated account.
func ActivateUser(c *gin.Context) {
	setUserActive(c, true)
}

func setUserActive(c *gin.Context, active bool) {
	actorID, _ := c.Get("userID")
	targetID := c.Param("id")

	if !active && actorID.(string) == targetID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot deactivate your own account"})
		return
	}

	var user models.User
	if err := config.DB.Where("user_id = ?", targetID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	now := time.Now().UTC()
	user.IsActive = active
	user.UpdatedAt = &now

	if err := config.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}
