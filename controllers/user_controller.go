package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lokaclean/lokaclean-api/config"
	"github.com/lokaclean/lokaclean-api/middleware"
	"github.com/lokaclean/lokaclean-api/models"
)

// CreateUserRequest is the profile a user creates after their first
// login.
type CreateUserRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone"`
}

// CreateUser creates the profile for the authenticated identity. The
// role is always customer; staff accounts are provisioned directly.
func CreateUser(c *gin.Context) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "name and a valid email are required")
		return
	}

	db := config.GetDB()

	var existing models.User
	if err := db.Where("auth0_id = ?", auth0ID).First(&existing).Error; err == nil {
		respondError(c, http.StatusConflict, "USER_EXISTS", "A profile already exists for this account")
		return
	}

	user := models.User{
		Auth0ID: auth0ID,
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Role:    "customer",
	}
	if err := db.Create(&user).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    user,
	})
}

// GetCurrentUser returns the authenticated user's profile.
func GetCurrentUser(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}
