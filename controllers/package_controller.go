package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lokaclean/lokaclean-api/config"
	"github.com/lokaclean/lokaclean-api/models"
)

// ListPackages returns the bookable cleaning packages.
func ListPackages(c *gin.Context) {
	var packages []models.Package
	if err := config.GetDB().Where("active = ?", true).Order("price").Find(&packages).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"packages": packages,
			"count":    len(packages),
		},
	})
}

// CreatePackageRequest is a new bookable package.
type CreatePackageRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Price       int64  `json:"price" binding:"required,min=0"`
	DurationMin int    `json:"duration_min" binding:"min=0"`
}

// CreatePackage adds a bookable package. Staff only.
func CreatePackage(c *gin.Context) {
	var req CreatePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "name and a non-negative price are required")
		return
	}

	pkg := models.Package{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		DurationMin: req.DurationMin,
		Active:      true,
	}
	if pkg.DurationMin == 0 {
		pkg.DurationMin = 120
	}
	if err := config.GetDB().Create(&pkg).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    pkg,
	})
}
