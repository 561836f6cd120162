package controllers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/lokaclean/lokaclean-api/middleware"
	"github.com/lokaclean/lokaclean-api/models"
)

func TestListPackages(t *testing.T) {
	f := newCtrlFixture(t)
	f.db.Create(&models.Package{Name: "Family Home Clean", Price: 300000, DurationMin: 240, Active: true})
	f.db.Create(&models.Package{Name: "Retired Promo", Price: 99000, Active: false})

	router := setupTestRouter()
	router.GET("/packages", mockAuthMiddleware(f.customer.Auth0ID), ListPackages)
	w := performJSON(router, http.MethodGet, "/packages", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	response := parseResponse(t, w)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["count"])

	// Cheapest first, inactive packages hidden.
	packages := data["packages"].([]interface{})
	first := packages[0].(map[string]interface{})
	assert.Equal(t, "Studio Deep Clean", first["name"])
}

func TestCreatePackage(t *testing.T) {
	f := newCtrlFixture(t)

	newRouter := func(auth0ID string) *gin.Engine {
		router := setupTestRouter()
		router.POST("/packages", mockAuthMiddleware(auth0ID), middleware.RequireStaff(), CreatePackage)
		return router
	}

	t.Run("staff creates a package", func(t *testing.T) {
		w := performJSON(newRouter(f.staff.Auth0ID), http.MethodPost, "/packages", map[string]interface{}{
			"name":         "Move-out Clean",
			"description":  "Full clean for handover",
			"price":        450000,
			"duration_min": 300,
		})
		assert.Equal(t, http.StatusCreated, w.Code)

		var pkg models.Package
		assert.NoError(t, f.db.Where("name = ?", "Move-out Clean").First(&pkg).Error)
		assert.Equal(t, int64(450000), pkg.Price)
		assert.True(t, pkg.Active)
	})

	t.Run("duration defaults to two hours", func(t *testing.T) {
		w := performJSON(newRouter(f.staff.Auth0ID), http.MethodPost, "/packages", map[string]interface{}{
			"name":  "Quick Refresh",
			"price": 80000,
		})
		assert.Equal(t, http.StatusCreated, w.Code)

		var pkg models.Package
		assert.NoError(t, f.db.Where("name = ?", "Quick Refresh").First(&pkg).Error)
		assert.Equal(t, 120, pkg.DurationMin)
	})

	t.Run("customer is forbidden", func(t *testing.T) {
		w := performJSON(newRouter(f.customer.Auth0ID), http.MethodPost, "/packages", map[string]interface{}{
			"name":  "Nope",
			"price": 1,
		})
		assertErrorCode(t, w, http.StatusForbidden, "FORBIDDEN")
	})

	t.Run("missing name", func(t *testing.T) {
		w := performJSON(newRouter(f.staff.Auth0ID), http.MethodPost, "/packages", map[string]interface{}{
			"price": 100000,
		})
		assertErrorCode(t, w, http.StatusBadRequest, "VALIDATION_ERROR")
	})
}
