package controllers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lokaclean/lokaclean-api/models"
	"github.com/lokaclean/lokaclean-api/services"
	"github.com/lokaclean/lokaclean-api/utils"
)

// geocodeTimeout bounds the best-effort address resolution at booking
// time.
const geocodeTimeout = 3 * time.Second

// CreateOrder books a new cleaning order from a multipart form: the
// booking fields plus 1 to 4 "before" photos of the space. The order,
// its payment record and its photos are created together; when creation
// fails the uploaded files are removed again.
func CreateOrder(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	packageID, err := strconv.ParseUint(c.PostForm("package_id"), 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "package_id must be a positive integer")
		return
	}

	scheduledDate, err := time.Parse(time.RFC3339, c.PostForm("scheduled_date"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "scheduled_date must be RFC3339, e.g. 2026-09-01T10:00:00+07:00")
		return
	}

	latitude, latErr := strconv.ParseFloat(c.PostForm("latitude"), 64)
	longitude, lngErr := strconv.ParseFloat(c.PostForm("longitude"), 64)
	if latErr != nil || lngErr != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "latitude and longitude must be decimal numbers")
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_FORM", "Expected a multipart form")
		return
	}
	files := form.File["before_photos"]
	if err := utils.ValidatePhotoBatch(files); err != nil {
		uerr := err.(*utils.FileUploadError)
		respondError(c, http.StatusBadRequest, uerr.Code, uerr.Message)
		return
	}

	// The order does not exist yet, so the photos go into a draft scope.
	// Keys are opaque downstream, the scope never matters again.
	storage := services.GetPhotoStorage()
	scope := fmt.Sprintf("bookings/%s", uuid.NewString())
	keys := make([]string, 0, len(files))
	for i, file := range files {
		key, err := storage.UploadPhoto(scope, models.PhotoKindBefore, i, file)
		if err != nil {
			log.Printf("failed to upload before photo: %v", err)
			cleanupPhotos(storage, keys)
			respondError(c, http.StatusInternalServerError, "UPLOAD_FAILED", "Failed to store photo")
			return
		}
		keys = append(keys, key)
	}

	resolved := ""
	if geocoder := services.GetGeocoder(); geocoder != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), geocodeTimeout)
		defer cancel()
		resolved, err = geocoder.ReverseGeocode(ctx, latitude, longitude)
		if err != nil {
			log.Printf("reverse geocode failed, keeping customer address only: %v", err)
		}
	}

	order, err := orderService().Create(services.CreateOrderInput{
		CustomerID:      user.ID,
		PackageID:       uint(packageID),
		ScheduledDate:   scheduledDate,
		Address:         c.PostForm("address"),
		ResolvedAddress: resolved,
		Latitude:        latitude,
		Longitude:       longitude,
		Method:          models.PaymentMethod(c.PostForm("payment_method")),
		BeforePhotoKeys: keys,
	})
	if err != nil {
		cleanupPhotos(storage, keys)
		respondServiceError(c, err)
		return
	}

	if err := services.GetNotifier().OrderReceived(order); err != nil {
		log.Printf("staff notification failed for order %d: %v", order.ID, err)
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    orderPayload(order),
	})
}

// GetOrder returns one order with its permitted actions and, while a
// gateway checkout is open, the payment countdown. Reading a lapsed
// unpaid gateway order voids it and reports 404.
func GetOrder(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	order, ok := fetchOwnedOrder(c, user)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orderPayload(order),
	})
}

// ListOrders returns the caller's orders, or every order for staff.
// Voided orders are never listed.
func ListOrders(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var orders []models.Order
	var err error
	if user.IsStaff() {
		orders, err = orderService().ListAll()
	} else {
		orders, err = orderService().List(user.ID)
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"orders": orders,
			"count":  len(orders),
		},
	})
}

// CancelOrder cancels a not-yet-completed order. Repeating the call on
// an already cancelled order succeeds without changing anything.
func CancelOrder(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	order, ok := fetchOwnedOrder(c, user)
	if !ok {
		return
	}

	order, err := orderService().Cancel(order.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orderPayload(order),
	})
}

// fetchOwnedOrder parses the :id param, loads the order through the
// read path (which enforces voiding) and checks the caller may see it.
// A foreign order reads as not found rather than forbidden.
func fetchOwnedOrder(c *gin.Context, user *models.User) (*models.Order, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Order id must be a positive integer")
		return nil, false
	}

	order, err := orderService().Get(uint(id))
	if err != nil {
		respondServiceError(c, err)
		return nil, false
	}

	if !user.IsStaff() && order.CustomerID != user.ID {
		respondError(c, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found")
		return nil, false
	}

	return order, true
}

func cleanupPhotos(storage services.PhotoStorage, keys []string) {
	for _, key := range keys {
		if err := storage.DeletePhoto(key); err != nil {
			log.Printf("failed to delete orphaned photo %s: %v", key, err)
		}
	}
}
