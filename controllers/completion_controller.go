package controllers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lokaclean/lokaclean-api/models"
	"github.com/lokaclean/lokaclean-api/services"
	"github.com/lokaclean/lokaclean-api/utils"
)

// The completion flow is strictly ordered: after photos, then the tip
// decision, then completion, then (optionally) the rating. Each handler
// delegates the ordering to the order service, which re-checks the
// action gate inside its transaction, so a stale client can never skip
// a step by racing another request.

// UploadAfterPhotos attaches 1 to 4 "after" photos to an in-progress
// order. The combined photo list stays bounded at 4 per kind.
func UploadAfterPhotos(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	order, ok := fetchOwnedOrder(c, user)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_FORM", "Expected a multipart form")
		return
	}
	files := form.File["after_photos"]
	if err := utils.ValidatePhotoBatch(files); err != nil {
		uerr := err.(*utils.FileUploadError)
		respondError(c, http.StatusBadRequest, uerr.Code, uerr.Message)
		return
	}

	storage := services.GetPhotoStorage()
	scope := fmt.Sprintf("orders/%d", order.ID)
	offset := len(order.AfterPhotos())
	keys := make([]string, 0, len(files))
	for i, file := range files {
		key, err := storage.UploadPhoto(scope, models.PhotoKindAfter, offset+i, file)
		if err != nil {
			log.Printf("failed to upload after photo: %v", err)
			cleanupPhotos(storage, keys)
			respondError(c, http.StatusInternalServerError, "UPLOAD_FAILED", "Failed to store photo")
			return
		}
		keys = append(keys, key)
	}

	order, err = orderService().AttachAfterPhotos(order.ID, keys)
	if err != nil {
		cleanupPhotos(storage, keys)
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orderPayload(order),
	})
}

// TipRequest is the one-time tip decision. Amount is a pointer so an
// explicit zero ("no tip") binds.
type TipRequest struct {
	Amount *int64 `json:"amount" binding:"required"`
}

// RecordTip stores the tip decision for an in-progress order. Zero is a
// valid decision; a second submission is rejected and the first amount
// stands.
func RecordTip(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	order, ok := fetchOwnedOrder(c, user)
	if !ok {
		return
	}

	var req TipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "amount is required (0 for no tip)")
		return
	}

	order, err := orderService().RecordTip(order.ID, *req.Amount)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orderPayload(order),
	})
}

// CompleteOrder finishes the job: IN_PROGRESS to COMPLETED, after the
// service re-validates photos, tip and payment. Retrying a completed
// order returns it unchanged.
func CompleteOrder(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	order, ok := fetchOwnedOrder(c, user)
	if !ok {
		return
	}

	order, err := orderService().Complete(order.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orderPayload(order),
	})
}

// RatingRequest is the one-time service rating.
type RatingRequest struct {
	Value  int    `json:"value"`
	Review string `json:"review"`
}

// RecordRating stores a 1 to 5 star rating for a completed order. One
// rating per order.
func RecordRating(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	order, ok := fetchOwnedOrder(c, user)
	if !ok {
		return
	}

	var req RatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid rating payload")
		return
	}

	order, err := orderService().RecordRating(order.ID, req.Value, req.Review)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orderPayload(order),
	})
}
