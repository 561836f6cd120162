package controllers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lokaclean/lokaclean-api/config"
	"github.com/lokaclean/lokaclean-api/middleware"
	"github.com/lokaclean/lokaclean-api/models"
	"github.com/lokaclean/lokaclean-api/services"
)

// respondError writes the standard error envelope.
func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// respondServiceError maps order service errors onto HTTP responses. The
// mapping keeps the error taxonomy visible to clients: validation and
// precondition failures are not retryable as-is, conflicts mean the fact
// was already recorded, voided means the payment window passed.
func respondServiceError(c *gin.Context, err error) {
	var verr *services.ValidationError
	var perr *services.PreconditionError

	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		respondError(c, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found")
	case errors.Is(err, services.ErrOrderVoided):
		respondError(c, http.StatusNotFound, "ORDER_VOIDED", "Order no longer exists: the payment window passed")
	case errors.Is(err, services.ErrConflict):
		respondError(c, http.StatusConflict, "CONFLICT", "Already recorded; the stored value is unchanged")
	case errors.Is(err, services.ErrStatusConflict):
		respondError(c, http.StatusConflict, "STATUS_CONFLICT", "Order changed concurrently, please refresh")
	case errors.As(err, &verr):
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", verr.Error())
	case errors.As(err, &perr):
		respondError(c, http.StatusUnprocessableEntity, "PRECONDITION_FAILED", perr.Reason)
	default:
		log.Printf("internal error: %v", err)
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
	}
}

// orderPayload builds the response body for an order: the full record
// (with presigned photo URLs), the currently permitted actions, and the
// payment countdown while a gateway checkout is still open. Every
// mutating endpoint returns this so clients re-derive the action gate
// without a second round trip.
func orderPayload(order *models.Order) gin.H {
	now := time.Now()

	if storage := services.GetPhotoStorage(); storage != nil {
		for i := range order.Photos {
			url, err := storage.GetPresignedURL(order.Photos[i].StorageKey)
			if err != nil {
				log.Printf("failed to presign photo %s: %v", order.Photos[i].StorageKey, err)
				continue
			}
			order.Photos[i].URL = url
		}
	}

	payload := gin.H{
		"order":             order,
		"permitted_actions": models.PermittedActions(order, now).List(),
	}

	if order.Payment.Method == models.PaymentMethodGateway &&
		order.Payment.Status == models.PaymentPending &&
		order.Status != models.StatusCancelled {
		payload["payment_deadline"] = order.PaymentDeadline()
		payload["payment_countdown"] = models.FormatCountdown(order.PaymentWindowRemaining(now))
	}

	return payload
}

// currentUser resolves the authenticated user's profile, writing the
// error response itself when that fails.
func currentUser(c *gin.Context) (*models.User, bool) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return nil, false
	}

	var user models.User
	if err := config.GetDB().Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		respondError(c, http.StatusNotFound, "USER_NOT_FOUND", "User profile not found. Please create a profile first.")
		return nil, false
	}

	return &user, true
}

// orderService builds an OrderService on the current database.
func orderService() *services.OrderService {
	return services.NewOrderService(config.GetDB())
}
