package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lokaclean/lokaclean-api/services"
)

func paymentService() *services.PaymentService {
	return services.NewPaymentService(orderService(), services.GetPaymentGateway())
}

// CreateCheckout opens a hosted checkout session for a gateway order and
// returns the widget token. Only available while the action gate permits
// paying; a lapsed payment window reads as 404.
func CreateCheckout(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	order, ok := fetchOwnedOrder(c, user)
	if !ok {
		return
	}

	order, intent, err := paymentService().CreateCheckout(order.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	payload := orderPayload(order)
	payload["checkout"] = intent
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    payload,
	})
}

// CallbackRequest carries the widget's client-side callback. The event
// name is advisory only and is never applied to payment state.
type CallbackRequest struct {
	Event string `json:"event"`
}

// PaymentCallback is hit after any widget callback (success, pending,
// error, close). Whatever the widget claimed, the server re-queries the
// gateway and applies the authoritative answer.
func PaymentCallback(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	order, ok := fetchOwnedOrder(c, user)
	if !ok {
		return
	}

	var req CallbackRequest
	if err := c.ShouldBindJSON(&req); err == nil && req.Event != "" {
		log.Printf("widget callback %q for order %d, reconciling", req.Event, order.ID)
	}

	order, status, err := paymentService().Reconcile(order.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	payload := orderPayload(order)
	payload["gateway_status"] = status
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    payload,
	})
}
