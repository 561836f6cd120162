package controllers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lokaclean/lokaclean-api/models"
	"github.com/lokaclean/lokaclean-api/services"
)

// watchInterval is how often a dispatched order is re-polled for the
// one-shot dispatch cue and terminal detection.
const watchInterval = 30 * time.Second

// ConfirmOrder is the staff acknowledgement of a fresh booking:
// PENDING to PROCESSING. Racing another status change reads as 409.
func ConfirmOrder(c *gin.Context) {
	transitionOrder(c, models.StatusPending, models.StatusProcessing)
}

// DispatchOrder marks the cleaner as on the way: PROCESSING to
// IN_PROGRESS. A watcher goroutine starts polling the order; it fires
// the customer's dispatch cue once, on the edge into IN_PROGRESS, and
// stops when the order reaches a terminal status or disappears.
func DispatchOrder(c *gin.Context) {
	order := transitionOrder(c, models.StatusProcessing, models.StatusInProgress)
	if order == nil {
		return
	}

	watcher := services.NewOrderWatcher(orderService(), services.GetNotifier())
	go watcher.Run(context.Background(), order.ID, watchInterval)
}

// SettleCashPayment records that the cleaner collected cash after the
// visit. Gateway orders are settled by reconciliation, never by hand.
func SettleCashPayment(c *gin.Context) {
	order, ok := staffOrder(c)
	if !ok {
		return
	}

	if order.Payment.Method != models.PaymentMethodCash {
		respondError(c, http.StatusUnprocessableEntity, "PRECONDITION_FAILED", "gateway payments are settled by reconciliation")
		return
	}

	order, err := orderService().MarkPaid(order.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orderPayload(order),
	})
}

// transitionOrder applies one expected->next status change and responds
// with the updated order. Returns nil when a response was already
// written.
func transitionOrder(c *gin.Context, expected, next models.OrderStatus) *models.Order {
	order, ok := staffOrder(c)
	if !ok {
		return nil
	}

	order, err := orderService().Transition(order.ID, expected, next)
	if err != nil {
		respondServiceError(c, err)
		return nil
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orderPayload(order),
	})
	return order
}

// staffOrder loads the order named by :id for a staff handler. Routes
// using it sit behind the staff middleware, so no ownership check.
func staffOrder(c *gin.Context) (*models.Order, bool) {
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
	return order, true
}
