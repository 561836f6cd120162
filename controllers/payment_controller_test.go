package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/lokaclean/lokaclean-api/models"
	"github.com/lokaclean/lokaclean-api/services"
)

func paymentRouter(auth0ID string) *gin.Engine {
	router := setupTestRouter()
	auth := mockAuthMiddleware(auth0ID)
	router.POST("/orders/:id/checkout", auth, CreateCheckout)
	router.POST("/orders/:id/payment/callback", auth, PaymentCallback)
	return router
}

func TestCreateCheckout(t *testing.T) {
	f := newCtrlFixture(t)

	t.Run("gateway order gets a widget token", func(t *testing.T) {
		order := f.createOrder(models.PaymentMethodGateway)
		router := paymentRouter(f.customer.Auth0ID)

		w := performJSON(router, http.MethodPost, fmt.Sprintf("/orders/%d/checkout", order.ID), nil)
		assert.Equal(t, http.StatusOK, w.Code)

		response := parseResponse(t, w)
		data := response["data"].(map[string]interface{})
		checkout := data["checkout"].(map[string]interface{})
		ref := checkout["ref"].(string)
		assert.True(t, strings.HasPrefix(ref, fmt.Sprintf("LC-%d-", order.Number)))
		assert.Equal(t, "mock-token-"+ref, checkout["token"])
		assert.NotEmpty(t, checkout["redirect_url"])

		// The ref is persisted on the payment record.
		var payment models.Payment
		assert.NoError(t, f.db.Where("order_id = ?", order.ID).First(&payment).Error)
		assert.Equal(t, ref, payment.CheckoutRef)
	})

	t.Run("cash order is not payable online", func(t *testing.T) {
		order := f.createOrder(models.PaymentMethodCash)
		router := paymentRouter(f.customer.Auth0ID)

		w := performJSON(router, http.MethodPost, fmt.Sprintf("/orders/%d/checkout", order.ID), nil)
		assertErrorCode(t, w, http.StatusUnprocessableEntity, "PRECONDITION_FAILED")
	})

	t.Run("lapsed checkout reads as voided", func(t *testing.T) {
		order := f.createOrder(models.PaymentMethodGateway)
		f.lapsePaymentWindow(order.ID)
		router := paymentRouter(f.customer.Auth0ID)

		w := performJSON(router, http.MethodPost, fmt.Sprintf("/orders/%d/checkout", order.ID), nil)
		assertErrorCode(t, w, http.StatusNotFound, "ORDER_VOIDED")
	})

	t.Run("paid order is no longer payable", func(t *testing.T) {
		order := f.createOrder(models.PaymentMethodGateway)
		if _, err := f.orders().MarkPaid(order.ID); err != nil {
			t.Fatalf("failed to settle payment: %v", err)
		}
		router := paymentRouter(f.customer.Auth0ID)

		w := performJSON(router, http.MethodPost, fmt.Sprintf("/orders/%d/checkout", order.ID), nil)
		assertErrorCode(t, w, http.StatusUnprocessableEntity, "PRECONDITION_FAILED")
	})
}

func TestPaymentCallback(t *testing.T) {
	f := newCtrlFixture(t)

	openCheckout := func(t *testing.T, orderID uint) string {
		t.Helper()
		router := paymentRouter(f.customer.Auth0ID)
		w := performJSON(router, http.MethodPost, fmt.Sprintf("/orders/%d/checkout", orderID), nil)
		assert.Equal(t, http.StatusOK, w.Code)
		response := parseResponse(t, w)
		data := response["data"].(map[string]interface{})
		return data["checkout"].(map[string]interface{})["ref"].(string)
	}

	t.Run("settled checkout marks the payment paid", func(t *testing.T) {
		order := f.createOrder(models.PaymentMethodGateway)
		ref := openCheckout(t, order.ID)
		f.gateway.SetStatus(ref, services.GatewayPaid)

		router := paymentRouter(f.customer.Auth0ID)
		w := performJSON(router, http.MethodPost, fmt.Sprintf("/orders/%d/payment/callback", order.ID), map[string]interface{}{"event": "success"})
		assert.Equal(t, http.StatusOK, w.Code)

		response := parseResponse(t, w)
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "PAID", data["gateway_status"])
		got := data["order"].(map[string]interface{})
		payment := got["payment"].(map[string]interface{})
		assert.Equal(t, "PAID", payment["status"])
		assert.NotNil(t, payment["paid_at"])
	})

	t.Run("widget success claim alone changes nothing", func(t *testing.T) {
		order := f.createOrder(models.PaymentMethodGateway)
		openCheckout(t, order.ID)
		// Gateway still reports PENDING regardless of what the widget said.

		router := paymentRouter(f.customer.Auth0ID)
		w := performJSON(router, http.MethodPost, fmt.Sprintf("/orders/%d/payment/callback", order.ID), map[string]interface{}{"event": "success"})
		assert.Equal(t, http.StatusOK, w.Code)

		response := parseResponse(t, w)
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "PENDING", data["gateway_status"])
		got := data["order"].(map[string]interface{})
		payment := got["payment"].(map[string]interface{})
		assert.Equal(t, "PENDING", payment["status"])
	})

	t.Run("close event on an unopened checkout is a no-op", func(t *testing.T) {
		order := f.createOrder(models.PaymentMethodGateway)

		router := paymentRouter(f.customer.Auth0ID)
		w := performJSON(router, http.MethodPost, fmt.Sprintf("/orders/%d/payment/callback", order.ID), map[string]interface{}{"event": "close"})
		assert.Equal(t, http.StatusOK, w.Code)

		response := parseResponse(t, w)
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "PENDING", data["gateway_status"])
	})

	t.Run("cash order has no gateway status", func(t *testing.T) {
		order := f.createOrder(models.PaymentMethodCash)

		router := paymentRouter(f.customer.Auth0ID)
		w := performJSON(router, http.MethodPost, fmt.Sprintf("/orders/%d/payment/callback", order.ID), map[string]interface{}{"event": "success"})
		assertErrorCode(t, w, http.StatusUnprocessableEntity, "PRECONDITION_FAILED")
	})

	t.Run("lapsed checkout reads as voided", func(t *testing.T) {
		order := f.createOrder(models.PaymentMethodGateway)
		openCheckout(t, order.ID)
		f.lapsePaymentWindow(order.ID)

		router := paymentRouter(f.customer.Auth0ID)
		w := performJSON(router, http.MethodPost, fmt.Sprintf("/orders/%d/payment/callback", order.ID), map[string]interface{}{"event": "error"})
		assertErrorCode(t, w, http.StatusNotFound, "ORDER_VOIDED")
	})
}
