package services

import (
	"time"

	"github.com/lokaclean/lokaclean-api/models"
)

// PaymentService drives the gateway checkout flow for an order. The
// hosted widget's client-side callbacks (success/pending/error/close) are
// UX hints only; Reconcile re-queries the gateway server-side before any
// payment state is changed.
type PaymentService struct {
	orders  *OrderService
	gateway PaymentGateway
	nowFunc func() time.Time
}

// NewPaymentService creates a PaymentService.
func NewPaymentService(orders *OrderService, gateway PaymentGateway) *PaymentService {
	return &PaymentService{orders: orders, gateway: gateway, nowFunc: time.Now}
}

// CreateCheckout opens a hosted checkout session for the order. Only
// permitted while the action gate allows PAY; a lapsed payment window
// surfaces as ErrOrderVoided through the read path.
func (s *PaymentService) CreateCheckout(orderID uint) (*models.Order, *CheckoutIntent, error) {
	order, err := s.orders.Get(orderID)
	if err != nil {
		return nil, nil, err
	}
	if !models.PermittedActions(order, s.nowFunc()).Has(models.ActionPay) {
		if order.Payment.Method == models.PaymentMethodCash {
			return nil, nil, &PreconditionError{Reason: "cash orders are settled after the visit"}
		}
		return nil, nil, &PreconditionError{Reason: "order is not payable"}
	}

	ref := NewCheckoutRef(order)
	if err := s.orders.SetCheckoutRef(order.ID, ref); err != nil {
		return nil, nil, err
	}

	intent, err := s.gateway.CreateCheckoutToken(order, ref)
	if err != nil {
		return nil, nil, err
	}

	return order, intent, nil
}

// Reconcile re-reads the authoritative payment status from the gateway
// and applies it. Called after every widget callback and by the expiry
// sweeper; safe to call any number of times.
func (s *PaymentService) Reconcile(orderID uint) (*models.Order, GatewayStatus, error) {
	order, err := s.orders.Get(orderID)
	if err != nil {
		return nil, "", err
	}
	if order.Payment.Method != models.PaymentMethodGateway {
		return nil, "", &PreconditionError{Reason: "cash orders have no gateway status"}
	}
	if order.Payment.Status == models.PaymentPaid {
		return order, GatewayPaid, nil
	}
	if order.Payment.CheckoutRef == "" {
		// No checkout was ever opened; nothing to reconcile.
		return order, GatewayPending, nil
	}

	status, err := s.gateway.QueryStatus(order.Payment.CheckoutRef)
	if err != nil {
		return nil, "", err
	}

	if status == GatewayPaid {
		order, err = s.orders.MarkPaid(order.ID)
		if err != nil {
			return nil, "", err
		}
	}
	return order, status, nil
}
