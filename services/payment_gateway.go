package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"

	appConfig "github.com/lokaclean/lokaclean-api/config"
	"github.com/lokaclean/lokaclean-api/models"
)

// GatewayStatus is the authoritative settlement state reported by a
// server-side gateway query. Client-side widget callbacks never produce
// one of these directly.
type GatewayStatus string

const (
	GatewayPaid    GatewayStatus = "PAID"
	GatewayPending GatewayStatus = "PENDING"
	GatewayFailed  GatewayStatus = "FAILED"
)

// CheckoutIntent is a hosted-checkout session the client opens in the
// payment widget.
type CheckoutIntent struct {
	Ref         string `json:"ref"`
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// PaymentGateway is the boundary to the hosted checkout provider.
// CreateCheckoutToken opens a checkout session; QueryStatus asks the
// provider, server-side, what actually happened to it.
type PaymentGateway interface {
	CreateCheckoutToken(order *models.Order, ref string) (*CheckoutIntent, error)
	QueryStatus(ref string) (GatewayStatus, error)
}

var paymentGatewayInstance PaymentGateway

// InitPaymentGateway initializes the Midtrans-backed gateway client.
func InitPaymentGateway() PaymentGateway {
	cfg := appConfig.GetConfig()
	env := midtrans.Sandbox
	if cfg.IsProduction() {
		env = midtrans.Production
	}

	var snapClient snap.Client
	snapClient.New(cfg.MidtransServerKey, env)

	var coreClient coreapi.Client
	coreClient.New(cfg.MidtransServerKey, env)

	paymentGatewayInstance = &MidtransGateway{
		snap: snapClient,
		core: coreClient,
	}
	return paymentGatewayInstance
}

// GetPaymentGateway returns the initialized gateway instance
func GetPaymentGateway() PaymentGateway {
	return paymentGatewayInstance
}

// SetPaymentGateway sets the gateway instance (primarily for testing)
func SetPaymentGateway(g PaymentGateway) {
	paymentGatewayInstance = g
}

// MidtransGateway implements PaymentGateway against Midtrans Snap
// (hosted checkout) and the Core API (status queries).
type MidtransGateway struct {
	snap snap.Client
	core coreapi.Client
}

// NewCheckoutRef builds a unique gateway-side order reference. The order
// number makes the reference recognizable on the Midtrans dashboard; the
// uuid suffix keeps retried checkouts unique.
func NewCheckoutRef(order *models.Order) string {
	return fmt.Sprintf("LC-%d-%s", order.Number, uuid.NewString()[:8])
}

// CreateCheckoutToken opens a Snap transaction for the order's amount and
// returns the widget token.
func (g *MidtransGateway) CreateCheckoutToken(order *models.Order, ref string) (*CheckoutIntent, error) {
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  ref,
			GrossAmt: order.Payment.Amount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: order.Customer.Name,
			Email: order.Customer.Email,
			Phone: order.Customer.Phone,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    fmt.Sprintf("pkg-%d", order.PackageID),
				Name:  order.Package.Name,
				Price: order.Price,
				Qty:   1,
			},
		},
	}

	resp, err := g.snap.CreateTransaction(req)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout transaction: %w", err)
	}

	return &CheckoutIntent{
		Ref:         ref,
		Token:       resp.Token,
		RedirectURL: resp.RedirectURL,
	}, nil
}

// QueryStatus asks Midtrans for the transaction state of the given
// checkout reference. This is the only trusted source of "paid".
func (g *MidtransGateway) QueryStatus(ref string) (GatewayStatus, error) {
	resp, err := g.core.CheckTransaction(ref)
	if err != nil {
		return "", fmt.Errorf("failed to query transaction status: %w", err)
	}

	switch resp.TransactionStatus {
	case "settlement":
		return GatewayPaid, nil
	case "capture":
		if resp.FraudStatus == "accept" {
			return GatewayPaid, nil
		}
		return GatewayPending, nil
	case "pending", "authorize":
		return GatewayPending, nil
	default: // deny, cancel, expire, failure
		return GatewayFailed, nil
	}
}
