package services

import (
	"fmt"
	"log"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	appConfig "github.com/lokaclean/lokaclean-api/config"
	"github.com/lokaclean/lokaclean-api/models"
)

// Notifier is the fire-and-forget notification side channel. Delivery
// failures are logged by callers, never allowed to fail the triggering
// operation.
type Notifier interface {
	// OrderReceived alerts staff that a new booking came in.
	OrderReceived(order *models.Order) error
	// CleanerDispatched cues the customer that the cleaner is on the
	// way. Fired exactly once per order, on the IN_PROGRESS edge.
	CleanerDispatched(order *models.Order) error
}

var notifierInstance Notifier

// InitNotifier initializes the Twilio WhatsApp notifier, or a log-only
// notifier when Twilio is not configured.
func InitNotifier() Notifier {
	cfg := appConfig.GetConfig()
	if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" {
		log.Println("Twilio not configured, using log-only notifier")
		notifierInstance = &LogNotifier{}
		return notifierInstance
	}

	notifierInstance = &WhatsAppNotifier{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.TwilioAccountSID,
			Password: cfg.TwilioAuthToken,
		}),
		from:    cfg.TwilioWhatsAppFrom,
		staffTo: cfg.StaffWhatsAppTo,
	}
	return notifierInstance
}

// GetNotifier returns the initialized notifier instance
func GetNotifier() Notifier {
	return notifierInstance
}

// SetNotifier sets the notifier instance (primarily for testing)
func SetNotifier(n Notifier) {
	notifierInstance = n
}

// WhatsAppNotifier sends WhatsApp messages through Twilio, quoting the
// human-facing order number.
type WhatsAppNotifier struct {
	client  *twilio.RestClient
	from    string
	staffTo string
}

func (n *WhatsAppNotifier) OrderReceived(order *models.Order) error {
	body := fmt.Sprintf(
		"New booking #%d: %s at %s on %s (%s).",
		order.Number,
		order.Package.Name,
		order.Address,
		order.ScheduledDate.Format("Mon 2 Jan 15:04"),
		order.Payment.Method,
	)
	return n.send(n.staffTo, body)
}

func (n *WhatsAppNotifier) CleanerDispatched(order *models.Order) error {
	body := fmt.Sprintf(
		"Your cleaner for booking #%d is on the way! Scheduled for %s.",
		order.Number,
		order.ScheduledDate.Format("Mon 2 Jan 15:04"),
	)
	return n.send(order.Customer.Phone, body)
}

func (n *WhatsAppNotifier) send(to, body string) error {
	if to == "" {
		return nil
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom("whatsapp:" + n.from)
	params.SetTo("whatsapp:" + to)
	params.SetBody(body)

	if _, err := n.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("failed to send WhatsApp message: %w", err)
	}
	return nil
}

// LogNotifier writes notifications to the application log. Used in
// development and as the fallback when Twilio is not configured.
type LogNotifier struct{}

func (n *LogNotifier) OrderReceived(order *models.Order) error {
	log.Printf("notify: new booking #%d (%s)", order.Number, order.Payment.Method)
	return nil
}

func (n *LogNotifier) CleanerDispatched(order *models.Order) error {
	log.Printf("notify: cleaner dispatched for booking #%d", order.Number)
	return nil
}
