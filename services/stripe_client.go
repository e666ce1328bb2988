package services

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/paymentintent"
	"github.com/stripe/stripe-go/v80/webhook"
)

const (
	stripeCurrency        = "vnd"
	stripeOrderNumberKey  = "order_number"
	stripeEventIntentPaid = "payment_intent.succeeded"
)

// ErrWebhookIgnored is returned for webhook events that carry no payment to confirm.
var ErrWebhookIgnored = errors.New("webhook event ignored")

// StripeService creates PaymentIntents and verifies webhooks.
type StripeService struct {
	webhookKey string
}

// NewStripeService configures the Stripe client with secretKey.
func NewStripeService(secretKey, webhookKey string) *StripeService {
	stripe.Key = secretKey
	return &StripeService{webhookKey: webhookKey}
}

// CreatePaymentIntent charges amount VND. VND is a zero-decimal currency so
// the amount is sent as is.
func (s *StripeService) CreatePaymentIntent(ctx context.Context, amount int64, orderNumber string) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(stripeCurrency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata(stripeOrderNumberKey, orderNumber)

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, err
	}
	return &PaymentIntent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

// ParseWebhook verifies the signature and extracts a payment confirmation
// from a payment_intent.succeeded event. Other event types return
// ErrWebhookIgnored.
func (s *StripeService) ParseWebhook(payload []byte, signature string) (*PaymentConfirmationInput, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookKey, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, err
	}
	if string(event.Type) != stripeEventIntentPaid {
		return nil, ErrWebhookIgnored
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, err
	}
	orderNumber := pi.Metadata[stripeOrderNumberKey]
	if orderNumber == "" {
		return nil, ErrWebhookIgnored
	}
	return &PaymentConfirmationInput{
		OrderNumber: orderNumber,
		Amount:      pi.AmountReceived,
		Reference:   pi.ID,
	}, nil
}

// PaymentConfirmationInput is a settled payment extracted from a provider callback.
type PaymentConfirmationInput struct {
	OrderNumber string
	Amount      int64
	Reference   string
}
