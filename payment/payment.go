// Package payment wraps the hosted checkout provider.
package payment

import (
	"context"
	"errors"
)

// EventCheckoutCompleted is the only event type that changes order state.
const EventCheckoutCompleted = "checkout.session.completed"

// MetadataOrderID is the session metadata key carrying the pending order id.
const MetadataOrderID = "orderId"

var (
	ErrMissingSignature = errors.New("missing payment provider signature")
	ErrInvalidSignature = errors.New("invalid payment provider signature")

	// ErrWebhookSecretMissing means no endpoint secret is configured, so no event can be authenticated.
	ErrWebhookSecretMissing = errors.New("webhook endpoint secret is not configured")
)

type LineItem struct {
	Name       string
	Images     []string
	UnitAmount int64 // minor units
	Quantity   int64
}

type SessionRequest struct {
	Currency   string
	LineItems  []LineItem
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Event is a verified provider notification reduced to what order handling needs.
type Event struct {
	ID          string
	Type        string
	OrderID     string
	AmountTotal int64
}

type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error)
	// VerifyEvent authenticates the raw request body against its signature header.
	VerifyEvent(payload []byte, signature string) (*Event, error)
}
