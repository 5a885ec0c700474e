package booking

import (
	"context"

	"github.com/shopspring/decimal"
)

// EventPaymentSucceeded is the only gateway event type that changes a booking.
const EventPaymentSucceeded = "payment_intent.succeeded"

// PaymentEvent is a gateway notification after signature checks.
type PaymentEvent struct {
	EventID          string
	EventType        string
	GatewayReference string
	Amount           decimal.Decimal
}

type Checkout struct {
	Reference   string
	Title       string
	Amount      decimal.Decimal
	PayerEmail  string
	Description string
}

type CheckoutSession struct {
	ID  string
	URL string
}

// PaymentGateway opens a hosted checkout for a deposit.
type PaymentGateway interface {
	CreateCheckout(ctx context.Context, c Checkout) (CheckoutSession, error)
}

// EventDeduper remembers gateway event ids that were already applied.
// It is a fast path only; the payment record status is the real guard.
type EventDeduper interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Remember(ctx context.Context, eventID string) error
}
