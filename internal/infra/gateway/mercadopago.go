package gateway

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preference"
	"github.com/shopspring/decimal"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
)

const statusApproved = "approved"

var ErrInvalidPaymentID = errors.New("invalid mercadopago payment id")

type preferenceCreator interface {
	Create(ctx context.Context, request preference.Request) (*preference.Response, error)
}

type paymentFetcher interface {
	Get(ctx context.Context, id int) (*payment.Response, error)
}

// MercadoPago opens hosted checkouts and resolves payment notifications.
type MercadoPago struct {
	preferences     preferenceCreator
	payments        paymentFetcher
	currency        string
	notificationURL string
}

var _ domain.PaymentGateway = (*MercadoPago)(nil)

func NewMercadoPago(accessToken, currency, notificationURL string) (*MercadoPago, error) {
	cfg, err := config.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("mercadopago config: %w", err)
	}
	return &MercadoPago{
		preferences:     preference.NewClient(cfg),
		payments:        payment.NewClient(cfg),
		currency:        currency,
		notificationURL: notificationURL,
	}, nil
}

func (g *MercadoPago) CreateCheckout(ctx context.Context, c domain.Checkout) (domain.CheckoutSession, error) {
	req := preference.Request{
		Items: []preference.ItemRequest{
			{
				ID:          c.Reference,
				Title:       c.Title,
				Description: c.Description,
				Quantity:    1,
				UnitPrice:   c.Amount.InexactFloat64(),
				CurrencyID:  g.currency,
			},
		},
		ExternalReference: c.Reference,
		NotificationURL:   g.notificationURL,
	}
	if c.PayerEmail != "" {
		req.Payer = &preference.PayerRequest{Email: c.PayerEmail}
	}

	res, err := g.preferences.Create(ctx, req)
	if err != nil {
		return domain.CheckoutSession{}, fmt.Errorf("mercadopago preference: %w", err)
	}
	return domain.CheckoutSession{ID: res.ID, URL: res.InitPoint}, nil
}

// PaymentEvent fetches a payment by id and maps it to a gateway event.
// Approved payments become payment_intent.succeeded; every other status
// maps to a type the lifecycle ignores.
func (g *MercadoPago) PaymentEvent(ctx context.Context, paymentID string) (domain.PaymentEvent, error) {
	id, err := strconv.Atoi(paymentID)
	if err != nil || id <= 0 {
		return domain.PaymentEvent{}, ErrInvalidPaymentID
	}

	p, err := g.payments.Get(ctx, id)
	if err != nil {
		return domain.PaymentEvent{}, fmt.Errorf("mercadopago payment %d: %w", id, err)
	}

	eventType := "payment." + p.Status
	if p.Status == statusApproved {
		eventType = domain.EventPaymentSucceeded
	}

	return domain.PaymentEvent{
		EventID:          fmt.Sprintf("mp:%d:%s", p.ID, p.Status),
		EventType:        eventType,
		GatewayReference: p.ExternalReference,
		Amount:           decimal.NewFromFloat(p.TransactionAmount).Round(2),
	}, nil
}
