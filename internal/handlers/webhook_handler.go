package handlers

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/httpresp"
	ucBooking "github.com/BruksfildServices01/barber-booking/internal/usecase/booking"
)

const HeaderWebhookSecret = "X-Webhook-Secret"

// PaymentEventSource resolves a gateway notification id into a payment event.
type PaymentEventSource interface {
	PaymentEvent(ctx context.Context, paymentID string) (domain.PaymentEvent, error)
}

// ======================================================
// HANDLER
// ======================================================

type WebhookHandler struct {
	confirm *ucBooking.ConfirmPayment
	source  PaymentEventSource
	secret  string
	log     logrus.FieldLogger
}

// NewWebhookHandler builds the payment webhook endpoints. source may be nil
// when no gateway is configured. The generic endpoint answers 503 until a
// secret is set.
func NewWebhookHandler(
	confirm *ucBooking.ConfirmPayment,
	source PaymentEventSource,
	secret string,
	log logrus.FieldLogger,
) *WebhookHandler {
	return &WebhookHandler{
		confirm: confirm,
		source:  source,
		secret:  secret,
		log:     log,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type PaymentEventRequest struct {
	EventID                 string          `json:"event_id" binding:"required"`
	EventType               string          `json:"event_type" binding:"required"`
	GatewayPaymentReference string          `json:"gateway_payment_reference"`
	Amount                  decimal.Decimal `json:"amount"`
}

type mercadoPagoNotification struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	Data   struct {
		ID string `json:"id"`
	} `json:"data"`
}

// ======================================================
// GENERIC
// ======================================================

func (h *WebhookHandler) Payments(c *gin.Context) {
	if h.secret == "" {
		httperr.Write(c, 503, "webhook_not_configured", "Payment webhook secret is not configured.")
		return
	}
	if !h.authorized(c) {
		httperr.Unauthorized(c, "invalid_webhook_secret", "Invalid webhook secret.")
		return
	}

	var req PaymentEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Write(c, 422, "invalid_payload", "Malformed payment event.")
		return
	}

	h.apply(c, domain.PaymentEvent{
		EventID:          req.EventID,
		EventType:        req.EventType,
		GatewayReference: req.GatewayPaymentReference,
		Amount:           req.Amount,
	})
}

// ======================================================
// MERCADOPAGO
// ======================================================

// MercadoPago accepts both the query string form (?type=payment&data.id=)
// and the JSON body form of a notification.
func (h *WebhookHandler) MercadoPago(c *gin.Context) {
	if h.source == nil {
		httperr.Write(c, 503, "gateway_not_configured", "Payment gateway is not configured.")
		return
	}

	kind := c.Query("type")
	if kind == "" {
		kind = c.Query("topic")
	}
	paymentID := c.Query("data.id")
	if paymentID == "" {
		paymentID = c.Query("id")
	}

	if paymentID == "" {
		var n mercadoPagoNotification
		if err := c.ShouldBindJSON(&n); err == nil {
			kind = n.Type
			paymentID = n.Data.ID
		}
	}

	if kind != "payment" {
		httpresp.OK(c, gin.H{"status": "ignored"})
		return
	}
	if paymentID == "" {
		httperr.Write(c, 422, "invalid_payload", "Missing payment id.")
		return
	}

	ev, err := h.source.PaymentEvent(c.Request.Context(), paymentID)
	if err != nil {
		h.log.WithError(err).WithField("payment_id", paymentID).Error("payment lookup failed")
		httperr.Write(c, 502, "gateway_lookup_failed", "Could not fetch payment from gateway.")
		return
	}

	h.apply(c, ev)
}

// ======================================================
// HELPERS
// ======================================================

func (h *WebhookHandler) apply(c *gin.Context, ev domain.PaymentEvent) {
	res, err := h.confirm.Execute(c.Request.Context(), ev)
	if err != nil {
		var be httperr.BusinessError
		if !errors.As(err, &be) {
			h.log.WithError(err).WithField("event_id", ev.EventID).Error("payment event failed")
		}
		httperr.Respond(c, err)
		return
	}

	body := gin.H{
		"status":          outcome(res),
		"requires_refund": res.RequiresRefund,
	}
	if res.Booking != nil {
		body["booking_id"] = res.Booking.ID
		body["booking_status"] = res.Booking.Status
	}
	httpresp.OK(c, body)
}

func (h *WebhookHandler) authorized(c *gin.Context) bool {
	got := c.GetHeader(HeaderWebhookSecret)
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) == 1
}

func outcome(res *ucBooking.ConfirmResult) string {
	switch {
	case res.Ignored:
		return "ignored"
	case res.Duplicate:
		return "duplicate"
	case res.RequiresRefund:
		return "refund_required"
	case res.Applied:
		return "applied"
	default:
		return "noop"
	}
}
