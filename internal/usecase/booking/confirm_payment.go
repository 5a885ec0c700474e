package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/notify"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

type ConfirmResult struct {
	Booking *models.Booking

	// Applied is true only for the delivery that confirmed the booking.
	Applied bool
	// Duplicate marks a redelivery of an event that was already applied.
	Duplicate bool
	// Ignored marks event types that never change a booking.
	Ignored bool
	// RequiresRefund is set when money arrived for a booking that is no
	// longer pending, typically after its hold expired.
	RequiresRefund bool
}

type ConfirmPayment struct {
	repo    domain.Repository
	clock   timezone.Clock
	deduper domain.EventDeduper
	fx      Effects
}

func NewConfirmPayment(
	repo domain.Repository,
	clock timezone.Clock,
	deduper domain.EventDeduper,
	fx Effects,
) *ConfirmPayment {
	return &ConfirmPayment{
		repo:    repo,
		clock:   clock,
		deduper: deduper,
		fx:      fx,
	}
}

func (uc *ConfirmPayment) Execute(
	ctx context.Context,
	ev domain.PaymentEvent,
) (*ConfirmResult, error) {

	log := uc.fx.logger().WithFields(logrus.Fields{
		"event_id":          ev.EventID,
		"event_type":        ev.EventType,
		"payment_reference": ev.GatewayReference,
	})

	if ev.GatewayReference == "" {
		return nil, httperr.ErrProcessing("invalid_payload", "Missing gateway payment reference.")
	}
	if ev.EventType != domain.EventPaymentSucceeded {
		uc.fx.Metrics.PaymentEvent("ignored")
		log.Debug("payment event ignored")
		return &ConfirmResult{Ignored: true}, nil
	}

	if uc.seen(ctx, ev.EventID, log) {
		uc.fx.Metrics.PaymentEvent("duplicate")
		return &ConfirmResult{Duplicate: true}, nil
	}

	now := uc.clock.Now()
	result := &ConfirmResult{}

	err := uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		payment, err := tx.GetPaymentByReferenceForUpdate(ctx, ev.GatewayReference)
		if err != nil {
			return err
		}

		b, err := tx.GetBookingForUpdate(ctx, payment.BookingID)
		if err != nil {
			return err
		}
		result.Booking = b

		if payment.Status == models.PaymentRecordSucceeded {
			result.Duplicate = true
			return nil
		}

		amount := ev.Amount
		if !amount.IsPositive() {
			amount = payment.Amount
		}

		payment.Status = models.PaymentRecordSucceeded
		payment.AmountReceived = amount
		payment.SucceededAt = &now
		if err := tx.UpdatePayment(ctx, payment); err != nil {
			return err
		}

		if domain.Status(b.Status) != domain.StatusPending {
			result.RequiresRefund = true
			return nil
		}

		if err := domain.Confirm(b, amount, now); err != nil {
			return err
		}
		if err := tx.UpdateBooking(ctx, b); err != nil {
			return err
		}
		result.Applied = true
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.fx.Metrics.PaymentEvent("unknown_reference")
			return nil, httperr.ErrProcessing(
				"unknown_payment_reference",
				fmt.Sprintf("No payment matches reference %s.", ev.GatewayReference),
			)
		}
		return nil, writeConflict(err)
	}

	uc.remember(ctx, ev.EventID, log)

	switch {
	case result.Applied:
		uc.fx.Metrics.PaymentEvent("applied")
		uc.fx.Metrics.Transition(string(domain.OpConfirm))
		uc.fx.record(audit.ActorFrom(ctx), "booking_confirmed", result.Booking, map[string]any{
			"event_id":       ev.EventID,
			"payment_status": result.Booking.PaymentStatus,
		})
		uc.fx.publish(ctx, notify.TopicBookingConfirmed, result.Booking, "", now)
		log.WithField("booking_id", result.Booking.ID).Info("booking confirmed")

	case result.RequiresRefund:
		uc.fx.Metrics.PaymentEvent("refund_required")
		uc.fx.record(audit.ActorFrom(ctx), "payment_requires_refund", result.Booking, map[string]any{
			"event_id":       ev.EventID,
			"booking_status": result.Booking.Status,
		})
		log.WithField("booking_id", result.Booking.ID).Warn("payment received for a booking that is no longer pending")

	case result.Duplicate:
		uc.fx.Metrics.PaymentEvent("duplicate")
	}

	return result, nil
}

func (uc *ConfirmPayment) seen(ctx context.Context, eventID string, log logrus.FieldLogger) bool {
	if uc.deduper == nil || eventID == "" {
		return false
	}
	seen, err := uc.deduper.Seen(ctx, eventID)
	if err != nil {
		log.WithError(err).Warn("event dedup lookup failed")
		return false
	}
	return seen
}

func (uc *ConfirmPayment) remember(ctx context.Context, eventID string, log logrus.FieldLogger) {
	if uc.deduper == nil || eventID == "" {
		return
	}
	if err := uc.deduper.Remember(ctx, eventID); err != nil {
		log.WithError(err).Warn("event dedup store failed")
	}
}
