package booking

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/notify"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

// errHoldStillValid aborts an expiry whose booking changed since it was listed.
var errHoldStillValid = errors.New("booking: hold no longer expired")

// CancelBooking frees a booking's slot. User cancellation and hold expiry
// share the same transactional path.
type CancelBooking struct {
	repo  domain.Repository
	clock timezone.Clock
	fx    Effects
}

func NewCancelBooking(
	repo domain.Repository,
	clock timezone.Clock,
	fx Effects,
) *CancelBooking {
	return &CancelBooking{
		repo:  repo,
		clock: clock,
		fx:    fx,
	}
}

func (uc *CancelBooking) Execute(ctx context.Context, bookingID uint) (*models.Booking, error) {
	b, err := uc.cancel(ctx, bookingID, domain.OpCancel)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ExpireHold cancels the booking only if it is still an unpaid pending hold
// past its expiry. It returns (nil, false, nil) when there is nothing to do,
// for instance when the payment was confirmed in the meantime.
func (uc *CancelBooking) ExpireHold(ctx context.Context, bookingID uint) (*models.Booking, bool, error) {
	b, err := uc.cancel(ctx, bookingID, domain.OpExpireHold)
	if errors.Is(err, errHoldStillValid) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (uc *CancelBooking) cancel(
	ctx context.Context,
	bookingID uint,
	op domain.Operation,
) (*models.Booking, error) {

	now := uc.clock.Now()

	var cancelled *models.Booking
	err := uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		b, err := tx.GetBookingForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}

		switch op {
		case domain.OpExpireHold:
			expired, err := domain.ExpireHold(b, now)
			if err != nil {
				return err
			}
			if !expired {
				return errHoldStillValid
			}
		default:
			if err := domain.Cancel(b, now); err != nil {
				return err
			}
		}

		if err := tx.UpdateBooking(ctx, b); err != nil {
			return err
		}
		cancelled = b
		return nil
	})
	if err != nil {
		if errors.Is(err, errHoldStillValid) {
			return nil, err
		}
		return nil, notFound(writeConflict(err), "booking_not_found", "Booking not found.")
	}

	reason := "cancelled"
	action := "booking_cancelled"
	if op == domain.OpExpireHold {
		reason = "hold_expired"
		action = "booking_hold_expired"
	}

	uc.fx.Metrics.Transition(string(op))
	uc.fx.record(audit.ActorFrom(ctx), action, cancelled, nil)
	uc.fx.publish(ctx, notify.TopicBookingCancelled, cancelled, reason, now)
	uc.fx.logger().WithFields(logrus.Fields{
		"booking_id": cancelled.ID,
		"reason":     reason,
	}).Info("booking cancelled")

	return cancelled, nil
}
