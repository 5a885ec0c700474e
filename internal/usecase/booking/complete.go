package booking

import (
	"context"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

type CompleteBooking struct {
	repo  domain.Repository
	clock timezone.Clock
	fx    Effects
}

func NewCompleteBooking(
	repo domain.Repository,
	clock timezone.Clock,
	fx Effects,
) *CompleteBooking {
	return &CompleteBooking{
		repo:  repo,
		clock: clock,
		fx:    fx,
	}
}

// Execute settles the booking as fully paid at the service price.
func (uc *CompleteBooking) Execute(ctx context.Context, bookingID uint) (*models.Booking, error) {
	now := uc.clock.Now()

	var completed *models.Booking
	err := uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		b, err := tx.GetBookingForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := domain.Complete(b, now); err != nil {
			return err
		}
		if err := tx.UpdateBooking(ctx, b); err != nil {
			return err
		}
		completed = b
		return nil
	})
	if err != nil {
		return nil, notFound(writeConflict(err), "booking_not_found", "Booking not found.")
	}

	uc.fx.Metrics.Transition(string(domain.OpComplete))
	uc.fx.record(audit.ActorFrom(ctx), "booking_completed", completed, nil)

	return completed, nil
}
