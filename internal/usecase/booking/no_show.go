package booking

import (
	"context"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

type MarkNoShow struct {
	repo domain.Repository
	fx   Effects
}

func NewMarkNoShow(repo domain.Repository, fx Effects) *MarkNoShow {
	return &MarkNoShow{repo: repo, fx: fx}
}

func (uc *MarkNoShow) Execute(ctx context.Context, bookingID uint) (*models.Booking, error) {
	var marked *models.Booking
	err := uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		b, err := tx.GetBookingForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := domain.MarkNoShow(b); err != nil {
			return err
		}
		if err := tx.UpdateBooking(ctx, b); err != nil {
			return err
		}
		marked = b
		return nil
	})
	if err != nil {
		return nil, notFound(writeConflict(err), "booking_not_found", "Booking not found.")
	}

	uc.fx.Metrics.Transition(string(domain.OpNoShow))
	uc.fx.record(audit.ActorFrom(ctx), "booking_no_show", marked, nil)

	return marked, nil
}
