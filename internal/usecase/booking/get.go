package booking

import (
	"context"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

type GetBooking struct {
	repo domain.Repository
}

func NewGetBooking(repo domain.Repository) *GetBooking {
	return &GetBooking{repo: repo}
}

func (uc *GetBooking) Execute(ctx context.Context, bookingID uint) (*models.Booking, error) {
	b, err := uc.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, notFound(err, "booking_not_found", "Booking not found.")
	}
	return b, nil
}
