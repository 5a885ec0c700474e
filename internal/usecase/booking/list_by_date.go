package booking

import (
	"context"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/dto"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

// ListBarberBookings returns a barber's agenda for one day, cancelled
// bookings included.
type ListBarberBookings struct {
	repo  domain.Repository
	clock timezone.Clock
}

func NewListBarberBookings(
	repo domain.Repository,
	clock timezone.Clock,
) *ListBarberBookings {
	return &ListBarberBookings{
		repo:  repo,
		clock: clock,
	}
}

func (uc *ListBarberBookings) Execute(
	ctx context.Context,
	barberID uint,
	date string,
) ([]dto.BookingListDTO, error) {

	start, err := timezone.ParseDate(date, uc.clock.Location())
	if err != nil {
		return nil, httperr.ErrBadRequest("invalid_date", "Date must be YYYY-MM-DD.")
	}
	end := start.AddDate(0, 0, 1)

	bookings, err := uc.repo.ListBookingsForPeriod(ctx, barberID, start, end)
	if err != nil {
		return nil, err
	}

	out := make([]dto.BookingListDTO, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, dto.BookingListDTO{
			ID:            b.ID,
			StartTime:     b.StartTime,
			EndTime:       b.EndTime,
			Status:        b.Status,
			PaymentStatus: b.PaymentStatus,
			CustomerName:  b.Customer.Name,
			ServiceName:   b.Service.Name,
			Notes:         b.Notes,
		})
	}

	return out, nil
}
