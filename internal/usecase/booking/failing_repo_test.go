package booking

import (
	"context"
	"errors"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/infra/repository/memrepo"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

// failingFirstRepo fails every locked read of one booking.
type failingFirstRepo struct {
	*memrepo.Repository
	failID uint
}

func (r *failingFirstRepo) Transaction(ctx context.Context, fn func(tx domain.Repository) error) error {
	return r.Repository.Transaction(ctx, func(tx domain.Repository) error {
		return fn(&failingTx{Repository: tx, failID: r.failID})
	})
}

type failingTx struct {
	domain.Repository
	failID uint
}

func (t *failingTx) GetBookingForUpdate(ctx context.Context, id uint) (*models.Booking, error) {
	if id == t.failID {
		return nil, errors.New("lock timeout")
	}
	return t.Repository.GetBookingForUpdate(ctx, id)
}
