package booking

import (
	"context"
	"errors"
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/models"
)

var (
	ErrNotFound         = errors.New("booking.repository: record not found")
	ErrSlotTaken        = errors.New("booking.repository: time range already booked")
	ErrConcurrentUpdate = errors.New("booking.repository: concurrent update")
)

type Repository interface {
	// Transaction runs fn against a repository bound to one database
	// transaction. Locks taken inside are released on return.
	Transaction(
		ctx context.Context,
		fn func(tx Repository) error,
	) error

	// -------- Directories --------
	GetCustomer(ctx context.Context, id uint) (*models.User, error)
	GetBarber(ctx context.Context, id uint) (*models.Barber, error)
	GetBarberByUser(ctx context.Context, userID uint) (*models.Barber, error)
	GetService(ctx context.Context, id uint) (*models.Service, error)

	// -------- Conflict --------
	// LockBarberDay serialises writers for one barber and calendar date
	// until the surrounding transaction ends.
	LockBarberDay(ctx context.Context, barberID uint, date time.Time) error

	HasOverlap(
		ctx context.Context,
		barberID uint,
		start time.Time,
		end time.Time,
		excludeBookingID uint,
	) (bool, error)

	// -------- Booking --------
	CreateBooking(ctx context.Context, b *models.Booking) error
	GetBooking(ctx context.Context, id uint) (*models.Booking, error)
	GetBookingForUpdate(ctx context.Context, id uint) (*models.Booking, error)
	UpdateBooking(ctx context.Context, b *models.Booking) error

	ListBookingsForPeriod(
		ctx context.Context,
		barberID uint,
		start time.Time,
		end time.Time,
	) ([]models.Booking, error)

	ListExpiredHolds(ctx context.Context, now time.Time, limit int) ([]models.Booking, error)

	// -------- Payment --------
	CreatePayment(ctx context.Context, p *models.Payment) error
	GetPaymentByReferenceForUpdate(ctx context.Context, reference string) (*models.Payment, error)
	UpdatePayment(ctx context.Context, p *models.Payment) error

	// -------- Calendar --------
	ListAvailability(ctx context.Context, barberID uint, weekday int) ([]models.BarberAvailability, error)
	ListBreaks(ctx context.Context, barberID uint) ([]models.BarberBreak, error)
}

// CalendarStore manages the barber's weekly template and breaks.
type CalendarStore interface {
	ReplaceAvailability(ctx context.Context, barberID uint, rows []models.BarberAvailability) error
	ListAllAvailability(ctx context.Context, barberID uint) ([]models.BarberAvailability, error)
	CreateBreak(ctx context.Context, br *models.BarberBreak) error
	DeleteBreak(ctx context.Context, barberID uint, breakID uint) error
	ListBreaks(ctx context.Context, barberID uint) ([]models.BarberBreak, error)
}
