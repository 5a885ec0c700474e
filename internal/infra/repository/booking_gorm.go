package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

type BookingGormRepository struct {
	db *gorm.DB
}

func NewBookingGormRepository(db *gorm.DB) *BookingGormRepository {
	return &BookingGormRepository{db: db}
}

// translate maps driver errors onto the repository sentinels. Business
// errors raised inside a transaction pass through untouched.
func translate(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case httperr.IsExclusionConflict(err):
		return fmt.Errorf("%w: %v", domain.ErrSlotTaken, err)
	case httperr.IsSerializationFailure(err):
		return fmt.Errorf("%w: %v", domain.ErrConcurrentUpdate, err)
	case errors.As(err, &pgErr) && pgErr.Code == "23505":
		return fmt.Errorf("%w: %v", domain.ErrConcurrentUpdate, err)
	}
	return err
}

// --------------------------------------------------
// Transaction
// --------------------------------------------------

func (r *BookingGormRepository) Transaction(
	ctx context.Context,
	fn func(tx domain.Repository) error,
) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&BookingGormRepository{db: tx})
	}))
}

// --------------------------------------------------
// Directories
// --------------------------------------------------

func (r *BookingGormRepository) GetCustomer(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).
		Where("id = ? AND role = ?", id, models.RoleCustomer).
		First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *BookingGormRepository) GetBarber(ctx context.Context, id uint) (*models.Barber, error) {
	var b models.Barber
	if err := r.db.WithContext(ctx).
		Where("id = ? AND active = ?", id, true).
		First(&b).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *BookingGormRepository) GetBarberByUser(ctx context.Context, userID uint) (*models.Barber, error) {
	var b models.Barber
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&b).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *BookingGormRepository) GetService(ctx context.Context, id uint) (*models.Service, error) {
	var s models.Service
	if err := r.db.WithContext(ctx).
		Where("id = ? AND active = ?", id, true).
		First(&s).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

// --------------------------------------------------
// Conflict
// --------------------------------------------------

// LockBarberDay takes a transaction-scoped advisory lock. Two writers for
// the same barber and date queue here; the exclusion constraint on
// bookings still rejects anything that slips past.
func (r *BookingGormRepository) LockBarberDay(
	ctx context.Context,
	barberID uint,
	date time.Time,
) error {
	key := fmt.Sprintf("barber:%d:%s", barberID, date.Format("2006-01-02"))
	return translate(r.db.WithContext(ctx).
		Exec("SELECT pg_advisory_xact_lock(hashtext(?))", key).Error)
}

func (r *BookingGormRepository) HasOverlap(
	ctx context.Context,
	barberID uint,
	start time.Time,
	end time.Time,
	excludeBookingID uint,
) (bool, error) {

	var count int64
	q := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where(
			"barber_id = ? AND status <> ? AND start_time < ? AND end_time > ?",
			barberID,
			string(domain.StatusCancelled),
			end,
			start,
		)
	if excludeBookingID != 0 {
		q = q.Where("id <> ?", excludeBookingID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, translate(err)
	}

	return count > 0, nil
}

// --------------------------------------------------
// Booking
// --------------------------------------------------

func (r *BookingGormRepository) CreateBooking(ctx context.Context, b *models.Booking) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(b).Error)
}

func (r *BookingGormRepository) GetBooking(ctx context.Context, id uint) (*models.Booking, error) {
	var b models.Booking
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *BookingGormRepository) GetBookingForUpdate(ctx context.Context, id uint) (*models.Booking, error) {
	var b models.Booking
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&b, id).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *BookingGormRepository) UpdateBooking(ctx context.Context, b *models.Booking) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(b).Error)
}

func (r *BookingGormRepository) ListBookingsForPeriod(
	ctx context.Context,
	barberID uint,
	start time.Time,
	end time.Time,
) ([]models.Booking, error) {

	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Service").
		Where(
			"barber_id = ? AND start_time < ? AND end_time > ?",
			barberID,
			end,
			start,
		).
		Order("start_time ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, translate(err)
	}

	return bookings, nil
}

func (r *BookingGormRepository) ListExpiredHolds(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]models.Booking, error) {

	q := r.db.WithContext(ctx).
		Where(
			"status = ? AND expires_at IS NOT NULL AND expires_at < ?",
			string(domain.StatusPending),
			now,
		).
		Order("expires_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var bookings []models.Booking
	if err := q.Find(&bookings).Error; err != nil {
		return nil, translate(err)
	}
	return bookings, nil
}

// --------------------------------------------------
// Payment
// --------------------------------------------------

func (r *BookingGormRepository) CreatePayment(ctx context.Context, p *models.Payment) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *BookingGormRepository) GetPaymentByReferenceForUpdate(
	ctx context.Context,
	reference string,
) (*models.Payment, error) {

	var p models.Payment
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("gateway_reference = ?", reference).
		First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *BookingGormRepository) UpdatePayment(ctx context.Context, p *models.Payment) error {
	return translate(r.db.WithContext(ctx).Save(p).Error)
}

// --------------------------------------------------
// Calendar
// --------------------------------------------------

func (r *BookingGormRepository) ListAvailability(
	ctx context.Context,
	barberID uint,
	weekday int,
) ([]models.BarberAvailability, error) {

	var rows []models.BarberAvailability
	if err := r.db.WithContext(ctx).
		Where("barber_id = ? AND day_of_week = ?", barberID, weekday).
		Order("start_time ASC").
		Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

func (r *BookingGormRepository) ListAllAvailability(
	ctx context.Context,
	barberID uint,
) ([]models.BarberAvailability, error) {

	var rows []models.BarberAvailability
	if err := r.db.WithContext(ctx).
		Where("barber_id = ?", barberID).
		Order("day_of_week ASC, start_time ASC").
		Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

func (r *BookingGormRepository) ReplaceAvailability(
	ctx context.Context,
	barberID uint,
	rows []models.BarberAvailability,
) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("barber_id = ?", barberID).
			Delete(&models.BarberAvailability{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		for i := range rows {
			rows[i].BarberID = barberID
		}
		return tx.Create(&rows).Error
	}))
}

func (r *BookingGormRepository) ListBreaks(ctx context.Context, barberID uint) ([]models.BarberBreak, error) {
	var breaks []models.BarberBreak
	if err := r.db.WithContext(ctx).
		Where("barber_id = ?", barberID).
		Order("id ASC").
		Find(&breaks).Error; err != nil {
		return nil, translate(err)
	}
	return breaks, nil
}

func (r *BookingGormRepository) CreateBreak(ctx context.Context, br *models.BarberBreak) error {
	return translate(r.db.WithContext(ctx).Create(br).Error)
}

func (r *BookingGormRepository) DeleteBreak(ctx context.Context, barberID uint, breakID uint) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND barber_id = ?", breakID, barberID).
		Delete(&models.BarberBreak{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Compile-time check
var (
	_ domain.Repository    = (*BookingGormRepository)(nil)
	_ domain.CalendarStore = (*BookingGormRepository)(nil)
)
