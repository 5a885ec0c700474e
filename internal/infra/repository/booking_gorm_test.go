package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
)

func newMockRepo(t *testing.T) (*BookingGormRepository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return NewBookingGormRepository(db), mock
}

func TestHasOverlap_IgnoresCancelledAndSelf(t *testing.T) {
	repo, mock := newMockRepo(t)
	start := time.Date(2026, 10, 20, 10, 0, 0, 0, time.UTC)
	end := start.Add(30 * time.Minute)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "bookings" WHERE \(barber_id = \$1 AND status <> \$2 AND start_time < \$3 AND end_time > \$4\) AND id <> \$5`).
		WithArgs(3, "cancelled", end, start, 42).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	taken, err := repo.HasOverlap(context.Background(), 3, start, end, 42)
	require.NoError(t, err)
	assert.True(t, taken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBooking_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT \* FROM "bookings" WHERE "bookings"."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetBooking(context.Background(), 7)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockBarberDay_UsesAdvisoryLock(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`SELECT pg_advisory_xact_lock\(hashtext\(\$1\)\)`).
		WithArgs("barber:3:2026-10-20").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.LockBarberDay(context.Background(), 3, time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransaction_RollsBackOnBusinessError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	conflict := httperr.ErrConflict("time_conflict", "taken")
	err := repo.Transaction(context.Background(), func(domain.Repository) error {
		return conflict
	})

	assert.Equal(t, conflict, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTranslate(t *testing.T) {
	assert.ErrorIs(t, translate(gorm.ErrRecordNotFound), domain.ErrNotFound)
	assert.ErrorIs(t, translate(&pgconn.PgError{Code: "23P01"}), domain.ErrSlotTaken)
	assert.ErrorIs(t, translate(&pgconn.PgError{Code: "40001"}), domain.ErrConcurrentUpdate)
	assert.ErrorIs(t, translate(&pgconn.PgError{Code: "23505"}), domain.ErrConcurrentUpdate)

	other := errors.New("connection reset")
	assert.Equal(t, other, translate(other))
	assert.NoError(t, translate(nil))
}
