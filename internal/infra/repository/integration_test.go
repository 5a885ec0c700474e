package repository_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-booking/internal/db"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/infra/repository"
	"github.com/BruksfildServices01/barber-booking/internal/logging"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
	ucBooking "github.com/BruksfildServices01/barber-booking/internal/usecase/booking"
)

// PostgresSuite runs the booking flows against a real postgres so the
// advisory lock and the exclusion constraint are exercised.
type PostgresSuite struct {
	suite.Suite
	ctx       context.Context
	container testcontainers.Container
	db        *gorm.DB
	repo      *repository.BookingGormRepository
	clock     *timezone.FixedClock

	customer models.User
	barber   models.Barber
	service  models.Service
}

func TestPostgresSuite(t *testing.T) {
	if os.Getenv("BOOKING_INTEGRATION") != "1" {
		t.Skip("set BOOKING_INTEGRATION=1 to run postgres integration tests")
	}
	suite.Run(t, new(PostgresSuite))
}

func (s *PostgresSuite) SetupSuite() {
	s.ctx = context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "barber",
			"POSTGRES_PASSWORD": "barber",
			"POSTGRES_DB":       "barber_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	var err error
	s.container, err = testcontainers.GenericContainer(s.ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	s.Require().NoError(err, "failed to start postgres container")

	host, err := s.container.Host(s.ctx)
	s.Require().NoError(err)
	port, err := s.container.MappedPort(s.ctx, "5432/tcp")
	s.Require().NoError(err)

	url := fmt.Sprintf("postgres://barber:barber@%s:%s/barber_test?sslmode=disable", host, port.Port())
	s.db, err = db.Open(url)
	s.Require().NoError(err)
	s.Require().NoError(db.Migrate(s.db))

	s.repo = repository.NewBookingGormRepository(s.db)
	loc := timezone.Location("Europe/Lisbon")
	s.clock = timezone.NewFixedClock(time.Date(2026, 10, 15, 9, 0, 0, 0, loc))

	s.customer = models.User{Name: "Ana", Email: "ana@example.com", Role: models.RoleCustomer}
	s.Require().NoError(s.db.Create(&s.customer).Error)

	barberUser := models.User{Name: "Joao", Email: "joao@example.com", Role: models.RoleBarber}
	s.Require().NoError(s.db.Create(&barberUser).Error)
	s.barber = models.Barber{UserID: barberUser.ID, DisplayName: "Joao", Active: true}
	s.Require().NoError(s.db.Create(&s.barber).Error)

	s.service = models.Service{
		Name:              "Haircut",
		DurationMinutes:   30,
		Price:             decimal.RequireFromString("25.00"),
		DepositPercentage: decimal.NewFromInt(20),
		Active:            true,
	}
	s.Require().NoError(s.db.Create(&s.service).Error)

	rows := make([]models.BarberAvailability, 0, 7)
	for day := 0; day < 7; day++ {
		rows = append(rows, models.BarberAvailability{DayOfWeek: day, StartTime: "09:00", EndTime: "18:00", IsAvailable: true})
	}
	s.Require().NoError(s.repo.ReplaceAvailability(s.ctx, s.barber.ID, rows))
}

func (s *PostgresSuite) TearDownSuite() {
	if s.container != nil {
		s.Require().NoError(s.container.Terminate(s.ctx))
	}
}

func (s *PostgresSuite) SetupTest() {
	s.Require().NoError(s.db.Exec("TRUNCATE payments, bookings RESTART IDENTITY").Error)
	s.clock.Set(time.Date(2026, 10, 15, 9, 0, 0, 0, s.clock.Location()))
}

func (s *PostgresSuite) createUC() *ucBooking.CreateBooking {
	return ucBooking.NewCreateBooking(s.repo, s.clock, ucBooking.DefaultPolicy(), nil, ucBooking.Effects{Log: logging.Discard()})
}

func (s *PostgresSuite) input(clock string) ucBooking.CreateBookingInput {
	return ucBooking.CreateBookingInput{
		CustomerID:    s.customer.ID,
		BarberID:      s.barber.ID,
		ServiceID:     s.service.ID,
		Date:          "2026-10-20",
		Time:          clock,
		PaymentMethod: "online",
	}
}

func (s *PostgresSuite) TestConcurrentCreateOnlyOneWins() {
	uc := s.createUC()

	const racers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)

	start := make(chan struct{})
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := uc.Execute(s.ctx, s.input("10:00"))

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
				return
			}
			if httperr.KindOf(err) == httperr.KindConflict {
				conflicts++
			}
		}()
	}
	close(start)
	wg.Wait()

	s.Equal(1, succeeded)
	s.Equal(racers-1, conflicts)

	var count int64
	s.Require().NoError(s.db.Model(&models.Booking{}).Where("status <> ?", "cancelled").Count(&count).Error)
	s.Equal(int64(1), count)
}

func (s *PostgresSuite) TestExclusionConstraintRejectsDirectInsert() {
	start := time.Date(2026, 10, 20, 11, 0, 0, 0, s.clock.Location())
	first := &models.Booking{
		CustomerID: s.customer.ID, BarberID: s.barber.ID, ServiceID: s.service.ID,
		BookingDate: start, StartTime: start, EndTime: start.Add(30 * time.Minute),
		Status: "pending", PaymentStatus: "pending", PaymentMethod: "in_shop",
	}
	s.Require().NoError(s.repo.CreateBooking(s.ctx, first))

	second := *first
	second.ID = 0
	second.StartTime = start.Add(15 * time.Minute)
	second.EndTime = start.Add(45 * time.Minute)

	err := s.repo.CreateBooking(s.ctx, &second)
	s.ErrorIs(err, domain.ErrSlotTaken)

	adjacent := *first
	adjacent.ID = 0
	adjacent.StartTime = start.Add(30 * time.Minute)
	adjacent.EndTime = start.Add(60 * time.Minute)
	s.NoError(s.repo.CreateBooking(s.ctx, &adjacent))
}

func (s *PostgresSuite) TestExpireAndConfirmRoundTrip() {
	created, err := s.createUC().Execute(s.ctx, s.input("12:00"))
	s.Require().NoError(err)

	fx := ucBooking.Effects{Log: logging.Discard()}
	confirm := ucBooking.NewConfirmPayment(s.repo, s.clock, nil, fx)

	res, err := confirm.Execute(s.ctx, domain.PaymentEvent{
		EventID:          "evt-pg",
		EventType:        domain.EventPaymentSucceeded,
		GatewayReference: created.Payment.GatewayReference,
	})
	s.Require().NoError(err)
	s.True(res.Applied)

	s.clock.Advance(time.Hour)
	sweeper := ucBooking.NewExpireHolds(s.repo, ucBooking.NewCancelBooking(s.repo, s.clock, fx), s.clock, ucBooking.DefaultPolicy(), fx)
	sweep, err := sweeper.Sweep(s.ctx)
	s.Require().NoError(err)
	s.Zero(sweep.Expired)

	b, err := s.repo.GetBooking(s.ctx, created.Booking.ID)
	require.NoError(s.T(), err)
	s.Equal(string(domain.StatusConfirmed), b.Status)
	s.Equal("5.00", b.AmountPaid.StringFixed(2))
}
