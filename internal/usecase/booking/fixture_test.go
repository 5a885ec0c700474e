package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/infra/repository/memrepo"
	"github.com/BruksfildServices01/barber-booking/internal/logging"
	"github.com/BruksfildServices01/barber-booking/internal/metrics"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/notify"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

// testDay is a Tuesday five days after the fixture clock.
const testDay = "2026-10-20"

type recordingNotifier struct {
	mu    sync.Mutex
	facts []notify.Fact
	fail  bool
}

func (n *recordingNotifier) Publish(_ context.Context, fact notify.Fact) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("broker unavailable")
	}
	n.facts = append(n.facts, fact)
	return nil
}

func (n *recordingNotifier) count(topic string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, f := range n.facts {
		if f.Type == topic {
			c++
		}
	}
	return c
}

type fakeGateway struct {
	mu        sync.Mutex
	checkouts []domain.Checkout
	err       error
}

func (g *fakeGateway) CreateCheckout(_ context.Context, c domain.Checkout) (domain.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return domain.CheckoutSession{}, g.err
	}
	g.checkouts = append(g.checkouts, c)
	return domain.CheckoutSession{ID: "pref-" + c.Reference, URL: "https://pay.test/" + c.Reference}, nil
}

type fixture struct {
	repo     *memrepo.Repository
	clock    *timezone.FixedClock
	notifier *recordingNotifier
	gateway  *fakeGateway
	policy   Policy
	fx       Effects

	customer    models.User
	blacklisted models.User
	barber      models.Barber
	haircut     models.Service
	beardTrim   models.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	loc := timezone.Location("Europe/Lisbon")
	repo := memrepo.New()
	notifier := &recordingNotifier{}

	f := &fixture{
		repo:     repo,
		clock:    timezone.NewFixedClock(time.Date(2026, 10, 15, 9, 0, 0, 0, loc)),
		notifier: notifier,
		gateway:  &fakeGateway{},
		policy:   DefaultPolicy(),
		fx: Effects{
			Notifier: notifier,
			Metrics:  metrics.New(),
			Log:      logging.Discard(),
		},
	}

	f.customer = repo.AddUser(models.User{Name: "Ana", Email: "ana@example.com", Role: models.RoleCustomer})
	f.blacklisted = repo.AddUser(models.User{
		Name:            "Rui",
		Email:           "rui@example.com",
		Role:            models.RoleCustomer,
		Blacklisted:     true,
		BlacklistReason: "Repeated no-shows",
	})
	barberUser := repo.AddUser(models.User{Name: "Joao", Email: "joao@example.com", Role: models.RoleBarber})
	f.barber = repo.AddBarber(models.Barber{UserID: barberUser.ID, DisplayName: "Joao", Active: true})

	f.haircut = repo.AddService(models.Service{
		Name:              "Haircut",
		DurationMinutes:   30,
		Price:             decimal.RequireFromString("25.00"),
		DepositPercentage: decimal.NewFromInt(20),
		Active:            true,
	})
	f.beardTrim = repo.AddService(models.Service{
		Name:            "Beard trim",
		DurationMinutes: 15,
		Price:           decimal.RequireFromString("10.00"),
		Active:          true,
	})

	for day := 0; day < 7; day++ {
		repo.AddAvailability(models.BarberAvailability{
			BarberID:    f.barber.ID,
			DayOfWeek:   day,
			StartTime:   "09:00",
			EndTime:     "18:00",
			IsAvailable: true,
		})
	}

	return f
}

func (f *fixture) create() *CreateBooking {
	return NewCreateBooking(f.repo, f.clock, f.policy, f.gateway, f.fx)
}

func (f *fixture) update() *UpdateBooking {
	return NewUpdateBooking(f.repo, f.clock, f.policy, f.fx)
}

func (f *fixture) cancel() *CancelBooking {
	return NewCancelBooking(f.repo, f.clock, f.fx)
}

func (f *fixture) complete() *CompleteBooking {
	return NewCompleteBooking(f.repo, f.clock, f.fx)
}

func (f *fixture) noShow() *MarkNoShow {
	return NewMarkNoShow(f.repo, f.fx)
}

func (f *fixture) confirm() *ConfirmPayment {
	return NewConfirmPayment(f.repo, f.clock, nil, f.fx)
}

func (f *fixture) expireHolds() *ExpireHolds {
	return NewExpireHolds(f.repo, f.cancel(), f.clock, f.policy, f.fx)
}

func (f *fixture) input(clock string) CreateBookingInput {
	return CreateBookingInput{
		CustomerID:    f.customer.ID,
		BarberID:      f.barber.ID,
		ServiceID:     f.haircut.ID,
		Date:          testDay,
		Time:          clock,
		PaymentMethod: "online",
		Notes:         "short on top",
	}
}

// book creates an online haircut booking at clock on testDay.
func (f *fixture) book(t *testing.T, clock string) *CreatedBooking {
	t.Helper()
	out, err := f.create().Execute(context.Background(), f.input(clock))
	require.NoError(t, err)
	return out
}

func (f *fixture) pay(t *testing.T, created *CreatedBooking, eventID string) *ConfirmResult {
	t.Helper()
	require.NotNil(t, created.Payment)
	res, err := f.confirm().Execute(context.Background(), domain.PaymentEvent{
		EventID:          eventID,
		EventType:        domain.EventPaymentSucceeded,
		GatewayReference: created.Payment.GatewayReference,
		Amount:           created.Payment.Amount,
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) reload(t *testing.T, id uint) *models.Booking {
	t.Helper()
	b, err := f.repo.GetBooking(context.Background(), id)
	require.NoError(t, err)
	return b
}
