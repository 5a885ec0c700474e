package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/notify"
)

type memoryDeduper struct {
	mu      sync.Mutex
	ids     map[string]bool
	failing bool
}

func (d *memoryDeduper) Seen(_ context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failing {
		return false, errors.New("redis down")
	}
	return d.ids[id], nil
}

func (d *memoryDeduper) Remember(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failing {
		return errors.New("redis down")
	}
	if d.ids == nil {
		d.ids = map[string]bool{}
	}
	d.ids[id] = true
	return nil
}

func TestConfirmPayment_DepositConfirmsBooking(t *testing.T) {
	f := newFixture(t)
	created := f.book(t, "10:00")

	res := f.pay(t, created, "evt-1")

	require.True(t, res.Applied)
	b := f.reload(t, created.Booking.ID)
	assert.Equal(t, string(domain.StatusConfirmed), b.Status)
	assert.Equal(t, string(domain.PaymentDepositPaid), b.PaymentStatus)
	assert.Equal(t, "5.00", b.AmountPaid.StringFixed(2))
	assert.Equal(t, "20.00", b.OutstandingBalance.StringFixed(2))
	assert.Nil(t, b.ExpiresAt)
	require.NotNil(t, b.ConfirmedAt)

	payments := f.repo.PaymentsForBooking(b.ID)
	require.Len(t, payments, 1)
	assert.Equal(t, models.PaymentRecordSucceeded, payments[0].Status)
	assert.Equal(t, 1, f.notifier.count(notify.TopicBookingConfirmed))
}

func TestConfirmPayment_FullAmountMarksFullyPaid(t *testing.T) {
	f := newFixture(t)
	created := f.book(t, "10:00")

	res, err := f.confirm().Execute(context.Background(), domain.PaymentEvent{
		EventID:          "evt-full",
		EventType:        domain.EventPaymentSucceeded,
		GatewayReference: created.Payment.GatewayReference,
		Amount:           decimal.RequireFromString("25.00"),
	})
	require.NoError(t, err)

	assert.Equal(t, string(domain.PaymentFullyPaid), res.Booking.PaymentStatus)
	assert.True(t, res.Booking.OutstandingBalance.IsZero())
}

func TestConfirmPayment_RedeliveryIsNoop(t *testing.T) {
	f := newFixture(t)
	created := f.book(t, "10:00")

	f.pay(t, created, "evt-1")
	first := f.reload(t, created.Booking.ID)

	f.clock.Advance(time.Minute)
	res := f.pay(t, created, "evt-1")

	assert.False(t, res.Applied)
	assert.True(t, res.Duplicate)
	assert.Equal(t, first, f.reload(t, created.Booking.ID))
	assert.Equal(t, 1, f.notifier.count(notify.TopicBookingConfirmed))
}

func TestConfirmPayment_DeduperShortCircuits(t *testing.T) {
	f := newFixture(t)
	created := f.book(t, "10:00")
	dedup := &memoryDeduper{}
	uc := NewConfirmPayment(f.repo, f.clock, dedup, f.fx)

	ev := domain.PaymentEvent{
		EventID:          "evt-dedup",
		EventType:        domain.EventPaymentSucceeded,
		GatewayReference: created.Payment.GatewayReference,
	}

	res, err := uc.Execute(context.Background(), ev)
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.True(t, dedup.ids["evt-dedup"])

	res, err = uc.Execute(context.Background(), ev)
	require.NoError(t, err)
	assert.True(t, res.Duplicate)
	assert.Nil(t, res.Booking)
}

func TestConfirmPayment_DeduperOutageFallsBackToRecordStatus(t *testing.T) {
	f := newFixture(t)
	created := f.book(t, "10:00")
	uc := NewConfirmPayment(f.repo, f.clock, &memoryDeduper{failing: true}, f.fx)

	ev := domain.PaymentEvent{
		EventID:          "evt-x",
		EventType:        domain.EventPaymentSucceeded,
		GatewayReference: created.Payment.GatewayReference,
	}

	res, err := uc.Execute(context.Background(), ev)
	require.NoError(t, err)
	assert.True(t, res.Applied)

	res, err = uc.Execute(context.Background(), ev)
	require.NoError(t, err)
	assert.True(t, res.Duplicate)
	assert.Equal(t, 1, f.notifier.count(notify.TopicBookingConfirmed))
}

func TestConfirmPayment_UnknownReference(t *testing.T) {
	f := newFixture(t)
	created := f.book(t, "10:00")

	_, err := f.confirm().Execute(context.Background(), domain.PaymentEvent{
		EventID:          "evt-unknown",
		EventType:        domain.EventPaymentSucceeded,
		GatewayReference: "does-not-exist",
	})

	require.Error(t, err)
	assert.Equal(t, httperr.KindProcessingFailure, httperr.KindOf(err))
	assert.Equal(t, string(domain.StatusPending), f.reload(t, created.Booking.ID).Status)
}

func TestConfirmPayment_MissingReferenceIsProcessingFailure(t *testing.T) {
	f := newFixture(t)

	_, err := f.confirm().Execute(context.Background(), domain.PaymentEvent{
		EventType: domain.EventPaymentSucceeded,
	})

	assert.Equal(t, httperr.KindProcessingFailure, httperr.KindOf(err))
}

func TestConfirmPayment_OtherEventTypesIgnored(t *testing.T) {
	f := newFixture(t)
	created := f.book(t, "10:00")

	res, err := f.confirm().Execute(context.Background(), domain.PaymentEvent{
		EventID:          "evt-failed",
		EventType:        "payment_intent.payment_failed",
		GatewayReference: created.Payment.GatewayReference,
	})
	require.NoError(t, err)

	assert.True(t, res.Ignored)
	assert.Equal(t, string(domain.StatusPending), f.reload(t, created.Booking.ID).Status)
}

func TestConfirmPayment_AfterHoldExpiredRequiresRefund(t *testing.T) {
	f := newFixture(t)
	created := f.book(t, "10:00")

	f.clock.Advance(11 * time.Minute)
	res, err := f.expireHolds().Sweep(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, res.Expired)

	paid := f.pay(t, created, "evt-late")

	assert.True(t, paid.RequiresRefund)
	assert.False(t, paid.Applied)
	assert.Equal(t, string(domain.StatusCancelled), f.reload(t, created.Booking.ID).Status)
	assert.Equal(t, models.PaymentRecordSucceeded, f.repo.PaymentsForBooking(created.Booking.ID)[0].Status)
	assert.Equal(t, 0, f.notifier.count(notify.TopicBookingConfirmed))
}
