package booking

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/barber-booking/internal/models"
)

// ===============================
// Creation
// ===============================

type Draft struct {
	CustomerID uint
	BarberID   uint
	Service    *models.Service

	Date  time.Time
	Start time.Time

	Method PaymentMethod
	Notes  string

	Now        time.Time
	HoldWindow time.Duration
}

// NewBooking builds a pending booking. An online deposit opens a hold that
// expires after the hold window; bookings with nothing to pay online carry
// no hold.
func NewBooking(d Draft) *models.Booking {
	price := d.Service.Price
	deposit := decimal.Zero
	if d.Method == MethodOnline {
		deposit = DepositFor(price, d.Service.DepositPercentage)
	}

	b := &models.Booking{
		CustomerID:         d.CustomerID,
		BarberID:           d.BarberID,
		ServiceID:          d.Service.ID,
		BookingDate:        d.Date,
		StartTime:          d.Start,
		EndTime:            d.Start.Add(time.Duration(d.Service.DurationMinutes) * time.Minute),
		Status:             string(StatusPending),
		PaymentMethod:      string(d.Method),
		ServicePrice:       price,
		DepositAmount:      deposit,
		AmountPaid:         decimal.Zero,
		OutstandingBalance: price.Sub(deposit),
		Notes:              d.Notes,
	}

	if deposit.IsPositive() {
		b.PaymentStatus = string(PaymentDepositPending)
		expires := d.Now.Add(d.HoldWindow)
		b.ExpiresAt = &expires
	} else {
		b.PaymentStatus = string(PaymentPending)
		b.PaymentMethod = string(MethodInShop)
	}

	return b
}

// HoldsOnlinePayment reports whether b is waiting for its online deposit.
func HoldsOnlinePayment(b *models.Booking) bool {
	return Status(b.Status) == StatusPending &&
		PaymentStatus(b.PaymentStatus) == PaymentDepositPending
}

// ===============================
// Domain Actions
// ===============================

func Confirm(b *models.Booking, amountPaid decimal.Decimal, now time.Time) error {
	next, err := Transition(Status(b.Status), OpConfirm)
	if err != nil {
		return err
	}

	b.Status = string(next)
	b.AmountPaid = amountPaid
	b.OutstandingBalance = b.ServicePrice.Sub(amountPaid)
	if !b.OutstandingBalance.IsPositive() {
		b.OutstandingBalance = decimal.Zero
		b.PaymentStatus = string(PaymentFullyPaid)
	} else {
		b.PaymentStatus = string(PaymentDepositPaid)
	}
	b.ExpiresAt = nil
	b.ConfirmedAt = &now
	return nil
}

// Reschedule moves b to a new range. A booking still holding an online
// deposit gets a fresh hold.
func Reschedule(b *models.Booking, date, start, end time.Time, now time.Time, hold time.Duration) error {
	next, err := Transition(Status(b.Status), OpReschedule)
	if err != nil {
		return err
	}

	b.Status = string(next)
	b.BookingDate = date
	b.StartTime = start
	b.EndTime = end

	if HoldsOnlinePayment(b) {
		expires := now.Add(hold)
		b.ExpiresAt = &expires
	}
	return nil
}

func Cancel(b *models.Booking, now time.Time) error {
	next, err := Transition(Status(b.Status), OpCancel)
	if err != nil {
		return err
	}
	applyCancel(b, next, now)
	return nil
}

// ExpireHold cancels b only if it is still an unpaid pending hold whose
// expiry is before now. It returns false when there is nothing to do.
func ExpireHold(b *models.Booking, now time.Time) (bool, error) {
	if Status(b.Status) != StatusPending || b.ExpiresAt == nil || !b.ExpiresAt.Before(now) {
		return false, nil
	}

	next, err := Transition(Status(b.Status), OpExpireHold)
	if err != nil {
		return false, err
	}
	applyCancel(b, next, now)
	return true, nil
}

func applyCancel(b *models.Booking, next Status, now time.Time) {
	b.Status = string(next)
	b.PaymentStatus = string(PaymentCancelled)
	b.ExpiresAt = nil
	b.CancelledAt = &now
}

func Complete(b *models.Booking, now time.Time) error {
	next, err := Transition(Status(b.Status), OpComplete)
	if err != nil {
		return err
	}

	b.Status = string(next)
	b.PaymentStatus = string(PaymentFullyPaid)
	b.DepositAmount = b.ServicePrice
	b.AmountPaid = b.ServicePrice
	b.OutstandingBalance = decimal.Zero
	b.ExpiresAt = nil
	b.CompletedAt = &now
	return nil
}

// MarkNoShow leaves payment fields untouched.
func MarkNoShow(b *models.Booking) error {
	next, err := Transition(Status(b.Status), OpNoShow)
	if err != nil {
		return err
	}

	b.Status = string(next)
	b.ExpiresAt = nil
	return nil
}
