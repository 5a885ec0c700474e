package dto

import (
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/models"
)

// BookingDTO is the JSON shape of a booking. Money is rendered with two
// decimals.
type BookingDTO struct {
	ID         uint `json:"id"`
	CustomerID uint `json:"customer_id"`
	BarberID   uint `json:"barber_id"`
	ServiceID  uint `json:"service_id"`

	BookingDate string    `json:"booking_date"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`

	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	PaymentMethod string `json:"payment_method"`

	ServicePrice       string `json:"service_price"`
	DepositAmount      string `json:"deposit_amount"`
	AmountPaid         string `json:"amount_paid"`
	OutstandingBalance string `json:"outstanding_balance"`

	ExpiresAt *time.Time `json:"expires_at"`
	Notes     string     `json:"notes"`

	CheckoutURL string `json:"checkout_url,omitempty"`
}

func NewBookingDTO(b *models.Booking) BookingDTO {
	return BookingDTO{
		ID:                 b.ID,
		CustomerID:         b.CustomerID,
		BarberID:           b.BarberID,
		ServiceID:          b.ServiceID,
		BookingDate:        b.BookingDate.Format("2006-01-02"),
		StartTime:          b.StartTime,
		EndTime:            b.EndTime,
		Status:             b.Status,
		PaymentStatus:      b.PaymentStatus,
		PaymentMethod:      b.PaymentMethod,
		ServicePrice:       b.ServicePrice.StringFixed(2),
		DepositAmount:      b.DepositAmount.StringFixed(2),
		AmountPaid:         b.AmountPaid.StringFixed(2),
		OutstandingBalance: b.OutstandingBalance.StringFixed(2),
		ExpiresAt:          b.ExpiresAt,
		Notes:              b.Notes,
	}
}
