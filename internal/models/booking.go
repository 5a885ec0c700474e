package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Booking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CustomerID uint    `gorm:"index" json:"customer_id"`
	Customer   User    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
	BarberID   uint    `gorm:"index:idx_booking_barber_date" json:"barber_id"`
	Barber     Barber  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
	ServiceID  uint    `json:"service_id"`
	Service    Service `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`

	BookingDate time.Time `gorm:"type:date;index:idx_booking_barber_date" json:"booking_date"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`

	Status        string `gorm:"size:20;default:'pending';index" json:"status"`
	PaymentStatus string `gorm:"size:20;default:'deposit_pending'" json:"payment_status"`
	PaymentMethod string `gorm:"size:20;default:'online'" json:"payment_method"`

	ServicePrice       decimal.Decimal `gorm:"type:numeric(10,2)" json:"service_price"`
	DepositAmount      decimal.Decimal `gorm:"type:numeric(10,2)" json:"deposit_amount"`
	AmountPaid         decimal.Decimal `gorm:"type:numeric(10,2);default:0" json:"amount_paid"`
	OutstandingBalance decimal.Decimal `gorm:"type:numeric(10,2)" json:"outstanding_balance"`

	ExpiresAt *time.Time `gorm:"index" json:"expires_at"`

	Notes       string     `gorm:"type:text" json:"notes"`
	ConfirmedAt *time.Time `json:"confirmed_at"`
	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
