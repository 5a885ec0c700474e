package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentRecordPending   = "pending"
	PaymentRecordSucceeded = "succeeded"
)

type Payment struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	BookingID uint `gorm:"index;not null" json:"booking_id"`

	GatewayReference string          `gorm:"size:100;uniqueIndex;not null" json:"gateway_reference"`
	Amount           decimal.Decimal `gorm:"type:numeric(10,2)" json:"amount"`
	AmountReceived   decimal.Decimal `gorm:"type:numeric(10,2);default:0" json:"amount_received"`
	Status           string          `gorm:"size:20;default:'pending'" json:"status"`
	CheckoutURL      string          `gorm:"size:500" json:"checkout_url,omitempty"`

	SucceededAt *time.Time `json:"succeeded_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
