package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Service struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name            string `gorm:"size:100;not null" json:"name"`
	Category        string `gorm:"size:50" json:"category"`
	DurationMinutes int    `gorm:"not null" json:"duration_minutes"`

	Price decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	// DepositPercentage is a percentage in [0, 100] charged online at booking time.
	DepositPercentage decimal.Decimal `gorm:"type:numeric(5,2);default:0" json:"deposit_percentage"`

	Active bool `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
